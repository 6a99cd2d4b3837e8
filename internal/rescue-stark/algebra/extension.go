// Package algebra provides the field-element glue the arithmetization is
// built on: the quadratic extension of the STARK prime field used for
// random linear combinations, a generic evaluation domain abstraction, and
// canonical byte serialization of field elements.
//
// The base field is gnark-crypto's stark-curve base field fp with
// modulus p = 2^251 + 17*2^192 + 1. p % 3 == 2, so cubing is a bijection
// on fp and the Rescue inverse S-box x -> x^((2p-1)/3) is exact.
package algebra

import (
	"encoding/hex"
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/stark-curve/fp"
)

// extensionNonResidue is the non-residue d defining the extension
// fp[u] / (u^2 - d). Since p % 4 == 1 and p % 3 == 2, quadratic
// reciprocity gives (3|p) = -1, so x^2 - 3 is irreducible over fp.
const extensionNonResidue = 3

// ExtensionElement is an element a0 + a1*u of the quadratic extension
// field fp[u] / (u^2 - 3)
type ExtensionElement struct {
	A0, A1 fp.Element
}

// SetZero sets z to 0 and returns z
func (z *ExtensionElement) SetZero() *ExtensionElement {
	z.A0.SetZero()
	z.A1.SetZero()
	return z
}

// SetOne sets z to 1 and returns z
func (z *ExtensionElement) SetOne() *ExtensionElement {
	z.A0.SetOne()
	z.A1.SetZero()
	return z
}

// Set sets z to x and returns z
func (z *ExtensionElement) Set(x *ExtensionElement) *ExtensionElement {
	z.A0.Set(&x.A0)
	z.A1.Set(&x.A1)
	return z
}

// SetBase sets z to the base field element x embedded into the extension
func (z *ExtensionElement) SetBase(x *fp.Element) *ExtensionElement {
	z.A0.Set(x)
	z.A1.SetZero()
	return z
}

// Add sets z = x + y and returns z
func (z *ExtensionElement) Add(x, y *ExtensionElement) *ExtensionElement {
	z.A0.Add(&x.A0, &y.A0)
	z.A1.Add(&x.A1, &y.A1)
	return z
}

// Sub sets z = x - y and returns z
func (z *ExtensionElement) Sub(x, y *ExtensionElement) *ExtensionElement {
	z.A0.Sub(&x.A0, &y.A0)
	z.A1.Sub(&x.A1, &y.A1)
	return z
}

// Neg sets z = -x and returns z
func (z *ExtensionElement) Neg(x *ExtensionElement) *ExtensionElement {
	z.A0.Neg(&x.A0)
	z.A1.Neg(&x.A1)
	return z
}

// Mul sets z = x * y and returns z.
// (a0 + a1*u)(b0 + b1*u) = a0*b0 + 3*a1*b1 + (a0*b1 + a1*b0)*u
func (z *ExtensionElement) Mul(x, y *ExtensionElement) *ExtensionElement {
	var t0, t1, t2, t3 fp.Element
	t0.Mul(&x.A0, &y.A0)
	t1.Mul(&x.A1, &y.A1)
	t2.Mul(&x.A0, &y.A1)
	t3.Mul(&x.A1, &y.A0)

	mulNonResidue(&t1)
	z.A0.Add(&t0, &t1)
	z.A1.Add(&t2, &t3)
	return z
}

// Square sets z = x * x and returns z
func (z *ExtensionElement) Square(x *ExtensionElement) *ExtensionElement {
	return z.Mul(x, x)
}

// MulByBase sets z = x * s for a base field scalar s and returns z
func (z *ExtensionElement) MulByBase(x *ExtensionElement, s *fp.Element) *ExtensionElement {
	z.A0.Mul(&x.A0, s)
	z.A1.Mul(&x.A1, s)
	return z
}

// Inverse sets z = 1/x and returns z. x must be non-zero.
// 1/(a0 + a1*u) = (a0 - a1*u) / (a0^2 - 3*a1^2)
func (z *ExtensionElement) Inverse(x *ExtensionElement) *ExtensionElement {
	var n0, n1, d fp.Element
	n0.Square(&x.A0)
	n1.Square(&x.A1)
	mulNonResidue(&n1)
	d.Sub(&n0, &n1)
	d.Inverse(&d)

	z.A0.Mul(&x.A0, &d)
	z.A1.Mul(&x.A1, &d)
	z.A1.Neg(&z.A1)
	return z
}

// Equal reports whether z == x
func (z *ExtensionElement) Equal(x *ExtensionElement) bool {
	return z.A0.Equal(&x.A0) && z.A1.Equal(&x.A1)
}

// IsZero reports whether z == 0
func (z *ExtensionElement) IsZero() bool {
	return z.A0.IsZero() && z.A1.IsZero()
}

// SetBytes derives z from a 64-byte string, reducing each half modulo p.
// Used by the channel to turn transcript randomness into coefficients.
func (z *ExtensionElement) SetBytes(data []byte) (*ExtensionElement, error) {
	if len(data) != 2*fp.Bytes {
		return nil, fmt.Errorf("invalid extension element encoding length: expected %d, got %d", 2*fp.Bytes, len(data))
	}
	z.A0.SetBytes(data[:fp.Bytes])
	z.A1.SetBytes(data[fp.Bytes:])
	return z, nil
}

// Bytes returns the canonical big-endian encoding of z
func (z *ExtensionElement) Bytes() []byte {
	out := make([]byte, 2*fp.Bytes)
	a0 := z.A0.Bytes()
	a1 := z.A1.Bytes()
	copy(out[:fp.Bytes], a0[:])
	copy(out[fp.Bytes:], a1[:])
	return out
}

// String returns a hex representation of z
func (z *ExtensionElement) String() string {
	return "ext(0x" + hex.EncodeToString(z.Bytes()) + ")"
}

// mulNonResidue multiplies x by the extension non-residue d = 3 in place
func mulNonResidue(x *fp.Element) {
	var t fp.Element
	t.Double(x)
	x.Add(x, &t)
}
