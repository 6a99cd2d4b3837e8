package algebra

import "github.com/consensys/gnark-crypto/ecc/stark-curve/fp"

// Domain abstracts the arithmetic a constraint-evaluation routine needs,
// so the same routine can run over base field trace rows and over
// extension field composition rows. E is the concrete element type.
type Domain[E any] interface {
	// Zero returns the additive identity
	Zero() E
	// Add returns a + b
	Add(a, b E) E
	// Sub returns a - b
	Sub(a, b E) E
	// Mul returns a * b
	Mul(a, b E) E
	// MulScalar returns a scaled by a base field constant
	MulScalar(a E, s *fp.Element) E
	// SubScalar returns a minus a base field constant
	SubScalar(a E, s *fp.Element) E
	// FromBase embeds a base field constant
	FromBase(s *fp.Element) E
	// ToExtension embeds a domain element into the extension field
	ToExtension(a E) ExtensionElement
}

// BaseDomain evaluates over plain base field elements
type BaseDomain struct{}

func (BaseDomain) Zero() fp.Element {
	var z fp.Element
	return z
}

func (BaseDomain) Add(a, b fp.Element) fp.Element {
	var z fp.Element
	z.Add(&a, &b)
	return z
}

func (BaseDomain) Sub(a, b fp.Element) fp.Element {
	var z fp.Element
	z.Sub(&a, &b)
	return z
}

func (BaseDomain) Mul(a, b fp.Element) fp.Element {
	var z fp.Element
	z.Mul(&a, &b)
	return z
}

func (BaseDomain) MulScalar(a fp.Element, s *fp.Element) fp.Element {
	var z fp.Element
	z.Mul(&a, s)
	return z
}

func (BaseDomain) SubScalar(a fp.Element, s *fp.Element) fp.Element {
	var z fp.Element
	z.Sub(&a, s)
	return z
}

func (BaseDomain) FromBase(s *fp.Element) fp.Element {
	var z fp.Element
	z.Set(s)
	return z
}

func (BaseDomain) ToExtension(a fp.Element) ExtensionElement {
	var z ExtensionElement
	z.SetBase(&a)
	return z
}

// ExtensionDomain evaluates over extension field elements
type ExtensionDomain struct{}

func (ExtensionDomain) Zero() ExtensionElement {
	var z ExtensionElement
	return z
}

func (ExtensionDomain) Add(a, b ExtensionElement) ExtensionElement {
	var z ExtensionElement
	z.Add(&a, &b)
	return z
}

func (ExtensionDomain) Sub(a, b ExtensionElement) ExtensionElement {
	var z ExtensionElement
	z.Sub(&a, &b)
	return z
}

func (ExtensionDomain) Mul(a, b ExtensionElement) ExtensionElement {
	var z ExtensionElement
	z.Mul(&a, &b)
	return z
}

func (ExtensionDomain) MulScalar(a ExtensionElement, s *fp.Element) ExtensionElement {
	var z ExtensionElement
	z.MulByBase(&a, s)
	return z
}

func (ExtensionDomain) SubScalar(a ExtensionElement, s *fp.Element) ExtensionElement {
	var se, z ExtensionElement
	se.SetBase(s)
	z.Sub(&a, &se)
	return z
}

func (ExtensionDomain) FromBase(s *fp.Element) ExtensionElement {
	var z ExtensionElement
	z.SetBase(s)
	return z
}

func (ExtensionDomain) ToExtension(a ExtensionElement) ExtensionElement {
	return a
}
