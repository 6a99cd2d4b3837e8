// Package rescue implements an AIR for the Rescue hash chain claim:
// "I know a sequence of words {w_i} such that
// H(...H(H(w_0, w_1), w_2)..., w_n) = p", where H is the Rescue hash
// function, {w_i} are 4-tuples of field elements and p is the public
// output of the chain (4 field elements).
//
// The trace consists of 12 columns, one per element of the Rescue state.
// Hashes are computed in batches of 3 that fit into 32 rows:
//
//	Row 0:            the initial state of the first hash in the batch
//	                  (8 input elements and 4 zeroes).
//	Rows 10h+1..10h+10: the middle-of-round states of rounds 1..10 of
//	                  hash slot h (h = 0, 1, 2).
//	Row 31:           the final state of the third hash. Its first 4
//	                  elements are the batch output.
package rescue

import (
	"math/big"
	"sync"

	"golang.org/x/crypto/sha3"

	"github.com/consensys/gnark-crypto/ecc/stark-curve/fp"
)

const (
	// StateSize is the width of the Rescue permutation state
	StateSize = 12
	// WordSize is the number of field elements in a hash input/output word
	WordSize = 4
	// NumRounds is the number of Rescue rounds per hash invocation
	NumRounds = 10
	// HashesPerBatch is the number of hash invocations packed into a batch
	HashesPerBatch = 3
	// BatchHeight is the number of trace rows one batch occupies
	BatchHeight = 32
	// NumColumns is the trace width
	NumColumns = StateSize
	// NumPeriodicColumns counts the round constant columns: an additive
	// and a pre-multiplicative half per state element
	NumPeriodicColumns = 2 * StateSize
	// NumConstraints is the total number of constraints
	NumConstraints = 52
)

// roundConstantsSeed is the nothing-up-my-sleeve seed the round constants
// are expanded from
const roundConstantsSeed = "rescue-stark round constants v1"

var (
	constantsOnce sync.Once

	// cubeInverseExponent is (2p-1)/3, the inverse of cubing mod p-1
	cubeInverseExponent *big.Int

	// mds is the 12x12 MDS matrix of the linear layer, a Cauchy matrix
	// m[i][j] = 1/(i + 12 + j)
	mds [StateSize][StateSize]fp.Element

	// mdsInverse is the inverse of mds, used to extract the cube root of
	// a round from the next trace row
	mdsInverse [StateSize][StateSize]fp.Element

	// roundConstantsFirst[r] is K0 of round r+1, added after the linear
	// layer of the first half-round
	roundConstantsFirst [NumRounds][StateSize]fp.Element

	// roundConstantsSecond[r] is K1 of round r+1, added after the linear
	// layer of the second half-round
	roundConstantsSecond [NumRounds][StateSize]fp.Element

	// periodicAdditive[t%32] holds the additive constants (K1 of the round
	// ending at transition t); periodicPremultiplied[t%32] holds
	// mdsInverse * K0 of the round starting at row t+1. Together they are
	// the 24 periodic columns of the constraint system, with period 32.
	periodicAdditive      [BatchHeight][StateSize]fp.Element
	periodicPremultiplied [BatchHeight][StateSize]fp.Element
)

func initConstants() {
	p := fp.Modulus()

	// (2p - 1) / 3; exact because p % 3 == 2
	cubeInverseExponent = new(big.Int).Lsh(p, 1)
	cubeInverseExponent.Sub(cubeInverseExponent, big.NewInt(1))
	cubeInverseExponent.Div(cubeInverseExponent, big.NewInt(3))

	initMDS()
	initRoundConstants()
	initPeriodicColumns()
}

func constants() {
	constantsOnce.Do(initConstants)
}

func initMDS() {
	for i := 0; i < StateSize; i++ {
		for j := 0; j < StateSize; j++ {
			var sum fp.Element
			sum.SetUint64(uint64(i + StateSize + j))
			mds[i][j].Inverse(&sum)
		}
	}
	mdsInverse = invertMatrix(&mds)
}

// invertMatrix inverts a matrix by Gauss-Jordan elimination. The MDS
// matrix is Cauchy, hence always invertible.
func invertMatrix(m *[StateSize][StateSize]fp.Element) [StateSize][StateSize]fp.Element {
	var work, inv [StateSize][StateSize]fp.Element
	work = *m
	for i := 0; i < StateSize; i++ {
		inv[i][i].SetOne()
	}

	for col := 0; col < StateSize; col++ {
		pivot := col
		for work[pivot][col].IsZero() {
			pivot++
		}
		work[col], work[pivot] = work[pivot], work[col]
		inv[col], inv[pivot] = inv[pivot], inv[col]

		var pivInv fp.Element
		pivInv.Inverse(&work[col][col])
		for j := 0; j < StateSize; j++ {
			work[col][j].Mul(&work[col][j], &pivInv)
			inv[col][j].Mul(&inv[col][j], &pivInv)
		}

		for row := 0; row < StateSize; row++ {
			if row == col || work[row][col].IsZero() {
				continue
			}
			factor := work[row][col]
			for j := 0; j < StateSize; j++ {
				var t fp.Element
				t.Mul(&factor, &work[col][j])
				work[row][j].Sub(&work[row][j], &t)
				t.Mul(&factor, &inv[col][j])
				inv[row][j].Sub(&inv[row][j], &t)
			}
		}
	}
	return inv
}

// initRoundConstants expands the round constant tables from a SHAKE-256
// stream seeded with a fixed ASCII string
func initRoundConstants() {
	shake := sha3.NewShake256()
	shake.Write([]byte(roundConstantsSeed))

	buf := make([]byte, fp.Bytes)
	next := func() fp.Element {
		var e fp.Element
		shake.Read(buf)
		e.SetBytes(buf)
		return e
	}

	for r := 0; r < NumRounds; r++ {
		for i := 0; i < StateSize; i++ {
			roundConstantsFirst[r][i] = next()
		}
		for i := 0; i < StateSize; i++ {
			roundConstantsSecond[r][i] = next()
		}
	}
}

func initPeriodicColumns() {
	// premultiplied K0 per round
	var k0Pre [NumRounds][StateSize]fp.Element
	for r := 0; r < NumRounds; r++ {
		k0Pre[r] = mulMatrixVector(&mdsInverse, &roundConstantsFirst[r])
	}

	for tmod := 0; tmod < BatchHeight; tmod++ {
		switch {
		case tmod == 0:
			// first half-round of hash slot 0
			periodicPremultiplied[tmod] = k0Pre[0]
		case tmod%NumRounds == 0 && tmod < 30:
			// tmod 10, 20: virtual re-initialization of the next hash
			periodicAdditive[tmod] = roundConstantsSecond[NumRounds-1]
			periodicPremultiplied[tmod] = k0Pre[0]
		case tmod == 30:
			// final half-round of hash slot 2
			periodicAdditive[tmod] = roundConstantsSecond[NumRounds-1]
		case tmod == 31:
			// cross-batch copy; no round constants involved
		default:
			// middle-of-round transition r -> r+1 within a hash slot
			r := tmod % NumRounds
			periodicAdditive[tmod] = roundConstantsSecond[r-1]
			periodicPremultiplied[tmod] = k0Pre[r]
		}
	}
}

// mulMatrixVector computes m * v
func mulMatrixVector(m *[StateSize][StateSize]fp.Element, v *[StateSize]fp.Element) [StateSize]fp.Element {
	var out [StateSize]fp.Element
	for i := 0; i < StateSize; i++ {
		var acc, t fp.Element
		for j := 0; j < StateSize; j++ {
			t.Mul(&m[i][j], &v[j])
			acc.Add(&acc, &t)
		}
		out[i] = acc
	}
	return out
}

// PeriodicColumnsAt returns the additive and pre-multiplicative round
// constant columns for a trace row, as public precomputed data
func PeriodicColumnsAt(row uint64) (additive, premultiplied [StateSize]fp.Element) {
	constants()
	tmod := row % BatchHeight
	return periodicAdditive[tmod], periodicPremultiplied[tmod]
}
