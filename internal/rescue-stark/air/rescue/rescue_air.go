package rescue

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/stark-curve/fp"
	"github.com/vybium/rescue-stark/internal/rescue-stark/air"
	"github.com/vybium/rescue-stark/internal/rescue-stark/algebra"
	"github.com/vybium/rescue-stark/internal/rescue-stark/utils"
)

// Constraint group indices. Each group shares a row domain; the group
// sizes sum to NumConstraints.
const (
	// GroupRound: middle-of-round transitions within a hash slot
	GroupRound = iota
	// GroupHashStart: first half-round from the materialized init row
	GroupHashStart
	// GroupVirtualStart: first half-round of hash slots 1 and 2, whose
	// init states are virtual
	GroupVirtualStart
	// GroupBatchOutput: row 31 materializes the final half-round
	GroupBatchOutput
	// GroupBatchCopy: batch output word carries into the next batch
	GroupBatchCopy
	// GroupOutputBoundary: the last real row equals the public output
	GroupOutputBoundary

	// NumConstraintGroups is the number of constraint row domains
	NumConstraintGroups
)

// groupSizes[g] is the number of constraints in group g
var groupSizes = [NumConstraintGroups]int{12, 12, 8, 12, 4, 4}

// groupDegrees[g] is the algebraic degree of group g's constraints in the
// trace cells
var groupDegrees = [NumConstraintGroups]int{3, 3, 3, 3, 1, 1}

// PublicInput is the claim the AIR proves: the chain's output word and
// the number of hash invocations
type PublicInput struct {
	Output      Word
	ChainLength uint64
}

var _ air.Air = (*RescueAir)(nil)

// RescueAir arithmetizes the Rescue hash chain claim
type RescueAir struct {
	output      Word
	chainLength uint64
	numBatches  uint64
	traceLength uint64
}

// NewRescueAir creates the AIR for a chain of chainLength hash
// invocations ending in the given output word. Construction fails if the
// trace cannot hold ceil(chainLength/3) batches of 32 rows.
func NewRescueAir(output Word, chainLength uint64) (*RescueAir, error) {
	constants()

	if chainLength == 0 {
		return nil, fmt.Errorf("chain length must be positive")
	}

	numBatches := utils.DivCeil(chainLength, HashesPerBatch)
	traceLength := utils.NextPowerOfTwo(numBatches * BatchHeight)
	if traceLength < numBatches*BatchHeight {
		return nil, fmt.Errorf("data coset is too small: %d rows cannot hold %d batches", traceLength, numBatches)
	}

	return &RescueAir{
		output:      output,
		chainLength: chainLength,
		numBatches:  numBatches,
		traceLength: traceLength,
	}, nil
}

// NumColumns returns the trace width
func (a *RescueAir) NumColumns() int { return NumColumns }

// TraceLength returns the number of trace rows
func (a *RescueAir) TraceLength() uint64 { return a.traceLength }

// ChainLength returns the declared number of hash invocations
func (a *RescueAir) ChainLength() uint64 { return a.chainLength }

// Output returns the declared public output word
func (a *RescueAir) Output() Word { return a.output }

// NumRandomCoefficients returns the number of verifier coefficients the
// composition polynomial consumes: one pair per constraint
func (a *RescueAir) NumRandomCoefficients() int { return 2 * NumConstraints }

// GetCompositionPolynomialDegreeBound returns the degree bound of the
// composition polynomial
func (a *RescueAir) GetCompositionPolynomialDegreeBound() uint64 {
	return 4 * a.traceLength
}

// GetMask enumerates the trace cells the constraints read relative to an
// evaluation row: the full current row and the full next row
func (a *RescueAir) GetMask() []air.CellMask {
	mask := make([]air.CellMask, 0, 2*NumColumns)
	for offset := 0; offset <= 1; offset++ {
		for col := 0; col < NumColumns; col++ {
			mask = append(mask, air.CellMask{RowOffset: offset, Column: col})
		}
	}
	return mask
}

// lastRow is the index of the last row of the last real batch
func (a *RescueAir) lastRow() uint64 {
	return a.numBatches*BatchHeight - 1
}

// padWitness validates the witness length and extends the chain with zero
// words to a whole number of batches. The first hash consumes two words,
// so a chain of n invocations needs n+1 words.
func (a *RescueAir) padWitness(witness Witness) (Witness, error) {
	if uint64(len(witness)) != a.chainLength+1 {
		return nil, fmt.Errorf("witness has %d words, chain of length %d needs %d", len(witness), a.chainLength, a.chainLength+1)
	}

	paddedChain := a.numBatches * HashesPerBatch
	padded := make(Witness, paddedChain+1)
	copy(padded, witness)
	return padded, nil
}

// GetTrace generates the execution trace for the witness. Rows past the
// last real batch repeat the final row.
func (a *RescueAir) GetTrace(witness Witness) (*air.Trace, error) {
	words, err := a.padWitness(witness)
	if err != nil {
		return nil, err
	}

	trace, err := air.NewTrace(a.traceLength, NumColumns)
	if err != nil {
		return nil, err
	}

	carry := words[0]
	hashIdx := uint64(0)
	for b := uint64(0); b < a.numBatches; b++ {
		base := b * BatchHeight
		for h := 0; h < HashesPerBatch; h++ {
			init := initialState(carry, words[hashIdx+1])
			if h == 0 {
				if err := trace.SetRow(base, init[:]); err != nil {
					return nil, err
				}
			}

			rowBase := base + uint64(h*NumRounds)
			var emitErr error
			final := hashRounds(init, func(round int, middle State) {
				if err := trace.SetRow(rowBase+uint64(round), middle[:]); err != nil {
					emitErr = err
				}
			})
			if emitErr != nil {
				return nil, emitErr
			}

			if h == HashesPerBatch-1 {
				if err := trace.SetRow(base+BatchHeight-1, final[:]); err != nil {
					return nil, err
				}
			}
			carry = final.OutputWord()
			hashIdx++
		}
	}

	if carry != a.output {
		return nil, fmt.Errorf("witness does not hash to the declared output")
	}

	last := a.lastRow()
	lastRowValues := trace.Row(last)
	for t := last + 1; t < a.traceLength; t++ {
		if err := trace.SetRow(t, lastRowValues); err != nil {
			return nil, err
		}
	}
	return trace, nil
}

// PublicInputFromPrivateInput folds a witness through the hash chain and
// returns the public output word. The fold applies the same zero-word
// padding as trace generation, so the two agree bit for bit.
func PublicInputFromPrivateInput(witness Witness, chainLength uint64) (Word, error) {
	constants()

	if chainLength == 0 {
		return Word{}, fmt.Errorf("chain length must be positive")
	}
	if uint64(len(witness)) != chainLength+1 {
		return Word{}, fmt.Errorf("witness has %d words, chain of length %d needs %d", len(witness), chainLength, chainLength+1)
	}

	paddedChain := utils.DivCeil(chainLength, HashesPerBatch) * HashesPerBatch
	words := make(Witness, paddedChain+1)
	copy(words, witness)

	carry := words[0]
	for k := uint64(0); k < paddedChain; k++ {
		carry = HashWord(carry, words[k+1])
	}
	return carry, nil
}

// constraintSelectors reports which constraint groups are active at a
// trace row. Rows past the last real batch satisfy everything vacuously.
func (a *RescueAir) constraintSelectors(t uint64) [NumConstraintGroups]bool {
	var sel [NumConstraintGroups]bool
	last := a.lastRow()
	if t > last {
		return sel
	}

	tmod := int(t % BatchHeight)
	transition := t < last
	sel[GroupRound] = transition && tmod%NumRounds != 0 && tmod < 30
	sel[GroupHashStart] = transition && tmod == 0
	sel[GroupVirtualStart] = transition && (tmod == 10 || tmod == 20)
	sel[GroupBatchOutput] = transition && tmod == 30
	sel[GroupBatchCopy] = transition && tmod == 31
	sel[GroupOutputBoundary] = t == last
	return sel
}

// activeRows counts the rows on which each constraint group is active,
// i.e. the degree of the group's vanishing domain
func (a *RescueAir) activeRows() [NumConstraintGroups]uint64 {
	nb := a.numBatches
	return [NumConstraintGroups]uint64{
		GroupRound:          27 * nb,
		GroupHashStart:      nb,
		GroupVirtualStart:   2 * nb,
		GroupBatchOutput:    nb,
		GroupBatchCopy:      nb - 1,
		GroupOutputBoundary: 1,
	}
}

// constraintValues evaluates all 52 constraints over the given neighbor
// rows, returning one value per constraint in coefficient order. Inactive
// groups contribute zeros. The routine is generic over the element type
// so the outer prover can run it over base field trace rows and over
// extension field composition rows alike.
func constraintValues[E any](
	a *RescueAir,
	d algebra.Domain[E],
	current, next []E,
	periodicAdditive, periodicPremultiplied *[StateSize]fp.Element,
	selectors [NumConstraintGroups]bool,
) ([]E, error) {
	if len(current) != StateSize || len(next) != StateSize {
		return nil, fmt.Errorf("neighbor rows must have %d elements, got %d and %d", StateSize, len(current), len(next))
	}

	// u = mdsInverse * next - premultiplied K0: the cube root of the
	// second half-round output, extracted from the next row
	var u, uCube, roundImage [StateSize]E
	for i := 0; i < StateSize; i++ {
		acc := d.Zero()
		for j := 0; j < StateSize; j++ {
			acc = d.Add(acc, d.MulScalar(next[j], &mdsInverse[i][j]))
		}
		u[i] = d.SubScalar(acc, &periodicPremultiplied[i])
		uCube[i] = d.Mul(d.Mul(u[i], u[i]), u[i])
	}

	// roundImage = mds * current^3 + K1: the second half-round applied to
	// the current row
	var sCube [StateSize]E
	for i := 0; i < StateSize; i++ {
		sCube[i] = d.Mul(d.Mul(current[i], current[i]), current[i])
	}
	for i := 0; i < StateSize; i++ {
		acc := d.Zero()
		for j := 0; j < StateSize; j++ {
			acc = d.Add(acc, d.MulScalar(sCube[j], &mds[i][j]))
		}
		acc = d.Add(acc, d.FromBase(&periodicAdditive[i]))
		roundImage[i] = acc
	}

	values := make([]E, 0, NumConstraints)
	emit := func(active bool, v E) {
		if !active {
			v = d.Zero()
		}
		values = append(values, v)
	}

	// GroupRound: u^3 equals the completed previous round
	for i := 0; i < StateSize; i++ {
		emit(selectors[GroupRound], d.Sub(uCube[i], roundImage[i]))
	}

	// GroupHashStart: u^3 equals the materialized init row; the capacity
	// part of u is zero (init cells 8..11 are never read)
	for i := 0; i < 2*WordSize; i++ {
		emit(selectors[GroupHashStart], d.Sub(uCube[i], current[i]))
	}
	for i := 2 * WordSize; i < StateSize; i++ {
		emit(selectors[GroupHashStart], u[i])
	}

	// GroupVirtualStart: the output word of the finished hash carries
	// into the virtual init; the capacity part of u is zero. Cells 4..7
	// of the virtual init are the witness injection point and stay free.
	for i := 0; i < WordSize; i++ {
		emit(selectors[GroupVirtualStart], d.Sub(uCube[i], roundImage[i]))
	}
	for i := 2 * WordSize; i < StateSize; i++ {
		emit(selectors[GroupVirtualStart], u[i])
	}

	// GroupBatchOutput: row 31 holds the completed final round
	for i := 0; i < StateSize; i++ {
		emit(selectors[GroupBatchOutput], d.Sub(next[i], roundImage[i]))
	}

	// GroupBatchCopy: the output word flows into the next batch's init
	for i := 0; i < WordSize; i++ {
		emit(selectors[GroupBatchCopy], d.Sub(next[i], current[i]))
	}

	// GroupOutputBoundary: the last real row carries the public output
	for i := 0; i < WordSize; i++ {
		emit(selectors[GroupOutputBoundary], d.SubScalar(current[i], &a.output[i]))
	}

	return values, nil
}

// ConstraintsEval combines all constraints at one evaluation point into a
// single extension field value: each constraint value is weighted by
// alpha_j + beta_j * pointPower of its group and accumulated.
func ConstraintsEval[E any](
	a *RescueAir,
	d algebra.Domain[E],
	current, next []E,
	periodicAdditive, periodicPremultiplied *[StateSize]fp.Element,
	randomCoefficients []algebra.ExtensionElement,
	pointPowers *[NumConstraintGroups]algebra.ExtensionElement,
	selectors [NumConstraintGroups]bool,
) (algebra.ExtensionElement, error) {
	var res algebra.ExtensionElement

	if len(randomCoefficients) != 2*NumConstraints {
		return res, fmt.Errorf("expected %d random coefficients, got %d", 2*NumConstraints, len(randomCoefficients))
	}

	values, err := constraintValues(a, d, current, next, periodicAdditive, periodicPremultiplied, selectors)
	if err != nil {
		return res, err
	}

	j := 0
	for g := 0; g < NumConstraintGroups; g++ {
		for k := 0; k < groupSizes[g]; k++ {
			cExt := d.ToExtension(values[j])
			var weight, term algebra.ExtensionElement
			weight.Mul(&randomCoefficients[2*j+1], &pointPowers[g])
			weight.Add(&weight, &randomCoefficients[2*j])
			term.Mul(&weight, &cExt)
			res.Add(&res, &term)
			j++
		}
	}
	return res, nil
}

// ConstraintResiduals evaluates every constraint at a trace row over the
// base field, returning one residual per constraint. A valid trace yields
// all zeros. Used for completeness checks and for verifying opened rows.
func (a *RescueAir) ConstraintResiduals(current, next []fp.Element, t uint64) ([]fp.Element, error) {
	additive, premultiplied := PeriodicColumnsAt(t)
	return constraintValues(
		a, algebra.BaseDomain{}, current, next,
		&additive, &premultiplied, a.constraintSelectors(t),
	)
}
