package rescue

import (
	"testing"

	"github.com/consensys/gnark-crypto/ecc/stark-curve/fp"

	"github.com/vybium/rescue-stark/internal/rescue-stark/algebra"
)

func randomWitness(t *testing.T, chainLength uint64) Witness {
	t.Helper()
	witness := make(Witness, chainLength+1)
	for i := range witness {
		witness[i] = randomWord(t)
	}
	return witness
}

func provenAir(t *testing.T, chainLength uint64) (*RescueAir, Witness) {
	t.Helper()
	witness := randomWitness(t, chainLength)
	output, err := PublicInputFromPrivateInput(witness, chainLength)
	if err != nil {
		t.Fatalf("Failed to compute public input: %v", err)
	}
	a, err := NewRescueAir(output, chainLength)
	if err != nil {
		t.Fatalf("Failed to create AIR: %v", err)
	}
	return a, witness
}

// TestNewRescueAir tests AIR construction and derived sizes
func TestNewRescueAir(t *testing.T) {
	tests := []struct {
		chainLength uint64
		traceLength uint64
	}{
		{1, 32},
		{3, 32},
		{4, 64},
		{6, 64},
		{7, 128},
		{9, 128},
	}

	for _, tt := range tests {
		a, err := NewRescueAir(Word{}, tt.chainLength)
		if err != nil {
			t.Fatalf("Failed to create AIR for chain length %d: %v", tt.chainLength, err)
		}
		if a.TraceLength() != tt.traceLength {
			t.Errorf("Chain length %d: expected trace length %d, got %d", tt.chainLength, tt.traceLength, a.TraceLength())
		}
		if a.GetCompositionPolynomialDegreeBound() != 4*tt.traceLength {
			t.Errorf("Chain length %d: wrong composition degree bound", tt.chainLength)
		}
	}

	if _, err := NewRescueAir(Word{}, 0); err == nil {
		t.Error("Expected error for zero chain length")
	}
}

// TestRescueAirShape tests the fixed AIR dimensions
func TestRescueAirShape(t *testing.T) {
	a, _ := provenAir(t, 3)

	if a.NumColumns() != 12 {
		t.Errorf("Expected 12 columns, got %d", a.NumColumns())
	}
	if a.NumRandomCoefficients() != 104 {
		t.Errorf("Expected 104 random coefficients, got %d", a.NumRandomCoefficients())
	}

	mask := a.GetMask()
	if len(mask) != 24 {
		t.Fatalf("Expected a 24-cell mask, got %d", len(mask))
	}
	for i, cell := range mask {
		expectedOffset := i / 12
		expectedColumn := i % 12
		if cell.RowOffset != expectedOffset || cell.Column != expectedColumn {
			t.Errorf("Mask cell %d is (%d, %d), expected (%d, %d)", i, cell.RowOffset, cell.Column, expectedOffset, expectedColumn)
		}
	}

	total := 0
	for _, size := range groupSizes {
		total += size
	}
	if total != NumConstraints {
		t.Errorf("Group sizes sum to %d, expected %d", total, NumConstraints)
	}
}

// TestPublicInputFromPrivateInput tests the hash chain fold
func TestPublicInputFromPrivateInput(t *testing.T) {
	witness := randomWitness(t, 3)

	output, err := PublicInputFromPrivateInput(witness, 3)
	if err != nil {
		t.Fatalf("Failed to compute public input: %v", err)
	}

	// Fold by hand: chain length 3 is exactly one batch, no padding
	carry := witness[0]
	for k := 0; k < 3; k++ {
		carry = HashWord(carry, witness[k+1])
	}
	if output != carry {
		t.Error("Public input must equal the folded hash chain")
	}

	if _, err := PublicInputFromPrivateInput(witness[:3], 3); err == nil {
		t.Error("Expected error for a witness of the wrong length")
	}
	if _, err := PublicInputFromPrivateInput(witness, 0); err == nil {
		t.Error("Expected error for zero chain length")
	}
}

// TestPublicInputPadding tests that a partial final batch is padded with
// zero words
func TestPublicInputPadding(t *testing.T) {
	witness := randomWitness(t, 4)

	output, err := PublicInputFromPrivateInput(witness, 4)
	if err != nil {
		t.Fatalf("Failed to compute public input: %v", err)
	}

	// Chain length 4 pads to 6 invocations with zero words
	carry := witness[0]
	for k := 0; k < 4; k++ {
		carry = HashWord(carry, witness[k+1])
	}
	carry = HashWord(carry, Word{})
	carry = HashWord(carry, Word{})
	if output != carry {
		t.Error("Padded fold must append zero words up to a whole batch")
	}
}

// TestGetTraceLayout tests the row layout of a generated trace
func TestGetTraceLayout(t *testing.T) {
	a, witness := provenAir(t, 3)

	trace, err := a.GetTrace(witness)
	if err != nil {
		t.Fatalf("Failed to generate trace: %v", err)
	}
	if trace.Length() != 32 {
		t.Fatalf("Expected 32 rows, got %d", trace.Length())
	}

	// Row 0 holds [w0 || w1 || 0^4]
	row0 := trace.Row(0)
	for i := 0; i < WordSize; i++ {
		if !row0[i].Equal(&witness[0][i]) {
			t.Error("Row 0 must start with the initial carry")
			break
		}
	}
	for i := 0; i < WordSize; i++ {
		if !row0[WordSize+i].Equal(&witness[1][i]) {
			t.Error("Row 0 must hold the first chain word")
			break
		}
	}
	for i := 2 * WordSize; i < StateSize; i++ {
		if !row0[i].IsZero() {
			t.Error("Row 0 capacity elements must be zero")
			break
		}
	}

	// Row 31 carries the chain output in its first word
	output := a.Output()
	row31 := trace.Row(31)
	for i := 0; i < WordSize; i++ {
		if !row31[i].Equal(&output[i]) {
			t.Error("Row 31 must carry the public output")
			break
		}
	}
}

// TestGetTracePadding tests that rows past the last real batch repeat the
// final row
func TestGetTracePadding(t *testing.T) {
	a, witness := provenAir(t, 7)

	trace, err := a.GetTrace(witness)
	if err != nil {
		t.Fatalf("Failed to generate trace: %v", err)
	}
	if trace.Length() != 128 {
		t.Fatalf("Expected 128 rows, got %d", trace.Length())
	}

	last := a.lastRow()
	if last != 95 {
		t.Fatalf("Expected last real row 95, got %d", last)
	}

	lastRow := trace.Row(last)
	for row := last + 1; row < trace.Length(); row++ {
		padded := trace.Row(row)
		for i := range padded {
			if !padded[i].Equal(&lastRow[i]) {
				t.Fatalf("Padded row %d does not repeat the last real row", row)
			}
		}
	}
}

// TestGetTraceRejectsWrongWitness tests witness validation
func TestGetTraceRejectsWrongWitness(t *testing.T) {
	a, witness := provenAir(t, 3)

	if _, err := a.GetTrace(witness[:2]); err == nil {
		t.Error("Expected error for a short witness")
	}

	// A witness for a different chain does not hash to the output
	other := randomWitness(t, 3)
	if _, err := a.GetTrace(other); err == nil {
		t.Error("Expected error for a witness that does not match the output")
	}
}

// TestConstraintResidualsZeroOnValidTrace tests completeness: every
// constraint vanishes on every row of a valid trace
func TestConstraintResidualsZeroOnValidTrace(t *testing.T) {
	for _, chainLength := range []uint64{1, 3, 4, 7} {
		a, witness := provenAir(t, chainLength)
		trace, err := a.GetTrace(witness)
		if err != nil {
			t.Fatalf("Chain length %d: failed to generate trace: %v", chainLength, err)
		}

		n := trace.Length()
		for row := uint64(0); row < n; row++ {
			residuals, err := a.ConstraintResiduals(trace.Row(row), trace.Row((row+1)%n), row)
			if err != nil {
				t.Fatalf("Chain length %d: failed to evaluate constraints: %v", chainLength, err)
			}
			if len(residuals) != NumConstraints {
				t.Fatalf("Expected %d residuals, got %d", NumConstraints, len(residuals))
			}
			for i := range residuals {
				if !residuals[i].IsZero() {
					t.Errorf("Chain length %d: constraint %d violated at row %d", chainLength, i, row)
				}
			}
		}
	}
}

// TestConstraintResidualsDetectTampering tests soundness on the trace
// level: corrupting a single cell violates some constraint
func TestConstraintResidualsDetectTampering(t *testing.T) {
	a, witness := provenAir(t, 3)
	trace, err := a.GetTrace(witness)
	if err != nil {
		t.Fatalf("Failed to generate trace: %v", err)
	}

	var one fp.Element
	one.SetOne()
	bad := trace.Get(5, 7)
	bad.Add(&bad, &one)
	trace.Set(5, 7, bad)

	n := trace.Length()
	violated := false
	for row := uint64(0); row < n && !violated; row++ {
		residuals, err := a.ConstraintResiduals(trace.Row(row), trace.Row((row+1)%n), row)
		if err != nil {
			t.Fatalf("Failed to evaluate constraints: %v", err)
		}
		for i := range residuals {
			if !residuals[i].IsZero() {
				violated = true
				break
			}
		}
	}
	if !violated {
		t.Error("Corrupting a trace cell must violate a constraint")
	}
}

// TestConstraintsEvalDomainAgreement tests that evaluating the combined
// constraints over the base field and over embedded extension elements
// gives the same result
func TestConstraintsEvalDomainAgreement(t *testing.T) {
	a, witness := provenAir(t, 3)
	trace, err := a.GetTrace(witness)
	if err != nil {
		t.Fatalf("Failed to generate trace: %v", err)
	}

	coefficients := make([]algebra.ExtensionElement, a.NumRandomCoefficients())
	for i := range coefficients {
		coefficients[i].A0.SetUint64(uint64(2*i + 1))
		coefficients[i].A1.SetUint64(uint64(3*i + 2))
	}
	var pointPowers [NumConstraintGroups]algebra.ExtensionElement
	for g := range pointPowers {
		pointPowers[g].A0.SetUint64(uint64(g + 5))
		pointPowers[g].A1.SetUint64(uint64(g + 11))
	}

	for _, row := range []uint64{0, 1, 10, 30, 31} {
		current := trace.Row(row)
		next := trace.Row((row + 1) % trace.Length())
		additive, premultiplied := PeriodicColumnsAt(row)
		selectors := a.constraintSelectors(row)

		base, err := ConstraintsEval(
			a, algebra.BaseDomain{}, current, next,
			&additive, &premultiplied, coefficients, &pointPowers, selectors,
		)
		if err != nil {
			t.Fatalf("Base domain evaluation failed: %v", err)
		}

		currentExt := make([]algebra.ExtensionElement, len(current))
		nextExt := make([]algebra.ExtensionElement, len(next))
		for i := range current {
			currentExt[i].SetBase(&current[i])
			nextExt[i].SetBase(&next[i])
		}
		ext, err := ConstraintsEval(
			a, algebra.ExtensionDomain{}, currentExt, nextExt,
			&additive, &premultiplied, coefficients, &pointPowers, selectors,
		)
		if err != nil {
			t.Fatalf("Extension domain evaluation failed: %v", err)
		}

		if !base.Equal(&ext) {
			t.Errorf("Base and extension domain evaluations differ at row %d", row)
		}
	}
}
