package rescue

import (
	"math/big"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/stark-curve/fp"

	"github.com/vybium/rescue-stark/internal/rescue-stark/algebra"
)

func testCoefficients(n int) []algebra.ExtensionElement {
	coefficients := make([]algebra.ExtensionElement, n)
	for i := range coefficients {
		coefficients[i].A0.SetUint64(uint64(7*i + 3))
		coefficients[i].A1.SetUint64(uint64(5*i + 1))
	}
	return coefficients
}

// TestTraceGeneratorOrder tests that the trace generator has exact
// order T
func TestTraceGeneratorOrder(t *testing.T) {
	for _, traceLength := range []uint64{32, 64, 128} {
		g := traceGenerator(traceLength)

		var full fp.Element
		full.Exp(g, new(big.Int).SetUint64(traceLength))
		var one fp.Element
		one.SetOne()
		if !full.Equal(&one) {
			t.Errorf("Generator for T=%d does not have order dividing T", traceLength)
		}

		var half fp.Element
		half.Exp(g, new(big.Int).SetUint64(traceLength/2))
		if half.Equal(&one) {
			t.Errorf("Generator for T=%d has order less than T", traceLength)
		}
	}
}

// TestNewCompositionPolynomial tests construction and validation
func TestNewCompositionPolynomial(t *testing.T) {
	a, _ := provenAir(t, 3)

	if _, err := a.CreateCompositionPolynomial(testCoefficients(a.NumRandomCoefficients())); err != nil {
		t.Fatalf("Failed to create composition polynomial: %v", err)
	}

	if _, err := a.CreateCompositionPolynomial(testCoefficients(10)); err == nil {
		t.Error("Expected error for the wrong number of coefficients")
	}

	if _, err := NewCompositionPolynomial(CompositionConfig{}); err == nil {
		t.Error("Expected error for a config without an AIR")
	}
}

// TestCompositionVanishesOnValidTrace tests that the composition
// polynomial is zero on every row of a valid trace
func TestCompositionVanishesOnValidTrace(t *testing.T) {
	for _, chainLength := range []uint64{3, 4} {
		a, witness := provenAir(t, chainLength)
		trace, err := a.GetTrace(witness)
		if err != nil {
			t.Fatalf("Chain length %d: failed to generate trace: %v", chainLength, err)
		}

		composition, err := a.CreateCompositionPolynomial(testCoefficients(a.NumRandomCoefficients()))
		if err != nil {
			t.Fatalf("Chain length %d: failed to create composition polynomial: %v", chainLength, err)
		}

		values, err := composition.EvalOnTrace(trace)
		if err != nil {
			t.Fatalf("Chain length %d: failed to evaluate composition polynomial: %v", chainLength, err)
		}
		if uint64(len(values)) != trace.Length() {
			t.Fatalf("Expected %d values, got %d", trace.Length(), len(values))
		}
		for row, v := range values {
			if !v.IsZero() {
				t.Errorf("Chain length %d: composition polynomial is nonzero at row %d", chainLength, row)
			}
		}
	}
}

// TestEvalAtRowMatchesEvalOnTrace tests that the two evaluation paths
// agree
func TestEvalAtRowMatchesEvalOnTrace(t *testing.T) {
	a, witness := provenAir(t, 3)
	trace, err := a.GetTrace(witness)
	if err != nil {
		t.Fatalf("Failed to generate trace: %v", err)
	}
	composition, err := a.CreateCompositionPolynomial(testCoefficients(a.NumRandomCoefficients()))
	if err != nil {
		t.Fatalf("Failed to create composition polynomial: %v", err)
	}

	values, err := composition.EvalOnTrace(trace)
	if err != nil {
		t.Fatalf("Failed to evaluate on trace: %v", err)
	}
	for _, row := range []uint64{0, 7, 31} {
		v, err := composition.EvalAtRow(trace, row)
		if err != nil {
			t.Fatalf("Failed to evaluate at row %d: %v", row, err)
		}
		if !v.Equal(&values[row]) {
			t.Errorf("EvalAtRow and EvalOnTrace disagree at row %d", row)
		}
	}
}

// TestCheckTrace tests the completeness check and its tamper detection
func TestCheckTrace(t *testing.T) {
	a, witness := provenAir(t, 3)
	trace, err := a.GetTrace(witness)
	if err != nil {
		t.Fatalf("Failed to generate trace: %v", err)
	}

	if err := a.CheckTrace(trace); err != nil {
		t.Fatalf("CheckTrace failed on a valid trace: %v", err)
	}

	var one fp.Element
	one.SetOne()
	bad := trace.Get(12, 3)
	bad.Add(&bad, &one)
	trace.Set(12, 3, bad)

	if err := a.CheckTrace(trace); err == nil {
		t.Error("Expected CheckTrace to reject a corrupted trace")
	}
}
