package rescue

import (
	"fmt"
	"math/big"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/consensys/gnark-crypto/ecc/stark-curve/fp"
	"github.com/vybium/rescue-stark/internal/rescue-stark/air"
	"github.com/vybium/rescue-stark/internal/rescue-stark/algebra"
)

// CompositionConfig carries everything the composition polynomial is
// built from
type CompositionConfig struct {
	Air                *RescueAir
	RandomCoefficients []algebra.ExtensionElement
}

// CompositionPolynomial is the random linear combination of all
// constraints, immutable once constructed
type CompositionPolynomial struct {
	air            *RescueAir
	coefficients   []algebra.ExtensionElement
	traceGenerator fp.Element

	// adjustments[g] is the degree adjustment exponent of group g: the
	// shifted companion x^adjustments[g] lifts the group's quotient to
	// the composition degree bound
	adjustments [NumConstraintGroups]*big.Int
}

// NewCompositionPolynomial builds a composition polynomial from a config
func NewCompositionPolynomial(cfg CompositionConfig) (*CompositionPolynomial, error) {
	a := cfg.Air
	if a == nil {
		return nil, fmt.Errorf("composition config has no AIR")
	}
	if len(cfg.RandomCoefficients) != a.NumRandomCoefficients() {
		return nil, fmt.Errorf("expected %d random coefficients, got %d", a.NumRandomCoefficients(), len(cfg.RandomCoefficients))
	}

	coefficients := make([]algebra.ExtensionElement, len(cfg.RandomCoefficients))
	copy(coefficients, cfg.RandomCoefficients)

	c := &CompositionPolynomial{
		air:            a,
		coefficients:   coefficients,
		traceGenerator: traceGenerator(a.TraceLength()),
	}

	bound := int64(a.GetCompositionPolynomialDegreeBound())
	active := a.activeRows()
	for g := 0; g < NumConstraintGroups; g++ {
		// deg(constraint * trace polys) minus the vanishing domain degree
		quotientDegree := int64(groupDegrees[g])*int64(a.TraceLength()-1) - int64(active[g])
		c.adjustments[g] = big.NewInt(bound - 1 - quotientDegree)
	}
	return c, nil
}

// CreateCompositionPolynomial builds the composition polynomial for
// verifier-supplied random coefficients
func (a *RescueAir) CreateCompositionPolynomial(randomCoefficients []algebra.ExtensionElement) (*CompositionPolynomial, error) {
	return NewCompositionPolynomial(CompositionConfig{Air: a, RandomCoefficients: randomCoefficients})
}

// traceGenerator returns a generator of the order-T multiplicative
// subgroup. 3 is a quadratic non-residue mod p, so its order carries the
// full 2-adic part of p-1 and 3^((p-1)/T) has exact order T for any
// power-of-two T up to 2^192.
func traceGenerator(traceLength uint64) fp.Element {
	exp := new(big.Int).Sub(fp.Modulus(), big.NewInt(1))
	exp.Div(exp, new(big.Int).SetUint64(traceLength))

	var three, g fp.Element
	three.SetUint64(3)
	g.Exp(three, exp)
	return g
}

// EvalAtRow evaluates the composition polynomial at trace row t. For a
// trace satisfying all constraints the result is zero at every row.
func (c *CompositionPolynomial) EvalAtRow(trace *air.Trace, t uint64) (algebra.ExtensionElement, error) {
	traceLength := c.air.TraceLength()
	if trace.Length() != traceLength {
		return algebra.ExtensionElement{}, fmt.Errorf("trace has %d rows, AIR expects %d", trace.Length(), traceLength)
	}
	if t >= traceLength {
		return algebra.ExtensionElement{}, fmt.Errorf("row %d out of range [0, %d)", t, traceLength)
	}

	current := trace.Row(t)
	next := trace.Row((t + 1) % traceLength)
	additive, premultiplied := PeriodicColumnsAt(t)

	var x fp.Element
	x.Exp(c.traceGenerator, new(big.Int).SetUint64(t))

	var powers [NumConstraintGroups]algebra.ExtensionElement
	for g := 0; g < NumConstraintGroups; g++ {
		var xp fp.Element
		xp.Exp(x, c.adjustments[g])
		powers[g].SetBase(&xp)
	}

	return ConstraintsEval(
		c.air, algebra.BaseDomain{}, current, next,
		&additive, &premultiplied, c.coefficients, &powers,
		c.air.constraintSelectors(t),
	)
}

// EvalOnTrace evaluates the composition polynomial at every trace row in
// parallel. Rows are independent, so the sweep splits across workers.
func (c *CompositionPolynomial) EvalOnTrace(trace *air.Trace) ([]algebra.ExtensionElement, error) {
	traceLength := c.air.TraceLength()
	out := make([]algebra.ExtensionElement, traceLength)

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))

	chunk := chunkSize(traceLength)
	for start := uint64(0); start < traceLength; start += chunk {
		start := start
		end := min(start+chunk, traceLength)
		g.Go(func() error {
			for t := start; t < end; t++ {
				v, err := c.EvalAtRow(trace, t)
				if err != nil {
					return err
				}
				out[t] = v
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// CheckTrace verifies that every constraint vanishes at every trace row.
// Rows are checked in parallel.
func (a *RescueAir) CheckTrace(trace *air.Trace) error {
	if trace.Length() != a.traceLength {
		return fmt.Errorf("trace has %d rows, AIR expects %d", trace.Length(), a.traceLength)
	}

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))

	chunk := chunkSize(a.traceLength)
	for start := uint64(0); start < a.traceLength; start += chunk {
		start := start
		end := min(start+chunk, a.traceLength)
		g.Go(func() error {
			for t := start; t < end; t++ {
				current := trace.Row(t)
				next := trace.Row((t + 1) % a.traceLength)
				residuals, err := a.ConstraintResiduals(current, next, t)
				if err != nil {
					return err
				}
				for j := range residuals {
					if !residuals[j].IsZero() {
						return fmt.Errorf("constraint %d violated at row %d", j, t)
					}
				}
			}
			return nil
		})
	}
	return g.Wait()
}

func chunkSize(n uint64) uint64 {
	workers := uint64(runtime.GOMAXPROCS(0))
	if workers == 0 {
		workers = 1
	}
	c := (n + workers - 1) / workers
	if c == 0 {
		c = 1
	}
	return c
}
