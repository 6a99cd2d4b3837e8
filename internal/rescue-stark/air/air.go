// Package air defines the Algebraic Intermediate Representation surface:
// an execution trace table and the interface a concrete constraint system
// exposes to the outer prover.
package air

// CellMask identifies one trace cell a constraint reads, relative to the
// evaluation row
type CellMask struct {
	RowOffset int
	Column    int
}

// Air is an arithmetization of a computation into polynomial constraints
// over an execution trace
type Air interface {
	// NumColumns returns the width of the trace
	NumColumns() int

	// TraceLength returns the number of trace rows (a power of 2)
	TraceLength() uint64

	// NumRandomCoefficients returns how many verifier-supplied extension
	// field coefficients the composition polynomial consumes
	NumRandomCoefficients() int

	// GetMask enumerates every (row offset, column) pair any constraint
	// reads, relative to the evaluation point
	GetMask() []CellMask

	// GetCompositionPolynomialDegreeBound returns the degree bound of the
	// random linear combination of all constraints
	GetCompositionPolynomialDegreeBound() uint64
}
