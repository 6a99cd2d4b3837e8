package air

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/stark-curve/fp"
)

// Trace is an execution trace table: NumColumns columns of Length rows of
// base field elements. Cells are written once during trace generation and
// read-only afterwards.
type Trace struct {
	columns [][]fp.Element
	length  uint64
}

// NewTrace allocates a zeroed trace of the given dimensions
func NewTrace(length uint64, numColumns int) (*Trace, error) {
	if length == 0 || numColumns <= 0 {
		return nil, fmt.Errorf("invalid trace dimensions: %d rows x %d columns", length, numColumns)
	}

	columns := make([][]fp.Element, numColumns)
	for j := range columns {
		columns[j] = make([]fp.Element, length)
	}
	return &Trace{columns: columns, length: length}, nil
}

// Length returns the number of rows
func (t *Trace) Length() uint64 {
	return t.length
}

// NumColumns returns the number of columns
func (t *Trace) NumColumns() int {
	return len(t.columns)
}

// Get returns the cell at the given row and column
func (t *Trace) Get(row uint64, column int) fp.Element {
	return t.columns[column][row]
}

// Set writes the cell at the given row and column
func (t *Trace) Set(row uint64, column int, value fp.Element) {
	t.columns[column][row] = value
}

// Row returns a copy of one trace row
func (t *Trace) Row(row uint64) []fp.Element {
	out := make([]fp.Element, len(t.columns))
	for j := range t.columns {
		out[j] = t.columns[j][row]
	}
	return out
}

// LastRow returns a copy of the final trace row
func (t *Trace) LastRow() []fp.Element {
	return t.Row(t.length - 1)
}

// SetRow writes a full trace row
func (t *Trace) SetRow(row uint64, values []fp.Element) error {
	if len(values) != len(t.columns) {
		return fmt.Errorf("row width mismatch: expected %d, got %d", len(t.columns), len(values))
	}
	for j := range t.columns {
		t.columns[j][row] = values[j]
	}
	return nil
}

// Column returns column j as a slice. The slice aliases trace storage and
// must not be mutated by callers.
func (t *Trace) Column(j int) []fp.Element {
	return t.columns[j]
}
