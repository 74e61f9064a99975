// Package frame provides the timestamp-indexed table consumed by the
// validation engine. A Frame holds an ordered set of named columns of
// decimal values with per-cell null tracking, mirroring how market data
// arrives from CSV exports and bundle loaders with arbitrary column
// naming. The frame is read-only once built; the engine never mutates it.
package frame

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// Frame is a timestamp-indexed table of decimal columns.
type Frame struct {
	index []time.Time
	names []string
	cols  map[string][]decimal.NullDecimal
}

// New creates a frame over the given timestamp index. Columns are added
// with SetColumn and must match the index length.
func New(index []time.Time) *Frame {
	idx := make([]time.Time, len(index))
	copy(idx, index)
	return &Frame{
		index: idx,
		cols:  make(map[string][]decimal.NullDecimal),
	}
}

// SetColumn adds or replaces a column. The values slice must have one
// entry per index row.
func (f *Frame) SetColumn(name string, values []decimal.NullDecimal) error {
	if len(values) != len(f.index) {
		return fmt.Errorf("column %q has %d values, index has %d rows", name, len(values), len(f.index))
	}
	if _, exists := f.cols[name]; !exists {
		f.names = append(f.names, name)
	}
	vals := make([]decimal.NullDecimal, len(values))
	copy(vals, values)
	f.cols[name] = vals
	return nil
}

// SetFloatColumn adds a column from float64 values, treating NaN as null.
func (f *Frame) SetFloatColumn(name string, values []float64) error {
	converted := make([]decimal.NullDecimal, len(values))
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		converted[i] = decimal.NullDecimal{Decimal: decimal.NewFromFloat(v), Valid: true}
	}
	return f.SetColumn(name, converted)
}

// NumRows returns the number of rows in the frame.
func (f *Frame) NumRows() int {
	return len(f.index)
}

// Index returns the timestamp index. The returned slice is shared and
// must not be modified.
func (f *Frame) Index() []time.Time {
	return f.index
}

// ColumnNames returns the column names in insertion order.
func (f *Frame) ColumnNames() []string {
	names := make([]string, len(f.names))
	copy(names, f.names)
	return names
}

// Column returns the named column. The returned slice is shared and
// must not be modified.
func (f *Frame) Column(name string) ([]decimal.NullDecimal, bool) {
	col, ok := f.cols[name]
	return col, ok
}

// HasColumn reports whether the named column exists.
func (f *Frame) HasColumn(name string) bool {
	_, ok := f.cols[name]
	return ok
}

// Floats returns the named column as float64 values with NaN for nulls.
// Statistical checks operate on this view; exact comparisons use the
// decimal column directly.
func (f *Frame) Floats(name string) ([]float64, bool) {
	col, ok := f.cols[name]
	if !ok {
		return nil, false
	}
	out := make([]float64, len(col))
	for i, v := range col {
		if !v.Valid {
			out[i] = math.NaN()
			continue
		}
		out[i] = v.Decimal.InexactFloat64()
	}
	return out, true
}

// NullCount returns the number of null cells in the named column.
func (f *Frame) NullCount(name string) int {
	col, ok := f.cols[name]
	if !ok {
		return 0
	}
	n := 0
	for _, v := range col {
		if !v.Valid {
			n++
		}
	}
	return n
}

// FirstDate returns the first index timestamp, or the zero time for an
// empty frame.
func (f *Frame) FirstDate() time.Time {
	if len(f.index) == 0 {
		return time.Time{}
	}
	return f.index[0]
}

// LastDate returns the last index timestamp, or the zero time for an
// empty frame.
func (f *Frame) LastDate() time.Time {
	if len(f.index) == 0 {
		return time.Time{}
	}
	return f.index[len(f.index)-1]
}
