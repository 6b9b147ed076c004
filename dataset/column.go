package dataset

import (
	"math"

	"github.com/arloliu/fcs/format"
)

// Column is one named numeric column.
//
// Float64 and Uint64 convert on access: integer columns read as exact floats
// up to 2^53, float columns truncate toward zero when read as Uint64.
type Column interface {
	Name() string
	Len() int
	Kind() format.NumericKind
	Float64(i int) float64
	Uint64(i int) uint64
}

// Table is a rectangular set of uniquely named columns.
type Table interface {
	Rows() int
	Cols() int
	Names() []string
	Column(j int) Column
	Lookup(name string) (Column, bool)
}

// Float64s materializes col as a new float64 slice.
func Float64s(col Column) []float64 {
	out := make([]float64, col.Len())
	for i := range out {
		out[i] = col.Float64(i)
	}

	return out
}

// MaxFinite returns the largest finite value of col. ok is false when the
// column has no finite values.
func MaxFinite(col Column) (float64, bool) {
	maxVal, ok := math.Inf(-1), false
	for i := 0; i < col.Len(); i++ {
		v := col.Float64(i)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		if v > maxVal {
			maxVal = v
		}
		ok = true
	}

	return maxVal, ok
}

// MaxUint returns the largest value of an integer column, or 0 if empty.
func MaxUint(col Column) uint64 {
	var maxVal uint64
	for i := 0; i < col.Len(); i++ {
		if v := col.Uint64(i); v > maxVal {
			maxVal = v
		}
	}

	return maxVal
}
