package dataset

import (
	"fmt"
	"math"

	"github.com/arloliu/fcs/format"
)

// Series is an owned column.
//
// Float kinds keep their values as float64 (float32 widens exactly); integer
// kinds keep them as uint64. Kind records the width the values came from so a
// copied column is written back with the same $PnB.
type Series struct {
	name   string
	kind   format.NumericKind
	floats []float64
	uints  []uint64
}

// NewFloat64 creates a float64 series that takes ownership of values.
func NewFloat64(name string, values []float64) *Series {
	return &Series{name: name, kind: format.KindFloat64, floats: values}
}

// NewFloat32 creates a float32 series from values.
func NewFloat32(name string, values []float32) *Series {
	floats := make([]float64, len(values))
	for i, v := range values {
		floats[i] = float64(v)
	}

	return &Series{name: name, kind: format.KindFloat32, floats: floats}
}

// NewUint creates an unsigned integer series of the given kind that takes
// ownership of values.
//
// Returns an error if kind is not an integer kind or a value does not fit it.
func NewUint(name string, kind format.NumericKind, values []uint64) (*Series, error) {
	if kind.IsFloat() || kind.Width() == 0 {
		return nil, fmt.Errorf("series %q: %s is not an integer kind", name, kind)
	}

	limit := uint64(math.MaxUint64)
	if kind.Bits() < 64 {
		limit = 1<<kind.Bits() - 1
	}
	for i, v := range values {
		if v > limit {
			return nil, fmt.Errorf("series %q: value %d at row %d overflows %s", name, v, i, kind)
		}
	}

	return &Series{name: name, kind: kind, uints: values}, nil
}

// Copy materializes any Column into an owned Series.
func Copy(col Column) *Series {
	s := &Series{name: col.Name(), kind: col.Kind()}
	n := col.Len()

	if s.kind.IsFloat() {
		s.floats = make([]float64, n)
		for i := range s.floats {
			s.floats[i] = col.Float64(i)
		}

		return s
	}

	s.uints = make([]uint64, n)
	for i := range s.uints {
		s.uints[i] = col.Uint64(i)
	}

	return s
}

func (s *Series) Name() string {
	return s.name
}

func (s *Series) Kind() format.NumericKind {
	return s.kind
}

func (s *Series) Len() int {
	if s.kind.IsFloat() {
		return len(s.floats)
	}

	return len(s.uints)
}

func (s *Series) Float64(i int) float64 {
	if s.kind.IsFloat() {
		return s.floats[i]
	}

	return float64(s.uints[i])
}

func (s *Series) Uint64(i int) uint64 {
	if !s.kind.IsFloat() {
		return s.uints[i]
	}

	v := s.floats[i]
	if v <= 0 || math.IsNaN(v) {
		return 0
	}
	if v >= math.MaxUint64 {
		return math.MaxUint64
	}

	return uint64(v)
}

// Float64s returns the backing slice of a float series, nil otherwise.
func (s *Series) Float64s() []float64 {
	return s.floats
}

// Uint64s returns the backing slice of an integer series, nil otherwise.
func (s *Series) Uint64s() []uint64 {
	return s.uints
}

// Rename returns a series with the same values under another name.
// The values are shared.
func (s *Series) Rename(name string) *Series {
	c := *s
	c.name = name

	return &c
}

// Clone returns a deep copy of s.
func (s *Series) Clone() *Series {
	c := &Series{name: s.name, kind: s.kind}
	if s.floats != nil {
		c.floats = append([]float64(nil), s.floats...)
	}
	if s.uints != nil {
		c.uints = append([]uint64(nil), s.uints...)
	}

	return c
}
