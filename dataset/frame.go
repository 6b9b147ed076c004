package dataset

import (
	"fmt"

	"github.com/arloliu/fcs/errs"
	"github.com/arloliu/fcs/internal/collision"
)

// Frame is an owned table of equally long Series.
//
// Column names are unique and non-blank; lookups go through an xxHash64 index.
//
// Note: Frame is NOT thread-safe for concurrent modification.
type Frame struct {
	rows  int
	cols  []*Series
	index *collision.Tracker
}

// NewFrame creates a frame from cols. Columns that are not already a *Series
// are copied.
func NewFrame(cols ...Column) (*Frame, error) {
	f := &Frame{index: collision.NewTracker()}
	for _, col := range cols {
		if err := f.Append(col); err != nil {
			return nil, err
		}
	}

	return f, nil
}

// FromTable copies every column of t into a new Frame.
func FromTable(t Table) (*Frame, error) {
	f := &Frame{index: collision.NewTracker(), cols: make([]*Series, 0, t.Cols())}
	for j := 0; j < t.Cols(); j++ {
		if err := f.Append(Copy(t.Column(j))); err != nil {
			return nil, err
		}
	}
	f.rows = t.Rows()

	return f, nil
}

// Append adds col as the last column.
//
// Returns:
//   - error: ErrEmptyColumnName, ErrDuplicateColumn, or ErrColumnLength when
//     col.Len() differs from the frame's row count
func (f *Frame) Append(col Column) error {
	if len(f.cols) > 0 && col.Len() != f.rows {
		return fmt.Errorf("%w: column %q has %d rows, frame has %d", errs.ErrColumnLength, col.Name(), col.Len(), f.rows)
	}

	if _, err := f.index.TrackColumn(col.Name()); err != nil {
		return fmt.Errorf("column %q: %w", col.Name(), err)
	}

	s, ok := col.(*Series)
	if !ok {
		s = Copy(col)
	}
	if len(f.cols) == 0 {
		f.rows = s.Len()
	}
	f.cols = append(f.cols, s)

	return nil
}

// AddFloat64 appends a float64 column; values are owned by the frame.
func (f *Frame) AddFloat64(name string, values []float64) error {
	return f.Append(NewFloat64(name, values))
}

func (f *Frame) Rows() int {
	return f.rows
}

func (f *Frame) Cols() int {
	return len(f.cols)
}

// Names returns the column names in order. The slice is a copy.
func (f *Frame) Names() []string {
	return append([]string(nil), f.index.Names()...)
}

func (f *Frame) Column(j int) Column {
	return f.cols[j]
}

// Series returns column j as its concrete type.
func (f *Frame) Series(j int) *Series {
	return f.cols[j]
}

func (f *Frame) Lookup(name string) (Column, bool) {
	j, ok := f.index.Lookup(name)
	if !ok {
		return nil, false
	}

	return f.cols[j], true
}

// Clone returns a deep copy of f.
func (f *Frame) Clone() *Frame {
	c := &Frame{rows: f.rows, cols: make([]*Series, len(f.cols)), index: f.index.Clone()}
	for j, s := range f.cols {
		c.cols[j] = s.Clone()
	}

	return c
}
