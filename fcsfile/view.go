package fcsfile

import (
	"math"

	"github.com/arloliu/fcs/dataset"
	"github.com/arloliu/fcs/endian"
	"github.com/arloliu/fcs/errs"
	"github.com/arloliu/fcs/format"
	"github.com/arloliu/fcs/internal/collision"
	"github.com/arloliu/fcs/internal/mmap"
	"github.com/arloliu/fcs/section"
)

// View is a borrowed, column-oriented table over the mapped DATA segment.
//
// A View shares the mapping without copying; it covers exactly $TOT records
// and ignores any trailing bytes of the segment. It pins the mapping until
// Release is called. Every accessor panics after Release, so a stale View can
// never read unmapped memory.
//
// View implements dataset.Table.
type View struct {
	file     string
	lease    *mmap.Lease
	data     []byte
	layout   *section.RecordLayout
	bounds   section.Bounds
	rows     int
	names    []string
	index    *collision.Tracker
	writable bool
}

var _ dataset.Table = (*View)(nil)

func newView(file string, lease *mmap.Lease, layout *section.RecordLayout, bounds section.Bounds,
	tot int, det section.Detectors, writable bool,
) *View {
	v := &View{
		file:     file,
		lease:    lease,
		layout:   layout,
		bounds:   bounds,
		rows:     tot,
		names:    make([]string, len(layout.Fields)),
		index:    collision.NewTracker(),
		writable: writable,
	}

	if n := layout.Expected(int64(tot)); n > 0 {
		v.data = lease.Bytes()[bounds.Start : bounds.Start+n]
	}

	for j, field := range layout.Fields {
		v.names[j] = det.Name(field.Index)
		// duplicate $PnN values are legal in the wild; the first one wins lookups
		_, _ = v.index.TrackColumn(v.names[j])
	}

	return v
}

func (v *View) check() {
	v.lease.Check("view of " + v.file)
}

// Rows returns $TOT.
func (v *View) Rows() int {
	v.check()
	return v.rows
}

// Cols returns $PAR.
func (v *View) Cols() int {
	v.check()
	return len(v.names)
}

// Names returns the column names: $PnN, or P<n> when absent.
func (v *View) Names() []string {
	v.check()
	return append([]string(nil), v.names...)
}

// Column returns column j.
func (v *View) Column(j int) dataset.Column {
	return v.MappedColumn(j)
}

// MappedColumn returns column j as its concrete type.
func (v *View) MappedColumn(j int) *MappedColumn {
	v.check()
	return &MappedColumn{view: v, field: v.layout.Fields[j], name: v.names[j]}
}

// Lookup returns the column named name.
func (v *View) Lookup(name string) (dataset.Column, bool) {
	v.check()

	j, ok := v.index.Lookup(name)
	if !ok {
		return nil, false
	}

	return v.MappedColumn(j), true
}

// Layout returns the record layout of the view.
func (v *View) Layout() *section.RecordLayout {
	return v.layout
}

// Bounds returns the resolved DATA bounds.
func (v *View) Bounds() section.Bounds {
	return v.bounds
}

// Bytes returns the $TOT records of DATA. The slice aliases the mapping and
// must not be used after Release.
func (v *View) Bytes() []byte {
	v.check()
	return v.data
}

// Release returns the view's lease. It is safe to call more than once.
func (v *View) Release() {
	v.lease.Release()
	v.data = nil
}

// Released reports whether Release has been called.
func (v *View) Released() bool {
	return v.lease.Released()
}

// MappedColumn reads one parameter straight from the mapped records.
type MappedColumn struct {
	view  *View
	field section.Field
	name  string
}

var _ dataset.Column = (*MappedColumn)(nil)

func (c *MappedColumn) Name() string {
	return c.name
}

func (c *MappedColumn) Kind() format.NumericKind {
	return c.field.Kind
}

func (c *MappedColumn) Len() int {
	return c.view.Rows()
}

// Stride returns the distance in bytes between consecutive values in Raw.
func (c *MappedColumn) Stride() int {
	return c.view.layout.RecordSize
}

// Raw returns the mapped bytes starting at the column's first value. Value i
// lives at Raw()[i*Stride() : i*Stride()+width]. No bytes are copied.
func (c *MappedColumn) Raw() []byte {
	data := c.view.Bytes()
	if len(data) == 0 {
		return nil
	}

	return data[c.field.Offset:]
}

func (c *MappedColumn) cell(i int) []byte {
	data := c.view.Bytes()
	off := i*c.view.layout.RecordSize + c.field.Offset

	return data[off : off+c.field.Width]
}

func (c *MappedColumn) engine() endian.EndianEngine {
	return c.view.layout.Engine
}

// Float64 returns value i as float64.
func (c *MappedColumn) Float64(i int) float64 {
	b := c.cell(i)
	switch c.field.Kind {
	case format.KindFloat32:
		return float64(math.Float32frombits(c.engine().Uint32(b)))
	case format.KindFloat64:
		return math.Float64frombits(c.engine().Uint64(b))
	default:
		return float64(c.uint(b))
	}
}

// Uint64 returns value i as uint64; float values truncate toward zero and
// negative or NaN values read as 0.
func (c *MappedColumn) Uint64(i int) uint64 {
	if c.field.Kind.IsFloat() {
		f := c.Float64(i)
		if f <= 0 || math.IsNaN(f) {
			return 0
		}
		if f >= math.MaxUint64 {
			return math.MaxUint64
		}

		return uint64(f)
	}

	return c.uint(c.cell(i))
}

func (c *MappedColumn) uint(b []byte) uint64 {
	switch c.field.Kind {
	case format.KindUint8:
		return uint64(b[0])
	case format.KindUint16:
		return uint64(c.engine().Uint16(b))
	case format.KindUint32:
		return uint64(c.engine().Uint32(b))
	default:
		return c.engine().Uint64(b)
	}
}

// SetFloat64 overwrites value i in place. The file must have been opened
// with WithWritable; integer columns store the value truncated.
func (c *MappedColumn) SetFloat64(i int, val float64) error {
	if !c.view.writable {
		return errs.ErrReadOnly
	}

	b := c.cell(i)
	switch c.field.Kind {
	case format.KindFloat32:
		c.engine().PutUint32(b, math.Float32bits(float32(val)))
	case format.KindFloat64:
		c.engine().PutUint64(b, math.Float64bits(val))
	default:
		c.putUint(b, uint64(val))
	}

	return nil
}

// SetUint64 overwrites value i of an integer column in place.
func (c *MappedColumn) SetUint64(i int, val uint64) error {
	if !c.view.writable {
		return errs.ErrReadOnly
	}
	if c.field.Kind.IsFloat() {
		return c.SetFloat64(i, float64(val))
	}

	c.putUint(c.cell(i), val)

	return nil
}

func (c *MappedColumn) putUint(b []byte, val uint64) {
	switch c.field.Kind {
	case format.KindUint8:
		b[0] = uint8(val)
	case format.KindUint16:
		c.engine().PutUint16(b, uint16(val))
	case format.KindUint32:
		c.engine().PutUint32(b, uint32(val))
	default:
		c.engine().PutUint64(b, val)
	}
}
