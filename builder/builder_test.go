package builder

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/fcs/dataset"
	"github.com/arloliu/fcs/endian"
	"github.com/arloliu/fcs/errs"
	"github.com/arloliu/fcs/format"
	"github.com/arloliu/fcs/section"
)

func mustUint(t *testing.T, name string, kind format.NumericKind, values ...uint64) *dataset.Series {
	t.Helper()

	s, err := dataset.NewUint(name, kind, values)
	require.NoError(t, err)

	return s
}

func mustFrame(t *testing.T, cols ...dataset.Column) *dataset.Frame {
	t.Helper()

	f, err := dataset.NewFrame(cols...)
	require.NoError(t, err)

	return f
}

// stubTable serves columns without validating them, unlike dataset.Frame.
type stubTable struct {
	rows int
	cols []dataset.Column
}

func (s *stubTable) Rows() int { return s.rows }
func (s *stubTable) Cols() int { return len(s.cols) }
func (s *stubTable) Column(j int) dataset.Column { return s.cols[j] }

func (s *stubTable) Names() []string {
	names := make([]string, len(s.cols))
	for j, c := range s.cols {
		names[j] = c.Name()
	}

	return names
}

func (s *stubTable) Lookup(name string) (dataset.Column, bool) {
	for _, c := range s.cols {
		if c.Name() == name {
			return c, true
		}
	}

	return nil, false
}

// stubColumn reports rows zero values of a kind.
type stubColumn struct {
	name string
	kind format.NumericKind
	rows int
}

func (c stubColumn) Name() string { return c.name }
func (c stubColumn) Len() int { return c.rows }
func (c stubColumn) Kind() format.NumericKind { return c.kind }
func (c stubColumn) Float64(int) float64 { return 0 }
func (c stubColumn) Uint64(int) uint64 { return 0 }

func templateText(t *testing.T) *section.Text {
	t.Helper()

	kw := section.NewKeywords()
	kw.SetInt(section.KeyTot, 2)
	kw.SetInt(section.KeyPar, 2)
	kw.SetString(section.KeyDataType, "F")
	kw.SetString(section.KeyByteOrd, endian.ByteOrdBig)
	kw.SetInt(section.KeyBeginData, 1000)
	kw.SetInt(section.KeyEndData, 1007)
	kw.SetInt(section.KeyBeginSText, 4242)
	kw.SetString("$CYT", "FACSCanto II")

	return &section.Text{
		Delimiter: '/',
		Keywords:  kw,
		Detectors: section.Detectors{
			1: {"N": section.TextValue("FSC-A"), "B": section.IntValue(32), "R": section.IntValue(262144), "E": section.TextValue("0,0")},
			2: {"N": section.TextValue("Removed"), "B": section.IntValue(32), "R": section.IntValue(1024)},
		},
	}
}

func TestFromDataset_Scratch(t *testing.T) {
	frame := mustFrame(t,
		dataset.NewFloat32("FSC-A", []float32{0.25, 0.5}),
		mustUint(t, "Time", format.KindUint16, 10, 900),
	)

	b, err := FromDataset(frame)
	require.NoError(t, err)

	text := b.Text()
	kw := text.Keywords
	require.Equal(t, byte(section.DefaultDelimiter), text.Delimiter)
	require.Equal(t, format.Version31, b.Version())
	require.Equal(t, 2, b.Rows())
	require.Equal(t, "2", kw.Text(section.KeyTot))
	require.Equal(t, "2", kw.Text(section.KeyPar))
	require.Equal(t, "F", kw.Text(section.KeyDataType))
	require.Equal(t, endian.ByteOrdLittle, kw.Text(section.KeyByteOrd))
	require.Equal(t, "L", kw.Text(section.KeyMode))
	require.Equal(t, "0", kw.Text(section.KeyNextData))
	for _, key := range []string{section.KeyBeginAnalysis, section.KeyEndAnalysis, section.KeyBeginSText, section.KeyEndSText} {
		require.Equal(t, "0", kw.Text(key), key)
	}
	require.False(t, kw.Has(section.KeyBeginData))

	require.Equal(t, "FSC-A", text.Detectors.Name(1))
	require.Equal(t, "Time", text.Detectors.Name(2))
	require.Equal(t, section.IntValue(32), text.Detectors[1]["B"])
	require.Equal(t, section.IntValue(32), text.Detectors[2]["B"])

	// floats below 1 still get a range of 1; integers use their maximum
	require.Equal(t, section.IntValue(1), text.Detectors[1]["R"])
	require.Equal(t, section.IntValue(900), text.Detectors[2]["R"])

	require.Equal(t, 8, b.Layout().RecordSize)
}

func TestFromDataset_Template(t *testing.T) {
	tmpl := templateText(t)
	frame := mustFrame(t,
		dataset.NewFloat32("SSC-A", []float32{1.5, 7.25}),
		dataset.NewFloat32("FSC-A", []float32{3, 4}),
	)

	b, err := FromDataset(frame, WithTemplateText(tmpl, format.Version30))
	require.NoError(t, err)

	text := b.Text()
	require.Equal(t, byte('/'), text.Delimiter)
	require.Equal(t, format.Version30, b.Version())
	require.Equal(t, "FACSCanto II", text.Keywords.Text("$CYT"))
	require.Equal(t, endian.ByteOrdBig, text.Keywords.Text(section.KeyByteOrd))
	require.False(t, text.Keywords.Has(section.KeyBeginData))
	require.False(t, text.Keywords.Has(section.KeyEndData))
	require.Equal(t, "0", text.Keywords.Text(section.KeyBeginSText))

	// FSC-A moved to index 2 and keeps its template metadata
	require.Equal(t, "FSC-A", text.Detectors.Name(2))
	require.Equal(t, section.IntValue(262144), text.Detectors[2]["R"])
	require.Equal(t, section.TextValue("0,0"), text.Detectors[2]["E"])

	// SSC-A is new; its range comes from the data
	require.Equal(t, "SSC-A", text.Detectors.Name(1))
	require.Equal(t, section.TextValue("7.25"), text.Detectors[1]["R"])
	require.NotContains(t, text.Detectors[1], "E")

	require.Len(t, text.Detectors, 2)

	// the template is not modified
	require.Equal(t, "Removed", tmpl.Detectors.Name(2))
	require.True(t, tmpl.Keywords.Has(section.KeyBeginData))
}

func TestFromDataset_DataType(t *testing.T) {
	intTemplate := templateText(t)
	intTemplate.Keywords.SetString(section.KeyDataType, "I")

	tests := []struct {
		name     string
		cols     []dataset.Column
		opts     []Option
		wantType string
		wantBits []int64
	}{
		{
			name:     "Integers only",
			cols:     []dataset.Column{mustUint(t, "a", format.KindUint8, 1), mustUint(t, "b", format.KindUint64, 2)},
			wantType: "I",
			wantBits: []int64{8, 64},
		},
		{
			name:     "Float32 promotes integers",
			cols:     []dataset.Column{mustUint(t, "a", format.KindUint16, 1), dataset.NewFloat32("b", []float32{2})},
			wantType: "F",
			wantBits: []int64{32, 32},
		},
		{
			name:     "Float64 promotes the template type",
			cols:     []dataset.Column{dataset.NewFloat32("FSC-A", []float32{1}), dataset.NewFloat64("ratio", []float64{0.1})},
			opts:     []Option{WithTemplateText(templateText(t), format.Version31)},
			wantType: "D",
			wantBits: []int64{64, 64},
		},
		{
			name:     "Template type is never narrowed",
			cols:     []dataset.Column{mustUint(t, "a", format.KindUint16, 1)},
			opts:     []Option{WithTemplateText(templateText(t), format.Version31)},
			wantType: "F",
			wantBits: []int64{32},
		},
		{
			name:     "Integer template promoted by floats",
			cols:     []dataset.Column{dataset.NewFloat32("a", []float32{1})},
			opts:     []Option{WithTemplateText(intTemplate, format.Version31)},
			wantType: "F",
			wantBits: []int64{32},
		},
		{
			name:     "Force narrow",
			cols:     []dataset.Column{dataset.NewFloat64("a", []float64{1}), mustUint(t, "b", format.KindUint64, 1)},
			opts:     []Option{WithForceNarrow()},
			wantType: "F",
			wantBits: []int64{32, 32},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := FromDataset(mustFrame(t, tt.cols...), tt.opts...)
			require.NoError(t, err)

			text := b.Text()
			require.Equal(t, tt.wantType, text.Keywords.Text(section.KeyDataType))
			for j, bits := range tt.wantBits {
				require.Equal(t, section.IntValue(bits), text.Detectors[j+1]["B"])
			}
		})
	}
}

func TestFromDataset_Options(t *testing.T) {
	frame := mustFrame(t, dataset.NewFloat32("a", []float32{1}))

	b, err := FromDataset(frame,
		WithTemplateText(templateText(t), format.Version31),
		WithDelimiter('|'),
		WithVersion(format.Version20),
		WithByteOrder(endian.GetLittleEndianEngine()),
	)
	require.NoError(t, err)
	require.Equal(t, byte('|'), b.Text().Delimiter)
	require.Equal(t, format.Version20, b.Version())
	require.Equal(t, endian.ByteOrdLittle, b.Text().Keywords.Text(section.KeyByteOrd))
	// FCS2.0 has no supplemental segments to zero out
	require.Equal(t, "4242", b.Text().Keywords.Text(section.KeyBeginSText))

	_, err = FromDataset(frame, WithDelimiter(' '))
	require.ErrorIs(t, err, errs.ErrInvalidDelimiter)

	_, err = FromDataset(frame, WithVersion("FCS4.0"))
	require.ErrorIs(t, err, errs.ErrUnsupportedFormat)
}

func TestFromDataset_InvalidTables(t *testing.T) {
	tests := []struct {
		name  string
		table dataset.Table
		want  error
	}{
		{"No columns", &stubTable{rows: 3}, errs.ErrEmptyDataset},
		{"Blank name", &stubTable{rows: 1, cols: []dataset.Column{
			stubColumn{name: " ", kind: format.KindFloat32, rows: 1},
		}}, errs.ErrEmptyColumnName},
		{"Duplicate name", &stubTable{rows: 1, cols: []dataset.Column{
			stubColumn{name: "FL1", kind: format.KindFloat32, rows: 1},
			stubColumn{name: "FL1", kind: format.KindFloat32, rows: 1},
		}}, errs.ErrDuplicateColumn},
		{"Ragged", &stubTable{rows: 2, cols: []dataset.Column{
			stubColumn{name: "FL1", kind: format.KindFloat32, rows: 2},
			stubColumn{name: "FL2", kind: format.KindFloat32, rows: 1},
		}}, errs.ErrColumnLength},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromDataset(tt.table)
			require.ErrorIs(t, err, tt.want)
		})
	}
}
