package builder

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/fcs/dataset"
	"github.com/arloliu/fcs/format"
	"github.com/arloliu/fcs/section"
)

// parseOutput splits builder output back into its segments.
func parseOutput(t *testing.T, out []byte) (section.Header, *section.Text, []byte) {
	t.Helper()

	h, err := section.ParseHeader(out)
	require.NoError(t, err)

	seg, err := section.TextSegment(out, h)
	require.NoError(t, err)

	text, err := section.ParseText(seg)
	require.NoError(t, err)

	return h, text, out[h.TextEnd+1:]
}

func TestToBytes_OffsetsAreConsistent(t *testing.T) {
	for _, rows := range []int{0, 1, 3} {
		for padding := 0; padding <= 900; padding += 7 {
			values := make([]float32, rows)
			for i := range values {
				values[i] = float32(i) + 0.5
			}

			tmpl := templateText(t)
			tmpl.Keywords.SetString("NOTE", strings.Repeat("x", padding+1))

			b, err := FromDataset(mustFrame(t, dataset.NewFloat32("FSC-A", values)),
				WithTemplateText(tmpl, format.Version31))
			require.NoError(t, err)

			out, err := b.ToBytes()
			require.NoError(t, err)

			h, text, data := parseOutput(t, out)
			require.Equal(t, int64(section.HeaderSize), h.TextStart)

			begin, err := text.Keywords.Int(section.KeyBeginData)
			require.NoError(t, err)
			end, err := text.Keywords.Int(section.KeyEndData)
			require.NoError(t, err)

			require.Equal(t, h.DataStart, begin)
			require.Equal(t, h.DataEnd, end)
			require.Len(t, data, rows*4)

			if rows == 0 {
				require.Zero(t, begin)
				require.Zero(t, end)
				continue
			}
			require.Equal(t, h.TextEnd+1, begin)
			require.Equal(t, int64(len(out)-1), end)
		}
	}
}

func TestEncodeMeta_LargeOffsets(t *testing.T) {
	const rows = 30_000_000

	tmpl := templateText(t)
	table := &stubTable{rows: rows, cols: []dataset.Column{
		stubColumn{name: "FSC-A", kind: format.KindFloat32, rows: rows},
	}}

	b, err := FromDataset(table, WithTemplateText(tmpl, format.Version31))
	require.NoError(t, err)

	h, text, err := b.encodeMeta()
	require.NoError(t, err)
	require.Greater(t, h.DataEnd, int64(section.MaxHeaderOffset))
	require.Equal(t, h.DataStart+int64(rows*4)-1, h.DataEnd)

	hdr, err := h.Bytes()
	require.NoError(t, err)

	parsed, err := section.ParseHeader(append(hdr, text...))
	require.NoError(t, err)
	require.Zero(t, parsed.DataStart)
	require.Zero(t, parsed.DataEnd)
	require.Equal(t, h.TextEnd, parsed.TextEnd)

	txt, err := section.ParseText(text)
	require.NoError(t, err)

	begin, err := txt.Keywords.Int(section.KeyBeginData)
	require.NoError(t, err)
	require.Equal(t, h.DataStart, begin)
}

func TestToBytes_DataEncoding(t *testing.T) {
	frame := mustFrame(t,
		mustUint(t, "u8", format.KindUint8, 7, 255),
		mustUint(t, "u16", format.KindUint16, 0x0102, 0xfffe),
		mustUint(t, "u32", format.KindUint32, 0x01020304, 1),
		mustUint(t, "u64", format.KindUint64, 1<<40, math.MaxUint64),
	)

	t.Run("Little endian", func(t *testing.T) {
		b, err := FromDataset(frame)
		require.NoError(t, err)

		out, err := b.ToBytes()
		require.NoError(t, err)
		_, _, data := parseOutput(t, out)

		want := []byte{
			7, 0x02, 0x01, 0x04, 0x03, 0x02, 0x01, 0, 0, 0, 0, 0, 1, 0, 0,
			255, 0xfe, 0xff, 1, 0, 0, 0, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
		}
		require.Equal(t, want, data)
	})

	t.Run("Big endian template", func(t *testing.T) {
		tmpl := templateText(t)
		tmpl.Keywords.SetString(section.KeyDataType, "I")

		b, err := FromDataset(frame, WithTemplateText(tmpl, format.Version31))
		require.NoError(t, err)

		out, err := b.ToBytes()
		require.NoError(t, err)
		_, _, data := parseOutput(t, out)

		require.Equal(t, []byte{7, 0x01, 0x02, 0x01, 0x02, 0x03, 0x04, 0, 0, 1, 0, 0, 0, 0, 0}, data[:15])
	})

	t.Run("Floats", func(t *testing.T) {
		f := mustFrame(t, dataset.NewFloat64("x", []float64{math.Pi, -0.0}))
		b, err := FromDataset(f)
		require.NoError(t, err)

		out, err := b.ToBytes()
		require.NoError(t, err)
		_, text, data := parseOutput(t, out)

		require.Equal(t, "D", text.Keywords.Text(section.KeyDataType))
		require.Len(t, data, 16)
		require.Equal(t, math.Float64bits(math.Pi), b.Layout().Engine.Uint64(data[0:8]))
	})
}

type failingWriter struct {
	after int
}

func (w *failingWriter) Write(p []byte) (int, error) {
	if w.after <= 0 {
		return 0, errors.New("disk full")
	}
	w.after--

	return len(p), nil
}

func TestWriteTo(t *testing.T) {
	frame := mustFrame(t, dataset.NewFloat32("a", []float32{1, 2, 3}))
	b, err := FromDataset(frame)
	require.NoError(t, err)

	var buf bytes.Buffer
	n, err := b.WriteTo(&buf)
	require.NoError(t, err)
	require.Equal(t, int64(buf.Len()), n)

	out, err := b.ToBytes()
	require.NoError(t, err)
	require.Equal(t, out, buf.Bytes())

	for after := 0; after < 3; after++ {
		_, err = b.WriteTo(&failingWriter{after: after})
		require.EqualError(t, err, "disk full")
	}
}

func TestEncodeMeta_LogsPasses(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	b, err := FromDataset(mustFrame(t, dataset.NewFloat32("a", []float32{1})), WithLogger(logger))
	require.NoError(t, err)

	_, err = b.ToBytes()
	require.NoError(t, err)

	passes := 0
	for _, e := range hook.AllEntries() {
		if e.Message == "offset pass" {
			passes++
		}
	}
	require.GreaterOrEqual(t, passes, 2)
	require.LessOrEqual(t, passes, maxPasses)
}
