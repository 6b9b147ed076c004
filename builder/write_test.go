package builder

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/fcs/dataset"
	"github.com/arloliu/fcs/errs"
	"github.com/arloliu/fcs/fcsfile"
	"github.com/arloliu/fcs/format"
	"github.com/arloliu/fcs/internal/fcstest"
)

func sampleFrame(t *testing.T) *dataset.Frame {
	t.Helper()

	return mustFrame(t,
		dataset.NewFloat32("FSC-A", []float32{1.5, 2.5, 3.5}),
		dataset.NewFloat32("SSC-A", []float32{10, 20, 30}),
	)
}

func TestWrite(t *testing.T) {
	dir := t.TempDir()
	b, err := FromDataset(sampleFrame(t))
	require.NoError(t, err)

	path := filepath.Join(dir, "out.fcs")
	written, err := b.Write(path)
	require.NoError(t, err)
	require.Equal(t, path, written)

	want, err := b.ToBytes()
	require.NoError(t, err)
	got, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, want, got)

	t.Run("Existing target", func(t *testing.T) {
		_, err := b.Write(path)
		require.ErrorIs(t, err, errs.ErrTargetExists)
		require.Contains(t, err.Error(), "out.fcs")

		_, err = b.Write(path, WithOverwrite())
		require.NoError(t, err)
	})

	t.Run("Suffix", func(t *testing.T) {
		written, err := b.Write(filepath.Join(dir, "plain"), WithFCSSuffix())
		require.NoError(t, err)
		require.Equal(t, filepath.Join(dir, "plain.fcs"), written)

		written, err = b.Write(filepath.Join(dir, "UPPER.FCS"), WithFCSSuffix())
		require.NoError(t, err)
		require.Equal(t, filepath.Join(dir, "UPPER.FCS"), written)
	})

	t.Run("Missing directory", func(t *testing.T) {
		_, err := b.Write(filepath.Join(dir, "missing", "x.fcs"))
		require.ErrorIs(t, err, os.ErrNotExist)
	})

	tmp, err := filepath.Glob(filepath.Join(dir, "*.tmp"))
	require.NoError(t, err)
	require.Empty(t, tmp)
}

func TestWrite_ReplacesMappedFile(t *testing.T) {
	path := fcstest.Write(t, t.TempDir(), "live.fcs", fcstest.Spec{
		Params: []fcstest.Param{{Name: "FSC-A"}},
		Events: [][]float64{{1}, {2}},
	})

	f, err := fcsfile.Open(path)
	require.NoError(t, err)
	defer f.Close()

	v, err := f.View()
	require.NoError(t, err)
	defer v.Release()

	b, err := FromDataset(sampleFrame(t), WithTemplate(f))
	require.NoError(t, err)
	_, err = b.Write(path, WithOverwrite())
	require.NoError(t, err)

	// the open mapping still sees the old content
	require.Equal(t, 2, v.Rows())
	require.Equal(t, 2.0, v.Column(0).Float64(1))

	g, err := fcsfile.Open(path)
	require.NoError(t, err)
	defer g.Close()

	frame, err := g.Copy()
	require.NoError(t, err)
	require.Equal(t, 3, frame.Rows())
}

func TestWrite_RoundTrip(t *testing.T) {
	spec := fcstest.Spec{
		DataType: "I",
		ByteOrd:  "4,3,2,1",
		Params: []fcstest.Param{
			{Name: "Time", Bits: 32, Range: "1048576"},
			{Name: "FL1-H", Bits: 16},
			{Bits: 8},
		},
		Events: [][]float64{{1, 2, 3}, {100000, 65535, 255}, {7, 0, 1}},
		Extra:  [][2]string{{"$CYT", "Accuri C6"}, {"$P2E", "0,0"}},
	}
	path := fcstest.Write(t, t.TempDir(), "src.fcs", spec)

	src, err := fcsfile.Open(path)
	require.NoError(t, err)
	defer src.Close()

	frame, err := src.Copy()
	require.NoError(t, err)

	b, err := FromDataset(frame, WithTemplate(src))
	require.NoError(t, err)

	out := filepath.Join(t.TempDir(), "dst.fcs")
	_, err = b.Write(out)
	require.NoError(t, err)

	dst, err := fcsfile.Open(out)
	require.NoError(t, err)
	defer dst.Close()

	require.Equal(t, src.Names(), dst.Names())
	require.Equal(t, "Accuri C6", dst.Keywords().Text("$CYT"))
	require.Equal(t, "4,3,2,1", dst.Keywords().Text("$BYTEORD"))
	require.Equal(t, "1048576", dst.Detectors()[1]["R"].String())
	require.Equal(t, "0,0", dst.Detectors()[2]["E"].String())
	require.Equal(t, "65535", dst.Detectors()[2]["R"].String())

	v, err := dst.View()
	require.NoError(t, err)
	defer v.Release()

	require.Equal(t, 3, v.Rows())
	for j, kind := range []format.NumericKind{format.KindUint32, format.KindUint16, format.KindUint8} {
		col := v.Column(j)
		require.Equal(t, kind, col.Kind())
		for i := range spec.Events {
			require.Equal(t, uint64(spec.Events[i][j]), col.Uint64(i))
		}
	}

	srcSum, err := src.Fingerprint()
	require.NoError(t, err)
	dstSum, err := dst.Fingerprint()
	require.NoError(t, err)
	require.Equal(t, srcSum, dstSum)
}

func TestWrite_ZeroRows(t *testing.T) {
	frame := mustFrame(t,
		dataset.NewFloat32("a", nil),
		dataset.NewFloat32("b", nil),
	)

	b, err := FromDataset(frame)
	require.NoError(t, err)

	path, err := b.Write(filepath.Join(t.TempDir(), "empty.fcs"))
	require.NoError(t, err)

	f, err := fcsfile.Open(path)
	require.NoError(t, err)
	defer f.Close()

	copied, err := f.Copy()
	require.NoError(t, err)
	require.Equal(t, 0, copied.Rows())
	require.Equal(t, []string{"a", "b"}, copied.Names())
}

func TestWriteArchive(t *testing.T) {
	dir := t.TempDir()
	b, err := FromDataset(sampleFrame(t))
	require.NoError(t, err)

	raw, err := b.ToBytes()
	require.NoError(t, err)

	for _, ct := range []format.CompressionType{format.CompressionNone, format.CompressionZstd, format.CompressionS2, format.CompressionLZ4} {
		t.Run(ct.String(), func(t *testing.T) {
			path := filepath.Join(dir, ct.String()+".fcsz")
			stats, err := b.WriteArchive(path, ct)
			require.NoError(t, err)
			require.Equal(t, int64(len(raw)), stats.OriginalSize)

			f, err := fcsfile.OpenArchive(path)
			require.NoError(t, err)
			defer f.Close()

			frame, err := f.Copy()
			require.NoError(t, err)
			require.Equal(t, []string{"FSC-A", "SSC-A"}, frame.Names())
			require.Equal(t, 20.0, frame.Column(1).Float64(1))

			_, err = b.WriteArchive(path, ct)
			require.ErrorIs(t, err, errs.ErrTargetExists)
		})
	}

	_, err = b.WriteArchive(filepath.Join(dir, "bad.fcsz"), format.CompressionType(99))
	require.Error(t, err)
}
