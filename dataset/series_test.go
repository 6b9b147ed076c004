package dataset

import (
	"math"
	"testing"

	"github.com/arloliu/fcs/format"
	"github.com/stretchr/testify/require"
)

func TestSeries(t *testing.T) {
	t.Run("Float64", func(t *testing.T) {
		s := NewFloat64("FSC-A", []float64{1.5, -2, 3})
		require.Equal(t, "FSC-A", s.Name())
		require.Equal(t, format.KindFloat64, s.Kind())
		require.Equal(t, 3, s.Len())
		require.Equal(t, -2.0, s.Float64(1))
		require.Equal(t, uint64(1), s.Uint64(0))
		require.Equal(t, uint64(0), s.Uint64(1))
		require.Nil(t, s.Uint64s())
	})

	t.Run("Float32 widens exactly", func(t *testing.T) {
		s := NewFloat32("SSC-A", []float32{0.1, 7})
		require.Equal(t, format.KindFloat32, s.Kind())
		require.Equal(t, float64(float32(0.1)), s.Float64(0))
	})

	t.Run("Uint", func(t *testing.T) {
		s, err := NewUint("Time", format.KindUint16, []uint64{0, 65535})
		require.NoError(t, err)
		require.Equal(t, format.KindUint16, s.Kind())
		require.Equal(t, 65535.0, s.Float64(1))
		require.Equal(t, []uint64{0, 65535}, s.Uint64s())

		_, err = NewUint("Time", format.KindUint8, []uint64{256})
		require.Error(t, err)

		_, err = NewUint("Time", format.KindFloat32, nil)
		require.Error(t, err)

		s, err = NewUint("Big", format.KindUint64, []uint64{math.MaxUint64})
		require.NoError(t, err)
		require.Equal(t, uint64(math.MaxUint64), s.Uint64(0))
	})

	t.Run("Copy and Clone are independent", func(t *testing.T) {
		src := NewFloat64("FSC-A", []float64{1, 2})

		cp := Copy(src)
		clone := src.Clone()
		src.Float64s()[0] = 99

		require.Equal(t, 1.0, cp.Float64(0))
		require.Equal(t, 1.0, clone.Float64(0))
	})

	t.Run("Rename shares values", func(t *testing.T) {
		src := NewFloat64("FSC-A", []float64{1, 2})
		renamed := src.Rename("FSC")
		require.Equal(t, "FSC", renamed.Name())
		require.Equal(t, "FSC-A", src.Name())
		require.Equal(t, src.Float64s(), renamed.Float64s())
	})
}

func TestColumnHelpers(t *testing.T) {
	s := NewFloat64("x", []float64{math.NaN(), 4, math.Inf(1), -1})
	maxVal, ok := MaxFinite(s)
	require.True(t, ok)
	require.Equal(t, 4.0, maxVal)

	_, ok = MaxFinite(NewFloat64("empty", nil))
	require.False(t, ok)

	_, ok = MaxFinite(NewFloat64("nan", []float64{math.NaN()}))
	require.False(t, ok)

	u, err := NewUint("u", format.KindUint32, []uint64{3, 9, 2})
	require.NoError(t, err)
	require.Equal(t, uint64(9), MaxUint(u))
	require.Equal(t, []float64{3, 9, 2}, Float64s(u))
}
