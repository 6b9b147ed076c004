package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWrap(t *testing.T) {
	t.Run("nil stays nil", func(t *testing.T) {
		require.NoError(t, Wrap("open", "/tmp/a.fcs", nil))
	})

	t.Run("uses base name only", func(t *testing.T) {
		err := Wrap("open", "/data/run1/sample.fcs", Invalid("file is too small (%d bytes)", 12))

		var fe *FileError
		require.ErrorAs(t, err, &fe)
		require.Equal(t, "sample.fcs", fe.File)
		require.Equal(t, "open", fe.Op)
		require.ErrorIs(t, err, ErrInvalidFormat)
		require.Contains(t, err.Error(), `"sample.fcs"`)
		require.NotContains(t, err.Error(), "/data/run1")
	})

	t.Run("does not double wrap", func(t *testing.T) {
		inner := Wrap("view", "a.fcs", Unsupported("mode %q", "H"))
		outer := Wrap("copy", "b.fcs", fmt.Errorf("copy: %w", inner))

		var fe *FileError
		require.ErrorAs(t, outer, &fe)
		require.Equal(t, "a.fcs", fe.File)
		require.Equal(t, "view", fe.Op)
	})
}

func TestClasses(t *testing.T) {
	require.ErrorIs(t, Invalid("x"), ErrInvalidFormat)
	require.ErrorIs(t, Unsupported("x"), ErrUnsupportedFormat)
	require.False(t, errors.Is(Unsupported("x"), ErrInvalidFormat))

	busy := Busy("close", 2)
	require.ErrorIs(t, busy, ErrResourceBusy)
	require.Contains(t, busy.Error(), "close")
	require.Contains(t, busy.Error(), "Release")
	require.Contains(t, busy.Error(), "2 view(s)")
}
