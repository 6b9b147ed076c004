//go:build unix

package mmap

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/arloliu/fcs/errs"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, content []byte) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "sample.fcs")
	require.NoError(t, os.WriteFile(path, content, 0o644))

	return path
}

func TestMap_ReadOnly(t *testing.T) {
	path := writeTemp(t, []byte("FCS3.1 mapped content"))

	f, err := os.Open(path)
	require.NoError(t, err)

	r, err := Map(f, false)
	require.NoError(t, err)
	require.Equal(t, []byte("FCS3.1 mapped content"), r.Bytes())
	require.ErrorIs(t, r.Sync(), errs.ErrReadOnly)

	lease, err := r.Acquire()
	require.NoError(t, err)
	require.ErrorIs(t, r.Close(), errs.ErrResourceBusy)

	// the file stays open while the close is refused
	_, err = f.Stat()
	require.NoError(t, err)

	lease.Release()
	require.NoError(t, r.Close())

	_, err = f.Stat()
	require.Error(t, err)
}

func TestMap_Writable(t *testing.T) {
	path := writeTemp(t, []byte("abcdef"))

	f, err := os.OpenFile(path, os.O_RDWR, 0)
	require.NoError(t, err)

	r, err := Map(f, true)
	require.NoError(t, err)
	require.True(t, r.Writable())

	lease, err := r.Acquire()
	require.NoError(t, err)
	lease.Bytes()[0] = 'X'
	lease.Release()

	require.NoError(t, r.Sync())
	require.NoError(t, r.Close())

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "Xbcdef", string(got))
}

func TestMap_EmptyFile(t *testing.T) {
	path := writeTemp(t, nil)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	_, err = Map(f, false)
	require.Error(t, err)
}
