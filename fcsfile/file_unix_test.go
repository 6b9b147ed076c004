//go:build unix

package fcsfile

import (
	"runtime"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/fcs/errs"
	"github.com/arloliu/fcs/internal/fcstest"
)

// The pinned mapping keeps the descriptor open, so this runs where removing
// an open file is allowed.
func TestFile_DroppedViewKeepsMappingPinned(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	path := fcstest.Write(t, t.TempDir(), "pinned.fcs", threeParamSpec(10))
	f, err := Open(path, WithLogger(logger))
	require.NoError(t, err)

	raw := func() []byte {
		v, err := f.View()
		require.NoError(t, err)

		return v.MappedColumn(0).Raw()
	}()

	require.Eventually(t, func() bool {
		runtime.GC()
		for _, e := range hook.AllEntries() {
			if e.Message == "lease collected without Release, mapping stays pinned" {
				return true
			}
		}

		return false
	}, 5*time.Second, 10*time.Millisecond)

	err = f.Close()
	require.ErrorIs(t, err, errs.ErrResourceBusy)
	require.Contains(t, err.Error(), "pinned.fcs")

	// still mapped, so the derived slice stays readable
	require.Equal(t, byte(0), raw[0])
	require.Len(t, raw, 10*12)
}
