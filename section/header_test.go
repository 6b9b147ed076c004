package section

import (
	"testing"

	"github.com/arloliu/fcs/errs"
	"github.com/arloliu/fcs/format"
	"github.com/stretchr/testify/require"
)

func newFileBytes(t *testing.T, h Header, size int) []byte {
	t.Helper()

	hdr, err := h.Bytes()
	require.NoError(t, err)

	data := make([]byte, size)
	copy(data, hdr)

	return data
}

func TestHeader_Bytes(t *testing.T) {
	h := Header{Version: format.Version31, TextStart: 256, TextEnd: 1023, DataStart: 1024, DataEnd: 13023}

	data, err := h.Bytes()
	require.NoError(t, err)
	require.Len(t, data, HeaderSize)

	require.Equal(t, "FCS3.1", string(data[0:6]))
	require.Equal(t, "    ", string(data[6:10]))
	require.Equal(t, "     256", string(data[10:18]))
	require.Equal(t, "    1023", string(data[18:26]))
	require.Equal(t, "    1024", string(data[26:34]))
	require.Equal(t, "   13023", string(data[34:42]))

	for i := 42; i < HeaderSize; i++ {
		require.Equal(t, byte(' '), data[i], "byte %d", i)
	}
}

func TestHeader_Encode(t *testing.T) {
	t.Run("Large data offsets are written as zero", func(t *testing.T) {
		h := Header{Version: format.Version30, TextStart: 256, TextEnd: 900, DataStart: 901, DataEnd: MaxHeaderOffset + 10}

		data, err := h.Bytes()
		require.NoError(t, err)
		require.Equal(t, "       0", string(data[26:34]))
		require.Equal(t, "       0", string(data[34:42]))
		require.Equal(t, "     900", string(data[18:26]))
	})

	t.Run("Largest representable offset", func(t *testing.T) {
		h := Header{Version: format.Version30, TextStart: 256, TextEnd: 900, DataStart: 901, DataEnd: MaxHeaderOffset}

		data, err := h.Bytes()
		require.NoError(t, err)
		require.Equal(t, "99999999", string(data[34:42]))
	})

	t.Run("Negative offset", func(t *testing.T) {
		h := Header{Version: format.Version31, TextStart: -1, TextEnd: 10}
		_, err := h.Bytes()
		require.Error(t, err)
	})

	t.Run("Text offset too wide", func(t *testing.T) {
		h := Header{Version: format.Version31, TextStart: 256, TextEnd: 1_000_000_000}
		_, err := h.Bytes()
		require.Error(t, err)
	})

	t.Run("Unsupported version", func(t *testing.T) {
		h := Header{Version: "FCS9.9", TextStart: 256, TextEnd: 300}
		_, err := h.Bytes()
		require.Error(t, err)
	})

	t.Run("Buffer too small", func(t *testing.T) {
		h := Header{Version: format.Version31, TextStart: 256, TextEnd: 300}
		require.Error(t, h.Encode(make([]byte, 10)))
	})
}

func TestParseHeader(t *testing.T) {
	t.Run("Round trip", func(t *testing.T) {
		for _, v := range []format.Version{format.Version20, format.Version30, format.Version31} {
			original := Header{Version: v, TextStart: 256, TextEnd: 511, DataStart: 512, DataEnd: 911}
			data := newFileBytes(t, original, 912)

			parsed, err := ParseHeader(data)
			require.NoError(t, err)
			require.Equal(t, original, parsed)
		}
	})

	t.Run("Zero data offsets", func(t *testing.T) {
		original := Header{Version: format.Version31, TextStart: 256, TextEnd: 511}
		parsed, err := ParseHeader(newFileBytes(t, original, 600))
		require.NoError(t, err)
		require.Zero(t, parsed.DataStart)
		require.Zero(t, parsed.DataEnd)
	})

	t.Run("File too small", func(t *testing.T) {
		original := Header{Version: format.Version31, TextStart: 256, TextEnd: 256}
		data := newFileBytes(t, original, HeaderSize)

		_, err := ParseHeader(data)
		require.ErrorIs(t, err, errs.ErrInvalidFormat)

		_, err = ParseHeader(append(data, '/'))
		require.NoError(t, err)
	})

	tests := []struct {
		name   string
		mutate func(data []byte)
	}{
		{"Unknown version", func(data []byte) { copy(data, "FCS4.0") }},
		{"Non-ASCII version", func(data []byte) { data[0] = 0xff }},
		{"Non-numeric offset", func(data []byte) { copy(data[10:18], "   12a45") }},
		{"Empty offset", func(data []byte) { copy(data[18:26], "        ") }},
		{"Signed offset", func(data []byte) { copy(data[26:34], "     -12") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := newFileBytes(t, Header{Version: format.Version31, TextStart: 256, TextEnd: 300, DataStart: 301, DataEnd: 399}, 400)
			tt.mutate(data)

			_, err := ParseHeader(data)
			require.ErrorIs(t, err, errs.ErrInvalidFormat)
		})
	}
}
