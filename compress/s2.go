package compress

import (
	"fmt"

	"github.com/klauspost/compress/s2"
)

// S2Compressor balances speed and ratio; a good default for DATA dominated by
// float32 events.
type S2Compressor struct{}

var _ Codec = (*S2Compressor)(nil)

// NewS2Compressor creates a new S2 codec.
func NewS2Compressor() S2Compressor {
	return S2Compressor{}
}

// Compress compresses the input data using S2 compression.
func (c S2Compressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	return s2.Encode(nil, data), nil
}

// Decompress decompresses S2 data into a buffer of rawSize bytes.
func (c S2Compressor) Decompress(data []byte, rawSize int) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	n, err := s2.DecodedLen(data)
	if err != nil {
		return nil, fmt.Errorf("s2 decompression failed: %w", err)
	}
	if n != rawSize {
		return nil, fmt.Errorf("s2 block holds %d bytes, expected %d", n, rawSize)
	}

	return s2.Decode(make([]byte, rawSize), data)
}
