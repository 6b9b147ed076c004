package compress

import (
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// EncodeAll and DecodeAll are safe for concurrent use, so one encoder and one
// decoder serve every archive.
var (
	zstdEncoder = sync.OnceValues(func() (*zstd.Encoder, error) {
		return zstd.NewWriter(nil,
			zstd.WithEncoderLevel(zstd.SpeedBetterCompression),
			zstd.WithEncoderCRC(true),
		)
	})
	zstdDecoder = sync.OnceValues(func() (*zstd.Decoder, error) {
		return zstd.NewReader(nil, zstd.WithDecoderConcurrency(0))
	})
)

// ZstdCompressor gives the best ratio of the built-in codecs and is meant for
// long-term storage of acquisitions.
type ZstdCompressor struct{}

var _ Codec = (*ZstdCompressor)(nil)

// NewZstdCompressor creates a new Zstd codec.
func NewZstdCompressor() ZstdCompressor {
	return ZstdCompressor{}
}

// Compress encodes data as one zstd frame. Frames carry a CRC so a damaged
// archive is reported instead of decoding into wrong events.
func (c ZstdCompressor) Compress(data []byte) ([]byte, error) {
	enc, err := zstdEncoder()
	if err != nil {
		return nil, fmt.Errorf("zstd encoder: %w", err)
	}

	return enc.EncodeAll(data, make([]byte, 0, len(data)/2)), nil
}

// Decompress decodes a zstd frame into a buffer preallocated to rawSize.
func (c ZstdCompressor) Decompress(data []byte, rawSize int) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	dec, err := zstdDecoder()
	if err != nil {
		return nil, fmt.Errorf("zstd decoder: %w", err)
	}

	out, err := dec.DecodeAll(data, make([]byte, 0, rawSize))
	if err != nil {
		return nil, fmt.Errorf("zstd decompression failed: %w", err)
	}

	return out, nil
}
