package compress

import (
	"fmt"

	"github.com/arloliu/fcs/format"
)

// Compressor compresses a whole serialized FCS file.
//
// Memory management:
//   - Returned slice is newly allocated and owned by the caller, except for
//     the no-op codec which returns its input
//   - Input slice is not modified
type Compressor interface {
	Compress(data []byte) ([]byte, error)
}

// Decompressor restores a serialized FCS file.
//
// rawSize is the uncompressed length recorded in the archive header. Codecs
// use it to size their output buffer up front; a result of a different length
// is reported as an error.
type Decompressor interface {
	Decompress(data []byte, rawSize int) ([]byte, error)
}

// Codec combines both directions.
type Codec interface {
	Compressor
	Decompressor
}

// Stats describes one compression run, printed by the archive command.
type Stats struct {
	Algorithm      format.CompressionType
	OriginalSize   int64
	CompressedSize int64
}

// Ratio returns compressed size / original size, or 0 for empty input.
func (s Stats) Ratio() float64 {
	if s.OriginalSize == 0 {
		return 0.0
	}

	return float64(s.CompressedSize) / float64(s.OriginalSize)
}

// SpaceSavings returns the saved space as a percentage.
func (s Stats) SpaceSavings() float64 {
	if s.OriginalSize == 0 {
		return 0.0
	}

	return (1.0 - s.Ratio()) * 100.0
}

var builtinCodecs = map[format.CompressionType]Codec{
	format.CompressionNone: NewNoOpCompressor(),
	format.CompressionZstd: NewZstdCompressor(),
	format.CompressionS2:   NewS2Compressor(),
	format.CompressionLZ4:  NewLZ4Compressor(),
}

// GetCodec retrieves the built-in Codec for a compression type.
func GetCodec(compressionType format.CompressionType) (Codec, error) {
	if codec, ok := builtinCodecs[compressionType]; ok {
		return codec, nil
	}

	return nil, fmt.Errorf("unsupported compression type: %s", compressionType)
}

// Compress runs the codec for compressionType over data and reports its stats.
func Compress(compressionType format.CompressionType, data []byte) ([]byte, Stats, error) {
	codec, err := GetCodec(compressionType)
	if err != nil {
		return nil, Stats{}, err
	}

	out, err := codec.Compress(data)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("%s compression failed: %w", compressionType, err)
	}

	return out, Stats{
		Algorithm:      compressionType,
		OriginalSize:   int64(len(data)),
		CompressedSize: int64(len(out)),
	}, nil
}

// Decompress runs the codec for compressionType and checks the output length.
func Decompress(compressionType format.CompressionType, data []byte, rawSize int) ([]byte, error) {
	codec, err := GetCodec(compressionType)
	if err != nil {
		return nil, err
	}

	out, err := codec.Decompress(data, rawSize)
	if err != nil {
		return nil, err
	}
	if len(out) != rawSize {
		return nil, fmt.Errorf("%s decompression produced %d bytes, expected %d", compressionType, len(out), rawSize)
	}

	return out, nil
}
