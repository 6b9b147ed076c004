// Package compress provides the codecs used for compressed FCS archives.
//
// An archive stores a complete serialized FCS file (HEADER, TEXT and DATA)
// behind a small header that records the codec and the uncompressed length.
// Each codec compresses the whole file in one shot; FCS DATA is written once
// and read back whole, so there is no streaming mode.
//
// # Supported Algorithms
//
//	format.CompressionNone  stored as-is
//	format.CompressionZstd  best ratio, CRC-protected frames
//	format.CompressionS2    balanced speed and ratio
//	format.CompressionLZ4   fastest decompression
//
// # Usage
//
//	out, stats, err := compress.Compress(format.CompressionZstd, fileBytes)
//	...
//	raw, err := compress.Decompress(format.CompressionZstd, out, len(fileBytes))
//
// # Thread Safety
//
// All codecs are stateless values and safe for concurrent use. The zstd and
// LZ4 codecs draw encoder state from sync.Pool.
package compress
