package compress

// NoOpCompressor stores the file uncompressed. Useful for checksum-only
// archives and as a baseline when comparing codecs.
type NoOpCompressor struct{}

var _ Codec = (*NoOpCompressor)(nil)

// NewNoOpCompressor creates a no-op codec.
func NewNoOpCompressor() NoOpCompressor {
	return NoOpCompressor{}
}

// Compress returns data as-is; the result shares memory with the input.
func (c NoOpCompressor) Compress(data []byte) ([]byte, error) {
	return data, nil
}

// Decompress returns data as-is; rawSize is only checked by the caller.
func (c NoOpCompressor) Decompress(data []byte, _ int) ([]byte, error) {
	return data, nil
}
