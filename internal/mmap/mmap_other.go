//go:build !unix

package mmap

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// Map reads f into a heap buffer on platforms without mmap. Leases behave
// exactly as for a mapping; writable regions are not supported.
func Map(f *os.File, writable bool, opts ...Option) (*Region, error) {
	if writable {
		return nil, errors.New("map: writable mappings require a unix platform")
	}

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("map: invalid size %d", len(data))
	}

	return newRegion(data, &fileBacking{file: f}, false, append([]Option{WithName(f.Name())}, opts...))
}

type fileBacking struct {
	file *os.File
}

func (b *fileBacking) release() error { return nil }
func (b *fileBacking) close() error   { return b.file.Close() }
func (b *fileBacking) sync() error    { return nil }
