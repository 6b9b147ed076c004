//go:build unix

package mmap

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// Map maps the whole of f into memory.
//
// The mapping is MAP_SHARED; with writable set it is also PROT_WRITE, which
// requires f to be opened read-write. The kernel is told that DATA is read
// front to back. The Region takes ownership of f and closes it on Close.
//
// Parameters:
//   - f: open file, at least one byte long
//   - writable: map with PROT_WRITE
//   - opts: WithLogger, WithName
//
// Returns:
//   - *Region: mapped region with no outstanding leases
//   - error: stat or mmap failure
func Map(f *os.File, writable bool, opts ...Option) (*Region, error) {
	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat: %w", err)
	}

	size := info.Size()
	if size <= 0 {
		return nil, fmt.Errorf("map: invalid size %d", size)
	}
	if int64(int(size)) != size {
		return nil, fmt.Errorf("map: file of %d bytes exceeds the address space", size)
	}

	prot := unix.PROT_READ
	if writable {
		prot |= unix.PROT_WRITE
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(size), prot, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("mmap %d bytes: %w", size, err)
	}

	// advice is a hint; kernels without madvise return ENOSYS
	if err := unix.Madvise(data, unix.MADV_SEQUENTIAL); err != nil && !errors.Is(err, unix.ENOSYS) {
		return nil, errors.Join(fmt.Errorf("madvise: %w", err), unix.Munmap(data))
	}

	store := &fileBacking{file: f, data: data}
	r, err := newRegion(data, store, writable, append([]Option{WithName(f.Name())}, opts...))
	if err != nil {
		return nil, errors.Join(err, unix.Munmap(data))
	}

	return r, nil
}

type fileBacking struct {
	file *os.File
	data []byte
}

func (b *fileBacking) release() error {
	if b.data == nil {
		return nil
	}
	if err := unix.Munmap(b.data); err != nil {
		return err
	}
	b.data = nil

	return nil
}

func (b *fileBacking) close() error {
	return b.file.Close()
}

func (b *fileBacking) sync() error {
	if b.data == nil {
		return nil
	}

	return unix.Msync(b.data, unix.MS_SYNC)
}
