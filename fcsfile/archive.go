package fcsfile

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/arloliu/fcs/compress"
	"github.com/arloliu/fcs/errs"
	"github.com/arloliu/fcs/internal/mmap"
	"github.com/arloliu/fcs/section"
)

// OpenArchive opens a compressed FCS archive written by the builder.
//
// The archive is decompressed into memory and exposed through the same File
// API as a mapped file, including the lease rules of View and Close.
// WithWritable is ignored: archives are read-only.
//
// Returns:
//   - *File: open file backed by a heap buffer
//   - error: ErrUnknownArchive when path is not an archive, ErrInvalidFormat
//     for a damaged payload or an invalid embedded FCS file
func OpenArchive(path string, opts ...Option) (*File, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, errs.Wrap("open archive", path, err)
	}

	packed, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.Wrap("open archive", path, err)
	}

	raw, err := unpack(packed)
	if err != nil {
		return nil, errs.Wrap("open archive", path, err)
	}

	region, err := mmap.FromBytes(raw, mmap.WithLogger(cfg.log), mmap.WithName(filepath.Base(path)))
	if err != nil {
		return nil, errs.Wrap("open archive", path, err)
	}

	f, err := newFile(path, region, cfg.log)
	if err != nil {
		return nil, errs.Wrap("open archive", path, errors.Join(err, region.Close()))
	}

	return f, nil
}

// unpack validates the archive header and returns the embedded FCS bytes.
func unpack(packed []byte) ([]byte, error) {
	h, err := section.ParseArchiveHeader(packed)
	if err != nil {
		return nil, err
	}
	if h.RawSize < section.MinFileSize || h.RawSize > uint64(maxArchiveSize) {
		return nil, errs.Invalid("archive declares an FCS file of %d bytes", h.RawSize)
	}

	raw, err := compress.Decompress(h.Compression, packed[section.ArchiveHeaderSize:], int(h.RawSize))
	if err != nil {
		return nil, errs.Invalid("archive payload: %v", err)
	}

	return raw, nil
}

// maxArchiveSize caps the decompressed size of an archive at 4 GiB.
const maxArchiveSize = 4 << 30
