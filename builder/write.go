package builder

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/segmentio/ksuid"
	"github.com/sirupsen/logrus"

	"github.com/arloliu/fcs/compress"
	"github.com/arloliu/fcs/errs"
	"github.com/arloliu/fcs/format"
	"github.com/arloliu/fcs/internal/options"
	"github.com/arloliu/fcs/section"
)

// Write writes the file to path and returns the path actually written.
//
// The file is first written to a sibling "<name>.<ksuid>.tmp" file, synced and
// renamed over the target, so readers never observe a partial file. A File
// still mapping the old target keeps reading the old content.
//
// Parameters:
//   - path: target path
//   - opts: WithOverwrite, WithFCSSuffix
//
// Returns:
//   - string: written path, with ".fcs" appended under WithFCSSuffix
//   - error: ErrTargetExists without WithOverwrite, or an encode/I/O error,
//     wrapped in a *errs.FileError
func (b *Builder) Write(path string, opts ...WriteOption) (string, error) {
	cfg := &writeConfig{}
	if err := options.Apply(cfg, opts...); err != nil {
		return "", errs.Wrap("write", path, err)
	}

	if cfg.fcsSuffix && !strings.EqualFold(filepath.Ext(path), ".fcs") {
		path += ".fcs"
	}

	err := atomicWrite(path, cfg.overwrite, func(w io.Writer) error {
		_, err := b.WriteTo(w)
		return err
	})
	if err != nil {
		return "", errs.Wrap("write", path, err)
	}

	b.log.WithField("file", filepath.Base(path)).Debug("wrote FCS file")

	return path, nil
}

// WriteArchive writes the file as a compressed archive readable by
// fcsfile.OpenArchive. WithFCSSuffix is ignored.
//
// Returns:
//   - compress.Stats: raw and compressed sizes
//   - error: ErrTargetExists without WithOverwrite, an unknown codec, or an
//     encode/I/O error, wrapped in a *errs.FileError
func (b *Builder) WriteArchive(path string, ct format.CompressionType, opts ...WriteOption) (compress.Stats, error) {
	cfg := &writeConfig{}
	if err := options.Apply(cfg, opts...); err != nil {
		return compress.Stats{}, errs.Wrap("write archive", path, err)
	}

	raw, err := b.ToBytes()
	if err != nil {
		return compress.Stats{}, errs.Wrap("write archive", path, err)
	}

	payload, stats, err := compress.Compress(ct, raw)
	if err != nil {
		return compress.Stats{}, errs.Wrap("write archive", path, err)
	}

	hdr := section.ArchiveHeader{Compression: ct, RawSize: uint64(len(raw))}.Bytes()
	err = atomicWrite(path, cfg.overwrite, func(w io.Writer) error {
		if _, err := w.Write(hdr); err != nil {
			return err
		}
		_, err := w.Write(payload)

		return err
	})
	if err != nil {
		return compress.Stats{}, errs.Wrap("write archive", path, err)
	}

	b.log.WithFields(logrus.Fields{
		"file":  filepath.Base(path),
		"codec": ct,
		"ratio": stats.Ratio(),
	}).Debug("wrote FCS archive")

	return stats, nil
}

// atomicWrite fills a temp file next to path and renames it over path.
func atomicWrite(path string, overwrite bool, fill func(io.Writer) error) error {
	if !overwrite {
		_, err := os.Lstat(path)
		if err == nil {
			return errs.ErrTargetExists
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}

	tmp := path + "." + ksuid.New().String() + ".tmp"
	fd, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}

	if err := fill(fd); err != nil {
		return errors.Join(err, fd.Close(), os.Remove(tmp))
	}
	if err := fd.Sync(); err != nil {
		return errors.Join(err, fd.Close(), os.Remove(tmp))
	}
	if err := fd.Close(); err != nil {
		return errors.Join(err, os.Remove(tmp))
	}
	if err := os.Rename(tmp, path); err != nil {
		return errors.Join(err, os.Remove(tmp))
	}

	return nil
}
