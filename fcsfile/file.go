package fcsfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/sirupsen/logrus"

	"github.com/arloliu/fcs/dataset"
	"github.com/arloliu/fcs/errs"
	"github.com/arloliu/fcs/format"
	"github.com/arloliu/fcs/internal/hash"
	"github.com/arloliu/fcs/internal/mmap"
	"github.com/arloliu/fcs/section"
)

// File is an open FCS file.
//
// HEADER and TEXT are parsed at open time and never change afterwards. DATA
// is interpreted lazily: the record layout and segment bounds are resolved on
// the first View, Copy or Fingerprint call, which is also when an unsupported
// $MODE, $DATATYPE or $BYTEORD is reported.
//
// Note: File is NOT safe for concurrent use. Open separate handles instead;
// read-only handles on the same path never interfere.
type File struct {
	path   string
	size   int64
	header section.Header
	text   *section.Text
	params int
	region *mmap.Region
	log    logrus.FieldLogger

	layout *section.RecordLayout
	bounds *section.Bounds
	tot    int
	view   *View // internal view backing Copy and Fingerprint
	closed bool
}

// Metadata is a snapshot of everything parsed from a file. Keywords and
// Detectors are copies; Layout and Bounds are nil until DATA was resolved.
type Metadata struct {
	Name      string
	Header    section.Header
	Keywords  *section.Keywords
	Detectors section.Detectors
	Delimiter byte
	Layout    *section.RecordLayout
	Bounds    *section.Bounds
}

// Open maps path and parses its HEADER and TEXT.
//
// Parameters:
//   - path: FCS file path
//   - opts: WithWritable, WithLogger
//
// Returns:
//   - *File: open file; call Close when done
//   - error: a *errs.FileError wrapping ErrInvalidFormat for corrupt input, or
//     the underlying I/O error
func Open(path string, opts ...Option) (*File, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, errs.Wrap("open", path, err)
	}

	flag := os.O_RDONLY
	if cfg.writable {
		flag = os.O_RDWR
	}

	fd, err := os.OpenFile(path, flag, 0)
	if err != nil {
		return nil, errs.Wrap("open", path, err)
	}

	info, err := fd.Stat()
	if err != nil {
		return nil, errs.Wrap("open", path, errors.Join(err, fd.Close()))
	}
	if info.Size() < section.MinFileSize {
		closeErr := fd.Close()
		return nil, errs.Wrap("open", path, errors.Join(
			errs.Invalid("file is smaller than allowed (%d < %d bytes)", info.Size(), section.MinFileSize),
			closeErr,
		))
	}

	region, err := mmap.Map(fd, cfg.writable, mmap.WithLogger(cfg.log), mmap.WithName(filepath.Base(path)))
	if err != nil {
		return nil, errs.Wrap("open", path, errors.Join(err, fd.Close()))
	}

	f, err := newFile(path, region, cfg.log)
	if err != nil {
		return nil, errs.Wrap("open", path, errors.Join(err, region.Close()))
	}

	return f, nil
}

func newFile(path string, region *mmap.Region, log logrus.FieldLogger) (*File, error) {
	data := region.Bytes()

	header, err := section.ParseHeader(data)
	if err != nil {
		return nil, err
	}

	seg, err := section.TextSegment(data, header)
	if err != nil {
		return nil, err
	}

	text, err := section.ParseText(seg)
	if err != nil {
		return nil, err
	}

	par, err := text.Keywords.Int(section.KeyPar)
	if err != nil {
		return nil, err
	}

	f := &File{
		path:   path,
		params: int(par),
		size:   int64(len(data)),
		header: header,
		text:   text,
		region: region,
		log:    log.WithField("file", filepath.Base(path)),
	}
	runtime.SetFinalizer(f, fileFinalizer)

	f.log.WithFields(logrus.Fields{
		"version": header.Version,
		"par":     par,
		"size":    f.size,
	}).Debug("opened FCS file")

	return f, nil
}

// Name returns the base name of the file.
func (f *File) Name() string {
	return filepath.Base(f.path)
}

// Path returns the path the file was opened with.
func (f *File) Path() string {
	return f.path
}

// Size returns the file size in bytes.
func (f *File) Size() int64 {
	return f.size
}

// Header returns the parsed HEADER.
func (f *File) Header() section.Header {
	return f.header
}

// Version returns the FCS version of the file.
func (f *File) Version() format.Version {
	return f.header.Version
}

// Params returns $PAR.
func (f *File) Params() int {
	return f.params
}

// Delimiter returns the TEXT delimiter.
func (f *File) Delimiter() byte {
	return f.text.Delimiter
}

// Keywords returns a copy of the flat TEXT keywords.
func (f *File) Keywords() *section.Keywords {
	return f.text.Keywords.Clone()
}

// Detectors returns a copy of the per-parameter keywords.
func (f *File) Detectors() section.Detectors {
	return f.text.Detectors.Clone()
}

// Text returns a copy of the parsed TEXT segment.
func (f *File) Text() *section.Text {
	return f.text.Clone()
}

// Names returns the column names in parameter order.
func (f *File) Names() []string {
	names := make([]string, f.params)
	for i := range names {
		names[i] = f.text.Detectors.Name(i + 1)
	}

	return names
}

// Metadata returns a snapshot of the parsed metadata.
func (f *File) Metadata() Metadata {
	md := Metadata{
		Name:      f.Name(),
		Header:    f.header,
		Keywords:  f.Keywords(),
		Detectors: f.Detectors(),
		Delimiter: f.text.Delimiter,
		Layout:    f.layout,
	}
	if f.bounds != nil {
		b := *f.bounds
		md.Bounds = &b
	}

	return md
}

// resolve derives the record layout and DATA bounds once.
func (f *File) resolve() error {
	if f.layout != nil {
		return nil
	}

	layout, err := section.DeriveLayout(f.text.Keywords, f.text.Detectors)
	if err != nil {
		return err
	}

	tot, err := f.text.Keywords.Int(section.KeyTot)
	if err != nil {
		return err
	}
	if tot < 0 {
		return errs.Invalid("$TOT is negative (%d)", tot)
	}
	if maxTot := layout.MaxEvents(f.size - section.HeaderSize); tot > maxTot {
		return errs.Invalid("$TOT=%d events of %d bytes cannot fit in a %d byte file",
			tot, layout.RecordSize, f.size)
	}

	bounds, err := section.ResolveData(f.header, f.text.Keywords, f.size, layout.Expected(tot))
	if err != nil {
		return err
	}

	f.log.WithFields(logrus.Fields{
		"source": bounds.Source,
		"start":  bounds.Start,
		"end":    bounds.End,
		"tot":    tot,
		"record": layout.RecordSize,
	}).Debug("resolved DATA bounds")

	f.layout = layout
	f.bounds = &bounds
	f.tot = int(tot)

	return nil
}

// View returns a zero-copy table over DATA.
//
// Each call returns a new View holding its own lease on the mapping. Release
// every View before Close; a leased mapping makes Close fail with
// ErrResourceBusy.
//
// Returns:
//   - *View: borrowed table with $TOT rows and $PAR columns
//   - error: ErrClosed, ErrUnsupportedFormat for a non list-mode file or an
//     unsupported data type, ErrInvalidFormat for unresolvable DATA bounds
func (f *File) View() (*View, error) {
	v, err := f.newView()
	if err != nil {
		return nil, errs.Wrap("view", f.path, err)
	}

	return v, nil
}

func (f *File) newView() (*View, error) {
	if f.closed {
		return nil, errs.ErrClosed
	}
	if err := f.resolve(); err != nil {
		return nil, err
	}

	lease, err := f.region.Acquire()
	if err != nil {
		return nil, err
	}

	v := newView(f.Name(), lease, f.layout, *f.bounds, f.tot, f.text.Detectors, f.region.Writable())
	f.log.WithField("leases", f.region.Leases()).Debug("created data view")

	return v, nil
}

// internalView returns the cached view used by Copy and Fingerprint.
func (f *File) internalView() (*View, error) {
	if f.view != nil && !f.view.Released() {
		return f.view, nil
	}

	v, err := f.newView()
	if err != nil {
		return nil, err
	}
	f.view = v

	return v, nil
}

// Copy materializes DATA into an owned Frame that outlives the file.
func (f *File) Copy() (*dataset.Frame, error) {
	v, err := f.internalView()
	if err != nil {
		return nil, errs.Wrap("copy", f.path, err)
	}

	frame, err := dataset.FromTable(v)
	if err != nil {
		return nil, errs.Wrap("copy", f.path, err)
	}

	return frame, nil
}

// Fingerprint returns the xxHash64 of the resolved DATA bytes. Two files with
// identical events in the same layout share a fingerprint regardless of TEXT.
func (f *File) Fingerprint() (uint64, error) {
	v, err := f.internalView()
	if err != nil {
		return 0, errs.Wrap("fingerprint", f.path, err)
	}

	return hash.Sum(v.Bytes()), nil
}

// Sync flushes in-place DATA edits of a writable file to disk.
func (f *File) Sync() error {
	if f.closed {
		return errs.Wrap("sync", f.path, errs.ErrClosed)
	}

	return errs.Wrap("sync", f.path, f.region.Sync())
}

// Close unmaps the file and closes its descriptor.
//
// The internal cached view is dropped before the unmap is attempted. If any
// View handed out by View is still unreleased, Close fails with
// ErrResourceBusy and leaves the file open; release the views and call Close
// again.
func (f *File) Close() error {
	if f.closed {
		return nil
	}

	if f.view != nil {
		f.view.Release()
		f.view = nil
	}

	if err := f.region.Close(); err != nil {
		f.log.WithError(err).WithField("leases", f.region.Leases()).Debug("close refused")
		return errs.Wrap("close", f.path, err)
	}

	f.closed = true
	runtime.SetFinalizer(f, nil)

	return nil
}

// fileFinalizer is the safety net for a File dropped without Close. A busy
// mapping stays mapped; there is nobody left to report the error to.
func fileFinalizer(f *File) {
	if f.closed {
		return
	}

	if f.view != nil {
		f.view.Release()
		f.view = nil
	}
	if err := f.region.Close(); err != nil {
		f.log.WithError(err).Debug("finalizer left a leased mapping in place")
		return
	}
	f.closed = true
}

func (f *File) String() string {
	return fmt.Sprintf("%s (%s, %d parameters)", f.Name(), f.header.Version, f.params)
}
