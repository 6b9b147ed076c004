// Package fcs reads and writes Flow Cytometry Standard (FCS 2.0, 3.0 and 3.1)
// list-mode files.
//
// This package is the entry point for callers that only need the common
// operations. The building blocks live in sub-packages:
//
//   - section: HEADER, TEXT, record layout and DATA bounds codecs
//   - fcsfile: memory-mapped reading with zero-copy views
//   - builder: serialization of tables into complete FCS files
//   - dataset: the column and table types shared by reader and builder
//
// # Reading
//
//	f, err := fcs.Open("sample.fcs")
//	if err != nil {
//	    return err
//	}
//	defer f.Close()
//
//	v, err := f.View()
//	if err != nil {
//	    return err
//	}
//	defer v.Release()
//
//	fsc, _ := v.Lookup("FSC-A")
//	first := fsc.Float64(0)
//
// Views read straight from the mapping. Close fails with errs.ErrResourceBusy
// while any View is unreleased; Copy returns an owned table instead.
//
// # Writing
//
//	err := fcs.AddColumn("sample.fcs", "gated.fcs", "gate", mask)
package fcs

import (
	"path/filepath"

	"github.com/arloliu/fcs/builder"
	"github.com/arloliu/fcs/dataset"
	"github.com/arloliu/fcs/errs"
	"github.com/arloliu/fcs/fcsfile"
)

// Open maps an FCS file for reading. See fcsfile.Open.
func Open(path string, opts ...fcsfile.Option) (*fcsfile.File, error) {
	return fcsfile.Open(path, opts...)
}

// OpenArchive opens a compressed FCS archive. See fcsfile.OpenArchive.
func OpenArchive(path string, opts ...fcsfile.Option) (*fcsfile.File, error) {
	return fcsfile.OpenArchive(path, opts...)
}

// FromDataset plans a new FCS file for table. See builder.FromDataset.
func FromDataset(table dataset.Table, opts ...builder.Option) (*builder.Builder, error) {
	return builder.FromDataset(table, opts...)
}

// Rewrite copies the events of src, lets edit change them, and writes the
// result to dst with src as the template.
//
// dst is replaced atomically when it exists, so dst may equal src. The source
// is closed before the target is written.
//
// Parameters:
//   - src: source FCS file
//   - dst: target path
//   - edit: optional in-place edit of the copied events; nil keeps them as is
//   - opts: extra builder options, applied after the template
func Rewrite(src, dst string, edit func(*dataset.Frame) error, opts ...builder.Option) error {
	f, err := fcsfile.Open(src)
	if err != nil {
		return err
	}

	b, err := planRewrite(f, edit, opts)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return errs.Wrap("rewrite", src, err)
	}

	_, err = b.Write(filepath.Clean(dst), builder.WithOverwrite())

	return err
}

func planRewrite(f *fcsfile.File, edit func(*dataset.Frame) error, opts []builder.Option) (*builder.Builder, error) {
	frame, err := f.Copy()
	if err != nil {
		return nil, err
	}

	if edit != nil {
		if err := edit(frame); err != nil {
			return nil, err
		}
	}

	return builder.FromDataset(frame, append([]builder.Option{builder.WithTemplate(f)}, opts...)...)
}

// AddColumn appends a float64 column named name to the events of src and
// writes the result to dst. The values are written bit for bit; the file's
// $DATATYPE is promoted to D when needed.
//
// Returns:
//   - error: ErrEmptyColumnName, ErrDuplicateColumn, ErrColumnLength, or any
//     Open or Write error
func AddColumn(src, dst, name string, values []float64, opts ...builder.Option) error {
	return Rewrite(src, dst, func(frame *dataset.Frame) error {
		return frame.AddFloat64(name, values)
	}, opts...)
}
