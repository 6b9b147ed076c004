// Package errs defines the error taxonomy shared by every fcs package.
//
// Sentinel errors classify a failure; FileError attaches the offending file's
// base name and the failing operation. Callers test the class with errors.Is:
//
//	f, err := fcsfile.Open(path)
//	if errors.Is(err, errs.ErrUnsupportedFormat) {
//	    // valid FCS, but a flavour this package does not read
//	}
package errs

import (
	"errors"
	"fmt"
	"path/filepath"
)

var (
	// ErrInvalidFormat reports a corrupt or truncated file: bad HEADER, undecodable
	// TEXT, missing required keywords, malformed token pairing or unresolvable DATA bounds.
	ErrInvalidFormat = errors.New("invalid FCS format")
	// ErrUnsupportedFormat reports a well-formed file using a $DATATYPE, bit width,
	// $BYTEORD or $MODE this package does not implement.
	ErrUnsupportedFormat = errors.New("unsupported FCS format")
	// ErrResourceBusy reports a close attempted while views of the mapping are alive.
	ErrResourceBusy = errors.New("resource busy")

	ErrClosed       = errors.New("file is closed")
	ErrReadOnly     = errors.New("file is read-only")
	ErrTargetExists = errors.New("target already exists")

	ErrColumnLength     = errors.New("column length does not match table rows")
	ErrDuplicateColumn  = errors.New("duplicate column name")
	ErrEmptyColumnName  = errors.New("column name must be non-empty")
	ErrColumnNotFound   = errors.New("column not found")
	ErrUnknownArchive   = errors.New("unknown archive format")
	ErrEmptyDataset     = errors.New("dataset has no columns")
	ErrNotConverged     = errors.New("text offsets did not converge")
	ErrInvalidDelimiter = errors.New("invalid TEXT delimiter")
)

// FileError decorates an error with the base name of the file it concerns.
type FileError struct {
	File string // base name, never a full path
	Op   string // open, view, copy, close, write, ...
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("fcs: %s %q: %v", e.Op, e.File, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// Wrap returns err decorated with the base name of path. A nil err stays nil,
// and an error that already carries a FileError is returned unchanged.
func Wrap(op, path string, err error) error {
	if err == nil {
		return nil
	}

	var fe *FileError
	if errors.As(err, &fe) {
		return err
	}

	return &FileError{File: filepath.Base(path), Op: op, Err: err}
}

// Invalid builds an ErrInvalidFormat error with a human readable cause.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidFormat, fmt.Sprintf(format, args...))
}

// Unsupported builds an ErrUnsupportedFormat error with a human readable cause.
func Unsupported(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrUnsupportedFormat, fmt.Sprintf(format, args...))
}

// Busy builds the ErrResourceBusy error returned when op cannot release a
// mapping because leases on it are still held.
func Busy(op string, leases int) error {
	return fmt.Errorf("%w: cannot %s while %d view(s) of the mapped data are alive; "+
		"call Release on every View and drop derived columns and byte slices, then retry %s",
		ErrResourceBusy, op, leases, op)
}
