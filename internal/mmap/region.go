// Package mmap maps FCS files into memory and tracks borrowed views of the
// mapping with explicit leases.
//
// A Region owns the mapped bytes. Every consumer that hands out slices of those
// bytes holds a Lease; Unmap and Close refuse to tear the mapping down while
// any Lease is outstanding and return errs.ErrResourceBusy instead. This turns
// "is the buffer still referenced" into one deterministic counter check.
package mmap

import (
	"fmt"
	"io"
	"runtime"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/arloliu/fcs/errs"
	"github.com/arloliu/fcs/internal/options"
)

// backing releases the storage behind a Region.
type backing interface {
	release() error
	close() error
	sync() error
}

// Region is a leased byte range: a file mapping or a heap buffer.
//
// Safe for concurrent use. Lease bookkeeping is guarded by a mutex because
// finalizers run on their own goroutine.
type Region struct {
	mu       sync.Mutex
	name     string
	data     []byte
	store    backing
	writable bool
	leases   int
	gen      uint64
	closed   bool
	log      logrus.FieldLogger
}

// Option configures a Region.
type Option = options.Option[*Region]

// WithLogger sets the logger used for debug lines about busy or finalized regions.
func WithLogger(l logrus.FieldLogger) Option {
	return options.NoError(func(r *Region) {
		if l != nil {
			r.log = l
		}
	})
}

// WithName sets the name reported in log lines.
func WithName(name string) Option {
	return options.NoError(func(r *Region) {
		r.name = name
	})
}

func newRegion(data []byte, store backing, writable bool, opts []Option) (*Region, error) {
	r := &Region{
		data:     data,
		store:    store,
		writable: writable,
		log:      discardLogger(),
	}
	if err := options.Apply(r, opts...); err != nil {
		return nil, err
	}

	runtime.SetFinalizer(r, regionFinalizer)

	return r, nil
}

// FromBytes wraps a heap buffer in a Region with the same lease rules as a
// file mapping.
func FromBytes(data []byte, opts ...Option) (*Region, error) {
	return newRegion(data, heapBacking{}, false, opts)
}

// Len returns the number of mapped bytes, or 0 once unmapped.
func (r *Region) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.data)
}

// Writable reports whether the mapping accepts writes.
func (r *Region) Writable() bool {
	return r.writable
}

// Mapped reports whether the bytes are still mapped.
func (r *Region) Mapped() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.data != nil
}

// Leases returns the number of outstanding leases.
func (r *Region) Leases() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.leases
}

// Bytes returns the whole mapped range without taking a lease.
//
// The slice is only valid while the Region is mapped; callers that keep it
// beyond a single call must hold a Lease.
func (r *Region) Bytes() []byte {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.data
}

// Acquire takes a lease on the mapping.
//
// Returns:
//   - *Lease: lease to hand to the borrowing view
//   - error: ErrClosed if the region is no longer mapped
func (r *Region) Acquire() (*Lease, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.data == nil {
		return nil, errs.ErrClosed
	}

	r.leases++
	l := &Lease{region: r, gen: r.gen, data: r.data}
	runtime.SetFinalizer(l, leaseFinalizer)

	return l, nil
}

// Unmap releases the mapping if no lease is outstanding.
//
// op names the caller-facing operation for the ErrResourceBusy message. Unmap
// is idempotent; a busy attempt leaves the mapping intact so it can be retried.
func (r *Region) Unmap(op string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.unmapLocked(op)
}

func (r *Region) unmapLocked(op string) error {
	if r.data == nil {
		return nil
	}
	if r.leases > 0 {
		r.log.WithFields(logrus.Fields{"region": r.name, "leases": r.leases}).
			Debug("mapping still leased, unmap refused")

		return errs.Busy(op, r.leases)
	}

	if err := r.store.release(); err != nil {
		return fmt.Errorf("unmap: %w", err)
	}
	r.data = nil
	r.gen++

	return nil
}

// Sync flushes a writable file mapping to disk.
func (r *Region) Sync() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.data == nil {
		return errs.ErrClosed
	}
	if !r.writable {
		return errs.ErrReadOnly
	}

	return r.store.sync()
}

// Close unmaps the region and closes the backing file.
//
// Close fails with ErrResourceBusy while leases are outstanding; the file
// stays open and Close can be called again after every lease is released.
func (r *Region) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	if err := r.unmapLocked("close"); err != nil {
		return err
	}

	r.closed = true
	runtime.SetFinalizer(r, nil)

	return r.store.close()
}

// regionFinalizer runs when a Region is collected without Close. A Region
// with outstanding leases is left mapped: there is no caller to report to.
func regionFinalizer(r *Region) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return
	}
	if r.leases > 0 {
		r.log.WithField("region", r.name).Debug("finalizer skipped unmap of a leased region")
		return
	}

	r.log.WithField("region", r.name).Debug("region collected without Close")
	if err := r.unmapLocked("finalize"); err != nil {
		return
	}
	r.closed = true
	_ = r.store.close()
}

type heapBacking struct{}

func (heapBacking) release() error { return nil }
func (heapBacking) close() error   { return nil }
func (heapBacking) sync() error    { return errs.ErrReadOnly }

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)

	return l
}
