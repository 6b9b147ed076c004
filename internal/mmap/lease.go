package mmap

import "fmt"

// Lease is a borrow of a Region's bytes.
//
// A Lease pins the mapping: the Region refuses to unmap until every Lease is
// released. Release is idempotent. Slices handed out from a Lease are not
// tracked by the GC, so a Lease that becomes unreachable without Release keeps
// the mapping pinned; its finalizer only logs.
type Lease struct {
	region   *Region
	gen      uint64
	data     []byte
	released bool
}

// Bytes returns the leased range. It panics after Release.
func (l *Lease) Bytes() []byte {
	l.Check("lease")
	return l.data
}

// Valid reports whether the lease still guards a live mapping.
func (l *Lease) Valid() bool {
	if l == nil || l.released {
		return false
	}

	l.region.mu.Lock()
	defer l.region.mu.Unlock()

	return l.region.gen == l.gen && l.region.data != nil
}

// Check panics if the lease is no longer valid. what names the borrowing
// object in the panic message.
func (l *Lease) Check(what string) {
	if l == nil || l.released {
		panic(fmt.Sprintf("fcs: %s used after Release", what))
	}
}

// Released reports whether Release has been called.
func (l *Lease) Released() bool {
	return l.released
}

// Release returns the lease to its Region.
func (l *Lease) Release() {
	if l == nil || l.released {
		return
	}

	l.released = true
	l.data = nil

	r := l.region
	r.mu.Lock()
	if r.gen == l.gen && r.leases > 0 {
		r.leases--
	}
	r.mu.Unlock()
}

// leaseFinalizer runs for a Lease dropped without Release. Slices taken from
// it may still be alive, so the lease count is left untouched.
func leaseFinalizer(l *Lease) {
	if l.released {
		return
	}

	r := l.region
	r.mu.Lock()
	defer r.mu.Unlock()

	r.log.WithField("region", r.name).Debug("lease collected without Release, mapping stays pinned")
}
