package collision

import (
	"strings"

	"github.com/arloliu/fcs/errs"
	"github.com/arloliu/fcs/internal/hash"
)

// Tracker indexes column names by their xxHash64 and detects hash collisions.
//
// Lookups hash the name once and compare the candidate names sharing that
// hash, so a collision costs one extra string comparison instead of an error.
type Tracker struct {
	positions    map[uint64][]int // hash → column positions sharing it
	names        []string         // column names in insertion order
	hasCollision bool
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{
		positions: make(map[uint64][]int),
		names:     make([]string, 0),
	}
}

// TrackColumn registers name as the next column and returns its position.
//
// Returns:
//   - int: zero-based column position
//   - error: ErrEmptyColumnName for a blank name, ErrDuplicateColumn if the
//     name is already tracked
func (t *Tracker) TrackColumn(name string) (int, error) {
	if strings.TrimSpace(name) == "" {
		return 0, errs.ErrEmptyColumnName
	}

	id := hash.ID(name)
	for _, pos := range t.positions[id] {
		if t.names[pos] == name {
			return 0, errs.ErrDuplicateColumn
		}
	}
	if len(t.positions[id]) > 0 {
		// different name, same hash
		t.hasCollision = true
	}

	pos := len(t.names)
	t.positions[id] = append(t.positions[id], pos)
	t.names = append(t.names, name)

	return pos, nil
}

// Lookup returns the position of name.
func (t *Tracker) Lookup(name string) (int, bool) {
	for _, pos := range t.positions[hash.ID(name)] {
		if t.names[pos] == name {
			return pos, true
		}
	}

	return 0, false
}

// HasCollision returns true if two tracked names share a hash.
func (t *Tracker) HasCollision() bool {
	return t.hasCollision
}

// Names returns the tracked names in insertion order.
func (t *Tracker) Names() []string {
	return t.names
}

// Count returns the number of tracked columns.
func (t *Tracker) Count() int {
	return len(t.names)
}

// Clone returns an independent copy of t.
func (t *Tracker) Clone() *Tracker {
	c := &Tracker{
		positions:    make(map[uint64][]int, len(t.positions)),
		names:        append([]string(nil), t.names...),
		hasCollision: t.hasCollision,
	}
	for id, pos := range t.positions {
		c.positions[id] = append([]int(nil), pos...)
	}

	return c
}

// Reset clears all tracked names while keeping allocated capacity.
func (t *Tracker) Reset() {
	clear(t.positions)
	t.names = t.names[:0]
	t.hasCollision = false
}

// trackWithID registers name under a caller supplied hash. Tests use it to
// force collisions.
func (t *Tracker) trackWithID(name string, id uint64) int {
	pos := len(t.names)
	if len(t.positions[id]) > 0 {
		t.hasCollision = true
	}
	t.positions[id] = append(t.positions[id], pos)
	t.names = append(t.names, name)

	return pos
}
