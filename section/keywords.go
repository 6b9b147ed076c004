package section

import (
	"iter"
	"maps"
	"slices"
	"strconv"

	"github.com/arloliu/fcs/errs"
)

// Keywords is an insertion-ordered mapping from keyword to Value.
//
// Note: Keywords is NOT thread-safe. Parsed keywords are treated as immutable;
// callers that want to edit them (the builder) work on a Clone.
type Keywords struct {
	order []string
	vals  map[string]Value
}

// NewKeywords creates an empty keyword set.
func NewKeywords() *Keywords {
	return &Keywords{vals: make(map[string]Value)}
}

// Len returns the number of keywords.
func (k *Keywords) Len() int {
	return len(k.order)
}

// Has reports whether key is present.
func (k *Keywords) Has(key string) bool {
	_, ok := k.vals[key]
	return ok
}

// Get returns the value for key.
func (k *Keywords) Get(key string) (Value, bool) {
	v, ok := k.vals[key]
	return v, ok
}

// Set stores v under key. A new key is appended to the iteration order;
// an existing key keeps its position.
func (k *Keywords) Set(key string, v Value) {
	if _, ok := k.vals[key]; !ok {
		k.order = append(k.order, key)
	}
	k.vals[key] = v
}

// SetInt stores an integer value under key.
func (k *Keywords) SetInt(key string, v int64) {
	k.Set(key, IntValue(v))
}

// SetString stores a text value under key.
func (k *Keywords) SetString(key, s string) {
	k.Set(key, TextValue(s))
}

// Delete removes key. It is a no-op if key is absent.
func (k *Keywords) Delete(key string) {
	if _, ok := k.vals[key]; !ok {
		return
	}
	delete(k.vals, key)
	k.order = slices.DeleteFunc(k.order, func(s string) bool { return s == key })
}

// Keys returns the keywords in insertion order. The slice is a copy.
func (k *Keywords) Keys() []string {
	return slices.Clone(k.order)
}

// All iterates keywords in insertion order.
func (k *Keywords) All() iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		for _, key := range k.order {
			if !yield(key, k.vals[key]) {
				return
			}
		}
	}
}

// Int returns the integer value of a required keyword.
//
// Returns:
//   - int64: keyword value
//   - error: ErrInvalidFormat if the keyword is missing or not an integer
func (k *Keywords) Int(key string) (int64, error) {
	v, ok := k.vals[key]
	if !ok {
		return 0, errs.Invalid("required keyword %s is missing", key)
	}

	n, ok := v.Int()
	if !ok {
		return 0, errs.Invalid("keyword %s=%q is not an integer", key, v.String())
	}

	return n, nil
}

// Text returns the string form of key, or "" if absent.
func (k *Keywords) Text(key string) string {
	return k.vals[key].String()
}

// Clone returns a deep copy.
func (k *Keywords) Clone() *Keywords {
	return &Keywords{
		order: slices.Clone(k.order),
		vals:  maps.Clone(k.vals),
	}
}

// Detector holds the per-parameter keywords of one parameter, keyed by suffix
// ("N" for $PnN, "B" for $PnB, ...).
type Detector map[string]Value

// Name returns the $PnN value, if any.
func (d Detector) Name() (string, bool) {
	v, ok := d[SuffixName]
	if !ok {
		return "", false
	}

	return v.String(), true
}

// Clone returns a copy of d. A nil Detector clones to an empty one.
func (d Detector) Clone() Detector {
	c := make(Detector, len(d))
	maps.Copy(c, d)

	return c
}

// Detectors maps 1-based parameter indexes to their per-parameter keywords.
type Detectors map[int]Detector

// Name returns the column name of parameter index: $PnN, or "P<index>".
func (d Detectors) Name(index int) string {
	if name, ok := d[index].Name(); ok && name != "" {
		return name
	}

	return "P" + strconv.Itoa(index)
}

// Indexes returns the parameter indexes in ascending order.
func (d Detectors) Indexes() []int {
	return slices.Sorted(maps.Keys(d))
}

// Clone returns a deep copy.
func (d Detectors) Clone() Detectors {
	c := make(Detectors, len(d))
	for idx, det := range d {
		c[idx] = det.Clone()
	}

	return c
}
