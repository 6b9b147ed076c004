// Package hash provides the xxHash64 digests used for column-name lookup and
// DATA fingerprints.
package hash

import "github.com/cespare/xxhash/v2"

// ID computes the xxHash64 of a column name.
func ID(name string) uint64 {
	return xxhash.Sum64String(name)
}

// Sum computes the xxHash64 of raw bytes.
func Sum(data []byte) uint64 {
	return xxhash.Sum64(data)
}
