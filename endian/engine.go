// Package endian maps FCS $BYTEORD keyword values to byte order engines.
//
// FCS records the byte order of DATA as a permutation string. Only the two
// whole-word orders are supported:
//
//	"1,2,3,4"  little-endian
//	"4,3,2,1"  big-endian
//
// # Basic Usage
//
//	engine, ok := endian.ParseByteOrd(keywords.Text("$BYTEORD"))
//	if !ok {
//	    return errs.Unsupported("byte order")
//	}
//	v := engine.Uint32(record[off:])
//
// # Thread Safety
//
// All functions in this package are safe for concurrent use.
// The returned EndianEngine instances are immutable and stateless.
package endian

import (
	"encoding/binary"
	"unsafe"
)

const (
	// ByteOrdLittle is the $BYTEORD value for little-endian DATA.
	ByteOrdLittle = "1,2,3,4"
	// ByteOrdBig is the $BYTEORD value for big-endian DATA.
	ByteOrdBig = "4,3,2,1"
)

// EndianEngine combines ByteOrder and AppendByteOrder interfaces from encoding/binary
// into a single interface: readers use the ByteOrder half on mapped records, the
// builder uses the AppendByteOrder half while serializing DATA.
//
// This interface is satisfied by binary.LittleEndian and binary.BigEndian.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// CheckEndianness uses a fixed integer value to determine the host's byte order.
func CheckEndianness() binary.ByteOrder {
	// 0x0100 is 256. For a little-endian system, the LSB (0x00) is first.
	var i uint16 = 0x0100
	b := (*[2]byte)(unsafe.Pointer(&i))
	if b[0] == 0x01 {
		return binary.BigEndian
	}

	return binary.LittleEndian
}

// IsNative reports whether engine matches the host byte order.
func IsNative(engine EndianEngine) bool {
	return engine == CheckEndianness()
}

// GetLittleEndianEngine returns the little-endian engine.
func GetLittleEndianEngine() EndianEngine {
	return binary.LittleEndian
}

// GetBigEndianEngine returns the big-endian engine.
func GetBigEndianEngine() EndianEngine {
	return binary.BigEndian
}

// ParseByteOrd returns the engine for a $BYTEORD value. The match is exact;
// partial orders such as "1,2" or mixed orders such as "3,4,1,2" are rejected.
func ParseByteOrd(s string) (EndianEngine, bool) {
	switch s {
	case ByteOrdLittle:
		return binary.LittleEndian, true
	case ByteOrdBig:
		return binary.BigEndian, true
	default:
		return nil, false
	}
}

// ByteOrd returns the $BYTEORD value describing engine.
func ByteOrd(engine EndianEngine) string {
	if engine == binary.BigEndian {
		return ByteOrdBig
	}

	return ByteOrdLittle
}
