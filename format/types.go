package format

import "fmt"

type (
	Version         string
	DataType        byte
	NumericKind     uint8
	CompressionType uint8
)

const (
	Version20 Version = "FCS2.0"
	Version30 Version = "FCS3.0"
	Version31 Version = "FCS3.1"
)

const (
	DataInteger DataType = 'I' // DataInteger stores unsigned integers of $PnB bits.
	DataFloat   DataType = 'F' // DataFloat stores IEEE 754 single precision values.
	DataDouble  DataType = 'D' // DataDouble stores IEEE 754 double precision values.
)

const (
	KindUint8 NumericKind = iota + 1
	KindUint16
	KindUint32
	KindUint64
	KindFloat32
	KindFloat64
)

const (
	CompressionNone CompressionType = 0x1 // CompressionNone represents no compression.
	CompressionZstd CompressionType = 0x2 // CompressionZstd represents Zstandard compression.
	CompressionS2   CompressionType = 0x3 // CompressionS2 represents S2 compression.
	CompressionLZ4  CompressionType = 0x4 // CompressionLZ4 represents LZ4 compression.
)

// ListMode is the only supported $MODE value: one fixed-width record per event.
const ListMode = "L"

// ParseVersion returns the Version for one of the three supported tags.
func ParseVersion(s string) (Version, bool) {
	switch v := Version(s); v {
	case Version20, Version30, Version31:
		return v, true
	default:
		return "", false
	}
}

func (v Version) String() string {
	return string(v)
}

// IsV3 reports whether v is an FCS 3.x version.
func (v Version) IsV3() bool {
	return v == Version30 || v == Version31
}

// ParseDataType parses a $DATATYPE keyword value.
func ParseDataType(s string) (DataType, bool) {
	if len(s) != 1 {
		return 0, false
	}

	switch d := DataType(s[0]); d {
	case DataInteger, DataFloat, DataDouble:
		return d, true
	default:
		return 0, false
	}
}

func (d DataType) String() string {
	return string(rune(d))
}

// Rank orders data types by the values they can hold: I < F < D.
func (d DataType) Rank() int {
	switch d {
	case DataInteger:
		return 1
	case DataFloat:
		return 2
	case DataDouble:
		return 3
	default:
		return 0
	}
}

// UintKind returns the unsigned integer kind for a bit width.
func UintKind(bits int) (NumericKind, bool) {
	switch bits {
	case 8:
		return KindUint8, true
	case 16:
		return KindUint16, true
	case 32:
		return KindUint32, true
	case 64:
		return KindUint64, true
	default:
		return 0, false
	}
}

// Width returns the byte width of one value.
func (k NumericKind) Width() int {
	switch k {
	case KindUint8:
		return 1
	case KindUint16:
		return 2
	case KindUint32, KindFloat32:
		return 4
	case KindUint64, KindFloat64:
		return 8
	default:
		return 0
	}
}

// Bits returns the bit width of one value.
func (k NumericKind) Bits() int {
	return k.Width() * 8
}

// IsFloat reports whether k is an IEEE 754 kind.
func (k NumericKind) IsFloat() bool {
	return k == KindFloat32 || k == KindFloat64
}

// DataType returns the $DATATYPE able to store k.
func (k NumericKind) DataType() DataType {
	switch k {
	case KindFloat32:
		return DataFloat
	case KindFloat64:
		return DataDouble
	default:
		return DataInteger
	}
}

func (k NumericKind) String() string {
	switch k {
	case KindUint8:
		return "uint8"
	case KindUint16:
		return "uint16"
	case KindUint32:
		return "uint32"
	case KindUint64:
		return "uint64"
	case KindFloat32:
		return "float32"
	case KindFloat64:
		return "float64"
	default:
		return "unknown"
	}
}

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}

// Valid reports whether c is one of the built-in compression types.
func (c CompressionType) Valid() bool {
	return c >= CompressionNone && c <= CompressionLZ4
}

// ParseCompression parses a compression name as used in configuration files.
func ParseCompression(s string) (CompressionType, error) {
	switch s {
	case "", "none":
		return CompressionNone, nil
	case "zstd":
		return CompressionZstd, nil
	case "s2":
		return CompressionS2, nil
	case "lz4":
		return CompressionLZ4, nil
	default:
		return 0, fmt.Errorf("unknown compression %q", s)
	}
}
