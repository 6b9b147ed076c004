// Package section defines the low-level segment structures of an FCS file.
//
// This package parses and serializes the three segments of a single-dataset FCS
// file and derives everything needed to interpret DATA. It works on byte
// slices only; opening, mapping and building files live in fcsfile and builder.
//
// # File Structure
//
//	┌─────────────────────────────────────────────────────────┐
//	│ HEADER (256 bytes, fixed)                               │
//	│  - [0,6)   version tag: FCS2.0, FCS3.0 or FCS3.1        │
//	│  - [10,18) text start   (right-justified ASCII)         │
//	│  - [18,26) text end                                     │
//	│  - [26,34) data start   (0 = see $BEGINDATA)            │
//	│  - [34,42) data end     (0 = see $ENDDATA)              │
//	├─────────────────────────────────────────────────────────┤
//	│ TEXT (variable)                                         │
//	│  - first byte is the delimiter D                        │
//	│  - key D value D key D value D ...                      │
//	│  - DD inside a token is one literal D                   │
//	├─────────────────────────────────────────────────────────┤
//	│ DATA ($TOT × record size)                               │
//	│  - one fixed-width record per event                     │
//	│  - fields in parameter order, widths from $PnB          │
//	└─────────────────────────────────────────────────────────┘
//
// All offsets are absolute and inclusive.
//
// # Keywords and Detectors
//
// TEXT values are a tagged variant (Value): fully numeric tokens become
// integers, everything else stays text. Keys of the form $P<n><suffix> are
// grouped into Detectors[n][suffix] and removed from the flat Keywords.
//
// # Record Layout
//
// DeriveLayout combines $DATATYPE, $PnB and $BYTEORD:
//
//	$DATATYPE | $PnB          | Kind
//	----------|---------------|---------------------------
//	I         | 8/16/32/64    | unsigned integer
//	F         | 32            | IEEE 754 float32
//	D         | 64            | IEEE 754 float64
//
// Only list mode ($MODE=L) and the byte orders "1,2,3,4" and "4,3,2,1" are
// supported.
//
// # DATA Bounds
//
// ResolveData reconciles HEADER and TEXT declarations of the DATA segment.
// HEADER bounds win when both are positive and valid; otherwise
// $BEGINDATA/$ENDDATA are used. Writers of files larger than 99,999,999 bytes
// store zeros in HEADER, which is why both sources exist.
//
// # Thread Safety
//
// Parsed values are not synchronized. Header is a plain value; Keywords and
// Detectors must be cloned before concurrent mutation.
package section
