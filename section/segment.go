package section

import (
	"fmt"

	"github.com/arloliu/fcs/errs"
)

// BoundsSource identifies which declaration produced the DATA bounds.
type BoundsSource uint8

const (
	SourceHeader BoundsSource = iota + 1 // HEADER data-start/data-end
	SourceText                           // TEXT $BEGINDATA/$ENDDATA
)

func (s BoundsSource) String() string {
	switch s {
	case SourceHeader:
		return "header"
	case SourceText:
		return "text"
	default:
		return "unknown"
	}
}

// Bounds is a resolved DATA segment with an inclusive End.
type Bounds struct {
	Start  int64
	End    int64
	Source BoundsSource
}

// Len returns the number of bytes covered by b.
func (b Bounds) Len() int64 {
	return b.End - b.Start + 1
}

// ResolveData picks the DATA bounds to read.
//
// HEADER bounds are tried first when both are positive, then $BEGINDATA and
// $ENDDATA from TEXT. An end equal to fileSize is treated as fileSize-1. A
// candidate is accepted when both bounds are non-negative and inside the file,
// end >= start, and the segment holds at least expected bytes.
//
// Parameters:
//   - h: parsed HEADER
//   - kw: TEXT keywords
//   - fileSize: total file size in bytes
//   - expected: $TOT * record size
//
// Returns:
//   - Bounds: the first valid candidate in priority order; an empty Bounds
//     (Len 0) when expected is 0 and no candidate validates
//   - error: ErrInvalidFormat if no candidate validates
func ResolveData(h Header, kw *Keywords, fileSize, expected int64) (Bounds, error) {
	var rejected []string

	if h.DataStart > 0 && h.DataEnd > 0 {
		b := Bounds{Start: h.DataStart, End: h.DataEnd, Source: SourceHeader}
		reason := validateBounds(&b, fileSize, expected)
		if reason == "" {
			return b, nil
		}
		rejected = append(rejected, "header: "+reason)
	}

	if kw.Has(KeyBeginData) && kw.Has(KeyEndData) {
		begin, errBegin := kw.Int(KeyBeginData)
		end, errEnd := kw.Int(KeyEndData)
		if errBegin == nil && errEnd == nil {
			b := Bounds{Start: begin, End: end, Source: SourceText}
			reason := validateBounds(&b, fileSize, expected)
			if reason == "" {
				return b, nil
			}
			rejected = append(rejected, "text: "+reason)
		} else {
			rejected = append(rejected, "text: $BEGINDATA/$ENDDATA are not integers")
		}
	}

	// zero events need no DATA bytes at all
	if expected == 0 {
		return Bounds{Start: 0, End: -1}, nil
	}

	if len(rejected) == 0 {
		return Bounds{}, errs.Invalid("DATA bounds invalid or too small: no bounds declared")
	}

	return Bounds{}, errs.Invalid("DATA bounds invalid or too small: %v", rejected)
}

func validateBounds(b *Bounds, fileSize, expected int64) string {
	if b.End == fileSize {
		b.End = fileSize - 1
	}

	switch {
	case b.Start < 0 || b.End < 0:
		return fmt.Sprintf("negative bounds [%d, %d]", b.Start, b.End)
	case b.Start >= fileSize || b.End >= fileSize:
		return fmt.Sprintf("bounds [%d, %d] exceed file size %d", b.Start, b.End, fileSize)
	case b.End < b.Start:
		return fmt.Sprintf("end %d before start %d", b.End, b.Start)
	case b.Len() < expected:
		return fmt.Sprintf("segment of %d bytes is smaller than the %d expected", b.Len(), expected)
	default:
		return ""
	}
}
