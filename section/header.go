package section

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/arloliu/fcs/errs"
	"github.com/arloliu/fcs/format"
)

// Header represents the fixed 256-byte HEADER segment at the start of an FCS file.
//
// All offsets are absolute, inclusive byte positions. DataStart and DataEnd may
// both be zero, in which case the DATA bounds are taken from $BEGINDATA/$ENDDATA.
type Header struct {
	Version   format.Version // byte offset 0-5
	TextStart int64          // byte offset 10-17
	TextEnd   int64          // byte offset 18-25
	DataStart int64          // byte offset 26-33
	DataEnd   int64          // byte offset 34-41
}

// ParseHeader parses the HEADER from the beginning of a whole FCS file.
//
// Parameters:
//   - data: file content; at least MinFileSize bytes
//
// Returns:
//   - Header: parsed header
//   - error: ErrInvalidFormat when the file is too small, the version tag is not
//     ASCII or not supported, or an offset field is not a decimal integer
func ParseHeader(data []byte) (Header, error) {
	if len(data) < MinFileSize {
		return Header{}, errs.Invalid("file is smaller than allowed (%d < %d bytes)", len(data), MinFileSize)
	}

	tag := data[:VersionSize]
	if !isASCII(tag) {
		return Header{}, errs.Invalid("FCS version cannot be decoded")
	}

	version, ok := format.ParseVersion(string(tag))
	if !ok {
		return Header{}, errs.Invalid("FCS version %q is undefined", tag)
	}

	h := Header{Version: version}
	fields := []struct {
		name string
		off  int
		dst  *int64
	}{
		{"text start", TextStartOffset, &h.TextStart},
		{"text end", TextEndOffset, &h.TextEnd},
		{"data start", DataStartOffset, &h.DataStart},
		{"data end", DataEndOffset, &h.DataEnd},
	}

	for _, f := range fields {
		v, err := parseOffsetField(data[f.off : f.off+OffsetFieldWidth])
		if err != nil {
			return Header{}, errs.Invalid("%s segment offset is undefined: %v", f.name, err)
		}
		*f.dst = v
	}

	return h, nil
}

// Encode writes the HEADER into the first HeaderSize bytes of dst.
//
// Offsets are right-justified and space padded. Data offsets beyond
// MaxHeaderOffset are written as 0 so that readers fall back to TEXT.
func (h Header) Encode(dst []byte) error {
	if len(dst) < HeaderSize {
		return fmt.Errorf("header encode: buffer too small (%d < %d)", len(dst), HeaderSize)
	}
	if _, ok := format.ParseVersion(string(h.Version)); !ok {
		return fmt.Errorf("header encode: unsupported version %q", h.Version)
	}

	hdr := dst[:HeaderSize]
	for i := range hdr {
		hdr[i] = ' '
	}
	copy(hdr[:VersionSize], h.Version)

	dataStart, dataEnd := h.DataStart, h.DataEnd
	if dataStart > MaxHeaderOffset || dataEnd > MaxHeaderOffset {
		dataStart, dataEnd = 0, 0
	}

	fields := []struct {
		name string
		off  int
		v    int64
	}{
		{"text start", TextStartOffset, h.TextStart},
		{"text end", TextEndOffset, h.TextEnd},
		{"data start", DataStartOffset, dataStart},
		{"data end", DataEndOffset, dataEnd},
	}

	for _, f := range fields {
		if err := putOffsetField(hdr[f.off:f.off+OffsetFieldWidth], f.v); err != nil {
			return fmt.Errorf("header encode: %s: %w", f.name, err)
		}
	}

	return nil
}

// Bytes serializes the Header into a new HeaderSize byte slice.
func (h Header) Bytes() ([]byte, error) {
	b := make([]byte, HeaderSize)
	if err := h.Encode(b); err != nil {
		return nil, err
	}

	return b, nil
}

func parseOffsetField(field []byte) (int64, error) {
	s := bytes.TrimSpace(field)
	if len(s) == 0 {
		return 0, fmt.Errorf("empty field")
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("non-numeric field %q", field)
		}
	}

	return strconv.ParseInt(string(s), 10, 64)
}

func putOffsetField(field []byte, v int64) error {
	if v < 0 {
		return fmt.Errorf("negative offset %d", v)
	}

	s := strconv.FormatInt(v, 10)
	if len(s) > len(field) {
		return fmt.Errorf("offset %d does not fit in %d characters", v, len(field))
	}

	pad := len(field) - len(s)
	for i := 0; i < pad; i++ {
		field[i] = ' '
	}
	copy(field[pad:], s)

	return nil
}

func isASCII(b []byte) bool {
	for _, c := range b {
		if c >= 0x80 {
			return false
		}
	}

	return true
}
