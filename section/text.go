package section

import (
	"bytes"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/arloliu/fcs/errs"
)

// DefaultDelimiter is used when no template delimiter is available.
const DefaultDelimiter = '|'

// Text is the parsed TEXT segment: flat keywords plus per-parameter keywords
// grouped by parameter index.
//
// Keys of the form $P<index><suffix> never remain in Keywords; they live in
// Detectors[index][suffix]. Every index 1..$PAR has a (possibly empty) entry.
type Text struct {
	Delimiter byte
	Keywords  *Keywords
	Detectors Detectors
}

// TextSegment returns the inclusive [TextStart, TextEnd] range of data.
func TextSegment(data []byte, h Header) ([]byte, error) {
	minStart := int64(DataEndOffset + OffsetFieldWidth)
	if h.TextStart < minStart || h.TextEnd < h.TextStart || h.TextEnd >= int64(len(data)) {
		return nil, errs.Invalid("text segment has invalid bounds [%d, %d] for a %d byte file",
			h.TextStart, h.TextEnd, len(data))
	}

	return data[h.TextStart : h.TextEnd+1], nil
}

// ParseText parses a raw TEXT segment.
//
// The first byte is the delimiter. The remaining bytes are split into tokens
// where a doubled delimiter stands for one literal delimiter character and a
// single delimiter ends the token. Tokens are consumed as key/value pairs;
// fully numeric values become integer Values.
//
// Keys are trimmed of surrounding whitespace. Keys that are equal after
// trimming name one keyword: the last value wins and the keyword keeps the
// position of its first occurrence.
//
// Returns:
//   - *Text: parsed keywords and detectors
//   - error: ErrInvalidFormat on empty or non-ASCII input, malformed pairing,
//     or a missing/invalid $PAR
func ParseText(seg []byte) (*Text, error) {
	if len(seg) == 0 {
		return nil, errs.Invalid("text segment is empty")
	}
	if !isASCII(seg) {
		return nil, errs.Invalid("text segment cannot be decoded as ASCII")
	}

	delim := seg[0]
	tokens := splitTokens(seg[1:], delim)
	if len(tokens) < 2 {
		return nil, errs.Invalid("text segment contains no key value pairs")
	}
	if len(tokens)%2 != 0 {
		return nil, errs.Invalid("text segment has an unpaired keyword %q", tokens[len(tokens)-1])
	}

	kw := NewKeywords()
	for i := 0; i < len(tokens); i += 2 {
		key := strings.TrimSpace(tokens[i])
		if key == "" {
			return nil, errs.Invalid("text segment has an empty keyword at token %d", i)
		}
		// Set overwrites, so a repeated key keeps its last value
		kw.Set(key, decodeValue(tokens[i+1]))
	}

	det, err := groupDetectors(kw, int64(len(seg)))
	if err != nil {
		return nil, err
	}

	return &Text{Delimiter: delim, Keywords: kw, Detectors: det}, nil
}

// Bytes serializes t with its own delimiter.
func (t *Text) Bytes() ([]byte, error) {
	return EncodeText(t.Delimiter, t.Keywords, t.Detectors)
}

// Clone returns a deep copy of t.
func (t *Text) Clone() *Text {
	return &Text{
		Delimiter: t.Delimiter,
		Keywords:  t.Keywords.Clone(),
		Detectors: t.Detectors.Clone(),
	}
}

// EncodeText serializes keywords and detectors into a TEXT segment.
//
// Detectors are flattened back into $P<index><suffix> keys. PreferredKeys come
// first, the remaining keys follow in lexicographic order. Every token has the
// delimiter doubled, and empty values are written as a single space.
//
// A value beginning or ending with the delimiter cannot be told apart from a
// token boundary by any reader; such values are written but do not round-trip.
func EncodeText(delim byte, kw *Keywords, det Detectors) ([]byte, error) {
	if err := ValidateDelimiter(delim); err != nil {
		return nil, err
	}

	flat := kw.Clone()
	for _, idx := range det.Indexes() {
		d := det[idx]
		for _, suffix := range slices.Sorted(maps.Keys(d)) {
			flat.Set(detectorKey(idx, suffix), d[suffix])
		}
	}

	var buf bytes.Buffer
	buf.WriteByte(delim)
	for _, key := range orderKeys(flat) {
		v, _ := flat.Get(key)
		val := v.String()
		if val == "" {
			val = " "
		}
		for _, tok := range []string{key, val} {
			if !isASCII([]byte(tok)) {
				return nil, errs.Invalid("keyword %q has a non-ASCII token", key)
			}
			writeEscaped(&buf, tok, delim)
			buf.WriteByte(delim)
		}
	}

	return buf.Bytes(), nil
}

// ValidateDelimiter checks that delim is a printable, non-space ASCII byte.
func ValidateDelimiter(delim byte) error {
	if delim <= ' ' || delim >= 0x7f {
		return fmt.Errorf("%w: %q", errs.ErrInvalidDelimiter, delim)
	}

	return nil
}

// ParseDetectorKey splits "$P<index><suffix>" into its parts.
func ParseDetectorKey(key string) (int, string, bool) {
	if len(key) < 4 || key[0] != '$' || key[1] != 'P' {
		return 0, "", false
	}

	i := 2
	for i < len(key) && key[i] >= '0' && key[i] <= '9' {
		i++
	}
	if i == 2 || i == len(key) {
		return 0, "", false
	}

	suffix := key[i:]
	for j := 0; j < len(suffix); j++ {
		c := suffix[j]
		if (c < 'A' || c > 'Z') && (c < 'a' || c > 'z') {
			return 0, "", false
		}
	}

	idx, err := strconv.Atoi(key[2:i])
	if err != nil {
		return 0, "", false
	}

	return idx, suffix, true
}

func detectorKey(index int, suffix string) string {
	return "$P" + strconv.Itoa(index) + suffix
}

// groupDetectors moves $P<n><suffix> keys into Detectors. A real parameter
// needs at least one TEXT byte, so $PAR above maxPar marks a corrupt segment.
func groupDetectors(kw *Keywords, maxPar int64) (Detectors, error) {
	if !kw.Has(KeyPar) {
		return nil, errs.Invalid("$PAR is missing in the text segment")
	}
	par, err := kw.Int(KeyPar)
	if err != nil {
		return nil, err
	}
	if par < 0 {
		return nil, errs.Invalid("$PAR is negative (%d)", par)
	}
	if par > maxPar {
		return nil, errs.Invalid("$PAR=%d exceeds what a %d byte text segment can describe", par, maxPar)
	}

	det := make(Detectors, par)
	for _, key := range kw.Keys() {
		idx, suffix, ok := ParseDetectorKey(key)
		if !ok {
			continue
		}
		if det[idx] == nil {
			det[idx] = Detector{}
		}
		v, _ := kw.Get(key)
		det[idx][suffix] = v
		kw.Delete(key)
	}

	for idx := 1; idx <= int(par); idx++ {
		if det[idx] == nil {
			det[idx] = Detector{}
		}
	}

	return det, nil
}

func splitTokens(payload []byte, delim byte) []string {
	payload = bytes.TrimRight(payload, " \x00\r\n")

	var tokens []string
	cur := make([]byte, 0, 32)
	for i := 0; i < len(payload); i++ {
		c := payload[i]
		if c != delim {
			cur = append(cur, c)
			continue
		}
		if i+1 < len(payload) && payload[i+1] == delim {
			cur = append(cur, delim)
			i++
			continue
		}
		tokens = append(tokens, string(cur))
		cur = cur[:0]
	}
	if len(cur) > 0 {
		tokens = append(tokens, string(cur))
	}

	for len(tokens) > 0 && tokens[len(tokens)-1] == "" {
		tokens = tokens[:len(tokens)-1]
	}

	return tokens
}

func decodeValue(tok string) Value {
	if strings.TrimSpace(tok) == "" {
		return TextValue("")
	}

	return ParseValue(tok)
}

func writeEscaped(buf *bytes.Buffer, tok string, delim byte) {
	for i := 0; i < len(tok); i++ {
		if tok[i] == delim {
			buf.WriteByte(delim)
		}
		buf.WriteByte(tok[i])
	}
}

func orderKeys(kw *Keywords) []string {
	ordered := make([]string, 0, kw.Len())
	for _, key := range PreferredKeys {
		if kw.Has(key) {
			ordered = append(ordered, key)
		}
	}

	rest := slices.DeleteFunc(kw.Keys(), func(key string) bool {
		return slices.Contains(PreferredKeys, key)
	})
	slices.Sort(rest)

	return append(ordered, rest...)
}
