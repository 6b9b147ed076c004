package section

import (
	"math"

	"github.com/arloliu/fcs/endian"
	"github.com/arloliu/fcs/errs"
	"github.com/arloliu/fcs/format"
)

// Field describes one parameter's slot inside a DATA record.
type Field struct {
	Index  int                // 1-based parameter index
	Offset int                // byte offset inside the record
	Width  int                // byte width
	Kind   format.NumericKind // stored numeric kind
}

// RecordLayout is the fixed-width binary description of one DATA event.
//
// Fields are ordered by ascending parameter index and packed without padding,
// so RecordSize is the sum of all field widths.
type RecordLayout struct {
	Fields     []Field
	RecordSize int
	Engine     endian.EndianEngine
	ByteOrd    string
	DataType   format.DataType
}

// DeriveLayout builds the record layout from the TEXT keywords.
//
// Parameters:
//   - kw: flat keywords; $PAR, $DATATYPE and $BYTEORD are required
//   - det: detectors, one entry per parameter; $PnB defaults to DefaultBits
//     when absent
//
// Returns:
//   - *RecordLayout: derived layout
//   - error: ErrInvalidFormat when a required keyword is missing,
//     ErrUnsupportedFormat for any $MODE, $DATATYPE, $BYTEORD or bit width
//     combination that is not list mode with I 8/16/32/64, F 32 or D 64
func DeriveLayout(kw *Keywords, det Detectors) (*RecordLayout, error) {
	if kw.Has(KeyMode) {
		if mode := kw.Text(KeyMode); mode != format.ListMode {
			return nil, errs.Unsupported("$MODE %q is not supported, only list mode (L) can be read", mode)
		}
	}

	par, err := kw.Int(KeyPar)
	if err != nil {
		return nil, err
	}
	if par < 0 {
		return nil, errs.Invalid("$PAR is negative (%d)", par)
	}
	if par > int64(len(det)) {
		return nil, errs.Invalid("$PAR=%d but only %d parameters are described", par, len(det))
	}

	if !kw.Has(KeyDataType) {
		return nil, errs.Invalid("required keyword %s is missing", KeyDataType)
	}
	dt, ok := format.ParseDataType(kw.Text(KeyDataType))
	if !ok {
		return nil, errs.Unsupported("$DATATYPE %q is not supported", kw.Text(KeyDataType))
	}

	if !kw.Has(KeyByteOrd) {
		return nil, errs.Invalid("required keyword %s is missing", KeyByteOrd)
	}
	byteOrd := kw.Text(KeyByteOrd)
	engine, ok := endian.ParseByteOrd(byteOrd)
	if !ok {
		return nil, errs.Unsupported("$BYTEORD %q is not supported", byteOrd)
	}

	layout := &RecordLayout{
		Fields:   make([]Field, 0, par),
		Engine:   engine,
		ByteOrd:  byteOrd,
		DataType: dt,
	}

	for idx := 1; idx <= int(par); idx++ {
		bits, err := parameterBits(det[idx], idx)
		if err != nil {
			return nil, err
		}

		kind, ok := FieldKind(dt, bits)
		if !ok {
			return nil, errs.Unsupported("parameter %d: $DATATYPE %s with %d bits", idx, dt, bits)
		}

		layout.Fields = append(layout.Fields, Field{
			Index:  idx,
			Offset: layout.RecordSize,
			Width:  kind.Width(),
			Kind:   kind,
		})
		layout.RecordSize += kind.Width()
	}

	return layout, nil
}

// FieldKind returns the stored kind for a $DATATYPE and $PnB combination:
// I with 8/16/32/64 bits, F with 32 bits or D with 64 bits.
func FieldKind(dt format.DataType, bits int) (format.NumericKind, bool) {
	switch dt {
	case format.DataInteger:
		return format.UintKind(bits)
	case format.DataFloat:
		if bits == 32 {
			return format.KindFloat32, true
		}
	case format.DataDouble:
		if bits == 64 {
			return format.KindFloat64, true
		}
	}

	return 0, false
}

func parameterBits(d Detector, idx int) (int, error) {
	v, ok := d[SuffixBits]
	if !ok {
		return DefaultBits, nil
	}

	bits, ok := v.Int()
	if !ok {
		return 0, errs.Unsupported("$P%dB=%q is not a fixed bit width", idx, v.String())
	}

	return int(bits), nil
}

// Expected returns the DATA byte length needed for tot events. A length
// that does not fit in an int64 saturates at math.MaxInt64.
func (l *RecordLayout) Expected(tot int64) int64 {
	if l.RecordSize == 0 || tot <= 0 {
		return 0
	}
	if tot > math.MaxInt64/int64(l.RecordSize) {
		return math.MaxInt64
	}

	return tot * int64(l.RecordSize)
}

// MaxEvents returns the largest event count whose records fit in avail
// bytes. Zero-width records fit any count.
func (l *RecordLayout) MaxEvents(avail int64) int64 {
	if l.RecordSize == 0 {
		return math.MaxInt64
	}
	if avail <= 0 {
		return 0
	}

	return avail / int64(l.RecordSize)
}
