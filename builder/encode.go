package builder

import (
	"bytes"
	"fmt"
	"io"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/arloliu/fcs/dataset"
	"github.com/arloliu/fcs/endian"
	"github.com/arloliu/fcs/errs"
	"github.com/arloliu/fcs/format"
	"github.com/arloliu/fcs/internal/pool"
	"github.com/arloliu/fcs/section"
)

// maxPasses bounds the offset fixpoint. Offsets only grow by the digits of
// earlier offsets, so realistic files settle by the second or third pass.
const maxPasses = 8

// encodeMeta serializes TEXT with self-consistent $BEGINDATA/$ENDDATA and
// returns the matching HEADER.
//
// Each pass encodes TEXT with the current offsets, derives the offsets that
// TEXT length implies and stops once they equal the encoded ones, which means
// the serialized length is stable.
func (b *Builder) encodeMeta() (section.Header, []byte, error) {
	kw := b.text.Keywords.Clone()
	dataLen := b.layout.Expected(int64(b.table.Rows()))

	var start, end int64
	for pass := 1; pass <= maxPasses; pass++ {
		kw.SetInt(section.KeyBeginData, start)
		kw.SetInt(section.KeyEndData, end)

		text, err := section.EncodeText(b.text.Delimiter, kw, b.text.Detectors)
		if err != nil {
			return section.Header{}, nil, err
		}

		textEnd := int64(section.HeaderSize + len(text) - 1)
		nextStart, nextEnd := dataOffsets(textEnd, dataLen)

		b.log.WithFields(logrus.Fields{
			"pass":       pass,
			"text_len":   len(text),
			"data_start": nextStart,
			"data_end":   nextEnd,
		}).Debug("offset pass")

		if nextStart == start && nextEnd == end {
			h := section.Header{
				Version:   b.version,
				TextStart: section.HeaderSize,
				TextEnd:   textEnd,
				DataStart: start,
				DataEnd:   end,
			}

			return h, text, nil
		}
		start, end = nextStart, nextEnd
	}

	return section.Header{}, nil, fmt.Errorf("%w after %d passes", errs.ErrNotConverged, maxPasses)
}

// dataOffsets places DATA right after TEXT. An empty DATA segment is
// declared as 0/0.
func dataOffsets(textEnd, dataLen int64) (int64, int64) {
	if dataLen == 0 {
		return 0, 0
	}

	start := textEnd + 1
	return start, start + dataLen - 1
}

// WriteTo writes the complete file to w. It implements io.WriterTo.
func (b *Builder) WriteTo(w io.Writer) (int64, error) {
	h, text, err := b.encodeMeta()
	if err != nil {
		return 0, err
	}

	hdr, err := h.Bytes()
	if err != nil {
		return 0, err
	}

	var written int64
	for _, seg := range [][]byte{hdr, text} {
		n, err := w.Write(seg)
		written += int64(n)
		if err != nil {
			return written, err
		}
	}

	n, err := b.writeData(w)
	written += n

	return written, err
}

// ToBytes returns the complete file in memory.
func (b *Builder) ToBytes() ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(section.HeaderSize + 4096 + int(b.layout.Expected(int64(b.table.Rows()))))

	if _, err := b.WriteTo(&buf); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// writeData streams the DATA records to w in pooled chunks.
func (b *Builder) writeData(w io.Writer) (int64, error) {
	chunk := pool.GetChunk()
	defer pool.PutChunk(chunk)

	fields := b.layout.Fields
	cols := make([]dataset.Column, len(fields))
	for j := range cols {
		cols[j] = b.table.Column(j)
	}

	for i := range b.table.Rows() {
		chunk.Reserve(b.layout.RecordSize)
		for j, f := range fields {
			chunk.B = appendValue(chunk.B, b.layout.Engine, f.Kind, cols[j], i)
		}

		if chunk.Full() {
			if err := chunk.Flush(w); err != nil {
				return chunk.Flushed(), err
			}
		}
	}

	err := chunk.Flush(w)

	return chunk.Flushed(), err
}

func appendValue(dst []byte, engine endian.EndianEngine, kind format.NumericKind, col dataset.Column, i int) []byte {
	switch kind {
	case format.KindFloat32:
		return engine.AppendUint32(dst, math.Float32bits(float32(col.Float64(i))))
	case format.KindFloat64:
		return engine.AppendUint64(dst, math.Float64bits(col.Float64(i)))
	case format.KindUint8:
		return append(dst, uint8(col.Uint64(i)))
	case format.KindUint16:
		return engine.AppendUint16(dst, uint16(col.Uint64(i)))
	case format.KindUint32:
		return engine.AppendUint32(dst, uint32(col.Uint64(i)))
	default:
		return engine.AppendUint64(dst, col.Uint64(i))
	}
}
