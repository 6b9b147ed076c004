// Package fcstest writes raw FCS files for tests without going through the
// builder, so reader tests do not depend on the writer under test.
package fcstest

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

// Param describes one parameter.
type Param struct {
	Name  string // $PnN; omitted when empty
	Bits  int    // $PnB; omitted when 0
	Range string // $PnR; omitted when empty
}

// Spec describes a file to write. Zero values pick sensible defaults:
// FCS3.1, '/' delimiter, F data, little-endian, list mode.
type Spec struct {
	Version   string
	Delimiter byte
	DataType  string
	ByteOrd   string
	Mode      string
	OmitMode  bool
	Params    []Param
	Events    [][]float64
	Extra     [][2]string // extra keywords, written in order

	ZeroHeaderData bool // write 0/0 as HEADER data offsets
	OmitTextData   bool // do not write $BEGINDATA/$ENDDATA
	TrailingBytes  int  // bytes appended after DATA
}

// Build returns the complete file bytes described by s.
func Build(tb testing.TB, s Spec) []byte {
	tb.Helper()

	if s.Version == "" {
		s.Version = "FCS3.1"
	}
	if s.Delimiter == 0 {
		s.Delimiter = '/'
	}
	if s.DataType == "" {
		s.DataType = "F"
	}
	if s.ByteOrd == "" {
		s.ByteOrd = "1,2,3,4"
	}
	if s.Mode == "" {
		s.Mode = "L"
	}

	data := encodeData(tb, s)

	// offsets are zero padded to a fixed width so TEXT length does not depend on them
	const textStart = 256
	pairs := [][2]string{
		{"$TOT", strconv.Itoa(len(s.Events))},
		{"$PAR", strconv.Itoa(len(s.Params))},
		{"$DATATYPE", s.DataType},
		{"$BYTEORD", s.ByteOrd},
	}
	if !s.OmitMode {
		pairs = append(pairs, [2]string{"$MODE", s.Mode})
	}
	for i, p := range s.Params {
		n := strconv.Itoa(i + 1)
		if p.Name != "" {
			pairs = append(pairs, [2]string{"$P" + n + "N", p.Name})
		}
		if p.Bits != 0 {
			pairs = append(pairs, [2]string{"$P" + n + "B", strconv.Itoa(p.Bits)})
		}
		if p.Range != "" {
			pairs = append(pairs, [2]string{"$P" + n + "R", p.Range})
		}
	}
	pairs = append(pairs, s.Extra...)

	const placeholder = "0000000000"
	if !s.OmitTextData {
		pairs = append(pairs, [2]string{"$BEGINDATA", placeholder}, [2]string{"$ENDDATA", placeholder})
	}

	text := encodeText(s.Delimiter, pairs)
	dataStart := textStart + len(text)
	dataEnd := dataStart + len(data) - 1
	if len(data) == 0 {
		dataEnd = dataStart
	}

	if !s.OmitTextData {
		text = bytes.Replace(text, []byte(placeholder), []byte(fmt.Sprintf("%010d", dataStart)), 1)
		text = bytes.Replace(text, []byte(placeholder), []byte(fmt.Sprintf("%010d", dataEnd)), 1)
	}

	header := bytes.Repeat([]byte{' '}, 256)
	copy(header, s.Version)
	putField(header[10:18], textStart)
	putField(header[18:26], textStart+len(text)-1)
	if s.ZeroHeaderData {
		putField(header[26:34], 0)
		putField(header[34:42], 0)
	} else {
		putField(header[26:34], dataStart)
		putField(header[34:42], dataEnd)
	}

	out := make([]byte, 0, dataStart+len(data)+s.TrailingBytes)
	out = append(out, header...)
	out = append(out, text...)
	out = append(out, data...)
	out = append(out, make([]byte, s.TrailingBytes)...)

	return out
}

// Write builds s into dir/name and returns the path.
func Write(tb testing.TB, dir, name string, s Spec) string {
	tb.Helper()

	path := filepath.Join(dir, name)
	require.NoError(tb, os.WriteFile(path, Build(tb, s), 0o644))

	return path
}

// Events returns rows×cols events where event i of parameter j is i*cols+j+0.5.
func Events(rows, cols int) [][]float64 {
	out := make([][]float64, rows)
	for i := range out {
		out[i] = make([]float64, cols)
		for j := range out[i] {
			out[i][j] = float64(i*cols+j) + 0.5
		}
	}

	return out
}

func encodeText(delim byte, pairs [][2]string) []byte {
	var buf bytes.Buffer
	buf.WriteByte(delim)
	for _, kv := range pairs {
		for _, tok := range kv {
			buf.Write(bytes.ReplaceAll([]byte(tok), []byte{delim}, []byte{delim, delim}))
			buf.WriteByte(delim)
		}
	}

	return buf.Bytes()
}

func encodeData(tb testing.TB, s Spec) []byte {
	tb.Helper()

	var order binary.AppendByteOrder = binary.LittleEndian
	if s.ByteOrd == "4,3,2,1" {
		order = binary.BigEndian
	}

	var out []byte
	for _, row := range s.Events {
		require.Len(tb, row, len(s.Params))
		for j, v := range row {
			bits := s.Params[j].Bits
			if bits == 0 {
				bits = 32
			}
			switch {
			case s.DataType == "F":
				out = order.AppendUint32(out, math.Float32bits(float32(v)))
			case s.DataType == "D":
				out = order.AppendUint64(out, math.Float64bits(v))
			case bits == 8:
				out = append(out, uint8(v))
			case bits == 16:
				out = order.AppendUint16(out, uint16(v))
			case bits == 32:
				out = order.AppendUint32(out, uint32(v))
			default:
				out = order.AppendUint64(out, uint64(v))
			}
		}
	}

	return out
}

func putField(field []byte, v int) {
	s := strconv.Itoa(v)
	copy(field[len(field)-len(s):], s)
}
