package section

import (
	"github.com/arloliu/fcs/endian"
	"github.com/arloliu/fcs/errs"
	"github.com/arloliu/fcs/format"
)

// Archive header layout.
const (
	ArchiveMagic      = "FCSZ"
	ArchiveHeaderSize = 13 // magic(4) + codec(1) + raw size(8)
)

// ArchiveHeader precedes the compressed payload of an FCS archive.
//
//	[0,4)   "FCSZ"
//	[4]     compression type
//	[5,13)  uncompressed FCS file size, little-endian uint64
type ArchiveHeader struct {
	Compression format.CompressionType
	RawSize     uint64
}

// IsArchive reports whether data starts with the archive magic.
func IsArchive(data []byte) bool {
	return len(data) >= len(ArchiveMagic) && string(data[:len(ArchiveMagic)]) == ArchiveMagic
}

// ParseArchiveHeader parses the archive header at the start of data.
//
// Returns:
//   - ArchiveHeader: parsed header
//   - error: ErrUnknownArchive for a missing magic or an unknown codec,
//     ErrInvalidFormat for a truncated header
func ParseArchiveHeader(data []byte) (ArchiveHeader, error) {
	if !IsArchive(data) {
		return ArchiveHeader{}, errs.ErrUnknownArchive
	}
	if len(data) < ArchiveHeaderSize {
		return ArchiveHeader{}, errs.Invalid("archive header is truncated (%d < %d bytes)", len(data), ArchiveHeaderSize)
	}

	h := ArchiveHeader{
		Compression: format.CompressionType(data[4]),
		RawSize:     endian.GetLittleEndianEngine().Uint64(data[5:13]),
	}
	if !h.Compression.Valid() {
		return ArchiveHeader{}, errs.ErrUnknownArchive
	}

	return h, nil
}

// Bytes serializes the header.
func (h ArchiveHeader) Bytes() []byte {
	b := make([]byte, 0, ArchiveHeaderSize)
	b = append(b, ArchiveMagic...)
	b = append(b, byte(h.Compression))

	return endian.GetLittleEndianEngine().AppendUint64(b, h.RawSize)
}
