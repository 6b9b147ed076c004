package section

// offset and section sizes in the FCS file
const (
	HeaderSize  = 256            // fixed HEADER size in bytes
	MinFileSize = HeaderSize + 1 // HEADER plus at least one content byte
	VersionSize = 6              // [0,6) ASCII version tag

	OffsetFieldWidth = 8 // width of each right-justified ASCII offset field

	TextStartOffset = 10 // [10,18) text-start
	TextEndOffset   = 18 // [18,26) text-end
	DataStartOffset = 26 // [26,34) data-start
	DataEndOffset   = 34 // [34,42) data-end

	// MaxHeaderOffset is the largest offset representable in an 8 character field.
	// Larger offsets are written as 0 and carried by TEXT only.
	MaxHeaderOffset = 99_999_999
)

// Keyword names the core reads or writes.
const (
	KeyTot           = "$TOT"
	KeyPar           = "$PAR"
	KeyDataType      = "$DATATYPE"
	KeyByteOrd       = "$BYTEORD"
	KeyMode          = "$MODE"
	KeyBeginData     = "$BEGINDATA"
	KeyEndData       = "$ENDDATA"
	KeyNextData      = "$NEXTDATA"
	KeyBeginAnalysis = "$BEGINANALYSIS"
	KeyEndAnalysis   = "$ENDANALYSIS"
	KeyBeginSText    = "$BEGINSTEXT"
	KeyEndSText      = "$ENDSTEXT"
)

// Per-parameter keyword suffixes ($P<n><suffix>).
const (
	SuffixName  = "N"
	SuffixBits  = "B"
	SuffixRange = "R"
	SuffixAmp   = "E"
)

// DefaultBits is the $PnB assumed when a parameter does not declare one.
const DefaultBits = 32

// PreferredKeys are serialized first, in this order; the remaining keys
// follow in lexicographic order.
var PreferredKeys = []string{
	KeyTot,
	KeyPar,
	KeyDataType,
	KeyByteOrd,
	KeyMode,
	KeyBeginData,
	KeyEndData,
}
