package builder

import (
	"fmt"
	"math"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/arloliu/fcs/dataset"
	"github.com/arloliu/fcs/endian"
	"github.com/arloliu/fcs/errs"
	"github.com/arloliu/fcs/format"
	"github.com/arloliu/fcs/internal/collision"
	"github.com/arloliu/fcs/section"
)

// Builder serializes a table into a complete FCS file.
//
// All metadata is planned once by FromDataset: the returned Builder holds the
// final keywords, detectors and record layout, and every output method
// (ToBytes, WriteTo, Write, WriteArchive) produces identical bytes.
//
// Note: Builder reads the source table on every output call. A View passed
// as the source must stay unreleased until the last output call returns.
type Builder struct {
	table   dataset.Table
	text    *section.Text
	layout  *section.RecordLayout
	version format.Version
	log     logrus.FieldLogger
}

// FromDataset plans an FCS file for table.
//
// The plan sets $TOT and $PAR, rebuilds one detector per column (keeping
// template metadata of columns that match a template parameter by name), sets
// $PnN and $PnB, synthesizes a missing $PnR from the column maximum, and picks
// $DATATYPE: the template's type promoted to the widest column kind (I < F < D),
// or F with 32 bits under WithForceNarrow.
//
// Parameters:
//   - table: source data; names must be unique and non-blank
//   - opts: WithTemplate, WithTemplateText, WithVersion, WithDelimiter,
//     WithByteOrder, WithForceNarrow, WithLogger
//
// Returns:
//   - *Builder: planned builder
//   - error: ErrEmptyDataset, ErrEmptyColumnName, ErrDuplicateColumn,
//     ErrColumnLength, or an option error
func FromDataset(table dataset.Table, opts ...Option) (*Builder, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	if err := checkTable(table); err != nil {
		return nil, err
	}

	text := cfg.text
	if text == nil {
		text = &section.Text{
			Delimiter: section.DefaultDelimiter,
			Keywords:  section.NewKeywords(),
			Detectors: section.Detectors{},
		}
	}
	if cfg.delimiter != 0 {
		text.Delimiter = cfg.delimiter
	}
	if err := section.ValidateDelimiter(text.Delimiter); err != nil {
		return nil, err
	}

	version := cfg.version
	if version == "" {
		version = format.Version31
	}

	b := &Builder{
		table:   table,
		version: version,
		log:     cfg.log,
	}
	b.text = planText(table, text, version, cfg)

	layout, err := section.DeriveLayout(b.text.Keywords, b.text.Detectors)
	if err != nil {
		return nil, err
	}
	b.layout = layout

	b.log.WithFields(logrus.Fields{
		"tot":      table.Rows(),
		"par":      table.Cols(),
		"datatype": layout.DataType,
		"record":   layout.RecordSize,
	}).Debug("planned FCS file")

	return b, nil
}

func checkTable(table dataset.Table) error {
	if table.Cols() == 0 {
		return errs.ErrEmptyDataset
	}

	names := collision.NewTracker()
	for j := 0; j < table.Cols(); j++ {
		col := table.Column(j)
		if _, err := names.TrackColumn(col.Name()); err != nil {
			return fmt.Errorf("column %q: %w", col.Name(), err)
		}
		if col.Len() != table.Rows() {
			return fmt.Errorf("%w: column %q has %d rows, table has %d", errs.ErrColumnLength, col.Name(), col.Len(), table.Rows())
		}
	}

	return nil
}

// planText derives the output TEXT from the template and the table.
func planText(table dataset.Table, tmpl *section.Text, version format.Version, cfg *config) *section.Text {
	kw := tmpl.Keywords.Clone()
	for _, key := range []string{section.KeyBeginData, section.KeyEndData} {
		kw.Delete(key)
	}

	byName := make(map[string]section.Detector, len(tmpl.Detectors))
	for _, idx := range tmpl.Detectors.Indexes() {
		name := tmpl.Detectors.Name(idx)
		if _, ok := byName[name]; !ok {
			byName[name] = tmpl.Detectors[idx]
		}
	}

	dt := dataType(table, kw, cfg.forceNarrow)
	det := make(section.Detectors, table.Cols())
	for j := 0; j < table.Cols(); j++ {
		col := table.Column(j)

		d := byName[col.Name()].Clone()
		d[section.SuffixName] = section.TextValue(col.Name())
		d[section.SuffixBits] = section.IntValue(int64(fieldBits(dt, col.Kind())))
		if _, ok := d[section.SuffixRange]; !ok {
			d[section.SuffixRange] = synthesizeRange(col)
		}
		det[j+1] = d
	}

	kw.SetInt(section.KeyTot, int64(table.Rows()))
	kw.SetInt(section.KeyPar, int64(table.Cols()))
	kw.SetString(section.KeyDataType, dt.String())
	kw.SetString(section.KeyByteOrd, endian.ByteOrd(byteOrder(kw, cfg.engine)))
	kw.SetString(section.KeyMode, format.ListMode)

	// only HEADER, TEXT and DATA are written; stale segment pointers of a
	// template would point into a file that no longer exists
	kw.SetInt(section.KeyNextData, 0)
	if version.IsV3() {
		for _, key := range []string{
			section.KeyBeginAnalysis, section.KeyEndAnalysis,
			section.KeyBeginSText, section.KeyEndSText,
		} {
			kw.SetInt(key, 0)
		}
	}

	return &section.Text{Delimiter: tmpl.Delimiter, Keywords: kw, Detectors: det}
}

// dataType picks the file-wide $DATATYPE.
func dataType(table dataset.Table, kw *section.Keywords, forceNarrow bool) format.DataType {
	if forceNarrow {
		return format.DataFloat
	}

	dt := format.DataInteger
	if v, ok := format.ParseDataType(kw.Text(section.KeyDataType)); ok {
		dt = v
	}

	for j := 0; j < table.Cols(); j++ {
		if need := table.Column(j).Kind().DataType(); need.Rank() > dt.Rank() {
			dt = need
		}
	}

	return dt
}

func fieldBits(dt format.DataType, kind format.NumericKind) int {
	switch dt {
	case format.DataFloat:
		return 32
	case format.DataDouble:
		return 64
	default:
		return kind.Bits()
	}
}

func byteOrder(kw *section.Keywords, engine endian.EndianEngine) endian.EndianEngine {
	if engine != nil {
		return engine
	}
	if e, ok := endian.ParseByteOrd(kw.Text(section.KeyByteOrd)); ok {
		return e
	}

	return endian.GetLittleEndianEngine()
}

// synthesizeRange returns the column maximum, at least 1.
func synthesizeRange(col dataset.Column) section.Value {
	if col.Kind().IsFloat() {
		maxVal, ok := dataset.MaxFinite(col)
		if !ok || maxVal < 1 {
			maxVal = 1
		}

		return section.FloatValue(maxVal)
	}

	maxVal := dataset.MaxUint(col)
	if maxVal < 1 {
		maxVal = 1
	}
	if maxVal > math.MaxInt64 {
		return section.TextValue(strconv.FormatUint(maxVal, 10))
	}

	return section.IntValue(int64(maxVal))
}

// Text returns a copy of the planned TEXT, without $BEGINDATA and $ENDDATA.
func (b *Builder) Text() *section.Text {
	return b.text.Clone()
}

// Layout returns the planned record layout.
func (b *Builder) Layout() *section.RecordLayout {
	return b.layout
}

// Version returns the version tag written into HEADER.
func (b *Builder) Version() format.Version {
	return b.version
}

// Rows returns the number of events that will be written.
func (b *Builder) Rows() int {
	return b.table.Rows()
}
