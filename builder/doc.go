// Package builder serializes tables into FCS files.
//
// A build has two phases. FromDataset plans the metadata: it copies the
// template TEXT (if any), rebuilds one detector per column and picks the
// record layout. The output methods then encode HEADER, TEXT and DATA,
// resolving the circular dependency between TEXT length and the
// $BEGINDATA/$ENDDATA values it contains with a bounded fixpoint.
//
// # Basic Usage
//
//	f, _ := fcsfile.Open("in.fcs")
//	defer f.Close()
//
//	frame, _ := f.Copy()
//	_ = frame.AddFloat64("ratio", ratios)
//
//	b, err := builder.FromDataset(frame, builder.WithTemplate(f))
//	if err != nil {
//	    return err
//	}
//	_, err = b.Write("out.fcs", builder.WithOverwrite())
//
// # Output Layout
//
// HEADER carries the version tag and the TEXT and DATA offsets. DATA offsets
// that do not fit the 8 character HEADER fields are written as 0 and found
// through $BEGINDATA/$ENDDATA instead. No ANALYSIS or supplemental TEXT
// segment is ever written.
package builder
