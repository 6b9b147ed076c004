// Package fcsfile opens FCS files and exposes their DATA as zero-copy tables.
//
// Open memory-maps the file and parses HEADER and TEXT. DATA is interpreted on
// first use:
//
//	f, err := fcsfile.Open("sample.fcs")
//	if err != nil {
//	    return err
//	}
//	defer f.Close()
//
//	v, err := f.View()          // borrowed, zero-copy
//	if err != nil {
//	    return err
//	}
//	fsc, _ := v.Lookup("FSC-A")
//	first := fsc.Float64(0)
//	v.Release()
//
//	frame, err := f.Copy()      // owned, survives Close
//
// # Lifetime
//
// The mapping is the only shared resource. Every View holds a lease on it and
// Close refuses to unmap while a lease is outstanding, returning
// errs.ErrResourceBusy. The check is deterministic: release the views, then
// call Close again. Using a View or one of its columns after Release panics.
// A View dropped without Release is never released for you: slices taken from
// it may still be alive, so the mapping stays pinned and Close keeps failing.
// A finalizer closes files that are dropped without Close, unless views still
// hold the mapping.
//
// # Errors
//
// Every error is a *errs.FileError carrying the file's base name and the
// failing operation; use errors.Is with the errs sentinels to classify it.
package fcsfile
