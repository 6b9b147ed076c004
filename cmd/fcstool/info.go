package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/arloliu/fcs/endian"
	"github.com/arloliu/fcs/fcsfile"
	"github.com/arloliu/fcs/section"
)

func newInfoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "info <file>",
		Short: "Print HEADER, TEXT and DATA layout of an FCS file or archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			f, err := a.open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			return printInfo(a.out, f)
		},
	}
}

func printInfo(w io.Writer, f *fcsfile.File) error {
	title := color.New(color.FgCyan, color.Bold)
	label := color.New(color.FgGreen)
	warn := color.New(color.FgYellow)

	md := f.Metadata()
	title.Fprintf(w, "%s\n", md.Name)
	label.Fprint(w, "  version:   ")
	fmt.Fprintln(w, md.Header.Version)
	label.Fprint(w, "  size:      ")
	fmt.Fprintf(w, "%d bytes\n", f.Size())
	label.Fprint(w, "  text:      ")
	fmt.Fprintf(w, "[%d, %d] delimiter %q\n", md.Header.TextStart, md.Header.TextEnd, md.Delimiter)
	label.Fprint(w, "  events:    ")
	fmt.Fprintln(w, md.Keywords.Text(section.KeyTot))
	label.Fprint(w, "  params:    ")
	fmt.Fprintln(w, f.Params())

	sum, err := f.Fingerprint()
	if err != nil {
		// TEXT is still worth showing for files whose DATA cannot be read
		warn.Fprintf(w, "  data:      %v\n", err)
	} else {
		md = f.Metadata()
		label.Fprint(w, "  data:      ")
		order := "swapped"
		if endian.IsNative(md.Layout.Engine) {
			order = "native"
		}
		fmt.Fprintf(w, "[%d, %d] from %s, %s %s (%s), %d byte records\n",
			md.Bounds.Start, md.Bounds.End, md.Bounds.Source,
			md.Layout.DataType, md.Layout.ByteOrd, order, md.Layout.RecordSize)
		label.Fprint(w, "  checksum:  ")
		fmt.Fprintf(w, "%016x\n", sum)
	}

	title.Fprintln(w, "parameters")
	for _, idx := range md.Detectors.Indexes() {
		d := md.Detectors[idx]
		fmt.Fprintf(w, "  %3d  %-20s  B=%-3s R=%s\n", idx, md.Detectors.Name(idx),
			valueOr(d, section.SuffixBits, "-"), valueOr(d, section.SuffixRange, "-"))
	}

	title.Fprintln(w, "keywords")
	for key, v := range md.Keywords.All() {
		fmt.Fprintf(w, "  %-20s %s\n", key, v)
	}

	return nil
}

func valueOr(d section.Detector, suffix, fallback string) string {
	if v, ok := d[suffix]; ok {
		return v.String()
	}

	return fallback
}
