package main

import (
	"encoding/csv"
	"strconv"

	"github.com/spf13/cobra"
)

func newDumpCmd(a *app) *cobra.Command {
	var rows int

	cmd := &cobra.Command{
		Use:   "dump <file>",
		Short: "Write the events of an FCS file as CSV to stdout",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			f, err := a.open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			v, err := f.View()
			if err != nil {
				return err
			}
			defer v.Release()

			n := v.Rows()
			if rows >= 0 && rows < n {
				n = rows
			}

			w := csv.NewWriter(a.out)
			if err := w.Write(v.Names()); err != nil {
				return err
			}

			record := make([]string, v.Cols())
			for i := 0; i < n; i++ {
				for j := range record {
					col := v.Column(j)
					if col.Kind().IsFloat() {
						record[j] = strconv.FormatFloat(col.Float64(i), 'g', -1, col.Kind().Bits())
					} else {
						record[j] = strconv.FormatUint(col.Uint64(i), 10)
					}
				}
				if err := w.Write(record); err != nil {
					return err
				}
			}
			w.Flush()

			return w.Error()
		},
	}
	cmd.Flags().IntVarP(&rows, "rows", "n", -1, "maximum number of events to print (-1 for all)")

	return cmd
}
