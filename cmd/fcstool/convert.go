package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/arloliu/fcs/builder"
	"github.com/arloliu/fcs/format"
)

// plan opens src and prepares a builder over a copy of its events with src
// as the template. The source is closed before returning.
func (a *app) plan(src string, extra ...builder.Option) (*builder.Builder, error) {
	f, err := a.open(src)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	frame, err := f.Copy()
	if err != nil {
		return nil, err
	}

	cfgOpts, err := a.cfg.BuildOptions()
	if err != nil {
		return nil, err
	}

	opts := []builder.Option{builder.WithTemplate(f), builder.WithLogger(a.log)}
	opts = append(opts, cfgOpts...)
	opts = append(opts, extra...)

	return builder.FromDataset(frame, opts...)
}

func (a *app) writeOptions(overwrite bool) []builder.WriteOption {
	opts := a.cfg.WriteOptions()
	if overwrite {
		opts = append(opts, builder.WithOverwrite())
	}

	return opts
}

func newRewriteCmd(a *app) *cobra.Command {
	var (
		forceNarrow bool
		overwrite   bool
		suffix      bool
	)

	cmd := &cobra.Command{
		Use:   "rewrite <in> <out>",
		Short: "Re-encode an FCS file or archive as a plain FCS file",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			var extra []builder.Option
			if forceNarrow {
				extra = append(extra, builder.WithForceNarrow())
			}

			b, err := a.plan(args[0], extra...)
			if err != nil {
				return err
			}

			opts := a.writeOptions(overwrite)
			if suffix {
				opts = append(opts, builder.WithFCSSuffix())
			}

			path, err := b.Write(args[1], opts...)
			if err != nil {
				return err
			}
			a.log.WithField("file", path).Info("wrote FCS file")

			return nil
		},
	}
	cmd.Flags().BoolVar(&forceNarrow, "force-narrow", false, "write every parameter as a 32-bit float")
	cmd.Flags().BoolVarP(&overwrite, "overwrite", "f", false, "replace an existing target")
	cmd.Flags().BoolVar(&suffix, "fcs-suffix", false, "append .fcs to the target when missing")

	return cmd
}

func newArchiveCmd(a *app) *cobra.Command {
	var (
		codec     string
		overwrite bool
	)

	cmd := &cobra.Command{
		Use:   "archive <in> <out>",
		Short: "Pack an FCS file into a compressed archive",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			ct, err := a.compression(codec)
			if err != nil {
				return err
			}

			b, err := a.plan(args[0])
			if err != nil {
				return err
			}

			stats, err := b.WriteArchive(args[1], ct, a.writeOptions(overwrite)...)
			if err != nil {
				return err
			}
			a.log.WithFields(logrus.Fields{
				"file":       args[1],
				"codec":      ct,
				"raw":        stats.OriginalSize,
				"compressed": stats.CompressedSize,
				"savings":    stats.SpaceSavings(),
			}).Info("wrote archive")

			return nil
		},
	}
	cmd.Flags().StringVar(&codec, "codec", "", "compression: none, zstd, s2 or lz4 (default from config)")
	cmd.Flags().BoolVarP(&overwrite, "overwrite", "f", false, "replace an existing target")

	return cmd
}

func (a *app) compression(flag string) (format.CompressionType, error) {
	if flag == "" {
		return a.cfg.Compression()
	}

	return format.ParseCompression(flag)
}

func newExtractCmd(a *app) *cobra.Command {
	var overwrite bool

	cmd := &cobra.Command{
		Use:   "extract <archive> <out>",
		Short: "Unpack a compressed archive into a plain FCS file",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			b, err := a.plan(args[0])
			if err != nil {
				return err
			}

			path, err := b.Write(args[1], a.writeOptions(overwrite)...)
			if err != nil {
				return err
			}
			a.log.WithField("file", path).Info("extracted FCS file")

			return nil
		},
	}
	cmd.Flags().BoolVarP(&overwrite, "overwrite", "f", false, "replace an existing target")

	return cmd
}
