package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/arloliu/fcs/fcsfile"
	"github.com/arloliu/fcs/internal/config"
	"github.com/arloliu/fcs/section"
)

// app carries the state shared by every subcommand.
type app struct {
	out      io.Writer
	cfgPath  string
	logLevel string
	cfg      *config.Config
	log      *logrus.Logger
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{out: stdout, cfg: config.DefaultConfig(), log: logrus.New()}
	a.log.SetOutput(stderr)

	root := &cobra.Command{
		Use:           "fcstool",
		Short:         "Inspect and convert Flow Cytometry Standard files",
		Long:          "fcstool reads FCS 2.0/3.0/3.1 list-mode files, dumps their events,\nrewrites them and packs them into compressed archives.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.PersistentFlags().StringVarP(&a.cfgPath, "config", "c", "", "config file (default "+config.DefaultConfigPath()+")")
	root.PersistentFlags().StringVarP(&a.logLevel, "log-level", "l", "", "logging level: error, warn, info, debug or trace")

	root.AddCommand(
		newInfoCmd(a),
		newDumpCmd(a),
		newRewriteCmd(a),
		newArchiveCmd(a),
		newExtractCmd(a),
		newConfigCmd(a),
	)

	return root
}

// setup loads the config file and applies the log level.
func (a *app) setup(cmd *cobra.Command) error {
	path := a.cfgPath
	explicit := path != ""
	if !explicit {
		path = config.DefaultConfigPath()
	}

	// config init must work before any config exists
	if cmd.Name() != "init" && (explicit || config.Exists(path)) {
		cfg, err := config.LoadConfig(path)
		if err != nil {
			return err
		}
		a.cfg = cfg
	}

	if a.logLevel != "" {
		a.cfg.Logging.Level = a.logLevel
	}
	lvl, err := a.cfg.LogLevel()
	if err != nil {
		return err
	}
	a.log.SetLevel(lvl)

	return nil
}

// open opens path as an archive when it starts with the archive magic, as a
// plain FCS file otherwise.
func (a *app) open(path string) (*fcsfile.File, error) {
	archive, err := isArchive(path)
	if err != nil {
		return nil, err
	}

	a.log.WithFields(logrus.Fields{"file": path, "archive": archive}).Debug("opening")
	if archive {
		return fcsfile.OpenArchive(path, fcsfile.WithLogger(a.log))
	}

	return fcsfile.Open(path, fcsfile.WithLogger(a.log))
}

func isArchive(path string) (bool, error) {
	fd, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer fd.Close()

	magic := make([]byte, len(section.ArchiveMagic))
	n, err := io.ReadFull(fd, magic)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("read %s: %w", path, err)
	}

	return section.IsArchive(magic[:n]), nil
}
