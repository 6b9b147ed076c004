package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arloliu/fcs/internal/config"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the fcstool configuration file",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			path := a.cfgPath
			if path == "" {
				path = config.DefaultConfigPath()
			}
			if config.Exists(path) && !force {
				return fmt.Errorf("config file %s already exists, use --force to replace it", path)
			}

			if err := config.SaveConfig(config.DefaultConfig(), path); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "wrote %s\n", path)

			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "replace an existing config file")

	cmd.AddCommand(initCmd)

	return cmd
}
