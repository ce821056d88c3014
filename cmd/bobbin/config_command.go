package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"bobbin/internal/config"
)

// newConfigCommand groups settings helpers.
func newConfigCommand(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or bootstrap the settings file",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the sample settings with defaults",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := config.Load(flags.configPath); err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), config.Sample())
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Write a sample settings file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := flags.configPath
			if path == "" {
				path = config.DefaultPath()
			}
			if err := config.WriteSample(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	})

	return cmd
}
