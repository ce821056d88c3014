package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"bobbin/internal/config"
	"bobbin/internal/daemonrun"
	"bobbin/internal/profile"
)

type rootFlags struct {
	input      string
	output     string
	profile    string
	configPath string
	watch      bool
	debug      bool
}

func newRootCommand() *cobra.Command {
	flags := &rootFlags{}

	rootCmd := &cobra.Command{
		Use:           "bobbin",
		Short:         "Directory-driven media transcoding orchestrator",
		Long:          "bobbin watches an input directory, expands a transform profile against each newly settled media file, and drives ffmpeg through a single-flight queue.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, prof, err := flags.load()
			if err != nil {
				return err
			}
			return daemonrun.Run(cmd.Context(), cfg, prof, daemonrun.Options{
				Watch: flags.watch,
				Debug: flags.debug,
			})
		},
	}

	rootCmd.PersistentFlags().StringVarP(&flags.input, "input", "i", "", "Input directory (required)")
	rootCmd.PersistentFlags().StringVarP(&flags.output, "output", "o", "", "Output directory (required)")
	rootCmd.PersistentFlags().StringVarP(&flags.profile, "profile", "p", "", "Path to the profile file (required)")
	rootCmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "Settings file path")
	rootCmd.PersistentFlags().BoolVarP(&flags.debug, "debug", "v", false, "Verbose logging")
	rootCmd.Flags().BoolVarP(&flags.watch, "watch", "w", false, "Keep watching after the initial scan")

	rootCmd.AddCommand(newPlanCommand(flags))
	rootCmd.AddCommand(newHistoryCommand(flags))
	rootCmd.AddCommand(newConfigCommand(flags))

	return rootCmd
}

// load resolves settings and profile; the -i/-o flags override the
// profile's directories so one profile serves several trees.
func (f *rootFlags) load() (*config.Config, *profile.Profile, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return nil, nil, err
	}
	if f.profile == "" {
		return nil, nil, fmt.Errorf("--profile is required")
	}
	prof, err := profile.Load(f.profile)
	if err != nil {
		return nil, nil, err
	}
	if f.input != "" {
		prof.Input.Directory = f.input
	}
	if f.output != "" {
		prof.Output.Directory = f.output
	}
	if prof.Input.Directory == "" {
		return nil, nil, fmt.Errorf("--input is required when the profile sets no input directory")
	}
	if prof.Output.Directory == "" {
		return nil, nil, fmt.Errorf("--output is required when the profile sets no output directory")
	}
	return cfg, prof, nil
}
