package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"bobbin/internal/language"
	"bobbin/internal/logging"
	"bobbin/internal/mapping"
	"bobbin/internal/probe"
	"bobbin/internal/snippet"
)

// newPlanCommand previews the plan for one file without transcoding.
func newPlanCommand(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "plan <file>",
		Short: "Expand the profile against one file and print the plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, prof, err := flags.load()
			if err != nil {
				return err
			}
			level := "warn"
			if flags.debug {
				level = "debug"
			}
			logger, err := logging.New(logging.Options{Level: level, Format: "console", ErrorOutputPaths: []string{"stderr"}})
			if err != nil {
				return err
			}

			prober := probe.New(cfg.Tools.FFprobe)
			mapper := mapping.NewMapper(prof, prober, snippet.NewResolver(), logger)
			plan, err := mapper.Plan(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if len(plan.Outputs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No output: skip")
				return nil
			}

			rows := make([][]string, 0, len(plan.Outputs))
			for _, output := range plan.Outputs {
				for _, stream := range output.Streams {
					lang := "-"
					codec := "-"
					if stream.Source != nil {
						codec = stream.Source.CodecName()
						if tag := stream.Source.Language(); tag != "" {
							lang = language.Display(tag)
						}
					}
					rows = append(rows, []string{
						fmt.Sprintf("#%d %s", output.ID, output.Path.Relative()),
						fmt.Sprintf("%d", stream.Index),
						codec,
						lang,
						strings.Join(stream.Params, " "),
					})
				}
				if len(output.Params) > 0 {
					rows = append(rows, []string{
						fmt.Sprintf("#%d %s", output.ID, output.Path.Relative()),
						"-", "-", "-",
						strings.Join(output.Params, " "),
					})
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Output", "Stream", "Codec", "Language", "Params"}, rows))
			return nil
		},
	}
}
