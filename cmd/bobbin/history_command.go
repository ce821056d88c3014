package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"bobbin/internal/config"
	"bobbin/internal/history"
)

// newHistoryCommand lists recent transcodes from the history database.
func newHistoryCommand(flags *rootFlags) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent transcodes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(flags.configPath)
			if err != nil {
				return err
			}
			if !cfg.History.Enabled {
				return fmt.Errorf("history is disabled in settings")
			}
			store, err := history.Open(cfg.History.Path)
			if err != nil {
				return err
			}
			defer store.Close()

			records, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No transcodes recorded yet.")
				return nil
			}

			rows := make([][]string, 0, len(records))
			for _, record := range records {
				detail := strings.Join(record.Outputs, ", ")
				if record.Status == history.StatusFailed {
					detail = record.Error
				}
				rows = append(rows, []string{
					fmt.Sprintf("%d", record.ID),
					record.FinishedAt.Local().Format(time.DateTime),
					record.InputPath,
					string(record.Status),
					record.FinishedAt.Sub(record.StartedAt).Round(time.Second).String(),
					detail,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "Finished", "Input", "Status", "Took", "Outputs"}, rows))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum records to list")
	return cmd
}
