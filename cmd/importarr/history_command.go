package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"importarr/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded runs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !cfg.History.Enabled {
				fmt.Fprintln(out, "Run history is disabled (history.enabled = false)")
				return nil
			}
			path := historyPath(cfg)
			if _, err := os.Stat(path); err != nil {
				fmt.Fprintln(out, "No runs recorded yet")
				return nil
			}

			store, err := history.Open(path, 0)
			if err != nil {
				return fmt.Errorf("open run history: %w", err)
			}
			defer store.Close()

			runs, err := store.ListRuns(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("list runs: %w", err)
			}
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded yet")
				return nil
			}

			headers := []string{"Run", "Finished", "Mode", "Dry run", "Added", "Imported", "Failures", "Duration"}
			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				rows = append(rows, []string{
					shortRunID(run.RunID),
					run.FinishedAt.Local().Format("2006-01-02 15:04"),
					run.Mode,
					yesNo(run.DryRun),
					strconv.Itoa(run.Sync.ScenesAdded),
					strconv.Itoa(run.Import.FilesImported),
					strconv.Itoa(run.ItemFailures()),
					run.Duration().Round(time.Second).String(),
				})
			}
			fmt.Fprintln(out, renderCounts(headers, rows, 5, 6, 7, 8))
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs to display")
	return cmd
}

func shortRunID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
