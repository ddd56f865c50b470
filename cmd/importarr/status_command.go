package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"importarr/internal/config"
	"importarr/internal/history"
	"importarr/internal/preflight"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show service connectivity and the last run",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			fmt.Fprintln(out, sectionHeading("Services", colorize))
			for _, result := range preflight.RunAll(cmd.Context(), cfg) {
				state := stateBroken
				if result.Passed {
					state = stateHealthy
				}
				fmt.Fprintln(out, formatCheckLine(result.Name, state, result.Detail, colorize))
			}

			fmt.Fprintln(out, sectionHeading("Configuration", colorize))
			fmt.Fprintln(out, formatCheckLine("Mode", stateInfo, cfg.General.Mode, colorize))
			fmt.Fprintln(out, formatCheckLine("Run mode", stateInfo, cfg.General.RunMode, colorize))
			fmt.Fprintln(out, formatCheckLine("Dry run", stateInfo, yesNo(cfg.General.DryRun), colorize))
			if cfg.FileImportEnabled() {
				fmt.Fprintln(out, formatCheckLine("Import operation", stateInfo, cfg.Import.Operation, colorize))
			}

			printLastRun(cmd, cfg, colorize)
			return nil
		},
	}
}

func printLastRun(cmd *cobra.Command, cfg *config.Config, colorize bool) {
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, sectionHeading("Last run", colorize))

	if !cfg.History.Enabled {
		fmt.Fprintln(out, formatCheckLine("History", stateInfo, "disabled", colorize))
		return
	}
	if _, err := os.Stat(historyPath(cfg)); err != nil {
		fmt.Fprintln(out, formatCheckLine("History", stateInfo, "no runs recorded yet", colorize))
		return
	}

	store, err := history.Open(historyPath(cfg), 0)
	if err != nil {
		fmt.Fprintln(out, formatCheckLine("History", stateBroken, err.Error(), colorize))
		return
	}
	defer store.Close()

	last, err := store.LastRun(cmd.Context())
	if err != nil {
		fmt.Fprintln(out, formatCheckLine("History", stateBroken, err.Error(), colorize))
		return
	}
	if last == nil {
		fmt.Fprintln(out, formatCheckLine("History", stateInfo, "no runs recorded yet", colorize))
		return
	}

	state := stateHealthy
	if last.Degraded() {
		state = stateDegraded
	}
	summary := fmt.Sprintf("%s ago: %d scenes added, %d files imported, %d failures",
		time.Since(last.FinishedAt).Round(time.Minute),
		last.Sync.ScenesAdded, last.Import.FilesImported, last.ItemFailures())
	fmt.Fprintln(out, formatCheckLine("Last run", state, summary, colorize))
	if last.CycleErr != nil {
		fmt.Fprintln(out, formatCheckLine("Cycle error", stateBroken, last.CycleErr.Error(), colorize))
	}
}
