package main

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"importarr/internal/logging"
	"importarr/internal/report"
	"importarr/internal/services"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var dryRun bool
	var mode string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute a single sync/import pass",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if mode != "" {
				cfg.General.Mode = mode
				if err := cfg.Validate(); err != nil {
					return err
				}
			}
			effectiveDryRun := cfg.General.DryRun || dryRun

			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			r, cleanup, err := buildRunner(cfg, logger, effectiveDryRun)
			if err != nil {
				return err
			}
			defer cleanup()

			result, err := r.RunOnce(signalCtx)
			if err != nil {
				return err
			}

			printRunSummary(cmd, result)
			if result.CycleErr != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), "run degraded:", result.CycleErr)
			}
			return runExitError(result)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Log what would happen without mutating anything")
	cmd.Flags().StringVar(&mode, "mode", "", "Override engine selection (both, stash, files)")
	return cmd
}

// runExitError decides the process outcome of a single pass. Item and
// cycle failures leave the run degraded but still exit zero; only a
// configuration error fails the process.
func runExitError(result report.RunResult) error {
	if result.CycleErr == nil {
		return nil
	}
	if services.IsFatal(result.CycleErr) {
		return fmt.Errorf("run aborted: %w", result.CycleErr)
	}
	return nil
}

func printRunSummary(cmd *cobra.Command, result report.RunResult) {
	out := cmd.OutOrStdout()

	headers := []string{"Metric", "Count"}
	rows := [][]string{
		{"Scenes considered", fmt.Sprintf("%d", result.Sync.ScenesConsidered)},
		{"Scenes added", fmt.Sprintf("%d", result.Sync.ScenesAdded)},
		{"Scenes skipped", fmt.Sprintf("%d", result.Sync.ScenesSkipped)},
		{"Scenes failed", fmt.Sprintf("%d", result.Sync.ScenesFailed)},
		{"Folders scanned", fmt.Sprintf("%d", result.Import.FoldersScanned)},
		{"Files scanned", fmt.Sprintf("%d", result.Import.FilesScanned)},
		{"Files matched", fmt.Sprintf("%d", result.Import.FilesMatched)},
		{"Files imported", fmt.Sprintf("%d", result.Import.FilesImported)},
		{"Files unmatched", fmt.Sprintf("%d", result.Import.FilesUnmatched)},
		{"Files failed", fmt.Sprintf("%d", result.Import.FilesFailed)},
	}

	fmt.Fprintf(out, "Run %s finished in %s (mode: %s, dry run: %s)\n",
		result.RunID, result.Duration().Round(time.Second), result.Mode, yesNo(result.DryRun))
	fmt.Fprintln(out, renderCounts(headers, rows, 2))
}
