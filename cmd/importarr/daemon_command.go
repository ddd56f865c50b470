package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"importarr/internal/logging"
	"importarr/internal/preflight"
)

func newDaemonCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "daemon",
		Short: "Run on an interval until terminated",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			results := preflight.RunAll(signalCtx, cfg)
			for _, result := range results {
				if result.Passed {
					logger.Info("preflight check passed", logging.String("check", result.Name), logging.String("detail", result.Detail))
					continue
				}
				logger.Warn("preflight check failed", logging.String("check", result.Name), logging.String("detail", result.Detail))
			}
			if !preflight.AllPassed(results) {
				logger.Warn("starting with failed preflight checks; cycles may fail until resolved")
			}

			r, cleanup, err := buildRunner(cfg, logger, cfg.General.DryRun)
			if err != nil {
				return err
			}
			defer cleanup()

			err = r.RunInterval(signalCtx)
			if errors.Is(err, context.Canceled) {
				logger.Info("daemon stopped")
				return nil
			}
			return err
		},
	}
}
