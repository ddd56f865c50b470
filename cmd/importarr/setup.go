package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"importarr/internal/clock"
	"importarr/internal/config"
	"importarr/internal/history"
	"importarr/internal/importer"
	"importarr/internal/notifications"
	"importarr/internal/runner"
	"importarr/internal/services/stash"
	"importarr/internal/services/whisparr"
	"importarr/internal/stashsync"
)

// buildRunner wires the engines, history store, and notifier for one
// invocation. The returned cleanup releases the history store and must be
// called when the runner is done.
func buildRunner(cfg *config.Config, logger *slog.Logger, dryRun bool) (*runner.Runner, func(), error) {
	cleanup := func() {}

	manager, err := whisparr.New(cfg.Whisparr.URL, cfg.Whisparr.APIKey,
		whisparr.WithHTTPClient(&http.Client{Timeout: time.Duration(cfg.Whisparr.RequestTimeout) * time.Second}),
		whisparr.WithScanClient(&http.Client{Timeout: time.Duration(cfg.Whisparr.ScanTimeout) * time.Second}),
	)
	if err != nil {
		return nil, cleanup, fmt.Errorf("build whisparr client: %w", err)
	}

	clk := clock.New()

	var syncEngine runner.SyncEngine
	if cfg.StashSyncEnabled() {
		scenes, err := stash.New(cfg.Stash.URL, cfg.Stash.APIKey,
			stash.WithPageSize(cfg.Stash.PageSize),
			stash.WithRequestDelay(time.Duration(cfg.Stash.RequestDelayMS)*time.Millisecond),
		)
		if err != nil {
			return nil, cleanup, fmt.Errorf("build stash client: %w", err)
		}
		syncEngine = stashsync.New(scenes, manager, stashsync.Options{
			QualityProfileID: cfg.Whisparr.QualityProfileID,
			RootFolderPath:   cfg.Whisparr.RootFolderPath,
			TagIDs:           cfg.Whisparr.TagIDs,
			BatchSize:        cfg.Stash.BatchSize,
			BatchDelay:       time.Duration(cfg.Stash.BatchDelay) * time.Second,
			RequestDelay:     time.Duration(cfg.Stash.RequestDelayMS) * time.Millisecond,
			DryRun:           dryRun,
		}, clk, logger)
	}

	var importEngine runner.ImportEngine
	if cfg.FileImportEnabled() {
		importEngine = importer.New(manager, importer.Options{
			Folder:           cfg.Import.Folder,
			Operation:        cfg.Import.Operation,
			BatchSize:        cfg.Import.BatchSize,
			BatchDelay:       time.Duration(cfg.Import.BatchDelay) * time.Second,
			SubfolderDelay:   time.Duration(cfg.Import.SubfolderDelay) * time.Second,
			ProcessRootFiles: cfg.Import.ProcessRootFiles,
			MaxSubfolders:    cfg.Import.MaxSubfolders,
			MaxDepth:         cfg.Import.MaxDepth,
			DryRun:           dryRun,
		}, clk, logger)
	}

	var recorder runner.Recorder
	if cfg.History.Enabled {
		store, err := history.Open(historyPath(cfg), cfg.History.Keep)
		if err != nil {
			return nil, cleanup, fmt.Errorf("open history store: %w", err)
		}
		recorder = store
		cleanup = func() { _ = store.Close() }
	}

	r := runner.New(syncEngine, importEngine, runner.Options{
		Mode:     cfg.General.Mode,
		DryRun:   dryRun,
		Interval: cfg.Interval(),
		LockPath: filepath.Join(cfg.Paths.DataDir, "importarr.lock"),
	}, recorder, notifications.NewService(cfg), clk, logger)

	return r, cleanup, nil
}

func historyPath(cfg *config.Config) string {
	return filepath.Join(cfg.Paths.DataDir, "runs.db")
}
