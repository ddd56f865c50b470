package preflight

import (
	"context"

	"importarr/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all applicable preflight checks for the given config.
// Checks are only run for the engines the configured mode enables.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	results = append(results, CheckWhisparr(ctx, cfg.Whisparr.URL, cfg.Whisparr.APIKey))

	if cfg.StashSyncEnabled() {
		results = append(results, CheckStash(ctx, cfg.Stash.URL, cfg.Stash.APIKey))
	}

	if cfg.FileImportEnabled() {
		results = append(results, CheckDirectoryAccess("Import folder", cfg.Import.Folder))
		results = append(results, CheckDiskSpace("Import folder space", cfg.Import.Folder))
	}

	results = append(results, CheckDirectoryAccess("Data directory", cfg.Paths.DataDir))

	return results
}

// AllPassed reports whether every result passed.
func AllPassed(results []Result) bool {
	for _, r := range results {
		if !r.Passed {
			return false
		}
	}
	return true
}
