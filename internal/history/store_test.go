package history

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"importarr/internal/report"
)

func openStore(t *testing.T, keep int) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "runs.db"), keep)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func sampleRun(id string, started time.Time) report.RunResult {
	return report.RunResult{
		RunID:      id,
		Mode:       "both",
		StartedAt:  started,
		FinishedAt: started.Add(time.Minute),
		Sync:       report.SyncResult{ScenesConsidered: 10, ScenesAdded: 3, ScenesSkipped: 6, ScenesFailed: 1},
		Import:     report.ImportResult{FoldersScanned: 2, FilesScanned: 5, FilesMatched: 4, FilesImported: 4, FilesUnmatched: 1},
	}
}

func TestRecordAndListRuns(t *testing.T) {
	store := openStore(t, 0)
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	if err := store.RecordRun(ctx, sampleRun("run-1", base)); err != nil {
		t.Fatalf("RecordRun returned error: %v", err)
	}
	if err := store.RecordRun(ctx, sampleRun("run-2", base.Add(time.Hour))); err != nil {
		t.Fatalf("RecordRun returned error: %v", err)
	}

	runs, err := store.ListRuns(ctx, 10)
	if err != nil {
		t.Fatalf("ListRuns returned error: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].RunID != "run-2" || runs[1].RunID != "run-1" {
		t.Fatalf("expected newest first, got %s, %s", runs[0].RunID, runs[1].RunID)
	}

	got := runs[1]
	if got.Mode != "both" || got.DryRun {
		t.Fatalf("unexpected run metadata: %+v", got)
	}
	if got.Sync.ScenesAdded != 3 || got.Import.FilesImported != 4 {
		t.Fatalf("counters not round-tripped: %+v", got)
	}
	if !got.StartedAt.Equal(base) {
		t.Fatalf("started_at not round-tripped: %v", got.StartedAt)
	}
	if got.Duration() != time.Minute {
		t.Fatalf("unexpected duration %v", got.Duration())
	}
}

func TestRecordRunPersistsCycleError(t *testing.T) {
	store := openStore(t, 0)
	ctx := context.Background()

	run := sampleRun("run-1", time.Now().UTC())
	run.CycleErr = errors.New("stash unreachable")
	if err := store.RecordRun(ctx, run); err != nil {
		t.Fatalf("RecordRun returned error: %v", err)
	}

	last, err := store.LastRun(ctx)
	if err != nil {
		t.Fatalf("LastRun returned error: %v", err)
	}
	if last == nil || last.CycleErr == nil {
		t.Fatalf("cycle error not persisted: %+v", last)
	}
	if last.CycleErr.Error() != "stash unreachable" {
		t.Fatalf("unexpected cycle error %q", last.CycleErr)
	}
	if !last.Degraded() {
		t.Fatal("run with cycle error should be degraded")
	}
}

func TestPruneKeepsNewestRuns(t *testing.T) {
	store := openStore(t, 3)
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		run := sampleRun(fmt.Sprintf("run-%d", i), base.Add(time.Duration(i)*time.Hour))
		if err := store.RecordRun(ctx, run); err != nil {
			t.Fatalf("RecordRun returned error: %v", err)
		}
	}

	runs, err := store.ListRuns(ctx, 10)
	if err != nil {
		t.Fatalf("ListRuns returned error: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("expected 3 retained runs, got %d", len(runs))
	}
	if runs[0].RunID != "run-4" || runs[2].RunID != "run-2" {
		t.Fatalf("wrong runs retained: %s..%s", runs[0].RunID, runs[2].RunID)
	}
}

func TestLastRunEmptyHistory(t *testing.T) {
	store := openStore(t, 0)
	last, err := store.LastRun(context.Background())
	if err != nil {
		t.Fatalf("LastRun returned error: %v", err)
	}
	if last != nil {
		t.Fatalf("expected nil for empty history, got %+v", last)
	}
}

func TestOpenExistingDatabase(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "runs.db")

	store, err := Open(path, 0)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	if err := store.RecordRun(context.Background(), sampleRun("run-1", time.Now().UTC())); err != nil {
		t.Fatalf("RecordRun returned error: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}

	reopened, err := Open(path, 0)
	if err != nil {
		t.Fatalf("reopen returned error: %v", err)
	}
	defer reopened.Close()

	runs, err := reopened.ListRuns(context.Background(), 10)
	if err != nil {
		t.Fatalf("ListRuns returned error: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected persisted run after reopen, got %d", len(runs))
	}
}
