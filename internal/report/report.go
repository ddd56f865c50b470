// Package report defines per-run result accounting shared by the sync and
// import engines.
package report

import "time"

// Outcome classifies the handling of a single scene or file.
type Outcome string

const (
	// OutcomeAdded means a scene was added to the manager.
	OutcomeAdded Outcome = "added"
	// OutcomeSkippedFiltered means a scene carries no StashDB link and was
	// never eligible for sync.
	OutcomeSkippedFiltered Outcome = "skipped-filtered"
	// OutcomeSkippedPresent means the scene already exists in the manager.
	OutcomeSkippedPresent Outcome = "skipped-present"
	// OutcomeImported means a matched file was placed and confirmed.
	OutcomeImported Outcome = "imported"
	// OutcomeUnmatched means the manager produced no confident match and
	// the file was left in place.
	OutcomeUnmatched Outcome = "unmatched"
	// OutcomeFailed means a transport or filesystem error stopped the item.
	OutcomeFailed Outcome = "failed"
)

// SyncResult counts the scene-sync half of a run.
type SyncResult struct {
	ScenesConsidered int
	ScenesAdded      int
	ScenesSkipped    int
	ScenesFailed     int
}

// Record folds one scene outcome into the result.
func (r *SyncResult) Record(outcome Outcome) {
	r.ScenesConsidered++
	switch outcome {
	case OutcomeAdded:
		r.ScenesAdded++
	case OutcomeSkippedFiltered, OutcomeSkippedPresent:
		r.ScenesSkipped++
	case OutcomeFailed:
		r.ScenesFailed++
	}
}

// ImportResult counts the file-import half of a run.
type ImportResult struct {
	FoldersScanned int
	FilesScanned   int
	FilesMatched   int
	FilesImported  int
	FilesUnmatched int
	FilesFailed    int
}

// Record folds one file outcome into the result. Matched and scanned are
// tracked separately because a matched file can still fail placement or
// confirmation afterwards.
func (r *ImportResult) Record(outcome Outcome) {
	switch outcome {
	case OutcomeImported:
		r.FilesImported++
	case OutcomeUnmatched:
		r.FilesUnmatched++
	case OutcomeFailed:
		r.FilesFailed++
	}
}

// RunResult is the overall accounting for one engine cycle. It is a value
// built per run; nothing in it is shared across runs.
type RunResult struct {
	RunID      string
	Mode       string
	DryRun     bool
	StartedAt  time.Time
	FinishedAt time.Time

	Sync   SyncResult
	Import ImportResult

	// CycleErr records an error that aborted the cycle outside of
	// per-item containment. Item failures never set it.
	CycleErr error
}

// Duration reports wall time for the run.
func (r RunResult) Duration() time.Duration {
	if r.FinishedAt.IsZero() || r.StartedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// ItemFailures reports the total failed items across both engines.
func (r RunResult) ItemFailures() int {
	return r.Sync.ScenesFailed + r.Import.FilesFailed
}

// Degraded reports whether anything went wrong during the run, either a
// cycle-level error or individual item failures.
func (r RunResult) Degraded() bool {
	return r.CycleErr != nil || r.ItemFailures() > 0
}
