// Package runner orchestrates sync and import cycles: it owns the run
// lifecycle, the once/interval execution policies, single-instance locking,
// run IDs, history recording, and notifications.
package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"importarr/internal/clock"
	"importarr/internal/logging"
	"importarr/internal/notifications"
	"importarr/internal/report"
	"importarr/internal/services"
)

// SyncEngine is the stash-to-manager reconciliation half of a cycle.
type SyncEngine interface {
	Run(ctx context.Context) (report.SyncResult, error)
}

// ImportEngine is the file-import half of a cycle.
type ImportEngine interface {
	Run(ctx context.Context) (report.ImportResult, error)
}

// Recorder persists completed runs. Satisfied by the history store.
type Recorder interface {
	RecordRun(ctx context.Context, result report.RunResult) error
}

// Options configures the runner.
type Options struct {
	Mode     string
	DryRun   bool
	Interval time.Duration
	LockPath string // empty disables single-instance locking
}

// Runner drives cycles across the configured engines.
type Runner struct {
	sync     SyncEngine
	importer ImportEngine
	opts     Options
	recorder Recorder
	notifier notifications.Service
	clock    clock.Clock
	logger   *slog.Logger
	lock     *flock.Flock
}

// New creates a runner. Either engine may be nil when the mode excludes it;
// recorder and notifier may be nil to disable those concerns.
func New(sync SyncEngine, importer ImportEngine, opts Options, recorder Recorder, notifier notifications.Service, clk clock.Clock, logger *slog.Logger) *Runner {
	if clk == nil {
		clk = clock.New()
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	r := &Runner{
		sync:     sync,
		importer: importer,
		opts:     opts,
		recorder: recorder,
		notifier: notifier,
		clock:    clk,
		logger:   logging.NewComponentLogger(logger, "runner"),
	}
	if opts.LockPath != "" {
		r.lock = flock.New(opts.LockPath)
	}
	return r
}

// RunOnce executes a single cycle and returns its result. The result carries
// any cycle-level error; item failures are reported in the counters only.
func (r *Runner) RunOnce(ctx context.Context) (report.RunResult, error) {
	if err := r.acquireLock(); err != nil {
		return report.RunResult{}, err
	}
	defer r.releaseLock()

	return r.runCycle(ctx), nil
}

// RunInterval executes cycles forever, sleeping the configured interval
// between them, until the context is cancelled. Cycle errors are logged and
// contained; the loop always proceeds to the next cycle.
func (r *Runner) RunInterval(ctx context.Context) error {
	if err := r.acquireLock(); err != nil {
		return err
	}
	defer r.releaseLock()

	interval := r.opts.Interval
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	r.logger.Info("interval mode started", logging.Duration("interval", interval))

	for {
		result := r.runCycle(ctx)
		if result.CycleErr != nil {
			r.logger.Error("cycle failed", logging.String("run_id", result.RunID), logging.Error(result.CycleErr))
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		r.logger.Info("next run scheduled", logging.Duration("in", interval))
		if err := r.clock.Sleep(ctx, interval); err != nil {
			return err
		}
	}
}

func (r *Runner) runCycle(ctx context.Context) report.RunResult {
	result := report.RunResult{
		RunID:     uuid.NewString(),
		Mode:      r.opts.Mode,
		DryRun:    r.opts.DryRun,
		StartedAt: r.clock.Now(),
	}

	ctx = services.WithRunID(ctx, result.RunID)
	log := r.logger.With(logging.String(logging.FieldRunID, result.RunID))
	log.Info("run started", logging.String("mode", result.Mode), logging.Bool("dry_run", result.DryRun))

	if r.notifier != nil {
		if err := r.notifier.NotifyRunStarted(ctx, result.Mode, result.DryRun); err != nil {
			log.Warn("start notification failed", logging.Error(err))
		}
	}

	var cycleErrs []error
	if r.sync != nil {
		syncCtx := services.WithEngine(ctx, "stash-sync")
		syncResult, err := r.runSync(syncCtx)
		result.Sync = syncResult
		if err != nil {
			log.Error("stash sync failed", logging.Error(err))
			cycleErrs = append(cycleErrs, fmt.Errorf("stash sync: %w", err))
		}
	}
	if r.importer != nil {
		importCtx := services.WithEngine(ctx, "file-import")
		importResult, err := r.runImport(importCtx)
		result.Import = importResult
		if err != nil {
			log.Error("file import failed", logging.Error(err))
			cycleErrs = append(cycleErrs, fmt.Errorf("file import: %w", err))
		}
	}
	result.CycleErr = errors.Join(cycleErrs...)
	result.FinishedAt = r.clock.Now()

	log.Info("run finished",
		logging.Duration("duration", result.Duration()),
		logging.Int("scenes_added", result.Sync.ScenesAdded),
		logging.Int("files_imported", result.Import.FilesImported),
		logging.Int("item_failures", result.ItemFailures()),
		logging.Bool("degraded", result.Degraded()))

	if r.recorder != nil {
		if err := r.recorder.RecordRun(ctx, result); err != nil {
			log.Warn("history recording failed", logging.Error(err))
		}
	}
	if r.notifier != nil {
		var notifyErr error
		if result.CycleErr != nil {
			notifyErr = r.notifier.NotifyRunFailed(ctx, result.CycleErr)
		} else {
			notifyErr = r.notifier.NotifyRunCompleted(ctx, result)
		}
		if notifyErr != nil {
			log.Warn("completion notification failed", logging.Error(notifyErr))
		}
	}
	return result
}

// runSync and runImport contain engine panics so a programming error in one
// cycle cannot take down the interval loop.
func (r *Runner) runSync(ctx context.Context) (result report.SyncResult, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("stash sync panicked: %v", rec)
		}
	}()
	return r.sync.Run(ctx)
}

func (r *Runner) runImport(ctx context.Context) (result report.ImportResult, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("file import panicked: %v", rec)
		}
	}()
	return r.importer.Run(ctx)
}

func (r *Runner) acquireLock() error {
	if r.lock == nil {
		return nil
	}
	ok, err := r.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("another importarr instance is already running (lock: %s)", r.opts.LockPath)
	}
	return nil
}

func (r *Runner) releaseLock() {
	if r.lock == nil {
		return
	}
	if err := r.lock.Unlock(); err != nil {
		r.logger.Warn("failed to release lock", logging.Error(err))
	}
}
