// Package stashsync reconciles the Stash scene library against the Whisparr
// catalog: every scene with a StashDB link that Whisparr does not already
// track gets added, in batches, without ever re-adding known scenes.
package stashsync

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"importarr/internal/batch"
	"importarr/internal/clock"
	"importarr/internal/logging"
	"importarr/internal/report"
	"importarr/internal/services"
	"importarr/internal/services/stash"
	"importarr/internal/services/whisparr"
)

// SceneSource lists the local scene library.
type SceneSource interface {
	AllScenes(ctx context.Context, onPage func(fetched, total int)) ([]stash.Scene, error)
}

// Manager is the subset of the Whisparr client the sync engine needs.
type Manager interface {
	RootFolders(ctx context.Context) ([]whisparr.RootFolder, error)
	Movies(ctx context.Context) ([]whisparr.Movie, error)
	AddScene(ctx context.Context, req whisparr.AddSceneRequest) (*whisparr.Movie, error)
}

// Options configures the sync engine.
type Options struct {
	QualityProfileID int
	RootFolderPath   string
	TagIDs           []int
	BatchSize        int
	BatchDelay       time.Duration
	RequestDelay     time.Duration
	DryRun           bool
}

// Engine drives one stash-to-manager sync pass.
type Engine struct {
	scenes  SceneSource
	manager Manager
	opts    Options
	clock   clock.Clock
	logger  *slog.Logger
}

// New creates a sync engine.
func New(scenes SceneSource, manager Manager, opts Options, clk clock.Clock, logger *slog.Logger) *Engine {
	if clk == nil {
		clk = clock.New()
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 50
	}
	return &Engine{
		scenes:  scenes,
		manager: manager,
		opts:    opts,
		clock:   clk,
		logger:  logging.NewComponentLogger(logger, "stashsync"),
	}
}

// Run executes one sync pass. Per-scene failures are counted and contained;
// only failures that prevent the pass from proceeding at all (library fetch,
// catalog snapshot, root folder discovery) return an error.
func (e *Engine) Run(ctx context.Context) (report.SyncResult, error) {
	var result report.SyncResult

	log := logging.WithContext(ctx, e.logger)

	scenes, err := e.scenes.AllScenes(ctx, func(fetched, total int) {
		log.Debug("fetching scenes", logging.Int("fetched", fetched), logging.Int("total", total))
	})
	if err != nil {
		return result, services.Wrap(services.ErrTransport, "stashsync", "fetch_scenes", "fetch scene library", err)
	}
	log.Info("scene library fetched", logging.Int("scenes", len(scenes)))

	linked := make([]stash.Scene, 0, len(scenes))
	for _, scene := range scenes {
		if scene.StashDBID() == "" {
			result.Record(report.OutcomeSkippedFiltered)
			continue
		}
		linked = append(linked, scene)
	}
	log.Info("scenes with stashdb links", logging.Int("linked", len(linked)), logging.Int("unlinked", len(scenes)-len(linked)))
	if len(linked) == 0 {
		return result, nil
	}

	rootFolder, err := e.resolveRootFolder(ctx)
	if err != nil {
		return result, err
	}

	known, err := e.catalogSnapshot(ctx)
	if err != nil {
		return result, err
	}
	log.Info("manager catalog snapshot", logging.Int("known_scenes", len(known)))

	batches := batch.Count(len(linked), e.opts.BatchSize)
	for idx, chunk := range batch.Chunks(linked, e.opts.BatchSize) {
		if idx > 0 && e.opts.BatchDelay > 0 {
			if err := e.clock.Sleep(ctx, e.opts.BatchDelay); err != nil {
				return result, err
			}
		}
		log.Debug("processing batch", logging.Int("batch", idx+1), logging.Int("batches", batches), logging.Int("size", len(chunk)))
		for i, scene := range chunk {
			if (idx > 0 || i > 0) && e.opts.RequestDelay > 0 {
				if err := e.clock.Sleep(ctx, e.opts.RequestDelay); err != nil {
					return result, err
				}
			}
			result.Record(e.syncScene(ctx, log, scene, rootFolder, known))
		}
	}

	log.Info("sync pass complete",
		logging.Int("considered", result.ScenesConsidered),
		logging.Int("added", result.ScenesAdded),
		logging.Int("skipped", result.ScenesSkipped),
		logging.Int("failed", result.ScenesFailed),
		logging.Bool("dry_run", e.opts.DryRun))
	return result, nil
}

func (e *Engine) syncScene(ctx context.Context, log *slog.Logger, scene stash.Scene, rootFolder string, known map[string]struct{}) report.Outcome {
	stashID := strings.ToLower(scene.StashDBID())
	if _, exists := known[stashID]; exists {
		log.Debug("scene already in manager", logging.String("stash_id", stashID), logging.String("title", scene.Title))
		return report.OutcomeSkippedPresent
	}

	if e.opts.DryRun {
		log.Info("would add scene", logging.String("stash_id", stashID), logging.String("title", scene.Title), logging.Bool("dry_run", true))
		known[stashID] = struct{}{}
		return report.OutcomeAdded
	}

	_, err := e.manager.AddScene(ctx, whisparr.AddSceneRequest{
		StashID:          scene.StashDBID(),
		Title:            scene.Title,
		QualityProfileID: e.opts.QualityProfileID,
		RootFolderPath:   rootFolder,
		TagIDs:           e.opts.TagIDs,
	})
	switch {
	case err == nil:
		log.Info("scene added",
			logging.String("stash_id", stashID),
			logging.String("title", scene.Title),
			logging.String("studio", scene.StudioName()),
			logging.Any("performers", scene.PerformerNames()))
		known[stashID] = struct{}{}
		return report.OutcomeAdded
	case errors.Is(err, whisparr.ErrSceneExists):
		log.Debug("scene already exists", logging.String("stash_id", stashID), logging.String("title", scene.Title))
		known[stashID] = struct{}{}
		return report.OutcomeSkippedPresent
	case errors.Is(err, whisparr.ErrSceneNotFound):
		log.Warn("scene unknown to metadata provider", logging.String("stash_id", stashID), logging.String("title", scene.Title))
		return report.OutcomeFailed
	default:
		log.Error("add scene failed", logging.String("stash_id", stashID), logging.String("title", scene.Title), logging.Error(err))
		return report.OutcomeFailed
	}
}

// resolveRootFolder uses the configured root folder or falls back to the
// first root folder Whisparr reports.
func (e *Engine) resolveRootFolder(ctx context.Context) (string, error) {
	if e.opts.RootFolderPath != "" {
		return e.opts.RootFolderPath, nil
	}
	folders, err := e.manager.RootFolders(ctx)
	if err != nil {
		return "", services.Wrap(services.ErrTransport, "stashsync", "root_folders", "list manager root folders", err)
	}
	if len(folders) == 0 {
		return "", services.Wrap(services.ErrConfiguration, "stashsync", "root_folders", "no root folders configured in manager", nil)
	}
	e.logger.Info("using discovered root folder", logging.String("path", folders[0].Path))
	return folders[0].Path, nil
}

// catalogSnapshot builds the set of StashDB IDs the manager already tracks.
// Taken once per pass; the add loop keeps it current as scenes land.
func (e *Engine) catalogSnapshot(ctx context.Context) (map[string]struct{}, error) {
	movies, err := e.manager.Movies(ctx)
	if err != nil {
		return nil, services.Wrap(services.ErrTransport, "stashsync", "catalog_snapshot", "list manager scenes", err)
	}
	known := make(map[string]struct{}, len(movies))
	for _, movie := range movies {
		if movie.StashID == "" {
			continue
		}
		known[strings.ToLower(movie.StashID)] = struct{}{}
	}
	return known, nil
}
