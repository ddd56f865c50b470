// Package importer walks the import tree deepest-first, asks the manager
// which files match known scenes, places the matched files, and confirms
// the imports. Unmatched files are never touched.
package importer

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"importarr/internal/batch"
	"importarr/internal/clock"
	"importarr/internal/fileutil"
	"importarr/internal/logging"
	"importarr/internal/report"
	"importarr/internal/services"
	"importarr/internal/services/whisparr"
)

// Manager is the subset of the Whisparr client the import engine needs.
type Manager interface {
	ScanFolder(ctx context.Context, folder string) ([]whisparr.ImportFile, error)
	ConfirmImport(ctx context.Context, files []whisparr.ImportRequest, mode string) (int64, error)
}

// FileOps performs the physical file placement. Swapped out in tests.
type FileOps interface {
	Copy(src, dst string) error
	Move(src, dst string) error
}

type realFileOps struct{}

func (realFileOps) Copy(src, dst string) error { return fileutil.CopyFile(src, dst) }
func (realFileOps) Move(src, dst string) error { return fileutil.MoveFile(src, dst) }

// Options configures the import engine.
type Options struct {
	Folder           string
	Operation        string // "copy" or "move"
	BatchSize        int
	BatchDelay       time.Duration
	SubfolderDelay   time.Duration
	ProcessRootFiles bool
	MaxSubfolders    int
	MaxDepth         int
	DryRun           bool
}

// Engine drives one file-import pass.
type Engine struct {
	manager Manager
	files   FileOps
	opts    Options
	clock   clock.Clock
	logger  *slog.Logger
}

// New creates an import engine.
func New(manager Manager, opts Options, clk clock.Clock, logger *slog.Logger) *Engine {
	return newEngine(manager, realFileOps{}, opts, clk, logger)
}

// NewWithFileOps creates an import engine with custom file placement,
// used by tests to observe filesystem effects.
func NewWithFileOps(manager Manager, files FileOps, opts Options, clk clock.Clock, logger *slog.Logger) *Engine {
	return newEngine(manager, files, opts, clk, logger)
}

func newEngine(manager Manager, files FileOps, opts Options, clk clock.Clock, logger *slog.Logger) *Engine {
	if clk == nil {
		clk = clock.New()
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 50
	}
	if opts.Operation == "" {
		opts.Operation = "copy"
	}
	return &Engine{
		manager: manager,
		files:   files,
		opts:    opts,
		clock:   clk,
		logger:  logging.NewComponentLogger(logger, "importer"),
	}
}

// Run executes one import pass over the configured folder. Per-file and
// per-folder failures are counted and contained; only a failure to
// enumerate the import tree at all returns an error.
func (e *Engine) Run(ctx context.Context) (report.ImportResult, error) {
	var result report.ImportResult

	log := logging.WithContext(ctx, e.logger)

	folders, err := ScanFolders(e.opts.Folder, ScanOptions{
		MaxDepth:         e.opts.MaxDepth,
		MaxSubfolders:    e.opts.MaxSubfolders,
		ProcessRootFiles: e.opts.ProcessRootFiles,
	})
	if err != nil {
		return result, err
	}
	log.Info("folders discovered", logging.Int("folders", len(folders)), logging.String("root", e.opts.Folder))

	for idx, folder := range folders {
		if idx > 0 && e.opts.SubfolderDelay > 0 {
			if err := e.clock.Sleep(ctx, e.opts.SubfolderDelay); err != nil {
				return result, err
			}
		}
		e.processFolder(ctx, log, folder, &result)
		result.FoldersScanned++
	}

	log.Info("import pass complete",
		logging.Int("folders", result.FoldersScanned),
		logging.Int("scanned", result.FilesScanned),
		logging.Int("matched", result.FilesMatched),
		logging.Int("imported", result.FilesImported),
		logging.Int("unmatched", result.FilesUnmatched),
		logging.Int("failed", result.FilesFailed),
		logging.Bool("dry_run", e.opts.DryRun))
	return result, nil
}

func (e *Engine) processFolder(ctx context.Context, log *slog.Logger, folder Folder, result *report.ImportResult) {
	flog := log.With(logging.String("folder", folder.Path), logging.Int("depth", folder.Depth))

	files, err := e.manager.ScanFolder(ctx, folder.Path)
	if err != nil {
		flog.Error("folder scan failed", logging.Error(err))
		result.FilesFailed++
		return
	}
	if len(files) == 0 {
		flog.Debug("no importable files")
		return
	}
	result.FilesScanned += len(files)

	var matched []whisparr.ImportFile
	for _, file := range files {
		if file.Matched() {
			matched = append(matched, file)
			continue
		}
		flog.Info("file unmatched, leaving in place",
			logging.String("path", file.Path),
			logging.Any("reasons", file.RejectionReasons()))
		result.Record(report.OutcomeUnmatched)
	}
	result.FilesMatched += len(matched)
	flog.Info("folder scanned", logging.Int("files", len(files)), logging.Int("matched", len(matched)))
	if len(matched) == 0 {
		return
	}

	for idx, chunk := range batch.Chunks(matched, e.opts.BatchSize) {
		if idx > 0 && e.opts.BatchDelay > 0 {
			if err := e.clock.Sleep(ctx, e.opts.BatchDelay); err != nil {
				return
			}
		}
		e.importBatch(ctx, flog, chunk, result)
	}

	// In move mode a fully imported folder is left behind empty; surface
	// that so operators know it is safe to clean up.
	if e.opts.Operation == "move" && !e.opts.DryRun {
		if empty, err := fileutil.IsEmptyDir(folder.Path); err == nil && empty {
			flog.Info("folder emptied by import")
		}
	}
}

// importBatch places each matched file next to its scene and confirms the
// whole batch with the manager. A placement failure drops just that file
// from the confirmation; a confirmation failure fails every placed file in
// the batch.
func (e *Engine) importBatch(ctx context.Context, log *slog.Logger, files []whisparr.ImportFile, result *report.ImportResult) {
	requests := make([]whisparr.ImportRequest, 0, len(files))
	for _, file := range files {
		dest := filepath.Join(file.Movie.Path, filepath.Base(file.Path))

		if e.opts.DryRun {
			log.Info("would import file",
				logging.String("source", file.Path),
				logging.String("destination", dest),
				logging.Bool("dry_run", true))
			result.Record(report.OutcomeImported)
			continue
		}

		if err := e.placeFile(file.Path, dest); err != nil {
			log.Error("file placement failed",
				logging.String("source", file.Path),
				logging.String("destination", dest),
				logging.Error(err))
			result.Record(report.OutcomeFailed)
			continue
		}

		requests = append(requests, whisparr.ImportRequest{
			Path:         dest,
			FolderName:   file.FolderName,
			MovieID:      file.Movie.ID,
			Quality:      file.Quality,
			Languages:    file.Languages,
			ReleaseGroup: file.ReleaseGroup,
			DownloadID:   file.DownloadID,
			ImportMode:   e.opts.Operation,
		})
	}
	if len(requests) == 0 {
		return
	}

	commandID, err := e.manager.ConfirmImport(ctx, requests, e.opts.Operation)
	if err != nil {
		log.Error("import confirmation failed", logging.Int("files", len(requests)), logging.Error(err))
		for range requests {
			result.Record(report.OutcomeFailed)
		}
		return
	}
	log.Info("import command queued", logging.Int64("command_id", commandID), logging.Int("files", len(requests)))
	for range requests {
		result.Record(report.OutcomeImported)
	}
}

func (e *Engine) placeFile(src, dst string) error {
	var err error
	if e.opts.Operation == "move" {
		err = e.files.Move(src, dst)
	} else {
		err = e.files.Copy(src, dst)
	}
	if err != nil {
		return services.Wrap(services.ErrFilesystem, "file-import", e.opts.Operation, "place file", err)
	}
	return nil
}
