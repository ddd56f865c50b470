package history

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"importarr/internal/report"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current schema version. Bump this when the schema
// changes; users then need to delete the history database.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database schema version doesn't match the
// expected version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

// Store persists run history backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
	keep int
}

// Open initializes or connects to the history database at path. keep bounds
// how many runs are retained; zero or less disables pruning.
func Open(path string, keep int) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path, keep: keep}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		return s.createSchema(ctx)
	}

	var version int
	err = s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s to reset)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}

func (s *Store) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

// RecordRun persists one completed run and prunes history beyond the
// configured retention.
func (s *Store) RecordRun(ctx context.Context, result report.RunResult) error {
	cycleErr := ""
	if result.CycleErr != nil {
		cycleErr = result.CycleErr.Error()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (
            id, mode, dry_run, started_at, finished_at,
            scenes_considered, scenes_added, scenes_skipped, scenes_failed,
            folders_scanned, files_scanned, files_matched, files_imported,
            files_unmatched, files_failed, cycle_error
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		result.RunID,
		result.Mode,
		boolToInt(result.DryRun),
		result.StartedAt.UTC().Format(time.RFC3339Nano),
		result.FinishedAt.UTC().Format(time.RFC3339Nano),
		result.Sync.ScenesConsidered,
		result.Sync.ScenesAdded,
		result.Sync.ScenesSkipped,
		result.Sync.ScenesFailed,
		result.Import.FoldersScanned,
		result.Import.FilesScanned,
		result.Import.FilesMatched,
		result.Import.FilesImported,
		result.Import.FilesUnmatched,
		result.Import.FilesFailed,
		cycleErr,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return s.prune(ctx)
}

func (s *Store) prune(ctx context.Context) error {
	if s.keep <= 0 {
		return nil
	}
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM runs WHERE id NOT IN (
            SELECT id FROM runs ORDER BY started_at DESC LIMIT ?
        )`, s.keep)
	if err != nil {
		return fmt.Errorf("prune runs: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first, up to limit.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]report.RunResult, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, mode, dry_run, started_at, finished_at,
            scenes_considered, scenes_added, scenes_skipped, scenes_failed,
            folders_scanned, files_scanned, files_matched, files_imported,
            files_unmatched, files_failed, cycle_error
        FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []report.RunResult
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// LastRun returns the most recent run, or nil when history is empty.
func (s *Store) LastRun(ctx context.Context) (*report.RunResult, error) {
	runs, err := s.ListRuns(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, nil
	}
	return &runs[0], nil
}

func scanRun(rows *sql.Rows) (report.RunResult, error) {
	var (
		run        report.RunResult
		dryRun     int
		startedAt  string
		finishedAt string
		cycleErr   string
	)
	err := rows.Scan(
		&run.RunID,
		&run.Mode,
		&dryRun,
		&startedAt,
		&finishedAt,
		&run.Sync.ScenesConsidered,
		&run.Sync.ScenesAdded,
		&run.Sync.ScenesSkipped,
		&run.Sync.ScenesFailed,
		&run.Import.FoldersScanned,
		&run.Import.FilesScanned,
		&run.Import.FilesMatched,
		&run.Import.FilesImported,
		&run.Import.FilesUnmatched,
		&run.Import.FilesFailed,
		&cycleErr,
	)
	if err != nil {
		return run, fmt.Errorf("scan run: %w", err)
	}
	run.DryRun = dryRun != 0
	if run.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt); err != nil {
		return run, fmt.Errorf("parse started_at: %w", err)
	}
	if run.FinishedAt, err = time.Parse(time.RFC3339Nano, finishedAt); err != nil {
		return run, fmt.Errorf("parse finished_at: %w", err)
	}
	if cycleErr != "" {
		run.CycleErr = errors.New(cycleErr)
	}
	return run, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
