package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Run mode values accepted by general.run_mode.
const (
	RunModeOnce     = "once"
	RunModeInterval = "interval"
)

// Engine mode values accepted by general.mode.
const (
	ModeBoth  = "both"
	ModeStash = "stash"
	ModeFiles = "files"
)

// Import operation values accepted by import.operation.
const (
	OperationCopy = "copy"
	OperationMove = "move"
)

// General contains run-scope settings shared by both engines.
type General struct {
	Mode          string `toml:"mode"`           // both, stash, files
	RunMode       string `toml:"run_mode"`       // once, interval
	IntervalHours int    `toml:"interval_hours"` // interval mode sleep between cycles
	DryRun        bool   `toml:"dry_run"`
}

// Paths contains directory configuration.
type Paths struct {
	DataDir string `toml:"data_dir"`
	LogDir  string `toml:"log_dir"`
}

// Whisparr contains configuration for the Whisparr media manager API.
type Whisparr struct {
	URL              string `toml:"url"`
	APIKey           string `toml:"api_key"`
	QualityProfileID int    `toml:"quality_profile_id"`
	RootFolderPath   string `toml:"root_folder_path"` // empty selects the manager's first root folder
	TagIDs           []int  `toml:"tag_ids"`
	RequestTimeout   int    `toml:"request_timeout"` // seconds, metadata calls
	ScanTimeout      int    `toml:"scan_timeout"`    // seconds, movie list + folder scans on large libraries
}

// Stash contains configuration for the Stash index and sync pacing.
type Stash struct {
	URL            string `toml:"url"`
	APIKey         string `toml:"api_key"`
	PageSize       int    `toml:"page_size"`
	BatchSize      int    `toml:"batch_size"`
	BatchDelay     int    `toml:"batch_delay"`      // seconds between batches
	RequestDelayMS int    `toml:"request_delay_ms"` // milliseconds between add calls
}

// Import contains configuration for the file import engine.
type Import struct {
	Folder           string `toml:"folder"`
	Operation        string `toml:"operation"` // copy, move
	BatchSize        int    `toml:"batch_size"`
	BatchDelay       int    `toml:"batch_delay"`     // seconds between batches
	SubfolderDelay   int    `toml:"subfolder_delay"` // seconds between folders
	ProcessRootFiles bool   `toml:"process_root_files"`
	MaxSubfolders    int    `toml:"max_subfolders"` // 0 means unlimited
	MaxDepth         int    `toml:"max_depth"`
}

// History contains configuration for the run-history database.
type History struct {
	Enabled bool `toml:"enabled"`
	Keep    int  `toml:"keep"` // runs retained, 0 means unlimited
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for importarr.
//
// Configuration sections by subsystem:
//   - General: engine selection, once/interval execution, dry run
//   - Paths: data and log directories
//   - Whisparr: manager endpoint, credentials, add-movie parameters
//   - Stash: index endpoint, credentials, sync pacing
//   - Import: import root, file operation, traversal limits, pacing
//   - History: run-history retention
//   - Notifications: ntfy push notification settings
//   - Logging: log format and level
type Config struct {
	General       General       `toml:"general"`
	Paths         Paths         `toml:"paths"`
	Whisparr      Whisparr      `toml:"whisparr"`
	Stash         Stash         `toml:"stash"`
	Import        Import        `toml:"import"`
	History       History       `toml:"history"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/importarr/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config
// has all path fields expanded and normalized. The boolean reports whether a
// file was found at the resolved path.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("importarr.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the data and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// StashSyncEnabled reports whether the configured mode includes the stash sync engine.
func (c *Config) StashSyncEnabled() bool {
	return c.General.Mode == ModeBoth || c.General.Mode == ModeStash
}

// FileImportEnabled reports whether the configured mode includes the file import engine.
func (c *Config) FileImportEnabled() bool {
	return c.General.Mode == ModeBoth || c.General.Mode == ModeFiles
}

// Interval returns the sleep duration between interval-mode cycles.
func (c *Config) Interval() time.Duration {
	return time.Duration(c.General.IntervalHours) * time.Hour
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
