package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable for the selected mode.
func (c *Config) Validate() error {
	if err := c.validateGeneral(); err != nil {
		return err
	}
	if err := c.validateWhisparr(); err != nil {
		return err
	}
	if err := c.validateStash(); err != nil {
		return err
	}
	if err := c.validateImport(); err != nil {
		return err
	}
	if err := c.validateHistory(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateGeneral() error {
	switch c.General.Mode {
	case ModeBoth, ModeStash, ModeFiles:
	default:
		return fmt.Errorf("general.mode must be %q, %q, or %q (got %q)", ModeBoth, ModeStash, ModeFiles, c.General.Mode)
	}
	switch c.General.RunMode {
	case RunModeOnce, RunModeInterval:
	default:
		return fmt.Errorf("general.run_mode must be %q or %q (got %q)", RunModeOnce, RunModeInterval, c.General.RunMode)
	}
	if c.General.RunMode == RunModeInterval && c.General.IntervalHours <= 0 {
		return errors.New("general.interval_hours must be positive in interval mode")
	}
	return nil
}

func (c *Config) validateWhisparr() error {
	if c.Whisparr.URL == "" {
		return errors.New("whisparr.url must be set")
	}
	if c.Whisparr.APIKey == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/importarr/config.toml"
		}
		return fmt.Errorf("whisparr.api_key is required. Set WHISPARR_API_KEY env var or edit %s (create with 'importarr config init')", defaultPath)
	}
	if c.Whisparr.QualityProfileID <= 0 {
		return errors.New("whisparr.quality_profile_id must be positive")
	}
	for _, id := range c.Whisparr.TagIDs {
		if id <= 0 {
			return fmt.Errorf("whisparr.tag_ids must all be positive (got %d)", id)
		}
	}
	return nil
}

func (c *Config) validateStash() error {
	if !c.StashSyncEnabled() {
		return nil
	}
	if c.Stash.URL == "" {
		return errors.New("stash.url must be set when stash sync is enabled")
	}
	if c.Stash.APIKey == "" {
		return errors.New("stash.api_key must be set when stash sync is enabled (or set STASH_API_KEY)")
	}
	return nil
}

func (c *Config) validateImport() error {
	if !c.FileImportEnabled() {
		return nil
	}
	if c.Import.Folder == "" {
		return errors.New("import.folder must be set when file import is enabled")
	}
	switch c.Import.Operation {
	case OperationCopy, OperationMove:
	default:
		return fmt.Errorf("import.operation must be %q or %q (got %q)", OperationCopy, OperationMove, c.Import.Operation)
	}
	return nil
}

func (c *Config) validateHistory() error {
	if c.History.Keep < 0 {
		return errors.New("history.keep must be >= 0")
	}
	return nil
}
