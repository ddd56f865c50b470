package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	c.normalizeGeneral()
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeWhisparr()
	c.normalizeStash()
	if err := c.normalizeImport(); err != nil {
		return err
	}
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizeGeneral() {
	c.General.Mode = strings.ToLower(strings.TrimSpace(c.General.Mode))
	if c.General.Mode == "" {
		c.General.Mode = defaultMode
	}
	c.General.RunMode = strings.ToLower(strings.TrimSpace(c.General.RunMode))
	if c.General.RunMode == "" {
		c.General.RunMode = defaultRunMode
	}
	if c.General.IntervalHours <= 0 {
		c.General.IntervalHours = defaultIntervalHours
	}
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeWhisparr() {
	c.Whisparr.URL = strings.TrimRight(strings.TrimSpace(c.Whisparr.URL), "/")
	c.Whisparr.APIKey = strings.TrimSpace(c.Whisparr.APIKey)
	if c.Whisparr.APIKey == "" {
		if value, ok := os.LookupEnv("WHISPARR_API_KEY"); ok {
			c.Whisparr.APIKey = strings.TrimSpace(value)
		}
	}
	c.Whisparr.RootFolderPath = strings.TrimSpace(c.Whisparr.RootFolderPath)
	if c.Whisparr.RequestTimeout <= 0 {
		c.Whisparr.RequestTimeout = defaultWhisparrTimeout
	}
	if c.Whisparr.ScanTimeout <= 0 {
		c.Whisparr.ScanTimeout = defaultWhisparrScanTimeout
	}
}

func (c *Config) normalizeStash() {
	c.Stash.URL = strings.TrimRight(strings.TrimSpace(c.Stash.URL), "/")
	c.Stash.APIKey = strings.TrimSpace(c.Stash.APIKey)
	if c.Stash.APIKey == "" {
		if value, ok := os.LookupEnv("STASH_API_KEY"); ok {
			c.Stash.APIKey = strings.TrimSpace(value)
		}
	}
	if c.Stash.PageSize <= 0 {
		c.Stash.PageSize = defaultStashPageSize
	}
	if c.Stash.BatchSize <= 0 {
		c.Stash.BatchSize = defaultStashBatchSize
	}
	if c.Stash.BatchDelay < 0 {
		c.Stash.BatchDelay = 0
	}
	if c.Stash.RequestDelayMS < 0 {
		c.Stash.RequestDelayMS = 0
	}
}

func (c *Config) normalizeImport() error {
	var err error
	if c.Import.Folder, err = expandPath(c.Import.Folder); err != nil {
		return fmt.Errorf("import.folder: %w", err)
	}
	c.Import.Operation = strings.ToLower(strings.TrimSpace(c.Import.Operation))
	if c.Import.Operation == "" {
		c.Import.Operation = defaultImportOperation
	}
	if c.Import.BatchSize <= 0 {
		c.Import.BatchSize = defaultFileBatchSize
	}
	if c.Import.BatchDelay < 0 {
		c.Import.BatchDelay = 0
	}
	if c.Import.SubfolderDelay < 0 {
		c.Import.SubfolderDelay = 0
	}
	if c.Import.MaxSubfolders < 0 {
		c.Import.MaxSubfolders = 0
	}
	if c.Import.MaxDepth <= 0 {
		c.Import.MaxDepth = defaultMaxDepth
	}
	return nil
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.NtfyTopic == "" {
		if value, ok := os.LookupEnv("IMPORTARR_NTFY_TOPIC"); ok {
			c.Notifications.NtfyTopic = strings.TrimSpace(value)
		}
	}
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyRequestTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
