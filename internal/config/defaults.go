package config

const (
	defaultDataDir              = "~/.local/share/importarr"
	defaultLogDir               = "~/.local/share/importarr/logs"
	defaultMode                 = ModeBoth
	defaultRunMode              = RunModeOnce
	defaultIntervalHours        = 24
	defaultWhisparrURL          = "http://whisparr:9090"
	defaultQualityProfileID     = 1
	defaultWhisparrTimeout      = 30
	defaultWhisparrScanTimeout  = 180
	defaultStashURL             = "http://stash:9999"
	defaultStashPageSize        = 100
	defaultStashBatchSize       = 50
	defaultStashBatchDelay      = 5
	defaultStashRequestDelayMS  = 500
	defaultImportFolder         = "/import"
	defaultImportOperation      = OperationCopy
	defaultFileBatchSize        = 50
	defaultFileBatchDelay       = 5
	defaultSubfolderDelay       = 5
	defaultMaxDepth             = 10
	defaultHistoryKeep          = 200
	defaultNotifyRequestTimeout = 10
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		General: General{
			Mode:          defaultMode,
			RunMode:       defaultRunMode,
			IntervalHours: defaultIntervalHours,
		},
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Whisparr: Whisparr{
			URL:              defaultWhisparrURL,
			QualityProfileID: defaultQualityProfileID,
			RequestTimeout:   defaultWhisparrTimeout,
			ScanTimeout:      defaultWhisparrScanTimeout,
		},
		Stash: Stash{
			URL:            defaultStashURL,
			PageSize:       defaultStashPageSize,
			BatchSize:      defaultStashBatchSize,
			BatchDelay:     defaultStashBatchDelay,
			RequestDelayMS: defaultStashRequestDelayMS,
		},
		Import: Import{
			Folder:         defaultImportFolder,
			Operation:      defaultImportOperation,
			BatchSize:      defaultFileBatchSize,
			BatchDelay:     defaultFileBatchDelay,
			SubfolderDelay: defaultSubfolderDelay,
			MaxDepth:       defaultMaxDepth,
		},
		History: History{
			Enabled: true,
			Keep:    defaultHistoryKeep,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyRequestTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
