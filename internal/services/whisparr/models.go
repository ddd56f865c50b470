package whisparr

import "encoding/json"

// RootFolder is a destination root configured in Whisparr.
type RootFolder struct {
	ID   int64  `json:"id"`
	Path string `json:"path"`
}

// Movie is a scene known to Whisparr.
type Movie struct {
	ID      int64  `json:"id"`
	Title   string `json:"title"`
	StashID string `json:"stashId"`
	Path    string `json:"path"`
}

// AddSceneRequest carries the parameters for adding a scene by StashDB ID.
type AddSceneRequest struct {
	StashID          string
	Title            string
	QualityProfileID int
	RootFolderPath   string
	TagIDs           []int
}

type addScenePayload struct {
	Title            string     `json:"title"`
	ForeignID        string     `json:"foreignId"`
	StashID          string     `json:"stashId"`
	QualityProfileID int        `json:"qualityProfileId"`
	Monitored        bool       `json:"monitored"`
	RootFolderPath   string     `json:"rootFolderPath"`
	Tags             []int      `json:"tags,omitempty"`
	AddOptions       addOptions `json:"addOptions"`
}

type addOptions struct {
	SearchForMovie bool   `json:"searchForMovie"`
	Monitor        string `json:"monitor"`
}

// MovieRef identifies the scene a scanned file was matched to.
type MovieRef struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	Path  string `json:"path"`
}

// Rejection explains why Whisparr declined to import a file.
type Rejection struct {
	Reason string `json:"reason"`
}

// ImportFile is one candidate returned by a manual import scan. Quality and
// Languages are passed back verbatim on confirmation, so they stay raw.
type ImportFile struct {
	Path         string          `json:"path"`
	FolderName   string          `json:"folderName"`
	Movie        *MovieRef       `json:"movie"`
	Quality      json.RawMessage `json:"quality,omitempty"`
	Languages    json.RawMessage `json:"languages,omitempty"`
	ReleaseGroup string          `json:"releaseGroup"`
	DownloadID   string          `json:"downloadId"`
	Rejections   []Rejection     `json:"rejections"`
}

// Matched reports whether the scan produced a usable scene match.
func (f ImportFile) Matched() bool {
	return f.Movie != nil && f.Movie.ID > 0
}

// RejectionReasons flattens the rejection list for logging.
func (f ImportFile) RejectionReasons() []string {
	if len(f.Rejections) == 0 {
		return nil
	}
	reasons := make([]string, 0, len(f.Rejections))
	for _, r := range f.Rejections {
		if r.Reason != "" {
			reasons = append(reasons, r.Reason)
		}
	}
	return reasons
}

// ImportRequest describes one placed file for the ManualImport command.
type ImportRequest struct {
	Path         string          `json:"path"`
	FolderName   string          `json:"folderName"`
	MovieID      int64           `json:"movieId"`
	Quality      json.RawMessage `json:"quality,omitempty"`
	Languages    json.RawMessage `json:"languages,omitempty"`
	ReleaseGroup string          `json:"releaseGroup"`
	DownloadID   string          `json:"downloadId"`
	ImportMode   string          `json:"importMode"`
}

type manualImportCommand struct {
	Name       string          `json:"name"`
	Files      []ImportRequest `json:"files"`
	ImportMode string          `json:"importMode"`
}

type commandResponse struct {
	ID int64 `json:"id"`
}
