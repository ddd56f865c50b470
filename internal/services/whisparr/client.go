package whisparr

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrSceneExists reports that the scene is already present in Whisparr. The
// engine treats this as an informational skip, not a failure; it covers the
// race where the up-front movie snapshot is stale by the time the add lands.
var ErrSceneExists = errors.New("scene already exists in whisparr")

// ErrSceneNotFound reports that the metadata provider has no record for the
// requested stash ID, so Whisparr cannot add it.
var ErrSceneNotFound = errors.New("scene not found in metadata provider")

// Client provides access to the Whisparr v3 API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	scanClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client for metadata calls.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithScanClient overrides the HTTP client used for the slow endpoints
// (movie listing and folder scans on large libraries).
func WithScanClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.scanClient = client
		}
	}
}

// New creates a Whisparr client.
func New(baseURL, apiKey string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("whisparr base url required")
	}
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("whisparr api key required")
	}
	client := &Client{
		apiKey:     apiKey,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		scanClient: &http.Client{Timeout: 180 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// RootFolders lists the root folders configured in Whisparr.
func (c *Client) RootFolders(ctx context.Context) ([]RootFolder, error) {
	var folders []RootFolder
	if err := c.get(ctx, c.httpClient, "/api/v3/rootfolder", nil, &folders); err != nil {
		return nil, err
	}
	return folders, nil
}

// Movies returns every scene currently known to Whisparr. Large libraries can
// take minutes, so this uses the scan client's timeout.
func (c *Client) Movies(ctx context.Context) ([]Movie, error) {
	var movies []Movie
	if err := c.get(ctx, c.scanClient, "/api/v3/movie", nil, &movies); err != nil {
		return nil, err
	}
	return movies, nil
}

// AddScene adds a scene to Whisparr by its StashDB ID. A response indicating
// the scene is already present maps to ErrSceneExists; an unknown stash ID
// maps to ErrSceneNotFound.
func (c *Client) AddScene(ctx context.Context, req AddSceneRequest) (*Movie, error) {
	if strings.TrimSpace(req.StashID) == "" {
		return nil, errors.New("stash id must not be empty")
	}
	if strings.TrimSpace(req.RootFolderPath) == "" {
		return nil, errors.New("root folder path must not be empty")
	}

	payload := addScenePayload{
		Title:            req.Title,
		ForeignID:        req.StashID,
		StashID:          req.StashID,
		QualityProfileID: req.QualityProfileID,
		Monitored:        true,
		RootFolderPath:   req.RootFolderPath,
		Tags:             req.TagIDs,
		AddOptions: addOptions{
			SearchForMovie: false,
			Monitor:        "movieOnly",
		},
	}

	var movie Movie
	if err := c.post(ctx, c.httpClient, "/api/v3/movie", payload, &movie); err != nil {
		return nil, err
	}
	return &movie, nil
}

// ScanFolder asks Whisparr which files under the folder can be imported.
// Files already known to the manager are filtered out server-side.
func (c *Client) ScanFolder(ctx context.Context, folder string) ([]ImportFile, error) {
	folder = strings.TrimSpace(folder)
	if folder == "" {
		return nil, errors.New("folder must not be empty")
	}
	params := url.Values{}
	params.Set("folder", folder)
	params.Set("filterExistingFiles", "true")

	var files []ImportFile
	if err := c.get(ctx, c.scanClient, "/api/v3/manualimport", params, &files); err != nil {
		return nil, err
	}
	return files, nil
}

// ConfirmImport registers already-placed files against their matched scenes
// via the ManualImport command. It returns the queued command ID.
func (c *Client) ConfirmImport(ctx context.Context, files []ImportRequest, mode string) (int64, error) {
	if len(files) == 0 {
		return 0, errors.New("no files to import")
	}
	payload := manualImportCommand{
		Name:       "ManualImport",
		Files:      files,
		ImportMode: mode,
	}

	var resp commandResponse
	if err := c.post(ctx, c.scanClient, "/api/v3/command", payload, &resp); err != nil {
		return 0, err
	}
	if resp.ID == 0 {
		return 0, errors.New("command response missing id")
	}
	return resp.ID, nil
}

func (c *Client) get(ctx context.Context, client *http.Client, path string, params url.Values, out any) error {
	endpoint, err := url.Parse(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("parse whisparr url: %w", err)
	}
	if params != nil {
		endpoint.RawQuery = params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)

	requestStart := time.Now()
	resp, err := client.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return fmt.Errorf("execute request (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("whisparr %s returned %d (latency=%v)", path, resp.StatusCode, latency)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode whisparr response: %w", err)
	}
	return nil
}

func (c *Client) post(ctx context.Context, client *http.Client, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode whisparr payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	requestStart := time.Now()
	resp, err := client.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return fmt.Errorf("execute request (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return classifyError(resp, path, latency)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode whisparr response: %w", err)
	}
	return nil
}

func classifyError(resp *http.Response, path string, latency time.Duration) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	body := strings.ToLower(string(raw))

	switch {
	case resp.StatusCode == http.StatusBadRequest && (strings.Contains(body, "already") || strings.Contains(body, "exist")):
		return ErrSceneExists
	case resp.StatusCode == http.StatusNotFound || strings.Contains(body, "not found"):
		return ErrSceneNotFound
	}

	detail := strings.TrimSpace(string(raw))
	if len(detail) > 200 {
		detail = detail[:200]
	}
	if detail != "" {
		return fmt.Errorf("whisparr %s returned %d (latency=%v): %s", path, resp.StatusCode, latency, detail)
	}
	return fmt.Errorf("whisparr %s returned %d (latency=%v)", path, resp.StatusCode, latency)
}
