package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"importarr/internal/config"
	"importarr/internal/report"
)

const userAgent = "Importarr/0.1.0"

// Service defines the notification surface exposed to the runner.
type Service interface {
	NotifyRunStarted(ctx context.Context, mode string, dryRun bool) error
	NotifyRunCompleted(ctx context.Context, result report.RunResult) error
	NotifyRunFailed(ctx context.Context, err error) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

func (n *ntfyService) NotifyRunStarted(ctx context.Context, mode string, dryRun bool) error {
	message := fmt.Sprintf("Run started (mode: %s)", mode)
	if dryRun {
		message += " [dry run]"
	}
	data := payload{
		title:   "Importarr - Run Started",
		message: message,
		tags:    []string{"importarr", "run", "started"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyRunCompleted(ctx context.Context, result report.RunResult) error {
	duration := result.Duration().Round(time.Second)
	if duration < 0 {
		duration = 0
	}

	var lines []string
	lines = append(lines, fmt.Sprintf("Run complete in %s", duration))
	if result.Sync.ScenesConsidered > 0 {
		lines = append(lines, fmt.Sprintf("Scenes: %d added, %d skipped, %d failed",
			result.Sync.ScenesAdded, result.Sync.ScenesSkipped, result.Sync.ScenesFailed))
	}
	if result.Import.FoldersScanned > 0 {
		lines = append(lines, fmt.Sprintf("Files: %d imported, %d unmatched, %d failed",
			result.Import.FilesImported, result.Import.FilesUnmatched, result.Import.FilesFailed))
	}
	if result.DryRun {
		lines = append(lines, "Dry run: no changes were made")
	}

	title := "Importarr - Run Complete"
	priority := ""
	if result.Degraded() {
		title = "Importarr - Run Complete (with errors)"
		priority = "high"
	}

	data := payload{
		title:    title,
		message:  strings.Join(lines, "\n"),
		tags:     []string{"importarr", "run", "completed"},
		priority: priority,
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyRunFailed(ctx context.Context, err error) error {
	message := "Run failed: "
	if err != nil {
		message += strings.TrimSpace(err.Error())
	} else {
		message += "unknown error"
	}
	data := payload{
		title:    "Importarr - Run Failed",
		message:  message,
		tags:     []string{"importarr", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Importarr - Test",
		message:  "Notification system test",
		tags:     []string{"importarr", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyRunStarted(context.Context, string, bool) error       { return nil }
func (noopService) NotifyRunCompleted(context.Context, report.RunResult) error { return nil }
func (noopService) NotifyRunFailed(context.Context, error) error               { return nil }
func (noopService) TestNotification(context.Context) error                     { return nil }
