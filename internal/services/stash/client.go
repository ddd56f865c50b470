package stash

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const findScenesQuery = `
query FindScenes($filter: FindFilterType!) {
    findScenes(filter: $filter) {
        count
        scenes {
            id
            title
            date
            studio {
                name
            }
            stash_ids {
                endpoint
                stash_id
            }
            performers {
                name
            }
            files {
                path
            }
        }
    }
}`

// Client provides access to the Stash GraphQL API.
type Client struct {
	apiKey       string
	baseURL      string
	pageSize     int
	requestDelay time.Duration
	httpClient   *http.Client
	sleep        func(ctx context.Context, d time.Duration) error
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithPageSize sets how many scenes each GraphQL page requests.
func WithPageSize(size int) Option {
	return func(c *Client) {
		if size > 0 {
			c.pageSize = size
		}
	}
}

// WithRequestDelay inserts a pause between successive page fetches so a
// large library pull does not monopolize the Stash instance.
func WithRequestDelay(delay time.Duration) Option {
	return func(c *Client) {
		if delay > 0 {
			c.requestDelay = delay
		}
	}
}

// WithSleep overrides the inter-page pause implementation.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(c *Client) {
		if sleep != nil {
			c.sleep = sleep
		}
	}
}

// New creates a Stash client.
func New(baseURL, apiKey string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("stash base url required")
	}
	client := &Client{
		apiKey:     strings.TrimSpace(apiKey),
		baseURL:    baseURL,
		pageSize:   100,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		sleep:      sleepContext,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// AllScenes pages through findScenes until the full library is fetched.
// Scenes come back sorted by ID ascending so repeated runs see a stable
// order. The onPage callback, when set, receives running progress counts.
func (c *Client) AllScenes(ctx context.Context, onPage func(fetched, total int)) ([]Scene, error) {
	var all []Scene
	page := 1
	for {
		scenes, total, err := c.findScenes(ctx, page)
		if err != nil {
			return nil, fmt.Errorf("fetch scenes page %d: %w", page, err)
		}
		if len(scenes) == 0 {
			break
		}
		all = append(all, scenes...)
		if onPage != nil {
			onPage(len(all), total)
		}
		if len(all) >= total {
			break
		}
		page++
		if c.requestDelay > 0 {
			if err := c.sleep(ctx, c.requestDelay); err != nil {
				return nil, err
			}
		}
	}
	return all, nil
}

func (c *Client) findScenes(ctx context.Context, page int) ([]Scene, int, error) {
	request := graphqlRequest{
		Query: findScenesQuery,
		Variables: map[string]any{
			"filter": map[string]any{
				"page":      page,
				"per_page":  c.pageSize,
				"sort":      "id",
				"direction": "ASC",
			},
		},
	}
	body, err := json.Marshal(request)
	if err != nil {
		return nil, 0, fmt.Errorf("encode graphql request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/graphql", bytes.NewReader(body))
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("ApiKey", c.apiKey)
	}

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return nil, 0, fmt.Errorf("execute request (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		detail := strings.TrimSpace(string(raw))
		if len(detail) > 200 {
			detail = detail[:200]
		}
		return nil, 0, fmt.Errorf("stash graphql returned %d (latency=%v): %s", resp.StatusCode, latency, detail)
	}

	var decoded graphqlResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, 0, fmt.Errorf("decode graphql response: %w", err)
	}
	if len(decoded.Errors) > 0 {
		return nil, 0, fmt.Errorf("stash graphql error: %s", decoded.Errors[0].Message)
	}
	return decoded.Data.FindScenes.Scenes, decoded.Data.FindScenes.Count, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
