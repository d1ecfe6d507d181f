package tracker

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/natea/berserk2/internal/model"
	"github.com/natea/berserk2/internal/source"
)

// Bug is the remote state of one tracked case, reduced to the fields a
// snapshot records.
type Bug struct {
	Summary        string  `json:"summary"`
	Status         string  `json:"status"`
	SubmittedBy    string  `json:"creator"`
	AssignedTo     string  `json:"assigned_to"`
	EstimatedHours float64 `json:"estimated_time"`
	ActualHours    float64 `json:"actual_time"`
	RemainingHours float64 `json:"remaining_time"`
}

// Client is a thin HTTP client for a Bugzilla-style REST backend. It
// handles API-key authentication, JSON decoding, and retry with
// exponential backoff on HTTP 429.
type Client struct {
	baseURL    string
	username   string
	password   string
	httpClient *http.Client
	maxRetries int
}

// NewClient creates a tracker client. baseURL is the tracker root
// without a trailing slash.
func NewClient(baseURL, username, password string) *Client {
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		username: username,
		password: password,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		maxRetries: 3,
	}
}

// GetBug fetches the current state of one case by its remote id.
func (c *Client) GetBug(ctx context.Context, remoteID string) (Bug, error) {
	var result struct {
		Bugs []Bug `json:"bugs"`
	}

	path := fmt.Sprintf("/rest/bug/%s?login=%s&password=%s",
		url.PathEscape(remoteID),
		url.QueryEscape(c.username),
		url.QueryEscape(c.password),
	)

	if err := c.get(ctx, path, &result); err != nil {
		return Bug{}, err
	}
	if len(result.Bugs) == 0 {
		return Bug{}, fmt.Errorf("bug %s not found", remoteID)
	}

	return result.Bugs[0], nil
}

// get performs an HTTP GET, handling rate limiting and JSON decoding.
func (c *Client) get(ctx context.Context, path string, result interface{}) error {
	reqURL := c.baseURL + path

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("executing request GET %s: %w", path, err)
		}

		respBody, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			return fmt.Errorf("reading response body: %w", readErr)
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			waitDuration := retryAfterDuration(resp, attempt)
			lastErr = fmt.Errorf("rate limited (429) on GET %s", path)

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(waitDuration):
				continue
			}
		}

		if resp.StatusCode == http.StatusUnauthorized {
			return &source.AuthError{
				Source:  model.SourceFogBugz,
				Message: fmt.Sprintf("tracker rejected credentials for %s", c.baseURL),
			}
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return fmt.Errorf(
				"unexpected status %d on GET %s: %s",
				resp.StatusCode, path, string(respBody),
			)
		}

		if result == nil || resp.StatusCode == http.StatusNoContent {
			return nil
		}

		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("unmarshaling response from GET %s: %w", path, err)
		}

		return nil
	}

	return fmt.Errorf("max retries (%d) exceeded: %w", c.maxRetries, lastErr)
}

// retryAfterDuration reads the Retry-After header and computes a wait
// duration. Falls back to exponential backoff if the header is missing.
func retryAfterDuration(resp *http.Response, attempt int) time.Duration {
	if header := resp.Header.Get("Retry-After"); header != "" {
		if seconds, err := strconv.Atoi(header); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}

	// Exponential backoff: 1s, 2s, 4s, ...
	backoff := time.Duration(1<<uint(attempt)) * time.Second
	if backoff > 30*time.Second {
		backoff = 30 * time.Second
	}
	return backoff
}
