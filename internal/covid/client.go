package covid

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const (
	maxRetries       = 3
	initialBackoff   = time.Second
	maxResponseBytes = 10 << 20 // 10 MiB — prevent unbounded reads from API responses.
)

// Client is a thin HTTP wrapper around the COVID-19 statistics API.
type Client struct {
	baseURL string
	http    *http.Client
}

// Compile-time interface check.
var _ DataSource = (*Client)(nil)

// NewClient creates a client for the API rooted at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// get sends a GET request to the given API path and decodes the JSON response.
// It handles 429 rate limiting with Retry-After (max 3 retries, exponential
// backoff) — the upstream API throttles aggressively.
func get[T any](ctx context.Context, c *Client, path string) (T, error) {
	var zero T
	u := c.baseURL + path

	backoff := initialBackoff

	for attempt := range maxRetries {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return zero, fmt.Errorf("covid: create %s request: %w", path, err)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return zero, fmt.Errorf("covid: %s request failed: %w", path, err)
		}

		body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
		_ = resp.Body.Close()
		if err != nil {
			return zero, fmt.Errorf("covid: read %s response: %w", path, err)
		}

		if resp.StatusCode == http.StatusTooManyRequests && attempt < maxRetries-1 {
			if ra := resp.Header.Get("Retry-After"); ra != "" {
				if secs, err := strconv.Atoi(ra); err == nil && secs > 0 {
					backoff = time.Duration(secs) * time.Second
				}
			}

			timer := time.NewTimer(backoff)
			select {
			case <-ctx.Done():
				timer.Stop()
				return zero, ctx.Err()
			case <-timer.C:
			}
			backoff *= 2
			continue
		}

		if resp.StatusCode != http.StatusOK {
			return zero, fmt.Errorf("covid: %s returned status %d", path, resp.StatusCode)
		}

		var result T
		if err := json.Unmarshal(body, &result); err != nil {
			return zero, fmt.Errorf("covid: decode %s response: %w", path, err)
		}
		return result, nil
	}

	return zero, fmt.Errorf("covid: %s: max retries exceeded", path)
}

// Countries implements DataSource.
func (c *Client) Countries(ctx context.Context) ([]Country, error) {
	return get[[]Country](ctx, c, "/countries")
}

// TotalByCountry implements DataSource.
func (c *Client) TotalByCountry(ctx context.Context, slug string) ([]DayTotal, error) {
	return get[[]DayTotal](ctx, c, "/total/country/"+url.PathEscape(slug))
}

// WorldTotals implements DataSource.
func (c *Client) WorldTotals(ctx context.Context) (WorldTotals, error) {
	return get[WorldTotals](ctx, c, "/world/total")
}
