package scryfall

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultBaseURL = "https://api.scryfall.com"
	rateLimitDelay = 100 * time.Millisecond // 100ms between requests (10 req/sec)
	requestTimeout = 30 * time.Second
	maxRetries     = 3
	initialBackoff = 1 * time.Second
	maxBackoff     = 16 * time.Second
)

// Client represents a Scryfall API client with rate limiting.
type Client struct {
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	userAgent   string
	baseURL     string
	backoff     time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at another API root (used by tests).
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = url }
}

// WithHTTPClient replaces the underlying HTTP client. Bulk downloads are
// large, so callers downloading bulk files usually want a longer timeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRateLimit overrides the delay between requests.
func WithRateLimit(every time.Duration) Option {
	return func(c *Client) { c.rateLimiter = rate.NewLimiter(rate.Every(every), 1) }
}

// WithInitialBackoff overrides the first retry delay.
func WithInitialBackoff(d time.Duration) Option {
	return func(c *Client) { c.backoff = d }
}

// NewClient creates a new Scryfall API client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
		// Rate limiter: 1 request per 100ms = 10 req/sec
		rateLimiter: rate.NewLimiter(rate.Every(rateLimitDelay), 1),
		userAgent:   "mtg-decksampler/1.0",
		baseURL:     defaultBaseURL,
		backoff:     initialBackoff,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetBulkData retrieves bulk data download information.
func (c *Client) GetBulkData(ctx context.Context) (*BulkDataList, error) {
	url := fmt.Sprintf("%s/bulk-data", c.baseURL)

	var bulkData BulkDataList
	if err := c.doRequest(ctx, url, &bulkData); err != nil {
		return nil, fmt.Errorf("failed to get bulk data: %w", err)
	}

	return &bulkData, nil
}

// FetchBulk looks up the bulk file of the given type (e.g. BulkOracleCards)
// and streams its contents into w.
func (c *Client) FetchBulk(ctx context.Context, bulkType string, w io.Writer) (*BulkData, error) {
	list, err := c.GetBulkData(ctx)
	if err != nil {
		return nil, err
	}

	bulk, err := list.Find(bulkType)
	if err != nil {
		return nil, err
	}

	log.Printf("[Scryfall] Downloading %s (%.2f MB, updated %s)",
		bulk.Name, float64(bulk.Size)/(1024*1024), bulk.UpdatedAt.Format(time.DateOnly))

	resp, err := c.get(ctx, bulk.DownloadURI)
	if err != nil {
		return nil, fmt.Errorf("failed to download bulk file: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to write bulk file: %w", err)
	}

	log.Printf("[Scryfall] Downloaded %d bytes", n)
	return bulk, nil
}

// doRequest performs a rate limited GET and decodes the JSON body into result.
func (c *Client) doRequest(ctx context.Context, url string, result interface{}) error {
	resp, err := c.get(ctx, url)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("failed to parse JSON response: %w", err)
	}

	return nil
}

// get performs an HTTP GET with rate limiting and retry logic. On success the
// caller owns the response body.
func (c *Client) get(ctx context.Context, url string) (*http.Response, error) {
	var lastErr error
	backoff := c.backoff

	for attempt := 0; attempt <= maxRetries; attempt++ {
		// Wait for rate limiter
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter error: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("User-Agent", c.userAgent)
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("HTTP request failed: %w", err)

			// Retry on network errors
			if attempt < maxRetries {
				if err := sleep(ctx, backoff); err != nil {
					return nil, err
				}
				backoff = min(backoff*2, maxBackoff)
				continue
			}
			return nil, lastErr
		}

		switch resp.StatusCode {
		case http.StatusOK:
			return resp, nil

		case http.StatusTooManyRequests:
			_ = resp.Body.Close()
			lastErr = fmt.Errorf("rate limited (HTTP 429)")

			if attempt < maxRetries {
				wait := backoff
				if secs, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil {
					wait = time.Duration(secs) * time.Second
				}
				if err := sleep(ctx, wait); err != nil {
					return nil, err
				}
				backoff = min(backoff*2, maxBackoff)
				continue
			}
			return nil, lastErr

		case http.StatusNotFound:
			_ = resp.Body.Close()
			return nil, &NotFoundError{URL: url}

		default:
			body, _ := io.ReadAll(resp.Body)
			_ = resp.Body.Close()

			var apiErr APIError
			if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Details != "" {
				return nil, &apiErr
			}

			return nil, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
		}
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
