package sheets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"time"

	"mastdash/internal/config"
)

// maxBodyBytes caps a single published export.
const maxBodyBytes = 32 << 20

type Client struct {
	cfg        config.Config
	httpClient *http.Client
	limiter    *RateLimiter
}

type FetchResult struct {
	Body        []byte
	ContentType string
	FinalURL    string
}

func NewClient(cfg config.Config) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: time.Duration(cfg.FetchTimeoutMs) * time.Millisecond},
		limiter:    NewRateLimiter(cfg.FetchRateLimitRPS),
	}
}

// Fetch downloads one published export. Transport retries only happen when
// FETCH_ATTEMPTS is above 1; by default a failure is returned as-is.
func (c *Client) Fetch(ctx context.Context, rawURL string) (FetchResult, error) {
	attempts := c.cfg.FetchAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := c.limiter.WaitTurn(ctx); err != nil {
			return FetchResult{}, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return FetchResult{}, err
		}
		req.Header.Set("Accept", "text/csv, application/vnd.openxmlformats-officedocument.spreadsheetml.sheet, text/html;q=0.8, */*;q=0.5")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			if ctx.Err() != nil {
				return FetchResult{}, err
			}
			continue
		}

		body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		_ = resp.Body.Close()
		if readErr != nil {
			lastErr = readErr
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			lastErr = fmt.Errorf("fetch %s: status %d", rawURL, resp.StatusCode)
			if isRetryableStatus(resp.StatusCode) && attempt < attempts {
				backoff := time.Duration(250*(1<<(attempt-1))+rand.Intn(100)) * time.Millisecond
				if err := sleepCtx(ctx, backoff); err != nil {
					return FetchResult{}, err
				}
				continue
			}
			return FetchResult{}, lastErr
		}

		finalURL := rawURL
		if resp.Request != nil && resp.Request.URL != nil {
			finalURL = resp.Request.URL.String()
		}
		return FetchResult{
			Body:        body,
			ContentType: resp.Header.Get("Content-Type"),
			FinalURL:    finalURL,
		}, nil
	}

	if lastErr == nil {
		lastErr = errors.New("fetch failed")
	}
	return FetchResult{}, lastErr
}

func isRetryableStatus(status int) bool {
	switch status {
	case 429, 500, 502, 503, 504:
		return true
	default:
		return false
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
