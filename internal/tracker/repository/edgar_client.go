package repository

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"insider-tracker/internal/tracker/config"
	"insider-tracker/pkg/logger"

	"golang.org/x/time/rate"
)

// EdgarClient is the shared throttled HTTP client for SEC EDGAR. All
// repositories go through it so the inter-request delay covers every
// request in a run, search pages included.
type EdgarClient struct {
	cfg            *config.Config
	log            *logger.Logger
	httpClient     *http.Client
	requestLimiter *rate.Limiter
}

// NewEdgarClient creates the shared EDGAR client. One request is released
// per configured delay; SEC rejects unidentified clients, so the
// configured identity string is sent on every request.
func NewEdgarClient(cfg *config.Config, log *logger.Logger) *EdgarClient {
	return &EdgarClient{
		cfg: cfg,
		log: log,
		httpClient: &http.Client{
			Timeout: cfg.EDGAR.RequestTimeout,
		},
		requestLimiter: rate.NewLimiter(rate.Every(cfg.EDGAR.RequestDelay), 1),
	}
}

// Get performs one throttled GET and returns the response body.
func (c *EdgarClient) Get(ctx context.Context, url string) ([]byte, error) {
	if err := c.requestLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.cfg.EDGAR.UserAgent)
	req.Header.Set("Accept", "application/json, text/html, application/xml, */*")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status code %d for %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	return body, nil
}
