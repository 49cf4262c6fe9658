package jikan

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/anirank/anirank/internal/config"
	"github.com/anirank/anirank/internal/errs"
	"github.com/anirank/anirank/internal/metrics"
	"github.com/cenkalti/backoff/v4"
	gocache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
)

const (
	maxAttempts    = 3
	episodePageCap = 50 // runaway-loop guard for paginated episode fetches

	defaultTimeout    = 30 * time.Second
	defaultRetryDelay = 200 * time.Millisecond

	metricSource = "jikan"
)

// pagination is the source's own page signal. HasNextPage is never
// inferred from page fullness.
type pagination struct {
	HasNextPage bool `json:"has_next_page"`
	CurrentPage int  `json:"current_page"`
}

// envelope is the JSON wrapper every endpoint returns
type envelope struct {
	Data       json.RawMessage `json:"data"`
	Pagination *pagination     `json:"pagination"`
}

// cachedResponse is what gets installed in the request cache on success.
// Entries are superseded by fresh ones on refetch, never mutated.
type cachedResponse struct {
	data       json.RawMessage
	pagination *pagination
}

// Client wraps the primary catalog source with a request cache, a
// minimum-gap pacing queue, and linear-backoff retries. One Client is
// constructed per process and shared by every consumer, so the pacing
// and cache state cover all callers.
type Client struct {
	baseURL    string
	httpClient *http.Client
	cache      *gocache.Cache
	cacheTTL   time.Duration
	pacer      *pacer
	retryDelay time.Duration
	now        func() time.Time
	logger     *logrus.Logger
}

// NewClient creates a new client for the primary catalog source
func NewClient(cfg *config.Config, logger *logrus.Logger) (*Client, error) {
	if cfg.JikanBaseURL == "" {
		return nil, fmt.Errorf("jikan base URL is required")
	}

	ttl := time.Duration(cfg.CacheTTLSeconds) * time.Second
	gap := time.Duration(cfg.RequestGapMillis) * time.Millisecond

	return &Client{
		baseURL: cfg.JikanBaseURL,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		cache:      gocache.New(ttl, 5*time.Minute),
		cacheTTL:   ttl,
		pacer:      newPacer(gap),
		retryDelay: defaultRetryDelay,
		now:        time.Now,
		logger:     logger,
	}, nil
}

// get fetches one path from the source, consulting the request cache
// first. A cache hit bypasses pacing and retries entirely. Failures are
// never cached.
func (c *Client) get(ctx context.Context, path string) (*cachedResponse, error) {
	if hit, ok := c.cache.Get(path); ok {
		metrics.CatalogCacheHits.WithLabelValues(metricSource).Inc()
		return hit.(*cachedResponse), nil
	}
	metrics.CatalogCacheMisses.WithLabelValues(metricSource).Inc()

	var resp *cachedResponse
	attempt := 0

	operation := func() error {
		attempt++
		if attempt > 1 {
			metrics.CatalogRetries.Inc()
		}

		if err := c.pacer.Wait(ctx); err != nil {
			return backoff.Permanent(err)
		}

		var err error
		resp, err = c.fetch(ctx, path)
		return err
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(newLinearBackOff(c.retryDelay), maxAttempts-1), ctx)

	if err := backoff.Retry(operation, policy); err != nil {
		metrics.CatalogRequests.WithLabelValues(metricSource, "error").Inc()
		switch {
		case errors.Is(err, errs.ErrNotFound),
			errors.Is(err, errs.ErrRateLimited),
			errors.Is(err, context.Canceled),
			errors.Is(err, context.DeadlineExceeded):
			return nil, err
		default:
			return nil, fmt.Errorf("%w: %v", errs.ErrUpstream, err)
		}
	}

	metrics.CatalogRequests.WithLabelValues(metricSource, "ok").Inc()
	c.cache.Set(path, resp, c.cacheTTL)
	return resp, nil
}

// fetch performs one HTTP attempt
func (c *Client) fetch(ctx context.Context, path string) (*cachedResponse, error) {
	fullURL := c.baseURL + path
	c.logger.WithField("url", fullURL).Debug("Fetching from primary catalog source")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "anirank/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		// The source confirmed absence; retrying cannot help.
		return nil, backoff.Permanent(errs.ErrNotFound)
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("%w: status 429", errs.ErrRateLimited)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("source returned status %d: %s", resp.StatusCode, string(body))
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if env.Data == nil {
		return nil, fmt.Errorf("response envelope missing data field")
	}

	return &cachedResponse{data: env.Data, pagination: env.Pagination}, nil
}

// linearBackOff waits base*1, base*2, base*3... between attempts
type linearBackOff struct {
	base    time.Duration
	attempt int
}

func newLinearBackOff(base time.Duration) *linearBackOff {
	return &linearBackOff{base: base}
}

func (b *linearBackOff) NextBackOff() time.Duration {
	b.attempt++
	return b.base * time.Duration(b.attempt)
}

func (b *linearBackOff) Reset() {
	b.attempt = 0
}

// pacer enforces a strict minimum gap between request issues. The mutex
// is held across the wait, so concurrent callers queue up and are
// released one at a time in arrival order.
type pacer struct {
	mu   sync.Mutex
	gap  time.Duration
	last time.Time
	now  func() time.Time
}

func newPacer(gap time.Duration) *pacer {
	return &pacer{gap: gap, now: time.Now}
}

// Wait blocks until this caller may issue its request
func (p *pacer) Wait(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.last.IsZero() {
		wait := p.gap - p.now().Sub(p.last)
		if wait > 0 {
			timer := time.NewTimer(wait)
			defer timer.Stop()
			select {
			case <-timer.C:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	p.last = p.now()
	return nil
}
