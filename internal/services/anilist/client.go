// Package anilist talks to the alternate, query-based catalog source.
// It is assumed low-volume: requests are cached but never paced or
// retried, unlike the primary source.
package anilist

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/anirank/anirank/internal/config"
	"github.com/anirank/anirank/internal/metrics"
	gocache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
)

const (
	defaultTimeout = 30 * time.Second
	cacheTTL       = time.Hour

	metricSource = "anilist"
)

// Client handles communication with the alternate catalog source
type Client struct {
	endpoint   string
	httpClient *http.Client
	cache      *gocache.Cache
	now        func() time.Time
	logger     *logrus.Logger
}

// NewClient creates a new alternate-source client
func NewClient(cfg *config.Config, logger *logrus.Logger) (*Client, error) {
	if cfg.AniListURL == "" {
		return nil, fmt.Errorf("anilist URL is required")
	}

	return &Client{
		endpoint:   cfg.AniListURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
		cache:      gocache.New(cacheTTL, 10*time.Minute),
		now:        time.Now,
		logger:     logger,
	}, nil
}

type graphQLError struct {
	Message string `json:"message"`
}

type graphQLEnvelope struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphQLError  `json:"errors"`
}

// query runs one GraphQL query, consulting the request cache first.
// Any non-2xx status or non-empty errors array is a failure; error
// messages are joined into one.
func (c *Client) query(ctx context.Context, query string, variables map[string]interface{}, result interface{}) error {
	payload, err := json.Marshal(map[string]interface{}{
		"query":     query,
		"variables": variables,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal query: %w", err)
	}

	cacheKey := string(payload)
	if hit, ok := c.cache.Get(cacheKey); ok {
		metrics.CatalogCacheHits.WithLabelValues(metricSource).Inc()
		return json.Unmarshal(hit.([]byte), result)
	}
	metrics.CatalogCacheMisses.WithLabelValues(metricSource).Inc()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	c.logger.WithField("endpoint", c.endpoint).Debug("Querying alternate catalog source")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.CatalogRequests.WithLabelValues(metricSource, "error").Inc()
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.CatalogRequests.WithLabelValues(metricSource, "error").Inc()
		return fmt.Errorf("failed to read response: %w", err)
	}

	var env graphQLEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		metrics.CatalogRequests.WithLabelValues(metricSource, "error").Inc()
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 || len(env.Errors) > 0 {
		metrics.CatalogRequests.WithLabelValues(metricSource, "error").Inc()
		messages := make([]string, 0, len(env.Errors))
		for _, e := range env.Errors {
			messages = append(messages, e.Message)
		}
		if len(messages) == 0 {
			messages = append(messages, fmt.Sprintf("HTTP %d", resp.StatusCode))
		}
		return fmt.Errorf("alternate source request failed: %s", strings.Join(messages, "; "))
	}

	if env.Data == nil {
		metrics.CatalogRequests.WithLabelValues(metricSource, "error").Inc()
		return fmt.Errorf("alternate source response missing data")
	}

	metrics.CatalogRequests.WithLabelValues(metricSource, "ok").Inc()
	c.cache.Set(cacheKey, []byte(env.Data), cacheTTL)
	return json.Unmarshal(env.Data, result)
}
