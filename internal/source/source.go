// Package source provides bounded-latency adapters for the external data
// providers consulted by specialists, plus the catalog used to select them.
//
// Adapters never return Go errors to callers: every outcome is a tagged
// Result so one provider's failure can never abort a specialist's fan-out.
package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/landscape-sim-service/internal/observability"
)

// Result is the tagged outcome of one adapter call.
type Result struct {
	Source  string         `json:"source"`
	Success bool           `json:"success"`
	Fields  map[string]any `json:"fields,omitempty"`
	Err     string         `json:"error,omitempty"`
}

// Adapter performs one bounded-latency call to one external data provider.
type Adapter interface {
	Name() string
	Fetch(ctx context.Context, lat, lon float64) Result
}

// base holds the shared plumbing for HTTP-backed adapters.
type base struct {
	name       string
	httpClient *http.Client
	logger     *slog.Logger
	metrics    *observability.Metrics
}

func newBase(name string, timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) base {
	return base{
		name:       name,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
		metrics:    metrics,
	}
}

func (b *base) Name() string { return b.name }

// getJSON performs a GET against fullURL and decodes the JSON body into v.
func (b *base) getJSON(ctx context.Context, fullURL string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s request: %w", b.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s: status %d: %s", b.name, resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("%s: decode response: %w", b.name, err)
	}
	return nil
}

// getText performs a GET and returns the raw body, for CSV-style providers.
func (b *base) getText(ctx context.Context, fullURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%s request: %w", b.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%s: status %d", b.name, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("%s: read response: %w", b.name, err)
	}
	return string(body), nil
}

// success records metrics and wraps fields in a successful Result.
func (b *base) success(start time.Time, fields map[string]any) Result {
	b.metrics.SourceRequests.WithLabelValues(b.name, "success").Inc()
	b.metrics.SourceDuration.WithLabelValues(b.name).Observe(time.Since(start).Seconds())
	return Result{Source: b.name, Success: true, Fields: fields}
}

// failure records metrics, logs, and wraps the error in a failed Result.
func (b *base) failure(start time.Time, err error) Result {
	b.metrics.SourceRequests.WithLabelValues(b.name, "error").Inc()
	b.metrics.SourceDuration.WithLabelValues(b.name).Observe(time.Since(start).Seconds())
	b.logger.Warn("source call failed", "source", b.name, "error", err)
	return Result{Source: b.name, Success: false, Err: err.Error()}
}
