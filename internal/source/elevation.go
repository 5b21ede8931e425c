package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/couchcryptid/landscape-sim-service/internal/observability"
)

// Elevation fetches terrain elevation from the Open-Elevation API.
type Elevation struct {
	base
	baseURL string
}

// NewElevation creates an Open-Elevation adapter.
func NewElevation(timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Elevation {
	return &Elevation{
		base:    newBase("elevation_api", timeout, logger, metrics),
		baseURL: "https://api.open-elevation.com/api/v1/lookup",
	}
}

func (a *Elevation) Fetch(ctx context.Context, lat, lon float64) Result {
	start := time.Now()

	params := url.Values{
		"locations": {fmt.Sprintf("%.4f,%.4f", lat, lon)},
	}

	var resp struct {
		Results []struct {
			Elevation float64 `json:"elevation"`
		} `json:"results"`
	}
	if err := a.getJSON(ctx, a.baseURL+"?"+params.Encode(), &resp); err != nil {
		return a.failure(start, err)
	}
	if len(resp.Results) == 0 {
		return a.failure(start, errors.New("elevation_api: empty results"))
	}

	elevation := resp.Results[0].Elevation

	category := "low"
	switch {
	case elevation > 1000:
		category = "high"
	case elevation > 100:
		category = "moderate"
	}

	terrain := "flat"
	switch {
	case elevation > 1500:
		terrain = "mountain"
	case elevation > 300:
		terrain = "hill"
	}

	return a.success(start, map[string]any{
		"elevation_meters":   elevation,
		"elevation_category": category,
		"terrain_type":       terrain,
	})
}
