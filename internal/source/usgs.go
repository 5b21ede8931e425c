package source

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/couchcryptid/landscape-sim-service/internal/observability"
)

// Earthquake fetches recent seismic activity near a coordinate from the USGS
// FDSN event service.
type Earthquake struct {
	base
	baseURL string
	window  time.Duration // lookback for recent events
}

// NewEarthquake creates a USGS earthquake adapter.
func NewEarthquake(timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Earthquake {
	return &Earthquake{
		base:    newBase("usgs_earthquake", timeout, logger, metrics),
		baseURL: "https://earthquake.usgs.gov/fdsnws/event/1/query",
		window:  90 * 24 * time.Hour,
	}
}

func (a *Earthquake) Fetch(ctx context.Context, lat, lon float64) Result {
	start := time.Now()

	params := url.Values{
		"format":       {"geojson"},
		"starttime":    {time.Now().UTC().Add(-a.window).Format("2006-01-02")},
		"minlatitude":  {fmt.Sprintf("%.4f", lat-1)},
		"maxlatitude":  {fmt.Sprintf("%.4f", lat+1)},
		"minlongitude": {fmt.Sprintf("%.4f", lon-1)},
		"maxlongitude": {fmt.Sprintf("%.4f", lon+1)},
	}

	var resp struct {
		Features []struct {
			Properties struct {
				Mag float64 `json:"mag"`
			} `json:"properties"`
		} `json:"features"`
	}
	if err := a.getJSON(ctx, a.baseURL+"?"+params.Encode(), &resp); err != nil {
		return a.failure(start, err)
	}

	var maxMag float64
	for _, f := range resp.Features {
		if f.Properties.Mag > maxMag {
			maxMag = f.Properties.Mag
		}
	}

	risk := "low"
	switch {
	case maxMag > 4.0:
		risk = "high"
	case maxMag > 2.0:
		risk = "moderate"
	}

	return a.success(start, map[string]any{
		"earthquake_count": len(resp.Features),
		"max_magnitude":    maxMag,
		"seismic_risk":     risk,
		"recent_activity":  len(resp.Features) > 0,
	})
}

// WaterMonitoring fetches active stream gauge data from USGS Water Services.
// Coverage is limited to North America.
type WaterMonitoring struct {
	base
	baseURL string
}

// NewWaterMonitoring creates a USGS water services adapter.
func NewWaterMonitoring(timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *WaterMonitoring {
	return &WaterMonitoring{
		base:    newBase("usgs_water", timeout, logger, metrics),
		baseURL: "https://waterservices.usgs.gov/nwis/iv/",
	}
}

func (a *WaterMonitoring) Fetch(ctx context.Context, lat, lon float64) Result {
	start := time.Now()

	params := url.Values{
		"format":      {"json"},
		"bBox":        {fmt.Sprintf("%.4f,%.4f,%.4f,%.4f", lon-0.5, lat-0.5, lon+0.5, lat+0.5)},
		"parameterCd": {"00060"},
		"siteStatus":  {"active"},
	}

	var resp struct {
		Value struct {
			TimeSeries []struct{} `json:"timeSeries"`
		} `json:"value"`
	}
	if err := a.getJSON(ctx, a.baseURL+"?"+params.Encode(), &resp); err != nil {
		return a.failure(start, err)
	}

	sites := len(resp.Value.TimeSeries)
	floodRisk := 1.5
	switch {
	case sites > 5:
		floodRisk = 3.5
	case sites > 0:
		floodRisk = 2.5
	}

	availability := "unmonitored"
	if sites > 0 {
		availability = "monitored"
	}

	return a.success(start, map[string]any{
		"monitoring_sites":   sites,
		"flood_risk":         floodRisk,
		"water_availability": availability,
	})
}
