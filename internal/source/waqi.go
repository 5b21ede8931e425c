package source

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/couchcryptid/landscape-sim-service/internal/observability"
)

// AirQuality fetches the nearest-station air quality index from the World Air
// Quality Index project.
type AirQuality struct {
	base
	baseURL string
	token   string
}

// NewAirQuality creates a WAQI adapter.
func NewAirQuality(token string, timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *AirQuality {
	return &AirQuality{
		base:    newBase("air_quality_waqi", timeout, logger, metrics),
		baseURL: "https://api.waqi.info/feed",
		token:   token,
	}
}

func (a *AirQuality) Fetch(ctx context.Context, lat, lon float64) Result {
	start := time.Now()

	params := url.Values{"token": {a.token}}
	fullURL := fmt.Sprintf("%s/geo:%.4f;%.4f/?%s", a.baseURL, lat, lon, params.Encode())

	var resp struct {
		Status string `json:"status"`
		Data   struct {
			AQI float64 `json:"aqi"`
		} `json:"data"`
	}
	if err := a.getJSON(ctx, fullURL, &resp); err != nil {
		return a.failure(start, err)
	}
	if resp.Status != "ok" {
		return a.failure(start, fmt.Errorf("air_quality_waqi: status %q", resp.Status))
	}

	quality := "good"
	switch {
	case resp.Data.AQI >= 100:
		quality = "unhealthy"
	case resp.Data.AQI >= 50:
		quality = "moderate"
	}

	return a.success(start, map[string]any{
		"aqi":             resp.Data.AQI,
		"air_quality":     quality,
		"pollution_level": resp.Data.AQI / 100.0,
	})
}
