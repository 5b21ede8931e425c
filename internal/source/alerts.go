package source

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/landscape-sim-service/internal/observability"
)

// SevereWeather fetches active National Weather Service alerts at a point.
// Coverage is limited to the United States.
type SevereWeather struct {
	base
	baseURL string
}

// NewSevereWeather creates an NWS alerts adapter.
func NewSevereWeather(timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *SevereWeather {
	return &SevereWeather{
		base:    newBase("severe_weather", timeout, logger, metrics),
		baseURL: "https://api.weather.gov",
	}
}

func (a *SevereWeather) Fetch(ctx context.Context, lat, lon float64) Result {
	start := time.Now()

	fullURL := fmt.Sprintf("%s/alerts/active?point=%.4f,%.4f", a.baseURL, lat, lon)

	var resp struct {
		Features []struct {
			Properties struct {
				Event string `json:"event"`
			} `json:"properties"`
		} `json:"features"`
	}
	if err := a.getJSON(ctx, fullURL, &resp); err != nil {
		return a.failure(start, err)
	}

	alertTypes := make([]string, 0, 3)
	for i, f := range resp.Features {
		if i == 3 {
			break
		}
		alertTypes = append(alertTypes, f.Properties.Event)
	}

	return a.success(start, map[string]any{
		"active_alerts": len(resp.Features),
		"has_warnings":  len(resp.Features) > 0,
		"alert_types":   alertTypes,
	})
}
