package source

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/couchcryptid/landscape-sim-service/internal/observability"
)

// FireDetection fetches satellite fire detections near a coordinate from the
// NASA FIRMS area API. The response is CSV with one header row.
type FireDetection struct {
	base
	baseURL string
	apiKey  string
}

// NewFireDetection creates a NASA FIRMS adapter.
func NewFireDetection(apiKey string, timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *FireDetection {
	return &FireDetection{
		base:    newBase("nasa_firms", timeout, logger, metrics),
		baseURL: "https://firms.modaps.eosdis.nasa.gov/api/area/csv",
		apiKey:  apiKey,
	}
}

func (a *FireDetection) Fetch(ctx context.Context, lat, lon float64) Result {
	start := time.Now()

	// Area query: west,south,east,north box around the coordinate, 7-day window.
	fullURL := fmt.Sprintf("%s/%s/VIIRS_SNPP_NRT/%.4f,%.4f,%.4f,%.4f/7",
		a.baseURL, a.apiKey, lon-0.5, lat-0.5, lon+0.5, lat+0.5)

	body, err := a.getText(ctx, fullURL)
	if err != nil {
		return a.failure(start, err)
	}

	fireCount := 0
	if trimmed := strings.TrimSpace(body); trimmed != "" {
		fireCount = len(strings.Split(trimmed, "\n")) - 1 // minus header row
		if fireCount < 0 {
			fireCount = 0
		}
	}

	fireRisk := 1.0
	if fireCount > 0 {
		fireRisk = min(float64(fireCount)/2.0+2.0, 5.0)
	}

	season := "low"
	switch {
	case fireRisk > 3.0:
		season = "high"
	case fireRisk > 2.0:
		season = "moderate"
	}

	return a.success(start, map[string]any{
		"fire_count":  fireCount,
		"fire_risk":   fireRisk,
		"fire_season": season,
	})
}
