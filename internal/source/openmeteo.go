package source

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/couchcryptid/landscape-sim-service/internal/observability"
)

// OpenMeteo fetches current weather and short-range forecasts from the
// Open-Meteo API. No credentials required.
type OpenMeteo struct {
	base
	baseURL string
}

// NewOpenMeteo creates an Open-Meteo weather adapter.
func NewOpenMeteo(timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *OpenMeteo {
	return &OpenMeteo{
		base:    newBase("open_meteo", timeout, logger, metrics),
		baseURL: "https://api.open-meteo.com/v1/forecast",
	}
}

func (a *OpenMeteo) Fetch(ctx context.Context, lat, lon float64) Result {
	start := time.Now()

	params := url.Values{
		"latitude":        {fmt.Sprintf("%.4f", lat)},
		"longitude":       {fmt.Sprintf("%.4f", lon)},
		"current_weather": {"true"},
		"hourly":          {"temperature_2m,precipitation,windspeed_10m"},
	}

	var resp struct {
		CurrentWeather struct {
			Temperature   float64 `json:"temperature"`
			WindSpeed     float64 `json:"windspeed"`
			WindDirection float64 `json:"winddirection"`
			WeatherCode   int     `json:"weathercode"`
		} `json:"current_weather"`
	}
	if err := a.getJSON(ctx, a.baseURL+"?"+params.Encode(), &resp); err != nil {
		return a.failure(start, err)
	}

	return a.success(start, map[string]any{
		"temperature":    resp.CurrentWeather.Temperature,
		"wind_speed":     resp.CurrentWeather.WindSpeed,
		"wind_direction": resp.CurrentWeather.WindDirection,
		"weather_code":   resp.CurrentWeather.WeatherCode,
	})
}

// MarineWeather fetches wave conditions from the Open-Meteo marine API.
type MarineWeather struct {
	base
	baseURL string
}

// NewMarineWeather creates a marine conditions adapter.
func NewMarineWeather(timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *MarineWeather {
	return &MarineWeather{
		base:    newBase("marine_weather", timeout, logger, metrics),
		baseURL: "https://marine-api.open-meteo.com/v1/marine",
	}
}

func (a *MarineWeather) Fetch(ctx context.Context, lat, lon float64) Result {
	start := time.Now()

	params := url.Values{
		"latitude":  {fmt.Sprintf("%.4f", lat)},
		"longitude": {fmt.Sprintf("%.4f", lon)},
		"hourly":    {"wave_height,wave_direction,wave_period"},
	}

	var resp struct {
		Hourly struct {
			WaveHeight    []float64 `json:"wave_height"`
			WaveDirection []float64 `json:"wave_direction"`
			WavePeriod    []float64 `json:"wave_period"`
		} `json:"hourly"`
	}
	if err := a.getJSON(ctx, a.baseURL+"?"+params.Encode(), &resp); err != nil {
		return a.failure(start, err)
	}

	fields := map[string]any{}
	if len(resp.Hourly.WaveHeight) > 0 {
		fields["wave_height"] = resp.Hourly.WaveHeight[0]
	}
	if len(resp.Hourly.WaveDirection) > 0 {
		fields["wave_direction"] = resp.Hourly.WaveDirection[0]
	}
	if len(resp.Hourly.WavePeriod) > 0 {
		fields["wave_period"] = resp.Hourly.WavePeriod[0]
	}
	return a.success(start, fields)
}
