package source

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/couchcryptid/landscape-sim-service/internal/observability"
)

// OpenWeather fetches current conditions from the OpenWeatherMap API.
// Requires an API key.
type OpenWeather struct {
	base
	baseURL string
	apiKey  string
}

// NewOpenWeather creates an OpenWeatherMap current-conditions adapter.
func NewOpenWeather(apiKey string, timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *OpenWeather {
	return &OpenWeather{
		base:    newBase("openweather_current", timeout, logger, metrics),
		baseURL: "https://api.openweathermap.org/data/2.5/weather",
		apiKey:  apiKey,
	}
}

func (a *OpenWeather) Fetch(ctx context.Context, lat, lon float64) Result {
	start := time.Now()

	params := url.Values{
		"lat":   {fmt.Sprintf("%.4f", lat)},
		"lon":   {fmt.Sprintf("%.4f", lon)},
		"appid": {a.apiKey},
		"units": {"metric"},
	}

	var resp struct {
		Main struct {
			Temp     float64 `json:"temp"`
			Humidity float64 `json:"humidity"`
			Pressure float64 `json:"pressure"`
		} `json:"main"`
		Weather []struct {
			Description string `json:"description"`
		} `json:"weather"`
		Wind struct {
			Speed float64 `json:"speed"`
		} `json:"wind"`
		Name string `json:"name"`
	}
	if err := a.getJSON(ctx, a.baseURL+"?"+params.Encode(), &resp); err != nil {
		return a.failure(start, err)
	}

	fields := map[string]any{
		"temperature": resp.Main.Temp,
		"humidity":    resp.Main.Humidity,
		"pressure":    resp.Main.Pressure,
		"wind_speed":  resp.Wind.Speed,
		"location":    resp.Name,
	}
	if len(resp.Weather) > 0 {
		fields["description"] = resp.Weather[0].Description
	}
	return a.success(start, fields)
}

// OpenWeatherForecast fetches the 5-day forecast from OpenWeatherMap.
type OpenWeatherForecast struct {
	base
	baseURL string
	apiKey  string
}

// NewOpenWeatherForecast creates an OpenWeatherMap forecast adapter.
func NewOpenWeatherForecast(apiKey string, timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *OpenWeatherForecast {
	return &OpenWeatherForecast{
		base:    newBase("openweather_forecast", timeout, logger, metrics),
		baseURL: "https://api.openweathermap.org/data/2.5/forecast",
		apiKey:  apiKey,
	}
}

func (a *OpenWeatherForecast) Fetch(ctx context.Context, lat, lon float64) Result {
	start := time.Now()

	params := url.Values{
		"lat":   {fmt.Sprintf("%.4f", lat)},
		"lon":   {fmt.Sprintf("%.4f", lon)},
		"appid": {a.apiKey},
		"units": {"metric"},
	}

	var resp struct {
		City struct {
			Name string `json:"name"`
		} `json:"city"`
		List []struct {
			Dt   int64 `json:"dt"`
			Main struct {
				Temp float64 `json:"temp"`
			} `json:"main"`
			Weather []struct {
				Description string `json:"description"`
			} `json:"weather"`
		} `json:"list"`
	}
	if err := a.getJSON(ctx, a.baseURL+"?"+params.Encode(), &resp); err != nil {
		return a.failure(start, err)
	}

	entries := make([]map[string]any, 0, 5)
	for i, item := range resp.List {
		if i == 5 {
			break
		}
		entry := map[string]any{"dt": item.Dt, "temp": item.Main.Temp}
		if len(item.Weather) > 0 {
			entry["description"] = item.Weather[0].Description
		}
		entries = append(entries, entry)
	}

	return a.success(start, map[string]any{
		"city":     resp.City.Name,
		"forecast": entries,
	})
}
