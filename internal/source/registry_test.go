package source_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/landscape-sim-service/internal/domain"
	"github.com/couchcryptid/landscape-sim-service/internal/observability"
	"github.com/couchcryptid/landscape-sim-service/internal/source"
)

type listedAdapter struct{ name string }

func (a *listedAdapter) Name() string { return a.name }
func (a *listedAdapter) Fetch(context.Context, float64, float64) source.Result {
	return source.Result{Source: a.name, Success: true}
}

func registryOf(names ...string) *source.Registry {
	adapters := make(map[string]source.Adapter, len(names))
	for _, n := range names {
		adapters[n] = &listedAdapter{name: n}
	}
	return source.NewRegistryForTesting(adapters)
}

func TestNewRegistryConstructsKeylessAdapters(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := source.NewRegistry(source.Options{
		WAQIToken:      "demo",
		AdapterTimeout: 5 * time.Second,
		CacheSize:      100,
	}, logger, observability.NewMetricsForTesting())

	for _, name := range []string{"open_meteo", "usgs_earthquake", "elevation_api",
		"usgs_water", "severe_weather", "marine_weather", "air_quality_waqi",
		"volcano_discovery", "noaa_tides", "landsat_api", "sentinel_hub", "global_disaster"} {
		_, ok := r.Adapter(name)
		assert.True(t, ok, "adapter %s should be constructed without credentials", name)
	}

	// Key-gated providers stay listed but unselectable.
	_, ok := r.Adapter("openweather_current")
	assert.False(t, ok)
	_, ok = r.Adapter("nasa_firms")
	assert.False(t, ok)
	assert.Len(t, r.Infos(), 15)
}

func TestNewRegistryConstructsKeyedAdapters(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := source.NewRegistry(source.Options{
		OpenWeatherKey: "k1",
		FIRMSKey:       "k2",
		WAQIToken:      "demo",
		AdapterTimeout: 5 * time.Second,
		CacheSize:      100,
	}, logger, observability.NewMetricsForTesting())

	for _, name := range []string{"openweather_current", "openweather_forecast", "nasa_firms"} {
		_, ok := r.Adapter(name)
		assert.True(t, ok, "adapter %s should be constructed with credentials", name)
	}
}

func TestRelevantMatchesSpecialtyKeywords(t *testing.T) {
	r := registryOf("open_meteo", "usgs_earthquake", "nasa_firms", "elevation_api")

	climate := r.Relevant(domain.SpecialistClimate, domain.DefaultSharedContext())
	assert.Equal(t, []string{"open_meteo"}, climate)

	geological := r.Relevant(domain.SpecialistGeological, domain.DefaultSharedContext())
	assert.Equal(t, []string{"usgs_earthquake", "elevation_api"}, geological,
		"ordered by reliability: usgs 0.98 before elevation 0.90")

	environmental := r.Relevant(domain.SpecialistEnvironmental, domain.DefaultSharedContext())
	assert.Equal(t, []string{"nasa_firms"}, environmental)
}

func TestRelevantExcludesUnconstructedAdapters(t *testing.T) {
	r := registryOf("open_meteo")

	names := r.Relevant(domain.SpecialistClimate, domain.DefaultSharedContext())
	assert.Equal(t, []string{"open_meteo"}, names,
		"openweather entries are in the catalog but have no adapter here")
}

func TestRelevantIncludesGeographicHazardMatches(t *testing.T) {
	r := registryOf("noaa_tides")

	shared := domain.DefaultSharedContext()
	shared.RegionTypes = []string{"coastal"}
	shared.HazardRisks = []string{"ocean"}

	// noaa_tides has no climate specialty keyword, but its region matches the
	// coastal context and its specialty matches the hazard.
	names := r.Relevant(domain.SpecialistClimate, shared)
	assert.Equal(t, []string{"noaa_tides"}, names)

	// Without the hazard the geographic match alone is not enough.
	shared.HazardRisks = []string{"drought"}
	assert.Empty(t, r.Relevant(domain.SpecialistClimate, shared))
}

func TestInfosSortedByName(t *testing.T) {
	r := registryOf()
	infos := r.Infos()
	require.Len(t, infos, 15)
	for i := 1; i < len(infos); i++ {
		assert.Less(t, infos[i-1].Name, infos[i].Name)
	}
}

func TestInfoMapReturnsCopy(t *testing.T) {
	r := registryOf()
	m := r.InfoMap()
	require.Contains(t, m, "usgs_earthquake")

	m["usgs_earthquake"] = source.Info{Name: "tampered"}
	assert.Equal(t, "usgs_earthquake", r.InfoMap()["usgs_earthquake"].Name)
}
