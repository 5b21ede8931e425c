package source

import (
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/couchcryptid/landscape-sim-service/internal/domain"
	"github.com/couchcryptid/landscape-sim-service/internal/observability"
)

// Info describes one catalog entry: what a provider covers and how much to
// trust it. Reliability and latency drive rule-based selection ordering.
type Info struct {
	Name        string   `json:"name"`
	Specialty   string   `json:"specialty"`
	Regions     []string `json:"geographic_relevance"`
	DataType    string   `json:"data_type"`
	Reliability float64  `json:"reliability"` // 0.0–1.0
	Latency     string   `json:"latency"`     // "fast", "medium", "slow"
	Description string   `json:"description"`
}

// catalog mirrors the provider registry driving selection. Entries without a
// constructed adapter (missing credentials) are still listed but unselectable.
var catalog = []Info{
	{Name: "openweather_current", Specialty: "current_weather", Regions: []string{"global"}, DataType: "real_time", Reliability: 0.85, Latency: "fast", Description: "Current weather conditions worldwide"},
	{Name: "openweather_forecast", Specialty: "weather_prediction", Regions: []string{"global"}, DataType: "predictive", Reliability: 0.80, Latency: "fast", Description: "5-day weather forecast"},
	{Name: "open_meteo", Specialty: "detailed_weather", Regions: []string{"global"}, DataType: "real_time", Reliability: 0.88, Latency: "fast", Description: "Free weather API with detailed meteorological data"},
	{Name: "usgs_earthquake", Specialty: "seismic_activity", Regions: []string{"global", "seismic_zones"}, DataType: "real_time", Reliability: 0.98, Latency: "fast", Description: "Real-time earthquake data from USGS"},
	{Name: "volcano_discovery", Specialty: "volcanic_activity", Regions: []string{"volcanic_zones", "ring_of_fire"}, DataType: "real_time", Reliability: 0.85, Latency: "medium", Description: "Volcanic activity and eruption data"},
	{Name: "elevation_api", Specialty: "elevation_data", Regions: []string{"global"}, DataType: "static", Reliability: 0.90, Latency: "fast", Description: "Free elevation data for any coordinates"},
	{Name: "nasa_firms", Specialty: "fire_detection", Regions: []string{"global", "fire_prone"}, DataType: "real_time", Reliability: 0.88, Latency: "fast", Description: "NASA fire detection from satellites"},
	{Name: "usgs_water", Specialty: "water_monitoring", Regions: []string{"north_america"}, DataType: "real_time", Reliability: 0.91, Latency: "fast", Description: "Real-time water data for US"},
	{Name: "air_quality_waqi", Specialty: "air_quality", Regions: []string{"global", "urban"}, DataType: "real_time", Reliability: 0.83, Latency: "fast", Description: "Global air quality monitoring"},
	{Name: "noaa_tides", Specialty: "ocean_conditions", Regions: []string{"coastal", "north_america"}, DataType: "real_time", Reliability: 0.92, Latency: "fast", Description: "Tide, water level, and meteorological data"},
	{Name: "marine_weather", Specialty: "marine_conditions", Regions: []string{"coastal", "ocean"}, DataType: "real_time", Reliability: 0.84, Latency: "fast", Description: "Ocean wave height, temperature, currents"},
	{Name: "landsat_api", Specialty: "satellite_imagery", Regions: []string{"global"}, DataType: "historical", Reliability: 0.93, Latency: "medium", Description: "Free Landsat satellite imagery"},
	{Name: "sentinel_hub", Specialty: "satellite_monitoring", Regions: []string{"global"}, DataType: "real_time", Reliability: 0.89, Latency: "medium", Description: "European satellite data (Sentinel missions)"},
	{Name: "severe_weather", Specialty: "extreme_weather", Regions: []string{"north_america"}, DataType: "real_time", Reliability: 0.94, Latency: "fast", Description: "NWS severe weather alerts and warnings"},
	{Name: "global_disaster", Specialty: "natural_disasters", Regions: []string{"global"}, DataType: "real_time", Reliability: 0.87, Latency: "fast", Description: "Global disaster and emergency information"},
}

// specialtyKeywords maps each specialist type to the catalog specialty terms
// it is interested in.
var specialtyKeywords = map[string][]string{
	domain.SpecialistClimate:       {"weather", "climate", "atmospheric"},
	domain.SpecialistGeological:    {"seismic", "volcanic", "elevation", "terrain", "satellite"},
	domain.SpecialistEnvironmental: {"fire", "water", "air", "ocean", "marine", "disaster"},
}

// Options configures registry construction.
type Options struct {
	OpenWeatherKey string
	FIRMSKey       string
	WAQIToken      string
	AdapterTimeout time.Duration
	CacheSize      int
}

// Registry holds the provider catalog and the constructed adapters, wrapped
// in a shared result cache.
type Registry struct {
	infos    map[string]Info
	adapters map[string]Adapter
}

// NewRegistry constructs all adapters the configuration allows and binds them
// to the catalog. Providers without free programmatic endpoints are served by
// static adapters so selection and fan-out treat the whole catalog uniformly.
func NewRegistry(opts Options, logger *slog.Logger, metrics *observability.Metrics) *Registry {
	cache := newResultCache(opts.CacheSize)

	adapters := map[string]Adapter{
		"open_meteo":      NewOpenMeteo(opts.AdapterTimeout, logger, metrics),
		"usgs_earthquake": NewEarthquake(opts.AdapterTimeout, logger, metrics),
		"elevation_api":   NewElevation(opts.AdapterTimeout, logger, metrics),
		"usgs_water":      NewWaterMonitoring(opts.AdapterTimeout, logger, metrics),
		"severe_weather":  NewSevereWeather(opts.AdapterTimeout, logger, metrics),
		"marine_weather":  NewMarineWeather(opts.AdapterTimeout, logger, metrics),
		"air_quality_waqi": NewAirQuality(
			opts.WAQIToken, opts.AdapterTimeout, logger, metrics),

		"volcano_discovery": Static("volcano_discovery", map[string]any{
			"volcano_activity": "low", "nearby_volcanoes": 0, "eruption_risk": "very_low"}),
		"noaa_tides": Static("noaa_tides", map[string]any{
			"coastal_access": true, "sea_level_concern": "monitor"}),
		"landsat_api": Static("landsat_api", map[string]any{
			"imagery_available": true, "last_updated_days_ago": 30}),
		"sentinel_hub": Static("sentinel_hub", map[string]any{
			"satellite_data_count": 5, "cloud_coverage_percent": 10}),
		"global_disaster": Static("global_disaster", map[string]any{
			"disasters_nearby": 0}),
	}

	if opts.OpenWeatherKey != "" {
		adapters["openweather_current"] = NewOpenWeather(opts.OpenWeatherKey, opts.AdapterTimeout, logger, metrics)
		adapters["openweather_forecast"] = NewOpenWeatherForecast(opts.OpenWeatherKey, opts.AdapterTimeout, logger, metrics)
	}
	if opts.FIRMSKey != "" {
		adapters["nasa_firms"] = NewFireDetection(opts.FIRMSKey, opts.AdapterTimeout, logger, metrics)
	}

	infos := make(map[string]Info, len(catalog))
	for _, info := range catalog {
		infos[info.Name] = info
	}

	cached := make(map[string]Adapter, len(adapters))
	for name, a := range adapters {
		cached[name] = newCachedAdapter(a, cache, metrics)
	}

	return &Registry{infos: infos, adapters: cached}
}

// NewRegistryForTesting builds a registry from explicit adapters while
// keeping the full catalog, so selection logic can be exercised without
// network calls or the result cache.
func NewRegistryForTesting(adapters map[string]Adapter) *Registry {
	infos := make(map[string]Info, len(catalog))
	for _, info := range catalog {
		infos[info.Name] = info
	}
	return &Registry{infos: infos, adapters: adapters}
}

// Adapter returns the adapter registered under name, if any.
func (r *Registry) Adapter(name string) (Adapter, bool) {
	a, ok := r.adapters[name]
	return a, ok
}

// InfoMap returns a copy of the catalog keyed by source name.
func (r *Registry) InfoMap() map[string]Info {
	out := make(map[string]Info, len(r.infos))
	for name, info := range r.infos {
		out[name] = info
	}
	return out
}

// Infos returns the catalog sorted by name, for the listing endpoint.
func (r *Registry) Infos() []Info {
	out := make([]Info, 0, len(r.infos))
	for _, info := range r.infos {
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Relevant returns the names of constructed adapters relevant to a specialist
// at a location, ordered by reliability (desc) with fast providers preferred
// on ties. It is a pure function of (specialist, shared context), so repeated
// calls with the same inputs produce the same ordering.
func (r *Registry) Relevant(specialist string, shared domain.SharedContext) []string {
	keywords := specialtyKeywords[specialist]

	regionTypes := lowered(shared.RegionTypes)
	hazards := lowered(shared.HazardRisks)

	var names []string
	for name, info := range r.infos {
		if _, ok := r.adapters[name]; !ok {
			continue
		}

		specialty := strings.ToLower(info.Specialty)

		specialtyMatch := false
		for _, kw := range keywords {
			if strings.Contains(specialty, kw) {
				specialtyMatch = true
				break
			}
		}

		geographicMatch := containsString(info.Regions, "global")
		for _, region := range regionTypes {
			if containsString(info.Regions, region) {
				geographicMatch = true
				break
			}
		}
		hazardMatch := false
		for _, hazard := range hazards {
			if strings.Contains(specialty, hazard) {
				hazardMatch = true
				break
			}
		}

		if specialtyMatch || (geographicMatch && hazardMatch) {
			names = append(names, name)
		}
	}

	sort.Slice(names, func(i, j int) bool {
		a, b := r.infos[names[i]], r.infos[names[j]]
		if a.Reliability != b.Reliability {
			return a.Reliability > b.Reliability
		}
		if fast := a.Latency == "fast"; fast != (b.Latency == "fast") {
			return fast
		}
		return a.Name < b.Name
	})
	return names
}

func lowered(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}

func containsString(haystack []string, needle string) bool {
	for _, s := range haystack {
		if strings.EqualFold(s, needle) {
			return true
		}
	}
	return false
}
