package synthesis

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/couchcryptid/landscape-sim-service/internal/domain"
)

// RuleBased is a deterministic Planner and Synthesizer used when no model
// provider is configured, and as the degradation target when a provider
// fails. Same inputs always produce the same outputs.
type RuleBased struct{}

// NewRuleBased creates the deterministic planner/synthesizer.
func NewRuleBased() *RuleBased { return &RuleBased{} }

// AnalyzeLocation derives a coarse shared context from latitude bands. It
// cannot fail.
func (r *RuleBased) AnalyzeLocation(_ context.Context, lat, lon float64, _ string) (domain.SharedContext, error) {
	sc := domain.DefaultSharedContext()

	absLat := math.Abs(lat)
	switch {
	case absLat >= 66:
		sc.ClimateZone = "polar"
		sc.Ecosystem = "tundra"
		sc.HazardRisks = []string{"extreme_cold", "ice_melt"}
		sc.SimulationType = "permafrost_change"
	case absLat >= 35:
		sc.ClimateZone = "temperate"
		sc.Ecosystem = "temperate_forest"
		sc.HazardRisks = []string{"storm", "flooding", "wildfire"}
		sc.SimulationType = "seasonal_weathering"
	case absLat >= 23:
		sc.ClimateZone = "subtropical"
		sc.Ecosystem = "grassland"
		sc.HazardRisks = []string{"drought", "wildfire", "storm"}
		sc.SimulationType = "arid_erosion"
	default:
		sc.ClimateZone = "tropical"
		sc.Ecosystem = "rainforest"
		sc.HazardRisks = []string{"hurricane", "flooding"}
		sc.SimulationType = "tropical_storm_dynamics"
	}

	sc.Analysis = fmt.Sprintf("Rule-based assessment for %.2f, %.2f: %s zone with %s hazards.",
		lat, lon, sc.ClimateZone, strings.Join(sc.HazardRisks, ", "))
	return sc, nil
}

// SelectSources keeps the top candidates as ordered by the registry filter.
func (r *RuleBased) SelectSources(_ context.Context, _ string, _ domain.SharedContext, candidates []string) ([]string, error) {
	n := len(candidates)
	if n > 4 {
		n = 4
	}
	return candidates[:n], nil
}

// Synthesize builds a deterministic judgment from whatever results arrived.
func (r *RuleBased) Synthesize(_ context.Context, in Input) (Output, error) {
	succeeded := 0
	for _, res := range in.Results {
		if res.Success {
			succeeded++
		}
	}

	labels := domain.FallbackOptionLabels(in.Specialist)
	for _, hazard := range in.Shared.HazardRisks {
		labels = append(labels, titleCase(hazard))
	}

	confidence := 0.3 + 0.1*float64(succeeded)
	if confidence > 0.8 {
		confidence = 0.8
	}

	analysis := fmt.Sprintf("%s assessment for %.4f, %.4f (%s): %d of %d sources reported; expected change pattern %s over a %s timeline.",
		titleCase(in.Specialist), in.Latitude, in.Longitude, in.Shared.ClimateZone,
		succeeded, len(in.Results), in.Shared.SimulationType, in.Shared.Timeline)

	return Output{
		Analysis:      analysis,
		OptionLabels:  labels,
		VisualEffects: []string{"terrain_shift", "vegetation_change"},
		Confidence:    confidence,
	}, nil
}

func titleCase(s string) string {
	parts := strings.Split(strings.ReplaceAll(s, "_", " "), " ")
	for i, p := range parts {
		if p != "" {
			parts[i] = strings.ToUpper(p[:1]) + p[1:]
		}
	}
	return strings.Join(parts, " ")
}
