package synthesis_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/landscape-sim-service/internal/domain"
	"github.com/couchcryptid/landscape-sim-service/internal/source"
	"github.com/couchcryptid/landscape-sim-service/internal/synthesis"
)

func TestSanitizePadsLabelsFromFallbacks(t *testing.T) {
	out := synthesis.Sanitize(synthesis.Output{
		Analysis:     "quake swarm detected",
		OptionLabels: []string{"Aftershock"},
		Confidence:   0.7,
	}, domain.SpecialistGeological, 3, 6)

	assert.GreaterOrEqual(t, len(out.OptionLabels), 3)
	assert.Equal(t, "Aftershock", out.OptionLabels[0])
	assert.Equal(t, 0.7, out.Confidence)
}

func TestSanitizeDeduplicatesCaseInsensitively(t *testing.T) {
	out := synthesis.Sanitize(synthesis.Output{
		Analysis:     "x",
		OptionLabels: []string{"Wildfire", "wildfire", " WILDFIRE ", "Flooding", "Drought"},
		Confidence:   0.5,
	}, domain.SpecialistEnvironmental, 3, 6)

	assert.Equal(t, []string{"Wildfire", "Flooding", "Drought"}, out.OptionLabels)
}

func TestSanitizeTruncatesToMaximum(t *testing.T) {
	labels := []string{"A", "B", "C", "D", "E", "F", "G", "H"}
	out := synthesis.Sanitize(synthesis.Output{Analysis: "x", OptionLabels: labels, Confidence: 0.5},
		domain.SpecialistClimate, 3, 6)
	assert.Len(t, out.OptionLabels, 6)
}

func TestSanitizeClampsConfidenceAndFillsAnalysis(t *testing.T) {
	out := synthesis.Sanitize(synthesis.Output{Confidence: -2}, domain.SpecialistClimate, 3, 6)
	assert.Equal(t, 0.5, out.Confidence)
	assert.NotEmpty(t, out.Analysis)
	assert.GreaterOrEqual(t, len(out.OptionLabels), 3)
}

func TestValidateContextNormalizesSpecialistNames(t *testing.T) {
	sc := synthesis.ValidateContext(domain.SharedContext{
		SpecialistsNeeded: []string{"Climate_specialist", " GEOLOGICAL ", "oceanography"},
	})
	assert.Equal(t, []string{"climate", "geological"}, sc.SpecialistsNeeded)
}

func TestValidateContextFillsEmptyFields(t *testing.T) {
	sc := synthesis.ValidateContext(domain.SharedContext{})
	def := domain.DefaultSharedContext()

	assert.Equal(t, def.SpecialistsNeeded, sc.SpecialistsNeeded)
	assert.Equal(t, def.ClimateZone, sc.ClimateZone)
	assert.Equal(t, def.SimulationType, sc.SimulationType)
	assert.NotEmpty(t, sc.Analysis)
	assert.NotEmpty(t, sc.Timeline)
}

func TestRuleBasedAnalyzeLocationByLatitudeBand(t *testing.T) {
	rb := synthesis.NewRuleBased()

	cases := []struct {
		name string
		lat  float64
		zone string
	}{
		{"polar", 70.0, "polar"},
		{"temperate", 45.0, "temperate"},
		{"subtropical", 28.0, "subtropical"},
		{"tropical", 5.0, "tropical"},
		{"southern hemisphere", -40.0, "temperate"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sc, err := rb.AnalyzeLocation(context.Background(), tc.lat, 0, domain.PriorityComprehensive)
			require.NoError(t, err)
			assert.Equal(t, tc.zone, sc.ClimateZone)
			assert.NotEmpty(t, sc.HazardRisks)
			assert.NotEmpty(t, sc.Analysis)
		})
	}
}

func TestRuleBasedSynthesizeScalesConfidenceWithSources(t *testing.T) {
	rb := synthesis.NewRuleBased()
	in := synthesis.Input{
		Specialist: domain.SpecialistClimate,
		Latitude:   40,
		Longitude:  -100,
		Shared:     domain.DefaultSharedContext(),
	}

	out, err := rb.Synthesize(context.Background(), in)
	require.NoError(t, err)
	assert.InDelta(t, 0.3, out.Confidence, 1e-9, "no sources means baseline confidence")

	for i := 0; i < 3; i++ {
		in.Results = append(in.Results, source.Result{Source: "open_meteo", Success: true})
	}
	out, err = rb.Synthesize(context.Background(), in)
	require.NoError(t, err)
	assert.InDelta(t, 0.6, out.Confidence, 1e-9)
	assert.NotEmpty(t, out.OptionLabels)
	assert.NotEmpty(t, out.Analysis)
}

func TestRuleBasedIsDeterministic(t *testing.T) {
	rb := synthesis.NewRuleBased()
	in := synthesis.Input{
		Specialist: domain.SpecialistGeological,
		Latitude:   35.68,
		Longitude:  139.65,
		Shared:     domain.DefaultSharedContext(),
		Results:    []source.Result{{Source: "usgs_earthquake", Success: true}},
	}

	first, err := rb.Synthesize(context.Background(), in)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := rb.Synthesize(context.Background(), in)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}
