// Package synthesis defines the planning and synthesis collaborators used by
// the coordinator and the specialist workers, together with the validation
// that keeps their output inside the service's contract.
//
// Backends live in subpackages (openai, anthropic); RuleBased is the
// deterministic fallback used when no provider is configured or a provider
// call fails.
package synthesis

import (
	"context"
	"strings"

	"github.com/couchcryptid/landscape-sim-service/internal/domain"
	"github.com/couchcryptid/landscape-sim-service/internal/source"
)

// Input carries everything a Synthesizer may reason from.
type Input struct {
	Specialist string
	Latitude   float64
	Longitude  float64
	Shared     domain.SharedContext
	Results    []source.Result
}

// Output is a synthesized judgment. Callers pass it through Sanitize before
// trusting label counts or confidence bounds.
type Output struct {
	Analysis      string   `json:"analysis"`
	OptionLabels  []string `json:"option_labels"`
	VisualEffects []string `json:"visual_effects"`
	Confidence    float64  `json:"confidence"`
}

// Synthesizer turns gathered data into a narrative judgment.
type Synthesizer interface {
	Synthesize(ctx context.Context, in Input) (Output, error)
}

// Planner performs the one-time per-request location analysis and the
// optional refinement of a specialist's source selection.
type Planner interface {
	// AnalyzeLocation computes the shared geographic and simulation context
	// fanned out to every specialist of a request.
	AnalyzeLocation(ctx context.Context, lat, lon float64, priority string) (domain.SharedContext, error)

	// SelectSources picks a subset of candidates for a specialist. Candidates
	// arrive pre-filtered and pre-ordered; implementations may only reorder or
	// trim, never invent names.
	SelectSources(ctx context.Context, specialist string, shared domain.SharedContext, candidates []string) ([]string, error)
}

// Sanitize enforces the output contract: non-empty labels within [min,max],
// confidence clamped to [0,1], and a usable analysis string. Empty or
// malformed fields degrade to the specialist's deterministic fallbacks.
func Sanitize(out Output, specialist string, min, max int) Output {
	out.Analysis = strings.TrimSpace(out.Analysis)
	if out.Analysis == "" {
		out.Analysis = "No synthesis available; falling back to defaults for " + specialist + " assessment."
	}

	labels := make([]string, 0, len(out.OptionLabels))
	seen := make(map[string]struct{})
	for _, l := range out.OptionLabels {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		key := strings.ToLower(l)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		labels = append(labels, l)
	}
	for _, l := range domain.FallbackOptionLabels(specialist) {
		if len(labels) >= min {
			break
		}
		key := strings.ToLower(l)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		labels = append(labels, l)
	}
	if len(labels) > max {
		labels = labels[:max]
	}
	out.OptionLabels = labels

	if out.Confidence < 0 || out.Confidence > 1 {
		out.Confidence = 0.5
	}
	return out
}

// ValidateContext fills gaps in a planner-produced context so downstream code
// never sees empty specialist sets or missing analysis.
func ValidateContext(sc domain.SharedContext) domain.SharedContext {
	def := domain.DefaultSharedContext()

	needed := sc.SpecialistsNeeded[:0]
	known := map[string]struct{}{}
	for _, s := range domain.AllSpecialists() {
		known[s] = struct{}{}
	}
	for _, s := range sc.SpecialistsNeeded {
		s = strings.ToLower(strings.TrimSpace(s))
		// Tolerate the long-form names some planners emit.
		s = strings.TrimSuffix(s, "_specialist")
		if _, ok := known[s]; ok {
			needed = append(needed, s)
		}
	}
	if len(needed) == 0 {
		needed = def.SpecialistsNeeded
	}
	sc.SpecialistsNeeded = needed

	if len(sc.RegionTypes) == 0 {
		sc.RegionTypes = def.RegionTypes
	}
	if sc.ClimateZone == "" {
		sc.ClimateZone = def.ClimateZone
	}
	if len(sc.HazardRisks) == 0 {
		sc.HazardRisks = def.HazardRisks
	}
	if sc.SimulationType == "" {
		sc.SimulationType = def.SimulationType
	}
	if sc.Analysis == "" {
		sc.Analysis = def.Analysis
	}
	if sc.Timeline == "" {
		sc.Timeline = def.Timeline
	}
	return sc
}
