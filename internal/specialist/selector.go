package specialist

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/landscape-sim-service/internal/domain"
	"github.com/couchcryptid/landscape-sim-service/internal/observability"
	"github.com/couchcryptid/landscape-sim-service/internal/source"
	"github.com/couchcryptid/landscape-sim-service/internal/synthesis"
)

// Selection bounds. Fewer than minSources gives too thin a picture to
// synthesize from; more than maxSources blows the per-request latency budget.
const (
	minSources = 3
	maxSources = 5
)

// defaultSources is the per-specialist selection of last resort, used when the
// rule-based relevance filter comes back empty for an unusual shared context.
var defaultSources = map[string][]string{
	domain.SpecialistClimate:       {"open_meteo", "openweather_current", "severe_weather"},
	domain.SpecialistGeological:    {"usgs_earthquake", "elevation_api", "volcano_discovery"},
	domain.SpecialistEnvironmental: {"nasa_firms", "usgs_water", "air_quality_waqi"},
}

// selector picks the data sources a specialist consults for one assignment.
// The candidate list is a deterministic function of (specialist, shared
// context); the optional planner may reorder or trim it but never extend it.
type selector struct {
	registry *source.Registry
	planner  synthesis.Planner
	logger   *slog.Logger
	metrics  *observability.Metrics
}

func (s *selector) Select(ctx context.Context, specialist string, shared domain.SharedContext) []string {
	candidates := s.registry.Relevant(specialist, shared)
	if len(candidates) == 0 {
		candidates = s.known(defaultSources[specialist])
	}
	if len(candidates) == 0 {
		return nil
	}

	selected := s.refine(ctx, specialist, shared, candidates)
	return bound(selected, candidates)
}

// refine asks the planner to narrow the candidate list, falling back to the
// candidates as ordered when planning is unavailable or misbehaves.
func (s *selector) refine(ctx context.Context, specialist string, shared domain.SharedContext, candidates []string) []string {
	if s.planner == nil {
		return candidates
	}
	selected, err := s.planner.SelectSources(ctx, specialist, shared, candidates)
	if err != nil || len(selected) == 0 {
		s.logger.Warn("source selection fell back to relevance order",
			"specialist", specialist, "error", err)
		s.metrics.SynthRequests.WithLabelValues("select", "fallback").Inc()
		return candidates
	}
	s.metrics.SynthRequests.WithLabelValues("select", "success").Inc()
	return selected
}

// known filters names down to adapters the registry actually has, preserving
// order. Keyless deployments register fewer adapters than the catalog lists.
func (s *selector) known(names []string) []string {
	out := names[:0:0]
	for _, n := range names {
		if _, ok := s.registry.Adapter(n); ok {
			out = append(out, n)
		}
	}
	return out
}

// bound trims the selection to maxSources and pads from the remaining
// candidates up to minSources.
func bound(selected, candidates []string) []string {
	if len(selected) > maxSources {
		selected = selected[:maxSources]
	}
	if len(selected) >= minSources {
		return selected
	}
	have := make(map[string]struct{}, len(selected))
	for _, n := range selected {
		have[n] = struct{}{}
	}
	for _, n := range candidates {
		if len(selected) >= minSources {
			break
		}
		if _, ok := have[n]; ok {
			continue
		}
		have[n] = struct{}{}
		selected = append(selected, n)
	}
	return selected
}
