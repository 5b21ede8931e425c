// Package specialist implements the per-request analysis workers. Each worker
// covers one specialty (climate, geological, environmental), consults a
// bounded selection of external data sources in parallel, and synthesizes the
// gathered data into exactly one report. A worker never fails an assignment:
// errors degrade the report, they do not suppress it.
package specialist

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/couchcryptid/landscape-sim-service/internal/domain"
	"github.com/couchcryptid/landscape-sim-service/internal/observability"
	"github.com/couchcryptid/landscape-sim-service/internal/source"
	"github.com/couchcryptid/landscape-sim-service/internal/synthesis"
)

// Config bounds a worker's time and label budgets.
type Config struct {
	// Deadline caps the whole assignment: source gathering plus synthesis.
	Deadline time.Duration
	// AdapterTimeout caps each individual source call so one slow provider
	// cannot consume the whole deadline.
	AdapterTimeout time.Duration
	// SynthTimeout caps the synthesis call.
	SynthTimeout time.Duration

	MinOptionLabels int
	MaxOptionLabels int
}

// Worker runs assignments for a single specialty.
type Worker struct {
	specialty string
	registry  *source.Registry
	selector  *selector
	synth     synthesis.Synthesizer
	fallback  synthesis.Synthesizer
	cfg       Config
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// New creates a worker. planner and synth may be nil; the worker then runs
// fully rule-based.
func New(specialty string, registry *source.Registry, planner synthesis.Planner, synth synthesis.Synthesizer,
	cfg Config, logger *slog.Logger, metrics *observability.Metrics) *Worker {
	logger = logger.With("specialist", specialty)
	return &Worker{
		specialty: specialty,
		registry:  registry,
		selector:  &selector{registry: registry, planner: planner, logger: logger, metrics: metrics},
		synth:     synth,
		fallback:  synthesis.NewRuleBased(),
		cfg:       cfg,
		logger:    logger,
		metrics:   metrics,
	}
}

// Specialty returns the specialist type this worker reports as.
func (w *Worker) Specialty() string {
	return w.specialty
}

// Run executes one assignment and always returns a report. Source failures
// and synthesis failures lower confidence and flip Success, but the
// coordinator always hears back.
func (w *Worker) Run(ctx context.Context, a domain.SpecialistAssignment) domain.SpecialistReport {
	ctx, cancel := context.WithTimeout(ctx, w.cfg.Deadline)
	defer cancel()

	start := time.Now()
	selected := w.selector.Select(ctx, w.specialty, a.Shared)
	results := w.gather(ctx, selected, a.Latitude, a.Longitude)

	succeeded := 0
	for _, r := range results {
		if r.Success {
			succeeded++
		}
	}

	out, synthOK := w.synthesize(ctx, a, results)

	w.logger.Info("assignment finished",
		"request_id", a.RequestID,
		"sources_selected", len(selected),
		"sources_succeeded", succeeded,
		"synthesis_ok", synthOK,
		"elapsed", time.Since(start))

	return domain.SpecialistReport{
		RequestID:       a.RequestID,
		Specialist:      w.specialty,
		Success:         succeeded > 0 || synthOK,
		SelectedSources: selected,
		Narrative:       out.Analysis,
		Confidence:      out.Confidence,
		OptionLabels:    out.OptionLabels,
		VisualEffects:   out.VisualEffects,
	}
}

// gather fans the source calls out in parallel and collects whatever arrives
// before ctx expires. Each call gets its own shorter timeout; the result
// channel is buffered so abandoned calls never leak a goroutine.
func (w *Worker) gather(ctx context.Context, names []string, lat, lon float64) []source.Result {
	resultCh := make(chan source.Result, len(names))
	launched := 0
	for _, name := range names {
		adapter, ok := w.registry.Adapter(name)
		if !ok {
			w.logger.Warn("selected source has no adapter", "source", name)
			continue
		}
		launched++
		go func(a source.Adapter) {
			callCtx, cancel := context.WithTimeout(ctx, w.cfg.AdapterTimeout)
			defer cancel()
			resultCh <- a.Fetch(callCtx, lat, lon)
		}(adapter)
	}

	results := make([]source.Result, 0, launched)
	for i := 0; i < launched; i++ {
		select {
		case r := <-resultCh:
			results = append(results, r)
		case <-ctx.Done():
			w.logger.Warn("deadline reached while gathering",
				"received", len(results), "launched", launched)
			return sortResults(results)
		}
	}
	return sortResults(results)
}

// sortResults orders by source name so reports are stable regardless of
// arrival order.
func sortResults(results []source.Result) []source.Result {
	sort.Slice(results, func(i, j int) bool { return results[i].Source < results[j].Source })
	return results
}

// synthesize turns the gathered results into a narrative judgment, degrading
// to the deterministic rule-based synthesizer when the configured backend is
// absent or errors out. The second return reports whether a configured
// backend produced the output.
func (w *Worker) synthesize(ctx context.Context, a domain.SpecialistAssignment, results []source.Result) (synthesis.Output, bool) {
	in := synthesis.Input{
		Specialist: w.specialty,
		Latitude:   a.Latitude,
		Longitude:  a.Longitude,
		Shared:     a.Shared,
		Results:    results,
	}

	if w.synth != nil {
		sctx, cancel := context.WithTimeout(ctx, w.cfg.SynthTimeout)
		out, err := w.synth.Synthesize(sctx, in)
		cancel()
		if err == nil {
			w.metrics.SynthRequests.WithLabelValues("synthesize", "success").Inc()
			return synthesis.Sanitize(out, w.specialty, w.cfg.MinOptionLabels, w.cfg.MaxOptionLabels), true
		}
		w.logger.Warn("synthesis fell back to rule-based output",
			"request_id", a.RequestID, "error", err)
	}
	w.metrics.SynthRequests.WithLabelValues("synthesize", "fallback").Inc()

	out, err := w.fallback.Synthesize(ctx, in)
	if err != nil {
		// The rule-based synthesizer cannot fail; guard anyway.
		out = synthesis.Output{
			Analysis:   fmt.Sprintf("No %s assessment available for this location.", w.specialty),
			Confidence: 0.1,
		}
	}
	return synthesis.Sanitize(out, w.specialty, w.cfg.MinOptionLabels, w.cfg.MaxOptionLabels), false
}
