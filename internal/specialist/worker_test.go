package specialist_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/landscape-sim-service/internal/domain"
	"github.com/couchcryptid/landscape-sim-service/internal/observability"
	"github.com/couchcryptid/landscape-sim-service/internal/source"
	"github.com/couchcryptid/landscape-sim-service/internal/specialist"
	"github.com/couchcryptid/landscape-sim-service/internal/synthesis"
)

// --- stubs ---

type fakeAdapter struct {
	name   string
	delay  time.Duration
	fail   bool
	fields map[string]any
}

func (f *fakeAdapter) Name() string { return f.name }

func (f *fakeAdapter) Fetch(ctx context.Context, _, _ float64) source.Result {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return source.Result{Source: f.name, Success: false, Err: ctx.Err().Error()}
		}
	}
	if f.fail {
		return source.Result{Source: f.name, Success: false, Err: "provider unavailable"}
	}
	return source.Result{Source: f.name, Success: true, Fields: f.fields}
}

type stubSynthesizer struct {
	out synthesis.Output
	err error
}

func (s *stubSynthesizer) Synthesize(context.Context, synthesis.Input) (synthesis.Output, error) {
	return s.out, s.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig() specialist.Config {
	return specialist.Config{
		Deadline:        2 * time.Second,
		AdapterTimeout:  time.Second,
		SynthTimeout:    time.Second,
		MinOptionLabels: 3,
		MaxOptionLabels: 6,
	}
}

func climateRegistry(adapters ...source.Adapter) *source.Registry {
	byName := make(map[string]source.Adapter, len(adapters))
	for _, a := range adapters {
		byName[a.Name()] = a
	}
	return source.NewRegistryForTesting(byName)
}

func assignment() domain.SpecialistAssignment {
	return domain.SpecialistAssignment{
		RequestID:  "req_1",
		Specialist: domain.SpecialistClimate,
		Latitude:   37.7749,
		Longitude:  -122.4194,
		Priority:   domain.PriorityComprehensive,
		Shared:     domain.DefaultSharedContext(),
	}
}

// --- tests ---

func TestRunProducesCompleteReport(t *testing.T) {
	registry := climateRegistry(
		&fakeAdapter{name: "open_meteo", fields: map[string]any{"temperature": 18.5}},
		&fakeAdapter{name: "openweather_current", fields: map[string]any{"humidity": 60}},
		&fakeAdapter{name: "severe_weather", fields: map[string]any{"active_alerts": 0}},
	)
	w := specialist.New(domain.SpecialistClimate, registry, nil, nil, testConfig(),
		discardLogger(), observability.NewMetricsForTesting())

	report := w.Run(context.Background(), assignment())

	assert.Equal(t, "req_1", report.RequestID)
	assert.Equal(t, domain.SpecialistClimate, report.Specialist)
	assert.True(t, report.Success)
	assert.Len(t, report.SelectedSources, 3)
	assert.NotEmpty(t, report.Narrative)
	assert.GreaterOrEqual(t, len(report.OptionLabels), 3)
	assert.LessOrEqual(t, len(report.OptionLabels), 6)
	assert.Greater(t, report.Confidence, 0.0)
	assert.LessOrEqual(t, report.Confidence, 1.0)
}

func TestRunFetchesSourcesInParallel(t *testing.T) {
	const delay = 150 * time.Millisecond
	registry := climateRegistry(
		&fakeAdapter{name: "open_meteo", delay: delay},
		&fakeAdapter{name: "openweather_current", delay: delay},
		&fakeAdapter{name: "severe_weather", delay: delay},
	)
	w := specialist.New(domain.SpecialistClimate, registry, nil, nil, testConfig(),
		discardLogger(), observability.NewMetricsForTesting())

	start := time.Now()
	report := w.Run(context.Background(), assignment())
	elapsed := time.Since(start)

	assert.True(t, report.Success)
	assert.Less(t, elapsed, 3*delay, "three %v fetches must overlap, not run serially", delay)
}

func TestRunDeadlineYieldsPartialGathering(t *testing.T) {
	cfg := testConfig()
	cfg.Deadline = 300 * time.Millisecond
	cfg.AdapterTimeout = 250 * time.Millisecond

	registry := climateRegistry(
		&fakeAdapter{name: "open_meteo", fields: map[string]any{"temperature": 12.0}},
		&fakeAdapter{name: "openweather_current", delay: 10 * time.Second},
		&fakeAdapter{name: "severe_weather", fields: map[string]any{"active_alerts": 1}},
	)
	w := specialist.New(domain.SpecialistClimate, registry, nil, nil, cfg,
		discardLogger(), observability.NewMetricsForTesting())

	start := time.Now()
	report := w.Run(context.Background(), assignment())

	assert.Less(t, time.Since(start), 2*time.Second, "a hung provider must not hold the worker")
	assert.True(t, report.Success, "fast sources still carry the report")
	assert.NotEmpty(t, report.OptionLabels)
}

func TestRunAllSourcesFailingDegradesReport(t *testing.T) {
	registry := climateRegistry(
		&fakeAdapter{name: "open_meteo", fail: true},
		&fakeAdapter{name: "openweather_current", fail: true},
		&fakeAdapter{name: "severe_weather", fail: true},
	)
	w := specialist.New(domain.SpecialistClimate, registry, nil, nil, testConfig(),
		discardLogger(), observability.NewMetricsForTesting())

	report := w.Run(context.Background(), assignment())

	assert.False(t, report.Success)
	assert.GreaterOrEqual(t, len(report.OptionLabels), 3, "fallback labels keep the report usable")
	assert.NotEmpty(t, report.Narrative)
	assert.Less(t, report.Confidence, 0.5)
}

func TestRunSynthesizerErrorFallsBackToRuleBased(t *testing.T) {
	registry := climateRegistry(
		&fakeAdapter{name: "open_meteo", fields: map[string]any{"temperature": 18.5}},
		&fakeAdapter{name: "openweather_current", fields: map[string]any{"humidity": 60}},
		&fakeAdapter{name: "severe_weather", fields: map[string]any{"active_alerts": 0}},
	)
	synth := &stubSynthesizer{err: errors.New("model unavailable")}
	w := specialist.New(domain.SpecialistClimate, registry, nil, synth, testConfig(),
		discardLogger(), observability.NewMetricsForTesting())

	report := w.Run(context.Background(), assignment())

	assert.True(t, report.Success, "healthy sources outweigh a synthesis failure")
	assert.GreaterOrEqual(t, len(report.OptionLabels), 3)
}

func TestRunSanitizesSynthesizerOutput(t *testing.T) {
	registry := climateRegistry(
		&fakeAdapter{name: "open_meteo", fields: map[string]any{"temperature": 18.5}},
		&fakeAdapter{name: "openweather_current", fields: map[string]any{"humidity": 60}},
		&fakeAdapter{name: "severe_weather", fields: map[string]any{"active_alerts": 0}},
	)
	synth := &stubSynthesizer{out: synthesis.Output{
		Analysis:     "heavy precipitation expected",
		OptionLabels: []string{"Flash Flood"},
		Confidence:   1.7,
	}}
	w := specialist.New(domain.SpecialistClimate, registry, nil, synth, testConfig(),
		discardLogger(), observability.NewMetricsForTesting())

	report := w.Run(context.Background(), assignment())

	require.True(t, report.Success)
	assert.Equal(t, "heavy precipitation expected", report.Narrative)
	assert.GreaterOrEqual(t, len(report.OptionLabels), 3, "short label lists pad from fallbacks")
	assert.Equal(t, "Flash Flood", report.OptionLabels[0])
	assert.Equal(t, 0.5, report.Confidence, "out-of-range confidence clamps to the midpoint")
}
