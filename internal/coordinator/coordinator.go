// Package coordinator owns the fan-out/fan-in lifecycle of a simulation
// request: location analysis, specialist dispatch, report collection, and
// exactly-once finalization into the result store.
package coordinator

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/couchcryptid/landscape-sim-service/internal/domain"
	"github.com/couchcryptid/landscape-sim-service/internal/ledger"
	"github.com/couchcryptid/landscape-sim-service/internal/observability"
	"github.com/couchcryptid/landscape-sim-service/internal/store"
	"github.com/couchcryptid/landscape-sim-service/internal/synthesis"
	"github.com/jonboulle/clockwork"
)

// Specialist is one dispatchable worker. Run must always return a report.
type Specialist interface {
	Specialty() string
	Run(ctx context.Context, a domain.SpecialistAssignment) domain.SpecialistReport
}

// Publisher emits finalized reports to a downstream system. Optional.
type Publisher interface {
	Publish(ctx context.Context, report domain.FinalReport) error
}

// Config bounds the coordinator's time and label budgets.
type Config struct {
	// RequestTimeout is the hard ceiling after which a request is finalized
	// with whatever reports have arrived.
	RequestTimeout time.Duration
	// PlanTimeout caps the up-front location analysis call.
	PlanTimeout time.Duration
	// PublishTimeout caps the downstream publish of a final report.
	PublishTimeout time.Duration

	MinOptionLabels int
	MaxOptionLabels int
}

// Coordinator dispatches requests and aggregates specialist reports.
type Coordinator struct {
	cfg     Config
	ledger  *ledger.Ledger
	store   *store.Store
	planner synthesis.Planner
	workers map[string]Specialist
	pub     Publisher
	clock   clockwork.Clock
	logger  *slog.Logger
	metrics *observability.Metrics
}

// New creates a coordinator. pub may be nil when downstream publishing is
// disabled; planner may be nil, in which case every request uses the default
// shared context and full specialist set.
func New(cfg Config, ld *ledger.Ledger, st *store.Store, planner synthesis.Planner,
	workers []Specialist, pub Publisher, clock clockwork.Clock,
	logger *slog.Logger, metrics *observability.Metrics) (*Coordinator, error) {
	byType := make(map[string]Specialist, len(workers))
	for _, w := range workers {
		if _, ok := byType[w.Specialty()]; ok {
			return nil, fmt.Errorf("duplicate specialist registered: %s", w.Specialty())
		}
		byType[w.Specialty()] = w
	}
	if len(byType) == 0 {
		return nil, fmt.Errorf("no specialists registered")
	}
	return &Coordinator{
		cfg:     cfg,
		ledger:  ld,
		store:   st,
		planner: planner,
		workers: byType,
		pub:     pub,
		clock:   clock,
		logger:  logger,
		metrics: metrics,
	}, nil
}

// Submit accepts a request, dispatches its specialists, and returns the
// request id immediately. The work continues after the caller's context ends;
// only validation errors are returned.
func (c *Coordinator) Submit(ctx context.Context, lat, lon float64, priority string) (string, error) {
	if !domain.ValidCoordinates(lat, lon) {
		return "", fmt.Errorf("coordinates out of range: %s", domain.FormatLocation(lat, lon))
	}
	priority = domain.NormalizePriority(priority)

	req := domain.Request{
		ID:          domain.NewRequestID(c.clock),
		Latitude:    lat,
		Longitude:   lon,
		Priority:    priority,
		SubmittedAt: c.clock.Now(),
	}

	shared := c.plan(ctx, req)
	expected := c.expectedSpecialists(shared, priority)

	if err := c.ledger.Open(req, expected, shared); err != nil {
		return "", fmt.Errorf("opening ledger entry: %w", err)
	}
	c.store.MarkActive(req.ID)
	c.metrics.RequestsSubmitted.Inc()
	c.metrics.ActiveRequests.Inc()

	c.logger.Info("request accepted",
		"request_id", req.ID,
		"location", domain.FormatLocation(lat, lon),
		"priority", priority,
		"specialists", expected)

	// Dispatched work outlives the submission request; detach from the
	// caller's cancellation but keep its values.
	workCtx := context.WithoutCancel(ctx)
	for _, specialty := range expected {
		worker := c.workers[specialty]
		assignment := domain.SpecialistAssignment{
			RequestID:  req.ID,
			Specialist: specialty,
			Latitude:   lat,
			Longitude:  lon,
			Priority:   priority,
			Shared:     shared,
		}
		go func() {
			c.OnReport(workCtx, worker.Run(workCtx, assignment))
		}()
	}

	go c.watchTimeout(workCtx, req.ID)

	return req.ID, nil
}

// OnReport records a specialist report and finalizes the request when this
// report completes the expected set. Reports for already-finalized requests
// are counted and dropped.
func (c *Coordinator) OnReport(ctx context.Context, report domain.SpecialistReport) {
	entry, recorded := c.ledger.Record(report)
	if !recorded {
		c.metrics.ReportsLate.Inc()
		c.logger.Warn("late specialist report dropped",
			"request_id", report.RequestID, "specialist", report.Specialist)
		return
	}
	c.metrics.ReportsReceived.WithLabelValues(report.Specialist).Inc()
	c.logger.Info("specialist report recorded",
		"request_id", report.RequestID,
		"specialist", report.Specialist,
		"success", report.Success,
		"confidence", report.Confidence)

	if entry != nil {
		c.finalize(ctx, entry, "complete")
	}
}

// CheckReadiness reports whether the coordinator can serve requests.
func (c *Coordinator) CheckReadiness(_ context.Context) error {
	if len(c.workers) == 0 {
		return fmt.Errorf("no specialists registered")
	}
	return nil
}

// plan runs the one-time location analysis, degrading to the default shared
// context when no planner is configured or the call fails.
func (c *Coordinator) plan(ctx context.Context, req domain.Request) domain.SharedContext {
	if c.planner == nil {
		return domain.DefaultSharedContext()
	}
	pctx, cancel := context.WithTimeout(ctx, c.cfg.PlanTimeout)
	defer cancel()

	shared, err := c.planner.AnalyzeLocation(pctx, req.Latitude, req.Longitude, req.Priority)
	if err != nil {
		c.logger.Warn("location analysis fell back to defaults",
			"request_id", req.ID, "error", err)
		c.metrics.SynthRequests.WithLabelValues("plan", "fallback").Inc()
		return domain.DefaultSharedContext()
	}
	c.metrics.SynthRequests.WithLabelValues("plan", "success").Inc()
	return synthesis.ValidateContext(shared)
}

// expectedSpecialists intersects the planner's requested specialists with the
// registered workers. Urgent requests trim to the first two requested types
// to bound latency; an empty intersection falls back to all registered
// workers so no request can be expected of nobody.
func (c *Coordinator) expectedSpecialists(shared domain.SharedContext, priority string) []string {
	requested := shared.SpecialistsNeeded
	if priority == domain.PriorityUrgent && len(requested) > 2 {
		requested = requested[:2]
	}

	expected := make([]string, 0, len(requested))
	for _, s := range requested {
		if _, ok := c.workers[s]; ok {
			expected = append(expected, s)
		}
	}
	if len(expected) == 0 {
		for s := range c.workers {
			expected = append(expected, s)
		}
		sort.Strings(expected)
	}
	return expected
}

// watchTimeout force-finalizes the request with partial results when the
// overall deadline passes first. Close and Record race on the same lock, so
// exactly one path ever obtains the entry.
func (c *Coordinator) watchTimeout(ctx context.Context, requestID string) {
	select {
	case <-ctx.Done():
	case <-c.clock.After(c.cfg.RequestTimeout):
		if entry, ok := c.ledger.Close(requestID); ok {
			c.logger.Warn("request timed out, finalizing with partial results",
				"request_id", requestID,
				"received", len(entry.Received),
				"expected", len(entry.Expected))
			c.finalize(ctx, entry, "timeout")
		}
	}
}

// finalize aggregates the entry's reports into the final report and stores
// it. Callers only reach here holding an entry removed from the ledger, so
// this runs at most once per request.
func (c *Coordinator) finalize(ctx context.Context, entry *ledger.Entry, outcome string) {
	report := c.aggregate(entry, outcome == "timeout")

	stored := c.store.Complete(entry.RequestID, report)
	if !stored {
		// Ledger removal should make this unreachable; keep the alarm loud.
		c.logger.Error("final report already stored", "request_id", entry.RequestID)
		return
	}

	c.metrics.ActiveRequests.Dec()
	c.metrics.RequestsFinalized.WithLabelValues(outcome).Inc()
	c.metrics.RequestDuration.Observe(report.Elapsed.Seconds())

	c.logger.Info("request finalized",
		"request_id", entry.RequestID,
		"outcome", outcome,
		"specialists_reported", len(entry.Received),
		"option_labels", len(report.OptionLabels),
		"confidence", report.Confidence,
		"elapsed", report.Elapsed)

	c.publish(ctx, report)
}

// aggregate builds the final report from whatever reports the entry holds.
func (c *Coordinator) aggregate(entry *ledger.Entry, timedOut bool) domain.FinalReport {
	specialists := make([]string, 0, len(entry.Received))
	for s := range entry.Received {
		specialists = append(specialists, s)
	}
	sort.Strings(specialists)

	var (
		narratives []string
		scenarios  []domain.Scenario
		labelLists [][]string
		confSum    float64
	)
	for _, s := range specialists {
		r := entry.Received[s]
		if r.Narrative != "" {
			narratives = append(narratives, r.Narrative)
		}
		labelLists = append(labelLists, r.OptionLabels)
		confSum += r.Confidence
		for _, label := range r.OptionLabels {
			scenarios = append(scenarios, domain.Scenario{
				Label:         label,
				Specialist:    s,
				Description:   r.Narrative,
				Confidence:    r.Confidence,
				Sources:       r.SelectedSources,
				VisualEffects: r.VisualEffects,
			})
		}
	}

	confidence := 0.0
	if len(specialists) > 0 {
		confidence = confSum / float64(len(specialists))
	}

	return domain.FinalReport{
		RequestID:    entry.RequestID,
		Location:     domain.FormatLocation(entry.Request.Latitude, entry.Request.Longitude),
		OptionLabels: domain.MergeOptionLabels(labelLists, c.cfg.MinOptionLabels, c.cfg.MaxOptionLabels, domain.DefaultOptionLabels),
		Narratives:   narratives,
		Scenarios:    scenarios,
		Summary:      c.summarize(entry, specialists, timedOut),
		Confidence:   confidence,
		Elapsed:      c.clock.Since(entry.StartedAt),
		Partial:      timedOut || len(entry.Received) < len(entry.Expected),
	}
}

// summarize composes the shared analysis with a completion note.
func (c *Coordinator) summarize(entry *ledger.Entry, specialists []string, timedOut bool) string {
	var b strings.Builder
	b.WriteString(entry.Shared.Analysis)
	if timedOut {
		fmt.Fprintf(&b, " Assessment finalized on deadline with %d of %d specialists reporting.",
			len(entry.Received), len(entry.Expected))
	} else if len(specialists) > 0 {
		fmt.Fprintf(&b, " Assessment combines %s analysis.", strings.Join(specialists, ", "))
	}
	return b.String()
}

// publish forwards the report downstream on a best-effort basis.
func (c *Coordinator) publish(ctx context.Context, report domain.FinalReport) {
	if c.pub == nil {
		return
	}
	pctx, cancel := context.WithTimeout(ctx, c.cfg.PublishTimeout)
	defer cancel()

	if err := c.pub.Publish(pctx, report); err != nil {
		c.logger.Error("publishing final report failed",
			"request_id", report.RequestID, "error", err)
		return
	}
	c.metrics.ReportsPublished.Inc()
}
