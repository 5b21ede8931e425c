// Package ledger tracks in-flight request completion state under concurrent
// specialist report arrivals.
//
// The central race it exists to prevent is double-finalization: two reports
// for the same request arriving simultaneously, each observing "all expected
// specialists have reported", and each triggering aggregation. Record treats
// insert, completion check, and removal as one atomic step under the ledger
// lock, so exactly one caller ever receives the closed entry.
package ledger

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/couchcryptid/landscape-sim-service/internal/domain"
	"github.com/jonboulle/clockwork"
)

// ErrAlreadyOpen indicates an Open call for an id that already has an entry.
// Request ids are unique by construction, so this is a programming error,
// not a retry path.
var ErrAlreadyOpen = errors.New("ledger entry already open")

// Entry is the bookkeeping state for one in-flight request. Once returned by
// Record or Close it is removed from the ledger and owned exclusively by the
// caller.
type Entry struct {
	RequestID string
	StartedAt time.Time
	Expected  map[string]struct{}
	Received  map[string]domain.SpecialistReport
	Shared    domain.SharedContext
	Request   domain.Request
}

// Ledger is a mutex-guarded map of in-flight request entries.
type Ledger struct {
	mu      sync.Mutex
	entries map[string]*Entry
	clock   clockwork.Clock
	logger  *slog.Logger
}

// New creates an empty ledger.
func New(clock clockwork.Clock, logger *slog.Logger) *Ledger {
	return &Ledger{
		entries: make(map[string]*Entry),
		clock:   clock,
		logger:  logger,
	}
}

// Open creates the entry for a freshly dispatched request.
func (l *Ledger) Open(req domain.Request, expected []string, shared domain.SharedContext) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.entries[req.ID]; ok {
		l.logger.Error("ledger entry already open", "request_id", req.ID)
		return ErrAlreadyOpen
	}

	exp := make(map[string]struct{}, len(expected))
	for _, s := range expected {
		exp[s] = struct{}{}
	}

	l.entries[req.ID] = &Entry{
		RequestID: req.ID,
		StartedAt: l.clock.Now(),
		Expected:  exp,
		Received:  make(map[string]domain.SpecialistReport, len(expected)),
		Shared:    shared,
		Request:   req,
	}
	return nil
}

// Record inserts a report, overwriting any prior report of the same
// specialist type (a retried specialist supersedes its own earlier attempt).
// When the recording covers the expected set — equality or superset — the
// entry is removed and returned, and only this caller sees it.
//
// The returned entry is nil while the request is still collecting. recorded
// is false when no entry exists, i.e. the report is late or unknown; late
// reports never resurrect a finalized request.
func (l *Ledger) Record(report domain.SpecialistReport) (entry *Entry, recorded bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[report.RequestID]
	if !ok {
		return nil, false
	}

	e.Received[report.Specialist] = report

	if coversExpected(e) {
		delete(l.entries, report.RequestID)
		return e, true
	}
	return nil, true
}

// Close atomically removes and returns the entry, for the timeout fallback.
// Subsequent Record calls for the id become no-ops. Returns false when the
// request was already finalized.
func (l *Ledger) Close(requestID string) (*Entry, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[requestID]
	if !ok {
		return nil, false
	}
	delete(l.entries, requestID)
	return e, true
}

// Complete reports whether the entry's received set covers its expected set.
// For callers that only observe; Record performs the same check atomically
// with removal.
func (l *Ledger) Complete(requestID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[requestID]
	return ok && coversExpected(e)
}

// Len reports the number of in-flight requests.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// coversExpected is true when every expected specialist has reported. The
// received set may exceed the expected set (defensive over-reporting under
// dispatch races); a superset still completes.
func coversExpected(e *Entry) bool {
	for s := range e.Expected {
		if _, ok := e.Received[s]; !ok {
			return false
		}
	}
	return true
}
