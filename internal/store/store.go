// Package store holds final reports for polling retrieval. Requests move
// from an active set to a write-once completed set; completed reports are
// evicted after a TTL so the map cannot grow without bound.
package store

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/couchcryptid/landscape-sim-service/internal/domain"
	"github.com/jonboulle/clockwork"
)

// Status describes what a Get found.
type Status string

const (
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
)

type completedEntry struct {
	report   domain.FinalReport
	storedAt time.Time
}

// Store is a mutex-guarded two-bucket report store.
type Store struct {
	mu        sync.RWMutex
	active    map[string]time.Time
	completed map[string]completedEntry

	clock         clockwork.Clock
	ttl           time.Duration
	sweepInterval time.Duration
	logger        *slog.Logger
}

// New creates a store. Completed reports older than ttl are dropped by the
// sweep loop; Run must be started for eviction to happen.
func New(clock clockwork.Clock, ttl, sweepInterval time.Duration, logger *slog.Logger) *Store {
	return &Store{
		active:        make(map[string]time.Time),
		completed:     make(map[string]completedEntry),
		clock:         clock,
		ttl:           ttl,
		sweepInterval: sweepInterval,
		logger:        logger,
	}
}

// MarkActive registers a request as in flight so polls distinguish
// "processing" from "never seen".
func (s *Store) MarkActive(requestID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active[requestID] = s.clock.Now()
}

// Complete records the final report and retires the active marker. The first
// write wins; a second write for the same id is dropped and reported false.
func (s *Store) Complete(requestID string, report domain.FinalReport) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.completed[requestID]; ok {
		s.logger.Warn("duplicate final report dropped", "request_id", requestID)
		return false
	}
	s.completed[requestID] = completedEntry{report: report, storedAt: s.clock.Now()}
	delete(s.active, requestID)
	return true
}

// Get looks a request up in both buckets. found is false for ids the store
// has never seen (or whose completed report already expired).
func (s *Store) Get(requestID string) (report domain.FinalReport, status Status, found bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if e, ok := s.completed[requestID]; ok {
		return e.report, StatusCompleted, true
	}
	if _, ok := s.active[requestID]; ok {
		return domain.FinalReport{}, StatusProcessing, true
	}
	return domain.FinalReport{}, "", false
}

// ActiveCount reports the number of in-flight requests.
func (s *Store) ActiveCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.active)
}

// CompletedCount reports the number of retained final reports.
func (s *Store) CompletedCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.completed)
}

// Run sweeps expired completed reports until ctx is cancelled.
func (s *Store) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.clock.After(s.sweepInterval):
			if n := s.Sweep(); n > 0 {
				s.logger.Info("expired final reports evicted", "count", n)
			}
		}
	}
}

// Sweep removes completed reports older than the TTL and returns how many
// were dropped. Exposed for tests; Run calls it on the sweep interval.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.clock.Now().Add(-s.ttl)
	n := 0
	for id, e := range s.completed {
		if e.storedAt.Before(cutoff) {
			delete(s.completed, id)
			n++
		}
	}
	return n
}
