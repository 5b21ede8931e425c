package store_test

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/landscape-sim-service/internal/domain"
	"github.com/couchcryptid/landscape-sim-service/internal/store"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestStore(clock clockwork.Clock) *store.Store {
	return store.New(clock, 30*time.Minute, time.Minute, discardLogger())
}

func TestGetUnknownRequest(t *testing.T) {
	s := newTestStore(clockwork.NewFakeClock())

	_, _, found := s.Get("req_missing")
	assert.False(t, found)
}

func TestActiveRequestReportsProcessing(t *testing.T) {
	s := newTestStore(clockwork.NewFakeClock())
	s.MarkActive("req_1")

	_, status, found := s.Get("req_1")
	require.True(t, found)
	assert.Equal(t, store.StatusProcessing, status)
	assert.Equal(t, 1, s.ActiveCount())
}

func TestCompleteRetiresActiveMarker(t *testing.T) {
	s := newTestStore(clockwork.NewFakeClock())
	s.MarkActive("req_1")

	require.True(t, s.Complete("req_1", domain.FinalReport{RequestID: "req_1", Summary: "ok"}))

	report, status, found := s.Get("req_1")
	require.True(t, found)
	assert.Equal(t, store.StatusCompleted, status)
	assert.Equal(t, "ok", report.Summary)
	assert.Equal(t, 0, s.ActiveCount())
	assert.Equal(t, 1, s.CompletedCount())
}

func TestCompleteIsWriteOnce(t *testing.T) {
	s := newTestStore(clockwork.NewFakeClock())

	require.True(t, s.Complete("req_1", domain.FinalReport{RequestID: "req_1", Summary: "first"}))
	assert.False(t, s.Complete("req_1", domain.FinalReport{RequestID: "req_1", Summary: "second"}))

	report, _, found := s.Get("req_1")
	require.True(t, found)
	assert.Equal(t, "first", report.Summary, "the first write must win")
}

func TestSweepEvictsOnlyExpiredReports(t *testing.T) {
	clock := clockwork.NewFakeClock()
	s := newTestStore(clock)

	require.True(t, s.Complete("req_old", domain.FinalReport{RequestID: "req_old"}))
	clock.Advance(20 * time.Minute)
	require.True(t, s.Complete("req_new", domain.FinalReport{RequestID: "req_new"}))
	clock.Advance(15 * time.Minute)

	assert.Equal(t, 1, s.Sweep(), "only the 35-minute-old report crosses the 30m TTL")

	_, _, found := s.Get("req_old")
	assert.False(t, found)
	_, _, found = s.Get("req_new")
	assert.True(t, found)
}

func TestSweepLeavesActiveRequestsAlone(t *testing.T) {
	clock := clockwork.NewFakeClock()
	s := newTestStore(clock)

	s.MarkActive("req_slow")
	clock.Advance(2 * time.Hour)

	assert.Equal(t, 0, s.Sweep())
	_, status, found := s.Get("req_slow")
	require.True(t, found)
	assert.Equal(t, store.StatusProcessing, status, "eviction applies to completed reports only")
}
