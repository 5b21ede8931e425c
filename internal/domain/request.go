package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// Recognized priorities. Unrecognized values behave as PriorityComprehensive.
const (
	PriorityUrgent        = "urgent"
	PriorityComprehensive = "comprehensive"
)

// NormalizePriority maps arbitrary caller input onto a recognized priority.
func NormalizePriority(p string) string {
	if strings.EqualFold(strings.TrimSpace(p), PriorityUrgent) {
		return PriorityUrgent
	}
	return PriorityComprehensive
}

// Request is an accepted submission. Immutable once created.
type Request struct {
	ID          string    `json:"request_id"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	Priority    string    `json:"priority"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// NewRequestID builds a unique request identifier: a time-based prefix for
// log ordering plus a random suffix so concurrent submissions cannot collide.
func NewRequestID(clock clockwork.Clock) string {
	return fmt.Sprintf("req_%d_%s", clock.Now().UnixNano(), uuid.NewString()[:8])
}

// ValidCoordinates reports whether lat/lon fall within the WGS84 ranges.
func ValidCoordinates(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// FormatLocation renders coordinates in the canonical "lat,lon" form used
// across reports and cache keys.
func FormatLocation(lat, lon float64) string {
	return fmt.Sprintf("%.4f,%.4f", lat, lon)
}
