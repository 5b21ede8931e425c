package domain

import "time"

// Scenario is one specialist's contribution surfaced in the final report.
type Scenario struct {
	Label         string   `json:"label"`
	Specialist    string   `json:"specialist"`
	Description   string   `json:"description"`
	Confidence    float64  `json:"confidence"`
	Sources       []string `json:"sources"`
	VisualEffects []string `json:"visual_effects,omitempty"`
}

// FinalReport aggregates all specialist reports for one request. Created
// exactly once per request and never mutated afterwards.
type FinalReport struct {
	RequestID    string        `json:"request_id"`
	Location     string        `json:"location"`
	OptionLabels []string      `json:"option_labels"`
	Narratives   []string      `json:"narratives"`
	Scenarios    []Scenario    `json:"scenarios"`
	Summary      string        `json:"summary"`
	Confidence   float64       `json:"confidence"` // confidence-weighted across specialists
	Elapsed      time.Duration `json:"elapsed"`
	Partial      bool          `json:"partial"` // true when finalized by timeout
}
