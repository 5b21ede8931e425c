package domain

// Specialist types. Each runs independently per request and covers a distinct
// slice of the external source catalog.
const (
	SpecialistClimate       = "climate"
	SpecialistGeological    = "geological"
	SpecialistEnvironmental = "environmental"
)

// AllSpecialists is the full set, in dispatch order.
func AllSpecialists() []string {
	return []string{SpecialistClimate, SpecialistGeological, SpecialistEnvironmental}
}

// SpecialistAssignment is one unit of dispatched work. Shared is computed once
// per request and fanned out unchanged so every specialist reasons from the
// same facts.
type SpecialistAssignment struct {
	RequestID  string
	Specialist string
	Latitude   float64
	Longitude  float64
	Priority   string
	Shared     SharedContext
}

// SpecialistReport is the single result of one specialist invocation.
// Immutable once produced.
type SpecialistReport struct {
	RequestID       string   `json:"request_id"`
	Specialist      string   `json:"specialist"`
	Success         bool     `json:"success"`
	SelectedSources []string `json:"selected_sources"`
	Narrative       string   `json:"narrative"`
	Confidence      float64  `json:"confidence"` // 0.0–1.0
	OptionLabels    []string `json:"option_labels"`
	VisualEffects   []string `json:"visual_effects,omitempty"`
}
