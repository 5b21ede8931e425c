package domain

import "strings"

// DefaultOptionLabels backfills the aggregated label union when too few
// labels survive deduplication. Order matters: earlier entries pad first.
var DefaultOptionLabels = []string{
	"Seasonal Shift",
	"Gradual Erosion",
	"Vegetation Change",
	"Weather Variability",
	"Terrain Settling",
	"Water Level Drift",
}

// fallbackLabels are the deterministic per-specialist option lists substituted
// when synthesis produces nothing usable.
var fallbackLabels = map[string][]string{
	SpecialistClimate:       {"Weather Change", "Climate Shift", "Storm Front", "Temperature Swing"},
	SpecialistGeological:    {"Earthquake", "Erosion", "Landslide", "Terrain Uplift"},
	SpecialistEnvironmental: {"Wildfire", "Flooding", "Drought Stress", "Ecosystem Shift"},
}

// FallbackOptionLabels returns the fixed option list for a specialist type.
// Unknown types get the generic defaults, never an empty list.
func FallbackOptionLabels(specialist string) []string {
	if labels, ok := fallbackLabels[specialist]; ok {
		out := make([]string, len(labels))
		copy(out, labels)
		return out
	}
	out := make([]string, len(DefaultOptionLabels))
	copy(out, DefaultOptionLabels)
	return out
}

// MergeOptionLabels unions label lists with case-insensitive deduplication,
// truncates to max, and pads from defaults up to min. The first-seen casing
// wins. The result is never empty as long as min >= 1 and defaults is
// non-empty.
func MergeOptionLabels(lists [][]string, min, max int, defaults []string) []string {
	seen := make(map[string]struct{})
	merged := make([]string, 0, max)

	add := func(label string) {
		label = strings.TrimSpace(label)
		if label == "" || len(merged) >= max {
			return
		}
		key := strings.ToLower(label)
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		merged = append(merged, label)
	}

	for _, list := range lists {
		for _, label := range list {
			add(label)
		}
	}
	for _, label := range defaults {
		if len(merged) >= min {
			break
		}
		add(label)
	}
	return merged
}
