package domain

// SharedContext carries the one-time geographic and simulation analysis for a
// request. Computed by the planner at submission, read-only afterwards.
type SharedContext struct {
	RegionTypes       []string `json:"region_types"`
	ClimateZone       string   `json:"climate_zone"`
	HazardRisks       []string `json:"hazard_risks"`
	Ecosystem         string   `json:"ecosystem"`
	WaterProximity    string   `json:"water_proximity"`
	ElevationCategory string   `json:"elevation_category"`
	SpecialFeatures   []string `json:"special_features"`

	// Simulation requirements derived from the geography.
	SimulationType       string   `json:"simulation_type"`
	Analysis             string   `json:"analysis"`
	EnvironmentalFactors []string `json:"environmental_factors"`
	SpecialistsNeeded    []string `json:"specialists_needed"`
	Timeline             string   `json:"timeline"`
	KeyRisks             []string `json:"key_risks"`
}

// DefaultSharedContext is the degraded-but-valid context used when planning
// fails. The request still proceeds with the full specialist set.
func DefaultSharedContext() SharedContext {
	return SharedContext{
		RegionTypes:          []string{"general"},
		ClimateZone:          "temperate",
		HazardRisks:          []string{"general_weather"},
		Ecosystem:            "mixed",
		WaterProximity:       "inland",
		ElevationCategory:    "unknown",
		SimulationType:       "general_landscape_change",
		Analysis:             "General landscape evolution analysis.",
		EnvironmentalFactors: []string{"weather", "geology"},
		SpecialistsNeeded:    AllSpecialists(),
		Timeline:             "seasonal",
		KeyRisks:             []string{"climate_variability"},
	}
}
