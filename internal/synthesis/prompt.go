package synthesis

import (
	"encoding/json"
	"fmt"

	"github.com/couchcryptid/landscape-sim-service/internal/domain"
	"github.com/couchcryptid/landscape-sim-service/internal/source"
)

// PlanPrompt asks for the combined geographic analysis and simulation
// requirements for a coordinate, as one JSON object.
func PlanPrompt(lat, lon float64, priority string) string {
	return fmt.Sprintf(`Analyze coordinates %.4f, %.4f for landscape evolution simulation. Priority: %s.

Determine region types, climate zone, natural hazard risks, ecosystem, water proximity, elevation category, special features, the primary simulation type, key environmental factors, which specialists are relevant (choose from: climate, geological, environmental), and the timeline of expected change.

Respond ONLY with a JSON object:
{
  "region_types": ["coastal"],
  "climate_zone": "temperate_oceanic",
  "hazard_risks": ["earthquake", "wildfire"],
  "ecosystem": "temperate_forest",
  "water_proximity": "coastal",
  "elevation_category": "hills",
  "special_features": ["seismic_zone"],
  "simulation_type": "coastal_erosion",
  "analysis": "Concise reasoning.",
  "environmental_factors": ["factor1"],
  "specialists_needed": ["climate", "geological"],
  "timeline": "seasonal",
  "key_risks": ["risk1"]
}`, lat, lon, priority)
}

// SelectPrompt asks the model to pick 3-5 sources from the pre-filtered
// candidates for one specialist.
func SelectPrompt(specialist string, shared domain.SharedContext, candidates []string, infos map[string]source.Info) string {
	details := make(map[string]map[string]any, len(candidates))
	for _, name := range candidates {
		if info, ok := infos[name]; ok {
			details[name] = map[string]any{
				"specialty":   info.Specialty,
				"description": info.Description,
				"reliability": info.Reliability,
				"latency":     info.Latency,
			}
		}
	}
	detailJSON, _ := json.Marshal(details)
	contextJSON, _ := json.Marshal(shared)

	return fmt.Sprintf(`You are a %s specialist selecting data sources for landscape simulation.
Geographic context: %s
Candidate sources: %s

Select the 3-5 best sources for this location. Prefer high relevance to the main hazards, fast latency, and complementary data.

Respond ONLY with a JSON object:
{"selected_sources": ["name1", "name2", "name3"]}`, specialist, contextJSON, detailJSON)
}

// SynthesisPrompt asks the model to combine adapter results into a judgment.
func SynthesisPrompt(in Input) string {
	resultsJSON, _ := json.Marshal(in.Results)
	contextJSON, _ := json.Marshal(in.Shared)

	return fmt.Sprintf(`You are a %s specialist. Synthesize the gathered data for coordinates %.4f, %.4f into a landscape simulation assessment.
Simulation context: %s
Source results: %s

Provide an overall analysis, 3-6 short UI option labels for simulation scenarios, key visual effects, and a confidence between 0.0 and 1.0.

Respond ONLY with a JSON object:
{"analysis": "...", "option_labels": ["Label1", "Label2", "Label3"], "visual_effects": ["effect1"], "confidence": 0.85}`,
		in.Specialist, in.Latitude, in.Longitude, contextJSON, resultsJSON)
}
