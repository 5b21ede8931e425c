package synthesis

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/couchcryptid/landscape-sim-service/internal/domain"
)

// ExtractJSON pulls the first balanced JSON object out of a model response,
// tolerating markdown code fences and prose around the payload.
func ExtractJSON(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if i := strings.Index(s, "```"); i >= 0 {
		s = s[i+3:]
		s = strings.TrimPrefix(s, "json")
		if j := strings.Index(s, "```"); j >= 0 {
			s = s[:j]
		}
	}

	start := strings.IndexByte(s, '{')
	if start < 0 {
		return nil, errors.New("no JSON object in response")
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return []byte(s[start : i+1]), nil
			}
		}
	}
	return nil, errors.New("unbalanced JSON object in response")
}

// DecodeOutput parses a model response into an Output.
func DecodeOutput(raw string) (Output, error) {
	payload, err := ExtractJSON(raw)
	if err != nil {
		return Output{}, fmt.Errorf("decode synthesis output: %w", err)
	}
	var out Output
	if err := json.Unmarshal(payload, &out); err != nil {
		return Output{}, fmt.Errorf("decode synthesis output: %w", err)
	}
	return out, nil
}

// DecodeContext parses a model response into a SharedContext.
func DecodeContext(raw string) (domain.SharedContext, error) {
	payload, err := ExtractJSON(raw)
	if err != nil {
		return domain.SharedContext{}, fmt.Errorf("decode shared context: %w", err)
	}
	var sc domain.SharedContext
	if err := json.Unmarshal(payload, &sc); err != nil {
		return domain.SharedContext{}, fmt.Errorf("decode shared context: %w", err)
	}
	return sc, nil
}

// DecodeSelection parses a model response into a source-name list, keeping
// only names present in the candidate set (models occasionally invent them).
func DecodeSelection(raw string, candidates []string) ([]string, error) {
	payload, err := ExtractJSON(raw)
	if err != nil {
		return nil, fmt.Errorf("decode source selection: %w", err)
	}
	var sel struct {
		SelectedSources []string `json:"selected_sources"`
	}
	if err := json.Unmarshal(payload, &sel); err != nil {
		return nil, fmt.Errorf("decode source selection: %w", err)
	}

	allowed := make(map[string]struct{}, len(candidates))
	for _, c := range candidates {
		allowed[c] = struct{}{}
	}
	var out []string
	for _, name := range sel.SelectedSources {
		if _, ok := allowed[name]; ok {
			out = append(out, name)
		}
	}
	if len(out) == 0 {
		return nil, errors.New("source selection contained no known names")
	}
	return out, nil
}
