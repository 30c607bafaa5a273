package grader

import (
	"encoding/json"
	"errors"
	"strings"
)

// Extraction failures. Both are terminal for the request and take the
// same error-report path as a failed generative call.
var (
	ErrEmptyOutput = errors.New("model returned empty output")
	ErrNoJSON      = errors.New("model did not return JSON")
)

// FirstJSON recovers the first well-formed JSON object from raw LLM
// output. Models are told to return bare JSON but routinely wrap it in
// markdown fences, prose, or repeat it; each recovery step below is
// only attempted when the previous one found nothing. Fence-delimited
// content wins over brute-force scanning, and the earliest decodable
// object wins over later ones.
func FirstJSON(raw string) (map[string]any, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrEmptyOutput
	}

	// Strip markdown fences: take the first fenced fragment that holds
	// an opening brace, minus any leading "json" language tag.
	if strings.Contains(raw, "```") {
		for _, part := range strings.Split(raw, "```") {
			if !strings.Contains(part, "{") {
				continue
			}
			part = strings.TrimSpace(part)
			if len(part) >= 4 && strings.EqualFold(part[:4], "json") {
				part = strings.TrimSpace(part[4:])
			}
			raw = part
			break
		}
	}

	var obj map[string]any
	if err := json.Unmarshal([]byte(raw), &obj); err == nil {
		return obj, nil
	}

	// Scan left to right: at every opening brace, try to decode a JSON
	// value starting there. The decoder stops at the end of the first
	// complete value, so trailing prose or a restated copy is ignored.
	for i := 0; i < len(raw); i++ {
		if raw[i] != '{' {
			continue
		}
		dec := json.NewDecoder(strings.NewReader(raw[i:]))
		var candidate map[string]any
		if err := dec.Decode(&candidate); err == nil {
			return candidate, nil
		}
	}

	// Last resort: everything between the first '{' and the last '}'.
	start := strings.IndexByte(raw, '{')
	end := strings.LastIndexByte(raw, '}')
	if start == -1 || end == -1 || end < start {
		return nil, ErrNoJSON
	}
	dec := json.NewDecoder(strings.NewReader(raw[start : end+1]))
	if err := dec.Decode(&obj); err != nil {
		return nil, ErrNoJSON
	}
	return obj, nil
}
