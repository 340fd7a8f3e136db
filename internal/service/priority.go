package service

import (
	"encoding/json"

	"taskdesk/internal/model"
)

// NormalizePriority interprets a raw JSON priority value. Integers 1, 2
// and 3 map to Low, Medium and High; any other integer maps to Medium.
// Strings are accepted only when they are exactly one of the three
// levels. The second return value reports whether a usable level came
// out; callers fall back to the field's default or prior value when it
// did not.
func NormalizePriority(raw json.RawMessage) (string, bool) {
	// Unmarshal treats a JSON null as a no-op, so reject it up front.
	if len(raw) == 0 || string(raw) == "null" {
		return "", false
	}

	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		switch n {
		case 1:
			return model.PriorityLow, true
		case 2:
			return model.PriorityMedium, true
		case 3:
			return model.PriorityHigh, true
		default:
			return model.PriorityMedium, true
		}
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		switch s {
		case model.PriorityLow, model.PriorityMedium, model.PriorityHigh:
			return s, true
		}
	}

	return "", false
}
