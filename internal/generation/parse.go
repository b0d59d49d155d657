package generation

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Alternate keys models use for the two sides of a card, in preference order.
var (
	termKeys       = []string{"term", "question", "text"}
	definitionKeys = []string{"definition", "answer", "explanation"}
)

// ParsePairs extracts pairs from raw model output. The output may wrap the
// JSON in prose or code fences; the outermost array is used, or a single
// object when no array is present. Entries that are not objects, or whose
// fields are not strings, are skipped.
func ParsePairs(output string) ([]Pair, error) {
	body := extractJSON(output)
	if body == "" {
		return nil, fmt.Errorf("%w: no JSON found in model output", ErrInvalidResponse)
	}

	var entries []map[string]json.RawMessage
	if strings.HasPrefix(body, "[") {
		var raw []json.RawMessage
		if err := json.Unmarshal([]byte(body), &raw); err != nil {
			return nil, fmt.Errorf("%w: failed to parse JSON response: %v", ErrInvalidResponse, err)
		}
		for _, item := range raw {
			var entry map[string]json.RawMessage
			if err := json.Unmarshal(item, &entry); err != nil {
				continue
			}
			entries = append(entries, entry)
		}
	} else {
		var entry map[string]json.RawMessage
		if err := json.Unmarshal([]byte(body), &entry); err != nil {
			return nil, fmt.Errorf("%w: failed to parse JSON response: %v", ErrInvalidResponse, err)
		}
		entries = append(entries, entry)
	}

	pairs := make([]Pair, 0, len(entries))
	for _, entry := range entries {
		pairs = append(pairs, Pair{
			Term:       firstString(entry, termKeys),
			Definition: firstString(entry, definitionKeys),
		})
	}
	return pairs, nil
}

func extractJSON(text string) string {
	if start, end := strings.Index(text, "["), strings.LastIndex(text, "]"); start != -1 && end > start {
		return text[start : end+1]
	}
	if start, end := strings.Index(text, "{"), strings.LastIndex(text, "}"); start != -1 && end > start {
		return text[start : end+1]
	}
	return ""
}

func firstString(entry map[string]json.RawMessage, keys []string) string {
	for _, key := range keys {
		raw, ok := entry[key]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
	}
	return ""
}
