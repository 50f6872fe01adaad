package llm

import (
	"encoding/json"
	"log"
	"sort"
	"strings"
)

// ExtractJSON slices the text between the first '{' and the last '}'.
// Generation responses often wrap JSON in prose or code fences; if no braces
// are present the text is returned unchanged so the caller's parse fails
// with the original content available.
func ExtractJSON(text string) string {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end < start {
		log.Printf("llm: response has no JSON object (length %d): %s", len(text), text)
		return text
	}
	return text[start : end+1]
}

// FirstObjectList parses a JSON object and returns the first top-level value
// that is a non-empty list of objects, regardless of its key. This tolerates
// the variable response shapes a generator produces for list requests.
// Returns nil if nothing matches or the text does not parse.
func FirstObjectList(text string) []map[string]any {
	var parsed map[string]any
	if err := json.Unmarshal([]byte(ExtractJSON(text)), &parsed); err != nil {
		log.Printf("llm: cannot parse object list: %v", err)
		return nil
	}

	keys := make([]string, 0, len(parsed))
	for k := range parsed {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		list, ok := parsed[k].([]any)
		if !ok || len(list) == 0 {
			continue
		}
		if _, ok := list[0].(map[string]any); !ok {
			continue
		}
		out := make([]map[string]any, 0, len(list))
		for _, item := range list {
			if obj, ok := item.(map[string]any); ok {
				out = append(out, obj)
			}
		}
		return out
	}
	return nil
}
