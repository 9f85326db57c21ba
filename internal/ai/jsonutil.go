package ai

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var (
	fencedBlock    = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")
	trailingCommas = regexp.MustCompile(`,\s*([}\]])`)
	smartQuotes    = strings.NewReplacer(
		"“", `"`, "”", `"`,
		"‘", `'`, "’", `'`,
	)
)

// ParseJSON decodes a JSON object out of model output that may wrap it in
// markdown code fences, use smart quotes, or leave trailing commas.
func ParseJSON(raw string, v any) error {
	text := strings.TrimSpace(raw)
	if m := fencedBlock.FindStringSubmatch(text); m != nil {
		text = strings.TrimSpace(m[1])
	}
	text = smartQuotes.Replace(text)

	if err := json.Unmarshal([]byte(text), v); err == nil {
		return nil
	}

	// Second pass: strip trailing commas and clip to the outermost braces.
	text = trailingCommas.ReplaceAllString(text, "$1")
	if start := strings.IndexAny(text, "{["); start >= 0 {
		if end := strings.LastIndexAny(text, "}]"); end > start {
			text = text[start : end+1]
		}
	}
	if err := json.Unmarshal([]byte(text), v); err != nil {
		return fmt.Errorf("parse model json: %w", err)
	}
	return nil
}
