// File: internal/usecase/parser.go
package usecase

import (
	"regexp"
	"strings"

	"ghostwriter/internal/domain/model"
)

var suggestionLine = regexp.MustCompile(`Suggestion \d+:\s*(.+)`)

// ParseSuggestions extracts the "Suggestion N: text" lines of a completion.
// It returns exactly model.SuggestionCount items or nil.
func ParseSuggestions(raw string) []string {
	var out []string
	for _, line := range strings.Split(raw, "\n") {
		if !strings.Contains(line, "Suggestion") {
			continue
		}
		m := suggestionLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		if s := strings.TrimSpace(m[1]); s != "" {
			out = append(out, s)
		}
	}
	if len(out) != model.SuggestionCount {
		return nil
	}
	return out
}
