// Package strings holds list helpers for configuration values.
package strings

import (
	"strings"
)

// SplitList splits a separated list such as "a, b,,a" into its distinct,
// trimmed, non-empty elements in first-seen order. An empty input yields nil.
func SplitList(raw, sep string) []string {
	if raw == "" {
		return nil
	}
	return DedupeAndTrim(strings.Split(raw, sep))
}

// DedupeAndTrim removes duplicates and empty strings, trimming whitespace from
// each element. Order is preserved.
func DedupeAndTrim(values []string) []string {
	if len(values) == 0 {
		return values
	}

	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))
	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; !ok {
			seen[trimmed] = struct{}{}
			result = append(result, trimmed)
		}
	}
	return result
}
