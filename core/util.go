package core

import (
	"fmt"
	"strings"
)

// CleanString trims all leading and trailing whitespace in `s` and optionally lowers it.
func CleanString(s string, lower ...bool) string {
	s = strings.TrimSpace(s)
	if len(lower) > 0 && lower[0] {
		return strings.ToLower(s)
	}
	return s
}

// CleanUpper trims `s` and upper-cases it.
func CleanUpper(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// FormatTerm builds a tahun ajaran label, e.g. FormatTerm(2024, 1) == "20242025-1".
func FormatTerm(year, semester int) string {
	return fmt.Sprintf("%d%d-%d", year, year+1, semester)
}

// IsAllTerms reports whether a term filter means "every term".
func IsAllTerms(term string) bool {
	term = CleanString(term, true)
	return term == "" || term == "all"
}

// UniqueStrings returns the distinct non-empty values of ss in first-seen order.
func UniqueStrings(ss []string) []string {
	seen := make(map[string]struct{}, len(ss))
	out := make([]string, 0, len(ss))
	for _, s := range ss {
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
