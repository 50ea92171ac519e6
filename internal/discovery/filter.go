package discovery

import (
	"path/filepath"
	"strings"
)

// Filter filters test ids by name pattern
type Filter struct{}

// NewFilter creates a new Filter
func NewFilter() *Filter {
	return &Filter{}
}

// FilterByName filters test ids by name pattern using wildcard matching.
// Supports patterns like "FooTest.*" or "*failure*".
func (f *Filter) FilterByName(ids []string, pattern string) []string {
	if pattern == "" {
		return ids
	}

	var filtered []string
	for _, id := range ids {
		if f.Match(id, pattern) {
			filtered = append(filtered, id)
		}
	}
	return filtered
}

// Match reports whether a single test id matches pattern. Ids are matched
// whole: parameterized ids such as "Suite/0.case" contain slashes that are
// not path separators.
func (f *Filter) Match(id, pattern string) bool {
	if pattern == "" {
		return true
	}

	// Try filepath.Match first (supports * and ? wildcards)
	if matched, err := filepath.Match(pattern, id); err == nil && matched {
		return true
	}

	// If pattern contains wildcards but filepath.Match didn't match,
	// every non-empty part must appear in order
	if strings.Contains(pattern, "*") {
		rest := id
		hasPart := false
		for _, part := range strings.Split(pattern, "*") {
			if part == "" {
				continue
			}
			hasPart = true
			i := strings.Index(rest, part)
			if i < 0 {
				return false
			}
			rest = rest[i+len(part):]
		}
		return hasPart
	}

	// If no wildcards, do a simple contains check
	if !strings.Contains(pattern, "?") {
		return strings.Contains(id, pattern)
	}
	return false
}
