// Package filter matches project-relative paths against exclusion globs.
package filter

import (
	"github.com/bmatcuk/doublestar/v4"
)

// Matcher decides whether a path is excluded from the dependency graph.
// Patterns use doublestar glob syntax and are matched against
// slash-separated paths relative to the project base directory, so
// "**/node_modules/**" excludes everything under any node_modules
// directory and "src/legacy/*.js" excludes single files.
type Matcher struct {
	patterns []string
}

// New creates a Matcher from glob patterns. A nil or empty pattern list
// matches nothing.
func New(patterns ...string) *Matcher {
	return &Matcher{patterns: patterns}
}

// Excluded reports whether rel matches any configured pattern. Malformed
// patterns are treated as non-matching rather than failing the build.
func (m *Matcher) Excluded(rel string) bool {
	for _, pattern := range m.patterns {
		match, err := doublestar.Match(pattern, rel)
		if err != nil {
			continue
		}
		if match {
			return true
		}
	}
	return false
}

// Patterns returns the configured patterns.
func (m *Matcher) Patterns() []string {
	return m.patterns
}
