// Package topic implements dot-separated event topics and wildcard
// patterns.
package topic

import "strings"

// Topic represents a hierarchical event type using dot notation.
// Examples: "document.changed", "render.status", "persist.saved".
type Topic string

// Wildcard constants for pattern matching.
const (
	// WildcardSingle matches exactly one segment.
	WildcardSingle = "*"

	// WildcardMulti matches zero or more segments.
	WildcardMulti = "**"

	// Separator is the character used to separate topic segments.
	Separator = "."
)

// String returns the topic as a string.
func (t Topic) String() string {
	return string(t)
}

// Segments returns the topic split by the separator.
func (t Topic) Segments() []string {
	if t == "" {
		return nil
	}
	return strings.Split(string(t), Separator)
}

// IsPattern reports whether the topic contains wildcards.
func (t Topic) IsPattern() bool {
	for _, s := range t.Segments() {
		if s == WildcardSingle || s == WildcardMulti {
			return true
		}
	}
	return false
}

// Valid reports whether every segment is non-empty.
func (t Topic) Valid() bool {
	if t == "" {
		return false
	}
	for _, s := range t.Segments() {
		if s == "" {
			return false
		}
	}
	return true
}
