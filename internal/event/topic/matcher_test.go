package topic

import "testing"

func TestMatch(t *testing.T) {
	tests := []struct {
		pattern Topic
		topic   Topic
		want    bool
	}{
		{"document.changed", "document.changed", true},
		{"document.changed", "document.saved", false},
		{"document.*", "document.changed", true},
		{"document.*", "document.changed.local", false},
		{"*.changed", "navigation.changed", true},
		{"render.**", "render", true},
		{"render.**", "render.status", true},
		{"render.**", "render.status.error", true},
		{"**", "persist.saved", true},
		{"**.failed", "persist.failed", true},
		{"**.failed", "persist.saved", false},
		{"", "persist.saved", false},
		{"persist.saved", "", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.pattern)+"~"+string(tt.topic), func(t *testing.T) {
			if got := Match(tt.pattern, tt.topic); got != tt.want {
				t.Errorf("Match(%q, %q) = %v, want %v", tt.pattern, tt.topic, got, tt.want)
			}
		})
	}
}

func TestTopicValid(t *testing.T) {
	tests := []struct {
		topic Topic
		valid bool
		pat   bool
	}{
		{"document.changed", true, false},
		{"document.*", true, true},
		{"**", true, true},
		{"document..changed", false, false},
		{"", false, false},
	}

	for _, tt := range tests {
		if got := tt.topic.Valid(); got != tt.valid {
			t.Errorf("%q.Valid() = %v", tt.topic, got)
		}
		if got := tt.topic.IsPattern(); got != tt.pat {
			t.Errorf("%q.IsPattern() = %v", tt.topic, got)
		}
	}
}
