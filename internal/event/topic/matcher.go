package topic

// Match reports whether eventTopic matches pattern. "*" matches exactly
// one segment and "**" matches zero or more.
func Match(pattern, eventTopic Topic) bool {
	if pattern == "" || eventTopic == "" {
		return false
	}
	return matchSegments(pattern.Segments(), eventTopic.Segments())
}

func matchSegments(pattern, segments []string) bool {
	if len(pattern) == 0 {
		return len(segments) == 0
	}

	switch pattern[0] {
	case WildcardMulti:
		// Try matching 0, 1, 2, ... remaining segments.
		for i := 0; i <= len(segments); i++ {
			if matchSegments(pattern[1:], segments[i:]) {
				return true
			}
		}
		return false
	case WildcardSingle:
		return len(segments) > 0 && matchSegments(pattern[1:], segments[1:])
	default:
		return len(segments) > 0 && pattern[0] == segments[0] && matchSegments(pattern[1:], segments[1:])
	}
}
