package render

import (
	"strings"

	"gopkg.in/yaml.v3"
)

// chunk is the markup of one slide.
type chunk struct {
	Text      string
	StartLine int // 1-based line of the first line of Text
}

// source is markup split into front matter and slide chunks.
type source struct {
	FrontMatter map[string]any
	FrontErr    error
	FrontLine   int
	Chunks      []chunk
}

func normalizeNewlines(s string) string {
	return strings.ReplaceAll(s, "\r\n", "\n")
}

// fence tracks whether lines are inside a fenced code block. Only a
// line of the opening character, at least as long and with no info
// string, closes the block.
type fence struct {
	char byte
	size int
}

func fenceRun(trimmed string) (byte, int) {
	if len(trimmed) < 3 || (trimmed[0] != '`' && trimmed[0] != '~') {
		return 0, 0
	}
	c := trimmed[0]
	n := 0
	for n < len(trimmed) && trimmed[n] == c {
		n++
	}
	if n < 3 {
		return 0, 0
	}
	return c, n
}

// Open reports whether a block is open.
func (f *fence) Open() bool {
	return f.size > 0
}

// Feed consumes one trimmed line and reports whether it was a fence
// line that opened or closed a block.
func (f *fence) Feed(trimmed string) bool {
	c, n := fenceRun(trimmed)
	if n == 0 {
		return false
	}
	if !f.Open() {
		f.char, f.size = c, n
		return true
	}
	if c == f.char && n >= f.size && strings.TrimSpace(trimmed[n:]) == "" {
		f.char, f.size = 0, 0
		return true
	}
	return false
}

// splitSource splits markup on lines consisting of "---" outside code
// fences. A leading "---" block that parses as a YAML mapping is taken as
// front matter.
func splitSource(markup string) source {
	lines := strings.Split(normalizeNewlines(markup), "\n")
	var src source

	start := 0
	if len(lines) > 0 && strings.TrimSpace(lines[0]) == "---" {
		for j := 1; j < len(lines); j++ {
			if strings.TrimSpace(lines[j]) != "---" {
				continue
			}
			block := strings.Join(lines[1:j], "\n")
			var fm map[string]any
			err := yaml.Unmarshal([]byte(block), &fm)
			switch {
			case err != nil && looksLikeYAML(block):
				src.FrontErr = err
				src.FrontLine = 1
				start = j + 1
			case err == nil && len(fm) > 0:
				src.FrontMatter = fm
				src.FrontLine = 1
				start = j + 1
			default:
				// Leading separator without front matter.
				start = 1
			}
			break
		}
		if start == 0 {
			start = 1
		}
	}

	var f fence
	startLine := start + 1
	var body []string
	for i := start; i < len(lines); i++ {
		trimmed := strings.TrimSpace(lines[i])
		f.Feed(trimmed)
		if !f.Open() && trimmed == "---" {
			src.Chunks = append(src.Chunks, chunk{Text: strings.Join(body, "\n"), StartLine: startLine})
			body = body[:0]
			startLine = i + 2
			continue
		}
		body = append(body, lines[i])
	}
	src.Chunks = append(src.Chunks, chunk{Text: strings.Join(body, "\n"), StartLine: startLine})
	return src
}

// looksLikeYAML reports whether a block has at least one "key:" line, so
// that a malformed mapping is reported instead of silently treated as a
// separator.
func looksLikeYAML(block string) bool {
	for _, line := range strings.Split(block, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		if k, _, ok := strings.Cut(trimmed, ":"); ok && k != "" && !strings.Contains(k, " ") {
			return true
		}
	}
	return false
}

// comments returns the trimmed text of every "<!-- ... -->" pair in s.
// The source is markup, not HTML, so it is scanned literally. An
// unterminated comment is dropped.
func comments(s string) []string {
	var out []string
	for {
		open := strings.Index(s, "<!--")
		if open < 0 {
			return out
		}
		s = s[open+4:]
		end := strings.Index(s, "-->")
		if end < 0 {
			return out
		}
		out = append(out, strings.TrimSpace(s[:end]))
		s = s[end+3:]
	}
}

// ExtractComments returns every HTML comment in markup except those
// starting with "_", which are reserved for directives.
func ExtractComments(markup string) []string {
	out := []string{}
	for _, c := range comments(markup) {
		if c == "" || strings.HasPrefix(c, "_") {
			continue
		}
		out = append(out, c)
	}
	return out
}

// localDirectives returns "_key: value" comment directives of one chunk.
func localDirectives(text string) map[string]string {
	var out map[string]string
	for _, c := range comments(text) {
		if !strings.HasPrefix(c, "_") {
			continue
		}
		k, v, ok := strings.Cut(c[1:], ":")
		if !ok {
			continue
		}
		if out == nil {
			out = make(map[string]string)
		}
		out[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	return out
}

// chunkNotes concatenates "notes:" comment directives of one chunk.
func chunkNotes(text string) string {
	var notes []string
	for _, c := range comments(text) {
		rest, ok := strings.CutPrefix(c, "notes:")
		if !ok {
			continue
		}
		if rest = strings.TrimSpace(rest); rest != "" {
			notes = append(notes, rest)
		}
	}
	return strings.Join(notes, "\n")
}
