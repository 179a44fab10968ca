package render

import (
	"slices"
	"testing"
)

func TestPlainLines(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"empty", "", nil},
		{"heading and paragraph", "<h1>Title</h1>\n<p>Some  <em>body</em>\ntext</p>", []string{"Title", "Some body text"}},
		{"list", "<ul><li>one</li><li>two</li></ul>", []string{"- one", "- two"}},
		{"pre keeps lines", "<pre><code>a := 1\nb := 2</code></pre>", []string{"a := 1", "b := 2"}},
		{"script dropped", "<p>x</p><script>alert(1)</script>", []string{"x"}},
		{"entities decoded", "<p>a &amp; b</p>", []string{"a & b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PlainLines(tt.in); !slices.Equal(got, tt.want) {
				t.Errorf("PlainLines() = %q, want %q", got, tt.want)
			}
		})
	}
}
