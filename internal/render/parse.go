package render

import (
	"strings"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Slide is one parsed slide.
type Slide struct {
	Content string // inner HTML
	Title   string
	Notes   string
	Class   string
}

// Result is the output of one successful render. It is never modified
// after creation.
type Result struct {
	HTML       string
	CSS        string
	SlideCount int
	Slides     []Slide
	Comments   []string
	Timestamp  time.Time
}

// parseResult builds a Result from compiler output and the source markup.
func parseResult(markup string, out Output, now time.Time) *Result {
	slides := slidesFromOutput(out)

	src := splitSource(markup)
	for i := range slides {
		if i < len(src.Chunks) {
			slides[i].Notes = chunkNotes(src.Chunks[i].Text)
		}
	}

	return &Result{
		HTML:       out.HTML,
		CSS:        out.CSS,
		SlideCount: max(1, len(slides)),
		Slides:     slides,
		Comments:   ExtractComments(markup),
		Timestamp:  now,
	}
}

func slidesFromOutput(out Output) []Slide {
	if len(out.Sections) > 0 {
		slides := make([]Slide, len(out.Sections))
		for i, s := range out.Sections {
			slides[i] = Slide{Content: s.HTML, Class: s.Class, Title: ExtractTitle(s.HTML)}
		}
		return slides
	}

	slides := sectionsFromHTML(out.HTML)
	if len(slides) == 0 && strings.TrimSpace(out.HTML) != "" {
		slides = []Slide{{Content: out.HTML, Title: ExtractTitle(out.HTML)}}
	}
	return slides
}

// sectionsFromHTML returns the outermost <section> elements of fragment.
func sectionsFromHTML(fragment string) []Slide {
	nodes, err := parseFragment(fragment)
	if err != nil {
		return nil
	}

	var slides []Slide
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.Section {
			inner := innerHTML(n)
			slides = append(slides, Slide{
				Content: inner,
				Title:   titleOf(n),
				Class:   attr(n, "class"),
			})
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range nodes {
		walk(n)
	}
	return slides
}

// ExtractTitle returns the text of the first heading in fragment, else the
// first strong or b element, else "".
func ExtractTitle(fragment string) string {
	nodes, err := parseFragment(fragment)
	if err != nil {
		return ""
	}
	root := &html.Node{Type: html.DocumentNode}
	for _, n := range nodes {
		root.AppendChild(n)
	}
	return titleOf(root)
}

func titleOf(n *html.Node) string {
	if h := find(n, isHeading); h != nil {
		return strings.TrimSpace(textOf(h))
	}
	if b := find(n, isBold); b != nil {
		return strings.TrimSpace(textOf(b))
	}
	return ""
}

func isHeading(n *html.Node) bool {
	switch n.DataAtom {
	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		return true
	}
	return false
}

func isBold(n *html.Node) bool {
	return n.DataAtom == atom.Strong || n.DataAtom == atom.B
}

// find returns the first element in document order matching pred.
func find(n *html.Node, pred func(*html.Node) bool) *html.Node {
	if n.Type == html.ElementNode && pred(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if m := find(c, pred); m != nil {
			return m
		}
	}
	return nil
}

func textOf(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func innerHTML(n *html.Node) string {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		_ = html.Render(&b, c)
	}
	return b.String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func parseFragment(fragment string) ([]*html.Node, error) {
	ctx := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	return html.ParseFragment(strings.NewReader(fragment), ctx)
}
