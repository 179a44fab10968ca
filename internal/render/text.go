package render

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var blockElements = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Section: true, atom.Blockquote: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Ul: true, atom.Ol: true, atom.Li: true, atom.Pre: true, atom.Tr: true,
	atom.Table: true, atom.Hr: true, atom.Br: true,
}

// PlainLines flattens an HTML fragment into text lines for character
// displays. Block elements start a new line, list items are prefixed
// with "- " and whitespace is collapsed outside <pre>. Script and style
// contents are dropped.
func PlainLines(fragment string) []string {
	var (
		lines []string
		cur   strings.Builder
		pre   int
		skip  int
	)
	flush := func() {
		if s := strings.TrimRight(cur.String(), " "); strings.TrimSpace(s) != "" {
			lines = append(lines, s)
		}
		cur.Reset()
	}

	z := html.NewTokenizer(strings.NewReader(fragment))
	for {
		switch z.Next() {
		case html.ErrorToken:
			flush()
			return lines
		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			switch tok.DataAtom {
			case atom.Script, atom.Style:
				skip++
				continue
			case atom.Pre:
				pre++
			}
			if blockElements[tok.DataAtom] {
				flush()
			}
			if tok.DataAtom == atom.Li {
				cur.WriteString("- ")
			}
		case html.EndTagToken:
			tok := z.Token()
			switch tok.DataAtom {
			case atom.Script, atom.Style:
				skip = max(0, skip-1)
				continue
			case atom.Pre:
				pre = max(0, pre-1)
			}
			if blockElements[tok.DataAtom] {
				flush()
			}
		case html.TextToken:
			if skip > 0 {
				continue
			}
			text := string(z.Text())
			if pre > 0 {
				for i, l := range strings.Split(text, "\n") {
					if i > 0 {
						flush()
					}
					cur.WriteString(l)
				}
				continue
			}
			text = strings.Join(strings.Fields(text), " ")
			if text == "" {
				continue
			}
			if cur.Len() > 0 && !strings.HasSuffix(cur.String(), " ") && !strings.HasSuffix(cur.String(), "- ") {
				cur.WriteByte(' ')
			}
			cur.WriteString(text)
		}
	}
}
