package render

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strconv"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// slideSizes maps aspect ratios to base slide dimensions in pixels.
var slideSizes = map[string][2]int{
	"16:9": {1280, 720},
	"4:3":  {960, 720},
}

// SlideSize returns the base pixel size for an aspect ratio, defaulting
// to 16:9.
func SlideSize(ratio string) (width, height int) {
	if s, ok := slideSizes[ratio]; ok {
		return s[0], s[1]
	}
	s := slideSizes["16:9"]
	return s[0], s[1]
}

// MarkdownCompiler compiles Markdown decks with goldmark.
//
// Slides are separated by "---" lines. A leading YAML front matter block
// sets deck-wide directives (theme, paginate, class, size, html).
// Comments of the form <!-- _class: lead --> or <!-- _paginate: false -->
// set directives for a single slide.
type MarkdownCompiler struct {
	themes *Registry
}

// NewMarkdownCompiler creates a compiler that takes theme CSS from themes.
// themes may be nil, in which case no theme CSS is emitted.
func NewMarkdownCompiler(themes *Registry) *MarkdownCompiler {
	return &MarkdownCompiler{themes: themes}
}

// Compile implements Compiler.
func (c *MarkdownCompiler) Compile(ctx context.Context, markup string, opts Options) (Output, error) {
	src := splitSource(markup)
	if src.FrontErr != nil {
		return Output{}, &Error{
			Type:    ErrorParse,
			Message: "invalid front matter",
			Details: src.FrontErr.Error(),
			Line:    src.FrontLine,
			Cause:   src.FrontErr,
		}
	}
	opts = applyFrontMatter(opts, src.FrontMatter)
	globalClass, _ := src.FrontMatter["class"].(string)

	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(rendererOptions(opts)...),
	)

	theme := c.theme(opts.Theme)
	width, height := SlideSize(opts.Size)

	var (
		deck     bytes.Buffer
		sections = make([]Section, 0, len(src.Chunks))
	)
	fmt.Fprintf(&deck, `<div class="deckstorm theme-%s">`, template.HTMLEscapeString(theme.ID))
	for i, ch := range src.Chunks {
		if err := ctx.Err(); err != nil {
			return Output{}, err
		}

		local := localDirectives(ch.Text)
		class := globalClass
		if v, ok := local["class"]; ok {
			class = v
		}
		paginate := isSet(opts.Paginate)
		if v, ok := local["paginate"]; ok {
			paginate, _ = strconv.ParseBool(v)
		}

		var body bytes.Buffer
		if err := md.Convert([]byte(ch.Text), &body); err != nil {
			return Output{}, &Error{
				Type:    ErrorRender,
				Message: err.Error(),
				Details: fmt.Sprintf("slide %d", i+1),
				Line:    ch.StartLine,
				Cause:   err,
			}
		}
		if paginate {
			fmt.Fprintf(&body, `<span class="pagination">%d</span>`, i+1)
		}

		sections = append(sections, Section{HTML: body.String(), Class: class})

		fmt.Fprintf(&deck, `<section id="%d" data-slide="%d"`, i+1, i+1)
		if class != "" {
			fmt.Fprintf(&deck, ` class="%s"`, template.HTMLEscapeString(class))
		}
		deck.WriteString(">")
		deck.Write(body.Bytes())
		deck.WriteString("</section>")
	}
	deck.WriteString("</div>")

	css := fmt.Sprintf(".deckstorm section{width:%dpx;height:%dpx;box-sizing:border-box;overflow:hidden;position:relative}\n", width, height)
	css += theme.CSS

	return Output{HTML: deck.String(), CSS: css, Sections: sections}, nil
}

func (c *MarkdownCompiler) theme(id string) Theme {
	if c.themes == nil {
		return Theme{ID: "none"}
	}
	if id != "" {
		if t, ok := c.themes.Get(id); ok {
			return t
		}
	}
	return c.themes.Current()
}

func rendererOptions(opts Options) []renderer.Option {
	var ro []renderer.Option
	if isSet(opts.HTML) {
		ro = append(ro, gmhtml.WithUnsafe())
	}
	if isSet(opts.Breaks) {
		ro = append(ro, gmhtml.WithHardWraps())
	}
	return ro
}

// applyFrontMatter overlays deck directives onto opts.
func applyFrontMatter(opts Options, fm map[string]any) Options {
	if len(fm) == 0 {
		return opts
	}
	override := Options{}
	if v, ok := fm["theme"].(string); ok {
		override.Theme = v
	}
	if v, ok := fm["paginate"].(bool); ok {
		override.Paginate = Bool(v)
	}
	if v, ok := fm["html"].(bool); ok {
		override.HTML = Bool(v)
	}
	if v, ok := fm["size"].(string); ok {
		override.Size = v
	}
	return opts.Merge(&override)
}
