package render

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestMarkdownCompiler_Sections(t *testing.T) {
	c := NewMarkdownCompiler(NewRegistry())
	out, err := c.Compile(context.Background(), "# A\n\n---\n\n# B\n\n---\n\n# C", DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if len(out.Sections) != 3 {
		t.Fatalf("sections = %d, want 3", len(out.Sections))
	}
	if !strings.Contains(out.HTML, `<section id="2" data-slide="2">`) {
		t.Errorf("HTML missing second section: %s", out.HTML)
	}
	if !strings.Contains(out.HTML, `class="deckstorm theme-default"`) {
		t.Errorf("HTML missing theme wrapper: %s", out.HTML)
	}
	if !strings.Contains(out.CSS, "width:1280px") {
		t.Errorf("CSS missing slide size: %s", out.CSS)
	}
}

func TestMarkdownCompiler_SeparatorInsideFence(t *testing.T) {
	c := NewMarkdownCompiler(nil)
	out, err := c.Compile(context.Background(), "# A\n\n```\n---\n```\n", DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if len(out.Sections) != 1 {
		t.Errorf("sections = %d, fence separator split the slide", len(out.Sections))
	}
}

func TestMarkdownCompiler_DirectiveAfterCodeSpan(t *testing.T) {
	c := NewMarkdownCompiler(nil)
	markup := "# A\n\n---\n\nUse `<style>` for CSS\n\n<!-- _class: lead -->\n"
	out, err := c.Compile(context.Background(), markup, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if len(out.Sections) != 2 {
		t.Fatalf("sections = %d, want 2", len(out.Sections))
	}
	if out.Sections[1].Class != "lead" {
		t.Errorf("class = %q, want lead", out.Sections[1].Class)
	}
}

func TestMarkdownCompiler_FrontMatter(t *testing.T) {
	reg := NewRegistry()
	c := NewMarkdownCompiler(reg)
	markup := "---\ntheme: gaia\npaginate: true\nclass: lead\nsize: \"4:3\"\n---\n\n# One\n\n---\n\n<!-- _class: plain -->\n<!-- _paginate: false -->\n# Two"

	out, err := c.Compile(context.Background(), markup, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if len(out.Sections) != 2 {
		t.Fatalf("sections = %d, want 2", len(out.Sections))
	}
	if !strings.Contains(out.HTML, "theme-gaia") {
		t.Error("front matter theme ignored")
	}
	if out.Sections[0].Class != "lead" || out.Sections[1].Class != "plain" {
		t.Errorf("classes = %q, %q", out.Sections[0].Class, out.Sections[1].Class)
	}
	if !strings.Contains(out.Sections[0].HTML, `class="pagination"`) {
		t.Error("first slide not paginated")
	}
	if strings.Contains(out.Sections[1].HTML, `class="pagination"`) {
		t.Error("_paginate: false ignored")
	}
	if !strings.Contains(out.CSS, "width:960px") {
		t.Errorf("size directive ignored: %s", out.CSS)
	}
}

func TestMarkdownCompiler_InvalidFrontMatter(t *testing.T) {
	c := NewMarkdownCompiler(nil)
	_, err := c.Compile(context.Background(), "---\ntheme: [unclosed\n---\n# A", DefaultOptions())

	var re *Error
	if !errors.As(err, &re) || re.Type != ErrorParse {
		t.Fatalf("err = %v, want parse error", err)
	}
}

func TestMarkdownCompiler_HTMLOption(t *testing.T) {
	c := NewMarkdownCompiler(nil)
	markup := "<div class=\"x\">raw</div>"

	out, _ := c.Compile(context.Background(), markup, DefaultOptions())
	if strings.Contains(out.Sections[0].HTML, `<div class="x">`) {
		t.Error("raw HTML passed through with HTML disabled")
	}

	opts := DefaultOptions()
	opts.HTML = Bool(true)
	out, _ = c.Compile(context.Background(), markup, opts)
	if !strings.Contains(out.Sections[0].HTML, `<div class="x">`) {
		t.Errorf("raw HTML dropped with HTML enabled: %s", out.Sections[0].HTML)
	}
}

func TestMarkdownCompiler_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewMarkdownCompiler(nil).Compile(ctx, "# A", DefaultOptions())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
