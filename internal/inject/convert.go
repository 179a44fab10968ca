package inject

import (
	"errors"
	"fmt"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
)

// Content formats accepted by the inject endpoint.
const (
	FormatMarkdown = "markdown"
	FormatHTML     = "html"
)

// ErrUnsupportedFormat is returned for an unknown content format.
var ErrUnsupportedFormat = errors.New("unsupported content format")

// Converter turns generator output into deck markup.
type Converter struct {
	md *converter.Converter
}

// NewConverter creates a converter with CommonMark and table support.
// Horizontal rules are written as "---" so they split slides.
func NewConverter() *Converter {
	return &Converter{
		md: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(
					commonmark.WithHorizontalRule("---"),
				),
				table.NewTablePlugin(),
			),
		),
	}
}

// ToMarkup returns content as deck markup. Markdown passes through;
// HTML is converted. An empty format means markdown.
func (c *Converter) ToMarkup(content, format string) (string, error) {
	switch strings.ToLower(format) {
	case "", FormatMarkdown:
		return content, nil
	case FormatHTML:
		md, err := c.md.ConvertString(content)
		if err != nil {
			return "", fmt.Errorf("converting html: %w", err)
		}
		return md, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}
