package navigation

import (
	"fmt"
	"math"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/dshills/deckstorm/internal/render"
)

// Dimensions is the thumbnail box and the scale applied to the slide.
type Dimensions struct {
	Width  int
	Height int
	Scale  float64
}

// Thumbnail is a scaled preview of one slide.
type Thumbnail struct {
	Index      int
	HTML       string
	Title      string
	Dimensions Dimensions
	IsActive   bool
}

var thumbnailPolicy = newThumbnailPolicy()

func newThumbnailPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").Globally()
	return p
}

// Thumbnails derives previews from the current result and slide. It
// returns nil when there is no result.
func (c *Controller) Thumbnails() []Thumbnail {
	c.mu.RLock()
	r := c.result
	current := c.current
	targetW := c.thumbWidth
	size := c.slideSize
	numbers := c.showNumbers
	c.mu.RUnlock()

	if r == nil {
		return nil
	}

	baseW, baseH := render.SlideSize(size)
	scale := float64(targetW) / float64(baseW)
	dims := Dimensions{
		Width:  targetW,
		Height: int(math.Round(float64(baseH) * scale)),
		Scale:  scale,
	}

	thumbs := make([]Thumbnail, len(r.Slides))
	for i, s := range r.Slides {
		title := s.Title
		if title == "" {
			title = render.ExtractTitle(s.Content)
		}
		if title == "" {
			title = fmt.Sprintf("Slide %d", i+1)
		}
		thumbs[i] = Thumbnail{
			Index:      i,
			HTML:       thumbnailHTML(s, i, dims, baseW, baseH, numbers),
			Title:      title,
			Dimensions: dims,
			IsActive:   i == current,
		}
	}
	return thumbs
}

func thumbnailHTML(s render.Slide, i int, d Dimensions, baseW, baseH int, numbers bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<div class="thumbnail" data-slide="%d" style="width:%dpx;height:%dpx;overflow:hidden;position:relative">`,
		i, d.Width, d.Height)
	fmt.Fprintf(&b, `<div class="thumbnail-content" style="width:%dpx;height:%dpx;transform:scale(%.4f);transform-origin:top left">`,
		baseW, baseH, d.Scale)
	b.WriteString(thumbnailPolicy.Sanitize(s.Content))
	b.WriteString(`</div>`)
	if numbers {
		fmt.Fprintf(&b, `<span class="slide-number">%d</span>`, i+1)
	}
	b.WriteString(`</div>`)
	return b.String()
}
