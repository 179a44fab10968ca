// Package navigation manages the slide viewport: current slide, zoom,
// fullscreen and thumbnail panel state, derived from the latest render
// result.
package navigation

import (
	"log/slog"
	"maps"
	"math"
	"slices"
	"sync"

	"github.com/dshills/deckstorm/internal/render"
)

// ZoomLevels are the available zoom factors in ascending order.
var ZoomLevels = []float64{0.25, 0.5, 0.75, 1, 1.25, 1.5, 2}

// Thumbnail panel width bounds in pixels.
const (
	MinThumbnailPanelWidth     = 150
	MaxThumbnailPanelWidth     = 400
	DefaultThumbnailPanelWidth = 200
)

// State is a snapshot of the controller.
type State struct {
	CurrentSlide        int
	TotalSlides         int
	ZoomLevel           float64
	ShowThumbnails      bool
	IsFullscreen        bool
	ThumbnailPanelWidth int
}

// Options configure a Controller. Out-of-range values are clamped.
type Options struct {
	InitialSlide        int
	TotalSlides         int
	InitialZoom         float64
	ShowThumbnails      bool
	IsFullscreen        bool
	ThumbnailPanelWidth int

	// Thumbnail rendering.
	ThumbnailWidth   int    // target thumbnail width, default 200
	SlideSize        string // slide aspect ratio, default "16:9"
	ShowSlideNumbers bool

	// OnSlideChange is called with the new index after every slide change.
	OnSlideChange func(int)

	Logger *slog.Logger
}

// Listener receives the controller state after every change.
type Listener func(State)

// Controller is the navigation state machine. It is safe for concurrent
// use; callbacks run outside the lock.
type Controller struct {
	mu sync.RWMutex

	current        int
	total          int
	zoom           float64
	showThumbnails bool
	fullscreen     bool
	panelWidth     int

	result *render.Result

	thumbWidth  int
	slideSize   string
	showNumbers bool

	onSlideChange func(int)
	listeners     map[int]Listener
	nextID        int

	logger *slog.Logger
}

// New creates a controller from opts.
func New(opts Options) *Controller {
	total := max(1, opts.TotalSlides)
	c := &Controller{
		total:          total,
		current:        clamp(opts.InitialSlide, 0, total-1),
		zoom:           1,
		showThumbnails: opts.ShowThumbnails,
		fullscreen:     opts.IsFullscreen,
		panelWidth:     DefaultThumbnailPanelWidth,
		thumbWidth:     200,
		slideSize:      opts.SlideSize,
		showNumbers:    opts.ShowSlideNumbers,
		onSlideChange:  opts.OnSlideChange,
		listeners:      make(map[int]Listener),
		logger:         opts.Logger,
	}
	if opts.InitialZoom > 0 {
		c.zoom = nearestZoom(opts.InitialZoom)
	}
	if opts.ThumbnailPanelWidth != 0 {
		c.panelWidth = clamp(opts.ThumbnailPanelWidth, MinThumbnailPanelWidth, MaxThumbnailPanelWidth)
	}
	if opts.ThumbnailWidth > 0 {
		c.thumbWidth = opts.ThumbnailWidth
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	c.logger = c.logger.With("component", "navigation")
	return c
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stateLocked()
}

func (c *Controller) stateLocked() State {
	return State{
		CurrentSlide:        c.current,
		TotalSlides:         c.total,
		ZoomLevel:           c.zoom,
		ShowThumbnails:      c.showThumbnails,
		IsFullscreen:        c.fullscreen,
		ThumbnailPanelWidth: c.panelWidth,
	}
}

// Subscribe registers l and returns a function that removes it.
func (c *Controller) Subscribe(l Listener) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = l
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.listeners, id)
	}
}

// OnSlideChange replaces the slide change callback.
func (c *Controller) OnSlideChange(fn func(int)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onSlideChange = fn
}

// update applies fn under the lock and notifies if the state changed.
func (c *Controller) update(fn func()) {
	c.mu.Lock()
	before := c.stateLocked()
	fn()
	after := c.stateLocked()
	if before == after {
		c.mu.Unlock()
		return
	}
	onSlide := c.onSlideChange
	ids := slices.Sorted(maps.Keys(c.listeners))
	listeners := make([]Listener, len(ids))
	for i, id := range ids {
		listeners[i] = c.listeners[id]
	}
	c.mu.Unlock()

	if after.CurrentSlide != before.CurrentSlide {
		c.logger.Debug("slide changed", "from", before.CurrentSlide, "to", after.CurrentSlide)
		if onSlide != nil {
			onSlide(after.CurrentSlide)
		}
	}
	for _, l := range listeners {
		l(after)
	}
}

// SetResult adopts a new render result. A nil result counts as one
// slide. The current slide is pulled back when it falls outside the new
// range and is otherwise left alone.
func (c *Controller) SetResult(r *render.Result) {
	c.update(func() {
		c.result = r
		c.total = 1
		if r != nil {
			c.total = max(1, r.SlideCount)
		}
		if c.current > c.total-1 {
			c.current = c.total - 1
		}
	})
}

// Result returns the result thumbnails are derived from.
func (c *Controller) Result() *render.Result {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.result
}

// GoToSlide moves to index i, clamped into range.
func (c *Controller) GoToSlide(i int) {
	c.update(func() {
		c.current = clamp(i, 0, c.total-1)
	})
}

// GoToPrevious moves back one slide, stopping at the first.
func (c *Controller) GoToPrevious() {
	c.update(func() {
		c.current = clamp(c.current-1, 0, c.total-1)
	})
}

// GoToNext moves forward one slide, stopping at the last.
func (c *Controller) GoToNext() {
	c.update(func() {
		c.current = clamp(c.current+1, 0, c.total-1)
	})
}

// GoToFirst moves to the first slide.
func (c *Controller) GoToFirst() {
	c.GoToSlide(0)
}

// GoToLast moves to the last slide.
func (c *Controller) GoToLast() {
	c.update(func() {
		c.current = c.total - 1
	})
}

// CanGoPrevious reports whether GoToPrevious would move.
func (c *Controller) CanGoPrevious() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current > 0
}

// CanGoNext reports whether GoToNext would move.
func (c *Controller) CanGoNext() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current < c.total-1
}

// ToggleFullscreen flips fullscreen mode.
func (c *Controller) ToggleFullscreen() {
	c.update(func() {
		c.fullscreen = !c.fullscreen
	})
}

// ToggleThumbnails flips the thumbnail panel.
func (c *Controller) ToggleThumbnails() {
	c.update(func() {
		c.showThumbnails = !c.showThumbnails
	})
}

// SetThumbnailPanelWidth sets the panel width, clamped to
// [MinThumbnailPanelWidth, MaxThumbnailPanelWidth].
func (c *Controller) SetThumbnailPanelWidth(w int) {
	c.update(func() {
		c.panelWidth = clamp(w, MinThumbnailPanelWidth, MaxThumbnailPanelWidth)
	})
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}

// nearestZoom snaps level to the closest entry of ZoomLevels. Ties go
// to the smaller level.
func nearestZoom(level float64) float64 {
	best := ZoomLevels[0]
	for _, z := range ZoomLevels[1:] {
		if math.Abs(z-level) < math.Abs(best-level) {
			best = z
		}
	}
	return best
}
