// Package presenter draws the deck in a terminal and feeds key presses to
// the navigation controller.
package presenter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/deckstorm/internal/app"
	"github.com/dshills/deckstorm/internal/input/key"
	"github.com/dshills/deckstorm/internal/navigation"
	"github.com/dshills/deckstorm/internal/render"
)

// ErrQuit is returned by Run when the user quits.
var ErrQuit = errors.New("quit requested")

// Backend is the application surface the presenter needs.
type Backend interface {
	Save(ctx context.Context) error
	Navigation() *navigation.Controller
	Deck() *render.Result
	Status() app.Status
}

// Presenter owns a tcell screen.
type Presenter struct {
	screen  tcell.Screen
	backend Backend
	logger  *slog.Logger
	theme   func() string

	mu      sync.Mutex
	message string
	msgErr  bool
	msgAt   time.Time
}

// Option configures a Presenter.
type Option func(*Presenter)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Presenter) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithThemeName supplies the theme name shown in the title bar.
func WithThemeName(fn func() string) Option {
	return func(p *Presenter) {
		p.theme = fn
	}
}

// New creates a presenter drawing to screen. The screen is initialised
// by Run.
func New(screen tcell.Screen, backend Backend, opts ...Option) *Presenter {
	p := &Presenter{
		screen:  screen,
		backend: backend,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With("component", "presenter")
	return p
}

// Refresh asks the event loop to redraw. Safe from any goroutine.
func (p *Presenter) Refresh() {
	_ = p.screen.PostEvent(tcell.NewEventInterrupt(nil))
}

type quitSignal struct{}

// Run initialises the screen and processes events until the user quits
// or ctx is canceled. It returns ErrQuit for a user quit and nil when
// ctx ends.
func (p *Presenter) Run(ctx context.Context) error {
	if err := p.screen.Init(); err != nil {
		return fmt.Errorf("initialising terminal: %w", err)
	}
	defer p.screen.Fini()

	stop := context.AfterFunc(ctx, func() {
		_ = p.screen.PostEvent(tcell.NewEventInterrupt(quitSignal{}))
	})
	defer stop()

	p.draw()
	for {
		ev := p.screen.PollEvent()
		switch ev := ev.(type) {
		case nil:
			return nil
		case *tcell.EventInterrupt:
			if _, ok := ev.Data().(quitSignal); ok {
				return nil
			}
		case *tcell.EventResize:
			p.screen.Sync()
		case *tcell.EventKey:
			if quit := p.handleKey(ctx, key.FromTcell(ev)); quit {
				return ErrQuit
			}
		}
		p.draw()
	}
}

// handleKey applies one key press. It reports whether to quit.
func (p *Presenter) handleKey(ctx context.Context, ev key.Event) bool {
	switch {
	case ev.Modifiers.HasCtrl() && ev.Rune == 'c':
		return true
	case ev.Modifiers == key.ModNone && ev.Rune == 'q':
		return true
	case ev.Modifiers.HasCtrl() && ev.Rune == 's':
		if err := p.backend.Save(ctx); err != nil {
			p.setMessage("save failed: "+err.Error(), true)
		} else {
			p.setMessage("saved", false)
		}
		return false
	case ev.Key == key.KeyEscape:
		if p.backend.Navigation().State().IsFullscreen {
			p.backend.Navigation().ToggleFullscreen()
		}
		return false
	}

	if !p.backend.Navigation().HandleKey(ev, key.TargetNone) {
		p.logger.Debug("unhandled key", "key", ev.String())
	}
	return false
}

func (p *Presenter) setMessage(msg string, isErr bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.message, p.msgErr, p.msgAt = msg, isErr, time.Now()
}

func (p *Presenter) currentMessage() (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.message == "" || time.Since(p.msgAt) > 5*time.Second {
		return "", false
	}
	return p.message, p.msgErr
}

var (
	styleBar    = tcell.StyleDefault.Reverse(true)
	styleTitle  = tcell.StyleDefault.Bold(true)
	styleNotes  = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleError  = tcell.StyleDefault.Foreground(tcell.ColorRed)
	styleActive = tcell.StyleDefault.Reverse(true)
)

func (p *Presenter) draw() {
	s := p.screen
	s.Clear()
	w, h := s.Size()
	if w <= 0 || h <= 0 {
		return
	}

	st := p.backend.Status()
	nav := st.Navigation
	deck := p.backend.Deck()

	if !nav.IsFullscreen {
		drawLine(s, 0, 0, w, p.titleBar(st), styleBar)
		drawLine(s, 0, h-1, w, p.statusBar(st), p.statusStyle(st))
	}

	top, bottom := 1, h-1
	if nav.IsFullscreen {
		top, bottom = 0, h
	}
	left := 0
	if nav.ShowThumbnails && !nav.IsFullscreen && deck != nil {
		left = p.drawThumbnails(top, bottom, nav)
	}

	if deck == nil || nav.CurrentSlide >= len(deck.Slides) {
		drawLine(s, left+1, top+1, w-left-1, "(no slides)", styleNotes)
		s.Show()
		return
	}

	slide := deck.Slides[nav.CurrentSlide]
	y := top + 1
	for i, line := range render.PlainLines(slide.Content) {
		if y >= bottom {
			break
		}
		style := tcell.StyleDefault
		if i == 0 && line == slide.Title {
			style = styleTitle
		}
		drawLine(s, left+1, y, w-left-2, line, style)
		y++
	}

	if notes := strings.TrimSpace(slide.Notes); notes != "" && !nav.IsFullscreen && bottom-2 > y {
		drawLine(s, left+1, bottom-2, w-left-2, "notes: "+strings.Join(strings.Fields(notes), " "), styleNotes)
	}
	s.Show()
}

func (p *Presenter) titleBar(st app.Status) string {
	nav := st.Navigation
	parts := []string{
		"deckstorm",
		fmt.Sprintf("slide %d/%d", nav.CurrentSlide+1, nav.TotalSlides),
		fmt.Sprintf("zoom %d%%", int(nav.ZoomLevel*100)),
	}
	if p.theme != nil {
		parts = append(parts, "theme "+p.theme())
	}
	parts = append(parts, "render "+string(st.Render.State))
	return " " + strings.Join(parts, " | ")
}

func (p *Presenter) statusBar(st app.Status) string {
	if msg, _ := p.currentMessage(); msg != "" {
		return " " + msg
	}
	if st.Render.Err != nil {
		return " " + st.Render.Err.Error()
	}
	if st.Document.Error != "" {
		return " " + st.Document.Error
	}

	doc := st.Document
	state := "saved"
	if doc.IsModified {
		state = "modified"
	}
	if !doc.LastSaveTime.IsZero() {
		state += " (last save " + doc.LastSaveTime.Format("15:04:05") + ")"
	}
	return fmt.Sprintf(" %s | %d chars | Ctrl+S save | q quit", state, doc.Length)
}

func (p *Presenter) statusStyle(st app.Status) tcell.Style {
	msg, isErr := p.currentMessage()
	switch {
	case msg != "" && isErr:
		return styleError
	case msg != "":
		return styleBar
	case st.Render.Err != nil || st.Document.Error != "":
		return styleError
	}
	return styleBar
}

// drawThumbnails lists slide titles down the left edge and returns the
// column the slide view starts at.
func (p *Presenter) drawThumbnails(top, bottom int, nav navigation.State) int {
	thumbs := p.backend.Navigation().Thumbnails()
	width := min(max(nav.ThumbnailPanelWidth/8, 12), 40)

	for i, th := range thumbs {
		y := top + i
		if y >= bottom {
			break
		}
		style := tcell.StyleDefault
		if th.IsActive {
			style = styleActive
		}
		drawLine(p.screen, 0, y, width-1, fmt.Sprintf("%2d %s", th.Index+1, th.Title), style)
	}
	for y := top; y < bottom; y++ {
		p.screen.SetContent(width-1, y, tcell.RuneVLine, nil, styleNotes)
	}
	return width
}
