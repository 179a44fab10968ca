package app

import (
	"context"
	"errors"
	"strings"

	"github.com/dshills/deckstorm/internal/document"
	"github.com/dshills/deckstorm/internal/navigation"
	"github.com/dshills/deckstorm/internal/render"
)

// Edit records local input. It reaches the store after the sync delay.
func (app *Application) Edit(text string) error {
	if err := app.check(); err != nil {
		return err
	}
	app.syncer.Edit(text)
	return nil
}

// Inject replaces the document with content from an external generator.
// The local buffer adopts it and any pending local push is dropped.
func (app *Application) Inject(content string) error {
	if err := app.check(); err != nil {
		return err
	}
	app.metrics.RecordInjection()
	app.store.UpdateContent(content, document.OriginExternal)
	app.logger.Info("content injected", "length", len(content))
	return nil
}

// Save persists the document now. Failures are also recorded on the
// store.
func (app *Application) Save(ctx context.Context) error {
	if err := app.check(); err != nil {
		return err
	}
	app.syncer.Flush()
	if !app.manager.Save(ctx) {
		if msg := app.store.State().Error; msg != "" {
			return NewComponentError("persist", "save", errors.New(msg))
		}
		return ErrSaveFailed
	}
	return nil
}

// Reset empties the document, forgets the render and erases the
// persisted snapshot.
func (app *Application) Reset(ctx context.Context) error {
	if err := app.check(); err != nil {
		return err
	}
	app.syncer.Edit("")
	app.syncer.Flush()
	app.store.ClearContent()
	app.pipeline.Clear()
	app.manager.ClearSavedContent(ctx)
	return nil
}

// SetAutoSave enables or disables the auto-save timer.
func (app *Application) SetAutoSave(enabled bool) {
	app.store.SetAutoSave(enabled)
}

// RetryRender replays the last render immediately.
func (app *Application) RetryRender() {
	app.pipeline.Retry()
}

// Navigate runs a named navigation action: "next", "previous", "first",
// "last", "zoom-in", "zoom-out", "reset-zoom", "fullscreen" or
// "thumbnails".
func (app *Application) Navigate(action string) (navigation.State, error) {
	nav := app.navigation
	switch strings.ToLower(action) {
	case "next":
		nav.GoToNext()
	case "previous", "prev":
		nav.GoToPrevious()
	case "first":
		nav.GoToFirst()
	case "last":
		nav.GoToLast()
	case "zoom-in":
		nav.ZoomIn()
	case "zoom-out":
		nav.ZoomOut()
	case "reset-zoom":
		nav.ResetZoom()
	case "fit":
		nav.FitToWindow()
	case "fullscreen":
		nav.ToggleFullscreen()
	case "thumbnails":
		nav.ToggleThumbnails()
	default:
		return nav.State(), ErrUnknownAction
	}
	return nav.State(), nil
}

// Deck returns the latest successful render, or nil.
func (app *Application) Deck() *render.Result {
	return app.pipeline.Result()
}

// Thumbnails returns previews of the current deck.
func (app *Application) Thumbnails() []navigation.Thumbnail {
	return app.navigation.Thumbnails()
}

// Status is a combined view of the application state.
type Status struct {
	Document   document.State
	Render     render.Status
	Navigation navigation.State
	Metrics    MetricsSnapshot
}

// Status returns the combined state.
func (app *Application) Status() Status {
	return Status{
		Document:   app.store.State(),
		Render:     app.pipeline.Status(),
		Navigation: app.navigation.State(),
		Metrics:    app.metrics.Snapshot(),
	}
}

func (app *Application) check() error {
	switch {
	case app.closed.Load():
		return ErrClosed
	case !app.started.Load():
		return ErrNotStarted
	}
	return nil
}
