package app

import (
	"time"

	"github.com/dshills/deckstorm/internal/document"
	"github.com/dshills/deckstorm/internal/event"
	"github.com/dshills/deckstorm/internal/navigation"
	"github.com/dshills/deckstorm/internal/persist"
	"github.com/dshills/deckstorm/internal/render"
)

const eventSource = "app"

// subscribe connects the components:
//
//	store content change -> pipeline.Render
//	pipeline transition  -> navigation.SetResult
//
// and mirrors every notification onto the bus.
func (app *Application) subscribe() {
	app.unsubscribe = append(app.unsubscribe,
		app.store.Subscribe(app.handleDocumentChange),
		app.pipeline.Subscribe(app.handleRender),
		app.navigation.Subscribe(app.handleNavigation),
	)
}

func (app *Application) handleDocumentChange(c document.Change) {
	if c.ContentChanged() {
		app.pipeline.Render(c.Current.Content, nil)
	}
	if c.Previous == c.Current {
		return
	}
	app.publish(event.NewEvent(TopicDocumentChanged, DocumentChanged{
		Origin:     c.Origin.String(),
		Length:     c.Current.Length,
		IsModified: c.Current.IsModified,
		IsSynced:   c.Current.IsSynced,
	}, eventSource))
}

func (app *Application) handleRender(s render.Status, r *render.Result) {
	app.navigation.SetResult(r)

	payload := RenderStatus{State: s.State, RenderCount: s.RenderCount}
	if s.Err != nil {
		payload.Error = s.Err.Error()
		payload.ErrorType = string(s.Err.Type)
	}
	app.publish(event.NewEvent(TopicRenderStatus, payload, eventSource))

	switch s.State {
	case render.StateRendering:
		app.renderStart.Store(time.Now().UnixNano())
		return
	case render.StateSuccess, render.StateError:
	default:
		return
	}

	var d time.Duration
	if start := app.renderStart.Swap(0); start != 0 {
		d = time.Since(time.Unix(0, start))
	}
	app.metrics.RecordRender(d, s.State == render.StateError)

	if s.State == render.StateSuccess && r != nil {
		app.publish(event.NewEvent(TopicRenderCompleted, RenderCompleted{
			SlideCount:  r.SlideCount,
			RenderCount: s.RenderCount,
			Duration:    d,
		}, eventSource))
	}
}

func (app *Application) handleNavigation(s navigation.State) {
	app.publish(event.NewEvent(TopicNavigationChanged, NavigationChanged{State: s}, eventSource))
}

func (app *Application) handleSaved(snap persist.Snapshot, trigger string) {
	app.metrics.RecordSave(trigger == "auto")
	app.publish(event.NewEvent(TopicPersistSaved, PersistSaved{
		Trigger:   trigger,
		Timestamp: snap.Time(),
		Bytes:     len(snap.Content),
	}, eventSource))
}

func (app *Application) handleSaveFailed(err error, trigger string) {
	app.metrics.RecordSaveFailure()
	app.publish(event.NewEvent(TopicPersistFailed, PersistFailed{
		Trigger: trigger,
		Error:   err.Error(),
	}, eventSource))
}
