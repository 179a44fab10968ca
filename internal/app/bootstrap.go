package app

import (
	"context"

	"github.com/dshills/deckstorm/internal/config"
	"github.com/dshills/deckstorm/internal/document"
	"github.com/dshills/deckstorm/internal/event"
	"github.com/dshills/deckstorm/internal/navigation"
	"github.com/dshills/deckstorm/internal/persist"
	luaplugin "github.com/dshills/deckstorm/internal/plugin/lua"
	"github.com/dshills/deckstorm/internal/render"
	"github.com/dshills/deckstorm/internal/storage"
)

// bootstrap initializes all components in dependency order.
func (app *Application) bootstrap(opts Options) error {
	cfg := app.cfg

	// 1. Event bus
	app.bus = event.NewBus(
		event.WithLogger(app.logger),
		event.WithErrorHandler(func(err error) {
			app.logger.Warn("event handler failed", "error", err)
		}),
	)

	// 2. Document store
	storeOpts := []document.Option{
		document.WithLargeFileThreshold(cfg.Document.LargeFileThreshold),
		document.WithAutoSave(cfg.AutoSave.Enabled),
	}
	if opts.Clock != nil {
		storeOpts = append(storeOpts, document.WithClock(opts.Clock))
	}
	app.store = document.NewStore(storeOpts...)

	// 3. Durable storage
	if opts.KV != nil {
		app.kv = opts.KV
	} else {
		kv, err := storage.Open(cfg.Storage.Backend, cfg.Storage.Path)
		if err != nil {
			return NewComponentError("storage", "open", err)
		}
		app.kv, app.ownsKV = kv, true
	}

	// 4. Save validator
	var validator persist.Validator = persist.AcceptAll
	if cfg.Validation.Script != "" {
		v, err := luaplugin.NewValidatorFromFile(cfg.Validation.Script,
			luaplugin.WithExecutionTimeout(cfg.Validation.Timeout.Std()))
		if err != nil {
			return NewComponentError("validator", "load", err)
		}
		app.validator, validator = v, v
	}

	// 5. Persistence
	app.manager = persist.NewManager(app.store, app.kv,
		persist.WithKey(cfg.Storage.Key),
		persist.WithValidator(validator),
		persist.WithInterval(cfg.AutoSave.Interval.Std()),
		persist.WithLogger(app.logger),
		persist.WithHooks(persist.Hooks{
			OnSaved:  app.handleSaved,
			OnFailed: app.handleSaveFailed,
		}),
	)
	app.syncer = persist.NewSyncer(app.store,
		persist.WithSyncDelay(cfg.Sync.Delay.Std()),
		persist.WithSnapshotSource(app.manager),
		persist.WithSyncLogger(app.logger),
	)

	// 6. Themes
	app.themes = render.NewRegistry()
	if err := app.loadThemes(cfg); err != nil {
		return err
	}

	// 7. Render pipeline
	pipeOpts := []render.PipelineOption{
		render.WithDelay(cfg.Render.Delay.Std()),
		render.WithDefaults(renderDefaults(cfg)),
		render.WithThemes(app.themes),
		render.WithLogger(app.logger),
		render.WithTimeout(cfg.Render.Timeout.Std()),
	}
	if opts.Clock != nil {
		pipeOpts = append(pipeOpts, render.WithPipelineClock(opts.Clock))
	}
	app.pipeline = render.NewPipeline(opts.Compiler, pipeOpts...)

	// 8. Navigation
	app.navigation = navigation.New(navigation.Options{
		ShowThumbnails:      cfg.Navigation.ShowThumbnails,
		ThumbnailPanelWidth: cfg.Navigation.ThumbnailPanelWidth,
		ThumbnailWidth:      cfg.Navigation.ThumbnailWidth,
		SlideSize:           cfg.Render.Size,
		ShowSlideNumbers:    cfg.Navigation.ShowSlideNumbers,
		Logger:              app.logger,
	})

	// 9. Wiring
	app.subscribe()
	return nil
}

// loadThemes registers the configured custom themes and selects the
// configured theme. An unknown theme id is logged and the current theme
// is kept.
func (app *Application) loadThemes(cfg *config.Config) error {
	for _, tc := range cfg.Themes {
		t := render.Theme{
			ID:          tc.ID,
			Name:        tc.Name,
			DisplayName: tc.DisplayName,
			Description: tc.Description,
		}
		if _, err := app.themes.LoadThemeFile(t, tc.File); err != nil {
			return NewComponentError("themes", "load "+tc.ID, err)
		}
	}
	if cfg.Render.Theme != "" {
		if err := app.themes.SetTheme(cfg.Render.Theme); err != nil {
			app.logger.Warn("configured theme unavailable", "theme", cfg.Render.Theme, "error", err)
		}
	}
	return nil
}

// renderDefaults maps the render section to pipeline defaults. The theme
// is left empty so the registry's current theme applies.
func renderDefaults(cfg *config.Config) render.Options {
	return render.Options{
		HTML:     render.Bool(cfg.Render.HTML),
		Breaks:   render.Bool(cfg.Render.Breaks),
		Paginate: render.Bool(cfg.Render.Paginate),
		Size:     cfg.Render.Size,
	}
}

// publish sends ev on the bus without blocking the caller.
func (app *Application) publish(ev any) {
	if err := app.bus.PublishAsync(context.Background(), ev); err != nil && !app.closed.Load() {
		app.logger.Debug("publish failed", "error", err)
	}
}
