// Package app is the deckstorm application root. It constructs every
// component once, wires their notifications together and exposes the
// operations used by the presenter and the inject API.
package app

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dshills/deckstorm/internal/config"
	"github.com/dshills/deckstorm/internal/document"
	"github.com/dshills/deckstorm/internal/event"
	"github.com/dshills/deckstorm/internal/navigation"
	"github.com/dshills/deckstorm/internal/persist"
	luaplugin "github.com/dshills/deckstorm/internal/plugin/lua"
	"github.com/dshills/deckstorm/internal/render"
	"github.com/dshills/deckstorm/internal/storage"
)

// Application owns the document store and everything derived from it.
type Application struct {
	mu  sync.RWMutex
	cfg *config.Config

	logger  *slog.Logger
	metrics *Metrics

	// Core state
	store *document.Store
	bus   *event.Bus

	// Persistence
	kv        storage.KV
	ownsKV    bool
	validator *luaplugin.Validator
	manager   *persist.Manager
	syncer    *persist.Syncer

	// Rendering and viewport
	themes     *render.Registry
	pipeline   *render.Pipeline
	navigation *navigation.Controller

	unsubscribe []func()
	renderStart atomic.Int64

	started atomic.Bool
	closed  atomic.Bool
}

// Options configures the application.
type Options struct {
	// Config is the configuration in effect. nil means config.Default().
	Config *config.Config

	// Logger is the base logger. nil means slog.Default().
	Logger *slog.Logger

	// Compiler replaces the Markdown compiler.
	Compiler render.Compiler

	// KV replaces the store selected by Config.Storage. The application
	// does not close a supplied KV.
	KV storage.KV

	// Clock replaces time.Now for the document store and pipeline.
	Clock func() time.Time
}

// New creates the application. Nothing runs until Start.
func New(opts Options) (*Application, error) {
	app := &Application{
		cfg:     opts.Config,
		logger:  opts.Logger,
		metrics: NewMetrics(),
	}
	if app.cfg == nil {
		app.cfg = config.Default()
	}
	if app.logger == nil {
		app.logger = slog.Default()
	}

	if err := app.bootstrap(opts); err != nil {
		app.shutdown()
		return nil, err
	}
	return app, nil
}

// Config returns the configuration in effect.
func (app *Application) Config() *config.Config {
	app.mu.RLock()
	defer app.mu.RUnlock()
	return app.cfg
}

// Store returns the document store.
func (app *Application) Store() *document.Store {
	return app.store
}

// Bus returns the application event bus.
func (app *Application) Bus() *event.Bus {
	return app.bus
}

// Pipeline returns the render pipeline.
func (app *Application) Pipeline() *render.Pipeline {
	return app.pipeline
}

// Themes returns the theme registry.
func (app *Application) Themes() *render.Registry {
	return app.themes
}

// Navigation returns the viewport controller.
func (app *Application) Navigation() *navigation.Controller {
	return app.navigation
}

// Syncer returns the local edit buffer.
func (app *Application) Syncer() *persist.Syncer {
	return app.syncer
}

// Persistence returns the snapshot manager.
func (app *Application) Persistence() *persist.Manager {
	return app.manager
}

// Metrics returns the application's metrics.
func (app *Application) Metrics() *Metrics {
	return app.metrics
}

// Start seeds the document from the persisted snapshot or initial and
// starts auto-save. It reports where the content came from.
func (app *Application) Start(ctx context.Context, initial string) (persist.InitSource, error) {
	if app.closed.Load() {
		return "", ErrClosed
	}
	if !app.started.CompareAndSwap(false, true) {
		return "", nil
	}

	source := app.syncer.Init(ctx, initial)
	app.manager.Start()
	app.logger.Info("application started", "source", string(source))
	return source, nil
}

// Close stops timers, drains the bus and releases storage. Pending edits
// are pushed to the store first so a final save can see them.
func (app *Application) Close(ctx context.Context) error {
	if !app.closed.CompareAndSwap(false, true) {
		return nil
	}
	if app.started.Load() {
		app.syncer.Flush()
	}
	err := app.bus.Close(ctx)
	if cerr := app.shutdown(); err == nil {
		err = cerr
	}
	app.logger.Info("application stopped")
	return err
}

func (app *Application) shutdown() error {
	for i := len(app.unsubscribe) - 1; i >= 0; i-- {
		app.unsubscribe[i]()
	}
	app.unsubscribe = nil

	if app.manager != nil {
		app.manager.Close()
	}
	if app.syncer != nil {
		app.syncer.Close()
	}
	if app.pipeline != nil {
		app.pipeline.Close()
	}

	var err error
	if app.validator != nil {
		if verr := app.validator.Close(); verr != nil {
			err = NewComponentError("validator", "close", verr)
		}
	}
	if app.ownsKV && app.kv != nil {
		if kerr := app.kv.Close(); kerr != nil && err == nil {
			err = NewComponentError("storage", "close", kerr)
		}
	}
	return err
}
