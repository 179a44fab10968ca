package config

import (
	"log/slog"
	"os"
	"sync"

	"github.com/dshills/deckstorm/internal/watcher"
)

// ReloadFunc receives each reloaded configuration. When reloading fails
// cfg is nil and err describes the problem; the previous configuration
// stays in effect.
type ReloadFunc func(cfg *Config, err error)

// Watcher reloads a config file when it changes.
type Watcher struct {
	path   string
	lookup LookupFunc
	fn     ReloadFunc
	logger *slog.Logger
	fw     *watcher.Watcher

	mu      sync.Mutex
	current *Config
}

// Watch starts watching path. initial is the configuration already in
// effect and is returned by Current until the first successful reload.
func Watch(path string, initial *Config, fn ReloadFunc, opts ...watcher.Option) (*Watcher, error) {
	return watchWithEnv(path, initial, os.LookupEnv, fn, opts...)
}

func watchWithEnv(path string, initial *Config, lookup LookupFunc, fn ReloadFunc, opts ...watcher.Option) (*Watcher, error) {
	w := &Watcher{
		path:    path,
		lookup:  lookup,
		fn:      fn,
		logger:  slog.Default().With("component", "config"),
		current: initial,
	}

	fw, err := watcher.New(w.handle, opts...)
	if err != nil {
		return nil, err
	}
	if err := fw.Watch(path); err != nil {
		fw.Close()
		return nil, err
	}
	w.fw = fw
	return w, nil
}

// Current returns the configuration in effect.
func (w *Watcher) Current() *Config {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.fw.Close()
}

func (w *Watcher) handle(ev watcher.Event) {
	if ev.Op.Has(watcher.OpRemove) || ev.Op.Has(watcher.OpRename) {
		if _, err := os.Stat(w.path); err != nil {
			w.logger.Warn("config file removed", "path", w.path)
			return
		}
	}

	cfg, err := LoadWithEnv(w.path, w.lookup)
	if err != nil {
		w.logger.Error("config reload failed", "path", w.path, "error", err)
		if w.fn != nil {
			w.fn(nil, err)
		}
		return
	}

	w.mu.Lock()
	w.current = cfg
	w.mu.Unlock()

	w.logger.Info("config reloaded", "path", w.path)
	if w.fn != nil {
		w.fn(cfg, nil)
	}
}
