package app

import (
	"slices"

	"github.com/dshills/deckstorm/internal/config"
)

// ApplyConfig applies a reloaded configuration. Themes, render defaults
// and auto-save settings take effect immediately and the document is
// re-rendered. Storage, sync and server settings need a restart.
func (app *Application) ApplyConfig(cfg *config.Config) error {
	if app.closed.Load() {
		return ErrClosed
	}

	app.mu.Lock()
	prev := app.cfg
	app.cfg = cfg
	app.mu.Unlock()

	if err := app.loadThemes(cfg); err != nil {
		return err
	}
	for _, t := range prev.Themes {
		if !hasTheme(cfg.Themes, t.ID) {
			if err := app.themes.RemoveTheme(t.ID); err != nil {
				app.logger.Warn("removing theme", "theme", t.ID, "error", err)
			}
		}
	}

	app.pipeline.SetDefaults(renderDefaults(cfg))
	app.manager.SetInterval(cfg.AutoSave.Interval.Std())
	app.store.SetAutoSave(cfg.AutoSave.Enabled)

	if needsRestart(prev, cfg) {
		app.logger.Warn("some settings change only after restart")
	}

	if content := app.store.Content(); content != "" {
		app.pipeline.Render(content, nil)
	}
	app.logger.Info("configuration applied", "theme", app.themes.Current().ID)
	return nil
}

func hasTheme(themes []config.ThemeConfig, id string) bool {
	return slices.ContainsFunc(themes, func(t config.ThemeConfig) bool { return t.ID == id })
}

func needsRestart(prev, next *config.Config) bool {
	return prev.Storage != next.Storage ||
		prev.Sync != next.Sync ||
		prev.Server != next.Server ||
		prev.Validation != next.Validation ||
		prev.Document != next.Document
}
