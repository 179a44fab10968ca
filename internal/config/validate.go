package config

import (
	"errors"
	"slices"
)

// Validate checks every setting and returns all problems joined.
func (c *Config) Validate() error {
	var errs []error
	bad := func(path, msg string, v any) {
		errs = append(errs, &ValidationError{Path: path, Message: msg, Value: v})
	}

	if c.Document.LargeFileThreshold <= 0 {
		bad("document.large_file_threshold", "must be positive", c.Document.LargeFileThreshold)
	}
	if c.Sync.Delay < 0 {
		bad("sync.delay", "must not be negative", c.Sync.Delay)
	}
	if c.AutoSave.Interval <= 0 {
		bad("autosave.interval", "must be positive", c.AutoSave.Interval)
	}
	if c.Render.Delay < 0 {
		bad("render.delay", "must not be negative", c.Render.Delay)
	}
	if c.Render.Timeout < 0 {
		bad("render.timeout", "must not be negative", c.Render.Timeout)
	}
	if !slices.Contains([]string{"16:9", "4:3"}, c.Render.Size) {
		bad("render.size", `must be "16:9" or "4:3"`, c.Render.Size)
	}
	if c.Navigation.ThumbnailWidth <= 0 {
		bad("navigation.thumbnail_width", "must be positive", c.Navigation.ThumbnailWidth)
	}
	if w := c.Navigation.ThumbnailPanelWidth; w < 150 || w > 400 {
		bad("navigation.thumbnail_panel_width", "must be between 150 and 400", w)
	}
	switch c.Storage.Backend {
	case "memory":
	case "file", "sqlite":
		if c.Storage.Path == "" {
			bad("storage.path", "required for backend "+c.Storage.Backend, c.Storage.Path)
		}
	default:
		bad("storage.backend", `must be "memory", "file" or "sqlite"`, c.Storage.Backend)
	}
	if c.Storage.Key == "" {
		bad("storage.key", "must not be empty", c.Storage.Key)
	}
	if c.Validation.Timeout < 0 {
		bad("validation.timeout", "must not be negative", c.Validation.Timeout)
	}
	if c.Server.Enabled && c.Server.Addr == "" {
		bad("server.addr", "required when the server is enabled", c.Server.Addr)
	}
	if !slices.Contains([]string{"", "text", "json"}, c.Log.Format) {
		bad("log.format", `must be "text" or "json"`, c.Log.Format)
	}

	seen := make(map[string]bool, len(c.Themes))
	for _, t := range c.Themes {
		switch {
		case t.ID == "":
			bad("themes.id", "must not be empty", t.ID)
		case seen[t.ID]:
			bad("themes.id", "duplicate theme", t.ID)
		}
		seen[t.ID] = true
		if t.File == "" {
			bad("themes.file", "must not be empty", t.ID)
		}
	}

	return errors.Join(errs...)
}
