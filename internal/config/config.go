package config

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete deckstorm configuration.
type Config struct {
	Document   DocumentConfig   `toml:"document" yaml:"document"`
	Sync       SyncConfig       `toml:"sync" yaml:"sync"`
	AutoSave   AutoSaveConfig   `toml:"autosave" yaml:"autosave"`
	Render     RenderConfig     `toml:"render" yaml:"render"`
	Navigation NavigationConfig `toml:"navigation" yaml:"navigation"`
	Storage    StorageConfig    `toml:"storage" yaml:"storage"`
	Validation ValidationConfig `toml:"validation" yaml:"validation"`
	Server     ServerConfig     `toml:"server" yaml:"server"`
	Log        LogConfig        `toml:"log" yaml:"log"`
	Themes     []ThemeConfig    `toml:"themes" yaml:"themes"`
}

// DocumentConfig configures the document store.
type DocumentConfig struct {
	// LargeFileThreshold is the rune count above which a document is large.
	LargeFileThreshold int `toml:"large_file_threshold" yaml:"large_file_threshold"`
}

// SyncConfig configures the local edit buffer.
type SyncConfig struct {
	// Delay is the quiet period before edits reach the store.
	Delay Duration `toml:"delay" yaml:"delay"`
}

// AutoSaveConfig configures periodic saving.
type AutoSaveConfig struct {
	Enabled  bool     `toml:"enabled" yaml:"enabled"`
	Interval Duration `toml:"interval" yaml:"interval"`
}

// RenderConfig configures the render pipeline and its defaults.
type RenderConfig struct {
	Delay    Duration `toml:"delay" yaml:"delay"`
	Timeout  Duration `toml:"timeout" yaml:"timeout"`
	Theme    string   `toml:"theme" yaml:"theme"`
	HTML     bool     `toml:"html" yaml:"html"`
	Breaks   bool     `toml:"breaks" yaml:"breaks"`
	Paginate bool     `toml:"paginate" yaml:"paginate"`
	Size     string   `toml:"size" yaml:"size"`
}

// NavigationConfig configures the viewport controller.
type NavigationConfig struct {
	ThumbnailWidth      int  `toml:"thumbnail_width" yaml:"thumbnail_width"`
	ThumbnailPanelWidth int  `toml:"thumbnail_panel_width" yaml:"thumbnail_panel_width"`
	ShowSlideNumbers    bool `toml:"show_slide_numbers" yaml:"show_slide_numbers"`
	ShowThumbnails      bool `toml:"show_thumbnails" yaml:"show_thumbnails"`
}

// StorageConfig selects the snapshot store.
type StorageConfig struct {
	// Backend is "memory", "file" or "sqlite".
	Backend string `toml:"backend" yaml:"backend"`
	// Path is the directory (file) or database path (sqlite).
	Path string `toml:"path" yaml:"path"`
	// Key is the snapshot key.
	Key string `toml:"key" yaml:"key"`
}

// ValidationConfig names an optional Lua save validator.
type ValidationConfig struct {
	Script  string   `toml:"script" yaml:"script"`
	Timeout Duration `toml:"timeout" yaml:"timeout"`
}

// ServerConfig configures the injection HTTP API.
type ServerConfig struct {
	Enabled bool   `toml:"enabled" yaml:"enabled"`
	Addr    string `toml:"addr" yaml:"addr"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `toml:"level" yaml:"level"`
	Format string `toml:"format" yaml:"format"`
	File   string `toml:"file" yaml:"file"`
}

// ThemeConfig registers a custom theme from a CSS file.
type ThemeConfig struct {
	ID          string `toml:"id" yaml:"id"`
	Name        string `toml:"name" yaml:"name"`
	DisplayName string `toml:"display_name" yaml:"display_name"`
	Description string `toml:"description" yaml:"description"`
	// File is the CSS path. Relative paths are resolved against the
	// directory of the config file.
	File string `toml:"file" yaml:"file"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Document: DocumentConfig{LargeFileThreshold: 10000},
		Sync:     SyncConfig{Delay: Duration(300 * time.Millisecond)},
		AutoSave: AutoSaveConfig{Enabled: true, Interval: Duration(30 * time.Second)},
		Render: RenderConfig{
			Delay:   Duration(300 * time.Millisecond),
			Timeout: Duration(10 * time.Second),
			Theme:   "default",
			Size:    "16:9",
		},
		Navigation: NavigationConfig{
			ThumbnailWidth:      200,
			ThumbnailPanelWidth: 200,
			ShowSlideNumbers:    true,
		},
		Storage:    defaultStorage(os.UserConfigDir),
		Validation: ValidationConfig{Timeout: Duration(2 * time.Second)},
		Server:     ServerConfig{Addr: "127.0.0.1:7420"},
		Log:        LogConfig{Level: "info", Format: "text"},
	}
}

// defaultStorage keeps snapshots in a file store under the user's
// config directory, or in memory when there is none.
func defaultStorage(configDir func() (string, error)) StorageConfig {
	sc := StorageConfig{Backend: "memory", Key: "deckstorm.document"}
	if dir, err := configDir(); err == nil && dir != "" {
		sc.Backend = "file"
		sc.Path = filepath.Join(dir, "deckstorm", "snapshots")
	}
	return sc
}

// Clone returns a deep copy of c.
func (c *Config) Clone() *Config {
	out := *c
	out.Themes = append([]ThemeConfig(nil), c.Themes...)
	return &out
}

// Duration is a time.Duration that reads and writes as a string such as
// "300ms" in both TOML and YAML.
type Duration time.Duration

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// String returns the duration in time.Duration notation.
func (d Duration) String() string {
	return time.Duration(d).String()
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(n *yaml.Node) error {
	return d.UnmarshalText([]byte(n.Value))
}
