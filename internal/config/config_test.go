package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dshills/deckstorm/internal/watcher"
)

func noEnv(string) (string, bool) { return "", false }

func envMap(m map[string]string) LookupFunc {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultStorage(t *testing.T) {
	sc := defaultStorage(func() (string, error) { return "/home/u/.config", nil })
	if sc.Backend != "file" || sc.Path != filepath.Join("/home/u/.config", "deckstorm", "snapshots") {
		t.Errorf("storage = %+v", sc)
	}

	sc = defaultStorage(func() (string, error) { return "", errors.New("no home") })
	if sc.Backend != "memory" || sc.Path != "" {
		t.Errorf("storage without config dir = %+v", sc)
	}
	if sc.Key != "deckstorm.document" {
		t.Errorf("key = %q", sc.Key)
	}
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
	if cfg.Render.Delay.Std() != 300*time.Millisecond {
		t.Errorf("render delay = %v", cfg.Render.Delay)
	}
	if cfg.Document.LargeFileThreshold != 10000 {
		t.Errorf("threshold = %d", cfg.Document.LargeFileThreshold)
	}
}

func TestLoad_TOML(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "deckstorm.toml", `
[render]
delay = "150ms"
theme = "gaia"
paginate = true

[autosave]
enabled = false
interval = "1m"

[storage]
backend = "sqlite"
path = "deck.db"

[[themes]]
id = "corporate"
display_name = "Corporate"
file = "themes/corporate.css"
`)

	cfg, err := LoadWithEnv(path, noEnv)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Render.Delay.Std() != 150*time.Millisecond || cfg.Render.Theme != "gaia" || !cfg.Render.Paginate {
		t.Errorf("render = %+v", cfg.Render)
	}
	if cfg.AutoSave.Enabled || cfg.AutoSave.Interval.Std() != time.Minute {
		t.Errorf("autosave = %+v", cfg.AutoSave)
	}
	if cfg.Render.Size != "16:9" {
		t.Errorf("unset value lost its default: %q", cfg.Render.Size)
	}
	if len(cfg.Themes) != 1 || cfg.Themes[0].File != filepath.Join(dir, "themes", "corporate.css") {
		t.Errorf("themes = %+v", cfg.Themes)
	}
}

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "deckstorm.yaml", `
sync:
  delay: 50ms
navigation:
  thumbnail_width: 320
  show_thumbnails: true
log:
  level: debug
  format: json
`)

	cfg, err := LoadWithEnv(path, noEnv)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Sync.Delay.Std() != 50*time.Millisecond {
		t.Errorf("sync delay = %v", cfg.Sync.Delay)
	}
	if cfg.Navigation.ThumbnailWidth != 320 || !cfg.Navigation.ShowThumbnails {
		t.Errorf("navigation = %+v", cfg.Navigation)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Errorf("log = %+v", cfg.Log)
	}
}

func TestLoad_EmptyYAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "empty.yml", "")
	if _, err := LoadWithEnv(path, noEnv); err != nil {
		t.Fatalf("empty file: %v", err)
	}
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		file    string
		content string
		check   func(error) bool
	}{
		{
			name:    "bad toml",
			file:    "bad.toml",
			content: "[render\ndelay = 1",
			check: func(err error) bool {
				var pe *ParseError
				return errors.As(err, &pe) && pe.Line > 0
			},
		},
		{
			name:    "unknown toml key",
			file:    "unknown.toml",
			content: "[render]\nspeed = 3\n",
			check: func(err error) bool {
				var pe *ParseError
				return errors.As(err, &pe)
			},
		},
		{
			name:    "bad duration",
			file:    "dur.yaml",
			content: "render:\n  delay: soon\n",
			check: func(err error) bool {
				var pe *ParseError
				return errors.As(err, &pe)
			},
		},
		{
			name:    "unsupported extension",
			file:    "deck.json",
			content: "{}",
			check:   func(err error) bool { return errors.Is(err, ErrUnsupportedFormat) },
		},
		{
			name:    "invalid value",
			file:    "size.toml",
			content: "[render]\nsize = \"21:9\"\n",
			check:   func(err error) bool { return errors.Is(err, ErrValidationFailed) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, dir, tt.file, tt.content)
			_, err := LoadWithEnv(path, noEnv)
			if err == nil || !tt.check(err) {
				t.Errorf("err = %v", err)
			}
		})
	}

	if _, err := LoadWithEnv(filepath.Join(dir, "missing.toml"), noEnv); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file err = %v", err)
	}
}

func TestApplyEnv(t *testing.T) {
	cfg, err := LoadWithEnv("", envMap(map[string]string{
		"DECKSTORM_THEME":             "uncover",
		"DECKSTORM_AUTOSAVE":          "false",
		"DECKSTORM_AUTOSAVE_INTERVAL": "5s",
		"DECKSTORM_STORAGE_BACKEND":   "file",
		"DECKSTORM_STORAGE_PATH":      "/tmp/deck",
		"DECKSTORM_LOG_LEVEL":         "",
	}))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Render.Theme != "uncover" || cfg.AutoSave.Enabled || cfg.AutoSave.Interval.Std() != 5*time.Second {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Storage.Backend != "file" || cfg.Storage.Path != "/tmp/deck" {
		t.Errorf("storage = %+v", cfg.Storage)
	}
	if cfg.Log.Level != "" {
		t.Errorf("empty env value not applied: %q", cfg.Log.Level)
	}

	_, err = LoadWithEnv("", envMap(map[string]string{"DECKSTORM_RENDER_DELAY": "fast"}))
	var pe *ParseError
	if !errors.As(err, &pe) || pe.Path != "DECKSTORM_RENDER_DELAY" {
		t.Errorf("err = %v", err)
	}
}

func TestValidate_CollectsAll(t *testing.T) {
	cfg := Default()
	cfg.Document.LargeFileThreshold = 0
	cfg.Navigation.ThumbnailPanelWidth = 50
	cfg.Storage.Backend = "sqlite"
	cfg.Storage.Path = ""
	cfg.Themes = []ThemeConfig{{ID: "a", File: "a.css"}, {ID: "a", File: "b.css"}}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected errors")
	}
	for _, want := range []string{
		"document.large_file_threshold",
		"navigation.thumbnail_panel_width",
		"storage.path",
		"duplicate theme",
	} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("missing %q in %v", want, err)
		}
	}
}

func TestDuration_Text(t *testing.T) {
	d := Duration(1500 * time.Millisecond)
	b, err := d.MarshalText()
	if err != nil || string(b) != "1.5s" {
		t.Fatalf("MarshalText = %q, %v", b, err)
	}
	var got Duration
	if err := got.UnmarshalText(b); err != nil || got != d {
		t.Errorf("UnmarshalText = %v, %v", got, err)
	}
}

func TestClone(t *testing.T) {
	cfg := Default()
	cfg.Themes = []ThemeConfig{{ID: "a", File: "a.css"}}
	c := cfg.Clone()
	c.Themes[0].ID = "b"
	c.Render.Theme = "gaia"
	if cfg.Themes[0].ID != "a" || cfg.Render.Theme != "default" {
		t.Error("Clone shares state")
	}
}

func TestWatch_Reloads(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "deckstorm.toml", "[render]\ntheme = \"default\"\n")
	initial, err := LoadWithEnv(path, noEnv)
	if err != nil {
		t.Fatal(err)
	}

	var reloads, failures atomic.Int32
	var theme atomic.Value
	w, err := watchWithEnv(path, initial, noEnv, func(cfg *Config, err error) {
		if err != nil {
			failures.Add(1)
			return
		}
		reloads.Add(1)
		theme.Store(cfg.Render.Theme)
	}, watcher.WithDebounce(20*time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if w.Current() != initial {
		t.Error("Current before reload")
	}

	writeFile(t, dir, "deckstorm.toml", "[render]\ntheme = \"gaia\"\n")
	time.Sleep(300 * time.Millisecond)

	if reloads.Load() < 1 || theme.Load() != "gaia" {
		t.Fatalf("reloads = %d theme = %v", reloads.Load(), theme.Load())
	}
	if w.Current().Render.Theme != "gaia" {
		t.Error("Current not updated")
	}

	writeFile(t, dir, "deckstorm.toml", "[render\n")
	time.Sleep(300 * time.Millisecond)

	if failures.Load() < 1 {
		t.Error("invalid file not reported")
	}
	if w.Current().Render.Theme != "gaia" {
		t.Error("failed reload replaced the config")
	}
}
