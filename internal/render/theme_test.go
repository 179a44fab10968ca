package render

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestRegistry_BuiltIns(t *testing.T) {
	r := NewRegistry()

	var ids []string
	for _, th := range r.Themes() {
		ids = append(ids, th.ID)
		if !th.IsBuiltIn() {
			t.Errorf("%s not built-in", th.ID)
		}
	}
	if len(ids) != 3 || ids[0] != "default" || ids[1] != "gaia" || ids[2] != "uncover" {
		t.Errorf("themes = %v", ids)
	}
	if r.Current().ID != DefaultTheme {
		t.Errorf("Current = %s", r.Current().ID)
	}
}

func TestRegistry_SetThemeUnknown(t *testing.T) {
	r := NewRegistry()
	err := r.SetTheme("missing")

	var re *Error
	if !errors.As(err, &re) || re.Type != ErrorConfig {
		t.Fatalf("err = %v, want config error", err)
	}
	if !errors.Is(err, ErrUnknownTheme) {
		t.Error("err does not wrap ErrUnknownTheme")
	}
	if r.Current().ID != DefaultTheme {
		t.Error("current theme changed by failed SetTheme")
	}

	if err := r.SetTheme("gaia"); err != nil || r.Current().ID != "gaia" {
		t.Errorf("SetTheme(gaia) = %v, current %s", err, r.Current().ID)
	}
}

func TestRegistry_AddCustomTheme(t *testing.T) {
	r := NewRegistry()

	th, err := r.AddCustomTheme(Theme{ID: "corp", CSS: "section{}", Kind: ThemeBuiltIn})
	if err != nil {
		t.Fatal(err)
	}
	if th.IsBuiltIn() || th.Name != "corp" || th.DisplayName != "corp" {
		t.Errorf("theme = %+v", th)
	}

	// Overwrite by id keeps the position.
	r.AddCustomTheme(Theme{ID: "corp", CSS: "v2"})
	all := r.Themes()
	if len(all) != 4 || all[3].CSS != "v2" {
		t.Errorf("themes after overwrite = %+v", all)
	}

	if _, err := r.AddCustomTheme(Theme{}); !errors.Is(err, ErrInvalidTheme) {
		t.Errorf("empty id err = %v", err)
	}
}

func TestRegistry_RemoveTheme(t *testing.T) {
	r := NewRegistry()

	if err := r.RemoveTheme("gaia"); !errors.Is(err, ErrBuiltInTheme) {
		t.Errorf("removing built-in: err = %v", err)
	}

	r.AddCustomTheme(Theme{ID: "corp"})
	r.SetTheme("corp")
	if err := r.RemoveTheme("corp"); err != nil {
		t.Fatal(err)
	}
	if _, ok := r.Get("corp"); ok {
		t.Error("corp still registered")
	}
	if r.Current().ID != DefaultTheme {
		t.Errorf("Current = %s after removing it", r.Current().ID)
	}
}

func TestRegistry_ShadowedBuiltIn(t *testing.T) {
	r := NewRegistry()
	r.AddCustomTheme(Theme{ID: "gaia", CSS: "custom"})

	got, _ := r.Get("gaia")
	if got.IsBuiltIn() || got.CSS != "custom" {
		t.Fatalf("gaia = %+v", got)
	}

	if err := r.RemoveTheme("gaia"); err != nil {
		t.Fatal(err)
	}
	got, ok := r.Get("gaia")
	if !ok || !got.IsBuiltIn() {
		t.Errorf("built-in gaia not restored: %+v", got)
	}
}

func TestRegistry_LoadThemeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corp.css")
	if err := os.WriteFile(path, []byte(".theme-corp section{color:red}"), 0o644); err != nil {
		t.Fatal(err)
	}

	r := NewRegistry()
	th, err := r.LoadThemeFile(Theme{ID: "corp"}, path)
	if err != nil {
		t.Fatal(err)
	}
	if th.CSS != ".theme-corp section{color:red}" {
		t.Errorf("CSS = %q", th.CSS)
	}

	if _, err := r.LoadThemeFile(Theme{ID: "x"}, filepath.Join(t.TempDir(), "missing.css")); err == nil {
		t.Error("missing file accepted")
	}
}
