package render

import (
	"fmt"
	"os"
	"slices"
	"sync"
)

// ThemeKind distinguishes seeded themes from user registrations.
type ThemeKind uint8

const (
	ThemeBuiltIn ThemeKind = iota
	ThemeCustom
)

func (k ThemeKind) String() string {
	if k == ThemeBuiltIn {
		return "builtin"
	}
	return "custom"
}

// Theme is a named stylesheet for the deck.
type Theme struct {
	ID          string
	Name        string
	DisplayName string
	Description string
	CSS         string
	Kind        ThemeKind
}

// IsBuiltIn reports whether the theme was seeded by the registry.
func (t Theme) IsBuiltIn() bool {
	return t.Kind == ThemeBuiltIn
}

// DefaultTheme is the id of the theme selected at construction.
const DefaultTheme = "default"

func builtInThemes() []Theme {
	return []Theme{
		{
			ID:          "default",
			Name:        "default",
			DisplayName: "Default",
			Description: "Clean light theme",
			CSS: `.theme-default section{background:#fff;color:#24292f;font-family:Helvetica,Arial,sans-serif;padding:64px}
.theme-default h1,.theme-default h2{color:#0f4c81}
.theme-default .pagination{position:absolute;right:32px;bottom:24px;font-size:18px;color:#888}
`,
		},
		{
			ID:          "gaia",
			Name:        "gaia",
			DisplayName: "Gaia",
			Description: "Warm palette with bold headings",
			CSS: `.theme-gaia section{background:#fff8e1;color:#455a64;font-family:Lato,Avenir,sans-serif;padding:70px}
.theme-gaia section.lead{display:flex;flex-direction:column;justify-content:center;text-align:center}
.theme-gaia h1{color:#0288d1;font-weight:800}
.theme-gaia .pagination{position:absolute;right:30px;bottom:21px;color:#0288d1}
`,
		},
		{
			ID:          "uncover",
			Name:        "uncover",
			DisplayName: "Uncover",
			Description: "Minimal centered layout",
			CSS: `.theme-uncover section{background:#fdfcff;color:#202228;font-family:"Helvetica Neue",sans-serif;padding:70px;display:flex;flex-direction:column;justify-content:center;align-items:center;text-align:center}
.theme-uncover h1{font-size:56px}
.theme-uncover .pagination{position:absolute;left:0;right:0;bottom:20px}
`,
		},
	}
}

// Registry is an ordered set of themes keyed by id. It is safe for
// concurrent use.
type Registry struct {
	mu      sync.RWMutex
	order   []string
	themes  map[string]Theme
	shadow  map[string]Theme // built-ins replaced by a custom registration
	current string
}

// NewRegistry creates a registry seeded with the built-in themes and
// "default" selected.
func NewRegistry() *Registry {
	r := &Registry{
		themes:  make(map[string]Theme),
		shadow:  make(map[string]Theme),
		current: DefaultTheme,
	}
	for _, t := range builtInThemes() {
		t.Kind = ThemeBuiltIn
		r.order = append(r.order, t.ID)
		r.themes[t.ID] = t
	}
	return r
}

// SetTheme selects the current theme.
func (r *Registry) SetTheme(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.themes[id]; !ok {
		return configError(fmt.Sprintf("theme %q not found", id), ErrUnknownTheme)
	}
	r.current = id
	return nil
}

// AddCustomTheme inserts t, replacing any theme with the same id. The
// stored theme is always marked custom.
func (r *Registry) AddCustomTheme(t Theme) (Theme, error) {
	if t.ID == "" {
		return Theme{}, configError("cannot register theme", ErrInvalidTheme)
	}
	t.Kind = ThemeCustom
	if t.Name == "" {
		t.Name = t.ID
	}
	if t.DisplayName == "" {
		t.DisplayName = t.Name
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	prev, exists := r.themes[t.ID]
	if !exists {
		r.order = append(r.order, t.ID)
	} else if prev.IsBuiltIn() {
		r.shadow[t.ID] = prev
	}
	r.themes[t.ID] = t
	return t, nil
}

// LoadThemeFile registers a custom theme whose CSS is read from path.
func (r *Registry) LoadThemeFile(t Theme, path string) (Theme, error) {
	css, err := os.ReadFile(path)
	if err != nil {
		return Theme{}, configError("read theme file", fmt.Errorf("%s: %w", path, err))
	}
	t.CSS = string(css)
	return r.AddCustomTheme(t)
}

// RemoveTheme deletes a custom theme. A custom theme that shadowed a
// built-in restores the built-in. If the removed theme was current, the
// default theme is selected.
func (r *Registry) RemoveTheme(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.themes[id]
	if !ok {
		return configError(fmt.Sprintf("theme %q not found", id), ErrUnknownTheme)
	}
	if t.IsBuiltIn() {
		return configError(fmt.Sprintf("theme %q", id), ErrBuiltInTheme)
	}

	if orig, ok := r.shadow[id]; ok {
		r.themes[id] = orig
		delete(r.shadow, id)
		return nil
	}

	delete(r.themes, id)
	if i := slices.Index(r.order, id); i >= 0 {
		r.order = slices.Delete(r.order, i, i+1)
	}
	if r.current == id {
		r.current = DefaultTheme
	}
	return nil
}

// Get returns the theme with the given id.
func (r *Registry) Get(id string) (Theme, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.themes[id]
	return t, ok
}

// Themes returns all themes in registration order.
func (r *Registry) Themes() []Theme {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Theme, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.themes[id])
	}
	return out
}

// Current returns the selected theme.
func (r *Registry) Current() Theme {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.themes[r.current]
}
