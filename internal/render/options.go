package render

import "maps"

// Options are passed to the compiler. Pointer fields distinguish "not
// set" from false when merging overrides onto defaults.
type Options struct {
	// Theme is the theme id. Empty selects the registry's current theme.
	Theme string

	// HTML allows raw HTML in the markup.
	HTML *bool

	// Breaks renders soft line breaks as <br>.
	Breaks *bool

	// Paginate adds a page number to every slide.
	Paginate *bool

	// Size is the slide aspect ratio, "16:9" or "4:3".
	Size string

	// Extra carries compiler-specific settings.
	Extra map[string]string
}

// Bool returns a pointer to v.
func Bool(v bool) *bool {
	return &v
}

// DefaultOptions returns the pipeline defaults.
func DefaultOptions() Options {
	return Options{
		HTML:     Bool(false),
		Breaks:   Bool(false),
		Paginate: Bool(false),
		Size:     "16:9",
	}
}

// Merge returns o with every field set in override replacing it.
func (o Options) Merge(override *Options) Options {
	out := o
	out.Extra = maps.Clone(o.Extra)
	if override == nil {
		return out
	}

	if override.Theme != "" {
		out.Theme = override.Theme
	}
	if override.HTML != nil {
		out.HTML = Bool(*override.HTML)
	}
	if override.Breaks != nil {
		out.Breaks = Bool(*override.Breaks)
	}
	if override.Paginate != nil {
		out.Paginate = Bool(*override.Paginate)
	}
	if override.Size != "" {
		out.Size = override.Size
	}
	if len(override.Extra) > 0 {
		if out.Extra == nil {
			out.Extra = make(map[string]string, len(override.Extra))
		}
		maps.Copy(out.Extra, override.Extra)
	}
	return out
}

// clone returns a deep copy so remembered retry parameters cannot be
// mutated by the caller.
func (o *Options) clone() *Options {
	if o == nil {
		return nil
	}
	c := Options{}.Merge(o)
	return &c
}

func isSet(b *bool) bool {
	return b != nil && *b
}
