package render

import "context"

// Section is one slide as emitted by a compiler that knows its own slide
// boundaries.
type Section struct {
	HTML  string
	Class string
}

// Output is the raw result of a compile.
type Output struct {
	HTML string
	CSS  string

	// Sections, when set, are used directly instead of recovering slide
	// boundaries from HTML.
	Sections []Section
}

// Compiler turns markup into HTML and CSS. Implementations may return an
// error; they may also panic, which the pipeline recovers.
type Compiler interface {
	Compile(ctx context.Context, markup string, opts Options) (Output, error)
}

// CompilerFunc adapts a function to Compiler.
type CompilerFunc func(ctx context.Context, markup string, opts Options) (Output, error)

// Compile implements Compiler.
func (f CompilerFunc) Compile(ctx context.Context, markup string, opts Options) (Output, error) {
	return f(ctx, markup, opts)
}
