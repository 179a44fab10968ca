package render

import (
	"context"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/dshills/deckstorm/internal/debounce"
)

// DefaultRenderDelay is the debounce applied to Render calls.
const DefaultRenderDelay = 300 * time.Millisecond

// State is the pipeline status state.
type State string

// Pipeline states.
const (
	StateIdle      State = "idle"
	StateRendering State = "rendering"
	StateSuccess   State = "success"
	StateError     State = "error"
)

// Status describes the pipeline's latest activity.
type Status struct {
	State          State
	Err            *Error
	LastRenderTime time.Time

	// RenderCount counts terminal transitions, successful or not.
	RenderCount int
}

// Listener receives status and result after every pipeline transition.
// The result may be nil.
type Listener func(Status, *Result)

type request struct {
	markup string
	opts   *Options
}

// Pipeline compiles markup into a Result with debouncing, stale result
// suppression and typed error reporting.
//
// Render never blocks on the compiler; compiles run on timer goroutines
// and on the goroutine calling Flush, Retry or RenderSync. Every compile
// takes a token, and a completion whose token is no longer current is
// dropped so results are applied in call order.
type Pipeline struct {
	compiler Compiler
	logger   *slog.Logger
	timeout  time.Duration
	now      func() time.Time

	ctx    context.Context
	cancel context.CancelFunc

	debouncer *debounce.Debouncer[request]

	mu        sync.Mutex
	defaults  Options
	status    Status
	result    *Result
	token     uint64
	last      *request
	listeners map[int]Listener
	nextID    int
	onError   func(*Error)
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*pipelineConfig)

type pipelineConfig struct {
	delay    time.Duration
	defaults Options
	themes   *Registry
	logger   *slog.Logger
	timeout  time.Duration
	onError  func(*Error)
	now      func() time.Time
}

// WithDelay sets the render debounce.
func WithDelay(d time.Duration) PipelineOption {
	return func(c *pipelineConfig) {
		if d > 0 {
			c.delay = d
		}
	}
}

// WithDefaults sets the options every render override is merged onto.
func WithDefaults(o Options) PipelineOption {
	return func(c *pipelineConfig) {
		c.defaults = DefaultOptions().Merge(&o)
	}
}

// WithThemes sets the theme registry used by the default compiler.
func WithThemes(r *Registry) PipelineOption {
	return func(c *pipelineConfig) {
		c.themes = r
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) PipelineOption {
	return func(c *pipelineConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithTimeout bounds each compile. Zero means no limit.
func WithTimeout(d time.Duration) PipelineOption {
	return func(c *pipelineConfig) {
		c.timeout = d
	}
}

// WithErrorHandler registers a callback for failed renders.
func WithErrorHandler(fn func(*Error)) PipelineOption {
	return func(c *pipelineConfig) {
		c.onError = fn
	}
}

// WithPipelineClock sets the time source.
func WithPipelineClock(now func() time.Time) PipelineOption {
	return func(c *pipelineConfig) {
		if now != nil {
			c.now = now
		}
	}
}

// NewPipeline creates a pipeline. A nil compiler selects the Markdown
// compiler bound to the configured theme registry.
func NewPipeline(compiler Compiler, opts ...PipelineOption) *Pipeline {
	cfg := pipelineConfig{
		delay:    DefaultRenderDelay,
		defaults: DefaultOptions(),
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if compiler == nil {
		compiler = NewMarkdownCompiler(cfg.themes)
	}

	ctx, cancel := context.WithCancel(context.Background())
	p := &Pipeline{
		compiler:  compiler,
		logger:    cfg.logger.With("component", "render"),
		timeout:   cfg.timeout,
		now:       cfg.now,
		ctx:       ctx,
		cancel:    cancel,
		defaults:  cfg.defaults,
		status:    Status{State: StateIdle},
		listeners: make(map[int]Listener),
		onError:   cfg.onError,
	}
	p.debouncer = debounce.New(cfg.delay, func(r request) { p.run(r) })
	return p
}

// Render schedules a compile of markup. Blank markup cancels pending work
// and resets the pipeline to idle with no result, without calling the
// compiler. opts overrides the pipeline defaults and may be nil.
func (p *Pipeline) Render(markup string, opts *Options) {
	if strings.TrimSpace(markup) == "" {
		p.debouncer.Cancel()
		p.reset(false)
		return
	}
	p.debouncer.Invoke(request{markup: markup, opts: opts.clone()})
}

// RenderSync compiles markup immediately, superseding any pending render,
// and returns the resulting status.
func (p *Pipeline) RenderSync(markup string, opts *Options) Status {
	p.debouncer.Cancel()
	if strings.TrimSpace(markup) == "" {
		p.reset(false)
	} else {
		p.run(request{markup: markup, opts: opts.clone()})
	}
	return p.Status()
}

// Retry re-runs the most recently attempted render immediately. A
// pending render is newer than the last attempt, so it is run instead.
// Without either it logs a warning and does nothing.
func (p *Pipeline) Retry() {
	if p.debouncer.FlushPending() {
		return
	}

	p.mu.Lock()
	last := p.last
	p.mu.Unlock()

	if last == nil {
		p.logger.Warn("retry requested with no previous render")
		return
	}
	p.run(request{markup: last.markup, opts: last.opts.clone()})
}

// Clear resets the pipeline to idle, drops the result and forgets the
// retry parameters. RenderCount is kept.
func (p *Pipeline) Clear() {
	p.debouncer.Cancel()
	p.reset(true)
}

// Flush runs a pending render now. It reports whether one ran.
func (p *Pipeline) Flush() bool {
	return p.debouncer.FlushPending()
}

// Pending reports whether a render is waiting for its debounce.
func (p *Pipeline) Pending() bool {
	return p.debouncer.Pending()
}

// Status returns the current status.
func (p *Pipeline) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

// Result returns the latest successful result, or nil.
func (p *Pipeline) Result() *Result {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.result
}

// Defaults returns the options renders are merged onto.
func (p *Pipeline) Defaults() Options {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.defaults.Merge(nil)
}

// SetDefaults replaces the default options. Pending renders use the new
// defaults when they fire.
func (p *Pipeline) SetDefaults(o Options) {
	merged := DefaultOptions().Merge(&o)
	p.mu.Lock()
	p.defaults = merged
	p.mu.Unlock()
}

// Subscribe registers l and returns a function that removes it.
func (p *Pipeline) Subscribe(l Listener) func() {
	p.mu.Lock()
	defer p.mu.Unlock()
	id := p.nextID
	p.nextID++
	p.listeners[id] = l
	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.listeners, id)
	}
}

// OnError replaces the failed render callback.
func (p *Pipeline) OnError(fn func(*Error)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onError = fn
}

// Close drops pending renders and cancels an in-flight compile.
func (p *Pipeline) Close() {
	p.debouncer.Close()
	p.cancel()
}

func (p *Pipeline) reset(forget bool) {
	p.mu.Lock()
	p.token++
	p.status.State = StateIdle
	p.status.Err = nil
	p.result = nil
	if forget {
		p.last = nil
	}
	status, listeners := p.status, p.listenersLocked()
	p.mu.Unlock()

	notify(listeners, status, nil)
}

func (p *Pipeline) run(req request) {
	p.mu.Lock()
	p.token++
	token := p.token
	p.last = &req
	p.status.State = StateRendering
	p.status.Err = nil
	opts := p.defaults.Merge(req.opts)
	status, result, listeners := p.status, p.result, p.listenersLocked()
	p.mu.Unlock()

	notify(listeners, status, result)

	out, rerr := p.compile(req.markup, opts)

	var parsed *Result
	if rerr == nil {
		parsed = parseResult(req.markup, out, p.now())
	}

	p.mu.Lock()
	if token != p.token {
		p.mu.Unlock()
		p.logger.Debug("discarded stale render", "token", token)
		return
	}
	p.status.RenderCount++
	p.status.LastRenderTime = p.now()
	if rerr != nil {
		p.status.State = StateError
		p.status.Err = rerr
	} else {
		p.status.State = StateSuccess
		p.result = parsed
	}
	status, result, listeners = p.status, p.result, p.listenersLocked()
	onError := p.onError
	p.mu.Unlock()

	if rerr != nil {
		p.logger.Error("render failed", "type", string(rerr.Type), "error", rerr.Error())
		if onError != nil {
			onError(rerr)
		}
	} else {
		p.logger.Debug("render complete", "slides", parsed.SlideCount, "count", status.RenderCount)
	}
	notify(listeners, status, result)
}

// compile calls the compiler, converting errors and panics to *Error.
func (p *Pipeline) compile(markup string, opts Options) (out Output, rerr *Error) {
	ctx := p.ctx
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			out, rerr = Output{}, panicError(r)
		}
	}()

	out, err := p.compiler.Compile(ctx, markup, opts)
	if err != nil {
		return Output{}, AsError(err)
	}
	return out, nil
}

func (p *Pipeline) listenersLocked() []Listener {
	ids := slices.Sorted(maps.Keys(p.listeners))
	out := make([]Listener, len(ids))
	for i, id := range ids {
		out[i] = p.listeners[id]
	}
	return out
}

func notify(listeners []Listener, s Status, r *Result) {
	for _, l := range listeners {
		l(s, r)
	}
}
