// Package debounce provides delayed invocation that coalesces bursts of calls.
package debounce

import (
	"sync"
	"sync/atomic"
	"time"
)

// Debouncer delays calls to a callback until a quiet period has elapsed.
//
// In the default trailing mode every Invoke restarts the delay window and
// only the arguments of the last call in a burst are delivered, once, after
// the window closes. Leading mode fires the first call of an idle window
// immediately. Both may be enabled together.
//
// The callback is held in an atomic cell and resolved when a timer fires,
// so a timer scheduled before SetCallback still calls the newest callback.
//
// Thread-safety: all methods are safe for concurrent use. The callback is
// never invoked while the internal lock is held.
type Debouncer[T any] struct {
	mu    sync.Mutex
	delay time.Duration
	timer *time.Timer
	seq   uint64 // invalidates timers that were stopped too late

	leading  bool
	trailing bool

	inWindow bool // a delay window is open
	pending  bool // a trailing call is owed
	args     T

	closed bool

	callback atomic.Pointer[func(T)]
}

// Option configures a Debouncer.
type Option func(*options)

type options struct {
	leading  bool
	trailing bool
}

// WithLeading enables or disables invocation on the leading edge.
func WithLeading(leading bool) Option {
	return func(o *options) {
		o.leading = leading
	}
}

// WithTrailing enables or disables invocation on the trailing edge.
func WithTrailing(trailing bool) Option {
	return func(o *options) {
		o.trailing = trailing
	}
}

// New creates a debouncer that calls fn after delay.
func New[T any](delay time.Duration, fn func(T), opts ...Option) *Debouncer[T] {
	o := options{trailing: true}
	for _, opt := range opts {
		opt(&o)
	}

	d := &Debouncer[T]{
		delay:    delay,
		leading:  o.leading,
		trailing: o.trailing,
	}
	d.SetCallback(fn)
	return d
}

// SetCallback replaces the callback. Pending timers will call the new one.
func (d *Debouncer[T]) SetCallback(fn func(T)) {
	if fn == nil {
		d.callback.Store(nil)
		return
	}
	d.callback.Store(&fn)
}

// Delay returns the configured delay.
func (d *Debouncer[T]) Delay() time.Duration {
	return d.delay
}

// Invoke schedules the callback with args.
func (d *Debouncer[T]) Invoke(args T) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}

	fireNow := false
	if !d.inWindow {
		d.inWindow = true
		if d.leading {
			fireNow = true
		} else if d.trailing {
			d.pending = true
			d.args = args
		}
	} else if d.trailing {
		d.pending = true
		d.args = args
	}

	d.scheduleLocked()
	d.mu.Unlock()

	if fireNow {
		d.call(args)
	}
}

// scheduleLocked (re)starts the window timer. Must hold d.mu.
func (d *Debouncer[T]) scheduleLocked() {
	if d.timer != nil {
		d.timer.Stop()
	}
	d.seq++
	current := d.seq
	d.timer = time.AfterFunc(d.delay, func() {
		d.fire(current)
	})
}

func (d *Debouncer[T]) fire(seq uint64) {
	d.mu.Lock()
	if d.seq != seq || d.closed {
		d.mu.Unlock()
		return
	}

	d.timer = nil
	d.inWindow = false
	if !d.pending {
		d.mu.Unlock()
		return
	}
	d.pending = false
	args := d.args
	var zero T
	d.args = zero
	d.mu.Unlock()

	d.call(args)
}

// Cancel discards any pending trailing call and resets leading eligibility.
func (d *Debouncer[T]) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cancelLocked()
}

func (d *Debouncer[T]) cancelLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.seq++
	d.inWindow = false
	d.pending = false
	var zero T
	d.args = zero
}

// Flush cancels any pending timer and invokes the callback synchronously
// with args.
func (d *Debouncer[T]) Flush(args T) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.cancelLocked()
	d.mu.Unlock()

	d.call(args)
}

// FlushPending runs the pending trailing call now, if there is one.
// It reports whether a call was made.
func (d *Debouncer[T]) FlushPending() bool {
	d.mu.Lock()
	if d.closed || !d.pending {
		d.mu.Unlock()
		return false
	}
	args := d.args
	d.cancelLocked()
	d.mu.Unlock()

	d.call(args)
	return true
}

// Pending reports whether a trailing call is scheduled.
func (d *Debouncer[T]) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}

// Close clears outstanding timers. Later calls to Invoke and Flush are
// ignored.
func (d *Debouncer[T]) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cancelLocked()
	d.closed = true
}

func (d *Debouncer[T]) call(args T) {
	if fn := d.callback.Load(); fn != nil {
		(*fn)(args)
	}
}
