// Package watcher reports changes to individual files using fsnotify.
//
// Files are watched through their parent directory so that editors which
// save by writing a temporary file and renaming it over the original are
// still observed. Bursts of events for one file are coalesced.
package watcher

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dshills/deckstorm/internal/debounce"
)

// DefaultDebounce coalesces events for one file.
const DefaultDebounce = 100 * time.Millisecond

// Errors returned by the watcher.
var (
	ErrWatcherClosed = errors.New("watcher is closed")
	ErrIsDirectory   = errors.New("path is a directory")
)

// Op is a bit set of file operations.
type Op uint8

const (
	OpCreate Op = 1 << iota
	OpWrite
	OpRemove
	OpRename
)

// Has reports whether o contains op.
func (o Op) Has(op Op) bool {
	return o&op != 0
}

func (o Op) String() string {
	switch {
	case o.Has(OpRemove):
		return "remove"
	case o.Has(OpRename):
		return "rename"
	case o.Has(OpCreate):
		return "create"
	case o.Has(OpWrite):
		return "write"
	default:
		return "unknown"
	}
}

// Event describes a change to a watched file. Op accumulates every
// operation seen during the debounce window.
type Event struct {
	Path string
	Op   Op
	Time time.Time
}

// Handler is called once per coalesced change.
type Handler func(Event)

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the coalescing window. Zero delivers every event.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d >= 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// Watcher monitors a set of files.
type Watcher struct {
	fsw      *fsnotify.Watcher
	handler  Handler
	debounce time.Duration
	logger   *slog.Logger

	mu      sync.Mutex
	files   map[string]*debounce.Debouncer[Event]
	pending map[string]Op
	dirs    map[string]int
	closed  bool

	wg sync.WaitGroup
}

// New creates a watcher that calls handler for changes to watched files.
func New(handler Handler, opts ...Option) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fsw:      fsw,
		handler:  handler,
		debounce: DefaultDebounce,
		logger:   slog.Default(),
		files:    make(map[string]*debounce.Debouncer[Event]),
		pending:  make(map[string]Op),
		dirs:     make(map[string]int),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.With("component", "watcher")

	w.wg.Add(1)
	go w.processLoop()
	return w, nil
}

// Watch starts watching the file at path. The file need not exist yet
// but its directory must.
func (w *Watcher) Watch(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if info, err := os.Stat(abs); err == nil && info.IsDir() {
		return ErrIsDirectory
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrWatcherClosed
	}
	if _, ok := w.files[abs]; ok {
		return nil
	}

	dir := filepath.Dir(abs)
	if w.dirs[dir] == 0 {
		if err := w.fsw.Add(dir); err != nil {
			return err
		}
	}
	w.dirs[dir]++
	w.files[abs] = debounce.New(w.debounce, w.deliver)
	return nil
}

// Unwatch stops watching path.
func (w *Watcher) Unwatch(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	d, ok := w.files[abs]
	if !ok {
		return nil
	}
	d.Close()
	delete(w.files, abs)
	delete(w.pending, abs)

	dir := filepath.Dir(abs)
	w.dirs[dir]--
	if w.dirs[dir] <= 0 {
		delete(w.dirs, dir)
		return w.fsw.Remove(dir)
	}
	return nil
}

// Close stops the watcher. Pending coalesced events are dropped.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	for _, d := range w.files {
		d.Close()
	}
	w.mu.Unlock()

	err := w.fsw.Close()
	w.wg.Wait()
	return err
}

func (w *Watcher) processLoop() {
	defer w.wg.Done()
	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleFSEvent(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", "error", err)
		}
	}
}

func (w *Watcher) handleFSEvent(ev fsnotify.Event) {
	op := convertOp(ev.Op)
	if op == 0 {
		return
	}
	abs, err := filepath.Abs(ev.Name)
	if err != nil {
		return
	}

	w.mu.Lock()
	d, ok := w.files[abs]
	if !ok || w.closed {
		w.mu.Unlock()
		return
	}
	w.pending[abs] |= op
	acc := w.pending[abs]
	w.mu.Unlock()

	e := Event{Path: abs, Op: acc, Time: time.Now()}
	if w.debounce == 0 {
		d.Flush(e)
		return
	}
	d.Invoke(e)
}

func (w *Watcher) deliver(e Event) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	delete(w.pending, e.Path)
	w.mu.Unlock()

	w.logger.Debug("file changed", "path", e.Path, "op", e.Op.String())
	if w.handler != nil {
		w.handler(e)
	}
}

// convertOp converts fsnotify.Op to Op. Chmod is ignored.
func convertOp(fsOp fsnotify.Op) Op {
	var op Op
	if fsOp.Has(fsnotify.Create) {
		op |= OpCreate
	}
	if fsOp.Has(fsnotify.Write) {
		op |= OpWrite
	}
	if fsOp.Has(fsnotify.Remove) {
		op |= OpRemove
	}
	if fsOp.Has(fsnotify.Rename) {
		op |= OpRename
	}
	return op
}
