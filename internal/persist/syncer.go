package persist

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/dshills/deckstorm/internal/debounce"
	"github.com/dshills/deckstorm/internal/document"
)

// DefaultSyncDelay is the debounce applied to local edits before they
// reach the document store.
const DefaultSyncDelay = 300 * time.Millisecond

// SnapshotSource supplies a previously persisted snapshot.
type SnapshotSource interface {
	LoadSavedContent(ctx context.Context) Loaded
}

// InitSource names where Init found the initial content.
type InitSource string

// Init sources in priority order.
const (
	InitFromSnapshot InitSource = "snapshot"
	InitFromInitial  InitSource = "initial"
	InitFromStore    InitSource = "store"
	InitEmpty        InitSource = "empty"
)

// Syncer owns the local edit buffer.
//
// The buffer is written only by Edit (user input) and by adopting store
// content whose change is tagged document.OriginExternal. Local edits
// reach the store tagged document.OriginLocalEdit, which the adoption path
// ignores, so neither direction can re-trigger the other.
type Syncer struct {
	store    *document.Store
	snapshot SnapshotSource
	logger   *slog.Logger

	mu      sync.Mutex
	buffer  string
	onAdopt func(string)

	push        *debounce.Debouncer[string]
	unsubscribe func()
}

// SyncerOption configures a Syncer.
type SyncerOption func(*syncerConfig)

type syncerConfig struct {
	delay    time.Duration
	snapshot SnapshotSource
	logger   *slog.Logger
}

// WithSyncDelay sets the local edit debounce.
func WithSyncDelay(d time.Duration) SyncerOption {
	return func(c *syncerConfig) {
		if d > 0 {
			c.delay = d
		}
	}
}

// WithSnapshotSource sets where Init looks for a persisted snapshot.
func WithSnapshotSource(src SnapshotSource) SyncerOption {
	return func(c *syncerConfig) {
		c.snapshot = src
	}
}

// WithSyncLogger sets the logger.
func WithSyncLogger(l *slog.Logger) SyncerOption {
	return func(c *syncerConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewSyncer creates a Syncer bound to store and starts following
// external updates.
func NewSyncer(store *document.Store, opts ...SyncerOption) *Syncer {
	cfg := syncerConfig{
		delay:  DefaultSyncDelay,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	s := &Syncer{
		store:    store,
		snapshot: cfg.snapshot,
		logger:   cfg.logger.With("component", "sync"),
	}
	s.push = debounce.New(cfg.delay, s.pushToStore)
	s.unsubscribe = store.Subscribe(s.handleChange)
	return s
}

// Init resolves the initial content once and seeds both the buffer and
// the store. Priority: a non-blank persisted snapshot, then a non-blank
// initial value, then the store's current content, then empty.
func (s *Syncer) Init(ctx context.Context, initial string) InitSource {
	var (
		content string
		source  = InitEmpty
		saved   Loaded
	)

	if s.snapshot != nil {
		saved = s.snapshot.LoadSavedContent(ctx)
	}

	switch {
	case saved.HasData && strings.TrimSpace(saved.Content) != "":
		content, source = saved.Content, InitFromSnapshot
	case strings.TrimSpace(initial) != "":
		content, source = initial, InitFromInitial
	case s.store.Content() != "":
		content, source = s.store.Content(), InitFromStore
	}

	s.push.Cancel()
	s.mu.Lock()
	s.buffer = content
	s.mu.Unlock()

	s.store.SetContent(content, document.OriginSystem)
	now := s.store.Now()
	s.store.MarkSynced(now)
	if source == InitFromSnapshot {
		s.store.MarkSavedContent(content, saved.Timestamp)
	}

	s.logger.Info("document initialised", "source", string(source), "length", len(content))
	return source
}

// Edit records user input in the buffer and schedules a push to the
// store.
func (s *Syncer) Edit(text string) {
	s.mu.Lock()
	s.buffer = text
	s.mu.Unlock()
	s.push.Invoke(text)
}

// Flush pushes a pending edit to the store immediately. Without one the
// store is left untouched.
func (s *Syncer) Flush() {
	s.push.FlushPending()
}

// Pending reports whether a local edit is waiting to be pushed.
func (s *Syncer) Pending() bool {
	return s.push.Pending()
}

// Buffer returns the local edit buffer.
func (s *Syncer) Buffer() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buffer
}

// OnAdopt registers fn to be called with content adopted from an
// external update.
func (s *Syncer) OnAdopt(fn func(string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onAdopt = fn
}

func (s *Syncer) pushToStore(text string) {
	s.store.UpdateContent(text, document.OriginLocalEdit)
	s.store.MarkSynced(s.store.Now())
}

// handleChange adopts externally injected content. Local edits and system
// mutations are ignored.
func (s *Syncer) handleChange(c document.Change) {
	if c.Origin != document.OriginExternal || !c.ContentChanged() {
		return
	}

	// A pending local push holds older text; the injected content wins.
	s.push.Cancel()

	s.mu.Lock()
	s.buffer = c.Current.Content
	fn := s.onAdopt
	s.mu.Unlock()

	s.store.MarkSynced(s.store.Now())
	s.logger.Debug("adopted external content", "length", c.Current.Length)
	if fn != nil {
		fn(c.Current.Content)
	}
}

// Close stops following the store and drops any pending push.
func (s *Syncer) Close() {
	s.unsubscribe()
	s.push.Close()
}
