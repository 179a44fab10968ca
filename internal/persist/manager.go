package persist

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/dshills/deckstorm/internal/document"
	"github.com/dshills/deckstorm/internal/storage"
)

// DefaultAutoSaveInterval is how often the auto-save timer fires.
const DefaultAutoSaveInterval = 30 * time.Second

// Hooks observe save outcomes. Either field may be nil.
type Hooks struct {
	OnSaved  func(Snapshot, string) // snapshot, trigger ("manual" or "auto")
	OnFailed func(error, string)
}

// Manager persists document snapshots and runs the auto-save timer.
//
// Save failures never escape as errors or panics: they are recorded on
// the document store and reported through the boolean result.
type Manager struct {
	store     *document.Store
	kv        storage.KV
	key       string
	validator Validator
	logger    *slog.Logger
	hooks     Hooks

	saveMu sync.Mutex // one save at a time

	mu       sync.Mutex
	interval time.Duration
	lastSave time.Time
	stop     chan struct{}
	wg       sync.WaitGroup
	started  bool
	closed   bool

	unsubscribe func()
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithKey sets the storage key.
func WithKey(key string) ManagerOption {
	return func(m *Manager) {
		if key != "" {
			m.key = key
		}
	}
}

// WithValidator sets the pre-save validator.
func WithValidator(v Validator) ManagerOption {
	return func(m *Manager) {
		if v != nil {
			m.validator = v
		}
	}
}

// WithInterval sets the auto-save interval.
func WithInterval(d time.Duration) ManagerOption {
	return func(m *Manager) {
		if d > 0 {
			m.interval = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) ManagerOption {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithHooks sets save observers.
func WithHooks(h Hooks) ManagerOption {
	return func(m *Manager) {
		m.hooks = h
	}
}

// NewManager creates a Manager for store backed by kv.
func NewManager(store *document.Store, kv storage.KV, opts ...ManagerOption) *Manager {
	m := &Manager{
		store:     store,
		kv:        kv,
		key:       DefaultSnapshotKey,
		validator: AcceptAll,
		logger:    slog.Default(),
		interval:  DefaultAutoSaveInterval,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = m.logger.With("component", "persist")
	return m
}

// Key returns the storage key.
func (m *Manager) Key() string {
	return m.key
}

// Interval returns the auto-save interval.
func (m *Manager) Interval() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.interval
}

// LastSave returns the time of the last successful save made by this
// manager, or the zero time.
func (m *Manager) LastSave() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastSave
}

// Save validates and persists the current content immediately,
// regardless of the modified flag or the timer.
func (m *Manager) Save(ctx context.Context) bool {
	return m.save(ctx, "manual")
}

func (m *Manager) save(ctx context.Context, trigger string) (ok bool) {
	m.saveMu.Lock()
	defer m.saveMu.Unlock()

	content := m.store.Content()

	defer func() {
		if r := recover(); r != nil {
			m.fail(&StorageError{Op: "save", Err: panicError(r)}, trigger)
			ok = false
		}
	}()

	if err := m.validator.Validate(ctx, content); err != nil {
		var ve *ValidationError
		if !errors.As(err, &ve) {
			ve = &ValidationError{Reason: err.Error(), Err: err}
		}
		m.fail(ve, trigger)
		return false
	}

	now := saveTime(m.store.Now())
	snap := NewSnapshot(content, now)
	raw, err := snap.Encode()
	if err != nil {
		m.fail(&StorageError{Op: "save", Err: err}, trigger)
		return false
	}
	if err := m.kv.Set(ctx, m.key, raw); err != nil {
		m.fail(&StorageError{Op: "save", Err: err}, trigger)
		return false
	}

	m.mu.Lock()
	m.lastSave = now
	m.mu.Unlock()

	if m.store.State().HasError() {
		m.store.ClearError()
	}
	m.store.MarkSavedContent(content, now)

	m.logger.Debug("snapshot saved", "trigger", trigger, "bytes", len(content))
	if m.hooks.OnSaved != nil {
		m.hooks.OnSaved(snap, trigger)
	}
	return true
}

func (m *Manager) fail(err error, trigger string) {
	m.logger.Warn("save failed", "trigger", trigger, "error", err)
	m.store.SetError(err.Error())
	if m.hooks.OnFailed != nil {
		m.hooks.OnFailed(err, trigger)
	}
}

// LoadSavedContent reads the persisted snapshot. Read failures are
// recorded on the store and reported as HasData false.
func (m *Manager) LoadSavedContent(ctx context.Context) Loaded {
	raw, ok, err := m.kv.Get(ctx, m.key)
	if err != nil {
		m.store.SetError((&StorageError{Op: "load", Err: err}).Error())
		m.logger.Warn("load failed", "error", err)
		return Loaded{}
	}
	if !ok {
		return Loaded{}
	}

	snap, err := DecodeSnapshot(raw)
	if err != nil {
		m.store.SetError((&StorageError{Op: "load", Err: err}).Error())
		m.logger.Warn("discarding unreadable snapshot", "error", err)
		return Loaded{}
	}
	return Loaded{
		Content:   snap.Content,
		Timestamp: snap.Time(),
		HasData:   true,
	}
}

// ClearSavedContent erases the snapshot and resets local save
// bookkeeping. The document store is left untouched.
func (m *Manager) ClearSavedContent(ctx context.Context) {
	if err := m.kv.Remove(ctx, m.key); err != nil {
		m.store.SetError((&StorageError{Op: "clear", Err: err}).Error())
		m.logger.Warn("clear failed", "error", err)
		return
	}
	m.mu.Lock()
	m.lastSave = time.Time{}
	m.mu.Unlock()
}

// Start begins auto-saving and follows the store's auto-save flag.
func (m *Manager) Start() {
	m.mu.Lock()
	if m.started || m.closed {
		m.mu.Unlock()
		return
	}
	m.started = true
	m.mu.Unlock()

	m.unsubscribe = m.store.Subscribe(func(c document.Change) {
		if c.AutoSaveToggled() {
			m.restartTimer()
		}
	})
	m.restartTimer()
}

// SetInterval changes the auto-save interval and restarts the timer.
func (m *Manager) SetInterval(d time.Duration) {
	if d <= 0 {
		return
	}
	m.mu.Lock()
	m.interval = d
	started := m.started
	m.mu.Unlock()

	if started {
		m.restartTimer()
	}
}

// restartTimer stops the current timer and starts a new one when
// auto-save is enabled.
func (m *Manager) restartTimer() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stop != nil {
		close(m.stop)
		m.stop = nil
	}
	if m.closed || !m.store.State().AutoSaveEnabled {
		m.logger.Debug("auto-save stopped")
		return
	}

	stop := make(chan struct{})
	m.stop = stop
	interval := m.interval

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				select {
				case <-stop:
					return
				default:
				}
				m.autoSave()
			}
		}
	}()
	m.logger.Debug("auto-save started", "interval", interval)
}

func (m *Manager) autoSave() {
	st := m.store.State()
	if !st.AutoSaveEnabled || !st.IsModified || strings.TrimSpace(st.Content) == "" {
		return
	}
	m.save(context.Background(), "auto")
}

// Close stops the auto-save timer and waits for it to exit.
func (m *Manager) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	if m.stop != nil {
		close(m.stop)
		m.stop = nil
	}
	m.mu.Unlock()

	if m.unsubscribe != nil {
		m.unsubscribe()
	}
	m.wg.Wait()
}
