// Package document holds the canonical document state.
//
// The Store is the single source of truth for document content and its
// derived metadata. It is constructed once at the application root and
// passed to the components that need it; nothing reaches it through
// package-level state.
package document

import (
	"slices"
	"strings"
	"sync"
	"time"
	"unicode/utf8"
)

// DefaultLargeFileThreshold is the content length above which a document
// is considered large.
const DefaultLargeFileThreshold = 10_000

// Origin identifies where a store mutation came from.
type Origin uint8

const (
	// OriginSystem marks mutations made by the application itself
	// (initialisation, reset, save bookkeeping).
	OriginSystem Origin = iota

	// OriginLocalEdit marks content pushed from the local editing surface.
	OriginLocalEdit

	// OriginExternal marks content injected from outside the editing
	// surface, such as a content generator.
	OriginExternal
)

// String returns the origin name.
func (o Origin) String() string {
	switch o {
	case OriginSystem:
		return "system"
	case OriginLocalEdit:
		return "local"
	case OriginExternal:
		return "external"
	default:
		return "unknown"
	}
}

// State is an immutable copy of the document state.
type State struct {
	Content         string
	Length          int
	IsModified      bool
	IsLargeFile     bool
	IsSynced        bool
	LastSyncTime    time.Time
	LastSaveTime    time.Time
	AutoSaveEnabled bool
	Error           string
}

// HasError reports whether an error is recorded.
func (s State) HasError() bool {
	return s.Error != ""
}

// IsBlank reports whether the content is empty or whitespace only.
func (s State) IsBlank() bool {
	return strings.TrimSpace(s.Content) == ""
}

// Change describes one store mutation.
type Change struct {
	Origin   Origin
	Previous State
	Current  State
}

// ContentChanged reports whether the mutation changed the content.
func (c Change) ContentChanged() bool {
	return c.Previous.Content != c.Current.Content
}

// AutoSaveToggled reports whether the mutation flipped AutoSaveEnabled.
func (c Change) AutoSaveToggled() bool {
	return c.Previous.AutoSaveEnabled != c.Current.AutoSaveEnabled
}

// Listener receives store changes. It is called synchronously after the
// mutation, outside the store lock.
type Listener func(Change)

// Store owns the document state.
type Store struct {
	mu    sync.RWMutex
	state State

	largeFileThreshold int
	now                func() time.Time

	listenerMu sync.RWMutex
	listeners  map[uint64]Listener
	nextID     uint64
}

// Option configures a Store.
type Option func(*Store)

// WithLargeFileThreshold sets the large-file threshold.
func WithLargeFileThreshold(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.largeFileThreshold = n
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithAutoSave sets the initial auto-save flag.
func WithAutoSave(enabled bool) Option {
	return func(s *Store) {
		s.state.AutoSaveEnabled = enabled
	}
}

// NewStore creates an empty store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		largeFileThreshold: DefaultLargeFileThreshold,
		now:                time.Now,
		listeners:          make(map[uint64]Listener),
	}
	s.state = initialState(true)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func initialState(autoSave bool) State {
	return State{
		IsSynced:        true,
		AutoSaveEnabled: autoSave,
	}
}

// LargeFileThreshold returns the configured threshold.
func (s *Store) LargeFileThreshold() int {
	return s.largeFileThreshold
}

// Now returns the store's current time.
func (s *Store) Now() time.Time {
	return s.now()
}

// State returns a copy of the current state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Content returns the current content.
func (s *Store) Content() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Content
}

// SetContent replaces the content. The document is marked modified only
// when the text differs from the current content. The document is marked
// out of sync.
func (s *Store) SetContent(text string, origin Origin) {
	s.mutate(origin, func(st *State) {
		if st.Content != text {
			st.IsModified = true
		}
		s.setContentLocked(st, text)
		st.IsSynced = false
	})
}

// UpdateContent replaces the content and always marks the document
// modified.
func (s *Store) UpdateContent(text string, origin Origin) {
	s.mutate(origin, func(st *State) {
		s.setContentLocked(st, text)
		st.IsModified = true
	})
}

// ClearContent empties the document, clears the modified flag and marks
// it in sync.
func (s *Store) ClearContent() {
	s.mutate(OriginSystem, func(st *State) {
		s.setContentLocked(st, "")
		st.IsModified = false
		st.IsSynced = true
	})
}

// SetError records an error message. An empty message clears it.
func (s *Store) SetError(msg string) {
	s.mutate(OriginSystem, func(st *State) {
		st.Error = msg
	})
}

// ClearError clears any recorded error.
func (s *Store) ClearError() {
	s.SetError("")
}

// SetAutoSave enables or disables auto-save.
func (s *Store) SetAutoSave(enabled bool) {
	s.mutate(OriginSystem, func(st *State) {
		st.AutoSaveEnabled = enabled
	})
}

// MarkSynced records that the local buffer and the store agree.
func (s *Store) MarkSynced(t time.Time) {
	s.mutate(OriginLocalEdit, func(st *State) {
		st.IsSynced = true
		st.LastSyncTime = t
	})
}

// MarkSaved records a successful save: LastSaveTime is set and the
// modified flag cleared.
func (s *Store) MarkSaved(t time.Time) {
	s.mutate(OriginSystem, func(st *State) {
		st.LastSaveTime = t
		st.IsModified = false
	})
}

// MarkSavedContent records a save of content taken at t. The modified
// flag is cleared only if the document still holds that content, so an
// edit that lands while the save is in flight stays modified.
func (s *Store) MarkSavedContent(content string, t time.Time) {
	s.mutate(OriginSystem, func(st *State) {
		st.LastSaveTime = t
		if st.Content == content {
			st.IsModified = false
		}
	})
}

// ResetState returns the store to its initial defaults. The auto-save
// flag is kept.
func (s *Store) ResetState() {
	s.mutate(OriginSystem, func(st *State) {
		*st = initialState(st.AutoSaveEnabled)
	})
}

// Subscribe registers a listener and returns a function that removes it.
func (s *Store) Subscribe(l Listener) func() {
	if l == nil {
		return func() {}
	}

	s.listenerMu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	s.listenerMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.listenerMu.Lock()
			delete(s.listeners, id)
			s.listenerMu.Unlock()
		})
	}
}

// setContentLocked updates content and the derived fields. Must hold s.mu.
func (s *Store) setContentLocked(st *State, text string) {
	st.Content = text
	st.Length = utf8.RuneCountInString(text)
	st.IsLargeFile = st.Length > s.largeFileThreshold
}

func (s *Store) mutate(origin Origin, fn func(*State)) {
	s.mu.Lock()
	prev := s.state
	fn(&s.state)
	cur := s.state
	s.mu.Unlock()

	s.notify(Change{Origin: origin, Previous: prev, Current: cur})
}

func (s *Store) notify(c Change) {
	s.listenerMu.RLock()
	ids := make([]uint64, 0, len(s.listeners))
	for id := range s.listeners {
		ids = append(ids, id)
	}
	s.listenerMu.RUnlock()

	// Registration order.
	slices.Sort(ids)
	for _, id := range ids {
		s.listenerMu.RLock()
		l, ok := s.listeners[id]
		s.listenerMu.RUnlock()
		if ok {
			l(c)
		}
	}
}
