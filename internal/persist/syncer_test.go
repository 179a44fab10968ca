package persist

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dshills/deckstorm/internal/document"
	"github.com/dshills/deckstorm/internal/storage"
)

type fixedSnapshot Loaded

func (f fixedSnapshot) LoadSavedContent(context.Context) Loaded { return Loaded(f) }

func TestSyncer_InitPriority(t *testing.T) {
	saved := fixedSnapshot{Content: "# Saved", Timestamp: time.UnixMilli(1000), HasData: true}
	blankSaved := fixedSnapshot{Content: "  \n", HasData: true}

	tests := []struct {
		name       string
		snapshot   SnapshotSource
		initial    string
		storeValue string
		want       string
		wantSource InitSource
	}{
		{"snapshot wins", saved, "# Initial", "# Store", "# Saved", InitFromSnapshot},
		{"blank snapshot skipped", blankSaved, "# Initial", "", "# Initial", InitFromInitial},
		{"initial over store", nil, "# Initial", "# Store", "# Initial", InitFromInitial},
		{"store content", nil, "", "# Store", "# Store", InitFromStore},
		{"empty", nil, "", "", "", InitEmpty},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := document.NewStore()
			if tt.storeValue != "" {
				store.SetContent(tt.storeValue, document.OriginSystem)
			}

			opts := []SyncerOption{WithSyncDelay(10 * time.Millisecond)}
			if tt.snapshot != nil {
				opts = append(opts, WithSnapshotSource(tt.snapshot))
			}
			s := NewSyncer(store, opts...)
			defer s.Close()

			source := s.Init(context.Background(), tt.initial)
			if source != tt.wantSource {
				t.Errorf("source = %q, want %q", source, tt.wantSource)
			}
			if s.Buffer() != tt.want {
				t.Errorf("Buffer = %q, want %q", s.Buffer(), tt.want)
			}
			if store.Content() != tt.want {
				t.Errorf("store content = %q, want %q", store.Content(), tt.want)
			}
		})
	}
}

func TestSyncer_InitFromSnapshotNotModified(t *testing.T) {
	store := document.NewStore()
	s := NewSyncer(store, WithSnapshotSource(fixedSnapshot{
		Content: "# Saved", Timestamp: time.UnixMilli(5000), HasData: true,
	}))
	defer s.Close()

	s.Init(context.Background(), "")
	st := store.State()
	if st.IsModified {
		t.Error("restored snapshot marked modified")
	}
	if !st.LastSaveTime.Equal(time.UnixMilli(5000)) {
		t.Errorf("LastSaveTime = %v", st.LastSaveTime)
	}
}

func TestSyncer_EditDebouncedToStore(t *testing.T) {
	store := document.NewStore()
	s := NewSyncer(store, WithSyncDelay(30*time.Millisecond))
	defer s.Close()

	var localChanges atomic.Int32
	store.Subscribe(func(c document.Change) {
		if c.Origin == document.OriginLocalEdit && c.ContentChanged() {
			localChanges.Add(1)
		}
	})

	s.Edit("#")
	s.Edit("# T")
	s.Edit("# Title")

	if store.Content() != "" {
		t.Fatalf("store updated before debounce: %q", store.Content())
	}
	if s.Buffer() != "# Title" {
		t.Errorf("Buffer = %q", s.Buffer())
	}

	time.Sleep(80 * time.Millisecond)

	if store.Content() != "# Title" {
		t.Errorf("store content = %q, want %q", store.Content(), "# Title")
	}
	if localChanges.Load() != 1 {
		t.Errorf("local changes = %d, want 1", localChanges.Load())
	}
	st := store.State()
	if !st.IsModified || !st.IsSynced || st.LastSyncTime.IsZero() {
		t.Errorf("state after sync = %+v", st)
	}
}

func TestSyncer_Flush(t *testing.T) {
	store := document.NewStore()
	s := NewSyncer(store, WithSyncDelay(time.Second))
	defer s.Close()

	s.Edit("draft")
	s.Flush()

	if store.Content() != "draft" {
		t.Errorf("store content = %q after Flush", store.Content())
	}
	if s.Pending() {
		t.Error("push still pending after Flush")
	}
}

func TestSyncer_FlushWithoutEdit(t *testing.T) {
	store := document.NewStore()
	saved := fixedSnapshot{Content: "# Saved", Timestamp: time.UnixMilli(1000), HasData: true}
	s := NewSyncer(store, WithSyncDelay(time.Second), WithSnapshotSource(saved))
	defer s.Close()

	s.Init(context.Background(), "")
	if store.State().IsModified {
		t.Fatal("restored document starts modified")
	}
	var changes atomic.Int32
	unsub := store.Subscribe(func(document.Change) { changes.Add(1) })
	defer unsub()

	s.Flush()

	if store.State().IsModified {
		t.Error("Flush without a pending edit marked the document modified")
	}
	if changes.Load() != 0 {
		t.Errorf("store changes = %d, want 0", changes.Load())
	}
}

func TestSyncer_AdoptsExternalContent(t *testing.T) {
	store := document.NewStore()
	s := NewSyncer(store, WithSyncDelay(30*time.Millisecond))
	defer s.Close()

	var adopted atomic.Value
	s.OnAdopt(func(text string) { adopted.Store(text) })

	store.SetContent("# Generated", document.OriginExternal)

	if s.Buffer() != "# Generated" {
		t.Errorf("Buffer = %q, want adopted content", s.Buffer())
	}
	if got, _ := adopted.Load().(string); got != "# Generated" {
		t.Errorf("OnAdopt got %q", got)
	}
	if s.Pending() {
		t.Error("adoption scheduled a push back to the store")
	}
}

func TestSyncer_IgnoresNonExternalChanges(t *testing.T) {
	store := document.NewStore()
	s := NewSyncer(store)
	defer s.Close()

	store.SetContent("system text", document.OriginSystem)
	store.UpdateContent("local text", document.OriginLocalEdit)

	if s.Buffer() != "" {
		t.Errorf("Buffer = %q, want untouched", s.Buffer())
	}
}

func TestSyncer_ExternalCancelsPendingEdit(t *testing.T) {
	store := document.NewStore()
	s := NewSyncer(store, WithSyncDelay(30*time.Millisecond))
	defer s.Close()

	s.Edit("stale local text")
	store.SetContent("# Injected", document.OriginExternal)

	time.Sleep(80 * time.Millisecond)

	if store.Content() != "# Injected" {
		t.Errorf("store content = %q, stale edit overwrote injection", store.Content())
	}
	if s.Buffer() != "# Injected" {
		t.Errorf("Buffer = %q", s.Buffer())
	}
}

func TestSyncer_WithManagerSnapshot(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()

	first := document.NewStore()
	m := NewManager(first, kv)
	first.UpdateContent("# Persisted", document.OriginLocalEdit)
	if !m.Save(ctx) {
		t.Fatal("Save failed")
	}

	second := document.NewStore()
	s := NewSyncer(second, WithSnapshotSource(NewManager(second, kv)))
	defer s.Close()

	if src := s.Init(ctx, "# Ignored"); src != InitFromSnapshot {
		t.Errorf("source = %q, want snapshot", src)
	}
	if second.Content() != "# Persisted" {
		t.Errorf("content = %q", second.Content())
	}
}
