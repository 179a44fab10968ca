package watcher

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) handle(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

func (r *recorder) last() Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.events[len(r.events)-1]
}

// waitFor polls until cond holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestWatcher_WriteCoalesced(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "deck.md")
	if err := os.WriteFile(path, []byte("# A"), 0o644); err != nil {
		t.Fatal(err)
	}

	var rec recorder
	w, err := New(rec.handle, WithDebounce(50*time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if err := w.Watch(path); err != nil {
		t.Fatal(err)
	}

	for _, s := range []string{"# B", "# C", "# D"} {
		if err := os.WriteFile(path, []byte(s), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	waitFor(t, func() bool { return rec.count() >= 1 })
	time.Sleep(100 * time.Millisecond)

	if rec.count() != 1 {
		t.Errorf("events = %d, want 1 coalesced", rec.count())
	}
	e := rec.last()
	if e.Path != path || !e.Op.Has(OpWrite) {
		t.Errorf("event = %+v", e)
	}
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "deck.md")
	os.WriteFile(path, nil, 0o644)

	var rec recorder
	w, err := New(rec.handle, WithDebounce(20*time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()
	w.Watch(path)

	os.WriteFile(filepath.Join(dir, "other.md"), []byte("x"), 0o644)
	time.Sleep(150 * time.Millisecond)

	if rec.count() != 0 {
		t.Errorf("events for unwatched file: %+v", rec.events)
	}
}

func TestWatcher_CreateAfterWatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "later.toml")

	var rec recorder
	w, err := New(rec.handle, WithDebounce(20*time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if err := w.Watch(path); err != nil {
		t.Fatal(err)
	}
	os.WriteFile(path, []byte("x"), 0o644)

	waitFor(t, func() bool { return rec.count() >= 1 })
	if !rec.last().Op.Has(OpCreate) {
		t.Errorf("op = %v, want create", rec.last().Op)
	}
}

func TestWatcher_Errors(t *testing.T) {
	w, err := New(nil)
	if err != nil {
		t.Fatal(err)
	}

	if err := w.Watch(t.TempDir()); !errors.Is(err, ErrIsDirectory) {
		t.Errorf("watching a directory: err = %v", err)
	}

	w.Close()
	if err := w.Watch(filepath.Join(t.TempDir(), "x")); !errors.Is(err, ErrWatcherClosed) {
		t.Errorf("watch after close: err = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close = %v", err)
	}
}
