package document

import (
	"strings"
	"testing"
	"time"
)

func TestStore_SetContent(t *testing.T) {
	s := NewStore()

	s.SetContent("hello", OriginLocalEdit)
	st := s.State()
	if st.Content != "hello" {
		t.Errorf("Content = %q, want %q", st.Content, "hello")
	}
	if st.Length != 5 {
		t.Errorf("Length = %d, want 5", st.Length)
	}
	if !st.IsModified {
		t.Error("IsModified = false after changing content")
	}
	if st.IsSynced {
		t.Error("IsSynced = true after SetContent")
	}
}

func TestStore_SetContentSameTextNotModified(t *testing.T) {
	s := NewStore()
	s.SetContent("same", OriginSystem)
	s.MarkSaved(time.Now())

	s.SetContent("same", OriginSystem)
	if s.State().IsModified {
		t.Error("IsModified = true after setting identical content")
	}
}

func TestStore_UpdateContentAlwaysModified(t *testing.T) {
	s := NewStore()
	s.SetContent("x", OriginSystem)
	s.MarkSaved(time.Now())

	s.UpdateContent("x", OriginLocalEdit)
	if !s.State().IsModified {
		t.Error("IsModified = false after UpdateContent")
	}
}

func TestStore_ClearContent(t *testing.T) {
	s := NewStore()
	s.SetContent("draft", OriginLocalEdit)
	s.ClearContent()

	st := s.State()
	if st.Content != "" || st.Length != 0 {
		t.Errorf("content not cleared: %+v", st)
	}
	if st.IsModified {
		t.Error("IsModified = true after ClearContent")
	}
	if !st.IsSynced {
		t.Error("IsSynced = false after ClearContent")
	}
}

func TestStore_LargeFileBoundary(t *testing.T) {
	tests := []struct {
		name   string
		length int
		want   bool
	}{
		{"at threshold", 10_000, false},
		{"above threshold", 10_001, true},
		{"empty", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStore()
			s.SetContent(strings.Repeat("a", tt.length), OriginLocalEdit)
			if got := s.State().IsLargeFile; got != tt.want {
				t.Errorf("IsLargeFile = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStore_CustomThreshold(t *testing.T) {
	s := NewStore(WithLargeFileThreshold(3))
	s.UpdateContent("abcd", OriginLocalEdit)
	if !s.State().IsLargeFile {
		t.Error("IsLargeFile = false above custom threshold")
	}
	if s.LargeFileThreshold() != 3 {
		t.Errorf("LargeFileThreshold = %d, want 3", s.LargeFileThreshold())
	}
}

func TestStore_MarkSaved(t *testing.T) {
	s := NewStore()
	s.UpdateContent("text", OriginLocalEdit)

	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	s.MarkSaved(at)

	st := s.State()
	if st.IsModified {
		t.Error("IsModified = true after MarkSaved")
	}
	if !st.LastSaveTime.Equal(at) {
		t.Errorf("LastSaveTime = %v, want %v", st.LastSaveTime, at)
	}
}

func TestStore_Error(t *testing.T) {
	s := NewStore()
	s.SetError("quota exceeded")
	if !s.State().HasError() {
		t.Fatal("HasError = false after SetError")
	}
	s.ClearError()
	if s.State().HasError() {
		t.Error("HasError = true after ClearError")
	}
}

func TestStore_ResetState(t *testing.T) {
	s := NewStore(WithAutoSave(false))
	s.UpdateContent("text", OriginLocalEdit)
	s.SetError("boom")
	s.ResetState()

	st := s.State()
	if st.Content != "" || st.IsModified || st.HasError() || !st.IsSynced {
		t.Errorf("state not reset: %+v", st)
	}
	if st.AutoSaveEnabled {
		t.Error("ResetState changed AutoSaveEnabled")
	}
}

func TestStore_SubscribeReceivesOrigin(t *testing.T) {
	s := NewStore()

	var changes []Change
	unsubscribe := s.Subscribe(func(c Change) {
		changes = append(changes, c)
	})

	s.SetContent("generated", OriginExternal)
	s.UpdateContent("typed", OriginLocalEdit)
	unsubscribe()
	s.UpdateContent("ignored", OriginLocalEdit)

	if len(changes) != 2 {
		t.Fatalf("got %d changes, want 2", len(changes))
	}
	if changes[0].Origin != OriginExternal || !changes[0].ContentChanged() {
		t.Errorf("first change = %+v", changes[0])
	}
	if changes[1].Origin != OriginLocalEdit || changes[1].Current.Content != "typed" {
		t.Errorf("second change = %+v", changes[1])
	}
}

func TestStore_AutoSaveToggled(t *testing.T) {
	s := NewStore()

	var toggled int
	s.Subscribe(func(c Change) {
		if c.AutoSaveToggled() {
			toggled++
		}
	})

	s.SetAutoSave(false)
	s.SetAutoSave(false)
	s.SetAutoSave(true)

	if toggled != 2 {
		t.Errorf("toggled = %d, want 2", toggled)
	}
}

func TestOrigin_String(t *testing.T) {
	tests := map[Origin]string{
		OriginSystem:    "system",
		OriginLocalEdit: "local",
		OriginExternal:  "external",
		Origin(99):      "unknown",
	}
	for o, want := range tests {
		if got := o.String(); got != want {
			t.Errorf("Origin(%d).String() = %q, want %q", o, got, want)
		}
	}
}

func TestStore_MarkSavedContentKeepsLaterEdits(t *testing.T) {
	s := NewStore()
	s.UpdateContent("v1", OriginLocalEdit)
	s.UpdateContent("v2", OriginLocalEdit)

	s.MarkSavedContent("v1", time.Now())
	if !s.State().IsModified {
		t.Error("IsModified cleared although content changed after the save began")
	}

	s.MarkSavedContent("v2", time.Now())
	if s.State().IsModified {
		t.Error("IsModified = true after saving the current content")
	}
}
