package key

import (
	"testing"

	"github.com/gdamore/tcell/v2"
)

func TestKeyString(t *testing.T) {
	tests := []struct {
		key  Key
		want string
	}{
		{KeyNone, "None"},
		{KeyEscape, "Escape"},
		{KeyHome, "Home"},
		{KeyLeft, "Left"},
		{KeyF1, "F1"},
		{KeyF11, "F11"},
		{KeySpace, "Space"},
		{KeyRune, "Rune"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.key.String(); got != tt.want {
				t.Errorf("Key.String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFromName(t *testing.T) {
	tests := []struct {
		name string
		want Key
	}{
		{"home", KeyHome},
		{"End", KeyEnd},
		{"f11", KeyF11},
		{" Space ", KeySpace},
		{"bogus", KeyNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FromName(tt.name); got != tt.want {
				t.Errorf("FromName(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestEventString(t *testing.T) {
	tests := []struct {
		ev   Event
		want string
	}{
		{NewRuneEvent('f', ModNone), "f"},
		{NewRuneEvent('F', ModShift), "F"},
		{NewRuneEvent('s', ModCtrl), "Ctrl+s"},
		{NewRuneEvent(' ', ModNone), "Space"},
		{NewSpecialEvent(KeyF11, ModShift), "Shift+F11"},
		{NewSpecialEvent(KeyHome, ModNone), "Home"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.ev.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTargetIsTextEntry(t *testing.T) {
	if TargetNone.IsTextEntry() {
		t.Error("TargetNone is text entry")
	}
	if !TargetTextInput.IsTextEntry() || !TargetTextArea.IsTextEntry() {
		t.Error("text targets not recognised")
	}
}

func TestFromTcell(t *testing.T) {
	tests := []struct {
		name string
		ev   *tcell.EventKey
		key  Key
		r    rune
		mods Modifier
	}{
		{"rune", tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone), KeyRune, 'q', ModNone},
		{"space", tcell.NewEventKey(tcell.KeyRune, ' ', tcell.ModNone), KeySpace, 0, ModNone},
		{"arrow", tcell.NewEventKey(tcell.KeyRight, 0, tcell.ModNone), KeyRight, 0, ModNone},
		{"f11", tcell.NewEventKey(tcell.KeyF11, 0, tcell.ModNone), KeyF11, 0, ModNone},
		{"ctrl+s", tcell.NewEventKey(tcell.KeyCtrlS, 0, tcell.ModCtrl), KeyRune, 's', ModCtrl},
		{"ctrl+plus", tcell.NewEventKey(tcell.KeyRune, '+', tcell.ModCtrl), KeyRune, '+', ModCtrl},
		{"alt+home", tcell.NewEventKey(tcell.KeyHome, 0, tcell.ModAlt), KeyHome, 0, ModAlt},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromTcell(tt.ev)
			if got.Key != tt.key || got.Rune != tt.r || got.Modifiers != tt.mods {
				t.Errorf("FromTcell = %+v, want key %v rune %q mods %v", got, tt.key, tt.r, tt.mods)
			}
			if got.Timestamp.IsZero() {
				t.Error("Timestamp not set")
			}
		})
	}
}
