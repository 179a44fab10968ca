package key

import (
	"strings"
	"time"
)

// Target describes where a key event was delivered. Events aimed at
// text-entry controls are not shortcuts.
type Target uint8

const (
	// TargetNone is a target that does not accept text, such as the
	// slide viewport.
	TargetNone Target = iota

	// TargetTextInput is a single-line input field.
	TargetTextInput

	// TargetTextArea is a multi-line editor.
	TargetTextArea
)

// IsTextEntry reports whether the target consumes typed characters.
func (t Target) IsTextEntry() bool {
	return t == TargetTextInput || t == TargetTextArea
}

// Event represents a single key press event.
type Event struct {
	// Key identifies the key pressed.
	Key Key

	// Rune is the character for KeyRune events.
	Rune rune

	// Modifiers contains the active modifier keys.
	Modifiers Modifier

	// Timestamp is when the event occurred.
	Timestamp time.Time
}

// NewRuneEvent creates a key event for a character.
func NewRuneEvent(r rune, mods Modifier) Event {
	return Event{
		Key:       KeyRune,
		Rune:      r,
		Modifiers: mods,
		Timestamp: time.Now(),
	}
}

// NewSpecialEvent creates a key event for a special key.
func NewSpecialEvent(key Key, mods Modifier) Event {
	return Event{
		Key:       key,
		Modifiers: mods,
		Timestamp: time.Now(),
	}
}

// IsRune returns true if this is a character key event.
func (e Event) IsRune() bool {
	return e.Key == KeyRune && e.Rune != 0
}

// IsShortcut returns true if Ctrl or Meta is held, the modifiers used for
// zoom shortcuts.
func (e Event) IsShortcut() bool {
	return e.Modifiers.HasCtrl() || e.Modifiers.HasMeta()
}

// String returns a representation like "Ctrl+s", "Home" or "Shift+F11".
func (e Event) String() string {
	var name string
	switch {
	case e.IsRune() && e.Rune == ' ':
		name = KeySpace.String()
	case e.IsRune():
		name = string(e.Rune)
	default:
		name = e.Key.String()
	}

	mods := e.Modifiers
	if e.IsRune() {
		// Shift is part of the character.
		mods &^= ModShift
	}
	if mods == ModNone {
		return name
	}
	return strings.Join([]string{mods.String(), name}, "+")
}
