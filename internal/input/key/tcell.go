package key

import (
	"time"

	"github.com/gdamore/tcell/v2"
)

var tcellKeys = map[tcell.Key]Key{
	tcell.KeyEscape:     KeyEscape,
	tcell.KeyEnter:      KeyEnter,
	tcell.KeyTab:        KeyTab,
	tcell.KeyBackspace:  KeyBackspace,
	tcell.KeyBackspace2: KeyBackspace,
	tcell.KeyDelete:     KeyDelete,
	tcell.KeyHome:       KeyHome,
	tcell.KeyEnd:        KeyEnd,
	tcell.KeyPgUp:       KeyPageUp,
	tcell.KeyPgDn:       KeyPageDown,
	tcell.KeyUp:         KeyUp,
	tcell.KeyDown:       KeyDown,
	tcell.KeyLeft:       KeyLeft,
	tcell.KeyRight:      KeyRight,
	tcell.KeyF1:         KeyF1,
	tcell.KeyF2:         KeyF2,
	tcell.KeyF3:         KeyF3,
	tcell.KeyF4:         KeyF4,
	tcell.KeyF5:         KeyF5,
	tcell.KeyF6:         KeyF6,
	tcell.KeyF7:         KeyF7,
	tcell.KeyF8:         KeyF8,
	tcell.KeyF9:         KeyF9,
	tcell.KeyF10:        KeyF10,
	tcell.KeyF11:        KeyF11,
	tcell.KeyF12:        KeyF12,
}

// FromTcell converts a terminal key event.
//
// tcell reports Ctrl+letter as dedicated control keys; these become the
// lower-case rune with ModCtrl so shortcuts can be matched uniformly.
// The space bar becomes KeySpace.
func FromTcell(ev *tcell.EventKey) Event {
	e := Event{
		Modifiers: FromTcellMod(ev.Modifiers()),
		Timestamp: ev.When(),
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}

	k := ev.Key()
	switch {
	case k == tcell.KeyRune && ev.Rune() == ' ':
		e.Key = KeySpace
	case k == tcell.KeyRune:
		e.Key = KeyRune
		e.Rune = ev.Rune()
	case tcellKeys[k] != KeyNone:
		e.Key = tcellKeys[k]
	case k >= tcell.KeyCtrlA && k <= tcell.KeyCtrlZ:
		e.Key = KeyRune
		e.Rune = 'a' + rune(k-tcell.KeyCtrlA)
		e.Modifiers = e.Modifiers.With(ModCtrl)
	}
	return e
}

// FromTcellMod converts a tcell modifier mask.
func FromTcellMod(m tcell.ModMask) Modifier {
	var result Modifier
	if m&tcell.ModShift != 0 {
		result |= ModShift
	}
	if m&tcell.ModCtrl != 0 {
		result |= ModCtrl
	}
	if m&tcell.ModAlt != 0 {
		result |= ModAlt
	}
	if m&tcell.ModMeta != 0 {
		result |= ModMeta
	}
	return result
}
