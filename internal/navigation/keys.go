package navigation

import "github.com/dshills/deckstorm/internal/input/key"

// HandleKey dispatches a keyboard shortcut. It reports whether the event
// was consumed. Events delivered to text-entry targets are never handled.
//
//	Left, Up            previous slide
//	Right, Down, Space  next slide
//	Home, End           first, last slide
//	1-9                 jump to that slide, if it exists
//	f, F11              toggle fullscreen
//	t                   toggle thumbnails
//	Ctrl/Meta + + or =  zoom in
//	Ctrl/Meta + -       zoom out
//	Ctrl/Meta + 0       reset zoom
func (c *Controller) HandleKey(ev key.Event, target key.Target) bool {
	if target.IsTextEntry() {
		return false
	}

	if ev.IsShortcut() {
		if !ev.IsRune() {
			return false
		}
		switch ev.Rune {
		case '+', '=':
			c.ZoomIn()
		case '-':
			c.ZoomOut()
		case '0':
			c.ResetZoom()
		default:
			return false
		}
		return true
	}

	switch ev.Key {
	case key.KeyLeft, key.KeyUp:
		c.GoToPrevious()
		return true
	case key.KeyRight, key.KeyDown, key.KeySpace:
		c.GoToNext()
		return true
	case key.KeyHome:
		c.GoToFirst()
		return true
	case key.KeyEnd:
		c.GoToLast()
		return true
	case key.KeyF11:
		c.ToggleFullscreen()
		return true
	case key.KeyRune:
	default:
		return false
	}

	switch r := ev.Rune; {
	case r == ' ':
		c.GoToNext()
	case r >= '1' && r <= '9':
		idx := int(r - '1')
		c.mu.RLock()
		ok := idx < c.total
		c.mu.RUnlock()
		if !ok {
			return false
		}
		c.GoToSlide(idx)
	case r == 'f':
		c.ToggleFullscreen()
	case r == 't':
		c.ToggleThumbnails()
	default:
		return false
	}
	return true
}
