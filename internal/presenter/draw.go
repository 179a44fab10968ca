package presenter

import (
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/uniseg"
)

// drawLine writes text at (x, y), clipped to width cells. Rows styled
// with a background are padded to the full width.
func drawLine(s tcell.Screen, x, y, width int, text string, style tcell.Style) {
	col := 0
	for _, r := range text {
		rw := uniseg.StringWidth(string(r))
		if rw == 0 {
			continue
		}
		if col+rw > width {
			break
		}
		s.SetContent(x+col, y, r, nil, style)
		col += rw
	}
	for ; col < width; col++ {
		s.SetContent(x+col, y, ' ', nil, style)
	}
}
