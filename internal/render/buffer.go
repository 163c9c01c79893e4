// Package render implements low-level cell-buffer drawing helpers shared
// by internal/tui's five screens: plain text, gutters, and fill/clip
// primitives built on tcell's cell grid.
package render

import (
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/uniseg"
)

// FillRect fills [x, x+w) x [y, y+h) with a space in the given style.
func FillRect(screen tcell.Screen, x, y, w, h int, style tcell.Style) {
	for row := y; row < y+h; row++ {
		for col := x; col < x+w; col++ {
			screen.SetContent(col, row, ' ', nil, style)
		}
	}
}

// Text draws s starting at (x, y) in style, clipped to maxWidth visual
// columns, using grapheme clusters so multi-rune glyphs and wide
// characters advance the cursor correctly. It returns the number of
// visual columns consumed.
func Text(screen tcell.Screen, x, y int, s string, style tcell.Style, maxWidth int) int {
	if maxWidth <= 0 {
		return 0
	}
	gr := uniseg.NewGraphemes(s)
	col := 0
	for gr.Next() {
		w := gr.Width()
		if col+w > maxWidth {
			break
		}
		runes := gr.Runes()
		if len(runes) == 0 {
			continue
		}
		var combining []rune
		if len(runes) > 1 {
			combining = runes[1:]
		}
		screen.SetContent(x+col, y, runes[0], combining, style)
		for cw := 1; cw < w; cw++ {
			screen.SetContent(x+col+cw, y, ' ', nil, style)
		}
		col += w
	}
	return col
}

// TextWithHighlight draws s like Text, but every rune whose byte offset
// falls in [hiStart, hiEnd) is drawn with hiStyle instead of style. Used
// to highlight the matched span within a result line.
func TextWithHighlight(screen tcell.Screen, x, y int, s string, style, hiStyle tcell.Style, hiStart, hiEnd, maxWidth int) int {
	if maxWidth <= 0 {
		return 0
	}
	gr := uniseg.NewGraphemes(s)
	col := 0
	byteOff := 0
	for gr.Next() {
		w := gr.Width()
		if col+w > maxWidth {
			break
		}
		runes := gr.Runes()
		clusterStart := byteOff
		byteOff += len(gr.Str())
		if len(runes) == 0 {
			continue
		}
		st := style
		if clusterStart >= hiStart && clusterStart < hiEnd {
			st = hiStyle
		}
		var combining []rune
		if len(runes) > 1 {
			combining = runes[1:]
		}
		screen.SetContent(x+col, y, runes[0], combining, st)
		for cw := 1; cw < w; cw++ {
			screen.SetContent(x+col+cw, y, ' ', nil, st)
		}
		col += w
	}
	return col
}

// Gutter draws a right-aligned number (e.g. a line number) into a field
// of width gutterWidth-1, leaving a one-column pad before the text area.
func Gutter(screen tcell.Screen, x, y, gutterWidth int, number string, style tcell.Style) {
	if gutterWidth <= 1 {
		return
	}
	pad := gutterWidth - 1 - len([]rune(number))
	if pad < 0 {
		pad = 0
	}
	Text(screen, x+pad, y, number, style, gutterWidth-1)
}

// HLine draws a horizontal line of r across [x, x+w) at row y.
func HLine(screen tcell.Screen, x, y, w int, r rune, style tcell.Style) {
	for col := x; col < x+w; col++ {
		screen.SetContent(col, y, r, nil, style)
	}
}
