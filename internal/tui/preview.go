package tui

import (
	"strings"

	"github.com/1broseidon/snaptile/internal/layout"
)

// RenderPositions draws the screen as a width x height box of runes and
// outlines the rectangle every position would occupy. highlight is drawn
// with heavy lines.
func RenderPositions(screen layout.Rect, highlight layout.Position, width, height int) string {
	if width < 8 || height < 4 || !screen.ValidFrame() {
		return ""
	}

	canvas := make([][]rune, height)
	for y := range canvas {
		canvas[y] = []rune(strings.Repeat(" ", width))
	}

	// Thirds only; the two-thirds and fullscreen rects share their edges.
	for _, p := range []layout.Position{layout.Left, layout.Center, layout.Right} {
		drawTile(canvas, screen, layout.LayoutRect(p, screen), false)
	}
	if highlight.Valid() {
		drawTile(canvas, screen, layout.LayoutRect(highlight, screen), true)
	}

	lines := make([]string, height)
	for i, row := range canvas {
		lines[i] = string(row)
	}
	return strings.Join(lines, "\n")
}

func drawTile(canvas [][]rune, screen, rect layout.Rect, heavy bool) {
	canvasH := len(canvas)
	canvasW := len(canvas[0])

	// Map screen coordinates to canvas cells.
	x1 := int((rect.X - screen.X) * float64(canvasW-1) / screen.Width)
	x2 := int((rect.X + rect.Width - screen.X) * float64(canvasW-1) / screen.Width)
	y1 := 0
	y2 := canvasH - 1
	if x2 <= x1 {
		return
	}

	h, v, tl, tr, bl, br := '─', '│', '┌', '┐', '└', '┘'
	if heavy {
		h, v, tl, tr, bl, br = '━', '┃', '┏', '┓', '┗', '┛'
	}

	for x := x1; x <= x2; x++ {
		canvas[y1][x] = h
		canvas[y2][x] = h
	}
	for y := y1; y <= y2; y++ {
		canvas[y][x1] = v
		canvas[y][x2] = v
	}
	canvas[y1][x1] = tl
	canvas[y1][x2] = tr
	canvas[y2][x1] = bl
	canvas[y2][x2] = br
}
