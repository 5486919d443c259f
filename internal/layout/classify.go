package layout

const (
	// widthTolerance absorbs rounding and display scaling on window widths.
	widthTolerance = 0.95
	// originSlack absorbs window manager insets on the left edge, in pixels.
	originSlack = 10
)

// Classify maps an observed window rectangle to the position it most likely
// occupies on screen. Rules are evaluated in priority order and the first
// match wins; windows narrower than a third fall back to Left.
func Classify(rect, screen Rect) Position {
	oneThird := screen.Width / 3
	twoThirds := 2 * screen.Width / 3
	atLeftEdge := rect.X <= screen.X+originSlack

	switch {
	case rect.Width >= widthTolerance*screen.Width:
		return Fullscreen
	case rect.Width >= widthTolerance*twoThirds:
		if atLeftEdge {
			return LeftTwoThirds
		}
		return RightTwoThirds
	case rect.Width >= widthTolerance*oneThird:
		if atLeftEdge {
			return Left
		}
		if rect.X >= screen.X+twoThirds-originSlack {
			return Right
		}
		return Center
	default:
		return Left
	}
}
