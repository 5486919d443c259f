package layout

// cycles holds the three-step sequence owned by each direction.
var cycles = map[Direction][3]Position{
	DirLeft:  {Left, LeftTwoThirds, Fullscreen},
	DirRight: {Right, RightTwoThirds, Fullscreen},
}

// NextPosition advances current one step through dir's cycle. A window that
// is not inside the cycle restarts at the cycle's first (narrowest) step, so
// switching direction never continues the other direction's sequence.
func NextPosition(dir Direction, current Position) Position {
	cycle, ok := cycles[dir]
	if !ok {
		cycle = cycles[DirLeft]
	}
	for i, p := range cycle {
		if p == current {
			return cycle[(i+1)%len(cycle)]
		}
	}
	return cycle[0]
}

// LayoutRect returns the rectangle that realizes p on screen. Every position
// spans the full screen height.
func LayoutRect(p Position, screen Rect) Rect {
	oneThird := screen.Width / 3
	twoThirds := 2 * screen.Width / 3

	var offset, width float64
	switch p {
	case Left:
		offset, width = 0, oneThird
	case Center:
		offset, width = oneThird, oneThird
	case Right:
		offset, width = twoThirds, screen.Width-twoThirds
	case LeftTwoThirds:
		offset, width = 0, twoThirds
	case RightTwoThirds:
		offset, width = oneThird, screen.Width-oneThird
	default:
		offset, width = 0, screen.Width
	}

	return Rect{
		X:      screen.X + offset,
		Y:      screen.Y,
		Width:  width,
		Height: screen.Height,
	}
}
