package layout

import (
	"fmt"
	"strings"
)

// UnknownTitle stands in for windows that report no title.
const UnknownTitle = "Unknown"

// WindowIdentity is a best-effort key for remembering a window's last
// assigned position. It is built from the title and the observed origin, so
// two untitled windows at the same origin collide and any move made outside
// snaptile produces a new key.
type WindowIdentity string

// Identity derives the cache key for a window.
func Identity(title string, rect Rect) WindowIdentity {
	title = strings.TrimSpace(title)
	if title == "" {
		title = UnknownTitle
	}
	return WindowIdentity(fmt.Sprintf("%s@(%g, %g)", title, rect.X, rect.Y))
}
