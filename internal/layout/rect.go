package layout

import "fmt"

// Rect is a rectangle in screen coordinates. The same type describes screen
// frames and window bounds; values keep the display's native precision.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// ValidFrame reports whether r can serve as a screen frame.
func (r Rect) ValidFrame() bool {
	return r.Width > 0 && r.Height > 0
}

func (r Rect) String() string {
	return fmt.Sprintf("%gx%g at %g,%g", r.Width, r.Height, r.X, r.Y)
}
