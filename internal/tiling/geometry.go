package tiling

import (
	"fmt"
	"math"

	"github.com/1broseidon/snaptile/internal/config"
	"github.com/1broseidon/snaptile/internal/layout"
	"github.com/1broseidon/snaptile/internal/platform"
)

// ApplyPadding shrinks frame by the configured screen padding.
func ApplyPadding(frame platform.Rect, padding config.Margins) (platform.Rect, error) {
	adjusted := frame
	adjusted.X += padding.Left
	adjusted.Y += padding.Top
	adjusted.Width -= padding.Left + padding.Right
	adjusted.Height -= padding.Top + padding.Bottom

	if adjusted.Width < 1 || adjusted.Height < 1 {
		return platform.Rect{}, fmt.Errorf(
			"%w: screen_padding leaves no usable space: %dx%d at %d,%d",
			platform.ErrNoScreen, adjusted.Width, adjusted.Height, adjusted.X, adjusted.Y,
		)
	}
	return adjusted, nil
}

func toLayout(r platform.Rect) layout.Rect {
	return layout.Rect{
		X:      float64(r.X),
		Y:      float64(r.Y),
		Width:  float64(r.Width),
		Height: float64(r.Height),
	}
}

// ToPixels rounds both edges of r rather than its size, so rectangles that
// share an edge in float space still share it on the pixel grid.
func ToPixels(r layout.Rect) platform.Rect {
	x0, y0 := math.Round(r.X), math.Round(r.Y)
	x1, y1 := math.Round(r.X+r.Width), math.Round(r.Y+r.Height)
	return platform.Rect{
		X:      int(x0),
		Y:      int(y0),
		Width:  int(x1 - x0),
		Height: int(y1 - y0),
	}
}
