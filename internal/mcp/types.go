package mcp

import "github.com/1broseidon/snaptile/internal/tiling"

// SnapWindowInput is the input for the snap_window tool.
type SnapWindowInput struct {
	Direction string `json:"direction" jsonschema:"required,Cycle direction: left or right"`
}

// PlaceWindowInput is the input for the place_window tool.
type PlaceWindowInput struct {
	Position string `json:"position" jsonschema:"required,Target position: left, center, right, left-two-thirds, right-two-thirds or fullscreen"`
}

// GetWindowPositionInput is the (empty) input for the get_window_position tool.
type GetWindowPositionInput struct{}

// WindowOutput is returned by every tool.
type WindowOutput struct {
	Title      string `json:"title"`
	Observed   string `json:"observed"`
	Remembered string `json:"remembered,omitempty"`
	Position   string `json:"position"`
	X          int    `json:"x"`
	Y          int    `json:"y"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
}

func windowOutput(res *tiling.SnapResult) WindowOutput {
	out := WindowOutput{
		Title:    res.Title,
		Observed: res.Observed.String(),
		Position: res.Next.String(),
		X:        res.Rect.X,
		Y:        res.Rect.Y,
		Width:    res.Rect.Width,
		Height:   res.Rect.Height,
	}
	if res.Remembered != nil {
		out.Remembered = res.Remembered.String()
	}
	return out
}
