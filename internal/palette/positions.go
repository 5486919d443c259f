package palette

import (
	"fmt"

	"github.com/1broseidon/snaptile/internal/layout"
)

var positionLabels = map[layout.Position]string{
	layout.Left:           "Left third",
	layout.Center:         "Center third",
	layout.Right:          "Right third",
	layout.LeftTwoThirds:  "Left two-thirds",
	layout.RightTwoThirds: "Right two-thirds",
	layout.Fullscreen:     "Fullscreen",
}

var positionIcons = map[layout.Position]string{
	layout.Left:           "object-align-left",
	layout.Center:         "object-align-horizontal-center",
	layout.Right:          "object-align-right",
	layout.LeftTwoThirds:  "format-justify-left",
	layout.RightTwoThirds: "format-justify-right",
	layout.Fullscreen:     "view-fullscreen",
}

// PositionItems returns one item per position. current, when set, is marked
// active so the launcher preselects it.
func PositionItems(current *layout.Position) []Item {
	items := make([]Item, 0, len(layout.Positions))
	for _, p := range layout.Positions {
		items = append(items, Item{
			Label:    positionLabels[p],
			Action:   p.String(),
			Icon:     positionIcons[p],
			Meta:     p.String(),
			IsActive: current != nil && *current == p,
		})
	}
	return items
}

// PickPosition shows the position menu and returns the selection.
func PickPosition(l Launcher, current *layout.Position) (layout.Position, error) {
	message := ""
	if current != nil {
		message = fmt.Sprintf("currently %s", *current)
	}
	item, err := l.Show("snaptile", PositionItems(current), message)
	if err != nil {
		return 0, err
	}
	return layout.ParsePosition(item.Action)
}
