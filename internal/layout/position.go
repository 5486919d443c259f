package layout

import (
	"fmt"
	"strings"
)

// Position is a symbolic window placement on the active screen.
type Position int

const (
	Left Position = iota
	Center
	Right
	LeftTwoThirds
	RightTwoThirds
	Fullscreen
)

// Positions lists every valid Position in declaration order.
var Positions = []Position{Left, Center, Right, LeftTwoThirds, RightTwoThirds, Fullscreen}

var positionNames = map[Position]string{
	Left:           "left",
	Center:         "center",
	Right:          "right",
	LeftTwoThirds:  "left-two-thirds",
	RightTwoThirds: "right-two-thirds",
	Fullscreen:     "fullscreen",
}

// String returns the config/CLI name of the position.
func (p Position) String() string {
	if name, ok := positionNames[p]; ok {
		return name
	}
	return fmt.Sprintf("Position(%d)", int(p))
}

// Valid reports whether p is one of the six defined positions.
func (p Position) Valid() bool {
	_, ok := positionNames[p]
	return ok
}

// MarshalText implements encoding.TextMarshaler.
func (p Position) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("invalid position %d", int(p))
	}
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Position) UnmarshalText(text []byte) error {
	parsed, err := ParsePosition(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// ParsePosition parses a position name. Underscores and case are tolerated so
// "left_two_thirds" and "Left-Two-Thirds" both resolve.
func ParsePosition(s string) (Position, error) {
	norm := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", "-")
	for p, name := range positionNames {
		if name == norm {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unknown position %q (valid: %s)", s, strings.Join(PositionNames(), ", "))
}

// PositionNames returns the names of all positions in declaration order.
func PositionNames() []string {
	names := make([]string, 0, len(Positions))
	for _, p := range Positions {
		names = append(names, p.String())
	}
	return names
}

// Direction selects which hotkey cycle a snap advances.
type Direction int

const (
	DirLeft Direction = iota
	DirRight
)

// String returns the string representation of the direction
func (d Direction) String() string {
	switch d {
	case DirLeft:
		return "left"
	case DirRight:
		return "right"
	default:
		return "unknown"
	}
}

// ParseDirection parses "left" or "right".
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "left":
		return DirLeft, nil
	case "right":
		return DirRight, nil
	default:
		return 0, fmt.Errorf("unknown direction %q (valid: left, right)", s)
	}
}
