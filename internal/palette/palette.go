// Package palette shows a rofi/fuzzel/wofi/dmenu menu of window positions.
package palette

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ErrCancelled is returned when the user closes the palette without selecting an item.
var ErrCancelled = errors.New("palette cancelled")

// Item is a single selectable entry in a palette menu.
type Item struct {
	Label    string // Display text
	Action   string // Action identifier returned on selection
	Icon     string // Icon name for launchers that render icons
	Meta     string // Hidden search keywords (rofi meta field)
	IsActive bool   // Highlighted and preselected
}

// Launcher shows items to the user and returns the one they picked.
type Launcher interface {
	Name() string
	Show(prompt string, items []Item, message string) (Item, error)
}

// CommandRunner runs a launcher with stdin and returns its stdout. It returns
// ErrCancelled when the launcher exits without a selection.
type CommandRunner func(stdin string, name string, args ...string) (string, error)

// Launchers lists the supported launchers in detection order.
var Launchers = []string{"rofi", "fuzzel", "wofi", "dmenu"}

// Detect returns the first launcher found in PATH.
func Detect() (string, error) {
	for _, name := range Launchers {
		if _, err := exec.LookPath(name); err == nil {
			return name, nil
		}
	}
	return "", fmt.Errorf("no palette launcher found in PATH (looked for: %s)", strings.Join(Launchers, ", "))
}

// New creates a launcher by name; "" and "auto" detect one.
func New(name string) (Launcher, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || name == "auto" {
		detected, err := Detect()
		if err != nil {
			return nil, err
		}
		name = detected
	} else if _, err := exec.LookPath(name); err != nil {
		if _, known := kindByName[name]; known {
			return nil, fmt.Errorf("palette launcher %q not found in PATH", name)
		}
	}
	return NewWithRunner(name, runCommand)
}

// NewWithRunner creates a launcher that executes through run.
func NewWithRunner(name string, run CommandRunner) (Launcher, error) {
	kind, ok := kindByName[name]
	if !ok {
		return nil, fmt.Errorf("unknown palette launcher %q (expected: auto, %s)", name, strings.Join(Launchers, ", "))
	}
	return &dmenuLike{name: name, kind: kind, run: run}, nil
}
