package platform

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
)

// CommandRunner executes hyprctl with args and returns its combined output.
type CommandRunner func(args ...string) ([]byte, error)

// HyprlandBackend drives Hyprland through hyprctl.
type HyprlandBackend struct {
	run CommandRunner
}

var _ Backend = (*HyprlandBackend)(nil)

// NewHyprlandBackend checks that hyprctl is on PATH and returns a backend
// that shells out to it.
func NewHyprlandBackend() (*HyprlandBackend, error) {
	path, err := exec.LookPath("hyprctl")
	if err != nil {
		return nil, fmt.Errorf("hyprctl not found in PATH: %w", err)
	}
	return NewHyprlandBackendWithRunner(func(args ...string) ([]byte, error) {
		return exec.Command(path, args...).CombinedOutput()
	}), nil
}

// NewHyprlandBackendWithRunner returns a backend using run to invoke hyprctl.
func NewHyprlandBackendWithRunner(run CommandRunner) *HyprlandBackend {
	return &HyprlandBackend{run: run}
}

// Name implements Backend.
func (h *HyprlandBackend) Name() string {
	return "hyprland"
}

type hyprWindow struct {
	Address string `json:"address"`
	At      [2]int `json:"at"`
	Size    [2]int `json:"size"`
	Class   string `json:"class"`
	Title   string `json:"title"`
	Monitor int    `json:"monitor"`
}

type hyprMonitor struct {
	ID        int     `json:"id"`
	Name      string  `json:"name"`
	Width     int     `json:"width"`
	Height    int     `json:"height"`
	X         int     `json:"x"`
	Y         int     `json:"y"`
	Reserved  [4]int  `json:"reserved"`
	Scale     float64 `json:"scale"`
	Transform int     `json:"transform"`
	Focused   bool    `json:"focused"`
	Disabled  bool    `json:"disabled"`
}

// FocusedWindow implements Backend.
func (h *HyprlandBackend) FocusedWindow() (Window, error) {
	out, err := h.run("-j", "activewindow")
	if err != nil {
		return Window{}, fmt.Errorf("%w: hyprctl activewindow: %v: %s", ErrGeometryReadFailed, err, bytes.TrimSpace(out))
	}

	var w hyprWindow
	if err := json.Unmarshal(out, &w); err != nil {
		return Window{}, fmt.Errorf("%w: parse activewindow: %v", ErrGeometryReadFailed, err)
	}
	if w.Address == "" {
		return Window{}, ErrNoFocusedWindow
	}

	id, err := parseAddress(w.Address)
	if err != nil {
		return Window{}, fmt.Errorf("%w: %v", ErrGeometryReadFailed, err)
	}

	return Window{
		ID:    id,
		AppID: w.Class,
		Title: w.Title,
		Bounds: Rect{
			X:      w.At[0],
			Y:      w.At[1],
			Width:  w.Size[0],
			Height: w.Size[1],
		},
	}, nil
}

// ActiveScreen implements Backend. Hyprland reports the monitor holding the
// focused window as focused.
func (h *HyprlandBackend) ActiveScreen() (Screen, error) {
	out, err := h.run("-j", "monitors")
	if err != nil {
		return Screen{}, fmt.Errorf("%w: hyprctl monitors: %v: %s", ErrNoScreen, err, bytes.TrimSpace(out))
	}

	var monitors []hyprMonitor
	if err := json.Unmarshal(out, &monitors); err != nil {
		return Screen{}, fmt.Errorf("%w: parse monitors: %v", ErrNoScreen, err)
	}

	var chosen *hyprMonitor
	for i := range monitors {
		m := &monitors[i]
		if m.Disabled {
			continue
		}
		if chosen == nil || m.Focused {
			chosen = m
		}
		if m.Focused {
			break
		}
	}
	if chosen == nil {
		return Screen{}, ErrNoScreen
	}

	return chosen.screen(), nil
}

func (m hyprMonitor) screen() Screen {
	scale := m.Scale
	if scale <= 0 {
		scale = 1
	}
	w, h := m.Width, m.Height
	// Odd transforms rotate by 90 or 270 degrees.
	if m.Transform%2 == 1 {
		w, h = h, w
	}
	bounds := Rect{
		X:      m.X,
		Y:      m.Y,
		Width:  int(math.Round(float64(w) / scale)),
		Height: int(math.Round(float64(h) / scale)),
	}

	// reserved is left, top, right, bottom.
	left, top, right, bottom := m.Reserved[0], m.Reserved[1], m.Reserved[2], m.Reserved[3]
	usable := Rect{
		X:      bounds.X + left,
		Y:      bounds.Y + top,
		Width:  max(bounds.Width-left-right, 0),
		Height: max(bounds.Height-top-bottom, 0),
	}

	return Screen{
		ID:     m.ID,
		Name:   m.Name,
		Bounds: bounds,
		Usable: usable,
	}
}

// MoveResize implements Backend. Tiled windows are made floating first since
// Hyprland ignores pixel moves for them.
func (h *HyprlandBackend) MoveResize(windowID WindowID, bounds Rect) error {
	target := "address:" + formatAddress(windowID)
	batch := strings.Join([]string{
		"dispatch setfloating " + target,
		fmt.Sprintf("dispatch movewindowpixel exact %d %d,%s", bounds.X, bounds.Y, target),
		fmt.Sprintf("dispatch resizewindowpixel exact %d %d,%s", bounds.Width, bounds.Height, target),
	}, " ; ")

	out, err := h.run("--batch", batch)
	if err != nil {
		return fmt.Errorf("%w: hyprctl --batch: %v: %s", ErrGeometryWriteFailed, err, bytes.TrimSpace(out))
	}
	for _, line := range strings.Split(strings.TrimSpace(string(out)), "\n") {
		line = strings.TrimSpace(line)
		if line != "" && line != "ok" {
			return fmt.Errorf("%w: hyprctl: %s", ErrGeometryWriteFailed, line)
		}
	}
	return nil
}

func parseAddress(addr string) (WindowID, error) {
	v, err := strconv.ParseUint(strings.TrimPrefix(addr, "0x"), 16, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid window address %q: %w", addr, err)
	}
	return WindowID(v), nil
}

func formatAddress(id WindowID) string {
	return "0x" + strconv.FormatUint(uint64(id), 16)
}
