package platform

import (
	"errors"
	"fmt"
)

// Errors reported by backends. Callers match them with errors.Is; backends
// wrap them with details.
var (
	ErrNoFocusedWindow     = errors.New("no focused window")
	ErrNoScreen            = errors.New("no screen available")
	ErrGeometryReadFailed  = errors.New("failed to read window geometry")
	ErrGeometryWriteFailed = errors.New("failed to write window geometry")
)

// WindowID is a platform-neutral window identifier.
type WindowID uint64

// Rect describes a rectangular region in screen coordinates.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

func (r Rect) String() string {
	return fmt.Sprintf("%dx%d at %d,%d", r.Width, r.Height, r.X, r.Y)
}

// FrameKind selects which screen rectangle layouts are computed against.
type FrameKind string

const (
	// FrameVisible is the display minus panels and docks.
	FrameVisible FrameKind = "visible"
	// FrameFull is the whole display.
	FrameFull FrameKind = "full"
)

// Screen describes the active display and its usable work area.
type Screen struct {
	ID     int
	Name   string
	Bounds Rect
	Usable Rect
}

// Frame returns the rectangle for kind; anything but FrameFull yields the
// usable area.
func (s Screen) Frame(kind FrameKind) Rect {
	if kind == FrameFull {
		return s.Bounds
	}
	return s.Usable
}

// Window contains metadata and geometry for the focused window.
type Window struct {
	ID     WindowID
	AppID  string
	Title  string
	Bounds Rect
}

// Backend abstracts the window-system operations snaptile needs: reading the
// focused window, finding the active screen and applying new geometry.
type Backend interface {
	Name() string
	FocusedWindow() (Window, error)
	ActiveScreen() (Screen, error)
	MoveResize(windowID WindowID, bounds Rect) error
}
