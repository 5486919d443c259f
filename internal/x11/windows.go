package x11

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/xwindow"
)

// MoveResizeWindow moves and resizes a window so that its frame, decorations
// included, covers the given geometry.
func (c *Connection) MoveResizeWindow(windowID xproto.Window, x, y, width, height int) error {
	// Maximized windows ignore geometry requests on most window managers.
	_ = c.unmaximizeWindow(windowID)

	win := xwindow.New(c.XUtil, windowID)

	// WMMoveResize subtracts decoration sizes and goes through
	// _NET_MOVERESIZE_WINDOW for better WM compatibility.
	if err := win.WMMoveResize(x, y, width, height); err != nil {
		// Fallback to direct window manipulation
		win.MoveResize(x, y, width, height)
	}

	return nil
}

// unmaximizeWindow removes maximized state from a window
func (c *Connection) unmaximizeWindow(windowID xproto.Window) error {
	states, err := ewmh.WmStateGet(c.XUtil, windowID)
	if err != nil {
		return err
	}

	for _, state := range states {
		switch state {
		case "_NET_WM_STATE_MAXIMIZED_HORZ", "_NET_WM_STATE_MAXIMIZED_VERT", "_NET_WM_STATE_FULLSCREEN":
			if err := ewmh.WmStateReq(c.XUtil, windowID, ewmh.StateRemove, state); err != nil {
				return err
			}
		}
	}

	return nil
}

// WindowFrame returns the window geometry including decorations, in root
// coordinates.
func (c *Connection) WindowFrame(windowID xproto.Window) (Area, error) {
	geom, err := xwindow.New(c.XUtil, windowID).DecorGeometry()
	if err != nil {
		return Area{}, fmt.Errorf("failed to get geometry of window %d: %w", windowID, err)
	}
	return Area{
		X:      geom.X(),
		Y:      geom.Y(),
		Width:  geom.Width(),
		Height: geom.Height(),
	}, nil
}

// WindowTitle returns _NET_WM_NAME, falling back to WM_NAME. Windows without
// either yield an empty string.
func (c *Connection) WindowTitle(windowID xproto.Window) string {
	title, err := ewmh.WmNameGet(c.XUtil, windowID)
	if err == nil {
		if title = strings.TrimSpace(title); title != "" {
			return title
		}
	}

	title, err = icccm.WmNameGet(c.XUtil, windowID)
	if err == nil {
		return strings.TrimSpace(title)
	}

	return ""
}

// WindowClass returns the WM_CLASS class name, or "" when unset.
func (c *Connection) WindowClass(windowID xproto.Window) string {
	wmClass, err := icccm.WmClassGet(c.XUtil, windowID)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(wmClass.Class)
}

// IsNormalWindow checks if a window is a normal application window
func (c *Connection) IsNormalWindow(windowID xproto.Window) bool {
	types, err := ewmh.WmWindowTypeGet(c.XUtil, windowID)
	if err != nil {
		// If we can't determine type, assume it's normal
		return true
	}

	for _, t := range types {
		switch t {
		case "_NET_WM_WINDOW_TYPE_NORMAL", "_NET_WM_WINDOW_TYPE_DIALOG", "_NET_WM_WINDOW_TYPE_UTILITY":
			return true
		case "_NET_WM_WINDOW_TYPE_DESKTOP",
			"_NET_WM_WINDOW_TYPE_DOCK",
			"_NET_WM_WINDOW_TYPE_SPLASH",
			"_NET_WM_WINDOW_TYPE_NOTIFICATION":
			return false
		}
	}

	return len(types) == 0
}

// GetActiveWindow returns _NET_ACTIVE_WINDOW. A zero window means nothing
// has focus.
func (c *Connection) GetActiveWindow() (xproto.Window, error) {
	return ewmh.ActiveWindowGet(c.XUtil)
}
