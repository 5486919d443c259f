//go:build linux

package platform

import (
	"errors"
	"fmt"

	"github.com/1broseidon/snaptile/internal/x11"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
)

// LinuxBackend wraps an X11 connection behind the platform Backend interface.
type LinuxBackend struct {
	conn *x11.Connection
}

var _ Backend = (*LinuxBackend)(nil)

// NewLinuxBackend creates a Linux platform backend from an existing X11 connection.
func NewLinuxBackend(conn *x11.Connection) *LinuxBackend {
	return &LinuxBackend{conn: conn}
}

// NewLinuxBackendFromDisplay opens a fresh X11 connection; display may be
// empty to use $DISPLAY.
func NewLinuxBackendFromDisplay(display string) (*LinuxBackend, error) {
	conn, err := x11.NewConnectionDisplay(display)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}
	return &LinuxBackend{conn: conn}, nil
}

// Name implements Backend.
func (b *LinuxBackend) Name() string {
	return "x11"
}

// Disconnect closes the underlying X11 connection.
func (b *LinuxBackend) Disconnect() {
	if b != nil && b.conn != nil {
		b.conn.Close()
	}
}

// EventLoop starts the X11 event loop (blocking).
func (b *LinuxBackend) EventLoop() {
	if b != nil && b.conn != nil {
		b.conn.EventLoop()
	}
}

// Quit stops EventLoop and closes the connection.
func (b *LinuxBackend) Quit() {
	if b != nil && b.conn != nil {
		b.conn.Quit()
	}
}

// XUtil returns the underlying xgbutil connection for X11-specific operations.
func (b *LinuxBackend) XUtil() *xgbutil.XUtil {
	if b == nil || b.conn == nil {
		return nil
	}
	return b.conn.XUtil
}

// RootWindow returns the X11 root window ID.
func (b *LinuxBackend) RootWindow() xproto.Window {
	if b == nil || b.conn == nil {
		return 0
	}
	return b.conn.Root
}

// FocusedWindow returns the active window with its frame geometry.
func (b *LinuxBackend) FocusedWindow() (Window, error) {
	conn, err := b.connection()
	if err != nil {
		return Window{}, err
	}

	wid, err := conn.GetActiveWindow()
	if err != nil {
		return Window{}, fmt.Errorf("%w: %v", ErrNoFocusedWindow, err)
	}
	if wid == 0 || wid == conn.Root || !conn.IsNormalWindow(wid) {
		return Window{}, ErrNoFocusedWindow
	}

	frame, err := conn.WindowFrame(wid)
	if err != nil {
		return Window{}, fmt.Errorf("%w: %v", ErrGeometryReadFailed, err)
	}

	return Window{
		ID:     WindowID(wid),
		AppID:  conn.WindowClass(wid),
		Title:  conn.WindowTitle(wid),
		Bounds: rectFromArea(frame),
	}, nil
}

// ActiveScreen returns the monitor holding the focused window.
func (b *LinuxBackend) ActiveScreen() (Screen, error) {
	conn, err := b.connection()
	if err != nil {
		return Screen{}, err
	}

	active, err := conn.GetActiveMonitor()
	if err != nil {
		if errors.Is(err, x11.ErrNoMonitors) {
			return Screen{}, ErrNoScreen
		}
		return Screen{}, fmt.Errorf("%w: %v", ErrNoScreen, err)
	}

	return Screen{
		ID:     active.ID,
		Name:   active.Name,
		Bounds: rectFromArea(active.Area),
		Usable: rectFromArea(active.Usable),
	}, nil
}

// MoveResize moves and resizes a window so its frame covers bounds.
func (b *LinuxBackend) MoveResize(windowID WindowID, bounds Rect) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}

	if err := conn.MoveResizeWindow(
		xproto.Window(windowID),
		bounds.X,
		bounds.Y,
		bounds.Width,
		bounds.Height,
	); err != nil {
		return fmt.Errorf("%w: %v", ErrGeometryWriteFailed, err)
	}
	return nil
}

func (b *LinuxBackend) connection() (*x11.Connection, error) {
	if b == nil || b.conn == nil {
		return nil, fmt.Errorf("x11 backend connection is nil")
	}
	return b.conn, nil
}

func rectFromArea(a x11.Area) Rect {
	return Rect{
		X:      a.X,
		Y:      a.Y,
		Width:  a.Width,
		Height: a.Height,
	}
}
