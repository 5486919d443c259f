package x11

import (
	"errors"
	"fmt"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
)

// ErrNoMonitors is returned when XRandR reports no active CRTC.
var ErrNoMonitors = errors.New("no monitors found")

// Area is a rectangle in root window coordinates.
type Area struct {
	X      int
	Y      int
	Width  int
	Height int
}

func (a Area) contains(x, y int) bool {
	return x >= a.X && x < a.X+a.Width && y >= a.Y && y < a.Y+a.Height
}

// Monitor represents a physical display. Area is the full CRTC geometry;
// Usable excludes panels and docks.
type Monitor struct {
	ID   int
	Name string
	Area
	Usable Area
}

// GetMonitors retrieves all active monitors using XRandR
func (c *Connection) GetMonitors() ([]Monitor, error) {
	if err := randr.Init(c.XUtil.Conn()); err != nil {
		return nil, fmt.Errorf("randr init failed: %w", err)
	}

	resources, err := randr.GetScreenResources(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	var monitors []Monitor

	for i, crtc := range resources.Crtcs {
		crtcInfo, err := randr.GetCrtcInfo(c.XUtil.Conn(), crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}

		// Skip disabled CRTCs
		if crtcInfo.Width == 0 || crtcInfo.Height == 0 || len(crtcInfo.Outputs) == 0 {
			continue
		}

		outputName := fmt.Sprintf("Monitor%d", i)
		outputInfo, err := randr.GetOutputInfo(c.XUtil.Conn(), crtcInfo.Outputs[0], resources.ConfigTimestamp).Reply()
		if err == nil {
			outputName = string(outputInfo.Name)
		}

		area := Area{
			X:      int(crtcInfo.X),
			Y:      int(crtcInfo.Y),
			Width:  int(crtcInfo.Width),
			Height: int(crtcInfo.Height),
		}
		monitors = append(monitors, Monitor{
			ID:     i,
			Name:   outputName,
			Area:   area,
			Usable: area,
		})
	}

	return monitors, nil
}

// GetActiveMonitor returns the monitor holding the focused window, falling
// back to the monitor under the pointer and then the first monitor. Usable is
// reduced by dock struts, or by _NET_WORKAREA when no dock sets struts.
func (c *Connection) GetActiveMonitor() (*Monitor, error) {
	monitors, err := c.GetMonitors()
	if err != nil {
		return nil, err
	}
	if len(monitors) == 0 {
		return nil, ErrNoMonitors
	}

	var activeMonitor *Monitor

	if activeWin, err := ewmh.ActiveWindowGet(c.XUtil); err == nil && activeWin != 0 {
		activeMonitor = findMonitorForWindow(c, monitors, activeWin)
	}
	if activeMonitor == nil {
		activeMonitor = findMonitorForPointer(c, monitors)
	}
	if activeMonitor == nil {
		activeMonitor = &monitors[0]
	}

	if !applyDockStruts(c, activeMonitor) {
		applyWorkArea(c, activeMonitor)
	}

	return activeMonitor, nil
}

func applyWorkArea(c *Connection, monitor *Monitor) {
	workArea, err := ewmh.WorkareaGet(c.XUtil)
	if err != nil || len(workArea) == 0 {
		return
	}

	desktopIndex := 0
	if currentDesktop, err := ewmh.CurrentDesktopGet(c.XUtil); err == nil {
		if int(currentDesktop) < len(workArea) {
			desktopIndex = int(currentDesktop)
		}
	}

	wa := workArea[desktopIndex]
	if usable, ok := intersectAreas(monitor.Area, Area{
		X:      int(wa.X),
		Y:      int(wa.Y),
		Width:  int(wa.Width),
		Height: int(wa.Height),
	}); ok {
		monitor.Usable = usable
	}
}

type dockStruts struct {
	left   int
	right  int
	top    int
	bottom int
}

func applyDockStruts(c *Connection, monitor *Monitor) bool {
	rootGeom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(c.Root)).Reply()
	if err != nil {
		return false
	}
	rootWidth := int(rootGeom.Width)
	rootHeight := int(rootGeom.Height)

	clients, err := ewmh.ClientListGet(c.XUtil)
	if err != nil {
		return false
	}

	var struts dockStruts
	for _, windowID := range clients {
		if !c.isDock(windowID) {
			continue
		}

		if sp, err := ewmh.WmStrutPartialGet(c.XUtil, windowID); err == nil {
			updateStrutsForMonitor(monitor.Area, rootWidth, rootHeight, sp, &struts)
			continue
		}

		// Some docks only set _NET_WM_STRUT (no partial ranges).
		if s, err := ewmh.WmStrutGet(c.XUtil, windowID); err == nil {
			updateStrutsForMonitor(monitor.Area, rootWidth, rootHeight, fullStrut(s, rootWidth, rootHeight), &struts)
		}
	}

	if struts == (dockStruts{}) {
		return false
	}

	monitor.Usable = shrinkArea(monitor.Area, struts)
	return true
}

func (c *Connection) isDock(windowID xproto.Window) bool {
	types, err := ewmh.WmWindowTypeGet(c.XUtil, windowID)
	if err != nil {
		return false
	}
	for _, t := range types {
		if t == "_NET_WM_WINDOW_TYPE_DOCK" {
			return true
		}
	}
	return false
}

func fullStrut(s *ewmh.WmStrut, rootWidth, rootHeight int) *ewmh.WmStrutPartial {
	return &ewmh.WmStrutPartial{
		Left:         s.Left,
		Right:        s.Right,
		Top:          s.Top,
		Bottom:       s.Bottom,
		LeftStartY:   0,
		LeftEndY:     uint(rootHeight - 1),
		RightStartY:  0,
		RightEndY:    uint(rootHeight - 1),
		TopStartX:    0,
		TopEndX:      uint(rootWidth - 1),
		BottomStartX: 0,
		BottomEndX:   uint(rootWidth - 1),
	}
}

func shrinkArea(a Area, s dockStruts) Area {
	out := Area{
		X:      a.X + s.left,
		Y:      a.Y + s.top,
		Width:  a.Width - (s.left + s.right),
		Height: a.Height - (s.top + s.bottom),
	}
	if out.Width < 1 {
		out.Width = 1
	}
	if out.Height < 1 {
		out.Height = 1
	}
	return out
}

func updateStrutsForMonitor(mon Area, rootWidth, rootHeight int, sp *ewmh.WmStrutPartial, acc *dockStruts) {
	// Top strut: y=[0,Top), x=[TopStartX,TopEndX]
	if sp.Top > 0 {
		strut := Area{X: int(sp.TopStartX), Y: 0, Width: int(sp.TopEndX) + 1 - int(sp.TopStartX), Height: int(sp.Top)}
		if isect, ok := intersectAreas(mon, strut); ok {
			acc.top = max(acc.top, isect.Height)
		}
	}

	// Bottom strut: y=[rootHeight-Bottom,rootHeight), x=[BottomStartX,BottomEndX]
	if sp.Bottom > 0 {
		strut := Area{X: int(sp.BottomStartX), Y: rootHeight - int(sp.Bottom), Width: int(sp.BottomEndX) + 1 - int(sp.BottomStartX), Height: int(sp.Bottom)}
		if isect, ok := intersectAreas(mon, strut); ok {
			acc.bottom = max(acc.bottom, isect.Height)
		}
	}

	// Left strut: x=[0,Left), y=[LeftStartY,LeftEndY]
	if sp.Left > 0 {
		strut := Area{X: 0, Y: int(sp.LeftStartY), Width: int(sp.Left), Height: int(sp.LeftEndY) + 1 - int(sp.LeftStartY)}
		if isect, ok := intersectAreas(mon, strut); ok {
			acc.left = max(acc.left, isect.Width)
		}
	}

	// Right strut: x=[rootWidth-Right,rootWidth), y=[RightStartY,RightEndY]
	if sp.Right > 0 {
		strut := Area{X: rootWidth - int(sp.Right), Y: int(sp.RightStartY), Width: int(sp.Right), Height: int(sp.RightEndY) + 1 - int(sp.RightStartY)}
		if isect, ok := intersectAreas(mon, strut); ok {
			acc.right = max(acc.right, isect.Width)
		}
	}
}

func intersectAreas(a, b Area) (Area, bool) {
	x1 := max(a.X, b.X)
	y1 := max(a.Y, b.Y)
	x2 := min(a.X+a.Width, b.X+b.Width)
	y2 := min(a.Y+a.Height, b.Y+b.Height)

	if x2 <= x1 || y2 <= y1 {
		return Area{}, false
	}
	return Area{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}, true
}

func findMonitorForWindow(c *Connection, monitors []Monitor, windowID xproto.Window) *Monitor {
	frame, err := c.WindowFrame(windowID)
	if err != nil {
		return nil
	}

	centerX := frame.X + frame.Width/2
	centerY := frame.Y + frame.Height/2

	for i := range monitors {
		if monitors[i].contains(centerX, centerY) {
			return &monitors[i]
		}
	}
	return nil
}

func findMonitorForPointer(c *Connection, monitors []Monitor) *Monitor {
	pointer, err := xproto.QueryPointer(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil
	}

	for i := range monitors {
		if monitors[i].contains(int(pointer.RootX), int(pointer.RootY)) {
			return &monitors[i]
		}
	}
	return nil
}
