package x11

import (
	"testing"

	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/stretchr/testify/assert"
)

func TestIntersectAreas(t *testing.T) {
	t.Parallel()

	got, ok := intersectAreas(Area{X: 0, Y: 0, Width: 100, Height: 100}, Area{X: 50, Y: 20, Width: 100, Height: 30})
	assert.True(t, ok)
	assert.Equal(t, Area{X: 50, Y: 20, Width: 50, Height: 30}, got)

	_, ok = intersectAreas(Area{X: 0, Y: 0, Width: 100, Height: 100}, Area{X: 100, Y: 0, Width: 10, Height: 10})
	assert.False(t, ok)
}

func TestUpdateStrutsForMonitor_TopPanelOnFirstMonitorOnly(t *testing.T) {
	t.Parallel()

	// Two 1920x1080 monitors side by side, 30px panel spanning the left one.
	left := Area{X: 0, Y: 0, Width: 1920, Height: 1080}
	right := Area{X: 1920, Y: 0, Width: 1920, Height: 1080}
	sp := &ewmh.WmStrutPartial{Top: 30, TopStartX: 0, TopEndX: 1919}

	var accLeft, accRight dockStruts
	updateStrutsForMonitor(left, 3840, 1080, sp, &accLeft)
	updateStrutsForMonitor(right, 3840, 1080, sp, &accRight)

	assert.Equal(t, dockStruts{top: 30}, accLeft)
	assert.Equal(t, dockStruts{}, accRight)
	assert.Equal(t, Area{X: 0, Y: 30, Width: 1920, Height: 1050}, shrinkArea(left, accLeft))
}

func TestUpdateStrutsForMonitor_BottomAndLeftDock(t *testing.T) {
	t.Parallel()

	mon := Area{X: 0, Y: 0, Width: 1500, Height: 1000}
	sp := fullStrut(&ewmh.WmStrut{Left: 64, Bottom: 40}, 1500, 1000)

	var acc dockStruts
	updateStrutsForMonitor(mon, 1500, 1000, sp, &acc)

	assert.Equal(t, dockStruts{left: 64, bottom: 40}, acc)
	assert.Equal(t, Area{X: 64, Y: 0, Width: 1436, Height: 960}, shrinkArea(mon, acc))
}

func TestShrinkArea_ClampsToOnePixel(t *testing.T) {
	t.Parallel()

	got := shrinkArea(Area{Width: 10, Height: 10}, dockStruts{left: 20, top: 20})
	assert.Equal(t, 1, got.Width)
	assert.Equal(t, 1, got.Height)
}
