//go:build !linux

package platform

import (
	"fmt"
	"runtime"
)

// Detect opens the backend selected by kind. Only Hyprland, driven through
// hyprctl, is available off Linux; X11 grabs need the Linux backend.
func Detect(kind string) (Backend, error) {
	resolved, err := ResolveKind(kind)
	if err != nil {
		return nil, err
	}
	if resolved == KindHyprland {
		return NewHyprlandBackend()
	}
	return nil, fmt.Errorf("%s backend is not supported on %s", resolved, runtime.GOOS)
}
