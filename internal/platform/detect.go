package platform

import (
	"fmt"
	"os"
	"strings"
)

// Backend kinds accepted by Detect.
const (
	KindAuto     = "auto"
	KindX11      = "x11"
	KindHyprland = "hyprland"
)

// Kinds lists the accepted backend names.
var Kinds = []string{KindAuto, KindX11, KindHyprland}

// ResolveKind maps "auto" (or empty) to a concrete backend kind using the
// session environment.
func ResolveKind(kind string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", KindAuto:
	case KindX11:
		return KindX11, nil
	case KindHyprland:
		return KindHyprland, nil
	default:
		return "", fmt.Errorf("unknown backend %q (expected one of %s)", kind, strings.Join(Kinds, ", "))
	}

	if os.Getenv("HYPRLAND_INSTANCE_SIGNATURE") != "" {
		return KindHyprland, nil
	}
	if os.Getenv("DISPLAY") != "" || strings.EqualFold(os.Getenv("XDG_SESSION_TYPE"), "x11") {
		return KindX11, nil
	}
	return "", fmt.Errorf("cannot detect window system: neither HYPRLAND_INSTANCE_SIGNATURE nor DISPLAY is set")
}
