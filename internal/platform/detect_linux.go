//go:build linux

package platform

// Detect opens the backend selected by kind.
func Detect(kind string) (Backend, error) {
	resolved, err := ResolveKind(kind)
	if err != nil {
		return nil, err
	}
	if resolved == KindHyprland {
		return NewHyprlandBackend()
	}
	return NewLinuxBackendFromDisplay("")
}
