package hotkeys

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/1broseidon/snaptile/internal/config"
	"github.com/1broseidon/snaptile/internal/layout"
	"github.com/1broseidon/snaptile/internal/platform"
	"github.com/1broseidon/snaptile/internal/tiling"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"
)

// Tiler is the subset of tiling.Tiler the hotkeys drive.
type Tiler interface {
	Snap(dir layout.Direction) (tiling.SnapResult, error)
	Place(p layout.Position) (tiling.SnapResult, error)
}

// x11Accessor is an optional interface for backends that expose X11 internals.
type x11Accessor interface {
	XUtil() *xgbutil.XUtil
	RootWindow() xproto.Window
}

// Handler manages global keyboard shortcuts
type Handler struct {
	xu     *xgbutil.XUtil
	root   xproto.Window
	tiler  Tiler
	logger *slog.Logger
}

var ignoreModsOnce sync.Once

// NewHandler creates a new hotkey handler. It fails for backends without an
// X11 connection; those bind keys in the compositor instead.
func NewHandler(backend platform.Backend, tiler Tiler, logger *slog.Logger) (*Handler, error) {
	accessor, ok := backend.(x11Accessor)
	if !ok || accessor.XUtil() == nil {
		return nil, fmt.Errorf("global hotkeys need an X11 backend, not %s", backend.Name())
	}
	if logger == nil {
		logger = slog.Default()
	}
	xu := accessor.XUtil()

	ignoreModsOnce.Do(func() {
		configureIgnoreMods(xu)
	})

	return &Handler{
		xu:     xu,
		root:   accessor.RootWindow(),
		tiler:  tiler,
		logger: logger,
	}, nil
}

// RegisterAll binds the snap hotkeys and every place hotkey in cfg. Snap
// hotkeys are required; a place hotkey that fails to grab is logged and
// skipped.
func (h *Handler) RegisterAll(cfg *config.Config) error {
	if err := h.RegisterSnap(cfg.SnapLeftHotkey, layout.DirLeft); err != nil {
		return err
	}
	if err := h.RegisterSnap(cfg.SnapRightHotkey, layout.DirRight); err != nil {
		return err
	}
	for _, b := range cfg.PlacePositions() {
		if err := h.RegisterPlace(b.Hotkey, b.Position); err != nil {
			h.logger.Warn("place hotkey not registered", "position", b.Position, "hotkey", b.Hotkey, "error", err)
		}
	}
	return nil
}

// RegisterSnap binds keySequence to one step of dir's cycle.
func (h *Handler) RegisterSnap(keySequence string, dir layout.Direction) error {
	if err := h.RegisterFunc(keySequence, func() {
		h.logger.Debug("snap hotkey triggered", "direction", dir, "hotkey", keySequence)
		// Failures are logged and counted by the tiler.
		_, _ = h.tiler.Snap(dir)
	}); err != nil {
		return fmt.Errorf("failed to register snap %s hotkey %q: %w", dir, keySequence, err)
	}
	return nil
}

// RegisterPlace binds keySequence to a direct placement.
func (h *Handler) RegisterPlace(keySequence string, p layout.Position) error {
	if err := h.RegisterFunc(keySequence, func() {
		h.logger.Debug("place hotkey triggered", "position", p, "hotkey", keySequence)
		_, _ = h.tiler.Place(p)
	}); err != nil {
		return fmt.Errorf("failed to register place %s hotkey %q: %w", p, keySequence, err)
	}
	return nil
}

// RegisterFunc registers an arbitrary hotkey callback.
func (h *Handler) RegisterFunc(keySequence string, callback func()) error {
	return keybind.KeyPressFun(func(xu *xgbutil.XUtil, ev xevent.KeyPressEvent) {
		callback()
	}).Connect(h.xu, h.root, keySequence, true)
}

// UnregisterAll releases every grab on the root window so a reload can bind
// the new sequences.
func (h *Handler) UnregisterAll() {
	keybind.Detach(h.xu, h.root)
}

func configureIgnoreMods(xu *xgbutil.XUtil) {
	// Always ignore CapsLock.
	caps := uint16(xproto.ModMaskLock)

	numLock := modMaskForKeysym(xu, "Num_Lock")
	scrollLock := modMaskForKeysym(xu, "Scroll_Lock")

	unique := make(map[uint16]struct{})
	add := func(mask uint16) {
		unique[mask] = struct{}{}
	}

	add(0)
	base := []uint16{caps}
	if numLock != 0 && numLock != caps {
		base = append(base, numLock)
	}
	if scrollLock != 0 && scrollLock != caps && scrollLock != numLock {
		base = append(base, scrollLock)
	}

	for subset := 1; subset < (1 << len(base)); subset++ {
		var mask uint16
		for bit := range base {
			if subset&(1<<bit) != 0 {
				mask |= base[bit]
			}
		}
		add(mask)
	}

	ignore := make([]uint16, 0, len(unique))
	for mask := range unique {
		ignore = append(ignore, mask)
	}

	xevent.IgnoreMods = ignore
}

func modMaskForKeysym(xu *xgbutil.XUtil, keysym string) uint16 {
	for _, keycode := range keybind.StrToKeycodes(xu, keysym) {
		if mask := keybind.ModGet(xu, keycode); mask != 0 {
			return mask
		}
	}
	return 0
}
