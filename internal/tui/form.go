// Package tui implements the interactive config editor.
package tui

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/1broseidon/snaptile/internal/config"
	"github.com/1broseidon/snaptile/internal/layout"
	"github.com/1broseidon/snaptile/internal/platform"
)

// EditForm holds the form-bound values for one editing session. huh binds
// strings, so numbers are converted in Apply.
type EditForm struct {
	base *config.Config

	fSnapLeft      string
	fSnapRight     string
	fScreenFrame   string
	fPaddingTop    string
	fPaddingBottom string
	fPaddingLeft   string
	fPaddingRight  string
	fBackend       string
	fLogLevel      string
	fWatchConfig   bool
	fPlace         map[string]*string
}

// NewEditForm seeds a form from cfg.
func NewEditForm(cfg *config.Config) *EditForm {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	f := &EditForm{
		base:           cfg,
		fSnapLeft:      cfg.SnapLeftHotkey,
		fSnapRight:     cfg.SnapRightHotkey,
		fScreenFrame:   string(cfg.ScreenFrame),
		fPaddingTop:    strconv.Itoa(cfg.ScreenPadding.Top),
		fPaddingBottom: strconv.Itoa(cfg.ScreenPadding.Bottom),
		fPaddingLeft:   strconv.Itoa(cfg.ScreenPadding.Left),
		fPaddingRight:  strconv.Itoa(cfg.ScreenPadding.Right),
		fBackend:       cfg.Backend,
		fLogLevel:      cfg.LogLevel,
		fWatchConfig:   cfg.WatchConfig,
		fPlace:         make(map[string]*string, len(layout.Positions)),
	}
	for _, p := range layout.Positions {
		v := cfg.PlaceHotkeys[p.String()]
		f.fPlace[p.String()] = &v
	}
	return f
}

// Form builds the huh form bound to f.
func (f *EditForm) Form() *huh.Form {
	placeFields := make([]huh.Field, 0, len(layout.Positions))
	for _, p := range layout.Positions {
		placeFields = append(placeFields, huh.NewInput().
			Key("place_hotkeys."+p.String()).
			Title("Place: "+p.String()).
			Description("Leave empty for no binding").
			Value(f.fPlace[p.String()]))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("snap_left_hotkey").
				Title("Snap Left Hotkey").
				Description("Cycles left third, left two-thirds, fullscreen").
				Validate(required).
				Value(&f.fSnapLeft),

			huh.NewInput().
				Key("snap_right_hotkey").
				Title("Snap Right Hotkey").
				Description("Cycles right third, right two-thirds, fullscreen").
				Validate(required).
				Value(&f.fSnapRight),

			huh.NewSelect[string]().
				Key("screen_frame").
				Title("Screen Frame").
				Description("visible excludes panels and docks").
				Options(huh.NewOptions(string(config.ScreenFrameVisible), string(config.ScreenFrameFull))...).
				Value(&f.fScreenFrame),
		),
		huh.NewGroup(
			paddingInput("top", &f.fPaddingTop),
			paddingInput("bottom", &f.fPaddingBottom),
			paddingInput("left", &f.fPaddingLeft),
			paddingInput("right", &f.fPaddingRight),
		),
		huh.NewGroup(placeFields...),
		huh.NewGroup(
			huh.NewSelect[string]().
				Key("backend").
				Title("Backend").
				Options(huh.NewOptions(platform.Kinds...)...).
				Value(&f.fBackend),

			huh.NewSelect[string]().
				Key("log_level").
				Title("Log Level").
				Options(huh.NewOptions("debug", "info", "warn", "error")...).
				Value(&f.fLogLevel),

			huh.NewConfirm().
				Key("watch_config").
				Title("Reload when the config file changes?").
				Value(&f.fWatchConfig),
		),
	).WithShowHelp(true).WithShowErrors(true)
}

// Apply returns a copy of the base config with the form values applied.
func (f *EditForm) Apply() (*config.Config, error) {
	next := cloneConfig(f.base)
	next.SnapLeftHotkey = strings.TrimSpace(f.fSnapLeft)
	next.SnapRightHotkey = strings.TrimSpace(f.fSnapRight)
	next.ScreenFrame = config.ScreenFrame(f.fScreenFrame)
	next.Backend = f.fBackend
	next.LogLevel = f.fLogLevel
	next.WatchConfig = f.fWatchConfig

	for _, side := range []struct {
		name string
		in   string
		out  *int
	}{
		{"top", f.fPaddingTop, &next.ScreenPadding.Top},
		{"bottom", f.fPaddingBottom, &next.ScreenPadding.Bottom},
		{"left", f.fPaddingLeft, &next.ScreenPadding.Left},
		{"right", f.fPaddingRight, &next.ScreenPadding.Right},
	} {
		n, err := parsePadding(side.in)
		if err != nil {
			return nil, fmt.Errorf("screen_padding.%s: %w", side.name, err)
		}
		*side.out = n
	}

	next.PlaceHotkeys = make(map[string]string)
	names := make([]string, 0, len(f.fPlace))
	for name := range f.fPlace {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if v := strings.TrimSpace(*f.fPlace[name]); v != "" {
			next.PlaceHotkeys[name] = v
		}
	}

	if err := next.Validate(); err != nil {
		return nil, err
	}
	return next, nil
}

func paddingInput(side string, v *string) *huh.Input {
	return huh.NewInput().
		Key("screen_padding." + side).
		Title("Screen Padding: " + strings.ToUpper(side[:1]) + side[1:]).
		Validate(func(s string) error {
			_, err := parsePadding(s)
			return err
		}).
		Value(v)
}

func parsePadding(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("must be a whole number of pixels")
	}
	if n < 0 {
		return 0, fmt.Errorf("must be >= 0")
	}
	return n, nil
}

func required(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("required")
	}
	return nil
}

// cloneConfig creates a deep copy of a Config.
func cloneConfig(cfg *config.Config) *config.Config {
	clone := *cfg
	clone.PlaceHotkeys = make(map[string]string, len(cfg.PlaceHotkeys))
	for k, v := range cfg.PlaceHotkeys {
		clone.PlaceHotkeys[k] = v
	}
	return &clone
}
