package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/1broseidon/snaptile/internal/layout"
)

func writeFile(t *testing.T, path, data string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
	if cfg.ScreenFrame != ScreenFrameVisible {
		t.Fatalf("expected default screen_frame visible, got %q", cfg.ScreenFrame)
	}
	if !cfg.WatchConfig {
		t.Fatalf("expected watch_config to default to true")
	}
}

func TestLoadFromPath_MissingFileUsesDefaults(t *testing.T) {
	res, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.SnapLeftHotkey != DefaultSnapLeftHotkey {
		t.Fatalf("expected default left hotkey, got %q", res.Config.SnapLeftHotkey)
	}
	if len(res.Files) != 0 {
		t.Fatalf("expected no files loaded, got %v", res.Files)
	}
}

func TestLoadFromPath_EmptyFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "# empty\n")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.SnapRightHotkey != DefaultSnapRightHotkey {
		t.Fatalf("expected default right hotkey, got %q", res.Config.SnapRightHotkey)
	}
}

func TestLoadFromPath_AllKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, strings.Join([]string{
		`snap_left_hotkey: "Control-Mod1-Left"`,
		`snap_right_hotkey: "Control-Mod1-Right"`,
		`place_hotkeys:`,
		`  center: "Control-Mod1-c"`,
		`  fullscreen: "Control-Mod1-f"`,
		`screen_frame: FULL`,
		`screen_padding:`,
		`  top: 8`,
		`  left: 4`,
		`backend: x11`,
		`log_level: warning`,
		`log_format: json`,
		`metrics_addr: "127.0.0.1:9310"`,
		`watch_config: false`,
		``,
	}, "\n"))

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg := res.Config
	if cfg.SnapLeftHotkey != "Control-Mod1-Left" || cfg.SnapRightHotkey != "Control-Mod1-Right" {
		t.Fatalf("unexpected snap hotkeys: %q %q", cfg.SnapLeftHotkey, cfg.SnapRightHotkey)
	}
	if cfg.ScreenFrame != ScreenFrameFull {
		t.Fatalf("expected screen_frame full, got %q", cfg.ScreenFrame)
	}
	if cfg.ScreenPadding != (Margins{Top: 8, Left: 4}) {
		t.Fatalf("unexpected padding: %+v", cfg.ScreenPadding)
	}
	if cfg.Backend != "x11" || cfg.LogLevel != "warn" || cfg.LogFormat != "json" {
		t.Fatalf("unexpected backend/log settings: %q %q %q", cfg.Backend, cfg.LogLevel, cfg.LogFormat)
	}
	if cfg.MetricsAddr != "127.0.0.1:9310" || cfg.WatchConfig {
		t.Fatalf("unexpected metrics/watch settings: %q %v", cfg.MetricsAddr, cfg.WatchConfig)
	}

	bindings := cfg.PlacePositions()
	if len(bindings) != 2 {
		t.Fatalf("expected 2 place bindings, got %d", len(bindings))
	}
	if bindings[0].Position != layout.Center || bindings[1].Position != layout.Fullscreen {
		t.Fatalf("expected bindings in position order, got %+v", bindings)
	}
}

func TestLoadFromPath_StrictUnknownKeyErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "unknown_key: 1\n")

	_, err := LoadFromPath(path)
	if err == nil {
		t.Fatalf("expected error for unknown key")
	}
	if !strings.Contains(err.Error(), "unknown_key") && !strings.Contains(err.Error(), "field") {
		t.Fatalf("expected unknown field error, got %v", err)
	}
	if !strings.Contains(err.Error(), path) {
		t.Fatalf("expected error to include file path, got %v", err)
	}
}

func TestLoadFromPath_ValidationErrorHasSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "log_level: info\nscreen_frame: sideways\n")

	_, err := LoadFromPath(path)
	if err == nil {
		t.Fatalf("expected validation error")
	}
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	if verr.Path != "screen_frame" {
		t.Fatalf("expected path screen_frame, got %q", verr.Path)
	}
	if verr.Source.Kind != SourceFile || verr.Source.Line != 2 {
		t.Fatalf("expected source at line 2, got %#v", verr.Source)
	}
	if !strings.Contains(err.Error(), path+":2:") {
		t.Fatalf("expected file:line prefix, got %v", err)
	}
}

func TestLoadFromPath_UnknownPlacePosition(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "place_hotkeys:\n  top-half: Mod4-t\n")

	_, err := LoadFromPath(path)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	if verr.Path != "place_hotkeys.top-half" {
		t.Fatalf("unexpected path %q", verr.Path)
	}
	if verr.Source.Line != 2 {
		t.Fatalf("expected source line 2, got %#v", verr.Source)
	}
}

func TestValidate_Rejects(t *testing.T) {
	tests := map[string]struct {
		mutate func(*Config)
		path   string
	}{
		"empty left hotkey": {
			mutate: func(c *Config) { c.SnapLeftHotkey = " " },
			path:   "snap_left_hotkey",
		},
		"same hotkeys": {
			mutate: func(c *Config) { c.SnapRightHotkey = c.SnapLeftHotkey },
			path:   "snap_right_hotkey",
		},
		"negative padding": {
			mutate: func(c *Config) { c.ScreenPadding.Bottom = -1 },
			path:   "screen_padding",
		},
		"bad backend": {
			mutate: func(c *Config) { c.Backend = "wayland" },
			path:   "backend",
		},
		"bad log format": {
			mutate: func(c *Config) { c.LogFormat = "xml" },
			path:   "log_format",
		},
		"metrics addr without port": {
			mutate: func(c *Config) { c.MetricsAddr = "localhost" },
			path:   "metrics_addr",
		},
		"empty place hotkey": {
			mutate: func(c *Config) { c.PlaceHotkeys["center"] = "" },
			path:   "place_hotkeys.center",
		},
		"misspelled right hotkey": {
			mutate: func(c *Config) { c.SnapRightHotkey = "Mod4-Rigth" },
			path:   "snap_right_hotkey",
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected *ValidationError, got %v", err)
			}
			if verr.Path != tc.path {
				t.Fatalf("expected path %q, got %q", tc.path, verr.Path)
			}
		})
	}
}

func TestLoadFromPath_IncludeDirectoryOrderAndMainOverrides(t *testing.T) {
	dir := t.TempDir()

	// config.d loaded first, in sorted order.
	configD := filepath.Join(dir, "config.d")
	if err := os.MkdirAll(configD, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writeFile(t, filepath.Join(configD, "10-base.yaml"), "screen_padding:\n  top: 5\n  left: 2\n")
	writeFile(t, filepath.Join(configD, "20-override.yaml"), "screen_padding:\n  top: 6\n")

	// Main file overrides includes.
	path := filepath.Join(dir, "config.yaml")
	writeFile(t, path, strings.Join([]string{
		"include:",
		"  - config.d",
		"screen_padding:",
		"  right: 7",
		"",
	}, "\n"))

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := Margins{Top: 6, Left: 2, Right: 7}
	if res.Config.ScreenPadding != want {
		t.Fatalf("expected padding %+v, got %+v", want, res.Config.ScreenPadding)
	}
	if len(res.Files) != 3 || !strings.HasSuffix(res.Files[2], "config.yaml") {
		t.Fatalf("expected includes before main file, got %v", res.Files)
	}

	_, src, err := Explain(res, "screen_padding.top")
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	if src.Kind != SourceFile || !strings.HasSuffix(src.File, "20-override.yaml") {
		t.Fatalf("expected source 20-override.yaml, got %#v", src)
	}
}

func TestLoadFromPath_PlaceHotkeysMergeAcrossIncludes(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "base.yaml"), "place_hotkeys:\n  center: Mod4-c\n  left: Mod4-l\n")
	path := filepath.Join(dir, "config.yaml")
	writeFile(t, path, "include: base.yaml\nplace_hotkeys:\n  left: Mod4-h\n")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := res.Config.PlaceHotkeys["center"]; got != "Mod4-c" {
		t.Fatalf("expected center from include, got %q", got)
	}
	if got := res.Config.PlaceHotkeys["left"]; got != "Mod4-h" {
		t.Fatalf("expected main file to override left, got %q", got)
	}
}

func TestLoadFromPath_IncludeMissingPathHasContext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "include:\n  - missing.yaml\n")

	_, err := LoadFromPath(path)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "include") || !strings.Contains(err.Error(), "missing.yaml") {
		t.Fatalf("expected include error, got %v", err)
	}
	if !strings.Contains(err.Error(), path+":") {
		t.Fatalf("expected error to include file:line:col prefix, got %v", err)
	}
}

func TestLoadFromPath_IncludeCycleDetection(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.yaml")
	b := filepath.Join(dir, "b.yaml")
	writeFile(t, a, "include: b.yaml\n")
	writeFile(t, b, "include: a.yaml\n")

	_, err := LoadFromPath(a)
	if err == nil {
		t.Fatalf("expected cycle error")
	}
	if !strings.Contains(err.Error(), "include cycle") {
		t.Fatalf("expected cycle error, got %v", err)
	}
}

func TestExplain(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "backend: hyprland\n")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	val, src, err := Explain(res, "backend")
	if err != nil {
		t.Fatalf("explain backend: %v", err)
	}
	if val != "hyprland" || src.Kind != SourceFile || src.Line != 1 {
		t.Fatalf("unexpected explain result %#v %#v", val, src)
	}

	val, src, err = Explain(res, "screen_frame")
	if err != nil {
		t.Fatalf("explain screen_frame: %v", err)
	}
	if val != ScreenFrameVisible || src.Kind != SourceDefault {
		t.Fatalf("expected default visible frame, got %#v %#v", val, src)
	}

	if _, _, err := Explain(res, "backend.extra"); err == nil {
		t.Fatalf("expected error for nested scalar path")
	}
	if _, _, err := Explain(res, "layouts"); err == nil {
		t.Fatalf("expected error for unknown path")
	}
}

func TestSaveTo_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultConfig()
	cfg.PlaceHotkeys["center"] = "Mod4-Mod1-c"
	cfg.ScreenPadding.Top = 12

	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.PlaceHotkeys["center"] != "Mod4-Mod1-c" || res.Config.ScreenPadding.Top != 12 {
		t.Fatalf("saved config did not round-trip: %+v", res.Config)
	}
}

func TestSave_UsesHomeConfigDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	if err := DefaultConfig().Save(); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := os.Stat(filepath.Join(home, ".config", "snaptile", "config.yaml")); err != nil {
		t.Fatalf("expected config file under home: %v", err)
	}
}

func TestParseHotkey(t *testing.T) {
	valid := []string{
		"Mod4-Mod1-Left",
		"Control-Mod1-c",
		"shift-mod4-F12",
		"Mod4-KP_5",
		"XF86AudioPlay",
		"Mod4-space",
	}
	for _, seq := range valid {
		if _, err := ParseHotkey(seq); err != nil {
			t.Errorf("ParseHotkey(%q): %v", seq, err)
		}
	}

	invalid := map[string]string{
		"Mod4-Lfet":      "unknown key",
		"Mod4-Mod1":      "no key",
		"Mod4--Left":     "empty segment",
		"Mod4-a-b":       "two keys",
		"Left-Mod4":      "after key",
		"Mod4-mod4-Left": "repeats modifier",
		"Mod4-F0":        "unknown key",
		"Mod4-F07":       "unknown key",
	}
	for seq, want := range invalid {
		_, err := ParseHotkey(seq)
		if err == nil || !strings.Contains(err.Error(), want) {
			t.Errorf("ParseHotkey(%q) = %v, want error containing %q", seq, err, want)
		}
	}

	hk, err := ParseHotkey("Mod4-Control-Right")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if hk.Key != "Right" || len(hk.Modifiers) != 2 || hk.Modifiers[1] != "control" {
		t.Fatalf("unexpected hotkey %#v", hk)
	}
}

func TestLoadFromPath_BadHotkeyHasSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	writeFile(t, path, strings.Join([]string{
		"include: keys.yaml",
		"screen_frame: full",
	}, "\n"))
	writeFile(t, filepath.Join(dir, "keys.yaml"), strings.Join([]string{
		"place_hotkeys:",
		"  center: Mod4-c",
		"  full: Mod4-Fulll",
	}, "\n"))

	_, err := LoadFromPath(path)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	if verr.Path != "place_hotkeys.full" {
		t.Fatalf("expected path place_hotkeys.full, got %q", verr.Path)
	}
	if !strings.HasSuffix(verr.Source.File, "keys.yaml") || verr.Source.Line != 3 {
		t.Fatalf("expected source keys.yaml:3, got %#v", verr.Source)
	}
	if !strings.Contains(err.Error(), "unknown key") {
		t.Fatalf("expected unknown key error, got %v", err)
	}
}
