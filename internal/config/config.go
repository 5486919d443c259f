package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/1broseidon/snaptile/internal/layout"
	"gopkg.in/yaml.v3"
)

// Margins represents padding applied inside the screen frame.
type Margins struct {
	Top    int `yaml:"top"`
	Bottom int `yaml:"bottom"`
	Left   int `yaml:"left"`
	Right  int `yaml:"right"`
}

// ScreenFrame selects which screen rectangle windows are classified and laid
// out against.
type ScreenFrame string

const (
	ScreenFrameVisible ScreenFrame = "visible" // Excludes panels and docks.
	ScreenFrameFull    ScreenFrame = "full"
)

const (
	DefaultSnapLeftHotkey  = "Mod4-Mod1-Left"
	DefaultSnapRightHotkey = "Mod4-Mod1-Right"
)

// Config holds the application configuration.
type Config struct {
	SnapLeftHotkey  string            `yaml:"snap_left_hotkey"`
	SnapRightHotkey string            `yaml:"snap_right_hotkey"`
	PlaceHotkeys    map[string]string `yaml:"place_hotkeys"`
	ScreenFrame     ScreenFrame       `yaml:"screen_frame"`
	ScreenPadding   Margins           `yaml:"screen_padding"`
	Backend         string            `yaml:"backend"`
	LogLevel        string            `yaml:"log_level"`
	LogFormat       string            `yaml:"log_format"`
	MetricsAddr     string            `yaml:"metrics_addr,omitempty"`
	WatchConfig     bool              `yaml:"watch_config"`
}

func DefaultConfig() *Config {
	return &Config{
		SnapLeftHotkey:  DefaultSnapLeftHotkey,
		SnapRightHotkey: DefaultSnapRightHotkey,
		PlaceHotkeys:    map[string]string{},
		ScreenFrame:     ScreenFrameVisible,
		Backend:         "auto",
		LogLevel:        "info",
		LogFormat:       "text",
		WatchConfig:     true,
	}
}

// PlacePositions returns the configured place hotkeys in position order.
// Names that do not parse are skipped.
func (c *Config) PlacePositions() []PlaceBinding {
	var out []PlaceBinding
	for name, key := range c.PlaceHotkeys {
		pos, err := layout.ParsePosition(name)
		if err != nil || strings.TrimSpace(key) == "" {
			continue
		}
		out = append(out, PlaceBinding{Position: pos, Hotkey: key})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out
}

// PlaceBinding binds a key sequence to a direct placement.
type PlaceBinding struct {
	Position layout.Position
	Hotkey   string
}

// Save writes the configuration to the standard location.
//
// Note: this marshals the effective config and will not preserve comments or
// include structure from the original YAML.
func (c *Config) Save() error {
	path, err := DefaultConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the configuration to path, creating parent directories.
func (c *Config) SaveTo(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate performs strict validation of the effective configuration.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.SnapLeftHotkey) == "" {
		return &ValidationError{Path: "snap_left_hotkey", Err: fmt.Errorf("snap_left_hotkey is required")}
	}
	if strings.TrimSpace(c.SnapRightHotkey) == "" {
		return &ValidationError{Path: "snap_right_hotkey", Err: fmt.Errorf("snap_right_hotkey is required")}
	}
	if c.SnapLeftHotkey == c.SnapRightHotkey {
		return &ValidationError{Path: "snap_right_hotkey", Err: fmt.Errorf("snap_right_hotkey must differ from snap_left_hotkey")}
	}
	if _, err := ParseHotkey(c.SnapLeftHotkey); err != nil {
		return &ValidationError{Path: "snap_left_hotkey", Err: err}
	}
	if _, err := ParseHotkey(c.SnapRightHotkey); err != nil {
		return &ValidationError{Path: "snap_right_hotkey", Err: err}
	}
	if c.PlaceHotkeys == nil {
		return &ValidationError{Path: "place_hotkeys", Err: fmt.Errorf("place_hotkeys must not be null")}
	}
	for _, name := range sortedKeys(c.PlaceHotkeys) {
		if _, err := layout.ParsePosition(name); err != nil {
			return &ValidationError{Path: "place_hotkeys." + name, Err: fmt.Errorf("unknown position (expected one of: %s)", strings.Join(layout.PositionNames(), ", "))}
		}
		if _, err := ParseHotkey(c.PlaceHotkeys[name]); err != nil {
			return &ValidationError{Path: "place_hotkeys." + name, Err: err}
		}
	}
	switch c.ScreenFrame {
	case ScreenFrameVisible, ScreenFrameFull:
	default:
		return &ValidationError{Path: "screen_frame", Err: fmt.Errorf("screen_frame must be one of: visible, full")}
	}
	if c.ScreenPadding.Top < 0 || c.ScreenPadding.Bottom < 0 || c.ScreenPadding.Left < 0 || c.ScreenPadding.Right < 0 {
		return &ValidationError{Path: "screen_padding", Err: fmt.Errorf("screen_padding values must be >= 0")}
	}
	switch c.Backend {
	case "auto", "x11", "hyprland":
	default:
		return &ValidationError{Path: "backend", Err: fmt.Errorf("backend must be one of: auto, x11, hyprland")}
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: debug, info, warn, error")}
	}
	switch c.LogFormat {
	case "text", "json", "logfmt":
	default:
		return &ValidationError{Path: "log_format", Err: fmt.Errorf("log_format must be one of: text, json, logfmt")}
	}
	if c.MetricsAddr != "" && !strings.Contains(c.MetricsAddr, ":") {
		return &ValidationError{Path: "metrics_addr", Err: fmt.Errorf("metrics_addr must be host:port")}
	}

	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
