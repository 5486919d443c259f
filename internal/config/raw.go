package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// IncludeList supports either:
//
//	include: "/path/to/file.yaml"
//
// or:
//
//	include:
//	  - "/path/to/file.yaml"
//	  - "/path/to/dir"
type IncludeList []string

func (l *IncludeList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case 0:
		// Not present.
		*l = nil
		return nil
	case yaml.ScalarNode:
		if value.Tag != "!!str" {
			return fmt.Errorf("include must be a string or list of strings")
		}
		*l = []string{value.Value}
		return nil
	case yaml.SequenceNode:
		out := make([]string, 0, len(value.Content))
		for _, item := range value.Content {
			if item.Kind != yaml.ScalarNode || item.Tag != "!!str" {
				return fmt.Errorf("include entries must be strings")
			}
			out = append(out, item.Value)
		}
		*l = out
		return nil
	default:
		return fmt.Errorf("include must be a string or list of strings")
	}
}

type RawMargins struct {
	Top    *int `yaml:"top"`
	Bottom *int `yaml:"bottom"`
	Left   *int `yaml:"left"`
	Right  *int `yaml:"right"`
}

// RawConfig mirrors one YAML file; nil fields were not set by that file.
type RawConfig struct {
	Include         IncludeList       `yaml:"include"`
	SnapLeftHotkey  *string           `yaml:"snap_left_hotkey"`
	SnapRightHotkey *string           `yaml:"snap_right_hotkey"`
	PlaceHotkeys    map[string]string `yaml:"place_hotkeys"`
	ScreenFrame     *ScreenFrame      `yaml:"screen_frame"`
	ScreenPadding   *RawMargins       `yaml:"screen_padding"`
	Backend         *string           `yaml:"backend"`
	LogLevel        *string           `yaml:"log_level"`
	LogFormat       *string           `yaml:"log_format"`
	MetricsAddr     *string           `yaml:"metrics_addr"`
	WatchConfig     *bool             `yaml:"watch_config"`
}

func (c RawConfig) merge(overlay RawConfig) RawConfig {
	out := c

	if overlay.SnapLeftHotkey != nil {
		out.SnapLeftHotkey = overlay.SnapLeftHotkey
	}
	if overlay.SnapRightHotkey != nil {
		out.SnapRightHotkey = overlay.SnapRightHotkey
	}
	if overlay.PlaceHotkeys != nil {
		merged := make(map[string]string, len(out.PlaceHotkeys)+len(overlay.PlaceHotkeys))
		for name, key := range out.PlaceHotkeys {
			merged[name] = key
		}
		for name, key := range overlay.PlaceHotkeys {
			merged[name] = key
		}
		out.PlaceHotkeys = merged
	}
	if overlay.ScreenFrame != nil {
		out.ScreenFrame = overlay.ScreenFrame
	}
	if overlay.ScreenPadding != nil {
		base := RawMargins{}
		if out.ScreenPadding != nil {
			base = *out.ScreenPadding
		}
		merged := mergeRawMargins(base, *overlay.ScreenPadding)
		out.ScreenPadding = &merged
	}
	if overlay.Backend != nil {
		out.Backend = overlay.Backend
	}
	if overlay.LogLevel != nil {
		out.LogLevel = overlay.LogLevel
	}
	if overlay.LogFormat != nil {
		out.LogFormat = overlay.LogFormat
	}
	if overlay.MetricsAddr != nil {
		out.MetricsAddr = overlay.MetricsAddr
	}
	if overlay.WatchConfig != nil {
		out.WatchConfig = overlay.WatchConfig
	}

	return out
}

func mergeRawMargins(base RawMargins, overlay RawMargins) RawMargins {
	out := base
	if overlay.Top != nil {
		out.Top = overlay.Top
	}
	if overlay.Bottom != nil {
		out.Bottom = overlay.Bottom
	}
	if overlay.Left != nil {
		out.Left = overlay.Left
	}
	if overlay.Right != nil {
		out.Right = overlay.Right
	}
	return out
}
