package config

import (
	"fmt"
	"strings"
)

// Explain returns the effective value at the given YAML-like path and its source.
//
// Supported paths include:
//
//	snap_left_hotkey
//	snap_right_hotkey
//	place_hotkeys
//	place_hotkeys.<position>
//	screen_frame
//	screen_padding
//	screen_padding.top
//	backend
//	log_level
//	log_format
//	metrics_addr
//	watch_config
func Explain(res *LoadResult, path string) (any, Source, error) {
	if res == nil || res.Config == nil {
		return nil, Source{}, fmt.Errorf("no config loaded")
	}
	if path == "" {
		return nil, Source{}, fmt.Errorf("path is empty")
	}

	value, err := lookupValue(res.Config, path)
	if err != nil {
		return nil, Source{}, err
	}

	if src, ok := res.Sources[path]; ok {
		return value, src, nil
	}
	return value, Source{Kind: SourceDefault, Name: "defaults"}, nil
}

func lookupValue(cfg *Config, path string) (any, error) {
	parts := strings.Split(path, ".")
	scalar := func(v any) (any, error) {
		if len(parts) != 1 {
			return nil, fmt.Errorf("unknown path: %s", path)
		}
		return v, nil
	}

	switch parts[0] {
	case "snap_left_hotkey":
		return scalar(cfg.SnapLeftHotkey)
	case "snap_right_hotkey":
		return scalar(cfg.SnapRightHotkey)
	case "screen_frame":
		return scalar(cfg.ScreenFrame)
	case "backend":
		return scalar(cfg.Backend)
	case "log_level":
		return scalar(cfg.LogLevel)
	case "log_format":
		return scalar(cfg.LogFormat)
	case "metrics_addr":
		return scalar(cfg.MetricsAddr)
	case "watch_config":
		return scalar(cfg.WatchConfig)
	case "place_hotkeys":
		switch len(parts) {
		case 1:
			return cfg.PlaceHotkeys, nil
		case 2:
			key, ok := cfg.PlaceHotkeys[parts[1]]
			if !ok {
				return nil, fmt.Errorf("no place hotkey for %q", parts[1])
			}
			return key, nil
		}
	case "screen_padding":
		if len(parts) == 1 {
			return cfg.ScreenPadding, nil
		}
		if len(parts) == 2 {
			switch parts[1] {
			case "top":
				return cfg.ScreenPadding.Top, nil
			case "bottom":
				return cfg.ScreenPadding.Bottom, nil
			case "left":
				return cfg.ScreenPadding.Left, nil
			case "right":
				return cfg.ScreenPadding.Right, nil
			}
		}
	}
	return nil, fmt.Errorf("unknown path: %s", path)
}
