package config

import (
	"fmt"
	"strings"
)

type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// BuildEffectiveConfig applies a merged raw config on top of the defaults.
func BuildEffectiveConfig(raw RawConfig) *Config {
	cfg := DefaultConfig()

	if raw.SnapLeftHotkey != nil {
		cfg.SnapLeftHotkey = strings.TrimSpace(*raw.SnapLeftHotkey)
	}
	if raw.SnapRightHotkey != nil {
		cfg.SnapRightHotkey = strings.TrimSpace(*raw.SnapRightHotkey)
	}
	for name, key := range raw.PlaceHotkeys {
		cfg.PlaceHotkeys[name] = strings.TrimSpace(key)
	}
	if raw.ScreenFrame != nil {
		cfg.ScreenFrame = ScreenFrame(strings.ToLower(strings.TrimSpace(string(*raw.ScreenFrame))))
	}
	if raw.ScreenPadding != nil {
		cfg.ScreenPadding = Margins{
			Top:    derefInt(raw.ScreenPadding.Top, cfg.ScreenPadding.Top),
			Bottom: derefInt(raw.ScreenPadding.Bottom, cfg.ScreenPadding.Bottom),
			Left:   derefInt(raw.ScreenPadding.Left, cfg.ScreenPadding.Left),
			Right:  derefInt(raw.ScreenPadding.Right, cfg.ScreenPadding.Right),
		}
	}
	if raw.Backend != nil {
		cfg.Backend = strings.ToLower(strings.TrimSpace(*raw.Backend))
	}
	if raw.LogLevel != nil {
		cfg.LogLevel = strings.ToLower(strings.TrimSpace(*raw.LogLevel))
		if cfg.LogLevel == "warning" {
			cfg.LogLevel = "warn"
		}
	}
	if raw.LogFormat != nil {
		cfg.LogFormat = strings.ToLower(strings.TrimSpace(*raw.LogFormat))
	}
	if raw.MetricsAddr != nil {
		cfg.MetricsAddr = strings.TrimSpace(*raw.MetricsAddr)
	}
	if raw.WatchConfig != nil {
		cfg.WatchConfig = *raw.WatchConfig
	}

	return cfg
}

func derefInt(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}
