package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Modifier names accepted in a key sequence, matched case-insensitively the
// same way the X11 key grabber parses them.
var hotkeyModifiers = map[string]struct{}{
	"shift": {}, "lock": {}, "control": {},
	"mod1": {}, "mod2": {}, "mod3": {}, "mod4": {}, "mod5": {},
	"any": {},
}

// Named keysyms accepted besides single characters, F-keys and XF86 media
// keys.
var namedKeys = map[string]struct{}{
	"Left": {}, "Right": {}, "Up": {}, "Down": {},
	"Home": {}, "End": {}, "Prior": {}, "Next": {}, "Page_Up": {}, "Page_Down": {},
	"Insert": {}, "Delete": {}, "BackSpace": {}, "Return": {}, "Tab": {}, "Escape": {},
	"space": {}, "Print": {}, "Pause": {}, "Menu": {},
	"minus": {}, "equal": {}, "plus": {}, "comma": {}, "period": {}, "slash": {},
	"backslash": {}, "semicolon": {}, "apostrophe": {}, "grave": {},
	"bracketleft": {}, "bracketright": {},
	"KP_0": {}, "KP_1": {}, "KP_2": {}, "KP_3": {}, "KP_4": {},
	"KP_5": {}, "KP_6": {}, "KP_7": {}, "KP_8": {}, "KP_9": {},
	"KP_Left": {}, "KP_Right": {}, "KP_Up": {}, "KP_Down": {}, "KP_Begin": {},
	"KP_Home": {}, "KP_End": {}, "KP_Prior": {}, "KP_Next": {},
	"KP_Add": {}, "KP_Subtract": {}, "KP_Multiply": {}, "KP_Divide": {}, "KP_Enter": {},
}

// Hotkey is a parsed key sequence such as "Mod4-Mod1-Left".
type Hotkey struct {
	Modifiers []string
	Key       string
}

// ParseHotkey checks the syntax of a key sequence without talking to the X
// server: dash-separated modifiers followed by exactly one key name.
func ParseHotkey(seq string) (Hotkey, error) {
	seq = strings.TrimSpace(seq)
	if seq == "" {
		return Hotkey{}, fmt.Errorf("hotkey must not be empty")
	}

	var hk Hotkey
	seen := make(map[string]bool)
	for _, part := range strings.Split(seq, "-") {
		if part == "" {
			return Hotkey{}, fmt.Errorf("hotkey %q has an empty segment", seq)
		}
		mod := strings.ToLower(part)
		if _, ok := hotkeyModifiers[mod]; ok {
			if hk.Key != "" {
				return Hotkey{}, fmt.Errorf("hotkey %q: modifier %q after key %q", seq, part, hk.Key)
			}
			if seen[mod] {
				return Hotkey{}, fmt.Errorf("hotkey %q repeats modifier %q", seq, part)
			}
			seen[mod] = true
			hk.Modifiers = append(hk.Modifiers, mod)
			continue
		}
		if hk.Key != "" {
			return Hotkey{}, fmt.Errorf("hotkey %q names two keys (%q and %q)", seq, hk.Key, part)
		}
		if !knownKey(part) {
			return Hotkey{}, fmt.Errorf("hotkey %q: unknown key %q", seq, part)
		}
		hk.Key = part
	}
	if hk.Key == "" {
		return Hotkey{}, fmt.Errorf("hotkey %q has no key after its modifiers", seq)
	}
	return hk, nil
}

func knownKey(name string) bool {
	if len([]rune(name)) == 1 {
		return true
	}
	if _, ok := namedKeys[name]; ok {
		return true
	}
	if strings.HasPrefix(name, "XF86") && len(name) > len("XF86") {
		return true
	}
	if n, ok := strings.CutPrefix(name, "F"); ok {
		if fn, err := strconv.Atoi(n); err == nil && strconv.Itoa(fn) == n && fn >= 1 && fn <= 35 {
			return true
		}
	}
	return false
}
