package palette

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"os/exec"
	"strconv"
	"strings"
)

type launcherKind int

const (
	kindRofi launcherKind = iota
	kindFuzzel
	kindWofi
	kindDmenu
)

var kindByName = map[string]launcherKind{
	"rofi":   kindRofi,
	"fuzzel": kindFuzzel,
	"wofi":   kindWofi,
	"dmenu":  kindDmenu,
}

// dmenuLike drives any launcher that reads rows on stdin and prints the
// selection on stdout.
type dmenuLike struct {
	name string
	kind launcherKind
	run  CommandRunner
}

func (l *dmenuLike) Name() string { return l.name }

// indexOutput reports whether the launcher prints the row index instead of
// the row text.
func (l *dmenuLike) indexOutput() bool {
	return l.kind == kindRofi || l.kind == kindFuzzel
}

func (l *dmenuLike) Show(prompt string, items []Item, message string) (Item, error) {
	if len(items) == 0 {
		return Item{}, fmt.Errorf("palette: no items to show")
	}

	lines := make([]string, len(items))
	selected := 0
	for i, item := range items {
		lines[i] = l.formatItem(item)
		if item.IsActive {
			selected = i
		}
	}

	out, err := l.run(strings.Join(lines, "\n"), l.name, l.buildArgs(prompt, message, selected)...)
	if err != nil {
		return Item{}, err
	}
	selection := strings.TrimSpace(out)
	if selection == "" {
		return Item{}, ErrCancelled
	}
	return l.parseSelection(selection, items)
}

func (l *dmenuLike) buildArgs(prompt, message string, selected int) []string {
	var args []string

	switch l.kind {
	case kindRofi:
		args = []string{"-dmenu", "-i", "-p", prompt}
		// Output only the index so labels never need parsing.
		args = append(args, "-format", "i", "-no-custom", "-markup-rows", "-show-icons")
		args = append(args, "-selected-row", strconv.Itoa(selected))
		if message != "" {
			args = append(args, "-mesg", message)
		}

	case kindFuzzel:
		args = []string{"--dmenu", "--prompt", prompt + " ", "--index"}

	case kindWofi:
		args = []string{"--dmenu", "--prompt", prompt}

	case kindDmenu:
		args = []string{"-i", "-p", prompt}
	}

	return args
}

func (l *dmenuLike) formatItem(item Item) string {
	display := sanitizeLabel(item.Label)
	if l.kind != kindRofi {
		return display
	}

	// -markup-rows is on, so labels must be escaped.
	display = html.EscapeString(display)
	if item.IsActive {
		display = "<b>" + display + "</b>"
	}

	// Rofi row properties: one NUL, then key\x1fvalue pairs joined by \x1f.
	var attrs []string
	if item.Icon != "" {
		attrs = append(attrs, "icon", sanitizeRofiField(item.Icon))
	}
	if item.Meta != "" {
		attrs = append(attrs, "meta", sanitizeRofiField(item.Meta))
	}
	if len(attrs) == 0 {
		return display
	}
	return display + "\x00" + strings.Join(attrs, "\x1f")
}

func (l *dmenuLike) parseSelection(selection string, items []Item) (Item, error) {
	if l.indexOutput() {
		if idx, err := strconv.Atoi(selection); err == nil {
			if idx < 0 || idx >= len(items) {
				return Item{}, fmt.Errorf("palette: index %d out of range", idx)
			}
			return items[idx], nil
		}
	}
	for _, item := range items {
		if sanitizeLabel(item.Label) == selection {
			return item, nil
		}
	}
	return Item{}, fmt.Errorf("palette: unknown selection %q", selection)
}

func runCommand(stdin string, name string, args ...string) (string, error) {
	cmd := exec.Command(name, args...)
	cmd.Stdin = strings.NewReader(stdin)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		if isCancelExit(err) {
			return "", ErrCancelled
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("%s failed: %s", name, msg)
		}
		return "", fmt.Errorf("%s failed: %w", name, err)
	}
	return string(out), nil
}

func sanitizeLabel(label string) string {
	label = strings.ReplaceAll(label, "\r", " ")
	label = strings.ReplaceAll(label, "\n", " ")
	return strings.TrimSpace(label)
}

func sanitizeRofiField(value string) string {
	value = strings.ReplaceAll(value, "\x00", " ")
	value = strings.ReplaceAll(value, "\x1f", " ")
	return sanitizeLabel(value)
}

func isCancelExit(err error) bool {
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return false
	}
	// 1 is "no selection", 130 is Ctrl+C.
	switch exitErr.ExitCode() {
	case 1, 130:
		return true
	default:
		return false
	}
}
