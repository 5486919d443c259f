package tui

import (
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/huh"

	"github.com/1broseidon/snaptile/internal/config"
)

// Edit runs the interactive editor for cfg, shows the resulting diff and,
// once confirmed, writes the config to path. reload, if set, is called after
// a successful save; its failure is reported but not fatal.
func Edit(out io.Writer, cfg *config.Config, path string, reload func() error) error {
	form := NewEditForm(cfg)
	if err := form.Form().Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			fmt.Fprintln(out, "cancelled")
			return nil
		}
		return err
	}

	next, err := form.Apply()
	if err != nil {
		return err
	}

	diff := RenderDiff(cfg, next)
	if diff == "" {
		fmt.Fprintln(out, "no changes to save")
		return nil
	}
	fmt.Fprintln(out, diff)

	save := true
	if err := huh.NewConfirm().
		Title(fmt.Sprintf("Save to %s?", path)).
		Affirmative("Save").
		Negative("Discard").
		Value(&save).
		Run(); err != nil && !errors.Is(err, huh.ErrUserAborted) {
		return err
	}
	if !save {
		fmt.Fprintln(out, "discarded")
		return nil
	}

	if err := next.SaveTo(path); err != nil {
		return err
	}
	fmt.Fprintln(out, addStyle.Render("config saved"))

	if reload != nil {
		if err := reload(); err != nil {
			fmt.Fprintln(out, ctxStyle.Render("daemon not reloaded: "+err.Error()))
		} else {
			fmt.Fprintln(out, addStyle.Render("daemon reloaded"))
		}
	}
	return nil
}
