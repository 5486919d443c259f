package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/1broseidon/snaptile/internal/layout"
	"github.com/1broseidon/snaptile/internal/logging"
	"github.com/1broseidon/snaptile/internal/palette"
)

func newPaletteCmd(opts *globalOptions) *cobra.Command {
	var launcher string
	cmd := &cobra.Command{
		Use:   "palette",
		Short: "Pick a position for the focused window from a rofi/fuzzel/wofi/dmenu menu",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := logging.FromContext(cmd.Context())

			l, err := palette.New(launcher)
			if err != nil {
				return err
			}

			client := opts.client()
			var current *layout.Position
			if res, err := client.Query(); err == nil {
				current = &res.Observed
			} else {
				logger.Debug("could not query focused window", "error", err)
			}

			p, err := palette.PickPosition(l, current)
			if errors.Is(err, palette.ErrCancelled) {
				return nil
			}
			if err != nil {
				return err
			}

			res, err := client.Place(p.String())
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), res, false)
		},
	}
	cmd.Flags().StringVar(&launcher, "launcher", "auto", "menu launcher: auto, rofi, fuzzel, wofi or dmenu")
	return cmd
}
