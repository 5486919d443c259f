package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/1broseidon/snaptile/internal/ipc"
	"github.com/1broseidon/snaptile/internal/layout"
	"github.com/1broseidon/snaptile/internal/platform"
	"github.com/1broseidon/snaptile/internal/tiling"
	"github.com/1broseidon/snaptile/internal/tui"
)

func newSnapCmd(opts *globalOptions) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:       "snap left|right",
		Short:     "Advance the focused window through the left or right cycle",
		Long:      "left cycles left third, left two-thirds, fullscreen.\nright cycles right third, right two-thirds, fullscreen.",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"left", "right"},
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := layout.ParseDirection(args[0])
			if err != nil {
				return err
			}
			res, err := opts.client().Snap(dir.String())
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), res, asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	return cmd
}

func newPlaceCmd(opts *globalOptions) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:       "place <position>",
		Short:     "Move the focused window directly to a position",
		Long:      "Positions: " + strings.Join(layout.PositionNames(), ", "),
		Args:      cobra.ExactArgs(1),
		ValidArgs: layout.PositionNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := layout.ParsePosition(args[0])
			if err != nil {
				return err
			}
			res, err := opts.client().Place(p.String())
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), res, asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	return cmd
}

func newQueryCmd(opts *globalOptions) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Show the position of the focused window without moving it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := opts.client().Query()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if err := printResult(out, res, asJSON); err != nil || asJSON {
				return err
			}
			if preview := tui.RenderPositions(screenRect(res.Screen), res.Observed, 48, 7); preview != "" {
				fmt.Fprintln(out, preview)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	return cmd
}

func newStatusCmd(opts *globalOptions) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			status, err := opts.client().GetStatus()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON || !isTerminal(out) {
				return writeJSON(out, status)
			}
			printStatus(out, status)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print status as JSON (default when stdout is not a terminal)")
	return cmd
}

func newReloadCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reload",
		Short: "Ask the daemon to reload its configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := opts.client().Reload(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "config reloaded")
			return nil
		},
	}
}

func printResult(w io.Writer, res *tiling.SnapResult, asJSON bool) error {
	if asJSON {
		return writeJSON(w, res)
	}
	fmt.Fprintf(w, "window:   %s\n", res.Title)
	fmt.Fprintf(w, "observed: %s\n", res.Observed)
	if res.Remembered != nil && *res.Remembered != res.Observed {
		fmt.Fprintf(w, "remembered: %s\n", *res.Remembered)
	}
	fmt.Fprintf(w, "position: %s\n", res.Next)
	fmt.Fprintf(w, "rect:     %s\n", res.Rect)
	return nil
}

func printStatus(w io.Writer, status *ipc.StatusData) {
	fmt.Fprintf(w, "daemon_running:  %v\n", status.DaemonRunning)
	fmt.Fprintf(w, "uptime:          %s\n", time.Duration(status.UptimeSeconds)*time.Second)
	fmt.Fprintf(w, "config:          %s\n", status.ConfigPath)
	fmt.Fprintf(w, "backend:         %s\n", status.Backend)
	fmt.Fprintf(w, "tracked_windows: %d\n", status.TrackedWindows)
	fmt.Fprintf(w, "snaps:           %d\n", status.Snaps)
	fmt.Fprintf(w, "failures:        %d\n", status.Failures)
	if status.LastError != "" {
		fmt.Fprintf(w, "last_error:      %s\n", status.LastError)
	}
	if last := status.Last; last != nil {
		fmt.Fprintf(w, "last:            %s %q -> %s (%s)\n", last.Action, last.Title, last.Next, humanize.Time(last.At))
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func screenRect(r platform.Rect) layout.Rect {
	return layout.Rect{X: float64(r.X), Y: float64(r.Y), Width: float64(r.Width), Height: float64(r.Height)}
}
