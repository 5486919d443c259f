package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/1broseidon/snaptile/internal/ipc"
	"github.com/1broseidon/snaptile/internal/logging"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

type globalOptions struct {
	configPath string
	socketPath string
	verbose    bool
}

func (o *globalOptions) client() *ipc.Client {
	if o.socketPath != "" {
		return ipc.NewClientWithSocket(o.socketPath)
	}
	return ipc.NewClient()
}

func (o *globalOptions) level() string {
	if o.verbose {
		return "debug"
	}
	return "info"
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "snaptile",
		Short: "Snap the focused window into thirds with repeatable hotkeys",
		Long: `snaptile moves the focused window between the left, center and right thirds,
the two-thirds variants and fullscreen. Pressing the same hotkey again cycles
the window to the next position.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := logging.Setup(os.Stderr, opts.level(), string(logging.FormatText))
			if err != nil {
				return err
			}
			cmd.SetContext(logging.WithLogger(cmd.Context(), logger))
			return nil
		},
	}

	root.SetVersionTemplate(fmt.Sprintf("snaptile %s\ncommit: %s\nbuilt: %s\n", version, commit, date))
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "config file (default ~/.config/snaptile/config.yaml)")
	root.PersistentFlags().StringVar(&opts.socketPath, "socket", "", "daemon socket (default $XDG_RUNTIME_DIR/snaptile.sock)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newDaemonCmd(opts),
		newSnapCmd(opts),
		newPlaceCmd(opts),
		newQueryCmd(opts),
		newStatusCmd(opts),
		newReloadCmd(opts),
		newConfigCmd(opts),
		newPaletteCmd(opts),
		newMCPCmd(opts),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "snaptile %s (commit %s, built %s)\n", version, commit, date)
		},
	}
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
