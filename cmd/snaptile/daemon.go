package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/1broseidon/snaptile/internal/config"
	"github.com/1broseidon/snaptile/internal/daemon"
	"github.com/1broseidon/snaptile/internal/logging"
)

func newDaemonCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "daemon",
		Short: "Run the snaptile daemon (hotkeys and IPC)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := resolveConfigPath(opts.configPath)
			if err != nil {
				return err
			}

			// Logging settings come from the config file; --verbose wins.
			res, err := config.LoadFromPath(path)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			level := res.Config.LogLevel
			if opts.verbose {
				level = "debug"
			}
			logger, err := logging.Setup(os.Stderr, level, res.Config.LogFormat)
			if err != nil {
				return err
			}

			return daemon.Run(cmd.Context(), daemon.Options{
				ConfigPath: path,
				SocketPath: opts.socketPath,
				Logger:     logger,
			})
		},
	}
}

func resolveConfigPath(path string) (string, error) {
	if path != "" {
		return path, nil
	}
	return config.DefaultConfigPath()
}
