package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/1broseidon/snaptile/internal/config"
	"github.com/1broseidon/snaptile/internal/logging"
	"github.com/1broseidon/snaptile/internal/tui"
)

func newConfigCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and validate the configuration",
	}
	cmd.AddCommand(
		newConfigValidateCmd(opts),
		newConfigPrintCmd(opts),
		newConfigPathCmd(opts),
		newConfigExplainCmd(opts),
		newConfigEditCmd(opts),
	)
	return cmd
}

func loadConfig(opts *globalOptions) (*config.LoadResult, error) {
	if opts.configPath == "" {
		return config.LoadWithSources()
	}
	return config.LoadFromPath(opts.configPath)
}

func newConfigValidateCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the config file and its includes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := loadConfig(opts); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "config: ok")
			return nil
		},
	}
}

func newConfigPrintCmd(opts *globalOptions) *cobra.Command {
	var defaults bool
	cmd := &cobra.Command{
		Use:   "print",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.DefaultConfig()
			if !defaults {
				res, err := loadConfig(opts)
				if err != nil {
					return err
				}
				cfg = res.Config
			}
			data, err := yaml.Marshal(cfg)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
	cmd.Flags().BoolVar(&defaults, "defaults", false, "print built-in defaults (no files)")
	return cmd
}

func newConfigPathCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := resolveConfigPath(opts.configPath)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
}

func newConfigExplainCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "explain <key>",
		Short: "Show a config value and where it was set",
		Example: `  snaptile config explain snap_left_hotkey
  snaptile config explain screen_padding.top
  snaptile config explain place_hotkeys.center`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := loadConfig(opts)
			if err != nil {
				return err
			}
			value, src, err := config.Explain(res, args[0])
			if err != nil {
				return err
			}
			out, err := yaml.Marshal(value)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "path: %s\n", args[0])
			fmt.Fprintf(w, "source: %s\n", formatSource(src))
			fmt.Fprintf(w, "value:\n%s", out)
			return nil
		},
	}
}

func newConfigEditCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "edit",
		Short: "Edit the configuration interactively",
		Long: `Edit the configuration in an interactive form, review the diff and save.
The file is rewritten with the effective values; include directives are not preserved.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := resolveConfigPath(opts.configPath)
			if err != nil {
				return err
			}
			res, err := config.LoadFromPath(path)
			if err != nil {
				return err
			}
			if len(res.Files) > 1 {
				logging.FromContext(cmd.Context()).Warn("config uses includes; saving flattens them into one file", "files", len(res.Files))
			}
			return tui.Edit(cmd.OutOrStdout(), res.Config, path, opts.client().Reload)
		},
	}
}

func formatSource(src config.Source) string {
	switch src.Kind {
	case config.SourceFile:
		if src.File == "" {
			return "file"
		}
		if src.Line > 0 {
			return fmt.Sprintf("file:%s:%d:%d", src.File, src.Line, src.Column)
		}
		return "file:" + src.File
	case config.SourceDefault:
		if src.Name != "" {
			return "default:" + src.Name
		}
		return "default"
	default:
		return string(src.Kind)
	}
}
