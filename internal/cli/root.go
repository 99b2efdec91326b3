package cli

import (
	"context"
	"fmt"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/ByLCY/waffle/internal/config"
)

var (
	version = "dev"
	commit  string
	date    string
)

// SetVersion sets the values shown by --version; main injects them via ldflags.
func SetVersion(v, c, d string) {
	if v != "" {
		version = v
	}
	commit = c
	date = d
}

// Execute runs the waffle CLI.
func Execute(ctx context.Context) error {
	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	var (
		verbose    bool
		configPath string
	)

	root := &cobra.Command{
		Use:           "waffle",
		Short:         "waffle lays out and renders waffle charts",
		Long:          `waffle turns chart files (DSL or YAML) into waffle charts: grids of blocks, icons, markers or numbers, written as PDF, SVG or PNG.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := charmlog.InfoLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			logger := newLogger(cmd.ErrOrStderr(), level)

			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if cfg.Path != "" {
				logger.Debug("loaded config", "path", cfg.Path)
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			ctx = withConfig(withLogger(ctx, logger), cfg)
			cmd.SetContext(ctx)
			return nil
		},
	}

	root.SetVersionTemplate(fmt.Sprintf("waffle %s\ncommit: %s\nbuilt: %s\n", version, commit, date))
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&configPath, "config", "", "config file (default $"+config.EnvPath+" or $XDG_CONFIG_HOME/waffle/config.toml)")

	root.AddCommand(newRenderCmd())
	root.AddCommand(newLayoutCmd())
	root.AddCommand(newPalettesCmd())
	root.AddCommand(newIconsCmd())
	return root
}
