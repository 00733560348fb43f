package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/gnana997/ngtags/pkg/config"
	"github.com/gnana997/ngtags/pkg/discovery"
	"github.com/gnana997/ngtags/pkg/indexer"
	"github.com/gnana997/ngtags/pkg/util"
)

// Version is set at build time.
var Version = "0.1.0-dev"

// appKey stores the *app in the command context.
type appKey struct{}

// app is what PersistentPreRunE resolves for every subcommand.
type app struct {
	root   string
	store  *config.Store
	logger *slog.Logger
}

func appFrom(cmd *cobra.Command) *app {
	if a, ok := cmd.Context().Value(appKey{}).(*app); ok {
		return a
	}
	return &app{root: ".", logger: util.NewDiscardLogger()}
}

// NewRootCmd creates the ngtags command tree.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "ngtags",
		Short: "Angular component tag completion and auto-import",
		Long: `ngtags indexes the Angular components of a workspace and of its UI package
dependencies, completes their tags in templates and adds the matching import
when a tag is used.

Settings are read from .ngtags.yaml in the workspace root, NGTAGS_* environment
variables and flags, in increasing order of precedence.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "version" || cmd.Name() == "completion" {
				return nil
			}

			rootFlag, _ := cmd.Flags().GetString("root")
			root, err := filepath.Abs(rootFlag)
			if err != nil {
				return fmt.Errorf("invalid workspace root: %w", err)
			}
			if info, err := os.Stat(root); err != nil || !info.IsDir() {
				return fmt.Errorf("workspace root %s is not a directory", root)
			}

			store, err := config.Load(root, cmd.Flags(), util.NewDiscardLogger())
			if err != nil {
				return err
			}
			settings := store.Settings()
			logger := util.NewLogger(util.LoggerConfig{
				Level:  util.ParseLogLevel(settings.Log.Level),
				Format: util.LogFormat(settings.Log.Format),
				Output: cmd.ErrOrStderr(),
			})
			if path := store.Path(); path != "" {
				logger.Debug("using config file", "path", path)
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cmd.SetContext(context.WithValue(ctx, appKey{}, &app{root: root, store: store, logger: logger}))
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.String("root", ".", "Workspace root directory")
	flags.String("log-level", "", "Log level (debug|info|warn|error)")
	flags.String("log-format", "", "Log format (text|json)")
	flags.StringSlice("package", nil, "Package glob under node_modules to index (repeatable)")
	flags.String("node-modules", "", "Package directory, relative to the root")
	flags.StringSlice("exclude", nil, "Extra glob excluded from the local scan (repeatable)")

	_ = rootCmd.RegisterFlagCompletionFunc("log-level", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"debug", "info", "warn", "error"}, cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.RegisterFlagCompletionFunc("log-format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"text", "json"}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(newScanCommand())
	rootCmd.AddCommand(newInspectCommand())
	rootCmd.AddCommand(newCompleteCommand())
	rootCmd.AddCommand(newImportCommand())
	rootCmd.AddCommand(newServeCommand())
	rootCmd.AddCommand(newSetupCommand())
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}

// newService builds an indexer service from the resolved settings.
func (a *app) newService(reporter indexer.ProgressReporter) (*indexer.Service, error) {
	settings := a.store.Settings()

	local := discovery.DefaultLocalConfig()
	local.Exclude = append(local.Exclude, settings.Exclude...)

	return indexer.NewService(indexer.ServiceConfig{
		Scanner: indexer.ScannerConfig{
			Root:        a.root,
			Local:       local,
			NodeModules: settings.NodeModulesPath(a.root),
		},
		Packages:    settings.Packages,
		QuietWindow: settings.QuietWindow(),
		Reporter:    reporter,
	}, a.logger)
}

// loadService builds a service and runs the initial scan.
func (a *app) loadService(ctx context.Context) (*indexer.Service, error) {
	svc, err := a.newService(nil)
	if err != nil {
		return nil, err
	}
	if err := svc.Reload(ctx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("initial scan failed: %w", err)
	}
	return svc, nil
}
