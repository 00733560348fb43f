package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gnana997/ngtags/pkg/importer"
	"github.com/gnana997/ngtags/pkg/indexer"
	mcpserver "github.com/gnana997/ngtags/pkg/mcp"
	"github.com/gnana997/ngtags/pkg/mcplog"
	"github.com/gnana997/ngtags/pkg/parser"
)

func newServeCommand() *cobra.Command {
	var noWatch bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the registry, completion and import tools over MCP (stdio)",
		Long: `Serve indexes the workspace, then keeps the registry current: saving or
creating a *.component.ts or *.module.ts file schedules a local rescan, and
changing the package list in .ngtags.yaml schedules a package rescan. Rescans
are debounced by debounce_ms.

Logs go to stderr; stdout carries the MCP protocol.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := appFrom(cmd)
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			svc, err := a.loadService(ctx)
			if err != nil {
				return err
			}
			defer svc.Close()
			a.logger.Info("registry ready", "root", a.root, "components", svc.String())

			if !noWatch {
				watcher, err := indexer.NewFileWatcher(a.logger)
				if err != nil {
					return err
				}
				watcher.OnEvent(svc.HandleFileEvent)
				if err := watcher.Start(a.root); err != nil {
					return fmt.Errorf("failed to watch workspace: %w", err)
				}
				defer watcher.Stop()

				if err := a.store.Watch(ctx, svc.HandleConfigChange); err != nil {
					return err
				}
				defer a.store.Close()
			}

			calls, err := mcplog.Open(a.store.Settings().Log.File)
			if err != nil {
				return err
			}
			defer calls.Close()

			parsers := parser.NewManager(a.logger)
			defer parsers.Close()

			imp := importer.New(a.root, svc.Registry(), parsers, a.logger)
			srv := mcpserver.NewServer(Version, svc, imp, calls, a.logger)

			errCh := make(chan error, 1)
			go func() { errCh <- srv.ServeStdio() }()

			select {
			case err := <-errCh:
				if err != nil {
					return fmt.Errorf("server error: %w", err)
				}
				return nil
			case <-ctx.Done():
				a.logger.Info("shutting down")
				return nil
			}
		},
	}

	cmd.Flags().BoolVar(&noWatch, "no-watch", false, "Do not watch the workspace or the config file")
	cmd.Flags().Int("debounce", 0, "Quiet window in milliseconds before a rescan runs")
	cmd.Flags().String("log-file", "", "Append MCP tool calls as JSON lines to this file")
	return cmd
}
