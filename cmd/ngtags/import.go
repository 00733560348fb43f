package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/gnana997/ngtags/pkg/importer"
	"github.com/gnana997/ngtags/pkg/parser"
)

func newImportCommand() *cobra.Command {
	var (
		into   string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "import <selector>",
		Short: "Import a component into the host of a template or component file",
		Long: `Import adds the import statement for the component with the given selector
and registers it in the imports array of the host: the standalone component
owning --into, or the NgModule declaring it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			if !filepath.IsAbs(into) {
				into = filepath.Join(a.root, into)
			}

			svc, err := a.loadService(cmd.Context())
			if err != nil {
				return err
			}
			defer svc.Close()

			d, ok := svc.Registry().BySelector(args[0])
			if !ok {
				return fmt.Errorf("component not found: %s", args[0])
			}

			parsers := parser.NewManager(a.logger)
			defer parsers.Close()

			edit, err := importer.New(a.root, svc.Registry(), parsers, a.logger).Import(cmd.Context(), d, into)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, edit)
			}
			if !edit.Changed() {
				_, _ = fmt.Fprintf(out, "%s already imported in %s\n", d.ImportName, edit.File)
				return nil
			}
			_, _ = fmt.Fprintf(out, "updated %s\n", edit.File)
			if edit.ImportAdded {
				_, _ = fmt.Fprintf(out, "  + %s\n", edit.Statement)
			}
			if edit.ArrayUpdated {
				_, _ = fmt.Fprintf(out, "  + imports: %s (%s)\n", d.ImportName, edit.Method)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&into, "into", "", "File being edited (.html template or .ts component)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the edit as JSON")
	_ = cmd.MarkFlagRequired("into")
	return cmd
}
