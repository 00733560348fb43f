package main

import (
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/gnana997/ngtags/pkg/component"
)

func newInspectCommand() *cobra.Command {
	var asJSON, asYAML bool

	cmd := &cobra.Command{
		Use:   "inspect <selector>",
		Short: "Show a component's bindings, content slots and import",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if asJSON && asYAML {
				return fmt.Errorf("--json and --yaml are mutually exclusive")
			}

			a := appFrom(cmd)
			svc, err := a.loadService(cmd.Context())
			if err != nil {
				return err
			}
			defer svc.Close()

			d, ok := svc.Registry().BySelector(args[0])
			if !ok {
				return fmt.Errorf("component not found: %s", args[0])
			}

			out := cmd.OutOrStdout()
			switch {
			case asJSON:
				return writeJSON(out, d)
			case asYAML:
				enc := yaml.NewEncoder(out)
				enc.SetIndent(2)
				if err := enc.Encode(d); err != nil {
					return err
				}
				return enc.Close()
			}
			printComponentHuman(out, d, a.root)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the descriptor as JSON")
	cmd.Flags().BoolVar(&asYAML, "yaml", false, "Print the descriptor as YAML")
	return cmd
}

// printComponentHuman prints a readable summary of d.
func printComponentHuman(w io.Writer, d *component.Descriptor, root string) {
	flags := []string{string(d.Origin)}
	if d.IsStandalone {
		flags = append(flags, "standalone")
	}
	if d.IsSignal {
		flags = append(flags, "signal")
	}
	_, _ = fmt.Fprintf(w, "%s  <%s>  [%s]\n", d.Name, d.Selector(), strings.Join(flags, ", "))

	if len(d.Selectors) > 1 {
		_, _ = fmt.Fprintf(w, "  selectors: %s\n", strings.Join(d.Selectors, ", "))
	}
	if len(d.ExportAs) > 0 {
		_, _ = fmt.Fprintf(w, "  exportAs: %s\n", strings.Join(d.ExportAs, ", "))
	}

	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, "Import")
	_, _ = fmt.Fprintf(w, "  %s\n", d.ImportStatement(filepath.Join(root, "index.ts"), root))

	_, _ = fmt.Fprintln(w)
	printBindings(w, "Inputs", d.Inputs)
	_, _ = fmt.Fprintln(w)
	printBindings(w, "Outputs", d.Outputs)

	if len(d.NgContentSelectors) > 0 {
		_, _ = fmt.Fprintln(w)
		_, _ = fmt.Fprintf(w, "Content slots  %s\n", strings.Join(d.NgContentSelectors, "  "))
	}
	if d.HostDirectives != "" {
		_, _ = fmt.Fprintln(w)
		_, _ = fmt.Fprintf(w, "Host directives  %s\n", d.HostDirectives)
	}

	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintf(w, "Source  %s\n", d.SourceFile)
	if d.TemplateURL != "" {
		_, _ = fmt.Fprintf(w, "Template  %s\n", d.TemplateURL)
	}
}

// printBindings renders an input/output table with aligned columns.
func printBindings(w io.Writer, title string, bindings component.Bindings) {
	if len(bindings) == 0 {
		_, _ = fmt.Fprintf(w, "%s  (none)\n", title)
		return
	}

	props := make([]string, 0, len(bindings))
	for p := range bindings {
		props = append(props, p)
	}
	sort.Strings(props)

	propW, nameW := len("PROPERTY"), len("BINDING")
	for _, p := range props {
		propW = max(propW, len(p))
		nameW = max(nameW, len(bindings[p].PublicName(p)))
	}

	_, _ = fmt.Fprintln(w, title)
	_, _ = fmt.Fprintf(w, "  %-*s  %-*s  %s\n", propW, "PROPERTY", nameW, "BINDING", "REQ")
	_, _ = fmt.Fprintf(w, "  %s\n", strings.Repeat("─", propW+nameW+7))
	for _, p := range props {
		req := "no"
		if spec, ok := bindings[p].(component.BindingSpec); ok && spec.Required {
			req = "yes"
		}
		_, _ = fmt.Fprintf(w, "  %-*s  %-*s  %s\n", propW, p, nameW, bindings[p].PublicName(p), req)
	}
}
