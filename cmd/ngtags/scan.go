package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/gnana997/ngtags/pkg/component"
	"github.com/gnana997/ngtags/pkg/indexer"
)

// scanReport is the --json document of `ngtags scan`.
type scanReport struct {
	Root     string                  `json:"root"`
	Packages []*component.Descriptor `json:"packages"`
	Local    []*component.Descriptor `json:"local"`
	Cache    indexer.CacheStats      `json:"cache"`
}

func newScanCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Index the workspace and print the components found",
		Long: `Scan discovers every *.component.ts file of the workspace and the compiled
declarations of the configured packages, and prints the resulting registry:
packages first, then workspace components.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := appFrom(cmd)
			svc, err := a.loadService(cmd.Context())
			if err != nil {
				return err
			}
			defer svc.Close()

			registry := svc.Registry()
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), scanReport{
					Root:     a.root,
					Packages: nonNil(registry.Packages()),
					Local:    nonNil(registry.Local()),
					Cache:    svc.CacheStats(),
				})
			}

			out := cmd.OutOrStdout()
			printCollection(out, "Packages", registry.Packages())
			_, _ = fmt.Fprintln(out)
			printCollection(out, "Local", registry.Local())
			_, _ = fmt.Fprintf(out, "\n%s\n", svc)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the registry as JSON")
	return cmd
}

func printCollection(w io.Writer, title string, descriptors []*component.Descriptor) {
	if len(descriptors) == 0 {
		_, _ = fmt.Fprintf(w, "%s  (none)\n", title)
		return
	}
	_, _ = fmt.Fprintf(w, "%s (%d)\n", title, len(descriptors))

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, d := range descriptors {
		_, _ = fmt.Fprintf(tw, "  %s\t%s\t%s\n", d.Selector(), d.ImportName, d.ImportPath)
	}
	_ = tw.Flush()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func nonNil(descriptors []*component.Descriptor) []*component.Descriptor {
	if descriptors == nil {
		return []*component.Descriptor{}
	}
	return descriptors
}
