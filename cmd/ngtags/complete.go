package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/gnana997/ngtags/pkg/completion"
	"github.com/gnana997/ngtags/pkg/util"
)

func newCompleteCommand() *cobra.Command {
	var (
		file      string
		line      int
		character int
		language  string
		asJSON    bool
	)

	cmd := &cobra.Command{
		Use:   "complete",
		Short: "List tag completions at a position in a template or component file",
		Example: `  ngtags complete --file src/app/home/home.component.html --line 12 --character 5
  ngtags complete --file src/app/home/home.component.ts --line 4 --character 16 --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := appFrom(cmd)
			if !filepath.IsAbs(file) {
				file = filepath.Join(a.root, file)
			}
			text, err := util.ReadFile(file)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", file, err)
			}

			svc, err := a.loadService(cmd.Context())
			if err != nil {
				return err
			}
			defer svc.Close()

			provider := completion.NewProvider(svc.Registry(), a.logger)
			items := provider.Complete(
				completion.Document{Path: file, LanguageID: language, Text: string(text)},
				completion.Position{Line: line, Character: character},
			)

			out := cmd.OutOrStdout()
			if asJSON {
				if items == nil {
					items = []completion.Item{}
				}
				return writeJSON(out, items)
			}
			for _, item := range items {
				_, _ = fmt.Fprintln(out, item.Label)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "Document path (absolute or relative to the root)")
	cmd.Flags().IntVar(&line, "line", 0, "Zero-based cursor line")
	cmd.Flags().IntVar(&character, "character", 0, "Zero-based cursor character")
	cmd.Flags().StringVar(&language, "language", "", "Document language (html|typescript); inferred from --file when empty")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print completion items as JSON")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
