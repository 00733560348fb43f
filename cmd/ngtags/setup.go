package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

// serverKey is the entry name used in MCP client configs.
const serverKey = "ngtags"

// clientConfig is a project-level MCP client configuration file.
type clientConfig struct {
	Name string

	// Marker is a directory whose presence shows the client is used in the
	// workspace. Empty means the file is always offered.
	Marker string

	// Path is relative to the workspace root.
	Path string

	// ServersKey is the top-level object holding server entries.
	ServersKey string

	Extra map[string]string
}

var clientConfigs = []clientConfig{
	{Name: "Project (.mcp.json)", Path: ".mcp.json", ServersKey: "mcpServers"},
	{
		Name: "VS Code", Marker: ".vscode", Path: filepath.Join(".vscode", "mcp.json"),
		ServersKey: "servers", Extra: map[string]string{"type": "stdio"},
	},
	{Name: "Cursor", Marker: ".cursor", Path: filepath.Join(".cursor", "mcp.json"), ServersKey: "mcpServers"},
}

// setupTarget is a client config found in the workspace.
type setupTarget struct {
	clientConfig
	File       string
	Configured bool
}

func newSetupCommand() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Register `ngtags serve` with the MCP clients used in the workspace",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSetup(cmd.InOrStdin(), cmd.OutOrStdout(), appFrom(cmd).root, yes)
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Configure every detected client without asking")
	return cmd
}

// detectTargets lists the client configs that apply to root.
func detectTargets(root string) []setupTarget {
	var targets []setupTarget
	for _, c := range clientConfigs {
		if c.Marker != "" {
			if info, err := os.Stat(filepath.Join(root, c.Marker)); err != nil || !info.IsDir() {
				continue
			}
		}
		file := filepath.Join(root, c.Path)
		targets = append(targets, setupTarget{
			clientConfig: c,
			File:         file,
			Configured:   hasServerEntry(file, c.ServersKey),
		})
	}
	return targets
}

func hasServerEntry(file, serversKey string) bool {
	data, err := os.ReadFile(file)
	if err != nil {
		return false
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return false
	}
	servers, ok := doc[serversKey].(map[string]any)
	if !ok {
		return false
	}
	_, exists := servers[serverKey]
	return exists
}

// serverEntry is the MCP server definition written for root.
func serverEntry(root string, extra map[string]string) map[string]any {
	entry := map[string]any{
		"command": "ngtags",
		"args":    []any{"serve", "--root", root},
	}
	for k, v := range extra {
		entry[k] = v
	}
	return entry
}

// mergeServerEntry adds entry under serversKey to the JSON document existing
// (which may be empty). It returns nil when the document already has an
// ngtags entry.
func mergeServerEntry(existing []byte, serversKey string, entry map[string]any) ([]byte, error) {
	doc := make(map[string]any)
	if len(strings.TrimSpace(string(existing))) > 0 {
		if err := json.Unmarshal(existing, &doc); err != nil {
			return nil, fmt.Errorf("invalid JSON: %w", err)
		}
	}

	servers, ok := doc[serversKey].(map[string]any)
	if !ok {
		servers = make(map[string]any)
	}
	if _, exists := servers[serverKey]; exists {
		return nil, nil
	}
	servers[serverKey] = entry
	doc[serversKey] = servers

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(out, '\n'), nil
}

func writeServerEntry(t setupTarget, root string) error {
	if err := os.MkdirAll(filepath.Dir(t.File), 0755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	existing, err := os.ReadFile(t.File)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	merged, err := mergeServerEntry(existing, t.ServersKey, serverEntry(root, t.Extra))
	if err != nil || merged == nil {
		return err
	}
	return os.WriteFile(t.File, merged, 0644)
}

// confirm asks a yes/no question; an empty answer or EOF means yes.
func confirm(r *bufio.Scanner, w io.Writer, question string) bool {
	_, _ = fmt.Fprintf(w, "%s [Y/n] ", question)
	if !r.Scan() {
		return true
	}
	switch strings.ToLower(strings.TrimSpace(r.Text())) {
	case "", "y", "yes":
		return true
	}
	return false
}

func runSetup(r io.Reader, w io.Writer, root string, yes bool) error {
	targets := detectTargets(root)
	in := bufio.NewScanner(r)

	failed := 0
	for _, t := range targets {
		rel, _ := filepath.Rel(root, t.File)
		if t.Configured {
			_, _ = fmt.Fprintf(w, "  * %s: already configured (%s)\n", t.Name, rel)
			continue
		}
		if !yes && !confirm(in, w, fmt.Sprintf("%s: add ngtags to %s?", t.Name, rel)) {
			_, _ = fmt.Fprintf(w, "  - %s: skipped\n", t.Name)
			continue
		}
		if err := writeServerEntry(t, root); err != nil {
			_, _ = fmt.Fprintf(w, "  ! %s: %v\n", t.Name, err)
			failed++
			continue
		}
		_, _ = fmt.Fprintf(w, "  + %s: configured (%s)\n", t.Name, rel)
	}

	if failed > 0 {
		return fmt.Errorf("%d client config(s) could not be updated", failed)
	}
	return nil
}
