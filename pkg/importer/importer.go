// Package importer performs the follow-up edit of an accepted completion: it
// adds the component's import statement to the host file and registers the
// imported symbol in the host decorator's imports array.
package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gnana997/ngtags/pkg/component"
	"github.com/gnana997/ngtags/pkg/parser"
	"github.com/gnana997/ngtags/pkg/util"
)

// ErrNoHost is returned when the active file is a template that no local
// component references.
var ErrNoHost = errors.New("no host component")

// HostResolver finds the local component owning a file. *indexer.Registry
// satisfies it.
type HostResolver interface {
	HostFor(activeFile string) (*component.Descriptor, bool)
}

// Method names the strategy that updated the imports array.
type Method string

const (
	MethodNone  Method = ""
	MethodAST   Method = "ast"
	MethodRegex Method = "regex"
)

// Edit summarizes the change made to the destination file.
type Edit struct {
	// File is the absolute path of the edited file.
	File string `json:"file"`

	// Statement is the rendered import statement.
	Statement string `json:"statement"`

	// ImportAdded is true when the statement was prepended.
	ImportAdded bool `json:"import_added"`

	// ArrayUpdated is true when the symbol was added to the imports array.
	ArrayUpdated bool `json:"array_updated"`

	Method Method `json:"method,omitempty"`
}

// Changed reports whether the file was rewritten.
func (e *Edit) Changed() bool {
	return e.ImportAdded || e.ArrayUpdated
}

// Importer edits host files. The read-modify-write is not guarded against
// concurrent writers.
type Importer struct {
	root    string
	hosts   HostResolver
	parsers *parser.Manager
	logger  *slog.Logger
}

// New creates an Importer for the workspace at root. parsers may be nil, in
// which case only the regex strategy is used.
func New(root string, hosts HostResolver, parsers *parser.Manager, logger *slog.Logger) *Importer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Importer{root: root, hosts: hosts, parsers: parsers, logger: logger}
}

// Destination returns the file that receives the import when the user is
// editing activeFile, together with the host component (nil when the active
// TypeScript file is not a registered component).
//
// For a registered host the destination is the host's import path: the
// component file itself when standalone, otherwise its owning module.
func (im *Importer) Destination(activeFile string) (string, *component.Descriptor, error) {
	activeFile = filepath.Clean(activeFile)

	if host, ok := im.hosts.HostFor(activeFile); ok && host.ImportPath != "" {
		return filepath.Join(im.root, filepath.FromSlash(host.ImportPath)), host, nil
	}
	if strings.EqualFold(filepath.Ext(activeFile), ".html") {
		return "", nil, fmt.Errorf("%w for template %s", ErrNoHost, activeFile)
	}
	return activeFile, nil, nil
}

// Import adds d to the host of activeFile and writes the result back.
func (im *Importer) Import(ctx context.Context, d *component.Descriptor, activeFile string) (*Edit, error) {
	dest, host, err := im.Destination(activeFile)
	if err != nil {
		return nil, err
	}

	// A component declared in (or through) the destination itself, e.g. two
	// components owned by the same NgModule, is already in scope.
	if im.declaredIn(d, dest) {
		im.logger.Debug("component declared in destination", "file", dest, "symbol", d.ImportName)
		return &Edit{File: dest}, nil
	}

	content, err := util.ReadFile(dest)
	if err != nil {
		return nil, fmt.Errorf("failed to read destination: %w", err)
	}

	targetClass := ""
	if host != nil {
		targetClass = host.ImportName
	}

	edit := &Edit{File: dest, Statement: d.ImportStatement(dest, im.root)}
	updated := im.apply(string(content), dest, d.ImportName, targetClass, edit)

	if !edit.Changed() {
		im.logger.Debug("import already present", "file", dest, "symbol", d.ImportName)
		return edit, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	info, err := os.Stat(dest)
	if err != nil {
		return nil, fmt.Errorf("failed to stat destination: %w", err)
	}
	if err := os.WriteFile(dest, []byte(updated), info.Mode().Perm()); err != nil {
		return nil, fmt.Errorf("failed to write destination: %w", err)
	}

	im.logger.Info("imported component",
		"file", dest,
		"symbol", d.ImportName,
		"import_added", edit.ImportAdded,
		"array_updated", edit.ArrayUpdated,
		"method", string(edit.Method))
	return edit, nil
}

func (im *Importer) declaredIn(d *component.Descriptor, dest string) bool {
	if !d.IsLocal() || d.ImportPath == "" {
		return false
	}
	return filepath.Join(im.root, filepath.FromSlash(d.ImportPath)) == filepath.Clean(dest)
}

// apply returns content with the array update and the import statement
// applied, recording what changed in edit.
func (im *Importer) apply(content, dest, importName, targetClass string, edit *Edit) string {
	var (
		out     string
		changed bool
		ok      bool
	)
	method := MethodAST
	if im.parsers != nil {
		out, changed, ok = im.updateWithAST(content, dest, importName, targetClass)
	}
	if !ok {
		method = MethodRegex
		out, changed = updateWithRegex(content, importName)
	}
	if changed {
		edit.ArrayUpdated = true
		edit.Method = method
	}

	if !strings.Contains(content, edit.Statement) {
		out = edit.Statement + "\n" + out
		edit.ImportAdded = true
	}
	return out
}

func (im *Importer) updateWithAST(content, dest, importName, targetClass string) (string, bool, bool) {
	lang := parser.DetectLanguage(dest)
	if lang == parser.LanguageUnknown {
		return "", false, false
	}

	src := []byte(content)
	tree, err := im.parsers.Parse(src, lang)
	if err != nil {
		im.logger.Debug("parse failed, using regex", "file", dest, "error", err)
		return "", false, false
	}
	defer tree.Close()

	ins, ok := planInsertion(tree.RootNode(), src, importName, targetClass)
	if !ok {
		im.logger.Debug("no decorator object found, using regex", "file", dest)
		return "", false, false
	}
	if ins == nil {
		return content, false, true
	}
	return content[:ins.offset] + ins.text + content[ins.offset:], true, true
}
