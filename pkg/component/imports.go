package component

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"
)

// ImportStatement renders the import line that brings the descriptor's
// ImportName into destFile. destFile may be absolute or workspace-relative.
func (d *Descriptor) ImportStatement(destFile, workspaceRoot string) string {
	return fmt.Sprintf("import { %s } from \"%s\";", d.ImportName, d.ImportSpecifier(destFile, workspaceRoot))
}

// ImportSpecifier returns the module specifier used by ImportStatement.
func (d *Descriptor) ImportSpecifier(destFile, workspaceRoot string) string {
	if d.Origin == OriginPackage {
		return strings.ReplaceAll(d.ImportPath, `\`, "/")
	}

	dest := destFile
	if workspaceRoot != "" && filepath.IsAbs(destFile) {
		if rel, err := filepath.Rel(workspaceRoot, destFile); err == nil {
			dest = rel
		}
	}
	return RelativeImportPath(d.ImportPath, dest)
}

// RelativeImportPath computes the specifier that reaches src from the file
// dest. Both are workspace-relative and may use either separator.
//
// The longest common segment prefix is dropped from both paths, one ".." is
// emitted for every remaining dest segment after the first, and the remaining
// src segments are appended. Specifiers with no ascent are prefixed with "./".
// A TypeScript or JavaScript file extension on src is stripped.
func RelativeImportPath(src, dest string) string {
	srcParts := splitSegments(src)
	destParts := splitSegments(dest)

	common := 0
	for common < len(srcParts) && common < len(destParts) && srcParts[common] == destParts[common] {
		common++
	}
	srcParts = srcParts[common:]
	destParts = destParts[common:]

	parts := make([]string, 0, len(srcParts)+len(destParts))
	for i := 1; i < len(destParts); i++ {
		parts = append(parts, "..")
	}
	parts = append(parts, srcParts...)

	spec := strings.Join(parts, "/")
	if ext := path.Ext(spec); sourceExtensions[ext] {
		spec = strings.TrimSuffix(spec, ext)
	}

	if len(parts) == 0 || parts[0] != ".." {
		spec = "./" + spec
	}
	return spec
}

var sourceExtensions = map[string]bool{
	".ts":  true,
	".tsx": true,
	".mts": true,
	".js":  true,
	".mjs": true,
}

func splitSegments(p string) []string {
	p = strings.ReplaceAll(p, `\`, "/")
	raw := strings.Split(p, "/")
	out := make([]string, 0, len(raw))
	for _, s := range raw {
		if s != "" && s != "." {
			out = append(out, s)
		}
	}
	return out
}
