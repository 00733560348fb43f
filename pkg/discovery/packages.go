package discovery

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// declarationGlob selects compiled type declaration files inside a package.
const declarationGlob = "**/*.d.ts"

// PackageFile is a compiled declaration file of a configured UI package.
type PackageFile struct {
	// Path is the absolute file path.
	Path string

	// ModulePath is the file's directory relative to node_modules, with forward
	// slashes (e.g. "@acme/ui/button"). It is the import specifier for the
	// components declared in the file.
	ModulePath string
}

// DiscoverPackages resolves each entry of globs against nodeModules and returns
// every .d.ts file below the matched package directories, sorted by path.
//
// Entries are doublestar patterns relative to nodeModules, so both "primeng" and
// "@acme/*" are valid. A missing node_modules directory or an entry that matches
// nothing is skipped silently; an invalid pattern is an error.
func DiscoverPackages(nodeModules string, globs []string) ([]PackageFile, error) {
	for _, g := range globs {
		if !doublestar.ValidatePattern(g) {
			return nil, fmt.Errorf("invalid package pattern: %s", g)
		}
	}

	files := make([]PackageFile, 0)

	info, err := os.Stat(nodeModules)
	if err != nil || !info.IsDir() {
		return files, nil
	}

	absModules, err := filepath.Abs(nodeModules)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve node_modules path: %w", err)
	}
	fsys := os.DirFS(absModules)

	seen := make(map[string]struct{})
	for _, g := range globs {
		dirs, err := doublestar.Glob(fsys, path.Clean(g))
		if err != nil {
			return nil, fmt.Errorf("failed to expand package pattern %s: %w", g, err)
		}

		for _, dir := range dirs {
			st, err := fs.Stat(fsys, dir)
			if err != nil || !st.IsDir() {
				continue
			}

			sub, err := fs.Sub(fsys, dir)
			if err != nil {
				continue
			}
			decls, err := doublestar.Glob(sub, declarationGlob, doublestar.WithFilesOnly())
			if err != nil {
				continue
			}

			for _, rel := range decls {
				modRel := path.Join(dir, rel)
				if _, dup := seen[modRel]; dup {
					continue
				}
				seen[modRel] = struct{}{}

				files = append(files, PackageFile{
					Path:       filepath.Join(absModules, filepath.FromSlash(modRel)),
					ModulePath: path.Dir(modRel),
				})
			}
		}
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Path < files[j].Path
	})

	return files, nil
}
