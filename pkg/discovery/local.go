// Package discovery finds the files that may declare Angular components: the
// *.component.ts / *.module.ts sources of the workspace and the compiled .d.ts
// declaration files of configured UI packages under node_modules.
package discovery

import (
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	ignore "github.com/sabhiram/go-gitignore"
)

// ModuleSuffix marks files that declare an NgModule.
const ModuleSuffix = ".module.ts"

// LocalConfig controls workspace discovery.
type LocalConfig struct {
	// Include globs, relative to the workspace root.
	Include []string

	// Exclude globs. A matching directory is pruned from the walk.
	Exclude []string

	// RespectGitignore skips files matched by the root .gitignore.
	RespectGitignore bool
}

// DefaultLocalConfig returns the include/exclude set used for Angular workspaces.
func DefaultLocalConfig() LocalConfig {
	return LocalConfig{
		Include: []string{
			"**/*.component.ts",
			"**/*" + ModuleSuffix,
		},
		Exclude: []string{
			"node_modules/**",
			"**/node_modules/**",
			"dist/**",
			"out/**",
			"build/**",
			".git/**",
		},
		RespectGitignore: true,
	}
}

// LocalFile is a workspace source file that may contain @Component declarations.
type LocalFile struct {
	// Path is the absolute file path.
	Path string

	// RelPath is the workspace-relative path with forward slashes.
	RelPath string

	// ModulePath is the workspace-relative path of the nearest enclosing module
	// file, or "" when the component is not owned by any module.
	ModulePath string
}

// LocalFiles is the result of one workspace discovery pass.
type LocalFiles struct {
	Root       string
	Components []LocalFile
	Modules    ModuleMap
}

// DiscoverLocal walks root and returns every component source file, each linked
// to its owning module. The module map is rebuilt from scratch on every call.
func DiscoverLocal(root string, cfg LocalConfig) (*LocalFiles, error) {
	if err := validatePatterns(cfg.Include, "include"); err != nil {
		return nil, err
	}
	if err := validatePatterns(cfg.Exclude, "exclude"); err != nil {
		return nil, err
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root path: %w", err)
	}

	var gi *ignore.GitIgnore
	if cfg.RespectGitignore {
		gi = loadGitignore(absRoot)
	}

	var rels []string
	err = filepath.WalkDir(absRoot, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // keep walking
		}

		if p == absRoot {
			return nil
		}

		relPath, err := filepath.Rel(absRoot, p)
		if err != nil {
			return nil
		}
		relPath = filepath.ToSlash(relPath)

		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") || matchesAny(cfg.Exclude, relPath) {
				return filepath.SkipDir
			}
			return nil
		}

		if matchesAny(cfg.Exclude, relPath) {
			return nil
		}
		if len(cfg.Include) > 0 && !matchesAny(cfg.Include, relPath) {
			return nil
		}
		if gi != nil && gi.MatchesPath(relPath) {
			return nil
		}

		rels = append(rels, relPath)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(rels)

	modules := make(ModuleMap)
	for _, rel := range rels {
		if strings.HasSuffix(rel, ModuleSuffix) {
			modules[path.Dir(rel)] = rel
		}
	}

	result := &LocalFiles{
		Root:       absRoot,
		Components: make([]LocalFile, 0, len(rels)-len(modules)),
		Modules:    modules,
	}
	for _, rel := range rels {
		if strings.HasSuffix(rel, ModuleSuffix) {
			continue
		}
		result.Components = append(result.Components, LocalFile{
			Path:       filepath.Join(absRoot, filepath.FromSlash(rel)),
			RelPath:    rel,
			ModulePath: NearestModule(path.Dir(rel), modules),
		})
	}

	return result, nil
}

func validatePatterns(patterns []string, kind string) error {
	for _, pattern := range patterns {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("invalid %s pattern: %s", kind, pattern)
		}
	}
	return nil
}

func matchesAny(patterns []string, relPath string) bool {
	for _, pattern := range patterns {
		if m, _ := doublestar.Match(pattern, relPath); m {
			return true
		}
	}
	return false
}

func loadGitignore(root string) *ignore.GitIgnore {
	gi, err := ignore.CompileIgnoreFile(filepath.Join(root, ".gitignore"))
	if err != nil {
		return nil
	}
	return gi
}
