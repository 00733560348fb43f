package discovery

import "path"

// ModuleMap maps a workspace-relative directory ("." for the root) to the module
// file declared in it. When a directory holds several module files the last one
// in lexical order wins.
type ModuleMap map[string]string

// NearestModule walks dir and its ancestors and returns the first module file
// found. The walk stops at the workspace root ("."), or at the filesystem root
// for absolute inputs. It returns "" when no ancestor declares a module.
func NearestModule(dir string, modules ModuleMap) string {
	if dir == "" {
		dir = "."
	}
	for {
		if m, ok := modules[dir]; ok {
			return m
		}
		if dir == "." {
			return ""
		}
		parent := path.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}
