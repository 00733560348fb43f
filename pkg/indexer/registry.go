package indexer

import (
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/gnana997/ngtags/pkg/component"
)

// snapshot is an immutable descriptor collection together with the trigger
// generation that produced it.
type snapshot struct {
	generation  uint64
	descriptors []*component.Descriptor
}

// Registry owns the local and package descriptor collections.
//
// Each collection is published as a whole through an atomic pointer, so a
// reader sees either the previous or the next collection and never a partial
// one. Writers go through Begin/Replace: Begin hands out a generation when a
// rescan is triggered and Replace discards results whose generation is older
// than the newest one already published, so the most recently triggered scan
// wins even when scans finish out of order.
type Registry struct {
	local    atomic.Pointer[snapshot]
	packages atomic.Pointer[snapshot]

	mu      sync.Mutex
	trigger atomic.Uint64
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	r := &Registry{}
	r.local.Store(&snapshot{})
	r.packages.Store(&snapshot{})
	return r
}

// Begin allocates the generation for a newly triggered scan. Generations are
// shared by both collections and strictly increasing.
func (r *Registry) Begin() uint64 {
	return r.trigger.Add(1)
}

// Replace publishes descriptors as collection c if generation is not older
// than the current one. It reports whether the collection was replaced.
func (r *Registry) Replace(c Collection, generation uint64, descriptors []*component.Descriptor) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	ptr := r.pointer(c)
	if generation < ptr.Load().generation {
		return false
	}

	owned := make([]*component.Descriptor, len(descriptors))
	copy(owned, descriptors)
	ptr.Store(&snapshot{generation: generation, descriptors: owned})
	return true
}

// Generation returns the generation of the published collection c.
func (r *Registry) Generation(c Collection) uint64 {
	return r.pointer(c).Load().generation
}

func (r *Registry) pointer(c Collection) *atomic.Pointer[snapshot] {
	if c == CollectionPackages {
		return &r.packages
	}
	return &r.local
}

// Local returns the workspace components. The slice must not be modified.
func (r *Registry) Local() []*component.Descriptor {
	return r.local.Load().descriptors
}

// Packages returns the package components. The slice must not be modified.
func (r *Registry) Packages() []*component.Descriptor {
	return r.packages.Load().descriptors
}

// All returns package components followed by local components.
func (r *Registry) All() []*component.Descriptor {
	pkgs, local := r.Packages(), r.Local()
	out := make([]*component.Descriptor, 0, len(pkgs)+len(local))
	out = append(out, pkgs...)
	return append(out, local...)
}

// Len returns the total number of registered components.
func (r *Registry) Len() int {
	return len(r.Packages()) + len(r.Local())
}

// BySelector returns the first component whose tag selector is selector.
// Local components shadow package components with the same selector.
func (r *Registry) BySelector(selector string) (*component.Descriptor, bool) {
	for _, set := range [][]*component.Descriptor{r.Local(), r.Packages()} {
		for _, d := range set {
			if d.Selector() == selector {
				return d, true
			}
		}
	}
	return nil, false
}

// Search returns the components whose class name, selectors or import path
// contain keyword, case-insensitively. An empty keyword matches everything.
func (r *Registry) Search(keyword string) []*component.Descriptor {
	all := r.All()
	keyword = strings.ToLower(strings.TrimSpace(keyword))
	if keyword == "" {
		return all
	}

	out := make([]*component.Descriptor, 0)
	for _, d := range all {
		if matchesKeyword(d, keyword) {
			out = append(out, d)
		}
	}
	return out
}

func matchesKeyword(d *component.Descriptor, keyword string) bool {
	if strings.Contains(strings.ToLower(d.Name), keyword) ||
		strings.Contains(strings.ToLower(d.ImportPath), keyword) {
		return true
	}
	for _, s := range d.Selectors {
		if strings.Contains(strings.ToLower(s), keyword) {
			return true
		}
	}
	return false
}

// HostFor returns the local component that owns activeFile: the component
// declared in it for a .ts file, or the component using it as templateUrl for
// a .html file.
func (r *Registry) HostFor(activeFile string) (*component.Descriptor, bool) {
	activeFile = filepath.Clean(activeFile)
	ext := strings.ToLower(filepath.Ext(activeFile))

	for _, d := range r.Local() {
		switch ext {
		case ".ts":
			if d.SourceFile == activeFile {
				return d, true
			}
		case ".html":
			if d.TemplateURL != "" && filepath.Clean(d.TemplateURL) == activeFile {
				return d, true
			}
		}
	}
	return nil, false
}
