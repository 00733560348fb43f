// Package component defines the component descriptor shared by the indexer,
// completion provider and importer, together with the builders that derive a
// descriptor from either source dialect and the import statement generator.
package component

import (
	"regexp"
)

// Origin tells where a descriptor was discovered.
type Origin string

const (
	// OriginLocal marks components declared in workspace sources.
	OriginLocal Origin = "local"
	// OriginPackage marks components read from compiled package declarations.
	OriginPackage Origin = "package"
)

// Descriptor is the normalized view of one Angular component declaration.
//
// **Immutability:** descriptors are built once per scan and published to the
// registry as part of an immutable snapshot. Consumers must not modify them.
type Descriptor struct {
	// Name is the component class name.
	Name string `json:"name" yaml:"name"`

	// Selectors are the candidate selectors in declaration order. Only kebab-case
	// candidates are usable as tags (see Selector).
	Selectors []string `json:"selectors" yaml:"selectors"`

	ExportAs           []string `json:"export_as,omitempty" yaml:"export_as,omitempty"`
	Inputs             Bindings `json:"inputs,omitempty" yaml:"inputs,omitempty"`
	Outputs            Bindings `json:"outputs,omitempty" yaml:"outputs,omitempty"`
	QueryFields        []string `json:"query_fields,omitempty" yaml:"query_fields,omitempty"`
	NgContentSelectors []string `json:"ng_content_selectors,omitempty" yaml:"ng_content_selectors,omitempty"`

	IsStandalone bool `json:"standalone" yaml:"standalone"`
	IsSignal     bool `json:"signal" yaml:"signal"`

	// HostDirectives is kept verbatim; nothing downstream interprets it.
	HostDirectives string `json:"host_directives,omitempty" yaml:"host_directives,omitempty"`

	// ImportPath is package-relative for package components and
	// workspace-relative for local ones. For non-standalone local components it
	// is the owning module file.
	ImportPath string `json:"import_path" yaml:"import_path"`

	// ImportName is the symbol to import: the class itself when standalone,
	// otherwise the owning module.
	ImportName string `json:"import_name" yaml:"import_name"`

	// SourceFile is the absolute path of the declaring file.
	SourceFile string `json:"source_file" yaml:"source_file"`

	// TemplateURL is the absolute path of the external template, if any.
	TemplateURL string `json:"template_url,omitempty" yaml:"template_url,omitempty"`

	Origin Origin `json:"origin" yaml:"origin"`
}

var kebabCase = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// IsKebabCase reports whether s is one or more lowercase alphanumeric segments
// joined by single hyphens.
func IsKebabCase(s string) bool {
	return kebabCase.MatchString(s)
}

// Selector returns the first kebab-case selector candidate, or "" when the
// component cannot be used as a tag.
func (d *Descriptor) Selector() string {
	for _, s := range d.Selectors {
		if IsKebabCase(s) {
			return s
		}
	}
	return ""
}

// IsLocal reports whether the descriptor comes from workspace sources.
func (d *Descriptor) IsLocal() bool {
	return d.Origin == OriginLocal
}
