package component

import (
	"path"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/gnana997/ngtags/pkg/discovery"
	"github.com/gnana997/ngtags/pkg/textparse"
)

// compiledFieldCount is the arity of the ComponentDeclaration type parameters:
// name, selectors, exportAs, inputs, outputs, queries, ngContent, standalone,
// hostDirectives, isSignal. Older compilers omit trailing parameters.
const compiledFieldCount = 10

// never is the TypeScript bottom type used for absent declaration fields.
const never = "never"

// FromCompiledDeclaration builds a descriptor from the captured type-parameter
// payload of a ComponentDeclaration in a package .d.ts file.
func FromCompiledDeclaration(payload string, file discovery.PackageFile) *Descriptor {
	fields := padFields(textparse.CommaSplit(payload), compiledFieldCount)

	name := typeName(fields[0])
	standalone := textparse.ParseString(fields[7]) == "true"

	importName := name
	if !standalone {
		importName = name + "Module"
	}

	return &Descriptor{
		Name:               name,
		Selectors:          compiledSelectors(fields[1]),
		ExportAs:           listField(fields[2]),
		Inputs:             bindingsFromObject(textparse.ParseObject(fields[3], textparse.SemicolonsToCommas)),
		Outputs:            bindingsFromObject(textparse.ParseObject(fields[4], textparse.SemicolonsToCommas)),
		QueryFields:        listField(fields[5]),
		NgContentSelectors: listField(fields[6]),
		IsStandalone:       standalone,
		HostDirectives:     fields[8],
		IsSignal:           textparse.ParseString(fields[9]) == "true",
		ImportPath:         file.ModulePath,
		ImportName:         importName,
		SourceFile:         file.Path,
		Origin:             OriginPackage,
	}
}

// FromDecorator builds a descriptor from an @Component match: groups[0] is the
// metadata object text and groups[1] the class name. Unknown metadata keys are
// ignored and missing ones leave the corresponding field empty.
func FromDecorator(groups []string, file discovery.LocalFile) *Descriptor {
	groups = padFields(groups, 2)
	props := textparse.ParseObject(groups[0], nil)
	className := groups[1]

	standalone := props["standalone"].AsString() == "true"

	d := &Descriptor{
		Name:         className,
		Selectors:    splitSelectors(props["selector"].AsString()),
		ExportAs:     splitSelectors(props["exportAs"].AsString()),
		Inputs:       bindingsFromDecorator(props["inputs"]),
		Outputs:      bindingsFromDecorator(props["outputs"]),
		IsStandalone: standalone,
		SourceFile:   file.Path,
		Origin:       OriginLocal,
	}

	if tpl := props["templateUrl"].AsString(); tpl != "" {
		d.TemplateURL = filepath.Join(filepath.Dir(file.Path), filepath.FromSlash(tpl))
	}

	if standalone {
		d.ImportPath = file.RelPath
		d.ImportName = className
	} else {
		d.ImportPath = file.ModulePath
		d.ImportName = ModuleNameFromFile(file.ModulePath)
	}

	return d
}

// ModuleNameFromFile derives the NgModule class name from its file name:
// "src/widgets/foo-bar.module.ts" becomes "FooBarModule".
func ModuleNameFromFile(file string) string {
	if file == "" {
		return ""
	}

	base := path.Base(strings.ReplaceAll(file, `\`, "/"))
	base = strings.TrimSuffix(base, path.Ext(base))

	var b strings.Builder
	for _, part := range strings.FieldsFunc(base, func(r rune) bool { return r == '.' || r == '-' }) {
		r, size := utf8.DecodeRuneInString(part)
		b.WriteRune(unicode.ToUpper(r))
		b.WriteString(part[size:])
	}
	return b.String()
}

// typeName drops type arguments from a declared class: "Table<any>" is "Table".
func typeName(raw string) string {
	if i := strings.IndexByte(raw, '<'); i >= 0 {
		raw = raw[:i]
	}
	return strings.TrimSpace(raw)
}

// compiledSelectors reads the selector parameter, where never means the
// component has no selector.
func compiledSelectors(raw string) []string {
	if strings.TrimSpace(raw) == never {
		return nil
	}
	return splitSelectors(raw)
}

// splitSelectors splits a comma-separated selector list, removing every quote
// character and dropping empty candidates.
func splitSelectors(raw string) []string {
	out := make([]string, 0, 2)
	for _, s := range strings.Split(raw, ",") {
		s = strings.TrimSpace(strings.NewReplacer(`"`, "", `'`, "", "`", "").Replace(s))
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// listField reads a compiled list parameter: a tuple type, a single string
// literal, or never.
func listField(raw string) []string {
	raw = strings.TrimSpace(raw)
	switch {
	case raw == "" || raw == never:
		return nil
	case textparse.IsParsableArray(raw):
		return textparse.ParseArray(raw)
	default:
		return splitSelectors(raw)
	}
}

func padFields(parts []string, n int) []string {
	out := make([]string, n)
	for i := 0; i < n && i < len(parts); i++ {
		out[i] = strings.TrimSpace(parts[i])
	}
	return out
}
