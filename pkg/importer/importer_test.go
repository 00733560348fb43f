package importer

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/ngtags/pkg/component"
	"github.com/gnana997/ngtags/pkg/parser"
	"github.com/gnana997/ngtags/pkg/util"
)

const standaloneHost = `import { Component } from '@angular/core';

@Component({
  selector: 'app-host',
  standalone: true,
  imports: [CommonModule],
  templateUrl: './host.component.html',
})
export class HostComponent {}
`

const hostWithoutImports = `import { Component } from '@angular/core';

@Component({
  selector: 'app-host',
  standalone: true,
  template: '<p></p>',
})
export class HostComponent {}
`

const widgetsModule = `import { NgModule } from '@angular/core';

@NgModule({
  declarations: [HostComponent],
  imports: [],
})
export class WidgetsModule {}
`

// hosts maps active files to host descriptors.
type hosts map[string]*component.Descriptor

func (h hosts) HostFor(activeFile string) (*component.Descriptor, bool) {
	d, ok := h[activeFile]
	return d, ok
}

var button = &component.Descriptor{
	Name:         "ButtonComponent",
	Selectors:    []string{"acme-button"},
	IsStandalone: true,
	ImportPath:   "@acme/ui/button",
	ImportName:   "ButtonComponent",
	Origin:       component.OriginPackage,
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	full := filepath.Join(dir, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0644))
	return full
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func newTestImporter(t *testing.T, root string, h hosts) *Importer {
	t.Helper()
	logger := util.NewDiscardLogger()
	parsers := parser.NewManagerWithPoolSize(logger, 1)
	t.Cleanup(func() { parsers.Close() })
	return New(root, h, parsers, logger)
}

func standaloneHostDescriptor(root string) *component.Descriptor {
	return &component.Descriptor{
		Name:         "HostComponent",
		Selectors:    []string{"app-host"},
		IsStandalone: true,
		ImportPath:   "src/app/host/host.component.ts",
		ImportName:   "HostComponent",
		SourceFile:   filepath.Join(root, "src/app/host/host.component.ts"),
		TemplateURL:  filepath.Join(root, "src/app/host/host.component.html"),
		Origin:       component.OriginLocal,
	}
}

func TestImport_StandaloneHostFromTemplate(t *testing.T) {
	root := t.TempDir()
	file := writeFile(t, root, "src/app/host/host.component.ts", standaloneHost)
	template := writeFile(t, root, "src/app/host/host.component.html", "<")
	host := standaloneHostDescriptor(root)

	im := newTestImporter(t, root, hosts{template: host})
	edit, err := im.Import(context.Background(), button, template)
	require.NoError(t, err)

	assert.Equal(t, file, edit.File)
	assert.True(t, edit.ImportAdded)
	assert.True(t, edit.ArrayUpdated)
	assert.Equal(t, MethodAST, edit.Method)
	assert.Equal(t, `import { ButtonComponent } from "@acme/ui/button";`, edit.Statement)

	got := readFile(t, file)
	assert.True(t, strings.HasPrefix(got, edit.Statement+"\nimport { Component }"))
	assert.Contains(t, got, "imports: [CommonModule, ButtonComponent],")
	assert.Equal(t, "<", readFile(t, template), "template is left untouched")
}

func TestImport_IsIdempotent(t *testing.T) {
	root := t.TempDir()
	file := writeFile(t, root, "src/app/host/host.component.ts", standaloneHost)
	host := standaloneHostDescriptor(root)
	im := newTestImporter(t, root, hosts{file: host})

	_, err := im.Import(context.Background(), button, file)
	require.NoError(t, err)
	first := readFile(t, file)

	edit, err := im.Import(context.Background(), button, file)
	require.NoError(t, err)
	assert.False(t, edit.Changed())
	assert.Equal(t, first, readFile(t, file))
	assert.Equal(t, 1, strings.Count(first, "ButtonComponent }"))
}

func TestImport_SameModuleIsNoop(t *testing.T) {
	root := t.TempDir()
	module := writeFile(t, root, "src/widgets/widgets.module.ts", widgetsModule)
	template := writeFile(t, root, "src/widgets/host/host.component.html", "<")

	owned := func(name, selector string) *component.Descriptor {
		return &component.Descriptor{
			Name:       name,
			Selectors:  []string{selector},
			ImportPath: "src/widgets/widgets.module.ts",
			ImportName: "WidgetsModule",
			Origin:     component.OriginLocal,
		}
	}
	host := owned("HostComponent", "app-host")
	sibling := owned("CardComponent", "app-card")

	im := newTestImporter(t, root, hosts{template: host})
	edit, err := im.Import(context.Background(), sibling, template)
	require.NoError(t, err)

	assert.Equal(t, module, edit.File)
	assert.False(t, edit.Changed())
	assert.Equal(t, widgetsModule, readFile(t, module))
}

func TestImport_ComponentIntoItsOwnFile(t *testing.T) {
	root := t.TempDir()
	file := writeFile(t, root, "src/app/host/host.component.ts", standaloneHost)
	host := standaloneHostDescriptor(root)

	im := newTestImporter(t, root, hosts{file: host})
	edit, err := im.Import(context.Background(), host, file)
	require.NoError(t, err)

	assert.False(t, edit.Changed())
	assert.Equal(t, standaloneHost, readFile(t, file))
}

func TestImport_InsertsImportsAfterSelector(t *testing.T) {
	root := t.TempDir()
	file := writeFile(t, root, "src/app/host/host.component.ts", hostWithoutImports)
	im := newTestImporter(t, root, hosts{file: standaloneHostDescriptor(root)})

	edit, err := im.Import(context.Background(), button, file)
	require.NoError(t, err)
	assert.True(t, edit.ArrayUpdated)

	assert.Contains(t, readFile(t, file), "  selector: 'app-host',\n  imports: [ButtonComponent],\n  standalone: true,")
}

func TestImport_ModuleOwnedHost(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/app/widgets/host/host.component.ts", "")
	module := writeFile(t, root, "src/app/widgets/widgets.module.ts", widgetsModule)
	active := filepath.Join(root, "src/app/widgets/host/host.component.ts")

	host := &component.Descriptor{
		Name:       "HostComponent",
		Selectors:  []string{"app-host"},
		ImportPath: "src/app/widgets/widgets.module.ts",
		ImportName: "WidgetsModule",
		SourceFile: active,
		Origin:     component.OriginLocal,
	}
	card := &component.Descriptor{
		Name:         "CardComponent",
		Selectors:    []string{"app-card"},
		IsStandalone: true,
		ImportPath:   "src/app/shared/card.component.ts",
		ImportName:   "CardComponent",
		Origin:       component.OriginLocal,
	}

	im := newTestImporter(t, root, hosts{active: host})
	edit, err := im.Import(context.Background(), card, active)
	require.NoError(t, err)

	assert.Equal(t, module, edit.File)
	assert.Equal(t, `import { CardComponent } from "../shared/card.component";`, edit.Statement)
	got := readFile(t, module)
	assert.Contains(t, got, "imports: [CardComponent],")
	assert.Contains(t, got, "declarations: [HostComponent],")
}

func TestImport_UnregisteredTypeScriptFileIsItsOwnHost(t *testing.T) {
	root := t.TempDir()
	file := writeFile(t, root, "src/app/new.component.ts", hostWithoutImports)
	im := newTestImporter(t, root, hosts{})

	edit, err := im.Import(context.Background(), button, file)
	require.NoError(t, err)
	assert.Equal(t, file, edit.File)
	assert.Contains(t, readFile(t, file), "imports: [ButtonComponent],")
}

func TestImport_TemplateWithoutHost(t *testing.T) {
	root := t.TempDir()
	template := writeFile(t, root, "src/orphan.html", "<")
	im := newTestImporter(t, root, hosts{})

	_, err := im.Import(context.Background(), button, template)
	assert.ErrorIs(t, err, ErrNoHost)
}

func TestImport_MissingDestination(t *testing.T) {
	root := t.TempDir()
	im := newTestImporter(t, root, hosts{})

	_, err := im.Import(context.Background(), button, filepath.Join(root, "gone.component.ts"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestImport_RegexOnlyWithoutParsers(t *testing.T) {
	root := t.TempDir()
	file := writeFile(t, root, "src/app/host/host.component.ts", standaloneHost)
	im := New(root, hosts{}, nil, util.NewDiscardLogger())

	edit, err := im.Import(context.Background(), button, file)
	require.NoError(t, err)
	assert.Equal(t, MethodRegex, edit.Method)
	assert.Contains(t, readFile(t, file), "imports: [CommonModule, ButtonComponent],")
}

func TestPlanInsertion_PrefersTargetClass(t *testing.T) {
	src := []byte(`@Component({
  selector: 'app-a',
  imports: [],
})
export class AComponent {}

@Component({
  selector: 'app-b',
  imports: [
    CommonModule,
  ],
})
export class BComponent {}
`)
	manager := parser.NewManagerWithPoolSize(util.NewDiscardLogger(), 1)
	defer manager.Close()

	tree, err := manager.Parse(src, parser.LanguageTypeScript)
	require.NoError(t, err)
	defer tree.Close()

	ins, ok := planInsertion(tree.RootNode(), src, "XModule", "BComponent")
	require.True(t, ok)
	require.NotNil(t, ins)
	out := string(src[:ins.offset]) + ins.text + string(src[ins.offset:])
	assert.Contains(t, out, "imports: [\n    CommonModule, XModule,\n  ],")
	assert.Contains(t, out, "selector: 'app-a',\n  imports: [],")

	ins, ok = planInsertion(tree.RootNode(), src, "XModule", "")
	require.True(t, ok)
	out = string(src[:ins.offset]) + ins.text + string(src[ins.offset:])
	assert.Contains(t, out, "selector: 'app-a',\n  imports: [XModule],")

	ins, ok = planInsertion(tree.RootNode(), src, "CommonModule", "BComponent")
	assert.True(t, ok)
	assert.Nil(t, ins)
}

func TestPlanInsertion_ModuleWithoutImports(t *testing.T) {
	src := []byte("@NgModule({\n  declarations: [A],\n})\nexport class AModule {}\n")
	manager := parser.NewManagerWithPoolSize(util.NewDiscardLogger(), 1)
	defer manager.Close()

	tree, err := manager.Parse(src, parser.LanguageTypeScript)
	require.NoError(t, err)
	defer tree.Close()

	ins, ok := planInsertion(tree.RootNode(), src, "BModule", "AModule")
	require.True(t, ok)
	out := string(src[:ins.offset]) + ins.text + string(src[ins.offset:])
	assert.Equal(t, "@NgModule({\n  imports: [BModule],\n  declarations: [A],\n})\nexport class AModule {}\n", out)
}

func TestPlanInsertion_NoDecorator(t *testing.T) {
	src := []byte("export const x = 1;\n")
	manager := parser.NewManagerWithPoolSize(util.NewDiscardLogger(), 1)
	defer manager.Close()

	tree, err := manager.Parse(src, parser.LanguageTypeScript)
	require.NoError(t, err)
	defer tree.Close()

	_, ok := planInsertion(tree.RootNode(), src, "X", "")
	assert.False(t, ok)
}

func TestUpdateWithRegex(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
		changed bool
	}{
		{
			name:    "appends to existing array",
			content: "@Component({\n  selector: 'a',\n  imports: [A, B],\n})",
			want:    "@Component({\n  selector: 'a',\n  imports: [A, B, X],\n})",
			changed: true,
		},
		{
			name:    "fills empty array",
			content: "imports: [ ],",
			want:    "imports: [ X],",
			changed: true,
		},
		{
			name:    "already present",
			content: "imports: [A, X],",
			want:    "imports: [A, X],",
		},
		{
			name:    "prefix of another name is not a match",
			content: "imports: [XModule],",
			want:    "imports: [XModule, X],",
			changed: true,
		},
		{
			name:    "inserted after selector",
			content: "@Component({\n  selector: 'app-a',\n  template: ''\n})",
			want:    "@Component({\n  selector: 'app-a',\nimports: [X],\n  template: ''\n})",
			changed: true,
		},
		{
			name:    "selector without trailing comma",
			content: "@Component({ selector: \"app-a\" })",
			want:    "@Component({ selector: \"app-a\",\nimports: [X], })",
			changed: true,
		},
		{
			name:    "imports without trailing comma is left alone",
			content: "imports: [A]\n",
			want:    "imports: [A]\n",
		},
		{
			name:    "nothing to anchor on",
			content: "export const a = 1;",
			want:    "export const a = 1;",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, changed := updateWithRegex(tt.content, "X")
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.changed, changed)
		})
	}
}
