package discovery

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscoverLocal_ComponentsAndModules(t *testing.T) {
	tmp := t.TempDir()
	writeFile(t, tmp, "src/app/app.module.ts", "@NgModule({})")
	writeFile(t, tmp, "src/app/app.component.ts", "")
	writeFile(t, tmp, "src/app/widgets/foo-bar.component.ts", "")
	writeFile(t, tmp, "src/app/widgets/widgets.module.ts", "")
	writeFile(t, tmp, "src/app/widgets/inner/deep.component.ts", "")
	writeFile(t, tmp, "src/lonely.component.ts", "")
	writeFile(t, tmp, "src/app/app.service.ts", "")

	files, err := DiscoverLocal(tmp, DefaultLocalConfig())
	require.NoError(t, err)

	absTmp, _ := filepath.Abs(tmp)
	assert.Equal(t, absTmp, files.Root)

	assert.Equal(t, ModuleMap{
		"src/app":         "src/app/app.module.ts",
		"src/app/widgets": "src/app/widgets/widgets.module.ts",
	}, files.Modules)

	require.Len(t, files.Components, 4)
	byRel := make(map[string]LocalFile)
	for _, f := range files.Components {
		byRel[f.RelPath] = f
		assert.True(t, filepath.IsAbs(f.Path), "expected absolute path, got %s", f.Path)
	}

	assert.Equal(t, "src/app/app.module.ts", byRel["src/app/app.component.ts"].ModulePath)
	assert.Equal(t, "src/app/widgets/widgets.module.ts", byRel["src/app/widgets/foo-bar.component.ts"].ModulePath)
	assert.Equal(t, "src/app/widgets/widgets.module.ts", byRel["src/app/widgets/inner/deep.component.ts"].ModulePath)
	assert.Equal(t, "", byRel["src/lonely.component.ts"].ModulePath)
}

func TestDiscoverLocal_Exclusions(t *testing.T) {
	tmp := t.TempDir()
	writeFile(t, tmp, "src/a.component.ts", "")
	writeFile(t, tmp, "node_modules/lib/b.component.ts", "")
	writeFile(t, tmp, "packages/x/node_modules/c.component.ts", "")
	writeFile(t, tmp, "dist/d.component.ts", "")
	writeFile(t, tmp, "out/e.component.ts", "")
	writeFile(t, tmp, ".angular/cache/f.component.ts", "")
	writeFile(t, tmp, "generated/g.component.ts", "")
	writeFile(t, tmp, ".gitignore", "generated/\n")

	files, err := DiscoverLocal(tmp, DefaultLocalConfig())
	require.NoError(t, err)

	rels := relPaths(files.Components)
	assert.Equal(t, []string{"src/a.component.ts"}, rels)
}

func TestDiscoverLocal_GitignoreDisabled(t *testing.T) {
	tmp := t.TempDir()
	writeFile(t, tmp, "generated/g.component.ts", "")
	writeFile(t, tmp, ".gitignore", "generated/\n")

	cfg := DefaultLocalConfig()
	cfg.RespectGitignore = false

	files, err := DiscoverLocal(tmp, cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{"generated/g.component.ts"}, relPaths(files.Components))
}

func TestDiscoverLocal_SortedOutput(t *testing.T) {
	tmp := t.TempDir()
	writeFile(t, tmp, "z.component.ts", "")
	writeFile(t, tmp, "a/b.component.ts", "")
	writeFile(t, tmp, "m.component.ts", "")

	files, err := DiscoverLocal(tmp, DefaultLocalConfig())
	require.NoError(t, err)
	assert.Equal(t, []string{"a/b.component.ts", "m.component.ts", "z.component.ts"}, relPaths(files.Components))
}

func TestDiscoverLocal_InvalidGlob(t *testing.T) {
	cfg := DefaultLocalConfig()
	cfg.Exclude = append(cfg.Exclude, "[invalid")

	_, err := DiscoverLocal(t.TempDir(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid exclude pattern")
}

func TestNearestModule(t *testing.T) {
	modules := ModuleMap{
		".":       "root.module.ts",
		"src/app": "src/app/app.module.ts",
	}

	assert.Equal(t, "src/app/app.module.ts", NearestModule("src/app", modules))
	assert.Equal(t, "src/app/app.module.ts", NearestModule("src/app/x/y", modules))
	assert.Equal(t, "root.module.ts", NearestModule("src/other", modules))
	assert.Equal(t, "root.module.ts", NearestModule("", modules))

	assert.Equal(t, "", NearestModule("src/app", ModuleMap{}))
	assert.Equal(t, "", NearestModule("/abs/path", ModuleMap{}))
}

func TestDiscoverPackages(t *testing.T) {
	tmp := t.TempDir()
	nm := filepath.Join(tmp, "node_modules")
	writeFile(t, nm, "@acme/ui/button/index.d.ts", "")
	writeFile(t, nm, "@acme/ui/button/button.component.d.ts", "")
	writeFile(t, nm, "@acme/ui/card/card.d.ts", "")
	writeFile(t, nm, "@acme/ui/card/card.mjs", "")
	writeFile(t, nm, "@acme/icons/index.d.ts", "")
	writeFile(t, nm, "other/index.d.ts", "")

	files, err := DiscoverPackages(nm, []string{"@acme/ui", "missing-package"})
	require.NoError(t, err)

	mods := make([]string, 0, len(files))
	for _, f := range files {
		assert.True(t, filepath.IsAbs(f.Path))
		mods = append(mods, f.ModulePath)
	}
	assert.Equal(t, []string{"@acme/ui/button", "@acme/ui/button", "@acme/ui/card"}, mods)
}

func TestDiscoverPackages_GlobEntries(t *testing.T) {
	tmp := t.TempDir()
	writeFile(t, tmp, "@acme/ui/index.d.ts", "")
	writeFile(t, tmp, "@acme/icons/index.d.ts", "")

	files, err := DiscoverPackages(tmp, []string{"@acme/*", "@acme/ui"})
	require.NoError(t, err)
	require.Len(t, files, 2, "overlapping entries must not duplicate files")
	assert.Equal(t, "@acme/icons", files[0].ModulePath)
	assert.Equal(t, "@acme/ui", files[1].ModulePath)
}

func TestDiscoverPackages_MissingNodeModules(t *testing.T) {
	files, err := DiscoverPackages(filepath.Join(t.TempDir(), "node_modules"), []string{"@acme/ui"})
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestDiscoverPackages_InvalidPattern(t *testing.T) {
	_, err := DiscoverPackages(t.TempDir(), []string{"[oops"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid package pattern")
}

// --- helpers ---

func relPaths(files []LocalFile) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.RelPath
	}
	return out
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	full := filepath.Join(dir, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0644))
}
