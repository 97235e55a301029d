package resolver

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestResolver(t *testing.T, cfg Config) *Resolver {
	t.Helper()
	if cfg.Extensions == nil {
		cfg.Extensions = testExts
	}
	r, err := New(cfg)
	require.NoError(t, err)
	return r
}

func TestResolve_RelativeFile(t *testing.T) {
	root := t.TempDir()
	want := writeFile(t, root, "src/b.ts")
	r := newTestResolver(t, Config{})

	got := r.Resolve("./b", filepath.Join(root, "src"))
	assert.Equal(t, Target{Kind: TargetFile, Path: want}, got)
}

func TestResolve_RelativeWithExtension(t *testing.T) {
	root := t.TempDir()
	want := writeFile(t, root, "src/b.ts")
	r := newTestResolver(t, Config{})

	got := r.Resolve("./b.ts", filepath.Join(root, "src"))
	assert.Equal(t, Target{Kind: TargetFile, Path: want}, got)
}

func TestResolve_RelativeDirectoryIndex(t *testing.T) {
	root := t.TempDir()
	want := writeFile(t, root, "src/widgets/index.tsx")
	r := newTestResolver(t, Config{})

	got := r.Resolve("./widgets", filepath.Join(root, "src"))
	assert.Equal(t, Target{Kind: TargetFile, Path: want}, got)
}

func TestResolve_ParentRelative(t *testing.T) {
	root := t.TempDir()
	want := writeFile(t, root, "shared/util.ts")
	writeFile(t, root, "src/app/main.ts")
	r := newTestResolver(t, Config{})

	got := r.Resolve("../../shared/util", filepath.Join(root, "src", "app"))
	assert.Equal(t, Target{Kind: TargetFile, Path: want}, got)
}

func TestResolve_RelativeMissing(t *testing.T) {
	r := newTestResolver(t, Config{})

	got := r.Resolve("./nope", t.TempDir())
	assert.Equal(t, TargetNone, got.Kind)
}

func TestResolve_AbsolutePath(t *testing.T) {
	root := t.TempDir()
	want := writeFile(t, root, "lib/mod.js")
	r := newTestResolver(t, Config{})

	got := r.Resolve(filepath.Join(root, "lib", "mod"), root)
	assert.Equal(t, Target{Kind: TargetFile, Path: want}, got)
}

func TestResolve_PackagePassthrough(t *testing.T) {
	r := newTestResolver(t, Config{IncludeNpm: true})

	got := r.Resolve("react", t.TempDir())
	assert.Equal(t, Target{Kind: TargetPackage, Path: "react"}, got)
}

func TestResolve_ScopedPackage(t *testing.T) {
	r := newTestResolver(t, Config{IncludeNpm: true})

	got := r.Resolve("@tanstack/react-query", t.TempDir())
	assert.Equal(t, Target{Kind: TargetPackage, Path: "@tanstack/react-query"}, got)
}

func TestResolve_PackageSuppressed(t *testing.T) {
	r := newTestResolver(t, Config{IncludeNpm: false})

	got := r.Resolve("react", t.TempDir())
	assert.Equal(t, TargetNone, got.Kind)
}

func TestResolve_CompilerAlias(t *testing.T) {
	root := t.TempDir()
	want := writeFile(t, root, "app/models/user.ts")
	r := newTestResolver(t, Config{
		Table: &AliasTable{
			baseURL:  root,
			patterns: []aliasPattern{{pattern: "@app/*", candidates: []string{"app/*"}}},
		},
	})

	got := r.Resolve("@app/models/user", filepath.Join(root, "elsewhere"))
	assert.Equal(t, Target{Kind: TargetFile, Path: want}, got)
}

func TestResolve_CompilerAliasCandidateOrder(t *testing.T) {
	root := t.TempDir()
	want := writeFile(t, root, "fallback/log.ts")
	r := newTestResolver(t, Config{
		Table: &AliasTable{
			baseURL: root,
			patterns: []aliasPattern{
				{pattern: "@lib/*", candidates: []string{"primary/*", "fallback/*"}},
			},
		},
	})

	got := r.Resolve("@lib/log", root)
	assert.Equal(t, Target{Kind: TargetFile, Path: want}, got)
}

func TestResolve_AliasUnresolvableSuppressed(t *testing.T) {
	root := t.TempDir()
	r := newTestResolver(t, Config{
		IncludeNpm: false,
		Table: &AliasTable{
			baseURL:  root,
			patterns: []aliasPattern{{pattern: "@app/*", candidates: []string{"app/*"}}},
		},
	})

	// The alias matched, so a failed probe must not degrade into a
	// package name when packages are excluded.
	got := r.Resolve("@app/missing", root)
	assert.Equal(t, TargetNone, got.Kind)
}

func TestResolve_AliasUnresolvableKeptAsPackage(t *testing.T) {
	root := t.TempDir()
	r := newTestResolver(t, Config{
		IncludeNpm: true,
		Table: &AliasTable{
			baseURL:  root,
			patterns: []aliasPattern{{pattern: "@app/*", candidates: []string{"app/*"}}},
		},
	})

	got := r.Resolve("@app/missing", root)
	assert.Equal(t, Target{Kind: TargetPackage, Path: "@app/missing"}, got)
}

func TestResolve_BundlerAlias(t *testing.T) {
	root := t.TempDir()
	want := writeFile(t, root, "src/deep/mod.ts")
	r := newTestResolver(t, Config{
		Aliases: map[string]string{"~": filepath.Join(root, "src")},
	})

	got := r.Resolve("~/deep/mod", root)
	assert.Equal(t, Target{Kind: TargetFile, Path: want}, got)
}

func TestResolve_BundlerAliasLongestPrefixWins(t *testing.T) {
	root := t.TempDir()
	want := writeFile(t, root, "ui/button.tsx")
	writeFile(t, root, "app/ui/button.tsx")
	r := newTestResolver(t, Config{
		Aliases: map[string]string{
			"@app":    filepath.Join(root, "app"),
			"@app/ui": filepath.Join(root, "ui"),
		},
	})

	got := r.Resolve("@app/ui/button", root)
	assert.Equal(t, Target{Kind: TargetFile, Path: want}, got)
}

func TestResolve_BundlerAliasWholeSegmentOnly(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "app/le.ts")
	r := newTestResolver(t, Config{
		IncludeNpm: true,
		Aliases:    map[string]string{"@app": filepath.Join(root, "app")},
	})

	// "@apple" shares bytes with the "@app" prefix but is a different
	// leading segment, so it stays a package.
	got := r.Resolve("@apple/le", root)
	assert.Equal(t, Target{Kind: TargetPackage, Path: "@apple/le"}, got)
}

func TestResolve_CompilerAliasBeforeBundler(t *testing.T) {
	root := t.TempDir()
	want := writeFile(t, root, "compiler/x.ts")
	writeFile(t, root, "bundler/x.ts")
	r := newTestResolver(t, Config{
		Table: &AliasTable{
			baseURL:  root,
			patterns: []aliasPattern{{pattern: "@x/*", candidates: []string{"compiler/*"}}},
		},
		Aliases: map[string]string{"@x": filepath.Join(root, "bundler")},
	})

	got := r.Resolve("@x/x", root)
	assert.Equal(t, Target{Kind: TargetFile, Path: want}, got)
}

func TestResolve_Memoized(t *testing.T) {
	root := t.TempDir()
	r := newTestResolver(t, Config{})

	first := r.Resolve("./late", root)
	require.Equal(t, TargetNone, first.Kind)

	// The file appears after the first resolution; the memoized miss is
	// returned for the same (specifier, fromDir) pair.
	writeFile(t, root, "late.ts")
	second := r.Resolve("./late", root)
	assert.Equal(t, TargetNone, second.Kind)

	// A different referencing directory is a different key.
	sub := filepath.Join(root, "sub")
	writeFile(t, root, "sub/placeholder.ts")
	fresh := r.Resolve("../late", sub)
	assert.Equal(t, TargetFile, fresh.Kind)
}
