package depseeker

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeTree lays out a source tree under root from relative path to
// content.
func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
}

func newTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	e, err := New(opts...)
	require.NoError(t, err)
	return e
}

func TestNew_Defaults(t *testing.T) {
	root := t.TempDir()
	e := newTestEngine(t, WithBaseDir(root))

	assert.Equal(t, root, e.BaseDir())
	assert.Equal(t, DefaultExtensions, e.Extensions())
	assert.False(t, e.includeNpm)
	assert.False(t, e.skipTypeOnly)
	assert.GreaterOrEqual(t, e.concurrency, 1)
	assert.NotNil(t, e.logger)
}

func TestNew_MissingBaseDir(t *testing.T) {
	_, err := New(WithBaseDir(filepath.Join(t.TempDir(), "gone")))
	require.Error(t, err)
}

func TestNew_BaseDirIsFile(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "index.ts")
	require.NoError(t, os.WriteFile(file, []byte("export {}"), 0644))

	_, err := New(WithBaseDir(file))
	require.Error(t, err)
}

func TestNew_NormalizesExtensions(t *testing.T) {
	e := newTestEngine(t,
		WithBaseDir(t.TempDir()),
		WithExtensions("ts", ".TSX", " js "))

	assert.Equal(t, []string{".ts", ".tsx", ".js"}, e.Extensions())
}

func TestNew_RejectsBlankExtensions(t *testing.T) {
	_, err := New(WithBaseDir(t.TempDir()), WithExtensions(""))
	require.Error(t, err)
}

func TestNew_ResolvesRelativeAliasTargets(t *testing.T) {
	root := t.TempDir()
	e := newTestEngine(t,
		WithBaseDir(root),
		WithAliases(map[string]string{"@": "src", "abs": "/elsewhere"}))

	assert.Equal(t, filepath.Join(root, "src"), e.aliases["@"])
	assert.Equal(t, "/elsewhere", e.aliases["abs"])
}

func TestNew_RejectsEmptyAliasPrefix(t *testing.T) {
	_, err := New(
		WithBaseDir(t.TempDir()),
		WithAliases(map[string]string{"": "src"}))
	require.Error(t, err)
}

func TestNew_ResolvesRelativeTSConfigPath(t *testing.T) {
	root := t.TempDir()
	e := newTestEngine(t, WithBaseDir(root), WithTSConfig("tsconfig.json"))

	assert.Equal(t, filepath.Join(root, "tsconfig.json"), e.tsconfigPath)
}

func TestNew_ConcurrencyFloor(t *testing.T) {
	e := newTestEngine(t, WithBaseDir(t.TempDir()), WithConcurrency(-3))
	assert.GreaterOrEqual(t, e.concurrency, 1)
}

func TestWithExcludeFilters_Accumulates(t *testing.T) {
	e := newTestEngine(t,
		WithBaseDir(t.TempDir()),
		WithExcludeFilters("**/*.test.ts"),
		WithExcludeFilters("dist/**"))

	assert.Equal(t, []string{"**/*.test.ts", "dist/**"}, e.exclude)
}

func TestEngine_HasConfiguredExt(t *testing.T) {
	e := newTestEngine(t, WithBaseDir(t.TempDir()), WithExtensions(".ts", ".tsx"))

	assert.True(t, e.hasConfiguredExt("/p/a.ts"))
	assert.True(t, e.hasConfiguredExt("/p/a.TSX"))
	assert.False(t, e.hasConfiguredExt("/p/a.js"))
	assert.False(t, e.hasConfiguredExt("/p/ts"))
}
