package depseeker

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// DefaultExtensions is the set of source extensions considered when
// WithExtensions is not given. The order doubles as the probe order for
// extensionless specifiers.
var DefaultExtensions = []string{".ts", ".tsx", ".js", ".jsx", ".mjs", ".cjs"}

// Engine builds file-level dependency graphs for JavaScript and
// TypeScript source trees. An Engine is immutable after New and safe for
// concurrent use; each BuildGraph call carries its own traversal state.
type Engine struct {
	baseDir      string
	extensions   []string
	includeNpm   bool
	exclude      []string
	tsconfigPath string
	aliases      map[string]string
	skipTypeOnly bool
	concurrency  int
	logger       *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithBaseDir sets the directory all graph paths are expressed relative
// to. Defaults to the current working directory.
func WithBaseDir(dir string) Option {
	return func(e *Engine) {
		e.baseDir = dir
	}
}

// WithExtensions replaces the source extensions the Engine considers.
// The declared order is also the probe order, so earlier extensions win
// when a specifier could resolve to more than one file.
func WithExtensions(exts ...string) Option {
	return func(e *Engine) {
		e.extensions = exts
	}
}

// WithIncludeNpm keeps bare package specifiers in the graph as terminal
// nodes instead of dropping them.
func WithIncludeNpm(include bool) Option {
	return func(e *Engine) {
		e.includeNpm = include
	}
}

// WithExcludeFilters adds glob patterns matched against base-relative
// paths. A matching file is removed from the graph entirely: no node, no
// edges, no traversal into it.
func WithExcludeFilters(patterns ...string) Option {
	return func(e *Engine) {
		e.exclude = append(e.exclude, patterns...)
	}
}

// WithTSConfig points the Engine at a tsconfig or jsconfig document. Its
// compilerOptions.paths aliases (including inherited ones via extends)
// participate in resolution. A config that fails to load degrades to a
// warning on the build result rather than an error.
func WithTSConfig(path string) Option {
	return func(e *Engine) {
		e.tsconfigPath = path
	}
}

// WithAliases adds bundler-style aliases mapping a specifier prefix to a
// directory. Relative directories are taken relative to the base dir.
// Compiler aliases from WithTSConfig take precedence when both match.
func WithAliases(aliases map[string]string) Option {
	return func(e *Engine) {
		if e.aliases == nil {
			e.aliases = make(map[string]string, len(aliases))
		}
		for prefix, target := range aliases {
			e.aliases[prefix] = target
		}
	}
}

// WithSkipTypeOnly drops imports and re-exports that exist purely for
// the type system, so the graph reflects runtime dependencies only.
func WithSkipTypeOnly(skip bool) Option {
	return func(e *Engine) {
		e.skipTypeOnly = skip
	}
}

// WithConcurrency bounds the number of files processed in parallel
// during a build. Values below 1 select one worker per CPU.
func WithConcurrency(n int) Option {
	return func(e *Engine) {
		e.concurrency = n
	}
}

// WithLogger installs a structured logger for build diagnostics. The
// default discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// New creates an Engine. The base directory must exist; everything else
// is normalized here so BuildGraph can rely on absolute paths, dotted
// lower-case extensions, and a positive worker count.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{
		baseDir:    ".",
		extensions: DefaultExtensions,
	}
	for _, opt := range opts {
		opt(e)
	}

	abs, err := filepath.Abs(e.baseDir)
	if err != nil {
		return nil, fmt.Errorf("depseeker: resolve base dir %q: %w", e.baseDir, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("depseeker: base dir %q: %w", e.baseDir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("depseeker: base dir %q is not a directory", e.baseDir)
	}
	e.baseDir = abs

	if len(e.extensions) == 0 {
		return nil, fmt.Errorf("depseeker: no file extensions configured")
	}
	exts := make([]string, 0, len(e.extensions))
	for _, ext := range e.extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		exts = append(exts, ext)
	}
	if len(exts) == 0 {
		return nil, fmt.Errorf("depseeker: no file extensions configured")
	}
	e.extensions = exts

	for prefix, target := range e.aliases {
		if prefix == "" {
			return nil, fmt.Errorf("depseeker: empty alias prefix")
		}
		if !filepath.IsAbs(target) {
			e.aliases[prefix] = filepath.Join(e.baseDir, target)
		}
	}

	if e.tsconfigPath != "" && !filepath.IsAbs(e.tsconfigPath) {
		e.tsconfigPath = filepath.Join(e.baseDir, e.tsconfigPath)
	}

	if e.concurrency < 1 {
		e.concurrency = runtime.NumCPU()
	}
	if e.logger == nil {
		e.logger = slog.New(slog.DiscardHandler)
	}

	return e, nil
}

// BaseDir returns the absolute base directory graph paths are relative
// to.
func (e *Engine) BaseDir() string {
	return e.baseDir
}

// Extensions returns the normalized extension probe order.
func (e *Engine) Extensions() []string {
	out := make([]string, len(e.extensions))
	copy(out, e.extensions)
	return out
}

// hasConfiguredExt reports whether path carries one of the configured
// source extensions.
func (e *Engine) hasConfiguredExt(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, want := range e.extensions {
		if ext == want {
			return true
		}
	}
	return false
}

// relPath expresses an absolute path relative to the base dir with
// forward slashes, the canonical form for graph keys and edges.
func (e *Engine) relPath(abs string) string {
	rel, err := filepath.Rel(e.baseDir, abs)
	if err != nil {
		return filepath.ToSlash(abs)
	}
	return filepath.ToSlash(rel)
}
