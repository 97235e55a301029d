// Package resolver turns raw module specifiers into concrete targets.
//
// A specifier is resolved against the directory of the file that
// references it, using the configured extension probe order, an optional
// compiler-style alias table, and an optional bundler-style alias map.
// Resolution of one specifier yields exactly one target: a file on disk,
// an opaque package name, or nothing.
package resolver

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/hashicorp/golang-lru/v2"
)

// TargetKind classifies the outcome of resolving one specifier.
type TargetKind int

const (
	// TargetNone means the specifier did not resolve; it produces no
	// graph edge.
	TargetNone TargetKind = iota
	// TargetFile is a concrete source file on disk.
	TargetFile
	// TargetPackage is an external package name kept as an opaque node.
	TargetPackage
)

// Target is the resolved form of one specifier. Path holds the absolute
// file path for TargetFile and the package name for TargetPackage.
type Target struct {
	Kind TargetKind
	Path string
}

// Config carries the settings resolution depends on.
type Config struct {
	// Extensions is the probe order, each entry with its leading dot.
	Extensions []string
	// IncludeNpm keeps bare package specifiers as opaque targets
	// instead of dropping them.
	IncludeNpm bool
	// Table holds compiler-style path aliases. A nil table matches
	// nothing.
	Table *AliasTable
	// Aliases maps bundler-style specifier prefixes to absolute
	// directories.
	Aliases map[string]string
}

const resolveCacheSize = 4096

// Resolver resolves module specifiers to targets. For an unchanged
// filesystem, resolution is a pure function of (specifier, fromDir), so
// results are memoized in a bounded LRU.
type Resolver struct {
	cfg             Config
	bundlerPrefixes []string
	cache           *lru.Cache[cacheKey, Target]
}

type cacheKey struct {
	raw     string
	fromDir string
}

// New builds a Resolver for the given configuration.
func New(cfg Config) (*Resolver, error) {
	cache, err := lru.New[cacheKey, Target](resolveCacheSize)
	if err != nil {
		return nil, err
	}

	prefixes := make([]string, 0, len(cfg.Aliases))
	for prefix := range cfg.Aliases {
		prefixes = append(prefixes, prefix)
	}
	// Longest prefix first so "@app/ui" wins over "@app", with a stable
	// lexical order between equal lengths.
	sort.Slice(prefixes, func(i, j int) bool {
		if len(prefixes[i]) != len(prefixes[j]) {
			return len(prefixes[i]) > len(prefixes[j])
		}
		return prefixes[i] < prefixes[j]
	})

	return &Resolver{cfg: cfg, bundlerPrefixes: prefixes, cache: cache}, nil
}

// Resolve decides the target for one raw specifier referenced from a
// file in fromDir.
func (r *Resolver) Resolve(raw, fromDir string) Target {
	key := cacheKey{raw: raw, fromDir: fromDir}
	if cached, ok := r.cache.Get(key); ok {
		return cached
	}
	target := r.resolve(raw, fromDir)
	r.cache.Add(key, target)
	return target
}

func (r *Resolver) resolve(raw, fromDir string) Target {
	switch {
	case strings.HasPrefix(raw, "/"):
		return r.probeTarget(raw)
	case strings.HasPrefix(raw, "."):
		return r.probeTarget(filepath.Join(fromDir, raw))
	default:
		return r.resolveBare(raw)
	}
}

// resolveBare handles specifiers that are neither relative nor absolute.
// Compiler aliases are consulted first, then bundler aliases; a bare
// specifier matching neither is an external package. A specifier that
// matched an alias but probed no file falls back to the same package
// passthrough, so a stale alias does not silently vanish from the graph
// when packages are kept.
func (r *Resolver) resolveBare(raw string) Target {
	if candidates := r.cfg.Table.Match(raw); candidates != nil {
		for _, candidate := range candidates {
			if t := r.probeTarget(candidate); t.Kind == TargetFile {
				return t
			}
		}
		return r.packageOr(raw)
	}
	if rewritten, ok := r.bundlerRewrite(raw); ok {
		if t := r.probeTarget(rewritten); t.Kind == TargetFile {
			return t
		}
		return r.packageOr(raw)
	}
	return r.packageOr(raw)
}

// bundlerRewrite applies the first bundler alias whose prefix matches a
// whole leading segment of raw.
func (r *Resolver) bundlerRewrite(raw string) (string, bool) {
	for _, prefix := range r.bundlerPrefixes {
		if raw == prefix {
			return r.cfg.Aliases[prefix], true
		}
		if strings.HasPrefix(raw, prefix+"/") {
			return filepath.Join(r.cfg.Aliases[prefix], raw[len(prefix)+1:]), true
		}
	}
	return "", false
}

func (r *Resolver) packageOr(raw string) Target {
	if r.cfg.IncludeNpm {
		return Target{Kind: TargetPackage, Path: raw}
	}
	return Target{Kind: TargetNone}
}

func (r *Resolver) probeTarget(candidate string) Target {
	if resolved, ok := probe(filepath.Clean(candidate), r.cfg.Extensions); ok {
		return Target{Kind: TargetFile, Path: resolved}
	}
	return Target{Kind: TargetNone}
}
