package depseeker

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/NorthSeacoder/depseeker/internal/filter"
	"github.com/NorthSeacoder/depseeker/internal/resolver"
	"github.com/NorthSeacoder/depseeker/internal/scanner"
)

// skipDirs are directories never entered when expanding a directory
// entry into seeds.
var skipDirs = map[string]bool{
	"node_modules": true,
}

// buildState is the traversal state of a single BuildGraph call. All
// fields are guarded by mu. Admission to the visited set is the one
// atomic check-and-mark that keeps two concurrent visitors from
// processing the same file.
type buildState struct {
	mu       sync.Mutex
	visited  map[string]bool
	graph    DependencyGraph
	warnings []Warning
}

func newBuildState() *buildState {
	return &buildState{
		visited: make(map[string]bool),
		graph:   make(DependencyGraph),
	}
}

// admit marks abs visited and reports whether the caller won the right
// to process it.
func (s *buildState) admit(abs string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.visited[abs] {
		return false
	}
	s.visited[abs] = true
	return true
}

func (s *buildState) setEdges(rel string, edges []string) {
	s.mu.Lock()
	s.graph[rel] = edges
	s.mu.Unlock()
}

func (s *buildState) warn(w Warning) {
	s.mu.Lock()
	s.warnings = append(s.warnings, w)
	s.mu.Unlock()
}

// finalize freezes the state into a Result. Files is the sorted union of
// graph keys and edge targets; warnings sort by path, then kind.
func (s *buildState) finalize() *Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	fileSet := make(map[string]bool, len(s.graph))
	for file, deps := range s.graph {
		fileSet[file] = true
		for _, dep := range deps {
			fileSet[dep] = true
		}
	}
	files := make([]string, 0, len(fileSet))
	for f := range fileSet {
		files = append(files, f)
	}
	sort.Strings(files)

	sort.Slice(s.warnings, func(i, j int) bool {
		if s.warnings[i].Path != s.warnings[j].Path {
			return s.warnings[i].Path < s.warnings[j].Path
		}
		return s.warnings[i].Kind < s.warnings[j].Kind
	})

	return &Result{Graph: s.graph, Files: files, Warnings: s.warnings}
}

// BuildGraph traverses the dependency closure of entry and returns the
// assembled graph. entry may be a source file or a directory; a
// directory expands to every source file beneath it that survives the
// extension and exclusion rules, each an independent seed. Relative
// entries are taken relative to the base dir.
//
// Per-file read and parse failures do not fail the build: the file is
// recorded with no dependencies and a Warning is attached to the Result.
// The build fails only for an unusable entry, a saturated context, or an
// I/O error while expanding a directory entry.
func (e *Engine) BuildGraph(ctx context.Context, entry string) (*Result, error) {
	abs := entry
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(e.baseDir, abs)
	}
	abs = filepath.Clean(abs)

	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidEntry, entry)
	}

	state := newBuildState()
	rsv, err := e.newResolver(state)
	if err != nil {
		return nil, err
	}
	excluded := filter.New(e.exclude...)

	var seeds []string
	switch {
	case info.IsDir():
		seeds, err = e.collectSeeds(abs, excluded)
		if err != nil {
			return nil, err
		}
	case info.Mode().IsRegular():
		// The caller asked for this file by name, so rejecting it is an
		// error rather than a silent drop.
		if !e.hasConfiguredExt(abs) || excluded.Excluded(e.relPath(abs)) {
			return nil, fmt.Errorf("%w: %s", ErrEntryExcluded, entry)
		}
		seeds = []string{abs}
	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidEntry, entry)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for _, seed := range seeds {
		e.visit(gctx, g, state, rsv, excluded, seed)
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := state.finalize()
	e.logger.Debug("build complete",
		"entry", entry,
		"files", len(result.Files),
		"warnings", len(result.Warnings))
	return result, nil
}

// newResolver assembles the specifier resolver for one build. The alias
// table is loaded fresh each time so config edits between builds take
// effect; a broken config degrades to an empty table plus a warning.
func (e *Engine) newResolver(state *buildState) (*resolver.Resolver, error) {
	var table *resolver.AliasTable
	if e.tsconfigPath != "" {
		t, err := resolver.LoadAliasTable(e.tsconfigPath)
		if err != nil {
			e.logger.Warn("alias config unusable", "path", e.tsconfigPath, "error", err)
			state.warn(Warning{Kind: WarningConfig, Path: e.tsconfigPath, Err: err})
		} else {
			table = t
		}
	}
	rsv, err := resolver.New(resolver.Config{
		Extensions: e.extensions,
		IncludeNpm: e.includeNpm,
		Table:      table,
		Aliases:    e.aliases,
	})
	if err != nil {
		return nil, fmt.Errorf("depseeker: create resolver: %w", err)
	}
	return rsv, nil
}

// collectSeeds expands a directory entry into traversal seeds, applying
// the same extension and exclusion rules the traversal applies to
// discovered dependencies. Dot-directories and node_modules are never
// entered.
func (e *Engine) collectSeeds(dir string, excluded *filter.Matcher) ([]string, error) {
	var seeds []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if path != dir && (strings.HasPrefix(name, ".") || skipDirs[name]) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if !e.hasConfiguredExt(path) {
			return nil
		}
		if excluded.Excluded(e.relPath(path)) {
			return nil
		}
		seeds = append(seeds, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("expand entry %s: %w", dir, err)
	}
	return seeds, nil
}

// visit schedules processing of one absolute file path. The admission
// check runs before scheduling so a file is queued at most once no
// matter how many edges point at it.
func (e *Engine) visit(ctx context.Context, g *errgroup.Group, state *buildState, rsv *resolver.Resolver, excluded *filter.Matcher, abs string) {
	if !state.admit(abs) {
		return
	}
	task := func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		for _, next := range e.visitFile(ctx, state, rsv, excluded, abs) {
			e.visit(ctx, g, state, rsv, excluded, next)
		}
		return nil
	}
	if !g.TryGo(task) {
		// Every worker slot is busy. Run inline on the current goroutine:
		// blocking on Go here could deadlock with all workers waiting to
		// spawn children. The dropped error is only a context error,
		// which BuildGraph re-checks after Wait.
		_ = task()
	}
}

// visitFile reads, scans, and resolves one file, records its edge list,
// and returns the absolute paths of file targets to visit next. Failures
// degrade to an empty edge list and a warning so sibling files keep
// going.
func (e *Engine) visitFile(ctx context.Context, state *buildState, rsv *resolver.Resolver, excluded *filter.Matcher, abs string) []string {
	rel := e.relPath(abs)
	log := e.logger.With("file", rel)

	content, err := os.ReadFile(abs)
	if err != nil {
		log.Warn("read failed", "error", err)
		state.warn(Warning{Kind: WarningFileRead, Path: rel, Err: err})
		state.setEdges(rel, []string{})
		return nil
	}

	imports, err := scanner.Extract(ctx, abs, content)
	if err != nil {
		log.Warn("parse failed", "error", err)
		state.warn(Warning{Kind: WarningParse, Path: rel, Err: err})
		state.setEdges(rel, []string{})
		return nil
	}

	fromDir := filepath.Dir(abs)
	seen := make(map[string]bool)
	edges := []string{}
	var next []string
	for _, imp := range imports {
		if e.skipTypeOnly && imp.TypeOnly {
			continue
		}
		target := rsv.Resolve(imp.Specifier, fromDir)
		switch target.Kind {
		case resolver.TargetFile:
			depRel := e.relPath(target.Path)
			if excluded.Excluded(depRel) {
				log.Debug("dependency excluded", "target", depRel)
				continue
			}
			if !seen[depRel] {
				seen[depRel] = true
				edges = append(edges, depRel)
				next = append(next, target.Path)
			}
		case resolver.TargetPackage:
			if !seen[target.Path] {
				seen[target.Path] = true
				edges = append(edges, target.Path)
			}
		default:
			log.Debug("specifier unresolved", "specifier", imp.Specifier, "kind", imp.Kind.String())
		}
	}

	state.setEdges(rel, edges)
	log.Debug("visited", "deps", len(edges))
	return next
}
