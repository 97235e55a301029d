package resolver

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tidwall/jsonc"
)

// aliasPattern is one compiler-style path mapping: a specifier pattern
// containing at most one "*" and the candidate templates it rewrites to.
type aliasPattern struct {
	pattern    string
	candidates []string
}

// AliasTable holds the merged compiler-style path aliases of a tsconfig
// chain and the base directory candidates are resolved against. A nil
// table matches nothing.
type AliasTable struct {
	baseURL  string
	patterns []aliasPattern
}

// tsconfigDoc mirrors the subset of a tsconfig document the resolver
// consumes. tsconfig files are JSONC, so raw bytes pass through
// jsonc.ToJSON before decoding.
type tsconfigDoc struct {
	Extends         string `json:"extends"`
	CompilerOptions struct {
		BaseURL string              `json:"baseUrl"`
		Paths   map[string][]string `json:"paths"`
	} `json:"compilerOptions"`
}

// loadedDoc pairs a parsed document with the directory it was read from.
type loadedDoc struct {
	dir string
	doc tsconfigDoc
}

// LoadAliasTable reads a tsconfig-style document, follows its extends
// chain, and merges the chain into a single alias table. Any missing or
// unparseable document in the chain fails the load; callers degrade to an
// empty table.
func LoadAliasTable(configPath string) (*AliasTable, error) {
	abs, err := filepath.Abs(configPath)
	if err != nil {
		return nil, fmt.Errorf("resolve config path %q: %w", configPath, err)
	}
	chain, err := loadChain(abs, map[string]bool{})
	if err != nil {
		return nil, err
	}
	return mergeChain(chain), nil
}

// loadChain returns the extends chain oldest-first, the named document
// last. seen guards against cyclic extends references: a document already
// on the chain ends it instead of recursing forever.
func loadChain(abs string, seen map[string]bool) ([]loadedDoc, error) {
	abs = filepath.Clean(abs)
	if seen[abs] {
		return nil, nil
	}
	seen[abs] = true

	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", abs, err)
	}
	var doc tsconfigDoc
	if err := json.Unmarshal(jsonc.ToJSON(data), &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", abs, err)
	}

	dir := filepath.Dir(abs)
	var chain []loadedDoc
	if doc.Extends != "" {
		parent, err := resolveExtends(doc.Extends, dir)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", abs, err)
		}
		chain, err = loadChain(parent, seen)
		if err != nil {
			return nil, err
		}
	}
	return append(chain, loadedDoc{dir: dir, doc: doc}), nil
}

// resolveExtends locates the document an extends reference points at.
// Relative and absolute references resolve directly; bare specifiers are
// looked up under node_modules, walking up from the declaring directory
// the way Node resolves packages.
func resolveExtends(ref, fromDir string) (string, error) {
	if strings.HasPrefix(ref, ".") || filepath.IsAbs(ref) {
		path := ref
		if !filepath.IsAbs(path) {
			path = filepath.Join(fromDir, path)
		}
		resolved, ok := normalizeExtendsPath(path)
		if !ok {
			return "", fmt.Errorf("extends target %q not found", ref)
		}
		return resolved, nil
	}
	for dir := fromDir; ; dir = filepath.Dir(dir) {
		if resolved, ok := normalizeExtendsPath(filepath.Join(dir, "node_modules", ref)); ok {
			return resolved, nil
		}
		if filepath.Dir(dir) == dir {
			break
		}
	}
	return "", fmt.Errorf("extends target %q not found under node_modules", ref)
}

// normalizeExtendsPath turns an extends path into a concrete config file:
// a directory means its tsconfig.json, a path without .json gets the
// extension appended.
func normalizeExtendsPath(path string) (string, bool) {
	if info, err := os.Stat(path); err == nil {
		if info.IsDir() {
			inner := filepath.Join(path, "tsconfig.json")
			if isRegularFile(inner) {
				return inner, true
			}
			return "", false
		}
		return path, true
	}
	if !strings.HasSuffix(path, ".json") && isRegularFile(path+".json") {
		return path + ".json", true
	}
	return "", false
}

// mergeChain folds the extends chain oldest-first. baseUrl takes the most
// derived declared value, resolved against the directory of the document
// that declared it; when no document declares one, candidates resolve
// against the named document's directory. paths merges key-wise with a
// later document replacing the full candidate list for any pattern it
// redeclares.
func mergeChain(chain []loadedDoc) *AliasTable {
	if len(chain) == 0 {
		return &AliasTable{}
	}

	table := &AliasTable{baseURL: chain[len(chain)-1].dir}
	merged := make(map[string][]string)
	var order []string

	for _, entry := range chain {
		if base := entry.doc.CompilerOptions.BaseURL; base != "" {
			if filepath.IsAbs(base) {
				table.baseURL = filepath.Clean(base)
			} else {
				table.baseURL = filepath.Join(entry.dir, base)
			}
		}

		// Sort the document's pattern keys so the merged declaration
		// order is stable regardless of JSON map iteration.
		keys := make([]string, 0, len(entry.doc.CompilerOptions.Paths))
		for pattern := range entry.doc.CompilerOptions.Paths {
			keys = append(keys, pattern)
		}
		sort.Strings(keys)

		for _, pattern := range keys {
			if _, exists := merged[pattern]; !exists {
				order = append(order, pattern)
			}
			merged[pattern] = entry.doc.CompilerOptions.Paths[pattern]
		}
	}

	for _, pattern := range order {
		table.patterns = append(table.patterns, aliasPattern{
			pattern:    pattern,
			candidates: merged[pattern],
		})
	}
	return table
}

// Match returns the absolute candidate paths for raw, or nil when no
// pattern matches. The longest matched prefix wins, with declaration
// order breaking ties; an exact (starless) pattern counts its full length
// as the prefix. The text captured by "*" substitutes into each candidate.
func (t *AliasTable) Match(raw string) []string {
	if t == nil {
		return nil
	}

	bestLen := -1
	var candidates []string
	for _, p := range t.patterns {
		star := strings.IndexByte(p.pattern, '*')
		if star < 0 {
			if raw == p.pattern && len(p.pattern) > bestLen {
				bestLen = len(p.pattern)
				candidates = t.expand(p.candidates, "")
			}
			continue
		}

		prefix, suffix := p.pattern[:star], p.pattern[star+1:]
		if len(raw) < len(prefix)+len(suffix) ||
			!strings.HasPrefix(raw, prefix) ||
			!strings.HasSuffix(raw, suffix) {
			continue
		}
		if len(prefix) > bestLen {
			bestLen = len(prefix)
			captured := raw[len(prefix) : len(raw)-len(suffix)]
			candidates = t.expand(p.candidates, captured)
		}
	}
	return candidates
}

// expand substitutes the captured wildcard text into each candidate
// template and resolves the result against the table's base directory.
func (t *AliasTable) expand(templates []string, captured string) []string {
	out := make([]string, 0, len(templates))
	for _, tmpl := range templates {
		candidate := strings.Replace(tmpl, "*", captured, 1)
		if !filepath.IsAbs(candidate) {
			candidate = filepath.Join(t.baseURL, candidate)
		}
		out = append(out, filepath.Clean(candidate))
	}
	return out
}
