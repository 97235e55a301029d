package depseeker

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/dominikbraun/graph"
	"github.com/dominikbraun/graph/draw"
)

// DependencyGraph maps each visited file to its resolved dependencies.
// Keys are paths relative to the base dir with forward slashes; values
// are the same relative paths plus, when npm inclusion is on, bare
// package names.
type DependencyGraph map[string][]string

// Result is the outcome of one BuildGraph call.
type Result struct {
	// Graph holds one key per visited file. A key with an empty list is
	// a file with no surviving dependencies.
	Graph DependencyGraph `json:"graph"`
	// Files is the sorted union of every graph key and edge target.
	Files []string `json:"files"`
	// Warnings lists non-fatal failures, sorted by path then kind.
	Warnings []Warning `json:"warnings,omitempty"`
}

// Packages returns the external package names in the result: edge
// targets that were never visited as files. Empty unless the build
// included npm packages.
func (r *Result) Packages() []string {
	var pkgs []string
	for _, f := range r.Files {
		if _, ok := r.Graph[f]; !ok {
			pkgs = append(pkgs, f)
		}
	}
	return pkgs
}

// Leaves returns the files that depend on nothing, sorted.
func (r *Result) Leaves() []string {
	leaves := []string{}
	for file, deps := range r.Graph {
		if len(deps) == 0 {
			leaves = append(leaves, file)
		}
	}
	sort.Strings(leaves)
	return leaves
}

// Orphans returns the files nothing depends on, sorted. Entry seeds
// typically land here.
func (r *Result) Orphans() []string {
	referenced := make(map[string]bool)
	for _, deps := range r.Graph {
		for _, dep := range deps {
			referenced[dep] = true
		}
	}
	orphans := []string{}
	for file := range r.Graph {
		if !referenced[file] {
			orphans = append(orphans, file)
		}
	}
	sort.Strings(orphans)
	return orphans
}

// Circular detects dependency cycles using Tarjan's strongly connected
// components algorithm. Each cycle is a list of files with the first
// element repeated at the end for clarity. Returns an empty list (not
// nil) for acyclic graphs; cycles sort by their first element.
func (r *Result) Circular() [][]string {
	// Self-loops are size-1 SCCs, so they need their own flag.
	selfLoops := make(map[string]bool)
	for file, deps := range r.Graph {
		for _, dep := range deps {
			if dep == file {
				selfLoops[file] = true
			}
		}
	}

	type nodeInfo struct {
		index   int
		lowlink int
		onStack bool
	}
	info := map[string]*nodeInfo{}
	index := 0
	var stack []string
	result := [][]string{}

	var strongconnect func(v string)
	strongconnect = func(v string) {
		ni := &nodeInfo{index: index, lowlink: index, onStack: true}
		info[v] = ni
		index++
		stack = append(stack, v)

		for _, w := range r.Graph[v] {
			wInfo, visited := info[w]
			if !visited {
				strongconnect(w)
				wInfo = info[w]
				if wInfo.lowlink < ni.lowlink {
					ni.lowlink = wInfo.lowlink
				}
			} else if wInfo.onStack {
				if wInfo.index < ni.lowlink {
					ni.lowlink = wInfo.index
				}
			}
		}

		if ni.lowlink == ni.index {
			var scc []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				info[w].onStack = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			if len(scc) > 1 || selfLoops[scc[0]] {
				// Tarjan pops in reverse; flip to natural cycle order.
				for i, j := 0, len(scc)-1; i < j; i, j = i+1, j-1 {
					scc[i], scc[j] = scc[j], scc[i]
				}
				scc = append(scc, scc[0])
				result = append(result, scc)
			}
		}
	}

	// Roots iterate in sorted order so cycle membership and rotation are
	// stable across runs.
	roots := make([]string, 0, len(r.Graph))
	for file := range r.Graph {
		roots = append(roots, file)
	}
	sort.Strings(roots)
	for _, file := range roots {
		if _, visited := info[file]; !visited {
			strongconnect(file)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i][0] < result[j][0]
	})
	return result
}

// DOT writes the graph in Graphviz DOT format. Files render as plain
// nodes, external packages as boxes.
func (r *Result) DOT(w io.Writer) error {
	g := graph.New(graph.StringHash, graph.Directed())

	for _, file := range r.Files {
		var opts []func(*graph.VertexProperties)
		if _, visited := r.Graph[file]; !visited {
			opts = append(opts, graph.VertexAttribute("shape", "box"))
		}
		if err := g.AddVertex(file, opts...); err != nil && !errors.Is(err, graph.ErrVertexAlreadyExists) {
			return fmt.Errorf("add vertex %s: %w", file, err)
		}
	}

	froms := make([]string, 0, len(r.Graph))
	for file := range r.Graph {
		froms = append(froms, file)
	}
	sort.Strings(froms)
	for _, from := range froms {
		for _, to := range r.Graph[from] {
			if err := g.AddEdge(from, to); err != nil && !errors.Is(err, graph.ErrEdgeAlreadyExists) {
				return fmt.Errorf("add edge %s -> %s: %w", from, to, err)
			}
		}
	}

	return draw.DOT(g, w)
}
