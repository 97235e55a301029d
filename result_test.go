package depseeker

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCircular_Acyclic(t *testing.T) {
	res := &Result{Graph: DependencyGraph{
		"a.ts": {"b.ts"},
		"b.ts": {},
	}}

	cycles := res.Circular()
	require.NotNil(t, cycles)
	assert.Empty(t, cycles)
}

func TestCircular_SimpleCycle(t *testing.T) {
	res := &Result{Graph: DependencyGraph{
		"a.ts": {"b.ts"},
		"b.ts": {"a.ts"},
	}}

	assert.Equal(t, [][]string{{"a.ts", "b.ts", "a.ts"}}, res.Circular())
}

func TestCircular_SelfLoop(t *testing.T) {
	res := &Result{Graph: DependencyGraph{
		"a.ts": {"a.ts"},
		"b.ts": {},
	}}

	assert.Equal(t, [][]string{{"a.ts", "a.ts"}}, res.Circular())
}

func TestCircular_CycleWithTail(t *testing.T) {
	res := &Result{Graph: DependencyGraph{
		"entry.ts": {"a.ts"},
		"a.ts":     {"b.ts"},
		"b.ts":     {"a.ts"},
	}}

	// The entry file reaches the cycle but is not part of it.
	assert.Equal(t, [][]string{{"a.ts", "b.ts", "a.ts"}}, res.Circular())
}

func TestCircular_MultipleCyclesSorted(t *testing.T) {
	res := &Result{Graph: DependencyGraph{
		"m.ts": {"n.ts"},
		"n.ts": {"m.ts"},
		"a.ts": {"b.ts"},
		"b.ts": {"a.ts"},
	}}

	assert.Equal(t, [][]string{
		{"a.ts", "b.ts", "a.ts"},
		{"m.ts", "n.ts", "m.ts"},
	}, res.Circular())
}

func TestCircular_PackageEdgesIgnored(t *testing.T) {
	res := &Result{Graph: DependencyGraph{
		"a.ts": {"react", "b.ts"},
		"b.ts": {"react"},
	}}

	assert.Empty(t, res.Circular())
}

func TestLeaves(t *testing.T) {
	res := &Result{Graph: DependencyGraph{
		"a.ts": {"b.ts"},
		"b.ts": {},
		"c.ts": {},
	}}

	assert.Equal(t, []string{"b.ts", "c.ts"}, res.Leaves())
}

func TestOrphans(t *testing.T) {
	res := &Result{Graph: DependencyGraph{
		"entry.ts": {"a.ts"},
		"a.ts":     {},
		"lone.ts":  {},
	}}

	assert.Equal(t, []string{"entry.ts", "lone.ts"}, res.Orphans())
}

func TestPackages(t *testing.T) {
	res := &Result{
		Graph: DependencyGraph{
			"a.ts": {"react", "b.ts"},
			"b.ts": {},
		},
		Files: []string{"a.ts", "b.ts", "react"},
	}

	assert.Equal(t, []string{"react"}, res.Packages())
}

func TestDOT(t *testing.T) {
	res := &Result{
		Graph: DependencyGraph{
			"a.ts": {"b.ts", "react"},
			"b.ts": {},
		},
		Files: []string{"a.ts", "b.ts", "react"},
	}

	var buf bytes.Buffer
	require.NoError(t, res.DOT(&buf))
	out := buf.String()

	assert.Contains(t, out, "digraph")
	assert.Contains(t, out, `"a.ts"`)
	assert.Contains(t, out, `"b.ts"`)
	assert.Contains(t, out, `"react"`)
	assert.Contains(t, out, "->")
	// Package nodes are drawn as boxes.
	assert.Contains(t, out, "box")
}
