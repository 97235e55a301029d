// Package depseeker builds static, file-level dependency graphs for
// JavaScript and TypeScript source trees. Files are parsed with
// tree-sitter, module specifiers are resolved against the filesystem,
// and the transitive closure from an entry file or directory becomes a
// graph keyed by base-relative paths.
//
// # Pipeline
//
// A build runs three stages per file, fanning out concurrently across
// the dependency closure:
//
//  1. Scan: parse the file with the grammar matching its extension and
//     collect every static import, re-export, dynamic import, and
//     CommonJS require.
//
//  2. Resolve: turn each raw specifier into a concrete file (via
//     relative/absolute lookup, tsconfig path aliases, bundler aliases,
//     and extension/index probing) or an external package name.
//
//  3. Record: write the file's surviving edges into the graph and queue
//     unvisited file targets. A visited set makes traversal terminate
//     on cyclic graphs.
//
// # Usage
//
// Create an Engine, then build from an entry point:
//
//	eng, err := depseeker.New(
//		depseeker.WithBaseDir("path/to/project"),
//		depseeker.WithTSConfig("tsconfig.json"),
//		depseeker.WithIncludeNpm(true),
//	)
//	if err != nil { ... }
//
//	res, err := eng.BuildGraph(context.Background(), "src/index.ts")
//	if err != nil { ... }
//
//	for file, deps := range res.Graph { ... }
//
// # Result API
//
// The [Result] of a build answers the common structural questions:
//
//   - [Result.Circular]: dependency cycles, via strongly connected
//     components.
//   - [Result.Leaves]: files that depend on nothing.
//   - [Result.Orphans]: files nothing depends on.
//   - [Result.Packages]: external packages referenced by the tree.
//   - [Result.DOT]: Graphviz rendering of the whole graph.
//
// # Failure handling
//
// A file that cannot be read or parsed stays in the graph with an empty
// dependency list, and the failure is reported as a [Warning] on the
// Result. An alias configuration that fails to load degrades the same
// way. Only an unusable entry point fails the build: see
// [ErrInvalidEntry] and [ErrEntryExcluded].
package depseeker
