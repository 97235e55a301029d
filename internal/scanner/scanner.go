// Package scanner extracts module references from JavaScript and
// TypeScript sources.
//
// Files are parsed with tree-sitter grammars selected by extension, and
// the syntax tree is walked once for static imports, re-exports, dynamic
// imports, and CommonJS requires. The scanner reports what a file
// references; deciding what each reference points at is the resolver's
// job.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// ErrUnsupportedLanguage is returned when a file's extension has no
// registered grammar.
var ErrUnsupportedLanguage = errors.New("unsupported language")

// Kind classifies how a module reference appears in source.
type Kind int

const (
	// KindImport is a static import declaration, including bare
	// side-effect imports.
	KindImport Kind = iota
	// KindReExport is an export declaration with a source clause.
	KindReExport
	// KindDynamicImport is an import() call expression.
	KindDynamicImport
	// KindRequire is a require() call or an import-equals-require
	// declaration.
	KindRequire
)

func (k Kind) String() string {
	switch k {
	case KindImport:
		return "import"
	case KindReExport:
		return "re-export"
	case KindDynamicImport:
		return "dynamic-import"
	case KindRequire:
		return "require"
	default:
		return "unknown"
	}
}

// Import is one module reference found in a source file.
type Import struct {
	// Specifier is the raw module specifier text, unmodified.
	Specifier string
	// Kind records the syntactic form the reference appeared in.
	Kind Kind
	// TypeOnly marks references that exist purely for the type system:
	// an import/export marked `type` at the statement level, or one
	// whose named specifiers are all individually type-marked.
	TypeOnly bool
}

// Extract parses content and returns every module reference it declares,
// in source order. A file whose extension has no grammar fails with
// ErrUnsupportedLanguage; a parser failure is returned as-is. Syntax
// errors inside the file do not fail extraction: tree-sitter produces a
// partial tree and the scanner reports whatever references survived.
func Extract(ctx context.Context, path string, content []byte) ([]Import, error) {
	lang, ok := LanguageForFile(path)
	if !ok {
		return nil, fmt.Errorf("%s: %w", path, ErrUnsupportedLanguage)
	}
	grammar, ok := GrammarForLanguage(lang)
	if !ok {
		return nil, fmt.Errorf("%s (%s): %w", path, lang, ErrUnsupportedLanguage)
	}

	parser := sitter.NewParser()
	parser.SetLanguage(grammar)
	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	defer tree.Close()

	var imports []Import
	iter := sitter.NewIterator(tree.RootNode(), sitter.DFSMode)
	for {
		node, err := iter.Next()
		if err != nil || node == nil {
			break
		}
		switch node.Type() {
		case "import_statement":
			if imp, ok := importStatement(node, content); ok {
				imports = append(imports, imp)
			}
		case "export_statement":
			if imp, ok := exportStatement(node, content); ok {
				imports = append(imports, imp)
			}
		case "call_expression":
			if imp, ok := callExpression(node, content); ok {
				imports = append(imports, imp)
			}
		}
	}
	return imports, nil
}

// importStatement handles `import ... from 'x'`, bare `import 'x'`, and
// the TypeScript `import x = require('x')` form.
func importStatement(node *sitter.Node, content []byte) (Import, bool) {
	if clause := childOfType(node, "import_require_clause"); clause != nil {
		source := clause.ChildByFieldName("source")
		if source == nil {
			return Import{}, false
		}
		spec := stringText(source, content)
		if spec == "" {
			return Import{}, false
		}
		return Import{Specifier: spec, Kind: KindRequire}, true
	}

	source := node.ChildByFieldName("source")
	if source == nil {
		return Import{}, false
	}
	spec := stringText(source, content)
	if spec == "" {
		return Import{}, false
	}
	return Import{
		Specifier: spec,
		Kind:      KindImport,
		TypeOnly:  hasTypeKeyword(node) || allImportSpecifiersTyped(node),
	}, true
}

// exportStatement handles re-exports only: an export with no source
// clause references nothing outside the file.
func exportStatement(node *sitter.Node, content []byte) (Import, bool) {
	source := node.ChildByFieldName("source")
	if source == nil {
		return Import{}, false
	}
	spec := stringText(source, content)
	if spec == "" {
		return Import{}, false
	}
	return Import{
		Specifier: spec,
		Kind:      KindReExport,
		TypeOnly:  hasTypeKeyword(node) || allExportSpecifiersTyped(node),
	}, true
}

// callExpression handles `import('x')` and `require('x')`. Only a plain
// string literal argument is a static reference; template strings and
// computed expressions are skipped.
func callExpression(node *sitter.Node, content []byte) (Import, bool) {
	fn := node.ChildByFieldName("function")
	args := node.ChildByFieldName("arguments")
	if fn == nil || args == nil {
		return Import{}, false
	}

	var kind Kind
	switch {
	case fn.Type() == "import":
		kind = KindDynamicImport
	case fn.Type() == "identifier" && fn.Content(content) == "require":
		kind = KindRequire
	default:
		return Import{}, false
	}

	if args.NamedChildCount() == 0 {
		return Import{}, false
	}
	arg := args.NamedChild(0)
	if arg.Type() != "string" {
		return Import{}, false
	}
	spec := stringText(arg, content)
	if spec == "" {
		return Import{}, false
	}
	return Import{Specifier: spec, Kind: kind}, true
}

// hasTypeKeyword reports a statement-level `type` marker, as in
// `import type { A } from 'x'` or `export type * from 'x'`.
func hasTypeKeyword(node *sitter.Node) bool {
	for i := 0; i < int(node.ChildCount()); i++ {
		if node.Child(i).Type() == "type" {
			return true
		}
	}
	return false
}

// allImportSpecifiersTyped reports whether every binding the import
// introduces is individually type-marked, as in
// `import { type A, type B } from 'x'`. A default or namespace binding
// always carries a value.
func allImportSpecifiersTyped(node *sitter.Node) bool {
	clause := childOfType(node, "import_clause")
	if clause == nil {
		return false
	}
	saw := false
	for i := 0; i < int(clause.ChildCount()); i++ {
		child := clause.Child(i)
		switch child.Type() {
		case "identifier", "namespace_import":
			return false
		case "named_imports":
			for j := 0; j < int(child.ChildCount()); j++ {
				spec := child.Child(j)
				if spec.Type() != "import_specifier" {
					continue
				}
				saw = true
				if !hasTypeKeyword(spec) {
					return false
				}
			}
		}
	}
	return saw
}

// allExportSpecifiersTyped is the re-export counterpart: true for
// `export { type A } from 'x'` when every specifier is type-marked.
func allExportSpecifiersTyped(node *sitter.Node) bool {
	clause := childOfType(node, "export_clause")
	if clause == nil {
		return false
	}
	saw := false
	for i := 0; i < int(clause.ChildCount()); i++ {
		spec := clause.Child(i)
		if spec.Type() != "export_specifier" {
			continue
		}
		saw = true
		if !hasTypeKeyword(spec) {
			return false
		}
	}
	return saw
}

func childOfType(node *sitter.Node, nodeType string) *sitter.Node {
	for i := 0; i < int(node.ChildCount()); i++ {
		if child := node.Child(i); child.Type() == nodeType {
			return child
		}
	}
	return nil
}

// stringText returns the literal text of a string node without quotes.
func stringText(node *sitter.Node, content []byte) string {
	for i := 0; i < int(node.ChildCount()); i++ {
		if child := node.Child(i); child.Type() == "string_fragment" {
			return child.Content(content)
		}
	}
	return strings.Trim(node.Content(content), "\"'`")
}
