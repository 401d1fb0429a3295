// Package parser defines the language adapter contract: given a file's
// bytes, an adapter yields symbols and raw (textually targeted) relations.
// Concrete adapters live in subpackages, one per supported language, and
// share the visitor idioms described in their doc comments.
package parser

import "github.com/codegraph-dev/codegraph/internal/model"

// FileInput is one file handed to an adapter.
type FileInput struct {
	Path     string // project-relative, normalized
	Content  []byte
	Language model.Language
}

// RawSymbol is a symbol as extracted, before it has been assigned a dense
// graph id. ParentIdx indexes into the same ParseResult.Symbols slice
// (-1 for none); the indexer translates it to a real SymbolID on insert.
type RawSymbol struct {
	Name       string
	Kind       model.Kind
	Line       int
	EndLine    int
	Signature  string
	Visibility model.Visibility
	ParentIdx  int
}

// RawRelation is a relation whose target is still a textual descriptor.
// EnclosingIdx indexes into ParseResult.Symbols, naming the symbol whose
// body subtree contained the use site (§4.1 contract: every raw relation
// belongs to some declared symbol).
type RawRelation struct {
	EnclosingIdx int
	TargetText   string
	Kind         model.RelationKind
	Line         int
}

// ParseResult is everything one adapter invocation produces for one file.
type ParseResult struct {
	Symbols   []RawSymbol
	Relations []RawRelation
}

// Adapter is the contract each language-specific parser implements.
type Adapter interface {
	// Language reports the language this adapter handles.
	Language() model.Language
	// Extensions lists the file extensions (with leading dot) this
	// adapter claims, used by the indexer's dispatch-by-extension.
	Extensions() []string
	// Parse extracts symbols and raw relations from one file's content.
	Parse(input FileInput) (*ParseResult, error)
}
