// Package schemaforge is the entry point for building field trees and
// compiling them to JSON Schema. It re-exports the core types and offers
// one-call helpers; the subpackages hold the full APIs.
package schemaforge

import (
	"context"

	"github.com/goliatone/go-schemaforge/pkg/export"
	"github.com/goliatone/go-schemaforge/pkg/fieldtree"
	"github.com/goliatone/go-schemaforge/pkg/jsonschema"
	"github.com/goliatone/go-schemaforge/pkg/session"
)

// Core aliases so callers can stay on the root import for simple use.
type (
	Node    = fieldtree.Node
	Forest  = fieldtree.Forest
	Path    = fieldtree.Path
	Kind    = fieldtree.Kind
	Patch   = fieldtree.Patch
	Schema  = jsonschema.Schema
	Session = session.Session
)

// Field kinds.
const (
	KindString  = fieldtree.KindString
	KindNumber  = fieldtree.KindNumber
	KindBoolean = fieldtree.KindBoolean
	KindObject  = fieldtree.KindObject
	KindArray   = fieldtree.KindArray
)

// NewEditor exposes the field tree editor constructor.
func NewEditor(options ...fieldtree.Option) *fieldtree.Editor {
	return fieldtree.NewEditor(options...)
}

// NewSession exposes the session constructor.
func NewSession(options ...session.Option) *session.Session {
	return session.New(options...)
}

// Compile converts forest into a JSON Schema document.
func Compile(forest Forest, options ...jsonschema.Option) *Schema {
	return jsonschema.Compile(forest, options...)
}

// CompileJSON compiles forest and returns the two-space indented document.
func CompileJSON(forest Forest, options ...jsonschema.Option) ([]byte, error) {
	return jsonschema.New(options...).CompileJSON(forest)
}

// Export serializes forest in the named format ("json", "yaml" or "openapi").
func Export(ctx context.Context, forest Forest, format string, options ...jsonschema.Option) (export.Document, error) {
	registry := export.NewDefaultRegistry(jsonschema.New(options...))
	exporter, err := registry.Get(format)
	if err != nil {
		return export.Document{}, err
	}
	return exporter.Export(ctx, forest)
}
