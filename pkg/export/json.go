package export

import (
	"context"

	"github.com/goliatone/go-schemaforge/pkg/fieldtree"
	"github.com/goliatone/go-schemaforge/pkg/jsonschema"
)

// JSON emits the compiled schema with two-space indentation.
type JSON struct {
	compiler *jsonschema.Compiler
}

// NewJSON returns the json exporter. A nil compiler uses the defaults.
func NewJSON(compiler *jsonschema.Compiler) *JSON {
	if compiler == nil {
		compiler = jsonschema.New()
	}
	return &JSON{compiler: compiler}
}

func (e *JSON) Name() string { return FormatJSON }

func (e *JSON) ContentType() string { return "application/schema+json" }

func (e *JSON) Export(_ context.Context, forest fieldtree.Forest) (Document, error) {
	raw, err := e.compiler.CompileJSON(forest)
	if err != nil {
		return Document{}, err
	}
	return NewDocument(e.Name(), e.ContentType(), raw)
}
