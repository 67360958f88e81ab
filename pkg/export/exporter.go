package export

import (
	"context"

	"github.com/goliatone/go-schemaforge/pkg/fieldtree"
	"github.com/goliatone/go-schemaforge/pkg/jsonschema"
)

// Format names of the built-in exporters.
const (
	FormatJSON    = "json"
	FormatYAML    = "yaml"
	FormatOpenAPI = "openapi"
)

// Exporter serializes a forest snapshot.
type Exporter interface {
	Name() string
	ContentType() string
	Export(ctx context.Context, forest fieldtree.Forest) (Document, error)
}

// NewDefaultRegistry registers the json, yaml and openapi exporters, all
// compiling through compiler.
func NewDefaultRegistry(compiler *jsonschema.Compiler, opts ...OpenAPIOption) *Registry {
	registry := NewRegistry()
	registry.MustRegister(NewJSON(compiler), NewYAML(compiler), NewOpenAPI(opts...))
	return registry
}
