package export

import (
	"context"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
	gojson "github.com/goccy/go-json"

	"github.com/goliatone/go-schemaforge/pkg/fieldtree"
	"github.com/goliatone/go-schemaforge/pkg/jsonschema"
)

// Defaults for the openapi exporter envelope.
const (
	DefaultComponentName  = "Schema"
	DefaultOpenAPIVersion = "3.0.3"
	DefaultInfoVersion    = "1.0.0"
)

// OpenAPIOption configures the OpenAPI exporter.
type OpenAPIOption func(*OpenAPI)

// WithComponentName sets the key under components.schemas.
func WithComponentName(name string) OpenAPIOption {
	return func(e *OpenAPI) {
		if name != "" {
			e.component = name
		}
	}
}

// WithInfo sets info.title and info.version.
func WithInfo(title, version string) OpenAPIOption {
	return func(e *OpenAPI) {
		if title != "" {
			e.title = title
		}
		if version != "" {
			e.version = version
		}
	}
}

// OpenAPI wraps the schema in an OpenAPI 3 document. The document is
// validated with kin-openapi before it is serialized. OpenAPI schema maps are
// emitted with sorted keys, so property order is not preserved in this format.
type OpenAPI struct {
	component string
	title     string
	version   string
}

// NewOpenAPI returns the openapi exporter.
func NewOpenAPI(opts ...OpenAPIOption) *OpenAPI {
	e := &OpenAPI{
		component: DefaultComponentName,
		title:     DefaultComponentName,
		version:   DefaultInfoVersion,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(e)
	}
	return e
}

func (e *OpenAPI) Name() string { return FormatOpenAPI }

func (e *OpenAPI) ContentType() string { return "application/vnd.oai.openapi+json" }

func (e *OpenAPI) Export(ctx context.Context, forest fieldtree.Forest) (Document, error) {
	doc := e.Build(forest)
	if err := doc.Validate(ctx); err != nil {
		return Document{}, fmt.Errorf("export: openapi document invalid: %w", err)
	}
	raw, err := gojson.MarshalIndent(doc, "", jsonschema.Indent)
	if err != nil {
		return Document{}, fmt.Errorf("export: marshal openapi: %w", err)
	}
	return NewDocument(e.Name(), e.ContentType(), raw)
}

// Build assembles the OpenAPI document without validating it.
func (e *OpenAPI) Build(forest fieldtree.Forest) *openapi3.T {
	root := objectSchema(forest)
	return &openapi3.T{
		OpenAPI: DefaultOpenAPIVersion,
		Info: &openapi3.Info{
			Title:   e.title,
			Version: e.version,
		},
		Paths: openapi3.NewPaths(),
		Components: &openapi3.Components{
			Schemas: openapi3.Schemas{
				e.component: openapi3.NewSchemaRef("", root),
			},
		},
	}
}

func objectSchema(children []fieldtree.Node) *openapi3.Schema {
	out := openapi3.NewObjectSchema()
	for _, child := range children {
		out.Properties[child.Name] = openapi3.NewSchemaRef("", fieldSchema(child))
		if child.Required {
			out.Required = append(out.Required, child.Name)
		}
	}
	return out
}

func fieldSchema(node fieldtree.Node) *openapi3.Schema {
	var out *openapi3.Schema
	switch node.Kind {
	case fieldtree.KindObject:
		out = objectSchema(node.Properties)
	case fieldtree.KindArray:
		out = openapi3.NewArraySchema()
		if node.Item != nil {
			out.Items = openapi3.NewSchemaRef("", fieldSchema(*node.Item))
		}
	case fieldtree.KindString:
		out = openapi3.NewStringSchema()
	case fieldtree.KindNumber:
		out = openapi3.NewFloat64Schema()
	case fieldtree.KindBoolean:
		out = openapi3.NewBoolSchema()
	default:
		out = openapi3.NewSchema()
		out.Type = &openapi3.Types{string(node.Kind)}
	}
	out.Description = node.Description
	return out
}
