package jsonschema

import (
	invjsonschema "github.com/invopop/jsonschema"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/goliatone/go-schemaforge/pkg/fieldtree"
)

// Schema is the compiled document type.
type Schema = invjsonschema.Schema

// Properties is the insertion-ordered property map used by Schema.
type Properties = orderedmap.OrderedMap[string, *Schema]

// Draft202012 is the meta-schema URL stamped by WithDialect.
const Draft202012 = "https://json-schema.org/draft/2020-12/schema"

// Option configures the document envelope produced by a Compiler.
type Option func(*Compiler)

// WithDialect stamps the root with "$schema" set to Draft202012.
func WithDialect() Option {
	return func(c *Compiler) {
		c.dialect = true
	}
}

// WithID sets the root "$id".
func WithID(id string) Option {
	return func(c *Compiler) {
		c.id = id
	}
}

// WithTitle sets the root "title".
func WithTitle(title string) Option {
	return func(c *Compiler) {
		c.title = title
	}
}

// Compiler turns forests into JSON Schema documents. The zero value emits the
// bare object form with no envelope keywords.
type Compiler struct {
	dialect bool
	id      string
	title   string
}

// New constructs a Compiler.
func New(options ...Option) *Compiler {
	c := &Compiler{}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(c)
	}
	return c
}

// Compile builds the root object schema for forest.
func (c *Compiler) Compile(forest fieldtree.Forest) *Schema {
	root := compileObject(forest)
	if c == nil {
		return root
	}
	if c.dialect {
		root.Version = Draft202012
	}
	if c.id != "" {
		root.ID = invjsonschema.ID(c.id)
	}
	if c.title != "" {
		root.Title = c.title
	}
	return root
}

// Compile builds the root object schema for forest using a one-off Compiler.
func Compile(forest fieldtree.Forest, options ...Option) *Schema {
	return New(options...).Compile(forest)
}

// CompileField builds the schema for a single node and its descendants.
func CompileField(node fieldtree.Node) *Schema {
	var out *Schema
	switch node.Kind {
	case fieldtree.KindObject:
		out = compileObject(node.Properties)
	default:
		out = &Schema{Type: string(node.Kind)}
	}
	if node.Description != "" {
		out.Description = node.Description
	}
	if node.Kind == fieldtree.KindArray && node.Item != nil {
		out.Items = CompileField(*node.Item)
	}
	return out
}

func compileObject(children []fieldtree.Node) *Schema {
	props := orderedmap.New[string, *Schema]()
	var required []string
	for _, child := range children {
		props.Set(child.Name, CompileField(child))
		if child.Required {
			required = append(required, child.Name)
		}
	}
	return &Schema{
		Type:       string(fieldtree.KindObject),
		Properties: props,
		Required:   required,
	}
}

// PropertyNames lists the keys of s.Properties in document order.
func PropertyNames(s *Schema) []string {
	if s == nil || s.Properties == nil {
		return nil
	}
	names := make([]string, 0, s.Properties.Len())
	for pair := s.Properties.Oldest(); pair != nil; pair = pair.Next() {
		names = append(names, pair.Key)
	}
	return names
}

// Property returns the schema stored under name.
func Property(s *Schema, name string) (*Schema, bool) {
	if s == nil || s.Properties == nil {
		return nil, false
	}
	return s.Properties.Get(name)
}
