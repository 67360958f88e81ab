package jsonschema

import (
	"fmt"

	gojson "github.com/goccy/go-json"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/goliatone/go-schemaforge/pkg/fieldtree"
)

// Indent is the indentation used for exported documents.
const Indent = "  "

// document fixes the emitted key order: envelope keywords first, then type,
// description, properties, items and required. Schema itself serializes in
// struct order, which puts properties ahead of type.
type document struct {
	Schema      string                                    `json:"$schema,omitempty"`
	ID          string                                    `json:"$id,omitempty"`
	Title       string                                    `json:"title,omitempty"`
	Type        string                                    `json:"type,omitempty"`
	Description string                                    `json:"description,omitempty"`
	Properties  *orderedmap.OrderedMap[string, *document] `json:"properties,omitempty"`
	Items       *document                                 `json:"items,omitempty"`
	Required    []string                                  `json:"required,omitempty"`
}

// ordered copies the keywords the compiler sets. Anything else on s is not
// emitted.
func ordered(s *Schema) *document {
	if s == nil {
		return nil
	}
	out := &document{
		Schema:      s.Version,
		ID:          string(s.ID),
		Title:       s.Title,
		Type:        s.Type,
		Description: s.Description,
		Items:       ordered(s.Items),
		Required:    s.Required,
	}
	if s.Properties != nil {
		out.Properties = orderedmap.New[string, *document]()
		for pair := s.Properties.Oldest(); pair != nil; pair = pair.Next() {
			out.Properties.Set(pair.Key, ordered(pair.Value))
		}
	}
	return out
}

// Marshal renders the schema as pretty-printed JSON with two-space
// indentation, the form copied to the clipboard.
func Marshal(s *Schema) ([]byte, error) {
	if s == nil {
		return nil, fmt.Errorf("jsonschema: schema is nil")
	}
	out, err := gojson.MarshalIndent(ordered(s), "", Indent)
	if err != nil {
		return nil, fmt.Errorf("jsonschema: marshal: %w", err)
	}
	return out, nil
}

// MarshalCompact renders the schema without whitespace.
func MarshalCompact(s *Schema) ([]byte, error) {
	if s == nil {
		return nil, fmt.Errorf("jsonschema: schema is nil")
	}
	out, err := gojson.Marshal(ordered(s))
	if err != nil {
		return nil, fmt.Errorf("jsonschema: marshal: %w", err)
	}
	return out, nil
}

// CompileJSON compiles forest and returns the pretty-printed document.
func (c *Compiler) CompileJSON(forest fieldtree.Forest) ([]byte, error) {
	return Marshal(c.Compile(forest))
}
