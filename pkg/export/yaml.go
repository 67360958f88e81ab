package export

import (
	"bytes"
	"context"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-schemaforge/pkg/fieldtree"
	"github.com/goliatone/go-schemaforge/pkg/jsonschema"
)

// YAML emits the compiled schema as block YAML. The document is decoded into
// a yaml.Node tree so mapping order follows the JSON output.
type YAML struct {
	compiler *jsonschema.Compiler
}

// NewYAML returns the yaml exporter. A nil compiler uses the defaults.
func NewYAML(compiler *jsonschema.Compiler) *YAML {
	if compiler == nil {
		compiler = jsonschema.New()
	}
	return &YAML{compiler: compiler}
}

func (e *YAML) Name() string { return FormatYAML }

func (e *YAML) ContentType() string { return "application/yaml" }

func (e *YAML) Export(_ context.Context, forest fieldtree.Forest) (Document, error) {
	raw, err := jsonschema.MarshalCompact(e.compiler.Compile(forest))
	if err != nil {
		return Document{}, err
	}
	out, err := jsonToYAML(raw)
	if err != nil {
		return Document{}, err
	}
	return NewDocument(e.Name(), e.ContentType(), out)
}

func jsonToYAML(raw []byte) ([]byte, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(raw, &node); err != nil {
		return nil, fmt.Errorf("export: decode yaml: %w", err)
	}
	blockStyle(&node)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&node); err != nil {
		return nil, fmt.Errorf("export: encode yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("export: encode yaml: %w", err)
	}
	return buf.Bytes(), nil
}

// blockStyle drops the flow and quoting styles inherited from JSON input.
func blockStyle(node *yaml.Node) {
	node.Style = 0
	for _, child := range node.Content {
		blockStyle(child)
	}
}
