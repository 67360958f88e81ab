package export

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-schemaforge/pkg/fieldtree"
	"github.com/goliatone/go-schemaforge/pkg/jsonschema"
	"github.com/goliatone/go-schemaforge/pkg/testsupport"
)

func sampleForest() fieldtree.Forest {
	return fieldtree.Forest{
		{ID: "1", Name: "name", Kind: fieldtree.KindString, Required: true},
		{ID: "2", Name: "age", Kind: fieldtree.KindNumber, Description: "Years"},
		{ID: "3", Name: "tags", Kind: fieldtree.KindArray, Item: &fieldtree.Node{
			ID: "4", Name: "item", Kind: fieldtree.KindString,
		}},
		{ID: "5", Name: "meta", Kind: fieldtree.KindObject, Properties: []fieldtree.Node{}},
	}
}

func TestDefaultRegistryLists(t *testing.T) {
	registry := NewDefaultRegistry(nil)
	if diff := cmp.Diff([]string{"json", "openapi", "yaml"}, registry.List()); diff != "" {
		t.Fatalf("registry mismatch (-want +got):\n%s", diff)
	}
	if !registry.Has(FormatYAML) {
		t.Fatalf("expected yaml exporter")
	}
}

func TestRegistryRejectsDuplicatesAndUnknown(t *testing.T) {
	registry := NewRegistry()
	registry.MustRegister(NewJSON(nil))

	err := registry.Register(NewJSON(nil), Exporter(nil), unnamedExporter{}, NewYAML(nil))
	for _, want := range []error{ErrDuplicateFormat, ErrNilExporter, ErrUnnamedExporter} {
		if !errors.Is(err, want) {
			t.Fatalf("expected %v in %v", want, err)
		}
	}
	if !registry.Has(FormatYAML) {
		t.Fatalf("valid exporter skipped after earlier failures")
	}
	_, err = registry.Get("toml")
	if !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("expected ErrUnknownFormat, got %v", err)
	}
}

func TestJSONExporterMatchesCompiler(t *testing.T) {
	compiler := jsonschema.New(jsonschema.WithTitle("Person"))
	doc, err := NewJSON(compiler).Export(context.Background(), sampleForest())
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	want, err := jsonschema.Marshal(compiler.Compile(sampleForest()))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if doc.String() != string(want) {
		t.Fatalf("json export differs from compiler output:\n%s\n---\n%s", want, doc.String())
	}
	if doc.Format() != FormatJSON || doc.ContentType() != "application/schema+json" {
		t.Fatalf("unexpected document metadata: %q %q", doc.Format(), doc.ContentType())
	}
}

func TestYAMLExporterBlockStyle(t *testing.T) {
	forest := fieldtree.Forest{
		{ID: "1", Name: "name", Kind: fieldtree.KindString, Required: true},
		{ID: "2", Name: "tags", Kind: fieldtree.KindArray, Item: &fieldtree.Node{
			ID: "3", Name: "item", Kind: fieldtree.KindString,
		}},
	}
	doc, err := NewYAML(nil).Export(context.Background(), forest)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	want := strings.Join([]string{
		"type: object",
		"properties:",
		"  name:",
		"    type: string",
		"  tags:",
		"    type: array",
		"    items:",
		"      type: string",
		"required:",
		"  - name",
		"",
	}, "\n")
	if diff := cmp.Diff(want, doc.String()); diff != "" {
		t.Fatalf("yaml mismatch (-want +got):\n%s", diff)
	}
}

func TestOpenAPIExporterEmbedsComponent(t *testing.T) {
	exporter := NewOpenAPI(WithComponentName("Person"), WithInfo("People", "2.1.0"))
	doc, err := exporter.Export(context.Background(), sampleForest())
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(doc.Raw(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got["openapi"] != DefaultOpenAPIVersion {
		t.Fatalf("unexpected openapi version: %v", got["openapi"])
	}
	info := got["info"].(map[string]any)
	if info["title"] != "People" || info["version"] != "2.1.0" {
		t.Fatalf("unexpected info: %v", info)
	}
	schemas := got["components"].(map[string]any)["schemas"].(map[string]any)
	person, err := json.Marshal(schemas["Person"])
	if err != nil {
		t.Fatalf("marshal component: %v", err)
	}
	want := `{
		"type": "object",
		"required": ["name"],
		"properties": {
			"name": {"type": "string"},
			"age": {"type": "number", "description": "Years"},
			"tags": {"type": "array", "items": {"type": "string"}},
			"meta": {"type": "object", "properties": {}}
		}
	}`
	if diff := testsupport.JSONDiff(t, []byte(want), person); diff != "" {
		t.Fatalf("component mismatch (-want +got):\n%s", diff)
	}
}

func TestOpenAPIExporterRejectsUnknownKind(t *testing.T) {
	forest := fieldtree.Forest{{ID: "1", Name: "odd", Kind: fieldtree.Kind("date")}}
	if _, err := NewOpenAPI().Export(context.Background(), forest); err == nil {
		t.Fatalf("expected validation error for unknown kind")
	}
}

func TestNewDocumentCopiesInput(t *testing.T) {
	raw := []byte(`{}`)
	doc, err := NewDocument("json", "application/json", raw)
	if err != nil {
		t.Fatalf("new document: %v", err)
	}
	raw[0] = 'x'
	if doc.String() != "{}" {
		t.Fatalf("document aliased caller buffer: %q", doc.String())
	}
	if _, err := NewDocument("", "", raw); err == nil {
		t.Fatalf("expected error for missing format")
	}
	if _, err := NewDocument("json", "", nil); err == nil {
		t.Fatalf("expected error for empty payload")
	}
}

type unnamedExporter struct{ *JSON }

func (unnamedExporter) Name() string { return "" }
