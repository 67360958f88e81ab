package schemaforge

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-schemaforge/pkg/export"
	"github.com/goliatone/go-schemaforge/pkg/fieldtree"
	"github.com/goliatone/go-schemaforge/pkg/testsupport"
)

func TestQuickStart(t *testing.T) {
	editor := NewEditor(fieldtree.WithIDGenerator(fieldtree.SequenceIDs("f")))

	forest, _ := editor.AddRootField(nil)
	forest, err := editor.UpdateNode(forest, Path{0}, fieldtree.Rename("tags"))
	if err != nil {
		t.Fatalf("rename: %v", err)
	}
	forest, err = editor.UpdateNode(forest, Path{0}, fieldtree.ChangeKind(KindArray))
	if err != nil {
		t.Fatalf("kind: %v", err)
	}

	out, err := CompileJSON(forest)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	want := `{"type":"object","properties":{"tags":{"type":"array","items":{"type":"string"}}}}`
	if diff := testsupport.JSONDiff(t, []byte(want), out); diff != "" {
		t.Fatalf("schema mismatch (-want +got):\n%s", diff)
	}
}

func TestExportUnknownFormat(t *testing.T) {
	_, err := Export(context.Background(), nil, "toml")
	if !errors.Is(err, export.ErrUnknownFormat) {
		t.Fatalf("expected ErrUnknownFormat, got %v", err)
	}
}
