package fieldtree

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParsePathRoundTrip(t *testing.T) {
	cases := map[string]Path{
		"0":        {0},
		"2.1":      {2, 1},
		"0.item":   {0, ItemIndex},
		"3.item.0": {3, ItemIndex, 0},
	}
	for raw, want := range cases {
		got, err := ParsePath(raw)
		if err != nil {
			t.Fatalf("parse %q: %v", raw, err)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("parse %q (-want +got):\n%s", raw, diff)
		}
		if got.String() != raw {
			t.Fatalf("expected %q, got %q", raw, got.String())
		}
	}
}

func TestParsePathErrors(t *testing.T) {
	if _, err := ParsePath(""); !errors.Is(err, ErrEmptyPath) {
		t.Fatalf("expected ErrEmptyPath, got %v", err)
	}
	for _, raw := range []string{"a", "1.-2", "item.0", "1..2"} {
		if _, err := ParsePath(raw); !errors.Is(err, ErrInvalidPath) {
			t.Fatalf("%q: expected ErrInvalidPath, got %v", raw, err)
		}
	}
}

func TestPathHelpers(t *testing.T) {
	p := Root(1).Child(2).Item()
	if p.String() != "1.2.item" {
		t.Fatalf("unexpected path %s", p)
	}
	if p.Parent().String() != "1.2" {
		t.Fatalf("unexpected parent %s", p.Parent())
	}
	if p.Depth() != 2 || p.Last() != ItemIndex {
		t.Fatalf("unexpected depth/last: %d/%d", p.Depth(), p.Last())
	}
	base := Root(0)
	_ = base.Child(1)
	_ = base.Child(2)
	if len(base) != 1 {
		t.Fatalf("Child must not alias the receiver")
	}
}

func TestNodeJSONExposesChildrenByKind(t *testing.T) {
	editor := NewEditor(WithIDGenerator(SequenceIDs("n")))
	forest, _ := editor.AddRootField(nil)
	forest, _ = editor.UpdateNode(forest, Root(0), ChangeKind(KindObject))
	forest, _ = editor.AddRootField(forest)
	forest, _ = editor.UpdateNode(forest, Root(1), ChangeKind(KindArray))

	raw, err := json.Marshal(forest)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got []map[string]any
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	want := []map[string]any{
		{"id": "n1", "name": "newField", "kind": "object", "required": false, "properties": []any{}},
		{"id": "n2", "name": "newField", "kind": "array", "required": false, "item": map[string]any{
			"id": "n3", "name": "item", "kind": "string", "required": false,
		}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("json mismatch (-want +got):\n%s", diff)
	}
}

func TestNodeUnmarshalDropsMismatchedChildren(t *testing.T) {
	raw := `[
		{"id":"a","name":"tags","kind":"array","item":{"id":"b","name":"item","kind":"string"},"properties":[{"id":"x","name":"stray","kind":"string"}]},
		{"id":"c","name":"meta","kind":"object"}
	]`
	var forest Forest
	if err := json.Unmarshal([]byte(raw), &forest); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if forest[0].Properties != nil {
		t.Fatalf("array node kept properties: %+v", forest[0].Properties)
	}
	if forest[0].Item == nil || forest[0].Item.ID != "b" {
		t.Fatalf("array item lost: %+v", forest[0].Item)
	}
	if forest[1].Properties == nil || len(forest[1].Properties) != 0 {
		t.Fatalf("object node should decode with empty properties, got %#v", forest[1].Properties)
	}
}
