package testsupport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-schemaforge/pkg/fieldtree"
)

// MustLoadForest reads a JSON fixture describing a field forest.
func MustLoadForest(t *testing.T, path string) fieldtree.Forest {
	t.Helper()

	forest, err := LoadForest(path)
	if err != nil {
		t.Fatalf("load forest: %v", err)
	}
	return forest
}

// LoadForest returns a Forest without requiring testing.T so setup code can
// share fixtures.
func LoadForest(path string) (fieldtree.Forest, error) {
	if path == "" {
		return nil, errors.New("testsupport: forest path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("testsupport: read forest: %w", err)
	}
	var out fieldtree.Forest
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("testsupport: unmarshal forest: %w", err)
	}
	return out, nil
}

// JSONDiff decodes both payloads and returns a cmp diff of the generic values.
// Key order inside objects is ignored; array order is not.
func JSONDiff(t *testing.T, want, got []byte) string {
	t.Helper()

	var w, g any
	if err := json.Unmarshal(want, &w); err != nil {
		t.Fatalf("decode want: %v\n%s", err, want)
	}
	if err := json.Unmarshal(got, &g); err != nil {
		t.Fatalf("decode got: %v\n%s", err, got)
	}
	return cmp.Diff(w, g)
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// WriteMaybeGolden updates a golden file when UPDATE_GOLDENS is set. Returns
// true if the golden was written (test should exit early).
func WriteMaybeGolden(t *testing.T, path string, data []byte) bool {
	t.Helper()
	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}
