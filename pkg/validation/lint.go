package validation

import (
	"fmt"
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-schemaforge/pkg/fieldtree"
)

// Lint issue codes.
const (
	CodeEmptyName     = "empty-name"
	CodeNameSpacing   = "name-whitespace"
	CodeDuplicateName = "duplicate-name"
	CodeInvalidKind   = "invalid-kind"
	CodeMissingItem   = "missing-item"
	CodeMarkup        = "markup"
)

// Lint reports advisory issues in a forest. It never changes compilation:
// duplicate sibling names still compile last-write-wins, Lint only points
// them out. Path is the dotted index path, Field the dotted name path.
func Lint(forest fieldtree.Forest) SchemaValidationResult {
	l := linter{}
	l.siblings(forest, nil, nil)
	return SchemaValidationResult{Valid: len(l.issues) == 0, Issues: l.issues}
}

type linter struct {
	issues []SchemaIssue
}

func (l *linter) siblings(nodes []fieldtree.Node, parent fieldtree.Path, names []string) {
	seen := make(map[string]int, len(nodes))
	for idx, node := range nodes {
		path := parent.Child(idx)
		field := append(append([]string(nil), names...), node.Name)
		switch {
		case node.Name == "":
			l.add(CodeEmptyName, path, field, "name is empty")
		case strings.TrimSpace(node.Name) != node.Name:
			l.add(CodeNameSpacing, path, field, fmt.Sprintf("name %q has leading or trailing whitespace", node.Name))
		}
		if hasMarkup(node.Name) {
			l.add(CodeMarkup, path, field, fmt.Sprintf("name %q contains HTML markup", node.Name))
		}
		if first, ok := seen[node.Name]; ok && node.Name != "" {
			l.add(CodeDuplicateName, path, field,
				fmt.Sprintf("duplicate property name %q (first defined at %s)", node.Name, parent.Child(first)))
		} else {
			seen[node.Name] = idx
		}
		l.node(node, path, field)
	}
}

// node checks kind-specific structure. Item names never reach the schema, so
// only sibling lists get name checks.
func (l *linter) node(node fieldtree.Node, path fieldtree.Path, field []string) {
	if hasMarkup(node.Description) {
		l.add(CodeMarkup, path, field, "description contains HTML markup")
	}
	if !node.Kind.Valid() {
		l.add(CodeInvalidKind, path, field, fmt.Sprintf("unsupported kind %q", node.Kind))
		return
	}
	switch node.Kind {
	case fieldtree.KindObject:
		l.siblings(node.Properties, path, field)
	case fieldtree.KindArray:
		if node.Item == nil {
			l.add(CodeMissingItem, path, field, "array has no item definition")
			return
		}
		itemField := append(append([]string(nil), field...), "items")
		l.node(*node.Item, path.Item(), itemField)
	}
}

func (l *linter) add(code string, path fieldtree.Path, field []string, message string) {
	l.issues = append(l.issues, SchemaIssue{
		Code:    code,
		Path:    path.String(),
		Field:   strings.Join(field, "."),
		Message: message,
	})
}

var (
	strictOnce   sync.Once
	strictPolicy *bluemonday.Policy
)

// hasMarkup reports whether the strict policy would strip anything from s.
// Entities the policy escapes are decoded first so "a & b" is plain text.
func hasMarkup(s string) bool {
	if !strings.ContainsAny(s, "<>") {
		return false
	}
	strictOnce.Do(func() {
		strictPolicy = bluemonday.StrictPolicy()
	})
	return html.UnescapeString(strictPolicy.Sanitize(s)) != s
}
