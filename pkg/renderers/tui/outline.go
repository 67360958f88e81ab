package tui

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-schemaforge/pkg/fieldtree"
)

type entry struct {
	path  fieldtree.Path
	node  fieldtree.Node
	label string
}

// outline flattens the forest in display order. Item slots are labelled with
// a "[]" marker since their names never reach the schema.
func outline(forest fieldtree.Forest, indent string) []entry {
	var out []entry
	_ = fieldtree.Walk(forest, func(path fieldtree.Path, node fieldtree.Node) error {
		out = append(out, entry{
			path:  path,
			node:  node,
			label: entryLabel(path, node, indent),
		})
		return nil
	})
	return out
}

func entryLabel(path fieldtree.Path, node fieldtree.Node, indent string) string {
	var b strings.Builder
	b.WriteString(strings.Repeat(indent, path.Depth()))
	if path.Last() == fieldtree.ItemIndex {
		b.WriteString("[] ")
	}
	name := node.Name
	if name == "" {
		name = `""`
	}
	fmt.Fprintf(&b, "%s (%s)", name, node.Kind)
	if node.Required {
		b.WriteString(" *")
	}
	return b.String()
}

func filterEntries(entries []entry, keep func(entry) bool) []entry {
	out := make([]entry, 0, len(entries))
	for _, e := range entries {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}

func labels(entries []entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.label
	}
	return out
}
