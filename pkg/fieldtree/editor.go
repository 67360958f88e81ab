package fieldtree

import "fmt"

// Patch lists the fields UpdateNode merges onto a node. Nil fields are left
// untouched.
type Patch struct {
	Name        *string `json:"name,omitempty"`
	Kind        *Kind   `json:"kind,omitempty"`
	Required    *bool   `json:"required,omitempty"`
	Description *string `json:"description,omitempty"`
}

// Rename returns a patch setting the name.
func Rename(name string) Patch {
	return Patch{Name: &name}
}

// ChangeKind returns a patch setting the kind.
func ChangeKind(kind Kind) Patch {
	return Patch{Kind: &kind}
}

// SetRequired returns a patch setting the required flag.
func SetRequired(required bool) Patch {
	return Patch{Required: &required}
}

// Describe returns a patch setting the description.
func Describe(description string) Patch {
	return Patch{Description: &description}
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.Name == nil && p.Kind == nil && p.Required == nil && p.Description == nil
}

// Option configures an Editor.
type Option func(*Editor)

// WithIDGenerator overrides the id source used for new nodes.
func WithIDGenerator(ids IDGenerator) Option {
	return func(e *Editor) {
		if ids != nil {
			e.ids = ids
		}
	}
}

// Editor applies copy-on-write mutations to forests. It holds no forest state
// of its own; only the id generator is shared across calls.
type Editor struct {
	ids IDGenerator
}

// NewEditor constructs an Editor using TimestampIDs unless overridden.
func NewEditor(options ...Option) *Editor {
	e := &Editor{ids: TimestampIDs()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(e)
	}
	return e
}

// NewField builds a fresh string field with a new id.
func (e *Editor) NewField(name string) Node {
	return Node{
		ID:   e.ids.NewID(),
		Name: name,
		Kind: KindString,
	}
}

// AddRootField appends a default field to the root and returns the new forest
// along with the created node.
func (e *Editor) AddRootField(forest Forest) (Forest, Node) {
	node := e.NewField(DefaultFieldName)
	out := cloneNodes(forest, 1)
	return append(Forest(out), node), node
}

// AddProperty appends a default field to the properties of the object node at
// parent.
func (e *Editor) AddProperty(forest Forest, parent Path) (Forest, Node, error) {
	node := e.NewField(DefaultFieldName)
	out, err := replaceAt(forest, parent, parent, func(target Node) (Node, error) {
		if !target.IsObject() {
			return Node{}, pathError(ErrNotObject, parent)
		}
		props := cloneNodes(target.Properties, 1)
		target.Properties = append(props, node)
		return target, nil
	})
	if err != nil {
		return forest, Node{}, err
	}
	return out, node, nil
}

// UpdateNode merges patch onto the node at path. Switching to object restores
// previously hidden properties or starts with none; switching to array
// restores the previous item or creates a default string item.
func (e *Editor) UpdateNode(forest Forest, path Path, patch Patch) (Forest, error) {
	if patch.Kind != nil && !patch.Kind.Valid() {
		return forest, fmt.Errorf("%w: %q", ErrInvalidKind, *patch.Kind)
	}
	out, err := replaceAt(forest, path, path, func(target Node) (Node, error) {
		return e.apply(target, patch), nil
	})
	if err != nil {
		return forest, err
	}
	return out, nil
}

// ToggleRequired flips the required flag of the node at path.
func (e *Editor) ToggleRequired(forest Forest, path Path) (Forest, error) {
	node, err := forest.At(path)
	if err != nil {
		return forest, err
	}
	return e.UpdateNode(forest, path, SetRequired(!node.Required))
}

// DeleteNode removes the node at path from its parent sequence. Addressing an
// array item slot leaves the forest unchanged and returns ErrItemNotDeletable.
func (e *Editor) DeleteNode(forest Forest, path Path) (Forest, error) {
	if len(path) == 0 {
		return forest, ErrEmptyPath
	}
	if _, err := forest.At(path); err != nil {
		return forest, err
	}
	last := path.Last()
	if last == ItemIndex {
		return forest, pathError(ErrItemNotDeletable, path)
	}
	if len(path) == 1 {
		return Forest(removeAt(forest, last)), nil
	}
	parent := path.Parent()
	out, err := replaceAt(forest, parent, path, func(target Node) (Node, error) {
		target.Properties = removeAt(target.Properties, last)
		return target, nil
	})
	if err != nil {
		return forest, err
	}
	return out, nil
}

func (e *Editor) apply(node Node, patch Patch) Node {
	if patch.Name != nil {
		node.Name = *patch.Name
	}
	if patch.Description != nil {
		node.Description = *patch.Description
	}
	if patch.Required != nil {
		node.Required = *patch.Required
	}
	if patch.Kind != nil {
		node = e.switchKind(node, *patch.Kind)
	}
	return node
}

func (e *Editor) switchKind(node Node, kind Kind) Node {
	if node.Kind == KindObject && kind != KindObject {
		node.stashedProperties = node.Properties
		node.Properties = nil
	}
	if node.Kind == KindArray && kind != KindArray {
		node.stashedItem = node.Item
		node.Item = nil
	}
	node.Kind = kind

	switch kind {
	case KindObject:
		if node.Properties == nil {
			node.Properties = node.stashedProperties
			node.stashedProperties = nil
		}
		if node.Properties == nil {
			node.Properties = []Node{}
		}
	case KindArray:
		if node.Item == nil {
			node.Item = node.stashedItem
			node.stashedItem = nil
		}
		if node.Item == nil {
			item := e.NewField(DefaultItemName)
			node.Item = &item
		}
	}
	return node
}

// replaceAt rebuilds the sequence along path, handing the addressed node to fn
// and writing its result back. full is only used for error messages.
func replaceAt(nodes []Node, path, full Path, fn func(Node) (Node, error)) ([]Node, error) {
	if len(path) == 0 {
		return nil, ErrEmptyPath
	}
	idx := path[0]
	if idx == ItemIndex {
		return nil, pathError(ErrNotArray, full)
	}
	if idx < 0 || idx >= len(nodes) {
		return nil, pathError(ErrPathOutOfRange, full)
	}
	updated, err := descend(nodes[idx], path[1:], full, fn)
	if err != nil {
		return nil, err
	}
	out := cloneNodes(nodes, 0)
	out[idx] = updated
	return out, nil
}

func descend(node Node, rest, full Path, fn func(Node) (Node, error)) (Node, error) {
	if len(rest) == 0 {
		return fn(node)
	}
	if rest[0] == ItemIndex {
		if !node.IsArray() || node.Item == nil {
			return Node{}, pathError(ErrNotArray, full)
		}
		item, err := descend(*node.Item, rest[1:], full, fn)
		if err != nil {
			return Node{}, err
		}
		node.Item = &item
		return node, nil
	}
	if !node.IsObject() {
		return Node{}, pathError(ErrNotObject, full)
	}
	props, err := replaceAt(node.Properties, rest, full, fn)
	if err != nil {
		return Node{}, err
	}
	node.Properties = props
	return node, nil
}

func removeAt(nodes []Node, idx int) []Node {
	out := make([]Node, 0, len(nodes)-1)
	out = append(out, nodes[:idx]...)
	return append(out, nodes[idx+1:]...)
}
