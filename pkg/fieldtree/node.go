package fieldtree

import "encoding/json"

// Default names given to freshly created nodes.
const (
	DefaultFieldName = "newField"
	DefaultItemName  = "item"
)

// Node is a single field definition. Properties is only populated for object
// nodes and Item only for array nodes; Editor maintains that invariant across
// kind changes.
type Node struct {
	ID          string
	Name        string
	Kind        Kind
	Required    bool
	Description string
	Properties  []Node
	Item        *Node

	// Children hidden by a kind change, restored when the node switches back.
	stashedProperties []Node
	stashedItem       *Node
}

// IsObject reports whether the node exposes properties.
func (n Node) IsObject() bool {
	return n.Kind == KindObject
}

// IsArray reports whether the node exposes an item slot.
func (n Node) IsArray() bool {
	return n.Kind == KindArray
}

type nodeJSON struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Kind        Kind    `json:"kind"`
	Required    bool    `json:"required"`
	Description string  `json:"description,omitempty"`
	Properties  *[]Node `json:"properties,omitempty"`
	Item        *Node   `json:"item,omitempty"`
}

// MarshalJSON emits properties only for objects (an empty list included) and
// item only for arrays.
func (n Node) MarshalJSON() ([]byte, error) {
	out := nodeJSON{
		ID:          n.ID,
		Name:        n.Name,
		Kind:        n.Kind,
		Required:    n.Required,
		Description: n.Description,
	}
	if n.IsObject() {
		props := n.Properties
		if props == nil {
			props = []Node{}
		}
		out.Properties = &props
	}
	if n.IsArray() {
		out.Item = n.Item
	}
	return json.Marshal(out)
}

// UnmarshalJSON is the inverse of MarshalJSON. Children that do not match the
// decoded kind are dropped.
func (n *Node) UnmarshalJSON(data []byte) error {
	var in nodeJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*n = Node{
		ID:          in.ID,
		Name:        in.Name,
		Kind:        in.Kind,
		Required:    in.Required,
		Description: in.Description,
	}
	if n.IsObject() {
		n.Properties = []Node{}
		if in.Properties != nil {
			n.Properties = *in.Properties
		}
	}
	if n.IsArray() {
		n.Item = in.Item
	}
	return nil
}

// Forest is the ordered top-level collection of fields.
type Forest []Node

// At resolves the node addressed by path.
func (f Forest) At(path Path) (Node, error) {
	if len(path) == 0 {
		return Node{}, ErrEmptyPath
	}
	nodes := []Node(f)
	var current Node
	for i, segment := range path {
		if segment == ItemIndex {
			if i == 0 {
				return Node{}, pathError(ErrNotArray, path)
			}
			if !current.IsArray() || current.Item == nil {
				return Node{}, pathError(ErrNotArray, path)
			}
			current = *current.Item
			continue
		}
		if i > 0 {
			if !current.IsObject() {
				return Node{}, pathError(ErrNotObject, path)
			}
			nodes = current.Properties
		}
		if segment < 0 || segment >= len(nodes) {
			return Node{}, pathError(ErrPathOutOfRange, path)
		}
		current = nodes[segment]
	}
	return current, nil
}

func cloneNodes(nodes []Node, extra int) []Node {
	out := make([]Node, len(nodes), len(nodes)+extra)
	copy(out, nodes)
	return out
}
