package fieldtree

import "errors"

// SkipChildren can be returned from a WalkFunc to skip the node's descendants.
var SkipChildren = errors.New("fieldtree: skip children")

// WalkFunc is called for every node in depth-first, pre-order sequence.
type WalkFunc func(path Path, node Node) error

// Walk visits every node of the forest: properties in order, then the array
// item. Returning an error other than SkipChildren stops the walk.
func Walk(forest Forest, fn WalkFunc) error {
	for i, node := range forest {
		if err := walkNode(Root(i), node, fn); err != nil {
			return err
		}
	}
	return nil
}

func walkNode(path Path, node Node, fn WalkFunc) error {
	if err := fn(path, node); err != nil {
		if errors.Is(err, SkipChildren) {
			return nil
		}
		return err
	}
	if node.IsObject() {
		for i, child := range node.Properties {
			if err := walkNode(path.Child(i), child, fn); err != nil {
				return err
			}
		}
	}
	if node.IsArray() && node.Item != nil {
		return walkNode(path.Item(), *node.Item, fn)
	}
	return nil
}

// Count returns the number of nodes in the forest, items included.
func Count(forest Forest) int {
	total := 0
	_ = Walk(forest, func(Path, Node) error {
		total++
		return nil
	})
	return total
}
