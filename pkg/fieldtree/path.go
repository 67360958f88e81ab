package fieldtree

import (
	"fmt"
	"strconv"
	"strings"
)

// ItemIndex is the path segment addressing an array node's item slot.
const ItemIndex = -1

const itemSegment = "item"

// Path addresses a node: the first segment indexes the root, following
// segments index object properties or select the array item via ItemIndex.
type Path []int

// Root returns a path to the i-th root field.
func Root(i int) Path {
	return Path{i}
}

// Child extends the path with a property index.
func (p Path) Child(i int) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, i)
}

// Item extends the path with the array item slot.
func (p Path) Item() Path {
	return p.Child(ItemIndex)
}

// Parent drops the last segment. The parent of a root path is empty.
func (p Path) Parent() Path {
	if len(p) == 0 {
		return nil
	}
	return append(Path(nil), p[:len(p)-1]...)
}

// Last returns the final segment.
func (p Path) Last() int {
	if len(p) == 0 {
		return 0
	}
	return p[len(p)-1]
}

// Depth reports the nesting level; root fields have depth 0.
func (p Path) Depth() int {
	if len(p) == 0 {
		return 0
	}
	return len(p) - 1
}

// String renders the dotted form, e.g. "0.item.2".
func (p Path) String() string {
	parts := make([]string, len(p))
	for i, segment := range p {
		if segment == ItemIndex {
			parts[i] = itemSegment
			continue
		}
		parts[i] = strconv.Itoa(segment)
	}
	return strings.Join(parts, ".")
}

// ParsePath reads the dotted form produced by Path.String.
func ParsePath(raw string) (Path, error) {
	trimmed := strings.Trim(strings.TrimSpace(raw), ".")
	if trimmed == "" {
		return nil, ErrEmptyPath
	}
	parts := strings.Split(trimmed, ".")
	out := make(Path, 0, len(parts))
	for i, part := range parts {
		if part == itemSegment {
			if i == 0 {
				return nil, fmt.Errorf("%w: %q starts with the item slot", ErrInvalidPath, raw)
			}
			out = append(out, ItemIndex)
			continue
		}
		idx, err := strconv.Atoi(part)
		if err != nil || idx < 0 {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPath, raw)
		}
		out = append(out, idx)
	}
	return out, nil
}

func pathError(err error, path Path) error {
	return fmt.Errorf("%w at %s", err, path)
}
