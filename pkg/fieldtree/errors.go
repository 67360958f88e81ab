package fieldtree

import "errors"

var (
	// ErrEmptyPath is returned when an operation needs at least one segment.
	ErrEmptyPath = errors.New("fieldtree: empty path")
	// ErrInvalidPath signals a path string that cannot be parsed.
	ErrInvalidPath = errors.New("fieldtree: invalid path")
	// ErrPathOutOfRange signals an index beyond the addressed sequence.
	ErrPathOutOfRange = errors.New("fieldtree: path index out of range")
	// ErrNotObject is returned when properties are addressed on a non-object node.
	ErrNotObject = errors.New("fieldtree: node is not an object")
	// ErrNotArray is returned when the item slot is addressed on a non-array node.
	ErrNotArray = errors.New("fieldtree: node is not an array")
	// ErrItemNotDeletable reports the array item slot cannot be removed, only
	// retyped. The forest is returned unchanged alongside it.
	ErrItemNotDeletable = errors.New("fieldtree: array item cannot be deleted")
	// ErrInvalidKind signals a kind outside the supported set.
	ErrInvalidKind = errors.New("fieldtree: invalid kind")
)
