package fieldtree

import (
	"fmt"
	"strings"
)

// Kind enumerates the field types the editor can produce. The value doubles as
// the JSON Schema "type" keyword.
type Kind string

const (
	KindString  Kind = "string"
	KindNumber  Kind = "number"
	KindBoolean Kind = "boolean"
	KindObject  Kind = "object"
	KindArray   Kind = "array"
)

var allKinds = []Kind{KindString, KindNumber, KindBoolean, KindObject, KindArray}

// Kinds returns the supported kinds in menu order.
func Kinds() []Kind {
	return append([]Kind(nil), allKinds...)
}

// Valid reports whether k is one of the supported kinds.
func (k Kind) Valid() bool {
	for _, candidate := range allKinds {
		if k == candidate {
			return true
		}
	}
	return false
}

func (k Kind) String() string {
	return string(k)
}

// ParseKind normalises user input into a Kind.
func ParseKind(raw string) (Kind, error) {
	kind := Kind(strings.ToLower(strings.TrimSpace(raw)))
	if !kind.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidKind, raw)
	}
	return kind, nil
}
