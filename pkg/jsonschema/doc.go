// Package jsonschema compiles a field forest into a JSON Schema document.
//
// Compilation is pure and deterministic: the same forest always yields the
// same document, properties keep the order fields appear in the editor and
// "required" is only emitted when at least one direct child is required.
// Field names are used verbatim as property keys; when two siblings share a
// name the later one replaces the earlier schema while the key keeps its
// original position. Use pkg/validation to flag such collisions.
package jsonschema
