// Package export turns a field forest into serialized schema documents.
//
// Exporters are looked up by name through a Registry. The defaults are "json"
// (the compiled JSON Schema, two-space indented), "yaml" (the same document as
// block YAML with property order preserved) and "openapi" (an OpenAPI 3
// document carrying the schema as a named component).
package export
