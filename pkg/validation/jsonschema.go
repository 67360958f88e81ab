package validation

import (
	"bytes"
	"context"
	"errors"
	"strings"

	sjsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

// DocumentURL names the in-memory resource validated by ValidateDocument.
const DocumentURL = "mem://schemaforge/schema.json"

// SchemaIssue represents a validation error with optional location metadata.
type SchemaIssue struct {
	Code    string `json:"code,omitempty"`
	Path    string `json:"path,omitempty"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// SchemaValidationResult captures validation outcomes for editor previews.
type SchemaValidationResult struct {
	Valid  bool          `json:"valid"`
	Issues []SchemaIssue `json:"issues,omitempty"`
}

// ValidateDocument checks a compiled document against its meta-schema
// (Draft 2020-12 unless the document declares another "$schema").
func ValidateDocument(ctx context.Context, raw []byte) SchemaValidationResult {
	result := SchemaValidationResult{Valid: true}
	if err := ctx.Err(); err != nil {
		return invalid(issueFromError(err))
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return invalid(SchemaIssue{Message: "document is empty"})
	}

	compiler := sjsonschema.NewCompiler()
	compiler.Draft = sjsonschema.Draft2020
	if err := compiler.AddResource(DocumentURL, bytes.NewReader(raw)); err != nil {
		return invalid(issueFromError(err))
	}
	if _, err := compiler.Compile(DocumentURL); err != nil {
		return invalid(issuesFromCompile(err)...)
	}
	return result
}

func invalid(issues ...SchemaIssue) SchemaValidationResult {
	return SchemaValidationResult{Valid: false, Issues: issues}
}

func issuesFromCompile(err error) []SchemaIssue {
	verr := validationError(err)
	if verr == nil {
		return []SchemaIssue{issueFromError(err)}
	}

	var issues []SchemaIssue
	for _, unit := range verr.BasicOutput().Errors {
		if strings.TrimSpace(unit.Error) == "" {
			continue
		}
		pointer := unit.InstanceLocation
		issues = append(issues, SchemaIssue{
			Code:    "metaschema",
			Path:    pointer,
			Field:   fieldPathFromPointer(pointer),
			Message: strings.TrimSpace(unit.Error),
		})
	}
	if len(issues) == 0 {
		return []SchemaIssue{issueFromError(err)}
	}
	return issues
}

// validationError digs the meta-schema failure out of a compile error.
func validationError(err error) *sjsonschema.ValidationError {
	var verr *sjsonschema.ValidationError
	if errors.As(err, &verr) {
		return verr
	}
	var serr *sjsonschema.SchemaError
	if errors.As(err, &serr) {
		if inner, ok := serr.Err.(*sjsonschema.ValidationError); ok {
			return inner
		}
	}
	return nil
}

func issueFromError(err error) SchemaIssue {
	if err == nil {
		return SchemaIssue{Message: "unknown error"}
	}

	msg := strings.TrimSpace(err.Error())
	path := extractJSONPointer(msg)
	if path != "" {
		msg = strings.Replace(msg, " at "+path, "", 1)
	}
	msg = strings.TrimPrefix(msg, "jsonschema: ")
	msg = strings.TrimSpace(msg)

	return SchemaIssue{
		Path:    path,
		Field:   fieldPathFromPointer(path),
		Message: msg,
	}
}

func extractJSONPointer(message string) string {
	if message == "" {
		return ""
	}
	if idx := strings.LastIndex(message, "#/"); idx >= 0 {
		candidate := strings.TrimSpace(message[idx+1:])
		return trimPointer(candidate)
	}
	return ""
}

func trimPointer(pointer string) string {
	if pointer == "" {
		return ""
	}
	trimmed := strings.TrimRight(pointer, ".)];,'\"")
	return strings.TrimSpace(trimmed)
}

// fieldPathFromPointer maps a schema pointer onto the dotted field names it
// addresses, stopping at the first keyword that is not a property or items
// step.
func fieldPathFromPointer(pointer string) string {
	trimmed := strings.TrimSpace(pointer)
	trimmed = strings.TrimPrefix(trimmed, "#")
	trimmed = strings.TrimPrefix(trimmed, "/")
	if trimmed == "" {
		return ""
	}

	parts := strings.Split(trimmed, "/")
	out := make([]string, 0, len(parts))
	for idx := 0; idx < len(parts); idx++ {
		segment := unescapePointer(parts[idx])
		switch segment {
		case "properties":
			if idx+1 < len(parts) {
				out = append(out, unescapePointer(parts[idx+1]))
				idx++
			}
		case "items":
			out = append(out, "items")
		default:
			return strings.Join(out, ".")
		}
	}
	return strings.Join(out, ".")
}

func unescapePointer(segment string) string {
	segment = strings.ReplaceAll(segment, "~1", "/")
	return strings.ReplaceAll(segment, "~0", "~")
}
