package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	gojson "github.com/goccy/go-json"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/goliatone/go-schemaforge/pkg/export"
	"github.com/goliatone/go-schemaforge/pkg/fieldtree"
	"github.com/goliatone/go-schemaforge/pkg/jsonschema"
	"github.com/goliatone/go-schemaforge/pkg/validation"
)

const maxBodyBytes = 64 << 10

type fieldsResponse struct {
	Version uint64           `json:"version"`
	Fields  fieldtree.Forest `json:"fields"`
}

type createdResponse struct {
	Field   fieldtree.Node   `json:"field"`
	Version uint64           `json:"version"`
	Fields  fieldtree.Forest `json:"fields"`
}

type lintResponse struct {
	Lint       validation.SchemaValidationResult `json:"lint"`
	MetaSchema validation.SchemaValidationResult `json:"metaschema"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// patchRequest mirrors fieldtree.Patch with kind as free text so unknown
// kinds can be rejected with a 400. Names and descriptions are stored as sent;
// the page escapes them on output.
type patchRequest struct {
	Name        *string `json:"name"`
	Kind        *string `json:"kind"`
	Required    *bool   `json:"required"`
	Description *string `json:"description"`
}

func (s *Server) handleListFields(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.fields())
}

func (s *Server) handleAddField(w http.ResponseWriter, r *http.Request) {
	node, err := s.session.AddRootField()
	s.recordMutation(r.Context(), "add_field", err)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeCreated(w, node)
}

func (s *Server) handleAddProperty(w http.ResponseWriter, r *http.Request) {
	path, ok := s.pathParam(w, r)
	if !ok {
		return
	}
	node, err := s.session.AddProperty(path)
	s.recordMutation(r.Context(), "add_property", err)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeCreated(w, node)
}

func (s *Server) handleUpdateField(w http.ResponseWriter, r *http.Request) {
	path, ok := s.pathParam(w, r)
	if !ok {
		return
	}
	patch, err := decodePatch(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	err = s.session.Update(path, patch)
	s.recordMutation(r.Context(), "update", err)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.fields())
}

func (s *Server) handleToggleRequired(w http.ResponseWriter, r *http.Request) {
	path, ok := s.pathParam(w, r)
	if !ok {
		return
	}
	err := s.session.ToggleRequired(path)
	s.recordMutation(r.Context(), "toggle_required", err)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.fields())
}

func (s *Server) handleDeleteField(w http.ResponseWriter, r *http.Request) {
	path, ok := s.pathParam(w, r)
	if !ok {
		return
	}
	err := s.session.Delete(path)
	s.recordMutation(r.Context(), "delete", err)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.fields())
}

func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	format := strings.TrimSpace(r.URL.Query().Get("format"))
	if format == "" {
		format = s.defaultFormat
	}
	doc, err := s.session.Export(r.Context(), format)
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", doc.ContentType())
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(doc.Raw()); err != nil {
		s.logger.Warn("write schema", F("error", err))
	}
}

func (s *Server) handleLint(w http.ResponseWriter, r *http.Request) {
	snap := s.session.Snapshot()
	raw, err := jsonschema.Marshal(s.session.CompileSnapshot(snap))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, lintResponse{
		Lint:       validation.Lint(snap.Forest),
		MetaSchema: validation.ValidateDocument(r.Context(), raw),
	})
}

func (s *Server) fields() fieldsResponse {
	snap := s.session.Snapshot()
	fields := snap.Forest
	if fields == nil {
		fields = fieldtree.Forest{}
	}
	return fieldsResponse{Version: snap.Version, Fields: fields}
}

func (s *Server) writeCreated(w http.ResponseWriter, node fieldtree.Node) {
	current := s.fields()
	s.writeJSON(w, http.StatusCreated, createdResponse{
		Field:   node,
		Version: current.Version,
		Fields:  current.Fields,
	})
}

func (s *Server) pathParam(w http.ResponseWriter, r *http.Request) (fieldtree.Path, bool) {
	path, err := fieldtree.ParsePath(r.PathValue("path"))
	if err != nil {
		s.writeError(w, err)
		return nil, false
	}
	return path, true
}

func decodePatch(r *http.Request) (fieldtree.Patch, error) {
	var req patchRequest
	dec := gojson.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return fieldtree.Patch{}, fmt.Errorf("%w: %v", errBadRequest, err)
	}

	patch := fieldtree.Patch{
		Name:        req.Name,
		Required:    req.Required,
		Description: req.Description,
	}
	if req.Kind != nil {
		kind, err := fieldtree.ParseKind(*req.Kind)
		if err != nil {
			return fieldtree.Patch{}, err
		}
		patch.Kind = &kind
	}
	return patch, nil
}

var errBadRequest = errors.New("server: malformed request body")

func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, fieldtree.ErrEmptyPath),
		errors.Is(err, fieldtree.ErrInvalidPath),
		errors.Is(err, fieldtree.ErrInvalidKind),
		errors.Is(err, export.ErrUnknownFormat):
		return http.StatusBadRequest
	case errors.Is(err, fieldtree.ErrPathOutOfRange):
		return http.StatusNotFound
	case errors.Is(err, fieldtree.ErrNotObject),
		errors.Is(err, fieldtree.ErrNotArray),
		errors.Is(err, fieldtree.ErrItemNotDeletable):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("handler error", F("error", err))
	}
	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := gojson.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Warn("write json response", F("error", err))
	}
}

func (s *Server) recordMutation(ctx context.Context, op string, err error) {
	s.mutations.Add(ctx, 1, metric.WithAttributes(
		attribute.String("schemaforge.op", op),
		attribute.Bool("schemaforge.ok", err == nil),
	))
}
