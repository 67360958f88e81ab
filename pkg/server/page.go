package server

import (
	_ "embed"
	"fmt"
	"net/http"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-schemaforge/pkg/fieldtree"
	"github.com/goliatone/go-schemaforge/pkg/jsonschema"
	"github.com/goliatone/go-schemaforge/pkg/session"
)

//go:embed templates/editor.html
var editorTemplate string

func loadPage() (*pongo2.Template, error) {
	tpl, err := pongo2.FromString(editorTemplate)
	if err != nil {
		return nil, fmt.Errorf("server: parse editor template: %w", err)
	}
	return tpl, nil
}

type pageRow struct {
	Path     string
	Name        string
	Description string
	Kind        string
	Required    bool
	Depth       int
	IsItem      bool
	IsObject    bool
}

func (s *Server) handlePage(w http.ResponseWriter, _ *http.Request) {
	snap := s.session.Snapshot()
	raw, err := jsonschema.Marshal(s.session.CompileSnapshot(snap))
	if err != nil {
		s.writeError(w, err)
		return
	}

	var rows []pageRow
	_ = fieldtree.Walk(snap.Forest, func(path fieldtree.Path, node fieldtree.Node) error {
		rows = append(rows, pageRow{
			Path:        path.String(),
			Name:        node.Name,
			Description: node.Description,
			Kind:        node.Kind.String(),
			Required:    node.Required,
			Depth:       path.Depth(),
			IsItem:      path.Last() == fieldtree.ItemIndex,
			IsObject:    node.IsObject(),
		})
		return nil
	})

	kinds := make([]string, 0, len(fieldtree.Kinds()))
	for _, kind := range fieldtree.Kinds() {
		kinds = append(kinds, kind.String())
	}

	out, err := s.page.Execute(pongo2.Context{
		"title":   s.title,
		"version": snap.Version,
		"rows":    rows,
		"kinds":   kinds,
		"schema":  string(raw),

		"copied_message":      session.CopiedMessage,
		"copy_failed_message": session.CopyFailedMessage,
	})
	if err != nil {
		s.writeError(w, fmt.Errorf("server: render editor page: %w", err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(out)); err != nil {
		s.logger.Warn("write page", F("error", err))
	}
}
