package api

import (
	"net/http"
	"strings"

	"github.com/rendis/dsviz/internal/diagram"
	"github.com/rendis/dsviz/internal/maps"
	"github.com/rendis/dsviz/pkg/schema"
)

// handleRenderStructure draws the current state of a structure.
// ?format= is ascii (default), mermaid, png or svg.
func (s *Server) handleRenderStructure(w http.ResponseWriter, r *http.Request) {
	kind, err := schema.ParseStructureKind(r.PathValue("kind"))
	if err != nil {
		writeError(w, err)
		return
	}
	st, err := s.deps.Service.State(kind)
	if err != nil {
		writeError(w, err)
		return
	}
	s.render(w, r, diagram.FromSnapshots(kind, st.Nodes, r.URL.Query().Get("highlight")))
}

// handleRenderMap draws a named map. ?path=a,b,c marks a route on it.
func (s *Server) handleRenderMap(w http.ResponseWriter, r *http.Request) {
	m, err := maps.Get(r.PathValue("name"))
	if err != nil {
		writeError(w, err)
		return
	}
	var path []string
	if p := r.URL.Query().Get("path"); p != "" {
		path = strings.Split(p, ",")
	}
	s.render(w, r, diagram.FromGraph(m.Name, m.Graph(), path, nil))
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, model *diagram.DiagramModel) {
	out, err := diagram.Render(r.Context(), model, r.URL.Query().Get("format"))
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", out.ContentType)
	w.WriteHeader(http.StatusOK)
	w.Write(out.Body)
}
