package api

import (
	"net/http"
	"time"

	"github.com/rendis/dsviz/internal/catalog"
	"github.com/rendis/dsviz/pkg/schema"
)

// handleListItems lists catalog items. Filters: content_type, status,
// since (RFC 3339), expr (CEL over item), limit, offset.
func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request) {
	if err := requireDep(s.deps.Catalog != nil, "catalog"); err != nil {
		writeError(w, err)
		return
	}
	q := r.URL.Query()
	f := catalog.ItemFilter{
		ContentType: q.Get("content_type"),
		Status:      schema.ItemStatus(q.Get("status")),
		Expression:  q.Get("expr"),
		Limit:       queryInt(r, "limit", 100),
		Offset:      queryInt(r, "offset", 0),
	}
	if v := q.Get("since"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeError(w, badRequest("since must be RFC 3339"))
			return
		}
		f.Since = t
	}

	items, err := s.deps.Catalog.List(r.Context(), f)
	if err != nil {
		writeError(w, err)
		return
	}
	s.respond(w, r, http.StatusOK, map[string]any{"items": items, "count": len(items)})
}

func (s *Server) handleGetItem(w http.ResponseWriter, r *http.Request) {
	if err := requireDep(s.deps.Catalog != nil, "catalog"); err != nil {
		writeError(w, err)
		return
	}
	item, err := s.deps.Catalog.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *Server) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	if err := requireDep(s.deps.Catalog != nil, "catalog"); err != nil {
		writeError(w, err)
		return
	}
	id := r.PathValue("id")
	if err := s.deps.Catalog.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "id": id})
}

func (s *Server) handleItemStats(w http.ResponseWriter, r *http.Request) {
	if err := requireDep(s.deps.Catalog != nil, "catalog"); err != nil {
		writeError(w, err)
		return
	}
	st, err := s.deps.Catalog.Stats(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"stats":      st,
		"total_size": schema.FormatSize(st.TotalBytes),
	})
}
