package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rendis/dsviz/internal/maps"
	"github.com/rendis/dsviz/internal/streaming"
	"github.com/rendis/dsviz/internal/validation"
	"github.com/rendis/dsviz/internal/visualizer"
	"github.com/rendis/dsviz/pkg/schema"
)

type sortRequest struct {
	Algorithm string `json:"algorithm"`
	Array     []int  `json:"array"`
}

type searchRequest struct {
	Algorithm string `json:"algorithm"`
	Array     []int  `json:"array"`
	Target    int    `json:"target"`
}

func (s *Server) handleSort(w http.ResponseWriter, r *http.Request) {
	var body sortRequest
	if err := s.readBody(r, validation.DocSort, &body); err != nil {
		writeError(w, err)
		return
	}
	res, err := s.deps.Service.Sort(r.Context(), body.Algorithm, body.Array)
	if err != nil {
		writeError(w, err)
		return
	}
	s.respond(w, r, http.StatusOK, res)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var body searchRequest
	if err := s.readBody(r, validation.DocSearch, &body); err != nil {
		writeError(w, err)
		return
	}
	res, err := s.deps.Service.Search(r.Context(), body.Algorithm, body.Array, body.Target)
	if err != nil {
		writeError(w, err)
		return
	}
	s.respond(w, r, http.StatusOK, res)
}

func (s *Server) handleTraverse(w http.ResponseWriter, r *http.Request) {
	var body visualizer.TraverseRequest
	if err := s.readBody(r, validation.DocTraverse, &body); err != nil {
		writeError(w, err)
		return
	}
	res, err := s.deps.Service.Traverse(r.Context(), body)
	if err != nil {
		writeError(w, err)
		return
	}
	s.respond(w, r, http.StatusOK, res)
}

func (s *Server) handleListMaps(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"maps": maps.Names()})
}

// handleGetMap returns a named map with its city and road details.
func (s *Server) handleGetMap(w http.ResponseWriter, r *http.Request) {
	m, err := maps.Get(r.PathValue("name"))
	if err != nil {
		writeError(w, err)
		return
	}
	s.respond(w, r, http.StatusOK, m)
}

func (s *Server) handleShortestPath(w http.ResponseWriter, r *http.Request) {
	var body visualizer.PathRequest
	if err := s.readBody(r, validation.DocPath, &body); err != nil {
		writeError(w, err)
		return
	}
	res, err := s.deps.Service.ShortestPath(r.Context(), body)
	if err != nil {
		writeError(w, err)
		return
	}
	s.respond(w, r, http.StatusOK, res)
}

// routeRequest is the envelope broadcast when a client asks the others to
// plot a route.
type routeRequest struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// handleRouteRequest broadcasts the body as-is on the pathfinding channel.
func (s *Server) handleRouteRequest(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
	if err != nil || !json.Valid(raw) {
		writeError(w, badRequest("body must be a JSON document"))
		return
	}
	if err := s.publishRoute(r.Context(), raw); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{"success": true})
}

func (s *Server) publishRoute(ctx context.Context, raw json.RawMessage) error {
	return s.deps.Hub.Publish(ctx, streaming.StreamEvent{
		Channel:   schema.ChannelPathfind,
		EventType: schema.EventRouteRequest,
		Payload:   routeRequest{Type: schema.EventRouteRequest, Data: raw},
	})
}

// handleRandomGraph builds a random graph. Without ?seed= the current time
// seeds it.
func (s *Server) handleRandomGraph(w http.ResponseWriter, r *http.Request) {
	nodes := queryInt(r, "nodes", 10)
	edges := queryInt(r, "edges", 15)
	if nodes < 1 || nodes > 500 {
		writeError(w, badRequest("nodes must be between 1 and 500"))
		return
	}
	if edges < 0 || edges > 5000 {
		writeError(w, badRequest("edges must be between 0 and 5000"))
		return
	}
	seed := uint64(time.Now().UnixNano())
	if v := queryInt(r, "seed", -1); v >= 0 {
		seed = uint64(v)
	}
	s.respond(w, r, http.StatusOK, maps.RandomGraph(nodes, edges, seed))
}

// handleCreateGraph validates a graph document and echoes it back with any
// warnings.
func (s *Server) handleCreateGraph(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
	if err != nil {
		writeError(w, badRequest("read body: %v", err))
		return
	}
	doc, result := s.graphs.Check(raw)
	if err := result.ToError(); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"graph":    doc,
		"warnings": result.Warnings(),
	})
}
