// Package api serves the HTTP surface: structure and algorithm operations,
// map and graph sources, rendering, the item catalog, reset jobs and the
// SSE and WebSocket streams.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rendis/dsviz/internal/catalog"
	"github.com/rendis/dsviz/internal/expressions"
	"github.com/rendis/dsviz/internal/logging"
	"github.com/rendis/dsviz/internal/metrics"
	"github.com/rendis/dsviz/internal/scheduler"
	"github.com/rendis/dsviz/internal/streaming"
	"github.com/rendis/dsviz/internal/validation"
	"github.com/rendis/dsviz/internal/visualizer"
	"github.com/rendis/dsviz/pkg/schema"
)

const defaultMaxUpload = 32 << 20

// Deps holds the dependencies for the API server. Service, Hub and
// Validator are required; a nil Catalog, Scheduler or Metrics disables the
// routes that need them.
type Deps struct {
	Service   *visualizer.Service
	Hub       streaming.EventHub
	Validator *validation.JSONSchemaValidator
	Catalog   catalog.Store
	Scheduler *scheduler.Scheduler
	Metrics   *metrics.Metrics
	JQ        *expressions.GoJQEngine
	Logger    *slog.Logger
	MaxUpload int64
}

// Server serves the HTTP API.
type Server struct {
	deps     Deps
	graphs   *validation.GraphValidator
	upgrader websocket.Upgrader
	started  time.Time
}

// NewServer creates a Server.
func NewServer(deps Deps) (*Server, error) {
	deps.Logger = logging.Default(deps.Logger)
	if deps.MaxUpload <= 0 {
		deps.MaxUpload = defaultMaxUpload
	}
	if deps.JQ == nil {
		deps.JQ = expressions.NewGoJQEngine()
	}
	if deps.Validator == nil {
		v, err := validation.NewJSONSchemaValidator()
		if err != nil {
			return nil, err
		}
		deps.Validator = v
	}
	graphs, err := validation.NewGraphValidator(deps.Validator)
	if err != nil {
		return nil, err
	}
	return &Server{
		deps:   deps,
		graphs: graphs,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		started: time.Now(),
	}, nil
}

// Handler returns the HTTP handler for every route.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Structures.
	for _, kind := range schema.StructureKinds {
		base := "/api/" + string(kind)
		mux.HandleFunc("GET "+base+"/state", s.handleState(kind))
		mux.HandleFunc("DELETE "+base+"/clear", s.handleClear(kind))
		mux.HandleFunc("POST "+base+"/{op}", s.handleOperation(kind))
		mux.HandleFunc("GET "+base+"/{op}", s.handleOperation(kind))
		mux.HandleFunc("DELETE "+base+"/{op}", s.handleOperation(kind))
	}
	mux.HandleFunc("POST /api/operations", s.handleOperationJSON)

	// Algorithms.
	mux.HandleFunc("POST /api/algorithm/sort", s.handleSort)
	mux.HandleFunc("POST /api/algorithm/search", s.handleSearch)
	mux.HandleFunc("POST /api/algorithm/traverse", s.handleTraverse)

	// Maps and graphs.
	mux.HandleFunc("GET /api/map", s.handleListMaps)
	mux.HandleFunc("GET /api/map/{name}", s.handleGetMap)
	mux.HandleFunc("POST /api/map/shortest-path", s.handleShortestPath)
	mux.HandleFunc("POST /api/map/route", s.handleRouteRequest)
	mux.HandleFunc("GET /api/graph/random", s.handleRandomGraph)
	mux.HandleFunc("POST /api/graph/create", s.handleCreateGraph)

	// Rendering.
	mux.HandleFunc("GET /api/render/{kind}", s.handleRenderStructure)
	mux.HandleFunc("GET /api/render/map/{name}", s.handleRenderMap)

	// Catalog.
	mux.HandleFunc("GET /api/items", s.handleListItems)
	mux.HandleFunc("GET /api/items/stats", s.handleItemStats)
	mux.HandleFunc("GET /api/items/{id}", s.handleGetItem)
	mux.HandleFunc("DELETE /api/items/{id}", s.handleDeleteItem)

	// Reset jobs.
	mux.HandleFunc("GET /api/scheduler", s.handleListJobs)
	mux.HandleFunc("POST /api/scheduler", s.handleCreateJob)
	mux.HandleFunc("PUT /api/scheduler/{id}", s.handleUpdateJob)
	mux.HandleFunc("DELETE /api/scheduler/{id}", s.handleDeleteJob)
	mux.HandleFunc("POST /api/scheduler/{id}/run", s.handleRunJob)

	// Streams.
	mux.HandleFunc("GET /sse", s.handleSSEAll)
	mux.HandleFunc("GET /sse/{channel}", s.handleSSEChannel)
	mux.HandleFunc("GET /ws/{channel}", s.handleWebSocket)

	mux.HandleFunc("GET /health", s.handleHealth)
	if s.deps.Metrics != nil {
		mux.Handle("GET /metrics", s.deps.Metrics.Handler())
	}

	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"uptime":   time.Since(s.started).Round(time.Second).String(),
		"channels": schema.Channels,
	})
}
