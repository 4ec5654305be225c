package api

import (
	"encoding/json"
	"net/http"

	"github.com/rendis/dsviz/internal/scheduler"
)

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	if err := requireDep(s.deps.Scheduler != nil, "scheduler"); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"jobs": s.deps.Scheduler.Jobs()})
}

func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	if err := requireDep(s.deps.Scheduler != nil, "scheduler"); err != nil {
		writeError(w, err)
		return
	}
	var job scheduler.Job
	if err := json.NewDecoder(r.Body).Decode(&job); err != nil {
		writeError(w, badRequest("invalid JSON: %v", err))
		return
	}
	created, err := s.deps.Scheduler.AddJob(job)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// handleUpdateJob toggles a job: {"enabled": bool}.
func (s *Server) handleUpdateJob(w http.ResponseWriter, r *http.Request) {
	if err := requireDep(s.deps.Scheduler != nil, "scheduler"); err != nil {
		writeError(w, err)
		return
	}
	var body struct {
		Enabled *bool `json:"enabled"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, badRequest("invalid JSON: %v", err))
		return
	}
	if body.Enabled == nil {
		writeError(w, badRequest("enabled is required"))
		return
	}
	id := r.PathValue("id")
	if err := s.deps.Scheduler.SetEnabled(id, *body.Enabled); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "id": id, "enabled": *body.Enabled})
}

func (s *Server) handleDeleteJob(w http.ResponseWriter, r *http.Request) {
	if err := requireDep(s.deps.Scheduler != nil, "scheduler"); err != nil {
		writeError(w, err)
		return
	}
	id := r.PathValue("id")
	if err := s.deps.Scheduler.RemoveJob(id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "id": id})
}

func (s *Server) handleRunJob(w http.ResponseWriter, r *http.Request) {
	if err := requireDep(s.deps.Scheduler != nil, "scheduler"); err != nil {
		writeError(w, err)
		return
	}
	id := r.PathValue("id")
	if err := s.deps.Scheduler.RunNow(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "id": id})
}
