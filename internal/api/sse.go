package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"slices"

	"github.com/rendis/dsviz/internal/streaming"
	"github.com/rendis/dsviz/pkg/schema"
)

// handleSSEAll streams events from every channel.
func (s *Server) handleSSEAll(w http.ResponseWriter, r *http.Request) {
	s.serveSSE(w, r, streaming.EventFilter{})
}

// handleSSEChannel streams events from one channel.
func (s *Server) handleSSEChannel(w http.ResponseWriter, r *http.Request) {
	channel := r.PathValue("channel")
	if !slices.Contains(schema.Channels, channel) {
		writeError(w, schema.NewErrorf(schema.ErrCodeNotFound, "unknown channel %q", channel).
			WithDetails(map[string]any{"channels": schema.Channels}))
		return
	}
	s.serveSSE(w, r, streaming.EventFilter{Channels: []string{channel}})
}

func (s *Server) serveSSE(w http.ResponseWriter, r *http.Request, filter streaming.EventFilter) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	ch, cancel, err := s.deps.Hub.Subscribe(r.Context(), filter)
	if err != nil {
		s.deps.Logger.Error("SSE subscribe failed", "error", err)
		http.Error(w, "subscribe failed", http.StatusInternalServerError)
		return
	}
	defer cancel()

	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			data, err := json.Marshal(event)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.EventType, data)
			flusher.Flush()
		}
	}
}
