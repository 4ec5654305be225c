package api

import (
	"context"
	"encoding/json"
	"net/http"
	"slices"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rendis/dsviz/internal/streaming"
	"github.com/rendis/dsviz/pkg/schema"
)

const wsWriteTimeout = 10 * time.Second

// inbound is a message a WebSocket client sends.
type inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// handleWebSocket upgrades the connection and relays the events of one
// channel as JSON text frames. Clients may send route requests, which are
// broadcast on the pathfinding channel, and algorithm steps, which are
// rebroadcast on the algorithm channel.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	channel := r.PathValue("channel")
	if !slices.Contains(schema.Channels, channel) {
		writeError(w, schema.NewErrorf(schema.ErrCodeNotFound, "unknown channel %q", channel))
		return
	}

	ctx, stop := context.WithCancel(r.Context())
	defer stop()

	// Subscribe first so nothing published after the handshake is missed.
	events, cancel, err := s.deps.Hub.Subscribe(ctx, streaming.EventFilter{Channels: []string{channel}})
	if err != nil {
		s.deps.Logger.Error("websocket subscribe failed", "error", err)
		http.Error(w, "subscribe failed", http.StatusInternalServerError)
		return
	}
	defer cancel()

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.deps.Logger.Error("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	go s.readLoop(ctx, stop, conn)

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteJSON(event); err != nil {
				s.deps.Logger.Warn("websocket write failed", "channel", channel, "error", err)
				return
			}
		}
	}
}

func (s *Server) readLoop(ctx context.Context, stop context.CancelFunc, conn *websocket.Conn) {
	defer stop()
	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.deps.Logger.Warn("websocket read failed", "error", err)
			}
			return
		}

		var msg inbound
		if err := json.Unmarshal(message, &msg); err != nil {
			s.deps.Logger.Debug("ignoring malformed websocket message", "error", err)
			continue
		}
		switch msg.Type {
		case schema.EventRouteRequest:
			err = s.publishRoute(ctx, msg.Data)
		case schema.EventAlgorithmStep:
			err = s.deps.Hub.Publish(ctx, streaming.StreamEvent{
				Channel:   schema.ChannelAlgorithms,
				EventType: schema.EventAlgorithmStep,
				Payload:   msg.Data,
			})
		default:
			s.deps.Logger.Debug("ignoring websocket message", "type", msg.Type)
			continue
		}
		if err != nil {
			s.deps.Logger.Warn("websocket relay failed", "type", msg.Type, "error", err)
		}
	}
}
