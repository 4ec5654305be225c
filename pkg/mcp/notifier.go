package mcp

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mark3labs/mcp-go/server"

	"github.com/rendis/dsviz/internal/logging"
	"github.com/rendis/dsviz/internal/streaming"
)

// Sender delivers a notification to one session. *server.MCPServer
// implements it.
type Sender interface {
	SendNotificationToSpecificClient(sessionID, method string, params map[string]any) error
}

// Notifier relays hub events to the sessions watching their channel.
type Notifier struct {
	sender   Sender
	watchers *WatchRegistry
	hub      streaming.EventHub
	logger   *slog.Logger
}

// NewNotifier creates a Notifier.
func NewNotifier(sender Sender, watchers *WatchRegistry, hub streaming.EventHub, logger *slog.Logger) *Notifier {
	return &Notifier{sender: sender, watchers: watchers, hub: hub, logger: logging.Default(logger)}
}

// Run relays events until ctx is cancelled or the hub closes.
func (n *Notifier) Run(ctx context.Context) error {
	events, cancel, err := n.hub.Subscribe(ctx, streaming.EventFilter{})
	if err != nil {
		return err
	}
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			n.relay(ev)
		}
	}
}

func (n *Notifier) relay(ev streaming.StreamEvent) {
	for _, sid := range n.watchers.Watchers(ev.Channel) {
		err := n.sender.SendNotificationToSpecificClient(sid, "notifications/message", map[string]any{
			"level":  "info",
			"logger": ev.Channel,
			"data":   ev,
		})
		if errors.Is(err, server.ErrSessionNotFound) {
			// Session went away since it asked to watch.
			n.watchers.Remove(sid)
			continue
		}
		if err != nil {
			n.logger.Debug("notification dropped", "session", sid, "channel", ev.Channel, "error", err)
		}
	}
}
