package mcp

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rendis/dsviz/internal/streaming"
)

type sent struct {
	session string
	method  string
	params  map[string]any
}

type mockSender struct {
	mu   sync.Mutex
	sent []sent
	gone map[string]bool
}

func (m *mockSender) SendNotificationToSpecificClient(sessionID, method string, params map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.gone[sessionID] {
		return server.ErrSessionNotFound
	}
	m.sent = append(m.sent, sent{session: sessionID, method: method, params: params})
	return nil
}

func (m *mockSender) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

func TestNotifier_RelaysWatchedChannels(t *testing.T) {
	hub := streaming.NewMemoryHub()
	defer hub.Close()
	watchers := NewWatchRegistry()
	watchers.Watch("session-a", "pathfinding")
	sender := &mockSender{}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	n := NewNotifier(sender, watchers, hub, nil)
	done := make(chan error, 1)
	go func() { done <- n.Run(ctx) }()

	// Wait for the subscription before publishing.
	require.Eventually(t, func() bool {
		_ = hub.Publish(ctx, streaming.StreamEvent{Channel: "pathfinding", EventType: "algorithm_step"})
		return sender.count() > 0
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, hub.Publish(ctx, streaming.StreamEvent{Channel: "traversal", EventType: "traversal_step"}))

	sender.mu.Lock()
	first := sender.sent[0]
	for _, s := range sender.sent {
		assert.Equal(t, "session-a", s.session)
		assert.Equal(t, "pathfinding", s.params["logger"])
	}
	sender.mu.Unlock()
	assert.Equal(t, "notifications/message", first.method)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("notifier did not stop")
	}
}

func TestNotifier_DropsVanishedSessions(t *testing.T) {
	watchers := NewWatchRegistry()
	watchers.Watch("session-gone", "traversal")
	sender := &mockSender{gone: map[string]bool{"session-gone": true}}

	n := NewNotifier(sender, watchers, nil, nil)
	n.relay(streaming.StreamEvent{Channel: "traversal"})

	assert.Empty(t, watchers.Watchers("traversal"))
	assert.Equal(t, 0, sender.count())
}
