package mcp

import "sync"

// WatchRegistry records which MCP sessions watch which channels.
type WatchRegistry struct {
	mu       sync.RWMutex
	channels map[string]map[string]struct{} // channel → session IDs
}

// NewWatchRegistry creates an empty WatchRegistry.
func NewWatchRegistry() *WatchRegistry {
	return &WatchRegistry{channels: make(map[string]map[string]struct{})}
}

// Watch adds a session to a channel. Watching twice is a no-op.
func (r *WatchRegistry) Watch(sessionID, channel string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	set, ok := r.channels[channel]
	if !ok {
		set = make(map[string]struct{})
		r.channels[channel] = set
	}
	set[sessionID] = struct{}{}
}

// Unwatch removes a session from a channel.
func (r *WatchRegistry) Unwatch(sessionID, channel string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if set, ok := r.channels[channel]; ok {
		delete(set, sessionID)
		if len(set) == 0 {
			delete(r.channels, channel)
		}
	}
}

// Watchers returns the sessions watching channel.
func (r *WatchRegistry) Watchers(channel string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	set := r.channels[channel]
	out := make([]string, 0, len(set))
	for sid := range set {
		out = append(out, sid)
	}
	return out
}

// Remove drops a session from every channel. Called when a session
// disconnects.
func (r *WatchRegistry) Remove(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for ch, set := range r.channels {
		delete(set, sessionID)
		if len(set) == 0 {
			delete(r.channels, ch)
		}
	}
}
