package mcp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWatchRegistry_WatchAndLookup(t *testing.T) {
	r := NewWatchRegistry()

	r.Watch("session-a", "pathfinding")
	r.Watch("session-b", "pathfinding")
	r.Watch("session-a", "pathfinding")

	assert.ElementsMatch(t, []string{"session-a", "session-b"}, r.Watchers("pathfinding"))
	assert.Empty(t, r.Watchers("traversal"))
}

func TestWatchRegistry_Unwatch(t *testing.T) {
	r := NewWatchRegistry()

	r.Watch("session-a", "pathfinding")
	r.Unwatch("session-a", "pathfinding")
	r.Unwatch("session-a", "traversal")

	assert.Empty(t, r.Watchers("pathfinding"))
}

func TestWatchRegistry_Remove(t *testing.T) {
	r := NewWatchRegistry()

	r.Watch("session-a", "pathfinding")
	r.Watch("session-a", "traversal")
	r.Watch("session-b", "traversal")

	r.Remove("session-a")

	assert.Empty(t, r.Watchers("pathfinding"))
	assert.Equal(t, []string{"session-b"}, r.Watchers("traversal"))
}
