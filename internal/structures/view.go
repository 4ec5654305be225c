package structures

import (
	"github.com/rendis/dsviz/internal/trace"
	"github.com/rendis/dsviz/pkg/schema"
)

// View is a read-only picture of a structure. Every field is taken under
// the same lock acquisition, so the fields always agree with each other.
// Capacity and IsFull stay zero for unbounded structures; InOrder is set
// by the tree only.
type View struct {
	Size     int
	Capacity int
	IsFull   bool
	Items    []schema.Item
	Nodes    []trace.Snapshot
	InOrder  []string
}

func nodeIDs(nodes []node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.item.ID
	}
	return out
}
