package diagram

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rendis/dsviz/internal/algorithms"
	"github.com/rendis/dsviz/internal/structures"
	"github.com/rendis/dsviz/internal/trace"
	"github.com/rendis/dsviz/pkg/schema"
)

func item(name string) schema.Item {
	return schema.NewItem(name, "text/plain", 100)
}

func TestFromSnapshotsArray(t *testing.T) {
	a := structures.NewArray(5)
	a.Insert(item("a.txt"), -1)
	a.Insert(item("b.txt"), -1)

	m := FromSnapshots(schema.StructureArray, a.Snapshots(), "")
	assert.Equal(t, LayoutRow, m.Layout)
	assert.False(t, m.Directed)
	require.Len(t, m.Nodes, 2)
	assert.Equal(t, "[0]", m.Nodes[0].Caption)
	assert.Equal(t, "[1]", m.Nodes[1].Caption)
	assert.Empty(t, m.Edges)
	assert.Len(t, m.Levels, 1)
}

func TestFromSnapshotsList(t *testing.T) {
	l := structures.NewLinkedList()
	l.Insert(item("a.txt"))
	l.Insert(item("b.txt"))
	snaps := l.Snapshots()

	m := FromSnapshots(schema.StructureList, snaps, snaps[1].ID)
	require.Len(t, m.Nodes, 3)
	assert.Equal(t, NodeKindTerminator, m.Nodes[2].Kind)
	assert.Equal(t, "head", m.Nodes[0].Caption)
	assert.Equal(t, MarkHighlight, m.Nodes[1].Mark)

	require.Len(t, m.Edges, 2)
	assert.Equal(t, snaps[1].ID, m.Edges[0].To)
	assert.Equal(t, NullID, m.Edges[1].To)
}

func TestFromSnapshotsStackAndQueue(t *testing.T) {
	s := structures.NewStack(3)
	s.Push(item("bottom"))
	s.Push(item("top"))
	m := FromSnapshots(schema.StructureStack, s.Snapshots(), "")
	assert.Equal(t, LayoutColumn, m.Layout)
	assert.Equal(t, "top", m.Nodes[0].Label)
	assert.Equal(t, "top", m.Nodes[0].Caption)
	assert.Len(t, m.Levels, 2)
	assert.Len(t, m.Edges, 1)

	q := structures.NewQueue(3)
	q.Enqueue(item("first"))
	m = FromSnapshots(schema.StructureQueue, q.Snapshots(), "")
	assert.Equal(t, "front/rear", m.Nodes[0].Caption)

	q.Enqueue(item("second"))
	m = FromSnapshots(schema.StructureQueue, q.Snapshots(), "")
	assert.Equal(t, "front", m.Nodes[0].Caption)
	assert.Equal(t, "rear", m.Nodes[1].Caption)
}

func TestFromSnapshotsTree(t *testing.T) {
	tr := structures.NewBinaryTree()
	for _, n := range []string{"m", "c", "x", "a"} {
		tr.Insert(item(n))
	}

	m := FromSnapshots(schema.StructureTree, tr.Snapshots(), "")
	assert.Equal(t, LayoutTree, m.Layout)
	require.Len(t, m.Levels, 3)
	assert.Len(t, m.Levels[0], 1)
	assert.Len(t, m.Levels[1], 2)
	assert.Len(t, m.Levels[2], 1)
	assert.Equal(t, "root", m.Node(m.Levels[0][0]).Caption)
	assert.Equal(t, "c", m.Node(m.Levels[1][0]).Label)
	assert.Equal(t, "x", m.Node(m.Levels[1][1]).Label)

	labels := map[string]int{}
	for _, e := range m.Edges {
		labels[e.Label]++
	}
	assert.Equal(t, map[string]int{"L": 2, "R": 1}, labels)
}

func TestFromStepTitle(t *testing.T) {
	s := structures.NewStack(2)
	steps := s.Push(item("doc.pdf"))
	last := trace.Last(steps)

	m := FromStep(schema.StructureStack, last)
	assert.Contains(t, m.Title, string(last.Operation))
	assert.Contains(t, m.Title, last.Description)
}

func TestFromGraph(t *testing.T) {
	g := algorithms.Document{
		Nodes: []algorithms.Node{{ID: "a"}, {ID: "b", Label: "Bee"}, {ID: "c"}, {ID: "d"}},
		Edges: []algorithms.Edge{
			{ID: "e1", Source: "a", Target: "b", Weight: 2},
			{ID: "e2", Source: "c", Target: "b", Weight: 1.5},
			{ID: "e3", Source: "a", Target: "d", Weight: 9},
		},
	}.Graph()

	m := FromGraph("route", g, []string{"a", "b", "c"}, []string{"a", "b", "c", "d"})
	assert.Equal(t, LayoutGraph, m.Layout)
	assert.False(t, m.Directed)
	require.Len(t, m.Nodes, 4)
	assert.Equal(t, "Bee", m.Node("b").Label)
	assert.Equal(t, "a", m.Node("a").Label)
	assert.Equal(t, MarkPath, m.Node("c").Mark)
	assert.Equal(t, MarkVisited, m.Node("d").Mark)

	// e2 runs c->b, the path runs b->c.
	assert.Equal(t, MarkPath, m.Edges[0].Mark)
	assert.Equal(t, MarkPath, m.Edges[1].Mark)
	assert.Equal(t, MarkNone, m.Edges[2].Mark)
	assert.Equal(t, "1.5", m.Edges[1].Label)
}
