package structures

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rendis/dsviz/internal/trace"
	"github.com/rendis/dsviz/pkg/schema"
)

func TestView_MatchesAccessors(t *testing.T) {
	a := NewArray(2)
	a.Insert(item("a"), 0)
	a.Insert(item("b"), 1)
	v := a.View()
	assert.Equal(t, 2, v.Size)
	assert.Equal(t, 2, v.Capacity)
	assert.True(t, v.IsFull)
	assert.Equal(t, a.Items(), v.Items)
	assert.Equal(t, a.Snapshots(), v.Nodes)

	q := NewQueue(3)
	q.Enqueue(item("x"))
	qv := q.View()
	assert.Equal(t, 1, qv.Size)
	assert.Equal(t, 3, qv.Capacity)
	assert.False(t, qv.IsFull)
	assert.Equal(t, []string{"x"}, names(qv.Items))

	tree := NewBinaryTree()
	for _, n := range []string{"m", "c", "x"} {
		tree.Insert(item(n))
	}
	tv := tree.View()
	assert.Equal(t, 3, tv.Size)
	assert.Equal(t, []string{"c", "m", "x"}, tv.InOrder)
	assert.Zero(t, tv.Capacity)
	require.Len(t, tv.Nodes, 3)

	l := NewLinkedList()
	assert.Equal(t, View{Items: []schema.Item{}, Nodes: []trace.Snapshot{}}, l.View())
}

func TestClear_ReportsRemovedItems(t *testing.T) {
	s := NewStack(3)
	a, b := item("a"), item("b")
	s.Push(a)
	s.Push(b)
	steps := s.Clear()
	assert.Equal(t, trace.TagCleared, trace.Last(steps).Operation)
	assert.Equal(t, []string{a.ID, b.ID}, trace.Last(steps).Metadata["removedIds"])

	l := NewLinkedList()
	l.Insert(a)
	assert.Equal(t, []string{a.ID}, trace.Last(l.Clear()).Metadata["removedIds"])

	tree := NewBinaryTree()
	tree.Insert(b)
	assert.Equal(t, []string{b.ID}, trace.Last(tree.Clear()).Metadata["removedIds"])
}

func TestResize_ReportsDroppedItems(t *testing.T) {
	a := NewArray(3)
	x, y, z := item("x"), item("y"), item("z")
	a.Insert(x, 0)
	a.Insert(y, 1)
	a.Insert(z, 2)

	steps := a.Resize(1)
	assert.Equal(t, []string{y.ID, z.ID}, steps[0].Metadata["removedIds"])
	assert.True(t, steps[0].IsTerminal())
}

func TestSearchFound_CarriesItemID(t *testing.T) {
	a := NewArray(2)
	x := item("x")
	a.Insert(x, 0)
	assert.Equal(t, x.ID, trace.Last(a.Search("x")).Metadata["itemId"])

	l := NewLinkedList()
	l.Insert(x)
	assert.Equal(t, x.ID, trace.Last(l.Search("x")).Metadata["itemId"])

	tree := NewBinaryTree()
	tree.Insert(x)
	assert.Equal(t, x.ID, trace.Last(tree.Search("x")).Metadata["itemId"])
}
