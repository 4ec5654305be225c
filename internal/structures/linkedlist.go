package structures

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/rendis/dsviz/internal/trace"
	"github.com/rendis/dsviz/pkg/schema"
)

// Linked list step tags.
const (
	TagSetHead     trace.Tag = "SET_HEAD"
	TagFoundEnd    trace.Tag = "FOUND_END"
	TagLinkNode    trace.Tag = "LINK_NODE"
	TagEmptyList   trace.Tag = "EMPTY_LIST"
	TagDeleteHead  trace.Tag = "DELETE_HEAD"
	TagStartDelete trace.Tag = "START_DELETE"
	TagFoundTarget trace.Tag = "FOUND_TARGET"
	TagRelink      trace.Tag = "RELINK"
)

type listNode struct {
	item schema.Item
	next string
}

// LinkedList is a singly linked chain of items. Nodes live in an arena
// keyed by id and link to their successor by id.
type LinkedList struct {
	mu    sync.Mutex
	nodes map[string]*listNode
	head  string
	size  int
	rec   trace.Recorder
}

// NewLinkedList creates an empty list.
func NewLinkedList() *LinkedList {
	return &LinkedList{nodes: make(map[string]*listNode)}
}

// Insert appends item at the tail.
func (l *LinkedList) Insert(item schema.Item) []trace.Step {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rec.Reset()

	id := uuid.New().String()
	l.rec.Record(trace.TagCreateNode,
		"Creating new node for "+item.Name,
		l.snapshots(), "", map[string]any{"newNodeId": id})

	if l.head == "" {
		l.nodes[id] = &listNode{item: item}
		l.head = id
		l.size++
		l.rec.Record(TagSetHead,
			"List was empty, new node becomes head",
			l.snapshots(), id, map[string]any{"newNodeId": id})
	} else {
		cur, pos := l.head, 0
		for l.nodes[cur].next != "" {
			l.rec.Record(trace.TagTraverse,
				fmt.Sprintf("Traversing node %d: %s", pos, l.nodes[cur].item.Name),
				l.snapshots(), cur, map[string]any{"position": pos})
			cur = l.nodes[cur].next
			pos++
		}
		l.rec.Record(TagFoundEnd,
			fmt.Sprintf("Found last node at position %d: %s", pos, l.nodes[cur].item.Name),
			l.snapshots(), cur, map[string]any{"position": pos})

		l.nodes[id] = &listNode{item: item}
		l.nodes[cur].next = id
		l.size++
		l.rec.Record(TagLinkNode,
			"Linking new node at the end",
			l.snapshots(), id, map[string]any{"previousNodeId": cur})
	}

	l.rec.Record(trace.TagComplete,
		fmt.Sprintf("Insert complete, list size %d", l.size),
		l.snapshots(), id, map[string]any{"totalSize": l.size, "newNodeId": id})
	return l.rec.Steps()
}

// Search walks from head comparing names.
func (l *LinkedList) Search(name string) []trace.Step {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rec.Reset()

	if l.head == "" {
		l.rec.Record(TagEmptyList, "List is empty", l.snapshots(), "", nil)
		return l.rec.Steps()
	}

	l.rec.Record(trace.TagStartSearch, "Searching for "+name, l.snapshots(), "", map[string]any{"target": name})
	pos := 0
	for cur := l.head; cur != ""; cur = l.nodes[cur].next {
		n := l.nodes[cur]
		l.rec.Record(trace.TagCompare,
			fmt.Sprintf("Comparing position %d: %s", pos, n.item.Name),
			l.snapshots(), cur, map[string]any{"position": pos})
		if n.item.Name == name {
			l.rec.Record(trace.TagFound,
				fmt.Sprintf("Found %s at position %d", name, pos),
				l.snapshots(), cur, map[string]any{"foundPosition": pos, "itemId": n.item.ID})
			return l.rec.Steps()
		}
		pos++
	}

	l.rec.Record(trace.TagNotFound, "File not found: "+name, l.snapshots(), "", map[string]any{"target": name})
	return l.rec.Steps()
}

// Delete removes the first node whose item carries name.
func (l *LinkedList) Delete(name string) []trace.Step {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rec.Reset()

	if l.head == "" {
		l.rec.Record(TagEmptyList, "List is empty", l.snapshots(), "", nil)
		return l.rec.Steps()
	}

	if head := l.nodes[l.head]; head.item.Name == name {
		removed := l.head
		l.rec.Record(TagDeleteHead, "Deleting head node "+name, l.snapshots(), removed, nil)
		l.head = head.next
		delete(l.nodes, removed)
		l.size--
		l.rec.Record(trace.TagComplete,
			fmt.Sprintf("Head deleted, list size %d", l.size),
			l.snapshots(), "", map[string]any{"totalSize": l.size, "removedId": head.item.ID})
		return l.rec.Steps()
	}

	l.rec.Record(TagStartDelete, "Searching for node to delete: "+name, l.snapshots(), "", map[string]any{"target": name})
	prev, pos := l.head, 1
	for cur := l.nodes[prev].next; cur != ""; cur = l.nodes[cur].next {
		n := l.nodes[cur]
		l.rec.Record(trace.TagTraverse,
			fmt.Sprintf("Checking position %d: %s", pos, n.item.Name),
			l.snapshots(), cur, map[string]any{"position": pos, "previousNodeId": prev})
		if n.item.Name == name {
			l.rec.Record(TagFoundTarget,
				fmt.Sprintf("Found %s at position %d", name, pos),
				l.snapshots(), cur, map[string]any{"position": pos})
			l.nodes[prev].next = n.next
			delete(l.nodes, cur)
			l.size--
			l.rec.Record(TagRelink,
				"Relinking predecessor around removed node",
				l.snapshots(), prev, map[string]any{"previousNodeId": prev})
			l.rec.Record(trace.TagComplete,
				fmt.Sprintf("Deletion complete, list size %d", l.size),
				l.snapshots(), "", map[string]any{"totalSize": l.size, "removedId": n.item.ID})
			return l.rec.Steps()
		}
		prev = cur
		pos++
	}

	l.rec.Record(trace.TagNotFound, "File not found: "+name, l.snapshots(), "", map[string]any{"target": name})
	return l.rec.Steps()
}

// Clear drops every node.
func (l *LinkedList) Clear() []trace.Step {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rec.Reset()
	removed := make([]string, 0, l.size)
	for _, it := range l.items() {
		removed = append(removed, it.ID)
	}
	l.nodes = make(map[string]*listNode)
	l.head = ""
	l.size = 0
	l.rec.Record(trace.TagCleared, "List cleared", l.snapshots(), "", map[string]any{"removedIds": removed})
	return l.rec.Steps()
}

// Size returns the number of nodes.
func (l *LinkedList) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.size
}

// IsEmpty reports whether the list has no nodes.
func (l *LinkedList) IsEmpty() bool {
	return l.Size() == 0
}

// Items returns the items from head to tail.
func (l *LinkedList) Items() []schema.Item {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.items()
}

// View returns size, items and rendering under one lock.
func (l *LinkedList) View() View {
	l.mu.Lock()
	defer l.mu.Unlock()
	return View{Size: l.size, Items: l.items(), Nodes: l.snapshots()}
}

func (l *LinkedList) items() []schema.Item {
	out := make([]schema.Item, 0, l.size)
	for cur := l.head; cur != ""; cur = l.nodes[cur].next {
		out = append(out, l.nodes[cur].item)
	}
	return out
}

// Snapshots returns the current rendering of the list.
func (l *LinkedList) Snapshots() []trace.Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshots()
}

func (l *LinkedList) snapshots() []trace.Snapshot {
	out := make([]trace.Snapshot, 0, l.size)
	pos := 0
	for cur := l.head; cur != ""; cur = l.nodes[cur].next {
		n := l.nodes[cur]
		out = append(out, trace.Snapshot{
			ID:          cur,
			Name:        n.item.Name,
			Size:        n.item.SizeFormatted(),
			ContentType: n.item.ContentType,
			Index:       pos,
			Position:    pos,
			NextID:      n.next,
		})
		pos++
	}
	return out
}
