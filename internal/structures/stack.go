package structures

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/rendis/dsviz/internal/trace"
	"github.com/rendis/dsviz/pkg/schema"
)

// Stack step tags.
const (
	TagPreparePush  trace.Tag = "PREPARE_PUSH"
	TagPushComplete trace.Tag = "PUSH_COMPLETE"
	TagUnderflow    trace.Tag = trace.TagUnderflow
	TagShowTop      trace.Tag = "SHOW_TOP"
	TagPopComplete  trace.Tag = "POP_COMPLETE"
	TagEmptyStack   trace.Tag = "EMPTY_STACK"
	TagPeek         trace.Tag = trace.TagPeek
)

// node is the shared element of the stack and queue.
type node struct {
	id   string
	item schema.Item
}

// Stack is a capacity-bounded LIFO collection. The last element of nodes
// is the top.
type Stack struct {
	mu      sync.Mutex
	nodes   []node
	maxSize int
	rec     trace.Recorder
}

// NewStack creates an empty stack holding at most maxSize items.
func NewStack(maxSize int) *Stack {
	if maxSize < 0 {
		maxSize = 0
	}
	return &Stack{maxSize: maxSize}
}

// Push places item on top.
func (s *Stack) Push(item schema.Item) []trace.Step {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rec.Reset()

	if len(s.nodes) >= s.maxSize {
		s.rec.Record(trace.TagOverflow,
			fmt.Sprintf("Stack overflow, max size %d", s.maxSize),
			s.snapshots(), "", map[string]any{"maxSize": s.maxSize})
		return s.rec.Steps()
	}

	n := node{id: uuid.New().String(), item: item}
	s.rec.Record(TagPreparePush, "Preparing to push "+item.Name, s.snapshots(), "", map[string]any{"pendingId": n.id})

	s.nodes = append(s.nodes, n)
	s.rec.Record(trace.TagCreateNode, "Created node on top for "+item.Name, s.snapshots(), n.id, nil)
	s.rec.Record(TagPushComplete,
		fmt.Sprintf("Push complete, stack size %d", len(s.nodes)),
		s.snapshots(), n.id, map[string]any{"size": len(s.nodes)})
	return s.rec.Steps()
}

// Pop removes the top item.
func (s *Stack) Pop() []trace.Step {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rec.Reset()

	if len(s.nodes) == 0 {
		s.rec.Record(TagUnderflow, "Stack underflow, nothing to pop", s.snapshots(), "", nil)
		return s.rec.Steps()
	}

	top := s.nodes[len(s.nodes)-1]
	s.rec.Record(TagShowTop, "Top element: "+top.item.Name, s.snapshots(), top.id, nil)
	s.rec.Record(trace.TagRemoving, "Removing "+top.item.Name, s.snapshots(), top.id, nil)

	s.nodes = s.nodes[:len(s.nodes)-1]
	s.rec.Record(TagPopComplete,
		fmt.Sprintf("Popped %s, stack size %d", top.item.Name, len(s.nodes)),
		s.snapshots(), "", map[string]any{
			"removedId":   top.item.ID,
			"removedName": top.item.Name,
			"size":        len(s.nodes),
		})
	return s.rec.Steps()
}

// Peek reports the top item without removing it.
func (s *Stack) Peek() []trace.Step {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rec.Reset()

	if len(s.nodes) == 0 {
		s.rec.Record(TagEmptyStack, "Stack is empty", s.snapshots(), "", nil)
		return s.rec.Steps()
	}

	top := s.nodes[len(s.nodes)-1]
	s.rec.Record(TagPeek, "Top element: "+top.item.Name, s.snapshots(), top.id,
		map[string]any{"topId": top.item.ID, "topName": top.item.Name})
	return s.rec.Steps()
}

// Clear removes every item.
func (s *Stack) Clear() []trace.Step {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rec.Reset()
	removed := nodeIDs(s.nodes)
	s.nodes = nil
	s.rec.Record(trace.TagCleared, "Stack cleared", s.snapshots(), "",
		map[string]any{"maxSize": s.maxSize, "removedIds": removed})
	return s.rec.Steps()
}

// Size returns the number of items.
func (s *Stack) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.nodes)
}

// MaxSize returns the capacity.
func (s *Stack) MaxSize() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.maxSize
}

// IsEmpty reports whether the stack holds no items.
func (s *Stack) IsEmpty() bool { return s.Size() == 0 }

// IsFull reports whether a push would overflow.
func (s *Stack) IsFull() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.nodes) >= s.maxSize
}

// Items returns the items from top to bottom.
func (s *Stack) Items() []schema.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.items()
}

// View returns the whole stack state under one lock.
func (s *Stack) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return View{
		Size:     len(s.nodes),
		Capacity: s.maxSize,
		IsFull:   len(s.nodes) >= s.maxSize,
		Items:    s.items(),
		Nodes:    s.snapshots(),
	}
}

func (s *Stack) items() []schema.Item {
	out := make([]schema.Item, 0, len(s.nodes))
	for i := len(s.nodes) - 1; i >= 0; i-- {
		out = append(out, s.nodes[i].item)
	}
	return out
}

// Snapshots returns the current rendering, top first.
func (s *Stack) Snapshots() []trace.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshots()
}

func (s *Stack) snapshots() []trace.Snapshot {
	out := make([]trace.Snapshot, 0, len(s.nodes))
	for i := len(s.nodes) - 1; i >= 0; i-- {
		n := s.nodes[i]
		pos := len(s.nodes) - 1 - i
		out = append(out, trace.Snapshot{
			ID:          n.id,
			Name:        n.item.Name,
			Size:        n.item.SizeFormatted(),
			ContentType: n.item.ContentType,
			Index:       i,
			Position:    pos,
			IsTop:       pos == 0,
		})
	}
	return out
}
