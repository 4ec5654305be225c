package structures

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/rendis/dsviz/internal/trace"
	"github.com/rendis/dsviz/pkg/schema"
)

// Queue step tags.
const (
	TagQueueFull       trace.Tag = trace.TagQueueFull
	TagPrepareEnqueue  trace.Tag = "PREPARE_ENQUEUE"
	TagEnqueueComplete trace.Tag = "ENQUEUE_COMPLETE"
	TagQueueEmpty      trace.Tag = "QUEUE_EMPTY"
	TagShowFront       trace.Tag = "SHOW_FRONT"
	TagDequeueComplete trace.Tag = "DEQUEUE_COMPLETE"
)

// Queue is a capacity-bounded FIFO collection. nodes[0] is the front.
type Queue struct {
	mu      sync.Mutex
	nodes   []node
	maxSize int
	rec     trace.Recorder
}

// NewQueue creates an empty queue holding at most maxSize items.
func NewQueue(maxSize int) *Queue {
	if maxSize < 0 {
		maxSize = 0
	}
	return &Queue{maxSize: maxSize}
}

// Enqueue adds item at the rear.
func (q *Queue) Enqueue(item schema.Item) []trace.Step {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.rec.Reset()

	if len(q.nodes) >= q.maxSize {
		q.rec.Record(TagQueueFull,
			fmt.Sprintf("Queue full, max size %d", q.maxSize),
			q.snapshots(), "", map[string]any{"maxSize": q.maxSize})
		return q.rec.Steps()
	}

	n := node{id: uuid.New().String(), item: item}
	q.rec.Record(TagPrepareEnqueue, "Preparing to enqueue "+item.Name, q.snapshots(), "", map[string]any{"pendingId": n.id})

	q.nodes = append(q.nodes, n)
	q.rec.Record(trace.TagCreateNode, "Created node at rear for "+item.Name, q.snapshots(), n.id, nil)
	q.rec.Record(TagEnqueueComplete,
		fmt.Sprintf("Enqueue complete, queue size %d", len(q.nodes)),
		q.snapshots(), n.id, map[string]any{"size": len(q.nodes)})
	return q.rec.Steps()
}

// Dequeue removes the front item.
func (q *Queue) Dequeue() []trace.Step {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.rec.Reset()

	if len(q.nodes) == 0 {
		q.rec.Record(TagQueueEmpty, "Queue is empty, nothing to dequeue", q.snapshots(), "", nil)
		return q.rec.Steps()
	}

	front := q.nodes[0]
	q.rec.Record(TagShowFront, "Front element: "+front.item.Name, q.snapshots(), front.id, nil)
	q.rec.Record(trace.TagRemoving, "Removing "+front.item.Name, q.snapshots(), front.id, nil)

	q.nodes = q.nodes[1:]
	q.rec.Record(TagDequeueComplete,
		fmt.Sprintf("Dequeued %s, queue size %d", front.item.Name, len(q.nodes)),
		q.snapshots(), "", map[string]any{
			"removedId":   front.item.ID,
			"removedName": front.item.Name,
			"size":        len(q.nodes),
		})
	return q.rec.Steps()
}

// Peek reports the front item without removing it.
func (q *Queue) Peek() []trace.Step {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.rec.Reset()

	if len(q.nodes) == 0 {
		q.rec.Record(TagQueueEmpty, "Queue is empty", q.snapshots(), "", nil)
		return q.rec.Steps()
	}

	front := q.nodes[0]
	q.rec.Record(TagShowFront, "Front element: "+front.item.Name, q.snapshots(), front.id,
		map[string]any{"frontId": front.item.ID, "frontName": front.item.Name})
	return q.rec.Steps()
}

// Clear removes every item.
func (q *Queue) Clear() []trace.Step {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.rec.Reset()
	removed := nodeIDs(q.nodes)
	q.nodes = nil
	q.rec.Record(trace.TagCleared, "Queue cleared", q.snapshots(), "",
		map[string]any{"maxSize": q.maxSize, "removedIds": removed})
	return q.rec.Steps()
}

// Size returns the number of items.
func (q *Queue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.nodes)
}

// MaxSize returns the capacity.
func (q *Queue) MaxSize() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.maxSize
}

// IsEmpty reports whether the queue holds no items.
func (q *Queue) IsEmpty() bool { return q.Size() == 0 }

// IsFull reports whether an enqueue would be refused.
func (q *Queue) IsFull() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.nodes) >= q.maxSize
}

// Items returns the items from front to rear.
func (q *Queue) Items() []schema.Item {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.items()
}

// View returns the whole queue state under one lock.
func (q *Queue) View() View {
	q.mu.Lock()
	defer q.mu.Unlock()
	return View{
		Size:     len(q.nodes),
		Capacity: q.maxSize,
		IsFull:   len(q.nodes) >= q.maxSize,
		Items:    q.items(),
		Nodes:    q.snapshots(),
	}
}

func (q *Queue) items() []schema.Item {
	out := make([]schema.Item, len(q.nodes))
	for i, n := range q.nodes {
		out[i] = n.item
	}
	return out
}

// Snapshots returns the current rendering, front first.
func (q *Queue) Snapshots() []trace.Snapshot {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.snapshots()
}

func (q *Queue) snapshots() []trace.Snapshot {
	out := make([]trace.Snapshot, len(q.nodes))
	for i, n := range q.nodes {
		out[i] = trace.Snapshot{
			ID:          n.id,
			Name:        n.item.Name,
			Size:        n.item.SizeFormatted(),
			ContentType: n.item.ContentType,
			Index:       i,
			Position:    i,
			IsFront:     i == 0,
			IsRear:      i == len(q.nodes)-1,
		}
	}
	return out
}
