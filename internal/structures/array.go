package structures

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/rendis/dsviz/internal/trace"
	"github.com/rendis/dsviz/pkg/schema"
)

// Array step tags.
const (
	TagCreateElement   trace.Tag = "CREATE_ELEMENT"
	TagAppend          trace.Tag = "APPEND"
	TagShiftRight      trace.Tag = "SHIFT_RIGHT"
	TagSelect          trace.Tag = "SELECT"
	TagShiftLeft       trace.Tag = "SHIFT_LEFT"
	TagAccess          trace.Tag = trace.TagAccess
	TagResize          trace.Tag = trace.TagResize
	TagInvalidCapacity trace.Tag = trace.TagInvalidCapacity
)

type arrayElement struct {
	item  schema.Item
	id    string
	index int
}

// Array is a capacity-bounded, index-addressed sequence of items.
// Every element's index equals its position in the sequence after each
// operation.
type Array struct {
	mu       sync.Mutex
	elements []*arrayElement
	capacity int
	rec      trace.Recorder
}

// NewArray creates an empty array with the given capacity.
func NewArray(capacity int) *Array {
	if capacity < 0 {
		capacity = 0
	}
	return &Array{capacity: capacity}
}

// Insert places item at index, appending when index is past the end.
// A negative index is treated as 0.
func (a *Array) Insert(item schema.Item, index int) []trace.Step {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.rec.Reset()

	if len(a.elements) >= a.capacity {
		a.rec.Record(trace.TagOverflow,
			fmt.Sprintf("Array overflow, capacity %d", a.capacity),
			a.snapshots(), "", map[string]any{"isFull": true, "capacity": a.capacity})
		return a.rec.Steps()
	}
	if index < 0 {
		index = 0
	}

	el := &arrayElement{item: item, id: uuid.New().String(), index: min(index, len(a.elements))}
	a.rec.Record(TagCreateElement,
		"Creating new element for "+item.Name,
		a.snapshots(), "", map[string]any{"targetIndex": index, "pendingId": el.id})

	if index >= len(a.elements) {
		a.elements = append(a.elements, el)
		a.reindex()
		a.rec.Record(TagAppend,
			fmt.Sprintf("Added to end at index %d", el.index),
			a.snapshots(), el.id, map[string]any{"size": len(a.elements)})
	} else {
		a.elements = append(a.elements, nil)
		copy(a.elements[index+1:], a.elements[index:])
		a.elements[index] = el
		a.reindex()
		a.rec.Record(TagShiftRight,
			"Shifting elements right to make space",
			a.snapshots(), el.id, map[string]any{"size": len(a.elements), "index": index})
	}

	a.rec.Record(trace.TagComplete,
		fmt.Sprintf("Insert complete, size %d", len(a.elements)),
		a.snapshots(), el.id, map[string]any{"count": len(a.elements)})
	return a.rec.Steps()
}

// Delete removes the element at index.
func (a *Array) Delete(index int) []trace.Step {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.rec.Reset()

	if len(a.elements) == 0 {
		a.rec.Record(trace.TagEmpty, "Cannot delete, array empty", a.snapshots(), "", nil)
		return a.rec.Steps()
	}
	if index < 0 || index >= len(a.elements) {
		a.rec.Record(trace.TagInvalidIndex,
			fmt.Sprintf("Invalid index %d", index),
			a.snapshots(), "", map[string]any{"index": index, "size": len(a.elements)})
		return a.rec.Steps()
	}

	target := a.elements[index]
	a.rec.Record(TagSelect,
		fmt.Sprintf("Selecting element at index %d: %s", index, target.item.Name),
		a.snapshots(), target.id, map[string]any{"index": index})

	a.elements = append(a.elements[:index], a.elements[index+1:]...)
	a.reindex()

	a.rec.Record(TagShiftLeft,
		"Shifting elements left after removal",
		a.snapshots(), "", map[string]any{"size": len(a.elements)})
	a.rec.Record(trace.TagComplete,
		fmt.Sprintf("Deletion complete, size %d", len(a.elements)),
		a.snapshots(), "", map[string]any{"count": len(a.elements), "removedId": target.item.ID})
	return a.rec.Steps()
}

// Search scans the array front to back for an item with the given name.
func (a *Array) Search(name string) []trace.Step {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.rec.Reset()

	if len(a.elements) == 0 {
		a.rec.Record(trace.TagEmpty, "Array empty", a.snapshots(), "", nil)
		return a.rec.Steps()
	}

	for i, el := range a.elements {
		a.rec.Record(trace.TagCompare,
			fmt.Sprintf("Comparing index %d (%s)", i, el.item.Name),
			a.snapshots(), el.id, map[string]any{"index": i})
		if el.item.Name == name {
			a.rec.Record(trace.TagFound,
				fmt.Sprintf("Found %s at index %d", name, i),
				a.snapshots(), el.id, map[string]any{"index": i, "itemId": el.item.ID})
			return a.rec.Steps()
		}
	}

	a.rec.Record(trace.TagNotFound, "File not found: "+name, a.snapshots(), "", map[string]any{"target": name})
	return a.rec.Steps()
}

// Access reads the element at index without mutating the array.
func (a *Array) Access(index int) []trace.Step {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.rec.Reset()

	if index < 0 || index >= len(a.elements) {
		a.rec.Record(trace.TagInvalidIndex,
			fmt.Sprintf("Invalid access index %d", index),
			a.snapshots(), "", map[string]any{"index": index, "size": len(a.elements)})
		return a.rec.Steps()
	}

	el := a.elements[index]
	a.rec.Record(TagAccess,
		fmt.Sprintf("Access element at index %d: %s", index, el.item.Name),
		a.snapshots(), el.id, map[string]any{"file": el.item.Name, "index": index})
	return a.rec.Steps()
}

// Resize changes the capacity, dropping trailing elements that no longer fit.
func (a *Array) Resize(capacity int) []trace.Step {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.rec.Reset()

	if capacity < 0 {
		a.rec.Record(TagInvalidCapacity,
			fmt.Sprintf("Invalid capacity %d", capacity),
			a.snapshots(), "", map[string]any{"capacity": a.capacity})
		return a.rec.Steps()
	}

	var removed []string
	a.capacity = capacity
	if len(a.elements) > capacity {
		removed = a.itemIDs(a.elements[capacity:])
		a.elements = a.elements[:capacity:capacity]
	}
	a.reindex()
	a.rec.Record(TagResize,
		fmt.Sprintf("Resized array to %d", capacity),
		a.snapshots(), "", map[string]any{"capacity": capacity, "dropped": len(removed), "removedIds": removed})
	return a.rec.Steps()
}

// Clear removes every element. Capacity is kept.
func (a *Array) Clear() []trace.Step {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.rec.Reset()
	removed := a.itemIDs(a.elements)
	a.elements = nil
	a.rec.Record(trace.TagCleared, "Array cleared", a.snapshots(), "",
		map[string]any{"capacity": a.capacity, "removedIds": removed})
	return a.rec.Steps()
}

// Size returns the number of elements.
func (a *Array) Size() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.elements)
}

// Capacity returns the maximum number of elements.
func (a *Array) Capacity() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.capacity
}

// IsEmpty reports whether the array holds no elements.
func (a *Array) IsEmpty() bool {
	return a.Size() == 0
}

// IsFull reports whether the array is at capacity.
func (a *Array) IsFull() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.elements) >= a.capacity
}

// Items returns the items in index order.
func (a *Array) Items() []schema.Item {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]schema.Item, len(a.elements))
	for i, el := range a.elements {
		out[i] = el.item
	}
	return out
}

// Snapshots returns the current rendering of the array without recording a step.
func (a *Array) Snapshots() []trace.Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.snapshots()
}

// View returns size, capacity, items and rendering read under one lock.
func (a *Array) View() View {
	a.mu.Lock()
	defer a.mu.Unlock()
	items := make([]schema.Item, len(a.elements))
	for i, el := range a.elements {
		items[i] = el.item
	}
	return View{
		Size:     len(a.elements),
		Capacity: a.capacity,
		IsFull:   len(a.elements) >= a.capacity,
		Items:    items,
		Nodes:    a.snapshots(),
	}
}

func (a *Array) itemIDs(els []*arrayElement) []string {
	out := make([]string, len(els))
	for i, el := range els {
		out[i] = el.item.ID
	}
	return out
}

func (a *Array) reindex() {
	for i, el := range a.elements {
		el.index = i
	}
}

func (a *Array) snapshots() []trace.Snapshot {
	out := make([]trace.Snapshot, len(a.elements))
	for i, el := range a.elements {
		out[i] = trace.Snapshot{
			ID:          el.id,
			Name:        el.item.Name,
			Size:        el.item.SizeFormatted(),
			ContentType: el.item.ContentType,
			Index:       el.index,
			Position:    el.index,
		}
	}
	return out
}
