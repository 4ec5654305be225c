package trace

import "strings"

// Tag is the operation tag of a visualization step. Tags are structure
// specific; the common ones are declared here and each simulator declares
// its own.
type Tag string

const (
	TagComplete     Tag = "COMPLETE"
	TagCompare      Tag = "COMPARE"
	TagTraverse     Tag = "TRAVERSE"
	TagFound        Tag = "FOUND"
	TagNotFound     Tag = "NOT_FOUND"
	TagCreateNode   Tag = "CREATE_NODE"
	TagRemoving     Tag = "REMOVING"
	TagOverflow     Tag = "OVERFLOW"
	TagEmpty        Tag = "EMPTY"
	TagInvalidIndex Tag = "INVALID_INDEX"
	TagStartSearch  Tag = "START_SEARCH"
	TagCleared      Tag = "CLEARED"
)

// Tags that end a trace but belong to a single simulator. They live here so
// IsTerminal can name them.
const (
	TagUnderflow       Tag = "UNDERFLOW"
	TagQueueFull       Tag = "QUEUE_FULL"
	TagInvalidCapacity Tag = "INVALID_CAPACITY"
	TagAccess          Tag = "ACCESS"
	TagResize          Tag = "RESIZE"
	TagPeek            Tag = "PEEK"
)

// Snapshot is a read-only projection of one element of a structure. It
// carries copies only, never references into the live structure. Fields
// that do not apply to a structure are left at their zero value.
type Snapshot struct {
	ID          string `json:"id"`
	Name        string `json:"filename"`
	Size        string `json:"size"`
	ContentType string `json:"content_type,omitempty"`

	Index    int `json:"index"`
	Position int `json:"position"`
	Level    int `json:"level"`

	NextID   string `json:"next_id,omitempty"`
	LeftID   string `json:"left_child_id,omitempty"`
	RightID  string `json:"right_child_id,omitempty"`
	ParentID string `json:"parent_id,omitempty"`

	IsFront bool `json:"is_front,omitempty"`
	IsRear  bool `json:"is_rear,omitempty"`
	IsTop   bool `json:"is_top,omitempty"`
}

// Step is one recorded, self-contained rendering of a structure plus the
// operation that produced it. State alone is a complete rendering of the
// structure at the instant the step was recorded.
type Step struct {
	Operation   Tag            `json:"operation"`
	Description string         `json:"description"`
	State       []Snapshot     `json:"state"`
	Highlighted string         `json:"highlighted_id,omitempty"`
	Metadata    map[string]any `json:"metadata"`
}

// IsTerminal reports whether the step's tag is one that ends a trace. Used
// by pacing policies that linger on final frames. Single-step reads such as
// ACCESS and PEEK count as terminal.
func (s Step) IsTerminal() bool {
	switch s.Operation {
	case TagFound, TagNotFound, TagOverflow, TagInvalidIndex, TagCleared,
		TagUnderflow, TagQueueFull, TagInvalidCapacity,
		TagAccess, TagResize, TagPeek:
		return true
	}
	op := string(s.Operation)
	return strings.HasSuffix(op, "COMPLETE") || strings.HasPrefix(op, "EMPTY") || strings.HasSuffix(op, "EMPTY")
}

// Last returns the final step of a trace, or the zero Step when the trace
// is empty.
func Last(steps []Step) Step {
	if len(steps) == 0 {
		return Step{}
	}
	return steps[len(steps)-1]
}

// Tags returns the operation tags of a trace in order.
func Tags(steps []Step) []Tag {
	out := make([]Tag, len(steps))
	for i, s := range steps {
		out[i] = s.Operation
	}
	return out
}
