// Package visualizer owns one long-lived instance of every simulated
// structure, runs operations against them and hands the resulting traces
// to the pacer for broadcast.
package visualizer

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/rendis/dsviz/internal/logging"
	"github.com/rendis/dsviz/internal/metrics"
	"github.com/rendis/dsviz/internal/pacing"
	"github.com/rendis/dsviz/internal/structures"
	"github.com/rendis/dsviz/internal/trace"
	"github.com/rendis/dsviz/pkg/schema"
)

// Operation names accepted by Apply.
const (
	OpInsert  = "insert"
	OpDelete  = "delete"
	OpSearch  = "search"
	OpAccess  = "access"
	OpResize  = "resize"
	OpPush    = "push"
	OpPop     = "pop"
	OpPeek    = "peek"
	OpEnqueue = "enqueue"
	OpDequeue = "dequeue"
	OpClear   = "clear"
)

// Operations lists the operations each structure supports.
var Operations = map[schema.StructureKind][]string{
	schema.StructureArray: {OpInsert, OpDelete, OpSearch, OpAccess, OpResize, OpClear},
	schema.StructureList:  {OpInsert, OpDelete, OpSearch, OpClear},
	schema.StructureStack: {OpPush, OpPop, OpPeek, OpClear},
	schema.StructureQueue: {OpEnqueue, OpDequeue, OpPeek, OpClear},
	schema.StructureTree:  {OpInsert, OpSearch, OpClear},
}

// Config sizes the bounded structures. Zero values fall back to 10.
type Config struct {
	ArrayCapacity int `json:"array_capacity" yaml:"array_capacity"`
	StackCapacity int `json:"stack_capacity" yaml:"stack_capacity"`
	QueueCapacity int `json:"queue_capacity" yaml:"queue_capacity"`
}

const defaultCapacity = 10

func (c Config) withDefaults() Config {
	if c.ArrayCapacity <= 0 {
		c.ArrayCapacity = defaultCapacity
	}
	if c.StackCapacity <= 0 {
		c.StackCapacity = defaultCapacity
	}
	if c.QueueCapacity <= 0 {
		c.QueueCapacity = defaultCapacity
	}
	return c
}

// ItemRecorder keeps the catalog in step with the structures: items are
// put when they enter, marked found by a successful search and deleted
// when they leave.
type ItemRecorder interface {
	Put(ctx context.Context, item schema.Item) error
	UpdateStatus(ctx context.Context, id string, status schema.ItemStatus) error
	Delete(ctx context.Context, id string) error
}

// Deps holds the collaborators of a Service. Only Pacer is required.
type Deps struct {
	Pacer   *pacing.Pacer
	Catalog ItemRecorder
	Metrics *metrics.Metrics
	Logger  *slog.Logger
}

// Request is one structure operation. Item is used by inserting operations,
// Name by search and list delete, Index by array insert, delete and access,
// Capacity by resize. Array delete and access require Index and resize
// requires Capacity; insert without Index inserts at the front.
type Request struct {
	Structure schema.StructureKind `json:"structure"`
	Operation string               `json:"operation"`
	Item      *schema.Item         `json:"item,omitempty"`
	Name      string               `json:"name,omitempty"`
	Index     *int                 `json:"index,omitempty"`
	Capacity  *int                 `json:"capacity,omitempty"`
}

// Int returns a pointer to v, for the optional Request fields.
func Int(v int) *int { return &v }

// Result is what Apply hands back: the full trace and the channel it is
// being broadcast on.
type Result struct {
	Channel string       `json:"channel"`
	Steps   []trace.Step `json:"steps"`
}

// State is the read-only view of a structure.
type State struct {
	Structure schema.StructureKind `json:"structure"`
	Size      int                  `json:"size"`
	Capacity  int                  `json:"capacity"`
	IsEmpty   bool                 `json:"is_empty"`
	IsFull    bool                 `json:"is_full"`
	Items     []schema.Item        `json:"items"`
	Nodes     []trace.Snapshot     `json:"nodes"`
	InOrder   []string             `json:"in_order,omitempty"`
}

// StepMessage is the payload of every structure frame.
type StepMessage struct {
	Description   string           `json:"description"`
	Nodes         []trace.Snapshot `json:"nodes"`
	HighlightedID string           `json:"highlighted_node_id"`
	Metadata      map[string]any   `json:"metadata"`
}

// Service is the entry point for every structure and algorithm operation.
type Service struct {
	cfg     Config
	pacer   *pacing.Pacer
	catalog ItemRecorder
	metrics *metrics.Metrics
	logger  *slog.Logger

	// ops serializes dispatch and scheduling per structure, so animations
	// reach the pacer in mutation order.
	ops map[schema.StructureKind]*sync.Mutex

	array *structures.Array
	list  *structures.LinkedList
	stack *structures.Stack
	queue *structures.Queue
	tree  *structures.BinaryTree
}

// New creates a Service with empty structures.
func New(cfg Config, deps Deps) *Service {
	cfg = cfg.withDefaults()
	ops := make(map[schema.StructureKind]*sync.Mutex, len(schema.StructureKinds))
	for _, kind := range schema.StructureKinds {
		ops[kind] = &sync.Mutex{}
	}
	return &Service{
		cfg:     cfg,
		ops:     ops,
		pacer:   deps.Pacer,
		catalog: deps.Catalog,
		metrics: deps.Metrics,
		logger:  logging.Default(deps.Logger),
		array:   structures.NewArray(cfg.ArrayCapacity),
		list:    structures.NewLinkedList(),
		stack:   structures.NewStack(cfg.StackCapacity),
		queue:   structures.NewQueue(cfg.QueueCapacity),
		tree:    structures.NewBinaryTree(),
	}
}

// Apply runs one operation, schedules its trace for broadcast and returns
// the trace. Structural failures such as overflow come back as a terminal
// step with a nil error; errors are reserved for malformed requests and a
// pacer that cannot take the animation.
func (s *Service) Apply(ctx context.Context, req Request) (Result, error) {
	kind := req.Structure
	op := strings.ToLower(req.Operation)
	ctx = logging.WithIDs(ctx, string(kind), op, kind.Channel())

	if kind.Channel() == "" {
		return Result{}, schema.NewErrorf(schema.ErrCodeUnknownStructure, "unknown structure %q", kind)
	}

	mu := s.ops[kind]
	mu.Lock()
	defer mu.Unlock()

	steps, err := s.dispatch(kind, op, req)
	if err != nil {
		return Result{}, err
	}

	outcome := metrics.OutcomeOK
	if rejected(steps) {
		outcome = metrics.OutcomeRejected
	}
	s.metrics.ObserveOperation(string(kind), op, outcome, len(steps))
	s.logger.DebugContext(ctx, "operation traced", "steps", len(steps), "outcome", outcome)

	if outcome == metrics.OutcomeOK {
		s.record(ctx, op, req.Item, steps)
	}

	channel := kind.Channel()
	if err := s.play(ctx, channel, schema.EventStep, StepFrames(steps)); err != nil {
		return Result{}, err
	}
	return Result{Channel: channel, Steps: steps}, nil
}

// record mirrors a successful operation into the catalog. Catalog failures
// are logged and never fail the operation.
func (s *Service) record(ctx context.Context, op string, item *schema.Item, steps []trace.Step) {
	if s.catalog == nil {
		return
	}
	last := trace.Last(steps)

	switch op {
	case OpInsert, OpPush, OpEnqueue:
		if item != nil {
			if err := s.catalog.Put(ctx, *item); err != nil {
				s.logger.WarnContext(ctx, "catalog write failed", "item", item.ID, "error", err)
			}
		}
	}
	if last.Operation == trace.TagFound {
		if id, ok := last.Metadata["itemId"].(string); ok {
			s.catalogCall(ctx, id, "catalog status update failed", func(ctx context.Context, id string) error {
				return s.catalog.UpdateStatus(ctx, id, schema.ItemStatusFound)
			})
		}
	}
	for _, id := range removedIDs(last) {
		s.catalogCall(ctx, id, "catalog delete failed", s.catalog.Delete)
	}
}

func (s *Service) catalogCall(ctx context.Context, id, msg string, call func(context.Context, string) error) {
	// Items that never reached the catalog have nothing to update.
	if err := call(ctx, id); err != nil && !schema.IsCode(err, schema.ErrCodeNotFound) {
		s.logger.WarnContext(ctx, msg, "item", id, "error", err)
	}
}

// removedIDs returns the ids of the items a step reports as gone.
func removedIDs(st trace.Step) []string {
	if id, ok := st.Metadata["removedId"].(string); ok {
		return []string{id}
	}
	ids, _ := st.Metadata["removedIds"].([]string)
	return ids
}

func (s *Service) dispatch(kind schema.StructureKind, op string, req Request) ([]trace.Step, error) {
	needItem := func() (schema.Item, error) {
		if req.Item == nil {
			return schema.Item{}, schema.NewErrorf(schema.ErrCodeValidation, "%s %s requires an item", kind, op).
				WithStructure(kind)
		}
		return *req.Item, nil
	}
	needInt := func(v *int, field string) (int, error) {
		if v == nil {
			return 0, schema.NewErrorf(schema.ErrCodeValidation, "%s %s requires %s", kind, op, field).
				WithStructure(kind)
		}
		return *v, nil
	}

	switch kind {
	case schema.StructureArray:
		switch op {
		case OpInsert:
			item, err := needItem()
			if err != nil {
				return nil, err
			}
			index := 0
			if req.Index != nil {
				index = *req.Index
			}
			return s.array.Insert(item, index), nil
		case OpDelete:
			index, err := needInt(req.Index, "index")
			if err != nil {
				return nil, err
			}
			return s.array.Delete(index), nil
		case OpSearch:
			return s.array.Search(req.Name), nil
		case OpAccess:
			index, err := needInt(req.Index, "index")
			if err != nil {
				return nil, err
			}
			return s.array.Access(index), nil
		case OpResize:
			capacity, err := needInt(req.Capacity, "capacity")
			if err != nil {
				return nil, err
			}
			return s.array.Resize(capacity), nil
		case OpClear:
			return s.array.Clear(), nil
		}
	case schema.StructureList:
		switch op {
		case OpInsert:
			item, err := needItem()
			if err != nil {
				return nil, err
			}
			return s.list.Insert(item), nil
		case OpDelete:
			return s.list.Delete(req.Name), nil
		case OpSearch:
			return s.list.Search(req.Name), nil
		case OpClear:
			return s.list.Clear(), nil
		}
	case schema.StructureStack:
		switch op {
		case OpPush:
			item, err := needItem()
			if err != nil {
				return nil, err
			}
			return s.stack.Push(item), nil
		case OpPop:
			return s.stack.Pop(), nil
		case OpPeek:
			return s.stack.Peek(), nil
		case OpClear:
			return s.stack.Clear(), nil
		}
	case schema.StructureQueue:
		switch op {
		case OpEnqueue:
			item, err := needItem()
			if err != nil {
				return nil, err
			}
			return s.queue.Enqueue(item), nil
		case OpDequeue:
			return s.queue.Dequeue(), nil
		case OpPeek:
			return s.queue.Peek(), nil
		case OpClear:
			return s.queue.Clear(), nil
		}
	case schema.StructureTree:
		switch op {
		case OpInsert:
			item, err := needItem()
			if err != nil {
				return nil, err
			}
			return s.tree.Insert(item), nil
		case OpSearch:
			return s.tree.Search(req.Name), nil
		case OpClear:
			return s.tree.Clear(), nil
		}
	}
	return nil, schema.NewErrorf(schema.ErrCodeValidation, "%s does not support %q", kind, op).
		WithStructure(kind).
		WithDetails(map[string]any{"supported": Operations[kind]})
}

// rejected reports whether the trace ends in a refusal that left the
// structure untouched.
func rejected(steps []trace.Step) bool {
	switch trace.Last(steps).Operation {
	case trace.TagOverflow, trace.TagInvalidIndex, structures.TagInvalidCapacity,
		structures.TagUnderflow, structures.TagQueueFull:
		return true
	}
	return false
}

// Clear empties one structure and broadcasts the CLEARED step.
func (s *Service) Clear(ctx context.Context, kind schema.StructureKind) (Result, error) {
	return s.Apply(ctx, Request{Structure: kind, Operation: OpClear})
}

// ClearKind is Clear without the result. It lets the service drive
// scheduled resets.
func (s *Service) ClearKind(ctx context.Context, kind schema.StructureKind) error {
	_, err := s.Clear(ctx, kind)
	return err
}

// ClearAll empties every structure.
func (s *Service) ClearAll(ctx context.Context) error {
	for _, kind := range schema.StructureKinds {
		if err := s.ClearKind(ctx, kind); err != nil {
			return err
		}
	}
	return nil
}

// State returns the current contents of a structure without recording
// any step. The whole view is read under the structure's lock.
func (s *Service) State(kind schema.StructureKind) (State, error) {
	var v structures.View
	switch kind {
	case schema.StructureArray:
		v = s.array.View()
	case schema.StructureList:
		v = s.list.View()
	case schema.StructureStack:
		v = s.stack.View()
	case schema.StructureQueue:
		v = s.queue.View()
	case schema.StructureTree:
		v = s.tree.View()
	default:
		return State{}, schema.NewErrorf(schema.ErrCodeUnknownStructure, "unknown structure %q", kind)
	}
	return State{
		Structure: kind,
		Size:      v.Size,
		Capacity:  v.Capacity,
		IsEmpty:   v.Size == 0,
		IsFull:    v.IsFull,
		Items:     v.Items,
		Nodes:     v.Nodes,
		InOrder:   v.InOrder,
	}, nil
}

// StepFrames converts a structure trace into pacer frames.
func StepFrames(steps []trace.Step) []pacing.Frame {
	frames := make([]pacing.Frame, len(steps))
	for i, st := range steps {
		frames[i] = pacing.Frame{
			Operation: string(st.Operation),
			Terminal:  st.IsTerminal() || i == len(steps)-1,
			Payload: StepMessage{
				Description:   st.Description,
				Nodes:         st.State,
				HighlightedID: st.Highlighted,
				Metadata:      st.Metadata,
			},
		}
	}
	return frames
}

func (s *Service) play(ctx context.Context, channel, eventType string, frames []pacing.Frame) error {
	if s.pacer == nil {
		return nil
	}
	if err := s.pacer.Play(ctx, channel, eventType, frames); err != nil {
		s.logger.WarnContext(ctx, "animation not scheduled", "error", err)
		return schema.NewErrorf(schema.ErrCodeCancelled, "schedule animation on %s", channel).WithCause(err)
	}
	return nil
}

// Pacer returns the pacer used for broadcasting, if any.
func (s *Service) Pacer() *pacing.Pacer {
	return s.pacer
}
