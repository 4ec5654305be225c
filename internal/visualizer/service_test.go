package visualizer

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rendis/dsviz/internal/algorithms"
	"github.com/rendis/dsviz/internal/metrics"
	"github.com/rendis/dsviz/internal/pacing"
	"github.com/rendis/dsviz/internal/streaming"
	"github.com/rendis/dsviz/internal/structures"
	"github.com/rendis/dsviz/internal/trace"
	"github.com/rendis/dsviz/pkg/schema"
)

type fakeCatalog struct {
	mu    sync.Mutex
	items []schema.Item
}

func (f *fakeCatalog) Put(_ context.Context, item schema.Item) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = append(f.items, item)
	return nil
}

func (f *fakeCatalog) UpdateStatus(_ context.Context, id string, status schema.ItemStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.items {
		if f.items[i].ID == id {
			f.items[i].Status = status
			return nil
		}
	}
	return schema.NewErrorf(schema.ErrCodeNotFound, "item %q not found", id)
}

func (f *fakeCatalog) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.items {
		if f.items[i].ID == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return schema.NewErrorf(schema.ErrCodeNotFound, "item %q not found", id)
}

func (f *fakeCatalog) snapshot() []schema.Item {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]schema.Item(nil), f.items...)
}

type harness struct {
	svc     *Service
	hub     *streaming.MemoryHub
	pacer   *pacing.Pacer
	catalog *fakeCatalog
}

func newHarness(t *testing.T, cfg Config) *harness {
	t.Helper()
	hub := streaming.NewMemoryHub()
	m := metrics.New(nil)
	p := pacing.NewPacer(pacing.Deps{
		Hub:      hub,
		Pool:     pacing.NewWorkerPool(4),
		Policies: map[string]pacing.DelayPolicy{},
		Default:  pacing.FixedDelay(0),
		Observer: m,
	})
	cat := &fakeCatalog{}
	t.Cleanup(func() {
		p.Shutdown()
		hub.Close()
	})
	return &harness{
		svc:     New(cfg, Deps{Pacer: p, Catalog: cat, Metrics: m}),
		hub:     hub,
		pacer:   p,
		catalog: cat,
	}
}

func (h *harness) subscribe(t *testing.T, channel string) <-chan streaming.StreamEvent {
	t.Helper()
	ch, cancel, err := h.hub.Subscribe(context.Background(), streaming.EventFilter{Channels: []string{channel}})
	require.NoError(t, err)
	t.Cleanup(cancel)
	return ch
}

func collect(t *testing.T, ch <-chan streaming.StreamEvent, n int) []streaming.StreamEvent {
	t.Helper()
	var out []streaming.StreamEvent
	deadline := time.After(2 * time.Second)
	for len(out) < n {
		select {
		case e := <-ch:
			out = append(out, e)
		case <-deadline:
			t.Fatalf("got %d of %d events", len(out), n)
		}
	}
	return out
}

func newItem(name string) *schema.Item {
	it := schema.NewItem(name, "text/plain", 100)
	return &it
}

func TestApply_ArrayInsertBroadcastsTrace(t *testing.T) {
	h := newHarness(t, Config{ArrayCapacity: 3})
	events := h.subscribe(t, schema.ChannelArray)

	res, err := h.svc.Apply(context.Background(), Request{
		Structure: schema.StructureArray, Operation: "INSERT", Item: newItem("a.txt"), Index: Int(0),
	})
	require.NoError(t, err)
	assert.Equal(t, schema.ChannelArray, res.Channel)
	assert.Equal(t, []trace.Tag{structures.TagCreateElement, structures.TagAppend, trace.TagComplete}, trace.Tags(res.Steps))

	got := collect(t, events, len(res.Steps))
	for i, e := range got {
		assert.Equal(t, i+1, e.StepNumber)
		assert.Equal(t, len(res.Steps), e.TotalSteps)
		assert.Equal(t, schema.EventStep, e.EventType)
		msg, ok := e.Payload.(StepMessage)
		require.True(t, ok)
		assert.Equal(t, res.Steps[i].Description, msg.Description)
	}

	h.pacer.Wait()
	require.Len(t, h.catalog.items, 1)
	assert.Equal(t, "a.txt", h.catalog.items[0].Name)
}

func TestApply_OverflowIsNotAnError(t *testing.T) {
	h := newHarness(t, Config{StackCapacity: 1})

	_, err := h.svc.Apply(context.Background(), Request{Structure: schema.StructureStack, Operation: OpPush, Item: newItem("a")})
	require.NoError(t, err)

	res, err := h.svc.Apply(context.Background(), Request{Structure: schema.StructureStack, Operation: OpPush, Item: newItem("b")})
	require.NoError(t, err)
	assert.Equal(t, trace.TagOverflow, trace.Last(res.Steps).Operation)

	h.pacer.Wait()
	assert.Len(t, h.catalog.items, 1, "rejected items are not catalogued")
}

func TestApply_RejectsBadRequests(t *testing.T) {
	h := newHarness(t, Config{})
	ctx := context.Background()

	_, err := h.svc.Apply(ctx, Request{Structure: "heap", Operation: OpInsert})
	assert.True(t, schema.IsCode(err, schema.ErrCodeUnknownStructure))

	_, err = h.svc.Apply(ctx, Request{Structure: schema.StructureTree, Operation: OpDelete})
	assert.True(t, schema.IsCode(err, schema.ErrCodeValidation))

	_, err = h.svc.Apply(ctx, Request{Structure: schema.StructureQueue, Operation: OpEnqueue})
	assert.True(t, schema.IsCode(err, schema.ErrCodeValidation))
}

func TestApply_QueueScenario(t *testing.T) {
	h := newHarness(t, Config{QueueCapacity: 2})
	ctx := context.Background()

	for _, name := range []string{"x", "y"} {
		_, err := h.svc.Apply(ctx, Request{Structure: schema.StructureQueue, Operation: OpEnqueue, Item: newItem(name)})
		require.NoError(t, err)
	}
	res, err := h.svc.Apply(ctx, Request{Structure: schema.StructureQueue, Operation: OpDequeue})
	require.NoError(t, err)
	assert.Equal(t, "x", trace.Last(res.Steps).Metadata["removedName"])

	st, err := h.svc.State(schema.StructureQueue)
	require.NoError(t, err)
	assert.Equal(t, 1, st.Size)
	assert.Equal(t, 2, st.Capacity)
	assert.False(t, st.IsFull)
	require.Len(t, st.Items, 1)
	assert.Equal(t, "y", st.Items[0].Name)
}

func TestState_TreeInOrder(t *testing.T) {
	h := newHarness(t, Config{})
	for _, name := range []string{"m", "c", "x", "a"} {
		_, err := h.svc.Apply(context.Background(), Request{Structure: schema.StructureTree, Operation: OpInsert, Item: newItem(name)})
		require.NoError(t, err)
	}

	st, err := h.svc.State(schema.StructureTree)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c", "m", "x"}, st.InOrder)
	assert.Len(t, st.Nodes, 4)

	_, err = h.svc.State("heap")
	assert.Error(t, err)
}

func TestClearAll(t *testing.T) {
	h := newHarness(t, Config{})
	ctx := context.Background()

	_, err := h.svc.Apply(ctx, Request{Structure: schema.StructureList, Operation: OpInsert, Item: newItem("a")})
	require.NoError(t, err)
	_, err = h.svc.Apply(ctx, Request{Structure: schema.StructureArray, Operation: OpInsert, Item: newItem("b")})
	require.NoError(t, err)

	require.NoError(t, h.svc.ClearAll(ctx))
	for _, kind := range schema.StructureKinds {
		st, err := h.svc.State(kind)
		require.NoError(t, err)
		assert.True(t, st.IsEmpty, kind)
	}
}

func TestSortBroadcastsOnAlgorithmChannel(t *testing.T) {
	h := newHarness(t, Config{})
	events := h.subscribe(t, schema.ChannelAlgorithms)

	res, err := h.svc.Sort(context.Background(), algorithms.SortBubble, []int{3, 1, 2})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, res.FinalArray)

	got := collect(t, events, len(res.Steps))
	assert.Equal(t, "sorted", got[len(got)-1].Operation)
	assert.Equal(t, schema.EventAlgorithmStep, got[0].EventType)

	_, err = h.svc.Sort(context.Background(), "bogo", []int{1})
	assert.ErrorIs(t, err, algorithms.ErrUnknownAlgorithm)
}

func TestSearchScenario(t *testing.T) {
	h := newHarness(t, Config{})

	res, err := h.svc.Search(context.Background(), algorithms.SearchBinary, []int{1, 3, 5, 7, 9}, 7)
	require.NoError(t, err)
	assert.True(t, res.Found)
	assert.Equal(t, 3, res.Index)
	assert.Equal(t, 2, res.ElementsChecked)
}

func TestTraverseTreeAndGraph(t *testing.T) {
	h := newHarness(t, Config{})
	events := h.subscribe(t, schema.ChannelTraversal)

	res, err := h.svc.Traverse(context.Background(), TraverseRequest{
		Algorithm: algorithms.TraverseInOrder, Structure: "tree", Values: []string{"m", "c", "x"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "m", "x"}, res.TraversalOrder)

	got := collect(t, events, 3)
	assert.Equal(t, "c", got[0].Payload.(map[string]any)["nodeId"])

	res, err = h.svc.Traverse(context.Background(), TraverseRequest{
		Algorithm: algorithms.TraverseBFS, Structure: "graph", Map: "gauteng", Start: "pretoria",
	})
	require.NoError(t, err)
	assert.Equal(t, "pretoria", res.TraversalOrder[0])

	_, err = h.svc.Traverse(context.Background(), TraverseRequest{Algorithm: "bfs", Structure: "heap"})
	assert.Error(t, err)
}

func TestShortestPathOnMap(t *testing.T) {
	h := newHarness(t, Config{})
	events := h.subscribe(t, schema.ChannelPathfind)

	res, err := h.svc.ShortestPath(context.Background(), PathRequest{
		Algorithm: PathDijkstra, Map: "gauteng", Start: "johannesburg", End: "pretoria",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"johannesburg", "sandton", "midrand", "centurion", "pretoria"}, res.Path)
	assert.Equal(t, 70.0, res.Distance)
	assert.Positive(t, res.NodesExplored)

	got := collect(t, events, len(res.Steps))
	assert.Equal(t, "path_found", got[len(got)-1].Operation)

	astar, err := h.svc.ShortestPath(context.Background(), PathRequest{
		Algorithm: PathAStar, Map: "gauteng", Start: "johannesburg", End: "pretoria",
	})
	require.NoError(t, err)
	assert.Equal(t, res.Distance, astar.Distance)
}

func TestShortestPathInlineGraph(t *testing.T) {
	h := newHarness(t, Config{})

	g := algorithms.NewGraph()
	g.AddNode(algorithms.Node{ID: "A"})
	g.AddNode(algorithms.Node{ID: "B"})
	g.AddEdge(algorithms.Edge{Source: "A", Target: "B", Weight: 4})

	res, err := h.svc.ShortestPath(context.Background(), PathRequest{Algorithm: PathBFS, Graph: g, Start: "A"})
	require.NoError(t, err)
	assert.Empty(t, res.Path)
	assert.Equal(t, 2, res.NodesExplored)

	res, err = h.svc.ShortestPath(context.Background(), PathRequest{Algorithm: PathDijkstra, Graph: g, Start: "A", End: "Z"})
	require.NoError(t, err)
	assert.Equal(t, "invalid_node", res.Steps[0].Type)

	_, err = h.svc.ShortestPath(context.Background(), PathRequest{Algorithm: "greedy", Graph: g, Start: "A"})
	assert.True(t, schema.IsCode(err, schema.ErrCodeUnknownAlgorithm))

	_, err = h.svc.ShortestPath(context.Background(), PathRequest{Algorithm: PathBFS, Start: "A"})
	assert.True(t, schema.IsCode(err, schema.ErrCodeValidation))

	g.AddEdge(algorithms.Edge{Source: "A", Target: "Q", Weight: 1})
	_, err = h.svc.ShortestPath(context.Background(), PathRequest{Algorithm: PathBFS, Graph: g, Start: "A"})
	assert.True(t, schema.IsCode(err, schema.ErrCodeInvalidGraph))
}

func TestServiceWithoutPacer(t *testing.T) {
	svc := New(Config{}, Deps{})
	res, err := svc.Apply(context.Background(), Request{Structure: schema.StructureStack, Operation: OpPeek})
	require.NoError(t, err)
	assert.Equal(t, []trace.Tag{structures.TagEmptyStack}, trace.Tags(res.Steps))
}

func TestApply_ArrayRequiresIndexAndCapacity(t *testing.T) {
	h := newHarness(t, Config{ArrayCapacity: 3})
	ctx := context.Background()
	for _, name := range []string{"a", "b", "c"} {
		_, err := h.svc.Apply(ctx, Request{Structure: schema.StructureArray, Operation: OpInsert, Item: newItem(name)})
		require.NoError(t, err)
	}

	for _, op := range []string{OpDelete, OpAccess, OpResize} {
		_, err := h.svc.Apply(ctx, Request{Structure: schema.StructureArray, Operation: op})
		assert.True(t, schema.IsCode(err, schema.ErrCodeValidation), op)
	}
	st, err := h.svc.State(schema.StructureArray)
	require.NoError(t, err)
	assert.Equal(t, 3, st.Size)
	assert.Equal(t, 3, st.Capacity)

	// Inserting without an index goes to the front.
	_, err = h.svc.Apply(ctx, Request{Structure: schema.StructureArray, Operation: OpResize, Capacity: Int(4)})
	require.NoError(t, err)
	_, err = h.svc.Apply(ctx, Request{Structure: schema.StructureArray, Operation: OpInsert, Item: newItem("z")})
	require.NoError(t, err)
	st, err = h.svc.State(schema.StructureArray)
	require.NoError(t, err)
	assert.Equal(t, "z", st.Items[0].Name)
}

func TestApply_CatalogFollowsItems(t *testing.T) {
	h := newHarness(t, Config{})
	ctx := context.Background()

	a, b := newItem("a.txt"), newItem("b.txt")
	_, err := h.svc.Apply(ctx, Request{Structure: schema.StructureStack, Operation: OpPush, Item: a})
	require.NoError(t, err)
	_, err = h.svc.Apply(ctx, Request{Structure: schema.StructureStack, Operation: OpPush, Item: b})
	require.NoError(t, err)
	require.Len(t, h.catalog.snapshot(), 2)

	res, err := h.svc.Apply(ctx, Request{Structure: schema.StructureStack, Operation: OpPop})
	require.NoError(t, err)
	assert.Equal(t, structures.TagPopComplete, trace.Last(res.Steps).Operation)
	items := h.catalog.snapshot()
	require.Len(t, items, 1)
	assert.Equal(t, a.ID, items[0].ID)

	_, err = h.svc.Clear(ctx, schema.StructureStack)
	require.NoError(t, err)
	assert.Empty(t, h.catalog.snapshot())

	c := newItem("c.txt")
	_, err = h.svc.Apply(ctx, Request{Structure: schema.StructureList, Operation: OpInsert, Item: c})
	require.NoError(t, err)
	res, err = h.svc.Apply(ctx, Request{Structure: schema.StructureList, Operation: OpSearch, Name: "c.txt"})
	require.NoError(t, err)
	assert.Equal(t, trace.TagFound, trace.Last(res.Steps).Operation)
	items = h.catalog.snapshot()
	require.Len(t, items, 1)
	assert.Equal(t, schema.ItemStatusFound, items[0].Status)

	// A missed search leaves statuses alone.
	_, err = h.svc.Apply(ctx, Request{Structure: schema.StructureList, Operation: OpSearch, Name: "zzz"})
	require.NoError(t, err)
	assert.Equal(t, schema.ItemStatusFound, h.catalog.snapshot()[0].Status)
}

func TestApply_ConcurrentOperationsPlayInMutationOrder(t *testing.T) {
	const n = 8
	h := newHarness(t, Config{ArrayCapacity: n})
	events := h.subscribe(t, schema.ChannelArray)

	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := h.svc.Apply(context.Background(), Request{
				Structure: schema.StructureArray, Operation: OpInsert, Item: newItem(string(rune('a' + i))), Index: Int(n),
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	h.pacer.Wait()

	var sizes []int
	var last StepMessage
	for len(events) > 0 {
		e := <-events
		msg, ok := e.Payload.(StepMessage)
		require.True(t, ok)
		last = msg
		if e.Operation == string(trace.TagComplete) {
			sizes = append(sizes, len(msg.Nodes))
		}
	}
	require.NotEmpty(t, sizes)
	for i := 1; i < len(sizes); i++ {
		assert.Greater(t, sizes[i], sizes[i-1], "an older trace was broadcast after a newer one")
	}
	assert.Len(t, last.Nodes, n, "the final frame shows the final array")
}

func TestState_SingleConsistentView(t *testing.T) {
	h := newHarness(t, Config{StackCapacity: 4})
	ctx := context.Background()
	stop := make(chan struct{})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; ; i++ {
			select {
			case <-stop:
				return
			default:
			}
			op := OpPush
			if i%3 == 2 {
				op = OpPop
			}
			_, _ = h.svc.Apply(ctx, Request{Structure: schema.StructureStack, Operation: op, Item: newItem("s")})
		}
	}()

	for range 300 {
		st, err := h.svc.State(schema.StructureStack)
		require.NoError(t, err)
		assert.Len(t, st.Items, st.Size)
		assert.Len(t, st.Nodes, st.Size)
		assert.Equal(t, st.Size == 0, st.IsEmpty)
		assert.Equal(t, st.Size >= st.Capacity, st.IsFull)
	}
	close(stop)
	wg.Wait()
}

func TestStepFrames_LastFrameIsTerminal(t *testing.T) {
	h := newHarness(t, Config{})
	ctx := context.Background()
	_, err := h.svc.Apply(ctx, Request{Structure: schema.StructureQueue, Operation: OpEnqueue, Item: newItem("q")})
	require.NoError(t, err)

	res, err := h.svc.Apply(ctx, Request{Structure: schema.StructureQueue, Operation: OpPeek})
	require.NoError(t, err)
	frames := StepFrames(res.Steps)
	require.Len(t, frames, 1)
	assert.True(t, frames[0].Terminal)

	res, err = h.svc.Apply(ctx, Request{Structure: schema.StructureQueue, Operation: OpDequeue})
	require.NoError(t, err)
	frames = StepFrames(res.Steps)
	assert.False(t, frames[0].Terminal, "SHOW_FRONT opens a dequeue")
	assert.True(t, frames[len(frames)-1].Terminal)
}
