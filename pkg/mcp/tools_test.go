package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rendis/dsviz/internal/pacing"
	"github.com/rendis/dsviz/internal/streaming"
	"github.com/rendis/dsviz/internal/visualizer"
	"github.com/rendis/dsviz/pkg/schema"
)

// --- Helpers ---

func newTestServer(t *testing.T) *Server {
	t.Helper()
	hub := streaming.NewMemoryHub()
	p := pacing.NewPacer(pacing.Deps{
		Hub:      hub,
		Pool:     pacing.NewWorkerPool(2),
		Policies: map[string]pacing.DelayPolicy{},
		Default:  pacing.FixedDelay(0),
	})
	t.Cleanup(func() {
		p.Shutdown()
		hub.Close()
	})
	return NewServer(ServerDeps{
		Service: visualizer.New(visualizer.Config{}, visualizer.Deps{Pacer: p}),
		Hub:     hub,
	})
}

func buildRequest(toolName string, args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      toolName,
			Arguments: args,
		},
	}
}

func extractText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	return mcp.GetTextFromContent(result.Content[0])
}

func decodeResult(t *testing.T, result *mcp.CallToolResult, v any) {
	t.Helper()
	require.False(t, result.IsError, extractText(t, result))
	require.NoError(t, json.Unmarshal([]byte(extractText(t, result)), v))
}

// --- Tests ---

func TestStructureTool(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	result, err := s.handleStructure(ctx, buildRequest("dsviz.structure", map[string]any{
		"structure":    "stack",
		"operation":    "push",
		"filename":     "photo.png",
		"content_type": "image/png",
		"size":         float64(2048),
	}))
	require.NoError(t, err)

	var out struct {
		Channel string           `json:"channel"`
		Steps   []map[string]any `json:"steps"`
	}
	decodeResult(t, result, &out)
	assert.Equal(t, schema.ChannelStack, out.Channel)
	assert.NotEmpty(t, out.Steps)

	st, err := s.svc.State(schema.StructureStack)
	require.NoError(t, err)
	require.Len(t, st.Items, 1)
	assert.Equal(t, "photo.png", st.Items[0].Name)
	assert.Equal(t, int64(2048), st.Items[0].Size)
}

func TestStructureToolJQ(t *testing.T) {
	s := newTestServer(t)
	result, err := s.handleStructure(context.Background(), buildRequest("dsviz.structure", map[string]any{
		"structure": "queue",
		"operation": "enqueue",
		"filename":  "a.txt",
		"jq":        "length",
	}))
	require.NoError(t, err)

	var n int
	decodeResult(t, result, &n)
	assert.Greater(t, n, 0)
}

func TestStructureToolErrors(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	tests := []struct {
		name string
		args map[string]any
	}{
		{"missing structure", map[string]any{"operation": "push"}},
		{"unknown structure", map[string]any{"structure": "heap", "operation": "push"}},
		{"missing operation", map[string]any{"structure": "stack"}},
		{"unsupported operation", map[string]any{"structure": "stack", "operation": "enqueue"}},
		{"missing item", map[string]any{"structure": "stack", "operation": "push"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result, err := s.handleStructure(ctx, buildRequest("dsviz.structure", tc.args))
			require.NoError(t, err)
			assert.True(t, result.IsError)
		})
	}
}

func TestStateTool(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	for _, name := range []string{"b.txt", "a.txt", "c.txt"} {
		_, err := s.handleStructure(ctx, buildRequest("dsviz.structure", map[string]any{
			"structure": "tree", "operation": "insert", "filename": name,
		}))
		require.NoError(t, err)
	}

	result, err := s.handleState(ctx, buildRequest("dsviz.state", map[string]any{"structure": "tree"}))
	require.NoError(t, err)

	var st struct {
		Size    int      `json:"size"`
		InOrder []string `json:"in_order"`
	}
	decodeResult(t, result, &st)
	assert.Equal(t, 3, st.Size)
	assert.Len(t, st.InOrder, 3)
}

func TestSortTool(t *testing.T) {
	s := newTestServer(t)
	result, err := s.handleSort(context.Background(), buildRequest("dsviz.sort", map[string]any{
		"algorithm": "insertion",
		"array":     []any{float64(4), float64(2), float64(3), float64(1)},
		"jq":        ".finalArray",
	}))
	require.NoError(t, err)

	var sorted []int
	decodeResult(t, result, &sorted)
	assert.Equal(t, []int{1, 2, 3, 4}, sorted)
}

func TestSortToolRejectsFractions(t *testing.T) {
	s := newTestServer(t)
	result, err := s.handleSort(context.Background(), buildRequest("dsviz.sort", map[string]any{
		"algorithm": "bubble",
		"array":     []any{1.5, float64(2)},
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestSearchTool(t *testing.T) {
	s := newTestServer(t)
	result, err := s.handleSearch(context.Background(), buildRequest("dsviz.search", map[string]any{
		"algorithm": "jump",
		"array":     []any{float64(1), float64(4), float64(9), float64(16), float64(25)},
		"target":    float64(16),
	}))
	require.NoError(t, err)

	var out struct {
		Found bool `json:"found"`
		Index int  `json:"index"`
	}
	decodeResult(t, result, &out)
	assert.True(t, out.Found)
	assert.Equal(t, 3, out.Index)
}

func TestPathTool(t *testing.T) {
	s := newTestServer(t)
	result, err := s.handlePath(context.Background(), buildRequest("dsviz.path", map[string]any{
		"algorithm": "dijkstra",
		"map":       "gauteng",
		"start":     "johannesburg",
		"end":       "pretoria",
	}))
	require.NoError(t, err)

	var out struct {
		Path []string `json:"path"`
	}
	decodeResult(t, result, &out)
	require.NotEmpty(t, out.Path)
	assert.Equal(t, "johannesburg", out.Path[0])
	assert.Equal(t, "pretoria", out.Path[len(out.Path)-1])
}

func TestPathToolUnknownMap(t *testing.T) {
	s := newTestServer(t)
	result, err := s.handlePath(context.Background(), buildRequest("dsviz.path", map[string]any{
		"algorithm": "bfs",
		"map":       "atlantis",
		"start":     "a",
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestRenderTool(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	_, err := s.handleStructure(ctx, buildRequest("dsviz.structure", map[string]any{
		"structure": "list", "operation": "insert", "filename": "head.txt",
	}))
	require.NoError(t, err)

	result, err := s.handleRender(ctx, buildRequest("dsviz.render", map[string]any{
		"structure": "list",
		"format":    "ascii",
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)
	text := extractText(t, result)
	assert.Contains(t, text, "head.txt")
	assert.Contains(t, text, "NULL")

	result, err = s.handleRender(ctx, buildRequest("dsviz.render", map[string]any{
		"map":    "gauteng",
		"format": "mermaid",
	}))
	require.NoError(t, err)
	assert.Contains(t, extractText(t, result), "graph LR")
}

func TestRenderToolErrors(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	result, err := s.handleRender(ctx, buildRequest("dsviz.render", map[string]any{"format": "ascii"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)

	result, err = s.handleRender(ctx, buildRequest("dsviz.render", map[string]any{
		"structure": "stack",
		"format":    "bmp",
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestWatchToolNeedsSession(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	result, err := s.handleWatch(ctx, buildRequest("dsviz.watch", map[string]any{"channel": "nowhere"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)

	result, err = s.handleWatch(ctx, buildRequest("dsviz.watch", map[string]any{"channel": schema.ChannelStack}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, extractText(t, result), "session")
}

func TestIntSlice(t *testing.T) {
	req := buildRequest("x", map[string]any{
		"ok":    []any{float64(1), 2, json.Number("3")},
		"bad":   []any{"one"},
		"plain": "1,2,3",
	})

	got, err := intSlice(req, "ok")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, got)

	_, err = intSlice(req, "bad")
	assert.Error(t, err)
	_, err = intSlice(req, "plain")
	assert.Error(t, err)
	_, err = intSlice(req, "missing")
	assert.Error(t, err)
}

func TestStructureTool_ArrayIndexIsRequired(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	result, err := s.handleStructure(ctx, buildRequest("dsviz.structure", map[string]any{
		"structure": "array",
		"operation": "resize",
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, extractText(t, result), "capacity")

	result, err = s.handleStructure(ctx, buildRequest("dsviz.structure", map[string]any{
		"structure": "array",
		"operation": "access",
		"index":     float64(0),
	}))
	require.NoError(t, err)
	var out struct {
		Result string `json:"result"`
	}
	decodeResult(t, result, &out)
	assert.Equal(t, "INVALID_INDEX", out.Result)
}
