package mcp

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/rendis/dsviz/internal/diagram"
	"github.com/rendis/dsviz/internal/maps"
	"github.com/rendis/dsviz/internal/trace"
	"github.com/rendis/dsviz/internal/visualizer"
	"github.com/rendis/dsviz/pkg/schema"
)

// handleStructure runs one structure operation.
func (s *Server) handleStructure(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	kind, err := requireKind(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	op, err := req.RequireString("operation")
	if err != nil {
		return mcp.NewToolResultError("operation is required"), nil
	}

	vreq := visualizer.Request{
		Structure: kind,
		Operation: op,
		Name:      req.GetString("name", ""),
	}
	args := req.GetArguments()
	if _, ok := args["index"]; ok {
		vreq.Index = visualizer.Int(req.GetInt("index", 0))
	}
	if _, ok := args["capacity"]; ok {
		vreq.Capacity = visualizer.Int(req.GetInt("capacity", 0))
	}
	if filename := req.GetString("filename", ""); filename != "" {
		item := schema.NewItem(filename, req.GetString("content_type", ""), int64(req.GetFloat("size", 0)))
		vreq.Item = &item
	}

	res, err := s.svc.Apply(ctx, vreq)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("operation failed: %v", err)), nil
	}

	if q := req.GetString("jq", ""); q != "" {
		return s.query(ctx, q, res.Steps)
	}
	last := trace.Last(res.Steps)
	return marshalResult(map[string]any{
		"structure": kind,
		"operation": strings.ToLower(op),
		"channel":   res.Channel,
		"result":    last.Operation,
		"message":   last.Description,
		"steps":     res.Steps,
	})
}

// handleState returns the contents of a structure.
func (s *Server) handleState(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	kind, err := requireKind(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	st, err := s.svc.State(kind)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("state query failed: %v", err)), nil
	}
	return marshalResult(st)
}

func (s *Server) handleSort(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	algorithm, err := req.RequireString("algorithm")
	if err != nil {
		return mcp.NewToolResultError("algorithm is required"), nil
	}
	values, err := intSlice(req, "array")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := s.svc.Sort(ctx, algorithm, values)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("sort failed: %v", err)), nil
	}
	return s.result(ctx, req, res)
}

func (s *Server) handleSearch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	algorithm, err := req.RequireString("algorithm")
	if err != nil {
		return mcp.NewToolResultError("algorithm is required"), nil
	}
	values, err := intSlice(req, "array")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	target, err := req.RequireFloat("target")
	if err != nil || target != math.Trunc(target) {
		return mcp.NewToolResultError("target must be an integer"), nil
	}
	res, err := s.svc.Search(ctx, algorithm, values, int(target))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}
	return s.result(ctx, req, res)
}

func (s *Server) handlePath(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	algorithm, err := req.RequireString("algorithm")
	if err != nil {
		return mcp.NewToolResultError("algorithm is required"), nil
	}
	mapName, err := req.RequireString("map")
	if err != nil {
		return mcp.NewToolResultError("map is required"), nil
	}
	start, err := req.RequireString("start")
	if err != nil {
		return mcp.NewToolResultError("start is required"), nil
	}
	res, err := s.svc.ShortestPath(ctx, visualizer.PathRequest{
		Algorithm: algorithm,
		Map:       mapName,
		Start:     start,
		End:       req.GetString("end", ""),
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("path search failed: %v", err)), nil
	}
	return s.result(ctx, req, res)
}

// handleRender draws a structure, or a map when map is set.
func (s *Server) handleRender(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	format, err := req.RequireString("format")
	if err != nil {
		return mcp.NewToolResultError("format is required"), nil
	}

	var model *diagram.DiagramModel
	if name := req.GetString("map", ""); name != "" {
		m, err := maps.Get(name)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		var path []string
		if p := req.GetString("path", ""); p != "" {
			path = strings.Split(p, ",")
		}
		model = diagram.FromGraph(m.Name, m.Graph(), path, nil)
	} else {
		kind, err := requireKind(req)
		if err != nil {
			return mcp.NewToolResultError("one of structure or map is required"), nil
		}
		st, err := s.svc.State(kind)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		model = diagram.FromSnapshots(kind, st.Nodes, "")
	}

	out, err := diagram.Render(ctx, model, format)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("render failed: %v", err)), nil
	}
	if out.ContentType == "image/png" {
		return mcp.NewToolResultImage(model.Title, base64.StdEncoding.EncodeToString(out.Body), out.ContentType), nil
	}
	return mcp.NewToolResultText(string(out.Body)), nil
}

// handleWatch subscribes the calling session to a channel.
func (s *Server) handleWatch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	channel, err := req.RequireString("channel")
	if err != nil {
		return mcp.NewToolResultError("channel is required"), nil
	}
	if !slices.Contains(schema.Channels, channel) {
		return mcp.NewToolResultError(fmt.Sprintf("unknown channel %q, expected one of %s",
			channel, strings.Join(schema.Channels, ", "))), nil
	}
	session := server.ClientSessionFromContext(ctx)
	if session == nil {
		return mcp.NewToolResultError("watching requires a client session"), nil
	}

	enabled := req.GetBool("enabled", true)
	if enabled {
		s.watchers.Watch(session.SessionID(), channel)
	} else {
		s.watchers.Unwatch(session.SessionID(), channel)
	}
	return marshalResult(map[string]any{
		"ok":       true,
		"channel":  channel,
		"watching": enabled,
	})
}

// --- Helpers ---

func requireKind(req mcp.CallToolRequest) (schema.StructureKind, error) {
	raw, err := req.RequireString("structure")
	if err != nil {
		return "", fmt.Errorf("structure is required")
	}
	return schema.ParseStructureKind(raw)
}

// intSlice reads an array argument of whole numbers.
func intSlice(req mcp.CallToolRequest, key string) ([]int, error) {
	raw, ok := req.GetArguments()[key].([]any)
	if !ok {
		return nil, fmt.Errorf("%s must be an array of integers", key)
	}
	out := make([]int, len(raw))
	for i, v := range raw {
		switch n := v.(type) {
		case float64:
			if n != math.Trunc(n) {
				return nil, fmt.Errorf("%s[%d] is not an integer", key, i)
			}
			out[i] = int(n)
		case int:
			out[i] = n
		case json.Number:
			x, err := n.Int64()
			if err != nil {
				return nil, fmt.Errorf("%s[%d] is not an integer", key, i)
			}
			out[i] = int(x)
		default:
			return nil, fmt.Errorf("%s[%d] is not an integer", key, i)
		}
	}
	return out, nil
}

// result marshals v, or the outputs of the optional jq argument.
func (s *Server) result(ctx context.Context, req mcp.CallToolRequest, v any) (*mcp.CallToolResult, error) {
	if q := req.GetString("jq", ""); q != "" {
		return s.query(ctx, q, v)
	}
	return marshalResult(v)
}

func (s *Server) query(ctx context.Context, q string, v any) (*mcp.CallToolResult, error) {
	out, err := s.jq.Query(ctx, q, v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("jq failed: %v", err)), nil
	}
	if len(out) == 1 {
		return marshalResult(out[0])
	}
	return marshalResult(out)
}

// marshalResult converts a value to a JSON text tool result.
func marshalResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultJSON(json.RawMessage(data))
}
