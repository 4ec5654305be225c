// Package mcp exposes the visualizer as Model Context Protocol tools.
package mcp

import (
	"context"
	"log/slog"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/rendis/dsviz/internal/expressions"
	"github.com/rendis/dsviz/internal/logging"
	"github.com/rendis/dsviz/internal/streaming"
	"github.com/rendis/dsviz/internal/visualizer"
)

// ServerDeps holds the dependencies for creating a Server.
type ServerDeps struct {
	Service *visualizer.Service
	Hub     streaming.EventHub
	JQ      *expressions.GoJQEngine
	Logger  *slog.Logger
}

// Server wraps an MCP server with the visualizer tool handlers.
type Server struct {
	svc       *visualizer.Service
	hub       streaming.EventHub
	jq        *expressions.GoJQEngine
	logger    *slog.Logger
	watchers  *WatchRegistry
	mcpServer *server.MCPServer
}

// NewServer creates a Server with every tool registered.
func NewServer(deps ServerDeps) *Server {
	jq := deps.JQ
	if jq == nil {
		jq = expressions.NewGoJQEngine()
	}
	s := &Server{
		svc:      deps.Service,
		hub:      deps.Hub,
		jq:       jq,
		logger:   logging.Default(deps.Logger),
		watchers: NewWatchRegistry(),
	}

	mcpSrv := server.NewMCPServer(
		"dsviz",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithRecovery(),
		server.WithInstructions("dsviz traces data structure operations and classic algorithms step by step. "+
			"Use dsviz.structure to run an operation on the array, list, stack, queue or tree, dsviz.state to read one, "+
			"dsviz.sort, dsviz.search and dsviz.path for algorithms, dsviz.render to draw a structure or map, "+
			"and dsviz.watch to receive animation frames as notifications."),
	)
	mcpSrv.AddTools(s.tools()...)
	s.mcpServer = mcpSrv
	return s
}

// Serve starts the stdio transport and blocks until ctx is cancelled or
// stdin closes. Frames of watched channels are relayed while it runs.
func (s *Server) Serve(ctx context.Context) error {
	if s.hub != nil {
		n := NewNotifier(s.mcpServer, s.watchers, s.hub, s.logger)
		go func() {
			if err := n.Run(ctx); err != nil && ctx.Err() == nil {
				s.logger.Warn("notification relay stopped", "error", err)
			}
		}()
	}
	stdio := server.NewStdioServer(s.mcpServer)
	return stdio.Listen(ctx, os.Stdin, os.Stdout)
}

// MCPServer returns the underlying MCPServer for testing or custom transports.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

func (s *Server) tools() []server.ServerTool {
	return []server.ServerTool{
		{Tool: structureTool(), Handler: s.handleStructure},
		{Tool: stateTool(), Handler: s.handleState},
		{Tool: sortTool(), Handler: s.handleSort},
		{Tool: searchTool(), Handler: s.handleSearch},
		{Tool: pathTool(), Handler: s.handlePath},
		{Tool: renderTool(), Handler: s.handleRender},
		{Tool: watchTool(), Handler: s.handleWatch},
	}
}

// --- Tool definitions ---

func structureTool() mcp.Tool {
	return mcp.NewTool("dsviz.structure",
		mcp.WithDescription("Run an operation on a data structure and return its step trace"),
		mcp.WithString("structure", mcp.Required(),
			mcp.Enum("array", "list", "stack", "queue", "tree"),
			mcp.Description("Structure to operate on"),
		),
		mcp.WithString("operation", mcp.Required(),
			mcp.Enum("insert", "delete", "search", "access", "resize", "push", "pop", "peek", "enqueue", "dequeue", "clear"),
			mcp.Description("Operation to run"),
		),
		mcp.WithString("filename", mcp.Description("Item file name for insert, push and enqueue")),
		mcp.WithString("content_type", mcp.Description("Item content type")),
		mcp.WithNumber("size", mcp.Description("Item size in bytes")),
		mcp.WithString("name", mcp.Description("File name to search for or delete from the list")),
		mcp.WithNumber("index", mcp.Description("Array index for insert, delete and access")),
		mcp.WithNumber("capacity", mcp.Description("New capacity for resize")),
		mcp.WithString("jq", mcp.Description("jq expression applied to the step trace")),
	)
}

func stateTool() mcp.Tool {
	return mcp.NewTool("dsviz.state",
		mcp.WithDescription("Get the current contents of a data structure"),
		mcp.WithString("structure", mcp.Required(),
			mcp.Enum("array", "list", "stack", "queue", "tree"),
			mcp.Description("Structure to read"),
		),
	)
}

func sortTool() mcp.Tool {
	return mcp.NewTool("dsviz.sort",
		mcp.WithDescription("Sort an integer array and return every comparison and swap"),
		mcp.WithString("algorithm", mcp.Required(),
			mcp.Enum("bubble", "insertion", "selection", "quick"),
			mcp.Description("Sorting algorithm"),
		),
		mcp.WithArray("array", mcp.Required(), mcp.Items(map[string]any{"type": "integer"}),
			mcp.Description("Values to sort"),
		),
		mcp.WithString("jq", mcp.Description("jq expression applied to the result")),
	)
}

func searchTool() mcp.Tool {
	return mcp.NewTool("dsviz.search",
		mcp.WithDescription("Search an integer array for a target and return every probe"),
		mcp.WithString("algorithm", mcp.Required(),
			mcp.Enum("linear", "binary", "jump", "interpolation"),
			mcp.Description("Search algorithm. Binary, jump and interpolation expect a sorted array"),
		),
		mcp.WithArray("array", mcp.Required(), mcp.Items(map[string]any{"type": "integer"}),
			mcp.Description("Values to search"),
		),
		mcp.WithNumber("target", mcp.Required(), mcp.Description("Value to find")),
		mcp.WithString("jq", mcp.Description("jq expression applied to the result")),
	)
}

func pathTool() mcp.Tool {
	return mcp.NewTool("dsviz.path",
		mcp.WithDescription("Find a route between two cities of a built-in map"),
		mcp.WithString("algorithm", mcp.Required(),
			mcp.Enum("dijkstra", "astar", "bfs"),
			mcp.Description("Path-finding algorithm"),
		),
		mcp.WithString("map", mcp.Required(), mcp.Description("Map name, for example gauteng")),
		mcp.WithString("start", mcp.Required(), mcp.Description("Start node ID")),
		mcp.WithString("end", mcp.Description("End node ID. Dijkstra explores the whole map when empty")),
		mcp.WithString("jq", mcp.Description("jq expression applied to the result")),
	)
}

func renderTool() mcp.Tool {
	return mcp.NewTool("dsviz.render",
		mcp.WithDescription("Draw a data structure or a map. Returns ASCII art, Mermaid syntax, SVG, or a PNG image"),
		mcp.WithString("structure", mcp.Description("Structure to draw")),
		mcp.WithString("map", mcp.Description("Map to draw instead of a structure")),
		mcp.WithString("path", mcp.Description("Comma-separated node IDs to mark on the map")),
		mcp.WithString("format", mcp.Required(),
			mcp.Enum("ascii", "mermaid", "svg", "image"),
			mcp.Description("Output format"),
		),
	)
}

func watchTool() mcp.Tool {
	return mcp.NewTool("dsviz.watch",
		mcp.WithDescription("Receive the animation frames of a channel as notifications/message for this session"),
		mcp.WithString("channel", mcp.Required(), mcp.Description("Channel to watch, for example stack-visualization")),
		mcp.WithBoolean("enabled", mcp.Description("false stops watching (default: true)")),
	)
}
