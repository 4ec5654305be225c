package visualizer

import (
	"context"
	"strings"

	"github.com/rendis/dsviz/internal/algorithms"
	"github.com/rendis/dsviz/internal/logging"
	"github.com/rendis/dsviz/internal/maps"
	"github.com/rendis/dsviz/internal/pacing"
	"github.com/rendis/dsviz/pkg/schema"
)

// Path algorithm names.
const (
	PathDijkstra = "dijkstra"
	PathAStar    = "astar"
	PathBFS      = "bfs"
)

// SortResult is the outcome of a sort run.
type SortResult struct {
	Algorithm  string            `json:"algorithm"`
	Steps      []algorithms.Step `json:"steps"`
	FinalArray []int             `json:"finalArray"`
}

// Sort runs a sorting algorithm and broadcasts its steps on the algorithm
// channel.
func (s *Service) Sort(ctx context.Context, algorithm string, values []int) (SortResult, error) {
	ctx = logging.WithIDs(ctx, "algorithm", "sort:"+algorithm, schema.ChannelAlgorithms)

	var steps []algorithms.Step
	sorted, err := algorithms.Sort(algorithm, values, algorithms.Collect(&steps))
	if err != nil {
		return SortResult{}, err
	}
	s.metrics.ObserveOperation("algorithm", "sort", "ok", len(steps))

	if err := s.play(ctx, schema.ChannelAlgorithms, schema.EventAlgorithmStep, AlgorithmFrames(steps)); err != nil {
		return SortResult{}, err
	}
	return SortResult{Algorithm: algorithm, Steps: steps, FinalArray: sorted}, nil
}

// Search runs a search algorithm and broadcasts its steps on the algorithm
// channel.
func (s *Service) Search(ctx context.Context, algorithm string, values []int, target int) (algorithms.SearchResult, error) {
	ctx = logging.WithIDs(ctx, "algorithm", "search:"+algorithm, schema.ChannelAlgorithms)

	res, err := algorithms.Search(algorithm, values, target)
	if err != nil {
		return algorithms.SearchResult{}, err
	}
	s.metrics.ObserveOperation("algorithm", "search", "ok", len(res.Steps))

	if err := s.play(ctx, schema.ChannelAlgorithms, schema.EventAlgorithmStep, AlgorithmFrames(res.Steps)); err != nil {
		return algorithms.SearchResult{}, err
	}
	return res, nil
}

// TraverseRequest names a traversal over either a tree built from Values or
// a graph walked from Start.
type TraverseRequest struct {
	Algorithm string            `json:"algorithm"`
	Structure string            `json:"structure"`
	Values    []string          `json:"values,omitempty"`
	Graph     *algorithms.Graph `json:"graph,omitempty"`
	Map       string            `json:"map,omitempty"`
	Start     string            `json:"start,omitempty"`
}

// TraverseResult carries the visit order.
type TraverseResult struct {
	Algorithm      string   `json:"algorithm"`
	TraversalOrder []string `json:"traversalOrder"`
}

// Traverse runs a tree or graph traversal and broadcasts one frame per
// visited node on the traversal channel.
func (s *Service) Traverse(ctx context.Context, req TraverseRequest) (TraverseResult, error) {
	ctx = logging.WithIDs(ctx, req.Structure, "traverse:"+req.Algorithm, schema.ChannelTraversal)

	var (
		order []string
		err   error
	)
	switch strings.ToLower(req.Structure) {
	case "tree", "":
		order, err = algorithms.TraverseTree(req.Algorithm, algorithms.BuildTree(req.Values))
	case "graph":
		g, gerr := s.resolveGraph(req.Graph, req.Map)
		if gerr != nil {
			return TraverseResult{}, gerr
		}
		order, err = algorithms.TraverseGraph(req.Algorithm, g, req.Start)
	default:
		return TraverseResult{}, schema.NewErrorf(schema.ErrCodeValidation, "cannot traverse %q", req.Structure)
	}
	if err != nil {
		return TraverseResult{}, err
	}
	s.metrics.ObserveOperation("algorithm", "traverse", "ok", len(order))

	frames := make([]pacing.Frame, len(order))
	for i, id := range order {
		frames[i] = pacing.Frame{
			Operation: "visit",
			Terminal:  i == len(order)-1,
			Payload:   map[string]any{"step": i, "nodeId": id},
		}
	}
	if err := s.play(ctx, schema.ChannelTraversal, schema.EventTraversal, frames); err != nil {
		return TraverseResult{}, err
	}
	return TraverseResult{Algorithm: req.Algorithm, TraversalOrder: order}, nil
}

// PathRequest asks for a route between two nodes of an inline graph or a
// named map.
type PathRequest struct {
	Algorithm string            `json:"algorithm"`
	Map       string            `json:"province,omitempty"`
	Graph     *algorithms.Graph `json:"graph,omitempty"`
	Start     string            `json:"start"`
	End       string            `json:"end"`
	// HeuristicScale multiplies the A* heuristic. Zero means 1 for inline
	// graphs and the map's consistent scale for named maps.
	HeuristicScale float64 `json:"heuristic_scale,omitempty"`
}

// PathResponse is the outcome of a path search.
type PathResponse struct {
	Algorithm     string            `json:"algorithm"`
	Path          []string          `json:"path"`
	Distance      float64           `json:"distance"`
	NodesExplored int               `json:"nodesExplored"`
	Steps         []algorithms.Step `json:"steps"`
}

// ShortestPath runs Dijkstra, A* or BFS and broadcasts every step on the
// pathfinding channel. The distance is recomputed from the graph's edges
// along the returned path.
func (s *Service) ShortestPath(ctx context.Context, req PathRequest) (PathResponse, error) {
	algo := strings.ToLower(req.Algorithm)
	ctx = logging.WithIDs(ctx, "graph", "path:"+algo, schema.ChannelPathfind)

	g, err := s.resolveGraph(req.Graph, req.Map)
	if err != nil {
		return PathResponse{}, err
	}

	var steps []algorithms.Step
	sink := algorithms.Collect(&steps)
	switch algo {
	case PathDijkstra:
		algorithms.Dijkstra(g, req.Start, req.End, sink)
	case PathAStar:
		scale := req.HeuristicScale
		if scale <= 0 && req.Graph == nil {
			scale = algorithms.ConsistentScale(g)
		}
		var opts []algorithms.AStarOption
		if scale > 0 {
			opts = append(opts, algorithms.WithHeuristicScale(scale))
		}
		algorithms.AStar(g, req.Start, req.End, sink, opts...)
	case PathBFS:
		algorithms.BFS(g, req.Start, sink)
	default:
		return PathResponse{}, schema.NewErrorf(schema.ErrCodeUnknownAlgorithm, "unknown path algorithm %q", req.Algorithm).
			WithCause(algorithms.ErrUnknownAlgorithm)
	}
	s.metrics.ObserveOperation("algorithm", "path", "ok", len(steps))

	if err := s.play(ctx, schema.ChannelPathfind, schema.EventAlgorithmStep, AlgorithmFrames(steps)); err != nil {
		return PathResponse{}, err
	}

	path := algorithms.ExtractPath(steps)
	if path == nil {
		path = []string{}
	}
	return PathResponse{
		Algorithm:     algo,
		Path:          path,
		Distance:      algorithms.PathDistance(g, path),
		NodesExplored: algorithms.NodesExplored(steps),
		Steps:         steps,
	}, nil
}

func (s *Service) resolveGraph(g *algorithms.Graph, name string) (*algorithms.Graph, error) {
	if g != nil {
		if err := g.Validate(); err != nil {
			return nil, err
		}
		return g, nil
	}
	if name == "" {
		return nil, schema.NewError(schema.ErrCodeValidation, "a graph or a map name is required")
	}
	return maps.Load(name)
}

// AlgorithmFrames converts algorithm steps into pacer frames.
func AlgorithmFrames(steps []algorithms.Step) []pacing.Frame {
	frames := make([]pacing.Frame, len(steps))
	for i, st := range steps {
		frames[i] = pacing.Frame{
			Operation: st.Type,
			Terminal:  i == len(steps)-1,
			Payload:   st,
		}
	}
	return frames
}
