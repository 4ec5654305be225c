package algorithms

import (
	"container/heap"
	"math"
)

// PathResult summarizes a shortest-path run. The full step list goes to
// the sink passed to the algorithm.
type PathResult struct {
	Path          []string `json:"path"`
	Distance      float64  `json:"distance"`
	Found         bool     `json:"found"`
	NodesExplored int      `json:"nodesExplored"`
}

type nodeCost struct {
	id    string
	cost  float64
	index int
}

type priorityQueue []*nodeCost

func (pq priorityQueue) Len() int           { return len(pq) }
func (pq priorityQueue) Less(i, j int) bool { return pq[i].cost < pq[j].cost }
func (pq priorityQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].index = i
	pq[j].index = j
}

func (pq *priorityQueue) Push(x any) {
	n := len(*pq)
	item := x.(*nodeCost)
	item.index = n
	*pq = append(*pq, item)
}

func (pq *priorityQueue) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	item.index = -1
	*pq = old[:n-1]
	return item
}

// invalidEndpoints emits invalid_node when start or a non-empty end is not
// in g.
func invalidEndpoints(g *Graph, start, end string, sink Sink) bool {
	bad := ""
	switch {
	case !g.HasNode(start):
		bad = start
	case end != "" && !g.HasNode(end):
		bad = end
	default:
		return false
	}
	emit(sink, "invalid_node", map[string]any{"nodeId": bad})
	return true
}

// Dijkstra finds the cheapest path from start to end over undirected
// edges. It stops as soon as end is popped. With an empty end it settles
// every reachable node and reports no path.
func Dijkstra(g *Graph, start, end string, sink Sink) PathResult {
	if invalidEndpoints(g, start, end, sink) {
		return PathResult{}
	}

	adj := g.adjacency()
	dist := map[string]float64{start: 0}
	prev := map[string]string{}
	visited := map[string]bool{}

	pq := &priorityQueue{}
	heap.Init(pq)
	heap.Push(pq, &nodeCost{id: start, cost: 0})
	emit(sink, "init", map[string]any{"start": start, "end": end})

	for pq.Len() > 0 {
		cur := heap.Pop(pq).(*nodeCost)
		if visited[cur.id] {
			continue
		}
		visited[cur.id] = true
		emit(sink, "visit_node", map[string]any{"nodeId": cur.id, "distance": dist[cur.id]})

		if cur.id == end {
			path := reconstructPath(prev, start, end)
			emit(sink, "path_found", map[string]any{"path": path, "distance": dist[end]})
			return PathResult{Path: path, Distance: dist[end], Found: true, NodesExplored: len(visited)}
		}

		for _, a := range adj[cur.id] {
			if visited[a.to] {
				continue
			}
			nd := dist[cur.id] + a.weight
			if old, ok := dist[a.to]; ok && nd >= old {
				continue
			}
			dist[a.to] = nd
			prev[a.to] = cur.id
			heap.Push(pq, &nodeCost{id: a.to, cost: nd})
			emit(sink, "update_distance", map[string]any{"nodeId": a.to, "distance": nd, "via": cur.id})
		}
	}

	if end != "" {
		emit(sink, "no_path", nil)
	}
	return PathResult{NodesExplored: len(visited)}
}

// AStarOption configures AStar.
type AStarOption func(*astarConfig)

type astarConfig struct {
	scale float64
}

// WithHeuristicScale multiplies the Euclidean heuristic. Values below 1 make
// it more conservative when coordinates overstate edge costs.
func WithHeuristicScale(scale float64) AStarOption {
	return func(c *astarConfig) {
		if scale >= 0 {
			c.scale = scale
		}
	}
}

// Heuristic returns the straight-line distance between two nodes, or 0
// when either is unknown.
func Heuristic(g *Graph, from, to string) float64 {
	a, okA := g.Nodes[from]
	b, okB := g.Nodes[to]
	if !okA || !okB {
		return 0
	}
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

// ConsistentScale returns the largest heuristic scale for which the
// Euclidean heuristic stays consistent on g: the minimum over edges of
// weight divided by the straight-line length of the edge. Edges of zero
// length are skipped; a graph without measurable edges yields 1.
func ConsistentScale(g *Graph) float64 {
	best := math.Inf(1)
	for _, e := range g.Edges {
		d := Heuristic(g, e.Source, e.Target)
		if d == 0 {
			continue
		}
		best = math.Min(best, e.Weight/d)
	}
	if math.IsInf(best, 1) {
		return 1
	}
	return best
}

// AStar searches from start to end ordering the frontier by
// g + scale*Euclidean(node, end). Optimality holds only when the scaled
// heuristic never overestimates the remaining cost.
func AStar(g *Graph, start, end string, sink Sink, opts ...AStarOption) PathResult {
	cfg := astarConfig{scale: 1}
	for _, o := range opts {
		o(&cfg)
	}
	if end == "" {
		emit(sink, "invalid_node", map[string]any{"nodeId": end})
		return PathResult{}
	}
	if invalidEndpoints(g, start, end, sink) {
		return PathResult{}
	}

	h := func(id string) float64 { return cfg.scale * Heuristic(g, id, end) }
	adj := g.adjacency()
	gScore := map[string]float64{start: 0}
	fScore := map[string]float64{start: h(start)}
	cameFrom := map[string]string{}
	closed := map[string]bool{}

	open := &priorityQueue{}
	heap.Init(open)
	heap.Push(open, &nodeCost{id: start, cost: fScore[start]})
	emit(sink, "init", map[string]any{"start": start, "end": end, "algorithm": "A*"})

	for open.Len() > 0 {
		cur := heap.Pop(open).(*nodeCost)
		// Stale entry left behind by a later improvement.
		if closed[cur.id] || cur.cost > fScore[cur.id] {
			continue
		}
		closed[cur.id] = true
		emit(sink, "visit_node", map[string]any{"nodeId": cur.id, "gScore": gScore[cur.id], "fScore": fScore[cur.id]})

		if cur.id == end {
			path := reconstructPath(cameFrom, start, end)
			emit(sink, "path_found", map[string]any{"path": path, "distance": gScore[end]})
			return PathResult{Path: path, Distance: gScore[end], Found: true, NodesExplored: len(closed)}
		}

		for _, a := range adj[cur.id] {
			if closed[a.to] {
				continue
			}
			tentative := gScore[cur.id] + a.weight
			if old, ok := gScore[a.to]; ok && tentative >= old {
				continue
			}
			cameFrom[a.to] = cur.id
			gScore[a.to] = tentative
			fScore[a.to] = tentative + h(a.to)
			heap.Push(open, &nodeCost{id: a.to, cost: fScore[a.to]})
			emit(sink, "update_scores", map[string]any{
				"nodeId": a.to,
				"gScore": tentative,
				"fScore": fScore[a.to],
				"via":    cur.id,
			})
		}
	}

	emit(sink, "no_path", nil)
	return PathResult{NodesExplored: len(closed)}
}

// BFS expands g level by level from start, ignoring weights.
func BFS(g *Graph, start string, sink Sink) PathResult {
	if invalidEndpoints(g, start, "", sink) {
		return PathResult{}
	}

	adj := g.adjacency()
	visited := map[string]bool{start: true}
	queue := []string{start}
	explored := 0
	emit(sink, "init", map[string]any{"start": start})

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		explored++
		emit(sink, "visit_node", map[string]any{"nodeId": cur, "queueSize": len(queue)})

		for _, a := range adj[cur] {
			if visited[a.to] {
				continue
			}
			visited[a.to] = true
			queue = append(queue, a.to)
			emit(sink, "enqueue", map[string]any{"nodeId": a.to, "parent": cur})
		}
	}
	return PathResult{NodesExplored: explored}
}

func reconstructPath(prev map[string]string, start, end string) []string {
	path := []string{end}
	for cur := end; cur != start; {
		p, ok := prev[cur]
		if !ok {
			return []string{}
		}
		path = append(path, p)
		cur = p
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// ExtractPath returns the path carried by the path_found step of a run,
// or nil when the run found none.
func ExtractPath(steps []Step) []string {
	for i := len(steps) - 1; i >= 0; i-- {
		if steps[i].Type != "path_found" {
			continue
		}
		if p, ok := steps[i].Data["path"].([]string); ok {
			return p
		}
	}
	return nil
}

// PathDistance sums the undirected edge weights along path. Consecutive
// nodes with no joining edge contribute nothing.
func PathDistance(g *Graph, path []string) float64 {
	total := 0.0
	for i := 0; i+1 < len(path); i++ {
		if w, ok := g.EdgeWeight(path[i], path[i+1]); ok {
			total += w
		}
	}
	return total
}

// NodesExplored counts the distinct nodes visited in a run.
func NodesExplored(steps []Step) int {
	seen := map[string]bool{}
	for _, s := range steps {
		if s.Type != "visit_node" {
			continue
		}
		if id, ok := s.Data["nodeId"].(string); ok {
			seen[id] = true
		}
	}
	return len(seen)
}
