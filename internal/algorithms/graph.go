package algorithms

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/hashicorp/go-multierror"

	"github.com/rendis/dsviz/pkg/schema"
)

// Node is a graph vertex with a planar position.
type Node struct {
	ID    string  `json:"id" yaml:"id"`
	Label string  `json:"label" yaml:"label"`
	X     float64 `json:"x" yaml:"x"`
	Y     float64 `json:"y" yaml:"y"`
}

// Edge connects two nodes. Edges are stored as ordered pairs but every
// algorithm in this package treats them as undirected.
type Edge struct {
	ID     string  `json:"id" yaml:"id"`
	Source string  `json:"source" yaml:"source"`
	Target string  `json:"target" yaml:"target"`
	Weight float64 `json:"weight" yaml:"weight"`
}

// Graph is a node map plus an edge list. On the wire it is a Document.
type Graph struct {
	Nodes map[string]Node
	Edges []Edge
}

// Document is the list form of a graph used in JSON bodies and map files.
type Document struct {
	Name  string `json:"name,omitempty" yaml:"name,omitempty"`
	Nodes []Node `json:"nodes" yaml:"nodes"`
	Edges []Edge `json:"edges" yaml:"edges"`
}

// Graph builds a graph from the document. Later nodes replace earlier ones
// with the same id.
func (d Document) Graph() *Graph {
	g := NewGraph()
	for _, n := range d.Nodes {
		g.AddNode(n)
	}
	for _, e := range d.Edges {
		g.AddEdge(e)
	}
	return g
}

// Document returns the list form of g with nodes in id order.
func (g *Graph) Document() Document {
	d := Document{Nodes: make([]Node, 0, len(g.Nodes)), Edges: make([]Edge, len(g.Edges))}
	for _, id := range g.NodeIDs() {
		d.Nodes = append(d.Nodes, g.Nodes[id])
	}
	copy(d.Edges, g.Edges)
	return d
}

func (g *Graph) MarshalJSON() ([]byte, error) {
	return json.Marshal(g.Document())
}

func (g *Graph) UnmarshalJSON(b []byte) error {
	var d Document
	if err := json.Unmarshal(b, &d); err != nil {
		return err
	}
	*g = *d.Graph()
	return nil
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{Nodes: make(map[string]Node)}
}

// AddNode inserts or replaces a node.
func (g *Graph) AddNode(n Node) {
	if g.Nodes == nil {
		g.Nodes = make(map[string]Node)
	}
	g.Nodes[n.ID] = n
}

// AddEdge appends an edge. An empty id is derived from the endpoints.
func (g *Graph) AddEdge(e Edge) {
	if e.ID == "" {
		e.ID = fmt.Sprintf("%s-%s", e.Source, e.Target)
	}
	g.Edges = append(g.Edges, e)
}

// HasNode reports whether id is a node of g.
func (g *Graph) HasNode(id string) bool {
	_, ok := g.Nodes[id]
	return ok
}

// NodeIDs returns the node ids in lexical order.
func (g *Graph) NodeIDs() []string {
	ids := make([]string, 0, len(g.Nodes))
	for id := range g.Nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Validate reports every edge with an unknown endpoint and every negative
// weight in a single aggregated error.
func (g *Graph) Validate() error {
	var errs *multierror.Error
	for _, e := range g.Edges {
		if !g.HasNode(e.Source) {
			errs = multierror.Append(errs, fmt.Errorf("edge %s: unknown source node %q", e.ID, e.Source))
		}
		if !g.HasNode(e.Target) {
			errs = multierror.Append(errs, fmt.Errorf("edge %s: unknown target node %q", e.ID, e.Target))
		}
		if e.Weight < 0 {
			errs = multierror.Append(errs, fmt.Errorf("edge %s: negative weight %g", e.ID, e.Weight))
		}
	}
	if err := errs.ErrorOrNil(); err != nil {
		return schema.NewError(schema.ErrCodeInvalidGraph, "graph failed validation").
			WithCause(err).
			WithDetails(map[string]any{"problems": len(errs.Errors)})
	}
	return nil
}

type arc struct {
	to     string
	weight float64
}

// adjacency builds the undirected neighbor lists, preserving edge order so
// traversals are deterministic.
func (g *Graph) adjacency() map[string][]arc {
	adj := make(map[string][]arc, len(g.Nodes))
	for _, e := range g.Edges {
		adj[e.Source] = append(adj[e.Source], arc{to: e.Target, weight: e.Weight})
		adj[e.Target] = append(adj[e.Target], arc{to: e.Source, weight: e.Weight})
	}
	return adj
}

// EdgeWeight returns the weight of the lightest edge joining a and b in
// either direction.
func (g *Graph) EdgeWeight(a, b string) (float64, bool) {
	best, found := 0.0, false
	for _, e := range g.Edges {
		if (e.Source == a && e.Target == b) || (e.Source == b && e.Target == a) {
			if !found || e.Weight < best {
				best, found = e.Weight, true
			}
		}
	}
	return best, found
}
