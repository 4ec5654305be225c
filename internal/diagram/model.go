// Package diagram renders structure snapshots and graphs as ASCII, Mermaid
// or Graphviz images.
package diagram

// NodeKind classifies a diagram node by the structure it came from.
type NodeKind string

const (
	NodeKindElement    NodeKind = "element" // array slot, stack or queue entry
	NodeKindListNode   NodeKind = "list"
	NodeKindTreeNode   NodeKind = "tree"
	NodeKindGraphNode  NodeKind = "graph"
	NodeKindTerminator NodeKind = "null"
)

// Layout tells renderers how to arrange the nodes.
type Layout string

const (
	LayoutRow    Layout = "row"    // array, queue, list: left to right
	LayoutColumn Layout = "column" // stack: top first
	LayoutTree   Layout = "tree"   // one row per level
	LayoutGraph  Layout = "graph"  // free placement
)

// Mark is the emphasis of a node or edge.
type Mark string

const (
	MarkNone      Mark = ""
	MarkHighlight Mark = "highlight"
	MarkPath      Mark = "path"
	MarkVisited   Mark = "visited"
)

// DiagramModel is the intermediate representation used by all renderers.
type DiagramModel struct {
	Title    string
	Layout   Layout
	Directed bool
	Nodes    []*Node
	Edges    []Edge
	Levels   [][]string
}

// Node is one box in the diagram. Caption is a short annotation such as an
// array index or "top".
type Node struct {
	ID      string
	Label   string
	Caption string
	Kind    NodeKind
	Mark    Mark
}

// Edge connects two nodes.
type Edge struct {
	From  string
	To    string
	Label string
	Mark  Mark
}

// Node returns the node with the given id, or nil.
func (m *DiagramModel) Node(id string) *Node {
	for _, n := range m.Nodes {
		if n.ID == id {
			return n
		}
	}
	return nil
}

// hasEdge reports whether an edge joins from and to.
func (m *DiagramModel) hasEdge(from, to string) bool {
	for _, e := range m.Edges {
		if e.From == from && e.To == to {
			return true
		}
	}
	return false
}
