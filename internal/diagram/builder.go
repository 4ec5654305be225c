package diagram

import (
	"fmt"
	"strconv"

	"github.com/rendis/dsviz/internal/algorithms"
	"github.com/rendis/dsviz/internal/trace"
	"github.com/rendis/dsviz/pkg/schema"
)

// NullID is the id of the terminator drawn after the last list node.
const NullID = "__null__"

// FromStep builds a model of one recorded step. The title carries the
// step's tag and description.
func FromStep(kind schema.StructureKind, step trace.Step) *DiagramModel {
	m := FromSnapshots(kind, step.State, step.Highlighted)
	m.Title = string(step.Operation)
	if step.Description != "" {
		m.Title += ": " + step.Description
	}
	return m
}

// FromSnapshots builds a model of a structure's state. highlighted may be
// empty.
func FromSnapshots(kind schema.StructureKind, snaps []trace.Snapshot, highlighted string) *DiagramModel {
	m := &DiagramModel{Title: string(kind), Directed: true}

	nodeKind := NodeKindElement
	switch kind {
	case schema.StructureList:
		nodeKind = NodeKindListNode
	case schema.StructureTree:
		nodeKind = NodeKindTreeNode
	}

	for _, s := range snaps {
		n := &Node{ID: s.ID, Label: s.Name, Caption: caption(kind, s), Kind: nodeKind}
		if s.ID == highlighted {
			n.Mark = MarkHighlight
		}
		m.Nodes = append(m.Nodes, n)
	}

	switch kind {
	case schema.StructureTree:
		m.Layout = LayoutTree
		m.Edges = treeEdges(snaps)
		m.Levels = treeLevels(snaps)
	case schema.StructureStack:
		m.Layout = LayoutColumn
		m.Edges = chainEdges(snaps)
		for _, s := range snaps {
			m.Levels = append(m.Levels, []string{s.ID})
		}
	case schema.StructureList:
		m.Layout = LayoutRow
		m.Nodes = append(m.Nodes, &Node{ID: NullID, Label: "NULL", Kind: NodeKindTerminator})
		for _, s := range snaps {
			next := s.NextID
			if next == "" {
				next = NullID
			}
			m.Edges = append(m.Edges, Edge{From: s.ID, To: next, Label: "next"})
		}
		m.Levels = [][]string{ids(m.Nodes)}
	case schema.StructureQueue:
		m.Layout = LayoutRow
		m.Edges = chainEdges(snaps)
		m.Levels = [][]string{ids(m.Nodes)}
	default:
		m.Layout = LayoutRow
		m.Directed = false
		m.Levels = [][]string{ids(m.Nodes)}
	}
	return m
}

func caption(kind schema.StructureKind, s trace.Snapshot) string {
	switch kind {
	case schema.StructureArray:
		return "[" + strconv.Itoa(s.Index) + "]"
	case schema.StructureStack:
		if s.IsTop {
			return "top"
		}
	case schema.StructureQueue:
		switch {
		case s.IsFront && s.IsRear:
			return "front/rear"
		case s.IsFront:
			return "front"
		case s.IsRear:
			return "rear"
		}
	case schema.StructureList:
		if s.Position == 0 {
			return "head"
		}
	case schema.StructureTree:
		if s.ParentID == "" {
			return "root"
		}
	}
	return ""
}

// chainEdges links snapshots in their given order.
func chainEdges(snaps []trace.Snapshot) []Edge {
	var edges []Edge
	for i := 1; i < len(snaps); i++ {
		edges = append(edges, Edge{From: snaps[i-1].ID, To: snaps[i].ID})
	}
	return edges
}

func treeEdges(snaps []trace.Snapshot) []Edge {
	var edges []Edge
	for _, s := range snaps {
		if s.LeftID != "" {
			edges = append(edges, Edge{From: s.ID, To: s.LeftID, Label: "L"})
		}
		if s.RightID != "" {
			edges = append(edges, Edge{From: s.ID, To: s.RightID, Label: "R"})
		}
	}
	return edges
}

// treeLevels groups node ids by depth, left to right. Snapshots arrive in
// preorder, which already orders each level left to right.
func treeLevels(snaps []trace.Snapshot) [][]string {
	var levels [][]string
	for _, s := range snaps {
		for len(levels) <= s.Level {
			levels = append(levels, nil)
		}
		levels[s.Level] = append(levels[s.Level], s.ID)
	}
	return levels
}

// FromGraph builds a model of a weighted graph. Nodes on path and the edges
// between consecutive path nodes are marked as path; nodes in visited but
// not on the path are marked as visited.
func FromGraph(title string, g *algorithms.Graph, path, visited []string) *DiagramModel {
	m := &DiagramModel{Title: title, Layout: LayoutGraph}

	onPath := make(map[string]bool, len(path))
	for _, id := range path {
		onPath[id] = true
	}
	pathEdge := make(map[[2]string]bool, len(path))
	for i := 1; i < len(path); i++ {
		pathEdge[[2]string{path[i-1], path[i]}] = true
		pathEdge[[2]string{path[i], path[i-1]}] = true
	}
	seen := make(map[string]bool, len(visited))
	for _, id := range visited {
		seen[id] = true
	}

	for _, id := range g.NodeIDs() {
		n := g.Nodes[id]
		label := n.Label
		if label == "" {
			label = id
		}
		node := &Node{ID: id, Label: label, Kind: NodeKindGraphNode}
		switch {
		case onPath[id]:
			node.Mark = MarkPath
		case seen[id]:
			node.Mark = MarkVisited
		}
		m.Nodes = append(m.Nodes, node)
	}
	for _, e := range g.Edges {
		edge := Edge{From: e.Source, To: e.Target, Label: formatWeight(e.Weight)}
		if pathEdge[[2]string{e.Source, e.Target}] {
			edge.Mark = MarkPath
		}
		m.Edges = append(m.Edges, edge)
	}
	m.Levels = [][]string{ids(m.Nodes)}
	return m
}

func formatWeight(w float64) string {
	return fmt.Sprintf("%.4g", w)
}

func ids(nodes []*Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.ID
	}
	return out
}
