package diagram

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"
)

// ImageFormat is an output format of RenderImage.
type ImageFormat string

const (
	FormatPNG ImageFormat = "png"
	FormatSVG ImageFormat = "svg"
)

// RenderImage renders a DiagramModel with graphviz and returns the encoded
// image.
func RenderImage(ctx context.Context, model *DiagramModel, format ImageFormat) ([]byte, error) {
	var gvFormat graphviz.Format
	switch format {
	case FormatPNG, "":
		gvFormat = graphviz.PNG
	case FormatSVG:
		gvFormat = graphviz.SVG
	default:
		return nil, fmt.Errorf("diagram: unsupported image format %q", format)
	}

	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("diagram: create graphviz: %w", err)
	}
	defer gv.Close()

	gv.SetLayout(graphviz.DOT)

	graph, err := gv.Graph()
	if err != nil {
		return nil, fmt.Errorf("diagram: create graph: %w", err)
	}
	defer graph.Close()

	switch model.Layout {
	case LayoutRow, LayoutGraph:
		graph.SetRankDir(cgraph.LRRank)
	default:
		graph.SetRankDir(cgraph.TBRank)
	}
	if model.Title != "" {
		graph.SetLabel(model.Title)
	}

	gvNodes := make(map[string]*cgraph.Node, len(model.Nodes))
	for _, node := range model.Nodes {
		gvNode, nErr := graph.CreateNodeByName(node.ID)
		if nErr != nil {
			return nil, fmt.Errorf("diagram: create node %s: %w", node.ID, nErr)
		}
		label := firstLine(node.Label)
		if node.Caption != "" {
			label += "\n" + node.Caption
		}
		gvNode.SetLabel(label)
		applyNodeStyle(gvNode, node)
		gvNodes[node.ID] = gvNode
	}

	for _, edge := range model.Edges {
		fromGV, toGV := gvNodes[edge.From], gvNodes[edge.To]
		if fromGV == nil || toGV == nil {
			continue
		}
		e, eErr := graph.CreateEdgeByName("", fromGV, toGV)
		if eErr != nil {
			return nil, fmt.Errorf("diagram: create edge %s-%s: %w", edge.From, edge.To, eErr)
		}
		if edge.Label != "" {
			e.SetLabel(edge.Label)
		}
		if !model.Directed {
			e.SetDir(cgraph.NoneDir)
		}
		if edge.Mark == MarkPath {
			e.SetColor("#d35400")
			e.SetPenWidth(3)
		}
	}

	var buf bytes.Buffer
	if err := gv.Render(ctx, graph, gvFormat, &buf); err != nil {
		return nil, fmt.Errorf("diagram: render %s: %w", format, err)
	}

	return buf.Bytes(), nil
}

// applyNodeStyle sets graphviz attributes based on node kind and mark.
func applyNodeStyle(gvNode *cgraph.Node, node *Node) {
	switch node.Kind {
	case NodeKindElement:
		gvNode.SetShape(cgraph.BoxShape)
	case NodeKindListNode:
		gvNode.SetShape(cgraph.BoxShape)
		gvNode.SetStyle(cgraph.RoundedNodeStyle)
	case NodeKindTreeNode, NodeKindGraphNode:
		gvNode.SetShape(cgraph.EllipseShape)
	case NodeKindTerminator:
		gvNode.SetShape(cgraph.PlainTextShape)
	}

	if node.Mark != MarkNone {
		applyMarkColor(gvNode, node.Mark)
	}
}

// applyMarkColor sets fill color and style based on mark.
func applyMarkColor(gvNode *cgraph.Node, mark Mark) {
	gvNode.SetStyle(cgraph.FilledNodeStyle)
	switch mark {
	case MarkHighlight:
		gvNode.SetFillColor("#1a5276")
		gvNode.SetFontColor("white")
	case MarkPath:
		gvNode.SetFillColor("#d35400")
		gvNode.SetFontColor("white")
	case MarkVisited:
		gvNode.SetFillColor("#d3d3d3")
		gvNode.SetFontColor("black")
	}
}
