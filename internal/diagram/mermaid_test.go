package diagram

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rendis/dsviz/internal/structures"
	"github.com/rendis/dsviz/pkg/schema"
)

func TestRenderMermaidTree(t *testing.T) {
	tr := structures.NewBinaryTree()
	tr.Insert(item("m"))
	tr.Insert(item("c"))

	output := RenderMermaid(FromSnapshots(schema.StructureTree, tr.Snapshots(), ""))
	assert.Contains(t, output, "graph TD")
	assert.Contains(t, output, "%% tree")
	assert.Contains(t, output, `(("m root"))`)
	assert.Contains(t, output, "-->|L|")
}

func TestRenderMermaidGraph(t *testing.T) {
	model := &DiagramModel{
		Layout: LayoutGraph,
		Nodes: []*Node{
			{ID: "north-gate", Label: "North", Kind: NodeKindGraphNode, Mark: MarkPath},
			{ID: "south.gate", Label: `Say "hi"`, Kind: NodeKindGraphNode},
		},
		Edges: []Edge{{From: "north-gate", To: "south.gate", Label: "12", Mark: MarkPath}},
	}

	output := RenderMermaid(model)
	assert.Contains(t, output, "graph LR")
	assert.Contains(t, output, "north_gate ---|12| south_gate")
	assert.Contains(t, output, "linkStyle 0")
	assert.Contains(t, output, "class north_gate path")
	assert.Contains(t, output, "#quot;hi#quot;")
}

func TestRenderMermaidListTerminator(t *testing.T) {
	l := structures.NewLinkedList()
	l.Insert(item("only"))

	output := RenderMermaid(FromSnapshots(schema.StructureList, l.Snapshots(), ""))
	assert.Contains(t, output, `__null__>"NULL"]`)
	assert.Contains(t, output, "-->|next| __null__")
}
