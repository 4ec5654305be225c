package diagram

import (
	"fmt"
	"strings"
)

// RenderMermaid renders a DiagramModel as a Mermaid flowchart string.
func RenderMermaid(model *DiagramModel) string {
	var b strings.Builder

	dir := "LR"
	if model.Layout == LayoutColumn || model.Layout == LayoutTree {
		dir = "TD"
	}
	b.WriteString("graph " + dir + "\n")

	// Title as comment.
	if model.Title != "" {
		b.WriteString(fmt.Sprintf("    %%%% %s\n", model.Title))
	}

	for _, node := range model.Nodes {
		b.WriteString(fmt.Sprintf("    %s\n", mermaidNodeDef(node)))
	}

	link := "-->"
	if !model.Directed {
		link = "---"
	}
	for i, edge := range model.Edges {
		label := ""
		if edge.Label != "" {
			label = fmt.Sprintf("|%s|", edge.Label)
		}
		b.WriteString(fmt.Sprintf("    %s %s%s %s\n",
			mermaidSafeID(edge.From), link, label, mermaidSafeID(edge.To)))
		if edge.Mark == MarkPath {
			b.WriteString(fmt.Sprintf("    linkStyle %d stroke:#d35400,stroke-width:3px\n", i))
		}
	}

	b.WriteString("\n")
	b.WriteString("    classDef highlight fill:#1a5276,stroke:#0e3a52,color:#fff\n")
	b.WriteString("    classDef path fill:#d35400,stroke:#a04000,color:#fff\n")
	b.WriteString("    classDef visited fill:#6b6b6b,stroke:#4a4a4a,color:#fff\n")

	for _, node := range model.Nodes {
		if node.Mark != MarkNone {
			b.WriteString(fmt.Sprintf("    class %s %s\n", mermaidSafeID(node.ID), node.Mark))
		}
	}

	return b.String()
}

// mermaidNodeDef returns a Mermaid node definition with the appropriate shape.
func mermaidNodeDef(node *Node) string {
	id := mermaidSafeID(node.ID)
	label := mermaidEscapeLabel(firstLine(node.Label))
	if node.Caption != "" {
		label += " " + mermaidEscapeLabel(node.Caption)
	}

	switch node.Kind {
	case NodeKindTreeNode, NodeKindGraphNode:
		return fmt.Sprintf("%s((%q))", id, label)
	case NodeKindListNode:
		return fmt.Sprintf("%s[[%q]]", id, label)
	case NodeKindTerminator:
		return fmt.Sprintf("%s>%q]", id, label)
	default: // element
		return fmt.Sprintf("%s[%q]", id, label)
	}
}

// mermaidSafeID converts a node ID to a Mermaid-safe identifier.
func mermaidSafeID(id string) string {
	r := strings.NewReplacer(".", "_", "-", "_", " ", "_")
	return r.Replace(id)
}

// mermaidEscapeLabel replaces the quote Mermaid cannot take inside a
// quoted label.
func mermaidEscapeLabel(s string) string {
	return strings.ReplaceAll(s, `"`, "#quot;")
}
