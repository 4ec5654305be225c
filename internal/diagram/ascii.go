package diagram

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// markTag returns a short ASCII indicator for a mark.
func markTag(m Mark) string {
	switch m {
	case MarkHighlight:
		return "*"
	case MarkPath:
		return "[PATH]"
	case MarkVisited:
		return "[SEEN]"
	default:
		return ""
	}
}

// RenderASCII renders a DiagramModel as text using box-drawing characters.
func RenderASCII(model *DiagramModel) string {
	var b strings.Builder

	if model.Title != "" {
		b.WriteString(fmt.Sprintf("=== %s ===\n\n", model.Title))
	}
	if len(model.Nodes) == 0 {
		b.WriteString("(empty)\n")
		return b.String()
	}

	switch model.Layout {
	case LayoutColumn:
		renderColumn(&b, model)
	case LayoutTree:
		renderTree(&b, model)
	case LayoutGraph:
		renderGraph(&b, model)
	default:
		renderRow(&b, model)
	}
	return b.String()
}

// asciiBox holds the rendered lines of a single box.
type asciiBox struct {
	lines []string
	width int
}

// makeBox draws a node. Highlighted nodes get a double border.
func makeBox(node *Node) asciiBox {
	label := firstLine(node.Label)
	if node.Kind == NodeKindTerminator {
		return asciiBox{lines: []string{"", label, ""}, width: width(label)}
	}
	if tag := markTag(node.Mark); tag != "" && node.Mark != MarkHighlight {
		label += " " + tag
	}

	inner := width(label)
	h, v, tl, tr, bl, br := "─", "│", "┌", "┐", "└", "┘"
	if node.Mark == MarkHighlight {
		h, v, tl, tr, bl, br = "═", "║", "╔", "╗", "╚", "╝"
	}
	return asciiBox{
		lines: []string{
			tl + strings.Repeat(h, inner+2) + tr,
			v + " " + label + " " + v,
			bl + strings.Repeat(h, inner+2) + br,
		},
		width: inner + 4,
	}
}

// firstLine returns only the first line of a multi-line label.
func firstLine(s string) string {
	if i := strings.Index(s, "\n"); i >= 0 {
		return s[:i]
	}
	return s
}

func width(s string) int { return utf8.RuneCountInString(s) }

func pad(s string, w int) string {
	if n := width(s); n < w {
		return s + strings.Repeat(" ", w-n)
	}
	return s
}

func center(s string, w int) string {
	n := width(s)
	if n >= w {
		return s
	}
	left := (w - n) / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", w-n-left)
}

// renderRow draws the nodes left to right with arrows for edges and the
// captions underneath.
func renderRow(b *strings.Builder, model *DiagramModel) {
	const gap = "   "
	arrow := "──►"

	boxes := make([]asciiBox, len(model.Nodes))
	for i, n := range model.Nodes {
		boxes[i] = makeBox(n)
	}

	for row := 0; row < 3; row++ {
		var line strings.Builder
		for i, box := range boxes {
			if i > 0 {
				joint := gap
				if row == 1 && model.hasEdge(model.Nodes[i-1].ID, model.Nodes[i].ID) {
					joint = arrow
				}
				line.WriteString(joint)
			}
			line.WriteString(pad(box.lines[row], box.width))
		}
		b.WriteString(strings.TrimRight(line.String(), " "))
		b.WriteByte('\n')
	}

	var captions strings.Builder
	hasCaption := false
	for i, box := range boxes {
		if i > 0 {
			captions.WriteString(gap)
		}
		c := model.Nodes[i].Caption
		if c != "" {
			hasCaption = true
		}
		captions.WriteString(center(c, box.width))
	}
	if hasCaption {
		b.WriteString(strings.TrimRight(captions.String(), " "))
		b.WriteByte('\n')
	}
}

// renderColumn stacks the nodes top to bottom with the caption to the
// right of each box.
func renderColumn(b *strings.Builder, model *DiagramModel) {
	maxWidth := 0
	boxes := make([]asciiBox, len(model.Nodes))
	for i, n := range model.Nodes {
		boxes[i] = makeBox(n)
		if boxes[i].width > maxWidth {
			maxWidth = boxes[i].width
		}
	}
	for i, box := range boxes {
		for row, l := range box.lines {
			line := center(l, maxWidth)
			if row == 1 && model.Nodes[i].Caption != "" {
				line += " ◄ " + model.Nodes[i].Caption
			}
			b.WriteString(strings.TrimRight(line, " "))
			b.WriteByte('\n')
		}
	}
}

// renderTree draws one row of boxes per level with a connector between
// levels.
func renderTree(b *strings.Builder, model *DiagramModel) {
	for levelIdx, level := range model.Levels {
		var boxes []asciiBox
		for _, id := range level {
			if n := model.Node(id); n != nil {
				boxes = append(boxes, makeBox(n))
			}
		}
		renderBoxRow(b, boxes)
		if levelIdx < len(model.Levels)-1 {
			renderConnector(b, boxes)
		}
	}
}

// renderBoxRow writes boxes side by side.
func renderBoxRow(b *strings.Builder, boxes []asciiBox) {
	if len(boxes) == 0 {
		return
	}
	for row := 0; row < 3; row++ {
		var line strings.Builder
		for i, box := range boxes {
			if i > 0 {
				line.WriteString("  ")
			}
			line.WriteString(pad(box.lines[row], box.width))
		}
		b.WriteString(strings.TrimRight(line.String(), " "))
		b.WriteByte('\n')
	}
}

// renderConnector draws a down arrow under the middle of every box.
func renderConnector(b *strings.Builder, boxes []asciiBox) {
	var stem, head strings.Builder
	for i, box := range boxes {
		if i > 0 {
			stem.WriteString("  ")
			head.WriteString("  ")
		}
		stem.WriteString(center("│", box.width))
		head.WriteString(center("▼", box.width))
	}
	b.WriteString(strings.TrimRight(stem.String(), " ") + "\n")
	b.WriteString(strings.TrimRight(head.String(), " ") + "\n")
}

// renderGraph lists nodes and then weighted edges. Path edges are starred.
func renderGraph(b *strings.Builder, model *DiagramModel) {
	b.WriteString("Nodes:\n")
	for _, n := range model.Nodes {
		line := "  " + n.ID
		if n.Label != n.ID {
			line += " (" + firstLine(n.Label) + ")"
		}
		if tag := markTag(n.Mark); tag != "" {
			line += " " + tag
		}
		b.WriteString(line + "\n")
	}
	if len(model.Edges) == 0 {
		return
	}
	b.WriteString("Edges:\n")
	for _, e := range model.Edges {
		star := " "
		if e.Mark == MarkPath {
			star = "*"
		}
		link := " ── "
		if e.Label != "" {
			link = " ──(" + e.Label + ")── "
		}
		b.WriteString(fmt.Sprintf(" %s %s%s%s\n", star, e.From, link, e.To))
	}
}
