package validation

import (
	"fmt"

	"github.com/rendis/dsviz/internal/algorithms"
	"github.com/rendis/dsviz/pkg/schema"
)

// Issue codes raised by the graph checks.
const (
	CodeDuplicateNode = "DUPLICATE_NODE"
	CodeDanglingEdge  = "DANGLING_EDGE"
	CodeSelfLoop      = "SELF_LOOP"
	CodeIsolatedNode  = "ISOLATED_NODE"
)

// validateGraphSemantic checks what the schema cannot express: unique node
// ids and edge endpoints that exist. Self loops and isolated nodes are
// warnings; the path algorithms tolerate both.
func validateGraphSemantic(doc algorithms.Document) *schema.ValidationResult {
	result := &schema.ValidationResult{}

	ids := make(map[string]int, len(doc.Nodes))
	for i, n := range doc.Nodes {
		if first, dup := ids[n.ID]; dup {
			result.AddError(fmt.Sprintf("nodes[%d].id", i), CodeDuplicateNode,
				fmt.Sprintf("node %q already declared at nodes[%d]", n.ID, first))
			continue
		}
		ids[n.ID] = i
	}

	degree := make(map[string]int, len(doc.Nodes))
	for i, e := range doc.Edges {
		path := fmt.Sprintf("edges[%d]", i)
		if _, ok := ids[e.Source]; !ok {
			result.AddError(path+".source", CodeDanglingEdge,
				fmt.Sprintf("references non-existent node %q", e.Source))
		}
		if _, ok := ids[e.Target]; !ok {
			result.AddError(path+".target", CodeDanglingEdge,
				fmt.Sprintf("references non-existent node %q", e.Target))
		}
		if e.Source == e.Target {
			result.AddWarning(path, CodeSelfLoop, fmt.Sprintf("node %q links to itself", e.Source))
		}
		degree[e.Source]++
		degree[e.Target]++
	}

	for i, n := range doc.Nodes {
		if degree[n.ID] == 0 && len(doc.Nodes) > 1 {
			result.AddWarning(fmt.Sprintf("nodes[%d]", i), CodeIsolatedNode,
				fmt.Sprintf("node %q has no edges", n.ID))
		}
	}

	return result
}
