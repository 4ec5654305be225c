// gen-diagrams generates sample diagram outputs for README documentation.
// Run: go run ./cmd/gen-diagrams
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rendis/dsviz/internal/algorithms"
	"github.com/rendis/dsviz/internal/diagram"
	"github.com/rendis/dsviz/internal/maps"
	"github.com/rendis/dsviz/internal/structures"
	"github.com/rendis/dsviz/pkg/schema"
)

func main() {
	ctx := context.Background()
	outDir := filepath.Join("docs", "assets")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "mkdir: %v\n", err)
		os.Exit(1)
	}

	// Binary search tree built from a handful of file names.
	tree := structures.NewBinaryTree()
	for _, name := range []string{"m.txt", "c.txt", "x.txt", "a.txt", "e.txt", "q.txt"} {
		tree.Insert(schema.NewItem(name, "text/plain", 1024))
	}
	write(ctx, outDir, "tree", diagram.FromSnapshots(schema.StructureTree, tree.Snapshots(), ""))

	// Shortest route across each built-in map, first node to last.
	for _, name := range maps.Names() {
		m, err := maps.Get(name)
		if err != nil {
			fmt.Fprintf(os.Stderr, "map %s: %v\n", name, err)
			continue
		}
		g := m.Graph()
		var steps []algorithms.Step
		res := algorithms.Dijkstra(g, m.Nodes[0].ID, m.Nodes[len(m.Nodes)-1].ID, algorithms.Collect(&steps))
		fmt.Printf("%s: %v (distance %g, %d explored)\n", name, res.Path, res.Distance, res.NodesExplored)
		write(ctx, outDir, "map-"+name, diagram.FromGraph(m.Name, g, res.Path, nil))
	}
}

// write renders model in every format. Image failures are reported and
// skipped so the text outputs are still produced.
func write(ctx context.Context, dir, name string, model *diagram.DiagramModel) {
	files := map[string]string{
		"ascii":   name + "-ascii.txt",
		"mermaid": name + "-mermaid.md",
		"png":     name + ".png",
		"svg":     name + ".svg",
	}
	for format, file := range files {
		out, err := diagram.Render(ctx, model, format)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s %s: %v\n", name, format, err)
			continue
		}
		body := out.Body
		if format == "mermaid" {
			body = []byte("```mermaid\n" + string(body) + "\n```\n")
		}
		path := filepath.Join(dir, file)
		if err := os.WriteFile(path, body, 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "write %s: %v\n", path, err)
			continue
		}
		fmt.Printf("written: %s (%d bytes)\n", path, len(body))
	}
}
