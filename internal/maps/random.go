package maps

import (
	"fmt"
	"math/rand/v2"

	"github.com/rendis/dsviz/internal/algorithms"
)

// RandomGraph places nodes uniformly on the canvas and draws edges between
// random pairs with weights in [1, 11). Pairs that land on the same node
// are skipped, so the graph may have fewer than edges edges. The same seed
// always yields the same graph.
func RandomGraph(nodes, edges int, seed uint64) *algorithms.Graph {
	g := algorithms.NewGraph()
	if nodes <= 0 {
		return g
	}
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	for i := 0; i < nodes; i++ {
		g.AddNode(algorithms.Node{
			ID:    fmt.Sprintf("node%d", i),
			Label: fmt.Sprintf("Node %d", i),
			X:     r.Float64() * CanvasWidth,
			Y:     r.Float64() * CanvasHeight,
		})
	}
	for i := 0; i < edges; i++ {
		src := fmt.Sprintf("node%d", r.IntN(nodes))
		tgt := fmt.Sprintf("node%d", r.IntN(nodes))
		if src == tgt {
			continue
		}
		g.AddEdge(algorithms.Edge{
			ID:     fmt.Sprintf("edge%d", i),
			Source: src,
			Target: tgt,
			Weight: r.Float64()*10 + 1,
		})
	}
	return g
}
