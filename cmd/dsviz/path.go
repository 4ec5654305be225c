package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rendis/dsviz/internal/diagram"
	"github.com/rendis/dsviz/internal/maps"
	"github.com/rendis/dsviz/internal/visualizer"
	"github.com/rendis/dsviz/pkg/schema"
)

type pathOpts struct {
	algorithm string
	mapName   string
	jq        string
	render    string
	steps     bool
}

func newPathCmd() *cobra.Command {
	opts := &pathOpts{}
	cmd := &cobra.Command{
		Use:   "path <start> [end]",
		Short: "Find a route on a built-in map",
		Long: `Find a route between two nodes of a built-in map. Without an end node,
Dijkstra explores the whole map. Run with --list to see the maps.`,
		Example: "  dsviz path --map gauteng johannesburg pretoria\n  dsviz path -a astar --map kzn durban pietermaritzburg --render ascii",
		Args:    cobra.RangeArgs(0, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			list, _ := cmd.Flags().GetBool("list")
			if list {
				return listMaps(cmd.OutOrStdout())
			}
			if len(args) == 0 {
				return schema.NewError(schema.ErrCodeValidation, "start node is required")
			}
			return runPath(cmd.Context(), cmd.OutOrStdout(), opts, args)
		},
	}
	cmd.Flags().StringVarP(&opts.algorithm, "algorithm", "a", "dijkstra", "dijkstra, astar or bfs")
	cmd.Flags().StringVar(&opts.mapName, "map", "gauteng", "built-in map")
	cmd.Flags().StringVar(&opts.jq, "jq", "", "print the result as JSON filtered by this jq expression")
	cmd.Flags().StringVar(&opts.render, "render", "", "draw the map with the route: ascii or mermaid")
	cmd.Flags().BoolVar(&opts.steps, "steps", false, "print every algorithm step")
	cmd.Flags().Bool("list", false, "list the built-in maps")
	return cmd
}

func listMaps(w io.Writer) error {
	table := newTable(w, "MAP", "NODES", "ROADS")
	for _, name := range maps.Names() {
		m, err := maps.Get(name)
		if err != nil {
			return err
		}
		table.Append([]string{name, strconv.Itoa(len(m.Nodes)), strconv.Itoa(len(m.Edges))})
	}
	table.Render()
	return nil
}

func runPath(ctx context.Context, w io.Writer, opts *pathOpts, args []string) error {
	m, err := maps.Get(opts.mapName)
	if err != nil {
		return err
	}
	req := visualizer.PathRequest{Algorithm: opts.algorithm, Map: m.Name, Start: args[0]}
	if len(args) > 1 {
		req.End = args[1]
	}

	a, err := localApp(ctx, 0)
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.svc.ShortestPath(ctx, req)
	if err != nil {
		return err
	}
	if opts.jq != "" {
		return printJSON(ctx, w, res, opts.jq)
	}

	if opts.steps {
		printAlgorithmSteps(w, res.Steps)
		fmt.Fprintln(w)
	}
	if len(res.Path) == 0 {
		fmt.Fprintf(w, "no route from %s after exploring %d nodes\n", req.Start, res.NodesExplored)
		return nil
	}

	g := m.Graph()
	labels := make(map[string]string, len(m.Nodes))
	for _, c := range m.Nodes {
		labels[c.ID] = c.Label
	}
	table := newTable(w, "#", "NODE", "CITY", "LEG", "TOTAL")
	total := 0.0
	for i, id := range res.Path {
		leg := ""
		if i > 0 {
			wgt, _ := g.EdgeWeight(res.Path[i-1], id)
			total += wgt
			leg = strconv.FormatFloat(wgt, 'f', -1, 64)
		}
		table.Append([]string{strconv.Itoa(i + 1), id, labels[id], leg, strconv.FormatFloat(total, 'f', -1, 64)})
	}
	table.Render()
	fmt.Fprintf(w, "\n%s: %s, distance %g, %d nodes explored\n",
		res.Algorithm, strings.Join(res.Path, " -> "), res.Distance, res.NodesExplored)

	if opts.render != "" {
		out, err := diagram.Render(ctx, diagram.FromGraph(m.Name, g, res.Path, nil), opts.render)
		if err != nil {
			return err
		}
		if strings.HasPrefix(out.ContentType, "image/") {
			return schema.NewError(schema.ErrCodeValidation, "--render supports ascii and mermaid")
		}
		fmt.Fprintln(w)
		fmt.Fprintln(w, string(out.Body))
	}
	return nil
}
