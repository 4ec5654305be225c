package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rendis/dsviz/internal/diagram"
	"github.com/rendis/dsviz/internal/trace"
	"github.com/rendis/dsviz/internal/visualizer"
	"github.com/rendis/dsviz/pkg/schema"
)

type runOpts struct {
	index       int
	hasIndex    bool
	name        string
	capacity    int
	hasCapacity bool
	size        int64
	contentType string
	maxSize     int
	jq          string
	render      string
}

var exampleForRunCmd = `  dsviz run stack push a.txt b.txt c.txt
  dsviz run array insert --index 0 report.pdf
  dsviz run tree insert m.txt c.txt x.txt --render ascii
  dsviz run list insert a.txt --jq '[.[] | .operation]'`

func newRunCmd() *cobra.Command {
	opts := &runOpts{}
	cmd := &cobra.Command{
		Use:   "run <structure> <operation> [filename...]",
		Short: "Run structure operations locally and print their traces",
		Long: `Run one operation on a fresh structure, or one per filename for insert, push
and enqueue, and print each step trace followed by the final state.`,
		Example: exampleForRunCmd,
		Args:    cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.hasIndex = cmd.Flags().Changed("index")
			opts.hasCapacity = cmd.Flags().Changed("capacity")
			return runOperations(cmd.Context(), cmd.OutOrStdout(), opts, args)
		},
	}
	cmd.Flags().IntVar(&opts.index, "index", 0, "array index for insert, delete and access")
	cmd.Flags().StringVar(&opts.name, "name", "", "file name to search for or delete")
	cmd.Flags().IntVar(&opts.capacity, "capacity", 0, "new capacity for resize")
	cmd.Flags().Int64Var(&opts.size, "size", 0, "item size in bytes")
	cmd.Flags().StringVar(&opts.contentType, "content-type", "", "item content type")
	cmd.Flags().IntVar(&opts.maxSize, "max-size", 10, "capacity of array, stack and queue")
	cmd.Flags().StringVar(&opts.jq, "jq", "", "print the traces as JSON filtered by this jq expression")
	cmd.Flags().StringVar(&opts.render, "render", "", "draw the final state: ascii or mermaid")
	return cmd
}

func runOperations(ctx context.Context, w io.Writer, opts *runOpts, args []string) error {
	kind, err := schema.ParseStructureKind(args[0])
	if err != nil {
		return err
	}
	op := strings.ToLower(args[1])

	a, err := localApp(ctx, opts.maxSize)
	if err != nil {
		return err
	}
	defer a.Close()

	reqs := buildRequests(kind, op, opts, args[2:])
	var traces [][]trace.Step
	for _, req := range reqs {
		res, err := a.svc.Apply(ctx, req)
		if err != nil {
			return err
		}
		traces = append(traces, res.Steps)
	}

	if opts.jq != "" {
		return printJSON(ctx, w, flatten(traces), opts.jq)
	}
	for i, steps := range traces {
		label := op
		if reqs[i].Item != nil {
			label += " " + reqs[i].Item.Name
		}
		fmt.Fprintf(w, "%s %s\n", kind, label)
		printTrace(w, steps)
		fmt.Fprintln(w)
	}

	st, err := a.svc.State(kind)
	if err != nil {
		return err
	}
	printState(w, st)

	if opts.render != "" {
		out, err := diagram.Render(ctx, diagram.FromSnapshots(kind, st.Nodes, ""), opts.render)
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

func buildRequests(kind schema.StructureKind, op string, opts *runOpts, files []string) []visualizer.Request {
	base := visualizer.Request{
		Structure: kind,
		Operation: op,
		Name:      opts.name,
	}
	if opts.hasIndex {
		base.Index = visualizer.Int(opts.index)
	}
	if opts.hasCapacity {
		base.Capacity = visualizer.Int(opts.capacity)
	}
	if len(files) == 0 {
		return []visualizer.Request{base}
	}
	reqs := make([]visualizer.Request, len(files))
	for i, f := range files {
		req := base
		item := schema.NewItem(f, opts.contentType, opts.size)
		req.Item = &item
		reqs[i] = req
	}
	return reqs
}

func flatten(traces [][]trace.Step) []trace.Step {
	var out []trace.Step
	for _, t := range traces {
		out = append(out, t...)
	}
	return out
}
