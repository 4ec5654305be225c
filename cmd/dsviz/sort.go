package main

import (
	"context"
	"fmt"
	"io"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
)

type sortOpts struct {
	algorithm string
	jq        string
	plot      bool
	height    int
}

func newSortCmd() *cobra.Command {
	opts := &sortOpts{}
	cmd := &cobra.Command{
		Use:     "sort <value...>",
		Short:   "Sort integers and print every comparison and swap",
		Example: "  dsviz sort --algorithm quick 5 2 9 1 7\n  dsviz sort 3 1 2 --jq '.finalArray'",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := parseInts(args)
			if err != nil {
				return err
			}
			return runSort(cmd.Context(), cmd.OutOrStdout(), opts, values)
		},
	}
	cmd.Flags().StringVarP(&opts.algorithm, "algorithm", "a", "bubble", "bubble, insertion, selection or quick")
	cmd.Flags().StringVar(&opts.jq, "jq", "", "print the result as JSON filtered by this jq expression")
	cmd.Flags().BoolVar(&opts.plot, "plot", true, "plot the array before and after sorting")
	cmd.Flags().IntVar(&opts.height, "height", 8, "plot height in rows")
	return cmd
}

func runSort(ctx context.Context, w io.Writer, opts *sortOpts, values []int) error {
	a, err := localApp(ctx, 0)
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.svc.Sort(ctx, opts.algorithm, values)
	if err != nil {
		return err
	}
	if opts.jq != "" {
		return printJSON(ctx, w, res, opts.jq)
	}

	printAlgorithmSteps(w, res.Steps)
	fmt.Fprintf(w, "\n%s sort: %v -> %v (%d steps)\n", res.Algorithm, values, res.FinalArray, len(res.Steps))
	if opts.plot && len(values) > 1 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, plotValues(values, opts.height, "input"))
		fmt.Fprintln(w)
		fmt.Fprintln(w, plotValues(res.FinalArray, opts.height, "sorted"))
	}
	return nil
}

func plotValues(values []int, height int, caption string) string {
	series := make([]float64, len(values))
	for i, v := range values {
		series[i] = float64(v)
	}
	return asciigraph.Plot(series, asciigraph.Height(height), asciigraph.Caption(caption))
}
