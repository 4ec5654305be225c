package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

type searchOpts struct {
	algorithm string
	target    int
	jq        string
}

func newSearchCmd() *cobra.Command {
	opts := &searchOpts{}
	cmd := &cobra.Command{
		Use:     "search <value...>",
		Short:   "Search integers for a target and print every probe",
		Example: "  dsviz search --algorithm binary --target 7 1 3 5 7 9",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := parseInts(args)
			if err != nil {
				return err
			}
			return runSearch(cmd.Context(), cmd.OutOrStdout(), opts, values)
		},
	}
	cmd.Flags().StringVarP(&opts.algorithm, "algorithm", "a", "linear", "linear, binary, jump or interpolation")
	cmd.Flags().IntVarP(&opts.target, "target", "t", 0, "value to find")
	cmd.Flags().StringVar(&opts.jq, "jq", "", "print the result as JSON filtered by this jq expression")
	_ = cmd.MarkFlagRequired("target")
	return cmd
}

func runSearch(ctx context.Context, w io.Writer, opts *searchOpts, values []int) error {
	a, err := localApp(ctx, 0)
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.svc.Search(ctx, opts.algorithm, values, opts.target)
	if err != nil {
		return err
	}
	if opts.jq != "" {
		return printJSON(ctx, w, res, opts.jq)
	}

	printAlgorithmSteps(w, res.Steps)
	if res.Found {
		fmt.Fprintf(w, "\nfound %d at index %d after checking %d elements\n", opts.target, res.Index, res.ElementsChecked)
	} else {
		fmt.Fprintf(w, "\n%d not found after checking %d elements\n", opts.target, res.ElementsChecked)
	}
	return nil
}
