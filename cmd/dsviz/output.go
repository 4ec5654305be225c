package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/rendis/dsviz/internal/algorithms"
	"github.com/rendis/dsviz/internal/expressions"
	"github.com/rendis/dsviz/internal/trace"
	"github.com/rendis/dsviz/internal/visualizer"
)

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	return table
}

// printJSON writes v indented, or the outputs of query when set.
func printJSON(ctx context.Context, w io.Writer, v any, query string) error {
	if query != "" {
		out, err := expressions.NewGoJQEngine().Query(ctx, query, v)
		if err != nil {
			return err
		}
		for _, o := range out {
			if err := writeIndented(w, o); err != nil {
				return err
			}
		}
		return nil
	}
	return writeIndented(w, v)
}

func writeIndented(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printTrace(w io.Writer, steps []trace.Step) {
	table := newTable(w, "#", "TAG", "DESCRIPTION", "HIGHLIGHT")
	for i, st := range steps {
		table.Append([]string{fmt.Sprint(i + 1), string(st.Operation), st.Description, st.Highlighted})
	}
	table.Render()
}

func printState(w io.Writer, st visualizer.State) {
	table := newTable(w, "POS", "FILENAME", "SIZE", "TYPE", "ID")
	for _, n := range st.Nodes {
		table.Append([]string{fmt.Sprint(n.Position), n.Name, n.Size, n.ContentType, shortID(n.ID)})
	}
	table.SetFooter([]string{"", fmt.Sprintf("size %d", st.Size), capacityLabel(st), "", ""})
	table.Render()
}

func capacityLabel(st visualizer.State) string {
	if st.Capacity == 0 {
		return ""
	}
	return fmt.Sprintf("cap %d", st.Capacity)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func printAlgorithmSteps(w io.Writer, steps []algorithms.Step) {
	table := newTable(w, "#", "TYPE", "DATA")
	for i, st := range steps {
		table.Append([]string{fmt.Sprint(i + 1), st.Type, formatData(st.Data)})
	}
	table.Render()
}

// formatData renders step data as sorted key=value pairs.
func formatData(data map[string]any) string {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		raw, err := json.Marshal(data[k])
		if err != nil {
			raw = []byte(fmt.Sprint(data[k]))
		}
		parts[i] = k + "=" + string(raw)
	}
	return strings.Join(parts, " ")
}
