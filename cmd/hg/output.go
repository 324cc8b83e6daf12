package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/alfredjeanlab/hypergraph/internal/model"
	"github.com/alfredjeanlab/hypergraph/internal/ui"
)

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func printNode(w io.Writer, n *model.Node, tc *model.TypeConfig) {
	fmt.Fprintf(w, "ID:        %s\n", ui.RenderID(n.ID))
	fmt.Fprintf(w, "Label:     %s\n", n.Label)
	fmt.Fprintf(w, "Type:      %s\n", describeType(n.Type, tc))
	printMetadata(w, n.Metadata)
}

func printEdge(w io.Writer, e *model.Hyperedge, tc *model.TypeConfig) {
	fmt.Fprintf(w, "ID:        %s\n", ui.RenderID(e.ID))
	fmt.Fprintf(w, "Relation:  %s\n", ui.RenderRelation(describeType(e.Relation, tc)))
	fmt.Fprintf(w, "Source:    %s\n", strings.Join(e.Source, ", "))
	fmt.Fprintf(w, "Target:    %s\n", strings.Join(e.Target, ", "))
	printMetadata(w, e.Metadata)
}

func describeType(tag string, tc *model.TypeConfig) string {
	if tag == "" {
		tag = "(none)"
	}
	if tc == nil {
		return tag
	}
	return fmt.Sprintf("%s %s", tag, ui.RenderMuted(fmt.Sprintf("(%s v%s)", tc.TypeName(), tc.Version())))
}

func printMetadata(w io.Writer, md model.Metadata) {
	if len(md) == 0 {
		return
	}
	fmt.Fprintln(w, "Metadata:")
	for _, k := range sortedKeys(md) {
		v, err := json.Marshal(md[k])
		if err != nil {
			v = []byte(fmt.Sprint(md[k]))
		}
		fmt.Fprintf(w, "  %s = %s\n", k, v)
	}
}

func printEdgeTable(w io.Writer, edges []*model.Hyperedge) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tRELATION\tSOURCE\tTARGET")
	for _, e := range edges {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			e.ID,
			e.Relation,
			ui.Truncate(strings.Join(e.Source, ","), 40),
			ui.Truncate(strings.Join(e.Target, ","), 40),
		)
	}
	tw.Flush()
	fmt.Fprintf(w, "\n%d edges\n", len(edges))
}

func printTypeTable(w io.Writer, title string, tags []string, lookup func(string) *model.TypeConfig) {
	fmt.Fprintln(w, ui.RenderAccent(title))
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TAG\tNAME\tVERSION\tSTRICT\tFIELDS")
	for _, tag := range tags {
		tc := lookup(tag)
		display := tag
		if display == "" {
			display = "(default)"
		}
		var fields []string
		for _, f := range tc.Schema() {
			fields = append(fields, f.Name+":"+f.Type.String())
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%t\t%s\n", display, tc.TypeName(), tc.Version(), tc.Strict(), strings.Join(fields, " "))
	}
	tw.Flush()
}

func sortedKeys(md model.Metadata) []string {
	keys := make([]string, 0, len(md))
	for k := range md {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
