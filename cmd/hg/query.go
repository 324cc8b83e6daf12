package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/hypergraph/internal/hypergraph"
	"github.com/alfredjeanlab/hypergraph/internal/model"
	"github.com/alfredjeanlab/hypergraph/internal/typedef"
	"github.com/alfredjeanlab/hypergraph/internal/ui"
)

func newShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "show <id>",
		Short:   "Show a node or edge",
		GroupID: "query",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			g, err := a.loadGraph()
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()

			if g.HasNode(id) {
				ref, err := hypergraph.NewNodeRef(g, id)
				if err != nil {
					return err
				}
				if a.jsonOutput {
					return printJSON(w, ref)
				}
				n, _ := ref.Node()
				tc, _ := ref.Config()
				printNode(w, n, tc)
				incident, err := g.IncidentEdges(id)
				if err != nil {
					return err
				}
				if len(incident) > 0 {
					fmt.Fprintln(w)
					printEdgeTable(w, incident)
				}
				return nil
			}

			ref, err := hypergraph.NewEdgeRef(g, id)
			if err != nil {
				return err
			}
			if a.jsonOutput {
				return printJSON(w, ref)
			}
			e, _ := ref.Edge()
			tc, _ := ref.Config()
			printEdge(w, e, tc)
			return nil
		},
	}
}

func newEdgesCmd(a *app) *cobra.Command {
	var direction string
	cmd := &cobra.Command{
		Use:     "edges <node-id>",
		Short:   "List the hyperedges a node belongs to",
		GroupID: "query",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := a.loadGraph()
			if err != nil {
				return err
			}
			var edges []*model.Hyperedge
			switch direction {
			case "in":
				edges, err = g.IncomingEdges(args[0])
			case "out":
				edges, err = g.OutgoingEdges(args[0])
			case "all":
				edges, err = g.IncidentEdges(args[0])
			default:
				return fmt.Errorf("unknown direction %q (must be in, out or all)", direction)
			}
			if err != nil {
				return err
			}
			if a.jsonOutput {
				if edges == nil {
					edges = []*model.Hyperedge{}
				}
				return printJSON(cmd.OutOrStdout(), edges)
			}
			printEdgeTable(cmd.OutOrStdout(), edges)
			return nil
		},
	}
	cmd.Flags().StringVarP(&direction, "direction", "d", "all", "in (node is a target), out (node is a source) or all")
	return cmd
}

func newNeighborsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "neighbors <node-id>",
		Short:   "List the nodes sharing an edge with a node",
		GroupID: "query",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := a.loadGraph()
			if err != nil {
				return err
			}
			ids, err := g.Neighbors(args[0])
			if err != nil {
				return err
			}
			if a.jsonOutput {
				if ids == nil {
					ids = []string{}
				}
				return printJSON(cmd.OutOrStdout(), ids)
			}
			for _, id := range ids {
				n, _ := g.Node(id)
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", ui.RenderID(id), n.Label)
			}
			return nil
		},
	}
}

func newTypesCmd(a *app) *cobra.Command {
	var encode string
	cmd := &cobra.Command{
		Use:     "types",
		Short:   "List registered node types and edge relations",
		GroupID: "query",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if encode != "" {
				return a.library.Encode(cmd.OutOrStdout(), typedef.Format(encode))
			}

			g, err := a.loadGraph()
			if err != nil {
				if _, statErr := os.Stat(a.graphPath); statErr == nil {
					return err
				}
				// No graph yet: show what the library would register.
				if g, err = hypergraph.New(hypergraph.Config{IDGenerator: a.newID}); err != nil {
					return err
				}
				if err := a.library.Apply(g); err != nil {
					return err
				}
			}

			if a.jsonOutput {
				return printJSON(cmd.OutOrStdout(), map[string]any{
					"node_types":     descriptors(g.NodeTypes(), g.NodeConfig),
					"edge_relations": descriptors(g.EdgeRelations(), g.EdgeConfig),
				})
			}
			printTypeTable(cmd.OutOrStdout(), "Node types:", g.NodeTypes(), g.NodeConfig)
			fmt.Fprintln(cmd.OutOrStdout())
			printTypeTable(cmd.OutOrStdout(), "Edge relations:", g.EdgeRelations(), g.EdgeConfig)
			return nil
		},
	}
	cmd.Flags().StringVar(&encode, "encode", "", "print the loaded descriptor library as toml or yaml")
	return cmd
}

func descriptors(tags []string, lookup func(string) *model.TypeConfig) map[string]model.TypeDescriptor {
	out := make(map[string]model.TypeDescriptor, len(tags))
	for _, tag := range tags {
		out[tag] = lookup(tag).Descriptor()
	}
	return out
}
