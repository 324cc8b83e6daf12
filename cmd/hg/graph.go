package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/hypergraph/internal/hypergraph"
	"github.com/alfredjeanlab/hypergraph/internal/model"
	"github.com/alfredjeanlab/hypergraph/internal/snapshot"
)

func newInitCmd(a *app) *cobra.Command {
	var (
		id, label, typ string
		undirected     bool
		force          bool
		meta           []string
	)
	cmd := &cobra.Command{
		Use:     "init",
		Short:   "Create an empty graph file",
		GroupID: "graph",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(a.graphPath); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", a.graphPath)
			} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
				return err
			}
			md, err := parseMetadata(meta)
			if err != nil {
				return err
			}
			directed := !undirected
			g, err := hypergraph.New(hypergraph.Config{
				ID:          id,
				Label:       label,
				Type:        typ,
				Directed:    &directed,
				Metadata:    md,
				IDGenerator: a.newID,
			})
			if err != nil {
				return err
			}
			if err := a.library.Apply(g); err != nil {
				return err
			}
			if err := a.save(cmd.Context(), snapshot.GraphSource{Graph: g}); err != nil {
				return err
			}
			if a.jsonOutput {
				return printJSON(cmd.OutOrStdout(), map[string]string{"id": g.ID(), "path": a.graphPath})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created graph %s in %s\n", g.ID(), a.graphPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "graph id (generated when empty)")
	cmd.Flags().StringVar(&label, "label", "", "graph label")
	cmd.Flags().StringVar(&typ, "type", "", "graph type")
	cmd.Flags().BoolVar(&undirected, "undirected", false, "mark the graph as undirected")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing graph file")
	cmd.Flags().StringArrayVarP(&meta, "meta", "m", nil, "graph metadata key=value (repeatable)")
	return cmd
}

func newAddNodeCmd(a *app) *cobra.Command {
	var (
		in   hypergraph.NodeInput
		meta []string
	)
	cmd := &cobra.Command{
		Use:     "add-node [label]",
		Short:   "Add a node",
		GroupID: "graph",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				in.Label = args[0]
			}
			md, err := parseMetadata(meta)
			if err != nil {
				return err
			}
			in.Metadata = md

			svc, err := a.openService()
			if err != nil {
				return err
			}
			id, err := svc.AddNode(cmd.Context(), in)
			if err != nil {
				return err
			}
			if err := a.save(cmd.Context(), svc); err != nil {
				return err
			}
			return printCreated(cmd, a, "node", id)
		},
	}
	cmd.Flags().StringVar(&in.ID, "id", "", "node id (generated when empty)")
	cmd.Flags().StringVarP(&in.Type, "type", "t", "", "node type tag")
	cmd.Flags().StringArrayVarP(&meta, "meta", "m", nil, "metadata key=value (repeatable)")
	return cmd
}

func newAddEdgeCmd(a *app) *cobra.Command {
	var (
		in             hypergraph.EdgeInput
		source, target []string
		meta           []string
	)
	cmd := &cobra.Command{
		Use:     "add-edge",
		Short:   "Add a hyperedge from source nodes to target nodes",
		GroupID: "graph",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			md, err := parseMetadata(meta)
			if err != nil {
				return err
			}
			in.Source = model.IDList(source)
			in.Target = model.IDList(target)
			in.Metadata = md

			svc, err := a.openService()
			if err != nil {
				return err
			}
			id, err := svc.AddEdge(cmd.Context(), in)
			if err != nil {
				return err
			}
			if err := a.save(cmd.Context(), svc); err != nil {
				return err
			}
			return printCreated(cmd, a, "edge", id)
		},
	}
	cmd.Flags().StringVar(&in.ID, "id", "", "edge id (generated when empty)")
	cmd.Flags().StringVarP(&in.Relation, "relation", "r", "", "edge relation tag")
	cmd.Flags().StringSliceVarP(&source, "source", "s", nil, "source node ids, in order")
	cmd.Flags().StringSliceVarP(&target, "target", "T", nil, "target node ids, in order")
	cmd.Flags().StringArrayVarP(&meta, "meta", "m", nil, "metadata key=value (repeatable)")
	return cmd
}

func newSetCmd(a *app) *cobra.Command {
	var meta []string
	cmd := &cobra.Command{
		Use:     "set <id>",
		Short:   "Merge metadata into a node or edge",
		GroupID: "graph",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			patch, err := parseMetadata(meta)
			if err != nil {
				return err
			}
			if len(patch) == 0 {
				return fmt.Errorf("nothing to set (use -m key=value)")
			}

			svc, err := a.openService()
			if err != nil {
				return err
			}
			if _, ok := svc.Node(id); ok {
				err = svc.UpdateNodeMetadata(cmd.Context(), id, patch)
			} else {
				err = svc.UpdateEdgeMetadata(cmd.Context(), id, patch)
			}
			if err != nil {
				return err
			}
			if err := a.save(cmd.Context(), svc); err != nil {
				return err
			}
			if a.jsonOutput {
				return printJSON(cmd.OutOrStdout(), map[string]any{"id": id, "changes": patch})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s (%d fields)\n", id, len(patch))
			return nil
		},
	}
	cmd.Flags().StringArrayVarP(&meta, "meta", "m", nil, "metadata key=value (repeatable)")
	return cmd
}

func newRmNodeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "rm-node <id>",
		Short:   "Remove a node and every edge that contains it",
		GroupID: "graph",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			svc, err := a.openService()
			if err != nil {
				return err
			}
			incident, err := svc.IncidentEdges(id)
			if err != nil {
				return err
			}
			if !svc.RemoveNode(cmd.Context(), id) {
				return fmt.Errorf("node %q not found", id)
			}
			if err := a.save(cmd.Context(), svc); err != nil {
				return err
			}

			removed := make([]string, len(incident))
			for i, e := range incident {
				removed[i] = e.ID
			}
			if a.jsonOutput {
				return printJSON(cmd.OutOrStdout(), map[string]any{"id": id, "removed_edges": removed})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed node %s (%d edges)\n", id, len(removed))
			return nil
		},
	}
}

func newRmEdgeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "rm-edge <id>",
		Short:   "Remove a hyperedge",
		GroupID: "graph",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			svc, err := a.openService()
			if err != nil {
				return err
			}
			if !svc.RemoveEdge(cmd.Context(), id) {
				return fmt.Errorf("edge %q not found", id)
			}
			if err := a.save(cmd.Context(), svc); err != nil {
				return err
			}
			if a.jsonOutput {
				return printJSON(cmd.OutOrStdout(), map[string]string{"id": id})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed edge %s\n", id)
			return nil
		},
	}
}

func printCreated(cmd *cobra.Command, a *app, kind, id string) error {
	if a.jsonOutput {
		return printJSON(cmd.OutOrStdout(), map[string]string{"id": id})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Added %s %s\n", kind, id)
	return nil
}
