package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	cobra.EnableCommandSorting = false
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func defaultGraphPath() string {
	if s := os.Getenv("HYPERGRAPH_GRAPH"); s != "" {
		return s
	}
	return "graph.json"
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "hg <command>",
		Short:         "Build and query directed hypergraphs stored in a snapshot file",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.close(cmd.Context())
		},
	}

	rootCmd.PersistentFlags().StringVarP(&a.graphPath, "graph", "g", defaultGraphPath(), "graph snapshot file")
	rootCmd.PersistentFlags().StringVar(&a.typesPattern, "types", "", "glob of .toml/.yaml type descriptor files (default $HYPERGRAPH_TYPES)")
	rootCmd.PersistentFlags().BoolVar(&a.jsonOutput, "json", false, "output as JSON")

	rootCmd.AddGroup(
		&cobra.Group{ID: "graph", Title: "Graph:"},
		&cobra.Group{ID: "query", Title: "Queries:"},
		&cobra.Group{ID: "system", Title: "System:"},
	)

	rootCmd.SetHelpFunc(colorizedHelpFunc())

	// Graph
	rootCmd.AddCommand(newInitCmd(a))
	rootCmd.AddCommand(newAddNodeCmd(a))
	rootCmd.AddCommand(newAddEdgeCmd(a))
	rootCmd.AddCommand(newSetCmd(a))
	rootCmd.AddCommand(newRmNodeCmd(a))
	rootCmd.AddCommand(newRmEdgeCmd(a))

	// Queries
	rootCmd.AddCommand(newShowCmd(a))
	rootCmd.AddCommand(newEdgesCmd(a))
	rootCmd.AddCommand(newNeighborsCmd(a))
	rootCmd.AddCommand(newTypesCmd(a))

	// System
	rootCmd.AddCommand(newValidateCmd(a))
	rootCmd.AddCommand(newExportCmd(a))
	rootCmd.AddCommand(newImportCmd(a))
	rootCmd.AddCommand(newSyncCmd(a))
	rootCmd.AddCommand(newWatchCmd(a))

	return rootCmd
}
