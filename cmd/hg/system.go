package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/hypergraph/internal/replay"
	"github.com/alfredjeanlab/hypergraph/internal/snapshot"
)

func newValidateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "validate",
		Short:   "Replay the graph file against the type library and report its digest",
		GroupID: "system",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := a.loadGraph()
			if err != nil {
				return err
			}
			snap, err := g.ToJSON()
			if err != nil {
				return err
			}
			digest, err := snapshot.Digest(snap)
			if err != nil {
				return err
			}
			if a.jsonOutput {
				return printJSON(cmd.OutOrStdout(), map[string]any{
					"graph":  g.ID(),
					"nodes":  g.NodeCount(),
					"edges":  g.EdgeCount(),
					"types":  a.library.Len(),
					"digest": digest,
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (%d nodes, %d edges, %d types)\ndigest %s\n",
				a.graphPath, g.NodeCount(), g.EdgeCount(), a.library.Len(), digest)
			return nil
		},
	}
}

func newExportCmd(a *app) *cobra.Command {
	var format, output string
	cmd := &cobra.Command{
		Use:     "export",
		Short:   "Write the graph as a JSON document or JSONL records",
		GroupID: "system",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := exportFormat(format, output)
			if err != nil {
				return err
			}
			g, err := a.loadGraph()
			if err != nil {
				return err
			}
			data, err := snapshot.Export(cmd.Context(), snapshot.GraphSource{Graph: g}, f)
			if err != nil {
				return err
			}
			if output == "" || output == "-" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			dest := snapshot.NewFileDestination(output)
			if err := dest.Write(cmd.Context(), data); err != nil {
				return err
			}
			a.logger.Info("exported graph", "destination", dest.String(), "format", f, "bytes", len(data))
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "", "json or jsonl (default from --output extension, else json)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}

func exportFormat(format, output string) (snapshot.Format, error) {
	if format != "" {
		return snapshot.ParseFormat(format)
	}
	if output == "" || output == "-" {
		return snapshot.FormatJSON, nil
	}
	return snapshot.FormatFromPath(output), nil
}

func newImportCmd(a *app) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:     "import <file>",
		Short:   "Replace the graph file with a JSON or JSONL export",
		GroupID: "system",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(a.graphPath); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", a.graphPath)
			} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
				return err
			}

			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			if snapshot.FormatFromPath(args[0]) == snapshot.FormatJSONL {
				snap, h, err := snapshot.ReadJSONL(bytes.NewReader(data))
				if err != nil {
					return fmt.Errorf("reading %s: %w", args[0], err)
				}
				a.logger.Debug("read export", "graph", h.Graph, "exported_at", h.Timestamp, "digest", h.Digest)
				if data, err = json.Marshal(snap); err != nil {
					return err
				}
			}

			g, err := replay.Load(bytes.NewReader(data), replay.Options{Setup: a.library.Apply, IDGenerator: a.newID})
			if err != nil {
				return fmt.Errorf("replaying %s: %w", args[0], err)
			}
			if err := a.save(cmd.Context(), snapshot.GraphSource{Graph: g}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d nodes and %d edges into %s\n", g.NodeCount(), g.EdgeCount(), a.graphPath)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing graph file")
	return cmd
}

func newSyncCmd(a *app) *cobra.Command {
	var (
		format   string
		interval time.Duration
		files    []string
	)
	cmd := &cobra.Command{
		Use:     "sync",
		Short:   "Export the graph to the configured file, S3 and git destinations",
		GroupID: "system",
		Long: `Export the graph to every configured destination.

Destinations come from HYPERGRAPH_SYNC_FILE, HYPERGRAPH_SYNC_S3_BUCKET and
HYPERGRAPH_SYNC_GIT_REPO, plus any --file flags. With a non-zero --interval
the export repeats until interrupted, re-reading the graph file each time.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := snapshot.ParseFormat(format)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("interval") {
				interval = a.cfg.SyncInterval
			}

			dests, err := a.cfg.Destinations(cmd.Context())
			if err != nil {
				return err
			}
			for _, path := range files {
				dests = append(dests, snapshot.NewFileDestination(path))
			}
			if len(dests) == 0 {
				return fmt.Errorf("no sync destinations configured")
			}

			src := fileSource{app: a}
			if interval <= 0 {
				return snapshot.Sync(cmd.Context(), src, f, dests, a.logger)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			sched := snapshot.NewScheduler(src, f, dests, interval, a.logger)
			sched.Start(ctx)
			a.logger.Info("sync scheduler started", "interval", interval, "destinations", len(dests))
			<-ctx.Done()
			sched.Stop()
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", string(snapshot.FormatJSONL), "json or jsonl")
	cmd.Flags().DurationVar(&interval, "interval", 0, "repeat every interval (default $HYPERGRAPH_SYNC_INTERVAL, 0 = once)")
	cmd.Flags().StringArrayVar(&files, "file", nil, "additional file destination (repeatable)")
	return cmd
}
