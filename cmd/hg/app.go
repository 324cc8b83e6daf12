package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/hypergraph/internal/config"
	"github.com/alfredjeanlab/hypergraph/internal/events"
	"github.com/alfredjeanlab/hypergraph/internal/hypergraph"
	"github.com/alfredjeanlab/hypergraph/internal/idgen"
	"github.com/alfredjeanlab/hypergraph/internal/model"
	"github.com/alfredjeanlab/hypergraph/internal/replay"
	"github.com/alfredjeanlab/hypergraph/internal/service"
	"github.com/alfredjeanlab/hypergraph/internal/snapshot"
	"github.com/alfredjeanlab/hypergraph/internal/typedef"
	"github.com/alfredjeanlab/hypergraph/internal/ui"
)

// app holds the state shared by every command of one invocation.
type app struct {
	graphPath    string
	typesPattern string
	jsonOutput   bool

	cfg       *config.Config
	logger    *slog.Logger
	newID     idgen.Generator
	publisher events.Publisher
	library   *typedef.Library
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = cfg.Logger(cmd.ErrOrStderr())

	if a.newID, err = cfg.IDGenerator(); err != nil {
		return err
	}

	if a.typesPattern == "" {
		a.typesPattern = cfg.Types
	}
	if a.typesPattern == "" {
		a.library = typedef.NewLibrary()
	} else if a.library, err = typedef.LoadGlob(a.typesPattern); err != nil {
		return fmt.Errorf("loading types: %w", err)
	}

	if cfg.NATSURL != "" {
		pub, err := events.NewNATSPublisher(cfg.NATSURL)
		if err != nil {
			return err
		}
		a.publisher = pub
	} else {
		a.publisher = events.NewLogPublisher(a.logger)
	}

	if ui.ColorEnabled() && !ui.ShouldUseColorFor(outFile(cmd)) {
		ui.ForceNoColor()
	}
	return nil
}

func (a *app) close(ctx context.Context) {
	if a.publisher == nil {
		return
	}
	if f, ok := a.publisher.(interface{ Flush(context.Context) error }); ok {
		if ctx == nil {
			ctx = context.Background()
		}
		if err := f.Flush(ctx); err != nil {
			a.logger.Warn("failed to flush events", "error", err)
		}
	}
	_ = a.publisher.Close()
}

// loadGraph replays the graph file with the type library registered.
func (a *app) loadGraph() (*hypergraph.Graph, error) {
	f, err := os.Open(a.graphPath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("graph file %s does not exist (run hg init)", a.graphPath)
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	g, err := replay.Load(f, replay.Options{Setup: a.library.Apply, IDGenerator: a.newID})
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", a.graphPath, err)
	}
	return g, nil
}

// openService loads the graph and wraps it for event publication.
func (a *app) openService() (*service.Service, error) {
	g, err := a.loadGraph()
	if err != nil {
		return nil, err
	}
	return service.New(g, a.publisher, a.logger), nil
}

// save replaces the graph file with the current snapshot of src.
func (a *app) save(ctx context.Context, src snapshot.Source) error {
	snap, err := src.Snapshot(ctx)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := snapshot.WriteJSON(&buf, snap, "  "); err != nil {
		return err
	}
	if err := snapshot.NewFileDestination(a.graphPath).Write(ctx, buf.Bytes()); err != nil {
		return fmt.Errorf("saving %s: %w", a.graphPath, err)
	}
	a.logger.Debug("graph saved", "path", a.graphPath, "nodes", len(snap.Nodes), "edges", len(snap.Hyperedges))
	return nil
}

// fileSource snapshots the graph file as it is on disk at each call, so a
// long-running sync picks up changes made by other invocations.
type fileSource struct {
	app *app
}

func (s fileSource) Snapshot(ctx context.Context) (*model.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	g, err := s.app.loadGraph()
	if err != nil {
		return nil, err
	}
	return g.ToJSON()
}

func outFile(cmd *cobra.Command) *os.File {
	if f, ok := cmd.OutOrStdout().(*os.File); ok {
		return f
	}
	return nil
}
