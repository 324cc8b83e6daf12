package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/hypergraph/internal/events"
	"github.com/alfredjeanlab/hypergraph/internal/ui"
)

func newWatchCmd(a *app) *cobra.Command {
	var (
		natsURL string
		graphID string
		count   int
	)
	cmd := &cobra.Command{
		Use:     "watch",
		Short:   "Print graph mutation events as they are published",
		GroupID: "system",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if natsURL == "" {
				natsURL = a.cfg.NATSURL
			}
			if natsURL == "" {
				return fmt.Errorf("no NATS server (set --nats or HYPERGRAPH_NATS_URL)")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			sub, err := events.NewNATSSubscriber(natsURL,
				nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
					a.logger.Warn("nats disconnected", "error", err)
				}),
				nats.ReconnectHandler(func(_ *nats.Conn) {
					a.logger.Info("nats reconnected")
				}),
			)
			if err != nil {
				return err
			}
			defer sub.Close()

			ch, cancel, err := sub.Subscribe(events.TopicAll)
			if err != nil {
				return fmt.Errorf("subscribing to events: %w", err)
			}
			defer cancel()
			a.logger.Debug("watching events", "url", natsURL, "graph", graphID)

			seen := 0
			for {
				select {
				case <-ctx.Done():
					return nil
				case msg, ok := <-ch:
					if !ok {
						return nil
					}
					printed, err := printEvent(cmd.OutOrStdout(), msg, graphID, a.jsonOutput)
					if err != nil {
						a.logger.Warn("skipping event", "topic", msg.Topic, "error", err)
						continue
					}
					if printed {
						seen++
					}
					if count > 0 && seen >= count {
						return nil
					}
				}
			}
		},
	}
	cmd.Flags().StringVar(&natsURL, "nats", "", "NATS server URL (default $HYPERGRAPH_NATS_URL)")
	cmd.Flags().StringVar(&graphID, "graph-id", "", "only show events of this graph")
	cmd.Flags().IntVarP(&count, "count", "n", 0, "exit after this many events (0 = run until interrupted)")
	return cmd
}

// printEvent writes one event line. It reports false for events of other
// graphs when graphID is set.
func printEvent(w io.Writer, msg events.Message, graphID string, asJSON bool) (bool, error) {
	if graphID != "" && msg.Graph != "" && msg.Graph != graphID {
		return false, nil
	}
	ev, err := events.Decode(msg.Topic, msg.Data)
	if err != nil {
		return false, err
	}
	graph, line := describeEvent(ev)
	if graphID != "" && graph != graphID {
		return false, nil
	}
	if asJSON {
		return true, printJSONLine(w, msg)
	}
	_, err = fmt.Fprintf(w, "%s %s %s\n", ui.RenderMuted(graph), ui.RenderAccent(strings.TrimPrefix(msg.Topic, "hypergraph.")), line)
	return true, err
}

func printJSONLine(w io.Writer, msg events.Message) error {
	data, err := json.Marshal(struct {
		Topic string          `json:"topic"`
		Event json.RawMessage `json:"event"`
	}{msg.Topic, msg.Data})
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// describeEvent returns the graph id of a decoded event and a one-line summary.
func describeEvent(ev any) (string, string) {
	switch e := ev.(type) {
	case *events.NodeAdded:
		return e.Graph, fmt.Sprintf("%s %q type=%s", ui.RenderID(e.Node.ID), e.Node.Label, e.Node.Type)
	case *events.NodeUpdated:
		return e.Graph, fmt.Sprintf("%s %s", ui.RenderID(e.Node.ID), sortedKeys(e.Changes))
	case *events.NodeRemoved:
		if len(e.Edges) == 0 {
			return e.Graph, ui.RenderID(e.NodeID)
		}
		return e.Graph, fmt.Sprintf("%s edges=%s", ui.RenderID(e.NodeID), strings.Join(e.Edges, ","))
	case *events.EdgeAdded:
		return e.Graph, fmt.Sprintf("%s %s [%s] -> [%s]", ui.RenderID(e.Edge.ID), ui.RenderRelation(e.Edge.Relation),
			strings.Join(e.Edge.Source, ","), strings.Join(e.Edge.Target, ","))
	case *events.EdgeUpdated:
		return e.Graph, fmt.Sprintf("%s %s", ui.RenderID(e.Edge.ID), sortedKeys(e.Changes))
	case *events.EdgeRemoved:
		return e.Graph, ui.RenderID(e.EdgeID)
	case *events.TypeRegistered:
		return e.Graph, fmt.Sprintf("%s %s %s v%s", e.Kind, e.Tag, e.Name, e.Version)
	}
	return "", fmt.Sprintf("%T", ev)
}
