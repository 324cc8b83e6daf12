// Package events defines the notifications emitted after graph mutations and
// the publishers and subscribers that carry them over NATS.
package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/alfredjeanlab/hypergraph/internal/model"
)

// Event topic constants
const (
	TopicNodeAdded   = "hypergraph.node.added"
	TopicNodeUpdated = "hypergraph.node.updated"
	TopicNodeRemoved = "hypergraph.node.removed"

	TopicEdgeAdded   = "hypergraph.edge.added"
	TopicEdgeUpdated = "hypergraph.edge.updated"
	TopicEdgeRemoved = "hypergraph.edge.removed"

	TopicTypeRegistered = "hypergraph.type.registered"

	// TopicAll matches every hypergraph topic.
	TopicAll = "hypergraph.>"
)

// Event types. Graph is the id of the graph the event happened in.

type NodeAdded struct {
	Graph string      `json:"graph"`
	Node  *model.Node `json:"node"`
}

type NodeUpdated struct {
	Graph   string         `json:"graph"`
	Node    *model.Node    `json:"node"`
	Changes model.Metadata `json:"changes"` // the merged patch
}

type NodeRemoved struct {
	Graph  string   `json:"graph"`
	NodeID string   `json:"node_id"`
	Edges  []string `json:"edges,omitempty"` // ids of edges removed by the cascade
}

type EdgeAdded struct {
	Graph string           `json:"graph"`
	Edge  *model.Hyperedge `json:"edge"`
}

type EdgeUpdated struct {
	Graph   string           `json:"graph"`
	Edge    *model.Hyperedge `json:"edge"`
	Changes model.Metadata   `json:"changes"`
}

type EdgeRemoved struct {
	Graph  string `json:"graph"`
	EdgeID string `json:"edge_id"`
}

type TypeRegistered struct {
	Graph   string           `json:"graph"`
	Kind    model.EntityKind `json:"kind"`
	Tag     string           `json:"tag"`
	Name    string           `json:"name"`
	Version string           `json:"version"`
}

// Decode unmarshals a payload into the event type of its topic.
func Decode(topic string, data []byte) (any, error) {
	var event any
	switch topic {
	case TopicNodeAdded:
		event = &NodeAdded{}
	case TopicNodeUpdated:
		event = &NodeUpdated{}
	case TopicNodeRemoved:
		event = &NodeRemoved{}
	case TopicEdgeAdded:
		event = &EdgeAdded{}
	case TopicEdgeUpdated:
		event = &EdgeUpdated{}
	case TopicEdgeRemoved:
		event = &EdgeRemoved{}
	case TopicTypeRegistered:
		event = &TypeRegistered{}
	default:
		return nil, fmt.Errorf("unknown event topic %q", topic)
	}
	if err := json.Unmarshal(data, event); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", topic, err)
	}
	return event, nil
}

// graphOf returns the graph id carried by an event, or "" for foreign values.
func graphOf(event any) string {
	switch e := event.(type) {
	case NodeAdded:
		return e.Graph
	case NodeUpdated:
		return e.Graph
	case NodeRemoved:
		return e.Graph
	case EdgeAdded:
		return e.Graph
	case EdgeUpdated:
		return e.Graph
	case EdgeRemoved:
		return e.Graph
	case TypeRegistered:
		return e.Graph
	}
	return ""
}

// Publisher is the interface for emitting events.
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
	Close() error
}

// Message is one event received by a Subscriber. Graph is empty when the
// publisher did not set the graph header.
type Message struct {
	Topic string
	Graph string
	Data  []byte
}

// Subscriber receives events from the event bus.
type Subscriber interface {
	// Subscribe delivers messages on the returned channel.
	// Call the returned cancel function to unsubscribe and close the channel.
	Subscribe(topic string) (<-chan Message, func(), error)
	Close() error
}
