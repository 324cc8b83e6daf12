// Package service wraps a hypergraph with the locking, logging and event
// publication the bare store leaves to its callers.
package service

import (
	"context"
	"log/slog"
	"sync"

	"github.com/alfredjeanlab/hypergraph/internal/events"
	"github.com/alfredjeanlab/hypergraph/internal/hypergraph"
	"github.com/alfredjeanlab/hypergraph/internal/model"
)

// Service serializes access to one graph. Mutations take an exclusive lock
// for their whole duration, so RemoveNode's cascade is never observed half
// done. Returned records are copies.
type Service struct {
	mu        sync.RWMutex
	graph     *hypergraph.Graph
	publisher events.Publisher
	logger    *slog.Logger
}

// New returns a service for g. A nil publisher disables events and a nil
// logger uses slog.Default.
func New(g *hypergraph.Graph, publisher events.Publisher, logger *slog.Logger) *Service {
	if publisher == nil {
		publisher = &events.NoopPublisher{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		graph:     g,
		publisher: publisher,
		logger:    logger.With("graph", g.ID()),
	}
}

// GraphID returns the id of the wrapped graph.
func (s *Service) GraphID() string { return s.graph.ID() }

// publish emits an event. It is best-effort; failures are logged but do not
// fail the mutation that caused them.
func (s *Service) publish(ctx context.Context, topic string, event any) {
	if err := s.publisher.Publish(ctx, topic, event); err != nil {
		s.logger.Warn("failed to publish event", "topic", topic, "error", err)
	}
}

// AddNode adds a node and publishes node.added.
func (s *Service) AddNode(ctx context.Context, in hypergraph.NodeInput) (string, error) {
	s.mu.Lock()
	id, err := s.graph.AddNode(in)
	var node *model.Node
	if err == nil {
		n, _ := s.graph.Node(id)
		node = n.Clone()
	}
	s.mu.Unlock()
	if err != nil {
		return "", err
	}

	s.logger.Debug("node added", "node", id, "type", node.Type)
	s.publish(ctx, events.TopicNodeAdded, events.NodeAdded{Graph: s.graph.ID(), Node: node})
	return id, nil
}

// AddEdge adds a hyperedge and publishes edge.added.
func (s *Service) AddEdge(ctx context.Context, in hypergraph.EdgeInput) (string, error) {
	s.mu.Lock()
	id, err := s.graph.AddEdge(in)
	var edge *model.Hyperedge
	if err == nil {
		e, _ := s.graph.Edge(id)
		edge = e.Clone()
	}
	s.mu.Unlock()
	if err != nil {
		return "", err
	}

	s.logger.Debug("edge added", "edge", id, "relation", edge.Relation, "nodes", len(edge.Nodes))
	s.publish(ctx, events.TopicEdgeAdded, events.EdgeAdded{Graph: s.graph.ID(), Edge: edge})
	return id, nil
}

// RemoveNode removes a node with its incident edges and publishes one
// node.removed event listing the removed edges.
func (s *Service) RemoveNode(ctx context.Context, id string) bool {
	s.mu.Lock()
	var cascaded []string
	if incident, err := s.graph.IncidentEdges(id); err == nil {
		for _, e := range incident {
			cascaded = append(cascaded, e.ID)
		}
	}
	removed := s.graph.RemoveNode(id)
	s.mu.Unlock()
	if !removed {
		return false
	}

	s.logger.Debug("node removed", "node", id, "cascaded_edges", len(cascaded))
	s.publish(ctx, events.TopicNodeRemoved, events.NodeRemoved{Graph: s.graph.ID(), NodeID: id, Edges: cascaded})
	return true
}

// RemoveEdge removes an edge and publishes edge.removed.
func (s *Service) RemoveEdge(ctx context.Context, id string) bool {
	s.mu.Lock()
	removed := s.graph.RemoveEdge(id)
	s.mu.Unlock()
	if !removed {
		return false
	}

	s.logger.Debug("edge removed", "edge", id)
	s.publish(ctx, events.TopicEdgeRemoved, events.EdgeRemoved{Graph: s.graph.ID(), EdgeID: id})
	return true
}

// UpdateNodeMetadata merges patch into a node's metadata and publishes node.updated.
func (s *Service) UpdateNodeMetadata(ctx context.Context, id string, patch model.Metadata) error {
	s.mu.Lock()
	err := s.graph.UpdateNodeMetadata(id, patch)
	var node *model.Node
	if err == nil {
		n, _ := s.graph.Node(id)
		node = n.Clone()
	}
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.logger.Debug("node updated", "node", id, "fields", len(patch))
	s.publish(ctx, events.TopicNodeUpdated, events.NodeUpdated{Graph: s.graph.ID(), Node: node, Changes: patch.Clone()})
	return nil
}

// UpdateEdgeMetadata merges patch into an edge's metadata and publishes edge.updated.
func (s *Service) UpdateEdgeMetadata(ctx context.Context, id string, patch model.Metadata) error {
	s.mu.Lock()
	err := s.graph.UpdateEdgeMetadata(id, patch)
	var edge *model.Hyperedge
	if err == nil {
		e, _ := s.graph.Edge(id)
		edge = e.Clone()
	}
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.logger.Debug("edge updated", "edge", id, "fields", len(patch))
	s.publish(ctx, events.TopicEdgeUpdated, events.EdgeUpdated{Graph: s.graph.ID(), Edge: edge, Changes: patch.Clone()})
	return nil
}

// RegisterNodeType registers a node type and publishes type.registered.
func (s *Service) RegisterNodeType(ctx context.Context, tag string, desc model.TypeDescriptor) error {
	return s.register(ctx, model.KindNode, tag, desc)
}

// RegisterEdgeRelation registers an edge relation and publishes type.registered.
func (s *Service) RegisterEdgeRelation(ctx context.Context, tag string, desc model.TypeDescriptor) error {
	return s.register(ctx, model.KindEdge, tag, desc)
}

func (s *Service) register(ctx context.Context, kind model.EntityKind, tag string, desc model.TypeDescriptor) error {
	s.mu.Lock()
	var (
		err error
		tc  *model.TypeConfig
	)
	if kind == model.KindNode {
		if err = s.graph.RegisterNodeType(tag, desc); err == nil {
			tc = s.graph.NodeConfig(tag)
		}
	} else {
		if err = s.graph.RegisterEdgeRelation(tag, desc); err == nil {
			tc = s.graph.EdgeConfig(tag)
		}
	}
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.logger.Debug("type registered", "kind", kind, "tag", tag, "name", tc.TypeName(), "version", tc.Version())
	s.publish(ctx, events.TopicTypeRegistered, events.TypeRegistered{
		Graph:   s.graph.ID(),
		Kind:    kind,
		Tag:     tag,
		Name:    tc.TypeName(),
		Version: tc.Version(),
	})
	return nil
}

// Node returns a copy of the node stored under id.
func (s *Service) Node(id string) (*model.Node, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.graph.Node(id)
	if !ok {
		return nil, false
	}
	return n.Clone(), true
}

// Edge returns a copy of the edge stored under id.
func (s *Service) Edge(id string) (*model.Hyperedge, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.graph.Edge(id)
	if !ok {
		return nil, false
	}
	return e.Clone(), true
}

// Nodes returns copies of every node in insertion order.
func (s *Service) Nodes() []*model.Node {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneNodes(s.graph.Nodes())
}

// Edges returns copies of every edge in insertion order.
func (s *Service) Edges() []*model.Hyperedge {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneEdges(s.graph.Edges())
}

// Counts returns the number of nodes and edges.
func (s *Service) Counts() (nodes, edges int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.graph.NodeCount(), s.graph.EdgeCount()
}

// IncomingEdges returns copies of the edges targeting nodeID.
func (s *Service) IncomingEdges(nodeID string) ([]*model.Hyperedge, error) {
	return s.edgeQuery(nodeID, s.graph.IncomingEdges)
}

// OutgoingEdges returns copies of the edges sourced at nodeID.
func (s *Service) OutgoingEdges(nodeID string) ([]*model.Hyperedge, error) {
	return s.edgeQuery(nodeID, s.graph.OutgoingEdges)
}

// IncidentEdges returns copies of the edges containing nodeID.
func (s *Service) IncidentEdges(nodeID string) ([]*model.Hyperedge, error) {
	return s.edgeQuery(nodeID, s.graph.IncidentEdges)
}

func (s *Service) edgeQuery(nodeID string, query func(string) ([]*model.Hyperedge, error)) ([]*model.Hyperedge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	edges, err := query(nodeID)
	if err != nil {
		return nil, err
	}
	return cloneEdges(edges), nil
}

// Neighbors returns the one-hop neighbors of nodeID.
func (s *Service) Neighbors(nodeID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.graph.Neighbors(nodeID)
}

// Snapshot exports the graph. The snapshot is a deep copy and stays valid
// after further mutations.
func (s *Service) Snapshot(ctx context.Context) (*model.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, err := s.graph.ToJSON()
	if err != nil {
		return nil, err
	}
	snap.Nodes = cloneNodes(snap.Nodes)
	snap.Hyperedges = cloneEdges(snap.Hyperedges)
	return snap, nil
}

// View runs fn with shared access to the graph. fn must not mutate it.
func (s *Service) View(fn func(g *hypergraph.Graph) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.graph)
}

func cloneNodes(in []*model.Node) []*model.Node {
	out := make([]*model.Node, len(in))
	for i, n := range in {
		out[i] = n.Clone()
	}
	return out
}

func cloneEdges(in []*model.Hyperedge) []*model.Hyperedge {
	out := make([]*model.Hyperedge, len(in))
	for i, e := range in {
		out[i] = e.Clone()
	}
	return out
}
