package hypergraph

import (
	"github.com/alfredjeanlab/hypergraph/internal/model"
)

// The lookups below return the stored records. Callers must not modify them;
// metadata changes go through UpdateNodeMetadata and UpdateEdgeMetadata.

// HasNode reports whether id is a node of the graph.
func (g *Graph) HasNode(id string) bool { return g.nodes.has(id) }

// HasEdge reports whether id is an edge of the graph.
func (g *Graph) HasEdge(id string) bool { return g.edges.has(id) }

// Node returns the node stored under id.
func (g *Graph) Node(id string) (*model.Node, bool) { return g.nodes.get(id) }

// Edge returns the edge stored under id.
func (g *Graph) Edge(id string) (*model.Hyperedge, bool) { return g.edges.get(id) }

// Nodes returns every node in insertion order.
func (g *Graph) Nodes() []*model.Node { return g.nodes.values() }

// Edges returns every edge in insertion order.
func (g *Graph) Edges() []*model.Hyperedge { return g.edges.values() }

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return g.nodes.len() }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return g.edges.len() }

// IncomingEdges returns the edges whose target list contains nodeID.
func (g *Graph) IncomingEdges(nodeID string) ([]*model.Hyperedge, error) {
	return g.filterEdges(nodeID, (*model.Hyperedge).HasTarget)
}

// OutgoingEdges returns the edges whose source list contains nodeID.
func (g *Graph) OutgoingEdges(nodeID string) ([]*model.Hyperedge, error) {
	return g.filterEdges(nodeID, (*model.Hyperedge).HasSource)
}

// IncidentEdges returns the edges that contain nodeID on either side.
func (g *Graph) IncidentEdges(nodeID string) ([]*model.Hyperedge, error) {
	return g.filterEdges(nodeID, (*model.Hyperedge).Contains)
}

func (g *Graph) filterEdges(nodeID string, match func(*model.Hyperedge, string) bool) ([]*model.Hyperedge, error) {
	if !g.nodes.has(nodeID) {
		return nil, &model.UnknownNodeError{ID: nodeID}
	}
	var out []*model.Hyperedge
	for _, e := range g.edges.values() {
		if match(e, nodeID) {
			out = append(out, e)
		}
	}
	return out, nil
}

// Neighbors returns the distinct nodes reachable from nodeID over one edge in
// either direction: targets of edges it sources and sources of edges it
// targets. nodeID itself is never included. Order is first-seen.
func (g *Graph) Neighbors(nodeID string) ([]string, error) {
	if !g.nodes.has(nodeID) {
		return nil, &model.UnknownNodeError{ID: nodeID}
	}

	seen := map[string]bool{nodeID: true}
	var out []string
	add := func(ids []string) {
		for _, id := range ids {
			if !seen[id] {
				seen[id] = true
				out = append(out, id)
			}
		}
	}
	for _, e := range g.edges.values() {
		if e.HasSource(nodeID) {
			add(e.Target)
		}
		if e.HasTarget(nodeID) {
			add(e.Source)
		}
	}
	return out, nil
}

// Sources returns the source list of an edge.
func (g *Graph) Sources(edgeID string) ([]string, error) {
	e, ok := g.edges.get(edgeID)
	if !ok {
		return nil, &model.UnknownEntityError{Kind: model.KindEdge, ID: edgeID}
	}
	return e.Source, nil
}

// Targets returns the target list of an edge.
func (g *Graph) Targets(edgeID string) ([]string, error) {
	e, ok := g.edges.get(edgeID)
	if !ok {
		return nil, &model.UnknownEntityError{Kind: model.KindEdge, ID: edgeID}
	}
	return e.Target, nil
}
