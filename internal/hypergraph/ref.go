package hypergraph

import (
	"encoding/json"
	"fmt"

	"github.com/alfredjeanlab/hypergraph/internal/model"
)

// NodeRef is a node bound to the graph that holds it. The graph is an
// association used to resolve the node's current type config; the ref does
// not own it.
type NodeRef struct {
	graph *Graph
	id    string
}

// NewNodeRef binds id in g.
func NewNodeRef(g *Graph, id string) (*NodeRef, error) {
	if g == nil {
		return nil, fmt.Errorf("%w: node %q has no graph", model.ErrInvalidGraphReference, id)
	}
	if !g.HasNode(id) {
		return nil, &model.UnknownEntityError{Kind: model.KindNode, ID: id}
	}
	return &NodeRef{graph: g, id: id}, nil
}

// ID returns the bound node id.
func (r *NodeRef) ID() string { return r.id }

// Graph returns the graph the ref is bound to.
func (r *NodeRef) Graph() *Graph { return r.graph }

// Node returns the stored node, or false once it has been removed.
func (r *NodeRef) Node() (*model.Node, bool) { return r.graph.Node(r.id) }

// Config resolves the node's type config as currently registered.
func (r *NodeRef) Config() (*model.TypeConfig, error) {
	n, ok := r.Node()
	if !ok {
		return nil, &model.UnknownEntityError{Kind: model.KindNode, ID: r.id}
	}
	return r.graph.NodeConfig(n.Type), nil
}

// UpdateMetadata merges patch into the node's metadata.
func (r *NodeRef) UpdateMetadata(patch model.Metadata) error {
	return r.graph.UpdateNodeMetadata(r.id, patch)
}

// MarshalJSON encodes the node with its metadata re-sanitized in read mode.
func (r *NodeRef) MarshalJSON() ([]byte, error) {
	n, ok := r.Node()
	if !ok {
		return nil, &model.UnknownEntityError{Kind: model.KindNode, ID: r.id}
	}
	md, err := r.graph.NodeConfig(n.Type).Sanitize(n.Metadata, false)
	if err != nil {
		return nil, err
	}
	out := *n
	out.Metadata = md
	return json.Marshal(&out)
}

// EdgeRef is a hyperedge bound to the graph that holds it.
type EdgeRef struct {
	graph *Graph
	id    string
}

// NewEdgeRef binds id in g.
func NewEdgeRef(g *Graph, id string) (*EdgeRef, error) {
	if g == nil {
		return nil, fmt.Errorf("%w: edge %q has no graph", model.ErrInvalidGraphReference, id)
	}
	if !g.HasEdge(id) {
		return nil, &model.UnknownEntityError{Kind: model.KindEdge, ID: id}
	}
	return &EdgeRef{graph: g, id: id}, nil
}

// ID returns the bound edge id.
func (r *EdgeRef) ID() string { return r.id }

// Graph returns the graph the ref is bound to.
func (r *EdgeRef) Graph() *Graph { return r.graph }

// Edge returns the stored edge, or false once it has been removed.
func (r *EdgeRef) Edge() (*model.Hyperedge, bool) { return r.graph.Edge(r.id) }

// Config resolves the edge's relation config as currently registered.
func (r *EdgeRef) Config() (*model.TypeConfig, error) {
	e, ok := r.Edge()
	if !ok {
		return nil, &model.UnknownEntityError{Kind: model.KindEdge, ID: r.id}
	}
	return r.graph.EdgeConfig(e.Relation), nil
}

// UpdateMetadata merges patch into the edge's metadata.
func (r *EdgeRef) UpdateMetadata(patch model.Metadata) error {
	return r.graph.UpdateEdgeMetadata(r.id, patch)
}

// MarshalJSON encodes the edge with its metadata re-sanitized in read mode.
func (r *EdgeRef) MarshalJSON() ([]byte, error) {
	e, ok := r.Edge()
	if !ok {
		return nil, &model.UnknownEntityError{Kind: model.KindEdge, ID: r.id}
	}
	md, err := r.graph.EdgeConfig(e.Relation).Sanitize(e.Metadata, false)
	if err != nil {
		return nil, err
	}
	out := *e
	out.Metadata = md
	return json.Marshal(&out)
}
