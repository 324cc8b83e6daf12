package hypergraph

import (
	"fmt"

	"github.com/alfredjeanlab/hypergraph/internal/model"
)

// NodeInput holds the caller-supplied fields of a new node. An empty ID is
// generated; an empty Type selects the default node type.
type NodeInput struct {
	ID       string         `json:"id,omitempty"`
	Type     string         `json:"type,omitempty"`
	Label    string         `json:"label,omitempty"`
	Metadata model.Metadata `json:"metadata,omitempty"`
}

// EdgeInput holds the caller-supplied fields of a new hyperedge. An empty ID
// is generated; an empty Relation selects the default relation. Source and
// Target keep their order and duplicates.
type EdgeInput struct {
	ID       string         `json:"id,omitempty"`
	Source   model.IDList   `json:"source,omitempty"`
	Target   model.IDList   `json:"target,omitempty"`
	Relation string         `json:"relation,omitempty"`
	Metadata model.Metadata `json:"metadata,omitempty"`
}

// AddNode validates and stores a node and returns its id. The graph is
// unchanged on error.
func (g *Graph) AddNode(in NodeInput) (string, error) {
	id, err := g.resolveID(in.ID)
	if err != nil {
		return "", err
	}
	if g.nodes.has(id) {
		return "", &model.DuplicateIDError{Kind: model.KindNode, ID: id}
	}

	md, err := g.nodeTypes.Resolve(in.Type).Sanitize(in.Metadata, true)
	if err != nil {
		return "", err
	}

	g.nodes.set(id, &model.Node{
		ID:       id,
		Type:     in.Type,
		Label:    in.Label,
		Metadata: md,
	})
	return id, nil
}

// AddEdge validates and stores a hyperedge and returns its id. Every source
// and target id must already be a node. The graph is unchanged on error.
func (g *Graph) AddEdge(in EdgeInput) (string, error) {
	id, err := g.resolveID(in.ID)
	if err != nil {
		return "", err
	}
	if g.edges.has(id) {
		return "", &model.DuplicateIDError{Kind: model.KindEdge, ID: id}
	}

	for _, list := range [][]string{in.Source, in.Target} {
		for _, nodeID := range list {
			if !g.nodes.has(nodeID) {
				return "", &model.UnknownNodeError{ID: nodeID}
			}
		}
	}

	md, err := g.edgeRelations.Resolve(in.Relation).Sanitize(in.Metadata, true)
	if err != nil {
		return "", err
	}

	g.edges.set(id, model.NewHyperedge(id, in.Relation, in.Source, in.Target, md))
	return id, nil
}

// RemoveNode deletes a node and every edge incident to it. It reports false
// if the node does not exist.
func (g *Graph) RemoveNode(id string) bool {
	if !g.nodes.delete(id) {
		return false
	}
	for _, e := range g.edges.values() {
		if e.Contains(id) {
			g.edges.delete(e.ID)
		}
	}
	return true
}

// RemoveEdge deletes an edge. Nodes are never touched.
func (g *Graph) RemoveEdge(id string) bool {
	return g.edges.delete(id)
}

// UpdateNodeMetadata merges patch over a node's metadata and re-sanitizes the
// result through the node's type. The node is unchanged on error.
func (g *Graph) UpdateNodeMetadata(id string, patch model.Metadata) error {
	n, ok := g.nodes.get(id)
	if !ok {
		return &model.UnknownEntityError{Kind: model.KindNode, ID: id}
	}
	md, err := g.nodeTypes.Resolve(n.Type).Sanitize(n.Metadata.Merge(patch), true)
	if err != nil {
		return err
	}
	n.Metadata = md
	return nil
}

// UpdateEdgeMetadata merges patch over an edge's metadata and re-sanitizes the
// result through the edge's relation. The edge is unchanged on error.
func (g *Graph) UpdateEdgeMetadata(id string, patch model.Metadata) error {
	e, ok := g.edges.get(id)
	if !ok {
		return &model.UnknownEntityError{Kind: model.KindEdge, ID: id}
	}
	md, err := g.edgeRelations.Resolve(e.Relation).Sanitize(e.Metadata.Merge(patch), true)
	if err != nil {
		return err
	}
	e.Metadata = md
	return nil
}

func (g *Graph) resolveID(id string) (string, error) {
	if id != "" {
		return id, nil
	}
	id, err := g.newID()
	if err != nil {
		return "", fmt.Errorf("generate id: %w", err)
	}
	return id, nil
}
