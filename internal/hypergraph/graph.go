// Package hypergraph implements an in-memory directed hypergraph whose node
// and edge metadata is validated against per-type schemas.
//
// A Graph is not safe for concurrent use. Every operation is a single
// synchronous step on the graph's maps, and RemoveNode's cascade is not
// atomic; callers that share a Graph across goroutines must lock around it.
package hypergraph

import (
	"encoding/json"
	"fmt"

	"github.com/alfredjeanlab/hypergraph/internal/idgen"
	"github.com/alfredjeanlab/hypergraph/internal/model"
	"github.com/alfredjeanlab/hypergraph/internal/registry"
)

// Config holds the construction options of a graph. Zero values select the
// defaults: a generated id, empty label and type, directed, empty metadata,
// the schema-less graph type and UUID ids.
type Config struct {
	ID          string
	Label       string
	Type        string
	Directed    *bool
	Metadata    model.Metadata
	Descriptor  *model.TypeDescriptor // graph-kind descriptor for the graph's own metadata
	IDGenerator idgen.Generator
}

// Graph is a directed hypergraph with its node-type and edge-relation registries.
type Graph struct {
	id       string
	label    string
	typ      string
	directed bool
	metadata model.Metadata
	config   *model.TypeConfig

	nodes *ordered[*model.Node]
	edges *ordered[*model.Hyperedge]

	nodeTypes     *registry.Registry
	edgeRelations *registry.Registry

	newID idgen.Generator
}

// New creates an empty graph.
func New(cfg Config) (*Graph, error) {
	g := &Graph{
		label:    cfg.Label,
		typ:      cfg.Type,
		directed: true,
		nodes:    newOrdered[*model.Node](),
		edges:    newOrdered[*model.Hyperedge](),
		newID:    cfg.IDGenerator,
	}
	if cfg.Directed != nil {
		g.directed = *cfg.Directed
	}
	if g.newID == nil {
		g.newID = idgen.UUID()
	}

	var err error
	if g.nodeTypes, err = registry.New(model.KindNode); err != nil {
		return nil, err
	}
	if g.edgeRelations, err = registry.New(model.KindEdge); err != nil {
		return nil, err
	}

	desc := model.DefaultDescriptor(model.KindGraph)
	if cfg.Descriptor != nil {
		desc = *cfg.Descriptor
	}
	if g.config, err = model.NewTypeConfig(model.KindGraph, desc); err != nil {
		return nil, err
	}
	if g.metadata, err = g.config.Sanitize(cfg.Metadata, false); err != nil {
		return nil, fmt.Errorf("graph metadata: %w", err)
	}

	g.id = cfg.ID
	if g.id == "" {
		if g.id, err = g.newID(); err != nil {
			return nil, fmt.Errorf("generate graph id: %w", err)
		}
	}
	return g, nil
}

// ID returns the graph id.
func (g *Graph) ID() string { return g.id }

// Label returns the graph label.
func (g *Graph) Label() string { return g.label }

// Type returns the graph type tag.
func (g *Graph) Type() string { return g.typ }

// Directed reports the informational directed flag. No query depends on it.
func (g *Graph) Directed() bool { return g.directed }

// Metadata returns a copy of the graph's own metadata.
func (g *Graph) Metadata() model.Metadata { return g.metadata.Clone() }

// Config returns the type config of the graph's own metadata.
func (g *Graph) Config() *model.TypeConfig { return g.config }

// RegisterNodeType registers desc for nodes whose type is tag, replacing any
// earlier registration. Existing nodes are not revalidated.
func (g *Graph) RegisterNodeType(tag string, desc model.TypeDescriptor) error {
	_, err := g.nodeTypes.Register(tag, desc)
	return err
}

// RegisterEdgeRelation registers desc for edges whose relation is tag,
// replacing any earlier registration. Existing edges are not revalidated.
func (g *Graph) RegisterEdgeRelation(tag string, desc model.TypeDescriptor) error {
	_, err := g.edgeRelations.Register(tag, desc)
	return err
}

// UnregisterNodeType removes a node type; nodes of that type fall back to the default.
func (g *Graph) UnregisterNodeType(tag string) bool {
	return g.nodeTypes.Unregister(tag)
}

// UnregisterEdgeRelation removes an edge relation; edges of that relation fall back to the default.
func (g *Graph) UnregisterEdgeRelation(tag string) bool {
	return g.edgeRelations.Unregister(tag)
}

// NodeConfig resolves the config for a node type tag, falling back to the default.
func (g *Graph) NodeConfig(tag string) *model.TypeConfig {
	return g.nodeTypes.Resolve(tag)
}

// EdgeConfig resolves the config for an edge relation tag, falling back to the default.
func (g *Graph) EdgeConfig(tag string) *model.TypeConfig {
	return g.edgeRelations.Resolve(tag)
}

// NodeTypes returns the registered node type tags, sorted.
func (g *Graph) NodeTypes() []string { return g.nodeTypes.Tags() }

// EdgeRelations returns the registered edge relation tags, sorted.
func (g *Graph) EdgeRelations() []string { return g.edgeRelations.Tags() }

// ToJSON exports the graph as a snapshot. Only the graph's own metadata is
// re-sanitized (read mode); nodes and edges are emitted as stored and are
// shared with the graph, so the snapshot must not be modified.
func (g *Graph) ToJSON() (*model.Snapshot, error) {
	md, err := g.config.Sanitize(g.metadata, false)
	if err != nil {
		return nil, fmt.Errorf("graph metadata: %w", err)
	}
	return &model.Snapshot{
		ID:         g.id,
		Label:      g.label,
		Type:       g.typ,
		Directed:   g.directed,
		Metadata:   md,
		Nodes:      g.nodes.values(),
		Hyperedges: g.edges.values(),
	}, nil
}

// MarshalJSON encodes the graph's snapshot.
func (g *Graph) MarshalJSON() ([]byte, error) {
	snap, err := g.ToJSON()
	if err != nil {
		return nil, err
	}
	return json.Marshal(snap)
}
