// Package replay rebuilds a graph from its snapshot document by re-running
// AddNode and AddEdge for every entry in document order.
package replay

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/alfredjeanlab/hypergraph/internal/hypergraph"
	"github.com/alfredjeanlab/hypergraph/internal/idgen"
	"github.com/alfredjeanlab/hypergraph/internal/model"
)

// Document is a decoded snapshot: the graph header plus node and edge inputs
// in the order they appear in the source.
type Document struct {
	ID       string
	Label    string
	Type     string
	Directed *bool
	Metadata model.Metadata
	Nodes    []hypergraph.NodeInput
	Edges    []hypergraph.EdgeInput
}

// Options control how a document is replayed.
type Options struct {
	// Setup runs on the empty graph before any entry is added, typically to
	// register node types and edge relations.
	Setup func(*hypergraph.Graph) error

	// GraphDescriptor configures the graph's own metadata. Nil means schema-less.
	GraphDescriptor *model.TypeDescriptor

	// IDGenerator is used for a graph document without an id.
	IDGenerator idgen.Generator
}

var (
	nodeFields = map[string]bool{"id": true, "type": true, "label": true, "metadata": true}
	edgeFields = map[string]bool{"id": true, "source": true, "target": true, "relation": true, "metadata": true, "nodes": true}
)

// Decode parses a snapshot document. Entries may omit id, in which case the
// object key is used. Root-level keys an entry does not define are folded
// into its metadata; a key present in both places takes the metadata value.
func Decode(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("replay: read: %w", err)
	}

	doc := &Document{}
	err = model.DecodeKeyed(data, func(key string, raw json.RawMessage) error {
		switch key {
		case "id":
			return json.Unmarshal(raw, &doc.ID)
		case "label":
			return json.Unmarshal(raw, &doc.Label)
		case "type":
			return json.Unmarshal(raw, &doc.Type)
		case "directed":
			return json.Unmarshal(raw, &doc.Directed)
		case "metadata":
			return json.Unmarshal(raw, &doc.Metadata)
		case "nodes":
			return model.DecodeKeyed(raw, func(id string, entry json.RawMessage) error {
				n, err := decodeNode(id, entry)
				if err != nil {
					return err
				}
				doc.Nodes = append(doc.Nodes, n)
				return nil
			})
		case "hyperedges":
			return model.DecodeKeyed(raw, func(id string, entry json.RawMessage) error {
				e, err := decodeEdge(id, entry)
				if err != nil {
					return err
				}
				doc.Edges = append(doc.Edges, e)
				return nil
			})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("replay: decode: %w", err)
	}
	return doc, nil
}

func decodeNode(key string, raw json.RawMessage) (hypergraph.NodeInput, error) {
	var in hypergraph.NodeInput
	if err := json.Unmarshal(raw, &in); err != nil {
		return in, fmt.Errorf("node %q: %w", key, err)
	}
	id, err := entryID(key, in.ID)
	if err != nil {
		return in, fmt.Errorf("node %q: %w", key, err)
	}
	in.ID = id
	if in.Metadata, err = foldMetadata(raw, nodeFields, in.Metadata); err != nil {
		return in, fmt.Errorf("node %q: %w", key, err)
	}
	return in, nil
}

func decodeEdge(key string, raw json.RawMessage) (hypergraph.EdgeInput, error) {
	var in hypergraph.EdgeInput
	if err := json.Unmarshal(raw, &in); err != nil {
		return in, fmt.Errorf("hyperedge %q: %w", key, err)
	}
	id, err := entryID(key, in.ID)
	if err != nil {
		return in, fmt.Errorf("hyperedge %q: %w", key, err)
	}
	in.ID = id
	if in.Metadata, err = foldMetadata(raw, edgeFields, in.Metadata); err != nil {
		return in, fmt.Errorf("hyperedge %q: %w", key, err)
	}
	return in, nil
}

func entryID(key, id string) (string, error) {
	if id == "" {
		return key, nil
	}
	if id != key {
		return "", fmt.Errorf("id %q does not match its key", id)
	}
	return id, nil
}

// foldMetadata moves unknown root-level keys into metadata under explicit.
func foldMetadata(raw json.RawMessage, known map[string]bool, explicit model.Metadata) (model.Metadata, error) {
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	var out model.Metadata
	for k, v := range fields {
		if known[k] {
			continue
		}
		if out == nil {
			out = make(model.Metadata, len(fields)+len(explicit))
		}
		out[k] = v
	}
	if out == nil {
		return explicit, nil
	}
	for k, v := range explicit {
		out[k] = v
	}
	return out, nil
}

// Build replays doc into a new graph. The first failing entry aborts the
// replay and its error names the entry.
func Build(doc *Document, opts Options) (*hypergraph.Graph, error) {
	g, err := hypergraph.New(hypergraph.Config{
		ID:          doc.ID,
		Label:       doc.Label,
		Type:        doc.Type,
		Directed:    doc.Directed,
		Metadata:    doc.Metadata,
		Descriptor:  opts.GraphDescriptor,
		IDGenerator: opts.IDGenerator,
	})
	if err != nil {
		return nil, err
	}
	if opts.Setup != nil {
		if err := opts.Setup(g); err != nil {
			return nil, err
		}
	}
	for _, n := range doc.Nodes {
		if _, err := g.AddNode(n); err != nil {
			return nil, fmt.Errorf("replay node %q: %w", n.ID, err)
		}
	}
	for _, e := range doc.Edges {
		if _, err := g.AddEdge(e); err != nil {
			return nil, fmt.Errorf("replay hyperedge %q: %w", e.ID, err)
		}
	}
	return g, nil
}

// Load decodes a document from r and replays it.
func Load(r io.Reader, opts Options) (*hypergraph.Graph, error) {
	doc, err := Decode(r)
	if err != nil {
		return nil, err
	}
	return Build(doc, opts)
}
