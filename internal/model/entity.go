package model

import (
	"encoding/json"
	"fmt"
	"slices"
)

// Node is a stored hypergraph node.
type Node struct {
	ID       string   `json:"id"`
	Type     string   `json:"type"`
	Label    string   `json:"label"`
	Metadata Metadata `json:"metadata"`
}

// Hyperedge joins an ordered list of source nodes to an ordered list of
// target nodes. Nodes is Source followed by Target and is derived once at
// creation.
type Hyperedge struct {
	ID       string   `json:"id"`
	Relation string   `json:"relation"`
	Source   []string `json:"source"`
	Target   []string `json:"target"`
	Nodes    []string `json:"nodes"`
	Metadata Metadata `json:"metadata"`
}

// NewHyperedge builds an edge and derives its combined node list. Nil id
// lists are stored as empty lists.
func NewHyperedge(id, relation string, source, target []string, md Metadata) *Hyperedge {
	src := append([]string{}, source...)
	dst := append([]string{}, target...)
	nodes := make([]string, 0, len(src)+len(dst))
	nodes = append(nodes, src...)
	nodes = append(nodes, dst...)
	return &Hyperedge{
		ID:       id,
		Relation: relation,
		Source:   src,
		Target:   dst,
		Nodes:    nodes,
		Metadata: md,
	}
}

// Contains reports whether id appears anywhere in the edge.
func (e *Hyperedge) Contains(id string) bool {
	return slices.Contains(e.Nodes, id)
}

// HasSource reports whether id appears in the edge's source list.
func (e *Hyperedge) HasSource(id string) bool {
	return slices.Contains(e.Source, id)
}

// HasTarget reports whether id appears in the edge's target list.
func (e *Hyperedge) HasTarget(id string) bool {
	return slices.Contains(e.Target, id)
}

// IDList is a list of node ids that also decodes from a single scalar id.
type IDList []string

// UnmarshalJSON accepts null, a string, or an array of strings.
func (l *IDList) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch t := v.(type) {
	case nil:
		*l = nil
	case string:
		*l = IDList{t}
	case []any:
		out := make(IDList, 0, len(t))
		for i, elem := range t {
			s, ok := elem.(string)
			if !ok {
				return fmt.Errorf("id list element %d: expected string, got %s", i, describeType(elem))
			}
			out = append(out, s)
		}
		*l = out
	default:
		return fmt.Errorf("id list: expected string or array, got %s", describeType(v))
	}
	return nil
}

// Clone returns a copy of the node with its own metadata map.
func (n *Node) Clone() *Node {
	c := *n
	c.Metadata = n.Metadata.Clone()
	return &c
}

// Clone returns a copy of the edge with its own id lists and metadata map.
func (e *Hyperedge) Clone() *Hyperedge {
	c := *e
	c.Source = slices.Clone(e.Source)
	c.Target = slices.Clone(e.Target)
	c.Nodes = slices.Clone(e.Nodes)
	c.Metadata = e.Metadata.Clone()
	return &c
}
