package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Snapshot is the plain, JSON-shaped export of a graph. Nodes and Hyperedges
// are encoded as objects keyed by id, in insertion order.
type Snapshot struct {
	ID         string   `json:"id"`
	Label      string   `json:"label"`
	Type       string   `json:"type"`
	Directed   bool     `json:"directed"`
	Metadata   Metadata `json:"metadata"`
	Nodes      NodeSet  `json:"nodes"`
	Hyperedges EdgeSet  `json:"hyperedges"`
}

// NodeSet is an insertion-ordered list of nodes encoded as an id-keyed object.
type NodeSet []*Node

// MarshalJSON encodes the set as {"<id>": node, ...} keeping slice order.
func (s NodeSet) MarshalJSON() ([]byte, error) {
	return marshalKeyed(s, func(n *Node) string { return n.ID })
}

// UnmarshalJSON decodes an id-keyed object, keeping key order.
func (s *NodeSet) UnmarshalJSON(data []byte) error {
	var out NodeSet
	err := DecodeKeyed(data, func(key string, raw json.RawMessage) error {
		var n Node
		if err := json.Unmarshal(raw, &n); err != nil {
			return fmt.Errorf("node %q: %w", key, err)
		}
		out = append(out, &n)
		return nil
	})
	if err != nil {
		return err
	}
	*s = out
	return nil
}

// EdgeSet is an insertion-ordered list of hyperedges encoded as an id-keyed object.
type EdgeSet []*Hyperedge

// MarshalJSON encodes the set as {"<id>": edge, ...} keeping slice order.
func (s EdgeSet) MarshalJSON() ([]byte, error) {
	return marshalKeyed(s, func(e *Hyperedge) string { return e.ID })
}

// UnmarshalJSON decodes an id-keyed object, keeping key order.
func (s *EdgeSet) UnmarshalJSON(data []byte) error {
	var out EdgeSet
	err := DecodeKeyed(data, func(key string, raw json.RawMessage) error {
		var e Hyperedge
		if err := json.Unmarshal(raw, &e); err != nil {
			return fmt.Errorf("hyperedge %q: %w", key, err)
		}
		out = append(out, &e)
		return nil
	})
	if err != nil {
		return err
	}
	*s = out
	return nil
}

func marshalKeyed[T any](items []T, key func(T) string) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	for i, item := range items {
		if i > 0 {
			buf.WriteByte(',')
		}

		keyBytes, err := json.Marshal(key(item))
		if err != nil {
			return nil, err
		}
		buf.Write(keyBytes)
		buf.WriteByte(':')

		valBytes, err := json.Marshal(item)
		if err != nil {
			return nil, err
		}
		buf.Write(valBytes)
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// DecodeKeyed walks a JSON object and calls fn for each member in document
// order. A JSON null is treated as an empty object.
func DecodeKeyed(data []byte, fn func(key string, raw json.RawMessage) error) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("expected JSON object, got %v", tok)
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("expected object key, got %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("decoding %q: %w", key, err)
		}
		if err := fn(key, raw); err != nil {
			return err
		}
	}
	_, err = dec.Token()
	return err
}
