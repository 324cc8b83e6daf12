package model

// EntityKind identifies which class of entity a type descriptor configures.
type EntityKind string

const (
	KindGraph EntityKind = "graph"
	KindNode  EntityKind = "node"
	KindEdge  EntityKind = "edge"
)

// String returns the string representation of the kind.
func (k EntityKind) String() string {
	return string(k)
}

// IsValid checks whether the kind is a known value.
func (k EntityKind) IsValid() bool {
	switch k {
	case KindGraph, KindNode, KindEdge:
		return true
	}
	return false
}

// DefaultTypeName returns the display name of the built-in fallback type for
// the kind. It is empty for unknown kinds.
func (k EntityKind) DefaultTypeName() string {
	switch k {
	case KindGraph:
		return "Graph"
	case KindNode:
		return "Node"
	case KindEdge:
		return "Hyperedge"
	}
	return ""
}
