package model

// DefaultVersion is assigned to descriptors that do not declare a version.
const DefaultVersion = "1.0"

// TypeDescriptor declares a node type, edge relation or graph type: which kind
// of entity it configures, its display name and version, and the metadata
// schema with its strictness.
type TypeDescriptor struct {
	Kind    EntityKind `json:"kind" toml:"kind" yaml:"kind"`
	Name    string     `json:"name,omitempty" toml:"name" yaml:"name"`
	Version string     `json:"version,omitempty" toml:"version" yaml:"version"`
	Strict  bool       `json:"strict,omitempty" toml:"strict" yaml:"strict"`
	Schema  Schema     `json:"fields,omitempty" toml:"fields" yaml:"fields"`
}

// NodeDescriptor returns an empty descriptor for a node type.
func NodeDescriptor(name string) TypeDescriptor {
	return TypeDescriptor{Kind: KindNode, Name: name}
}

// EdgeDescriptor returns an empty descriptor for an edge relation.
func EdgeDescriptor(name string) TypeDescriptor {
	return TypeDescriptor{Kind: KindEdge, Name: name}
}

// GraphDescriptor returns an empty descriptor for a graph type.
func GraphDescriptor(name string) TypeDescriptor {
	return TypeDescriptor{Kind: KindGraph, Name: name}
}

// DefaultDescriptor returns the schema-less fallback descriptor installed under
// the empty tag of every registry.
func DefaultDescriptor(kind EntityKind) TypeDescriptor {
	return TypeDescriptor{
		Kind:    kind,
		Name:    kind.DefaultTypeName(),
		Version: "0.0",
	}
}

// WithVersion returns a copy of d with the given version.
func (d TypeDescriptor) WithVersion(v string) TypeDescriptor {
	d.Version = v
	return d
}

// WithStrict returns a copy of d with the given strictness.
func (d TypeDescriptor) WithStrict(strict bool) TypeDescriptor {
	d.Strict = strict
	return d
}

// WithField returns a copy of d with one more schema field appended.
func (d TypeDescriptor) WithField(name string, t FieldType, def any) TypeDescriptor {
	s := make(Schema, len(d.Schema), len(d.Schema)+1)
	copy(s, d.Schema)
	d.Schema = append(s, FieldSpec{Name: name, Type: t, Default: def})
	return d
}
