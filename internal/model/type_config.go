package model

import "fmt"

// capabilities holds the per-kind identity guard: a descriptor may configure
// a kind only if that kind's check accepts it.
var capabilities = map[EntityKind]func(TypeDescriptor) bool{
	KindGraph: func(d TypeDescriptor) bool { return d.Kind == KindGraph },
	KindNode:  func(d TypeDescriptor) bool { return d.Kind == KindNode },
	KindEdge:  func(d TypeDescriptor) bool { return d.Kind == KindEdge },
}

// TypeConfig is the validated, immutable form of one registered descriptor.
type TypeConfig struct {
	kind     EntityKind
	version  string
	schema   Schema
	strict   bool
	typeName string
}

// NewTypeConfig validates desc for the given kind and builds its config.
// It returns a *DescriptorError when the descriptor is for another kind or
// its schema is malformed.
func NewTypeConfig(kind EntityKind, desc TypeDescriptor) (*TypeConfig, error) {
	check, ok := capabilities[kind]
	if !ok {
		return nil, &DescriptorError{Kind: kind, Name: desc.Name, Reason: "unknown entity kind"}
	}
	if !check(desc) {
		return nil, &DescriptorError{
			Kind:   kind,
			Name:   desc.Name,
			Reason: fmt.Sprintf("descriptor of kind %q cannot configure a %s", desc.Kind, kind),
		}
	}
	if err := ValidateSchema(desc.Schema); err != nil {
		return nil, &DescriptorError{Kind: kind, Name: desc.Name, Cause: err}
	}

	tc := &TypeConfig{
		kind:     kind,
		version:  desc.Version,
		schema:   desc.Schema.clone(),
		strict:   desc.Strict,
		typeName: desc.Name,
	}
	if tc.version == "" {
		tc.version = DefaultVersion
	}
	if tc.typeName == "" {
		tc.typeName = kind.DefaultTypeName()
	}
	return tc, nil
}

// Sanitize runs the metadata sanitizer with this config's schema and strictness.
func (c *TypeConfig) Sanitize(raw Metadata, typeCheckOnly bool) (Metadata, error) {
	return sanitize(c.typeName, c.schema, c.strict, raw, typeCheckOnly)
}

// Kind returns the entity kind the config validates.
func (c *TypeConfig) Kind() EntityKind { return c.kind }

// Version returns the descriptor version.
func (c *TypeConfig) Version() string { return c.version }

// Schema returns a copy of the schema.
func (c *TypeConfig) Schema() Schema { return c.schema.clone() }

// Strict reports whether unknown fields are dropped at write time.
func (c *TypeConfig) Strict() bool { return c.strict }

// TypeName returns the display name of the configured type.
func (c *TypeConfig) TypeName() string { return c.typeName }

// Descriptor reconstructs a descriptor equivalent to the one the config was built from.
func (c *TypeConfig) Descriptor() TypeDescriptor {
	return TypeDescriptor{
		Kind:    c.kind,
		Name:    c.typeName,
		Version: c.version,
		Strict:  c.strict,
		Schema:  c.schema.clone(),
	}
}
