package model

// FieldType names the expected runtime type of a metadata field.
// Well-known constants are provided below. Any other name is accepted and
// compared against the value's primitive type name, so a present value never
// satisfies a name that no primitive type carries.
type FieldType string

const (
	FieldString  FieldType = "string"
	FieldNumber  FieldType = "number"
	FieldBoolean FieldType = "boolean"
	FieldArray   FieldType = "array"
	FieldObject  FieldType = "object"
)

// String returns the string representation of the field type.
func (t FieldType) String() string {
	return string(t)
}

// IsWellKnown reports whether t is one of the predefined field types.
func (t FieldType) IsWellKnown() bool {
	switch t {
	case FieldString, FieldNumber, FieldBoolean, FieldArray, FieldObject:
		return true
	}
	return false
}

// FieldSpec describes a single metadata field of a node type or edge relation.
type FieldSpec struct {
	Name    string    `json:"name" toml:"name" yaml:"name"`
	Type    FieldType `json:"type" toml:"type" yaml:"type"`
	Default any       `json:"default,omitempty" toml:"default" yaml:"default"`
}

// Schema is an ordered list of field specs. Declaration order is the order in
// which Sanitize visits fields.
type Schema []FieldSpec

// Has reports whether the schema declares a field with the given name.
func (s Schema) Has(name string) bool {
	_, ok := s.Field(name)
	return ok
}

// Field returns the field declared as name.
func (s Schema) Field(name string) (FieldSpec, bool) {
	for _, f := range s {
		if f.Name == name {
			return f, true
		}
	}
	return FieldSpec{}, false
}

// Names returns the declared field names in declaration order.
func (s Schema) Names() []string {
	names := make([]string, len(s))
	for i, f := range s {
		names[i] = f.Name
	}
	return names
}

func (s Schema) clone() Schema {
	if s == nil {
		return Schema{}
	}
	out := make(Schema, len(s))
	copy(out, s)
	return out
}
