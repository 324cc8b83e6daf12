package model

// Sanitize validates raw against schema and returns the normalized record.
//
// Every schema field is visited in declaration order: a present value is
// type checked and copied, an absent one takes the schema default. Keys not in
// the schema are copied unless strict and typeCheckOnly are both set, so
// non-strict schemas always keep extras and strict schemas keep them only on a
// validate-only pass (typeCheckOnly false).
//
// A mismatch aborts the whole call with a *TypeMismatchError; no partial
// result is returned. A nil raw record is treated as empty.
func Sanitize(schema Schema, strict bool, raw Metadata, typeCheckOnly bool) (Metadata, error) {
	return sanitize("", schema, strict, raw, typeCheckOnly)
}

func sanitize(typeName string, schema Schema, strict bool, raw Metadata, typeCheckOnly bool) (Metadata, error) {
	result := make(Metadata, len(schema)+len(raw))

	for _, f := range schema {
		val, present := raw[f.Name]
		if !present {
			result[f.Name] = cloneDefault(f.Default)
			continue
		}
		if !matchesType(f.Type, val) {
			return nil, &TypeMismatchError{
				TypeName: typeName,
				Field:    f.Name,
				Expected: f.Type,
				Got:      describeType(val),
			}
		}
		result[f.Name] = val
	}

	if !strict || !typeCheckOnly {
		for key, val := range raw {
			if !schema.Has(key) {
				result[key] = val
			}
		}
	}

	return result, nil
}

// matchesType checks array-ness for FieldArray and primitive type equality
// for every other name.
func matchesType(t FieldType, val any) bool {
	if t == FieldArray {
		return isArray(val)
	}
	return primitiveType(val) == string(t)
}
