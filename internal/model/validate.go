package model

import (
	"fmt"
	"strings"
)

// ValidationError holds a list of field-level validation errors.
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single validation failure on a named field.
type FieldError struct {
	Field   string
	Message string
}

// Error formats the validation error as a semicolon-separated list of field messages.
func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		parts[i] = fe.Field + ": " + fe.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// HasErrors reports whether the validation error contains any field errors.
func (e *ValidationError) HasErrors() bool {
	return len(e.Errors) > 0
}

func (e *ValidationError) add(field, msg string) {
	e.Errors = append(e.Errors, FieldError{Field: field, Message: msg})
}

// ValidateSchema checks a schema for structural problems: every field needs a
// non-empty unique name and a type. Type names themselves are not restricted.
func ValidateSchema(s Schema) error {
	var ve ValidationError
	seen := make(map[string]bool, len(s))
	for i, f := range s {
		switch {
		case strings.TrimSpace(f.Name) == "":
			ve.add(fmt.Sprintf("fields[%d].name", i), "is required")
			continue
		case seen[f.Name]:
			ve.add(f.Name, "is declared more than once")
		}
		seen[f.Name] = true
		if strings.TrimSpace(string(f.Type)) == "" {
			ve.add(f.Name, "type is required")
		}
	}
	if ve.HasErrors() {
		return &ve
	}
	return nil
}
