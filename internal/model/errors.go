package model

import (
	"errors"
	"fmt"
)

// Sentinel errors for programmatic error checking via errors.Is().
var (
	// ErrDuplicateID indicates an add with an id that is already taken.
	ErrDuplicateID = errors.New("duplicate id")

	// ErrUnknownNode indicates a reference to a node id that is not in the graph.
	ErrUnknownNode = errors.New("unknown node")

	// ErrUnknownEntity indicates a lookup miss where the caller expected existence.
	ErrUnknownEntity = errors.New("unknown entity")

	// ErrTypeMismatch indicates a metadata value whose type disagrees with its schema.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrInvalidTypeDescriptor indicates a descriptor registered for the wrong
	// entity kind or with a malformed schema.
	ErrInvalidTypeDescriptor = errors.New("invalid type descriptor")

	// ErrInvalidGraphReference indicates a bound reference created without a graph.
	ErrInvalidGraphReference = errors.New("invalid graph reference")
)

// DuplicateIDError reports an id collision in the node or edge map.
type DuplicateIDError struct {
	Kind EntityKind
	ID   string
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("%s: %s with id %q already exists", ErrDuplicateID, e.Kind, e.ID)
}

func (e *DuplicateIDError) Unwrap() error { return ErrDuplicateID }

// UnknownNodeError reports a node id that is not present in the graph.
type UnknownNodeError struct {
	ID string
}

func (e *UnknownNodeError) Error() string {
	return fmt.Sprintf("%s: node %q not found in graph", ErrUnknownNode, e.ID)
}

func (e *UnknownNodeError) Unwrap() error { return ErrUnknownNode }

// UnknownEntityError reports a missing node or edge on an operation that
// requires it to exist.
type UnknownEntityError struct {
	Kind EntityKind
	ID   string
}

func (e *UnknownEntityError) Error() string {
	return fmt.Sprintf("%s: %s %q not found", ErrUnknownEntity, e.Kind, e.ID)
}

func (e *UnknownEntityError) Unwrap() error { return ErrUnknownEntity }

// TypeMismatchError reports a metadata field whose runtime type disagrees
// with its schema declaration.
type TypeMismatchError struct {
	TypeName string // display name of the type config, if known
	Field    string
	Expected FieldType
	Got      string
}

func (e *TypeMismatchError) Error() string {
	if e.TypeName != "" {
		return fmt.Sprintf("%s: invalid type for %q in %s: expected %s, got %s", ErrTypeMismatch, e.Field, e.TypeName, e.Expected, e.Got)
	}
	return fmt.Sprintf("%s: invalid type for %q: expected %s, got %s", ErrTypeMismatch, e.Field, e.Expected, e.Got)
}

func (e *TypeMismatchError) Unwrap() error { return ErrTypeMismatch }

// DescriptorError reports a descriptor rejected at registration.
// Cause, when set, is usually a *ValidationError listing schema problems.
type DescriptorError struct {
	Kind   EntityKind // kind the descriptor was registered as
	Name   string
	Reason string
	Cause  error
}

func (e *DescriptorError) Error() string {
	msg := fmt.Sprintf("%s: %s descriptor %q", ErrInvalidTypeDescriptor, e.Kind, e.Name)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *DescriptorError) Unwrap() []error {
	if e.Cause != nil {
		return []error{ErrInvalidTypeDescriptor, e.Cause}
	}
	return []error{ErrInvalidTypeDescriptor}
}
