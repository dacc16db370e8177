package spec

import (
	"fmt"
)

// ErrUnknownType indicates an attribute declaring a data type not known
// by the registry.
type ErrUnknownType DataType

func (err ErrUnknownType) Error() string {
	return fmt.Sprintf("unknown data type 0x%X", byte(err))
}

// ErrCardinality indicates an attribute declared with an illegal
// cardinality.
type ErrCardinality struct {
	// Attr is the name of the attribute.
	Attr string
	// Size is the declared cardinality.
	Size int
}

func (err ErrCardinality) Error() string {
	return fmt.Sprintf("attribute %q: invalid cardinality %d", err.Attr, err.Size)
}

// ErrConfig indicates a format specification constructed with an
// illegal configuration value. Construction fails atomically; no
// default is applied in its place.
type ErrConfig struct {
	// Field is the name of the offending configuration field.
	Field string
	// Value describes the illegal value.
	Value string
}

func (err ErrConfig) Error() string {
	return fmt.Sprintf("invalid %s %q", err.Field, err.Value)
}
