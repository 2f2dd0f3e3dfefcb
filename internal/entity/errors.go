package entity

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingAttributeIDs: a relation needs attribute ids and neither the
	// caller nor the related kind supplied them.
	ErrMissingAttributeIDs = errors.New("no attribute ids given and related kind does not implement AttributeIdentifier")

	// ErrUndeclaredAttributeType: the kind does not declare the requested
	// attribute type.
	ErrUndeclaredAttributeType = errors.New("attribute type not declared")
)

// ConfigError reports an entity definition that cannot back the requested
// relation. It is raised when the relation is built, before any query.
type ConfigError struct {
	Kind     string // Owning kind name
	Relation string // Factory or relation name
	Related  string // Related kind name, if any
	Err      error
}

func (e *ConfigError) Error() string {
	if e.Related != "" {
		return fmt.Sprintf("configuration error: %s.%s(%s): %v", e.Kind, e.Relation, e.Related, e.Err)
	}
	return fmt.Sprintf("configuration error: %s.%s: %v", e.Kind, e.Relation, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}
