package compiler

import (
	"fmt"
	"regexp"

	"github.com/roach88/eav/internal/entity"
)

// Validation error codes (E200-E299)
const (
	ErrInvalidIdentifier   = "E201" // table or primary key is not a plain SQL identifier
	ErrDuplicateEntityType = "E202" // two kinds share one objectType discriminator
	ErrInvalidAttributeID  = "E203" // attribute id must be positive
	ErrNoAttributeTypes    = "E204" // kind declares no attribute types
)

// ValidationError represents a catalog validation error.
type ValidationError struct {
	Entity  string `json:"entity"`
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s.%s: %s", e.Code, e.Entity, e.Field, e.Message)
}

// IsWarning reports findings that do not prevent loading.
func (e ValidationError) IsWarning() bool {
	return e.Code == ErrNoAttributeTypes
}

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Validate checks a compiled catalog for definitions that compile but
// cannot load correctly. Returns all errors found (does not fail-fast).
//
// E204 is a warning: such a kind only loads through entity-to-entity
// relations.
func Validate(c *Catalog) []ValidationError {
	var errs []ValidationError
	owners := make(map[string]string)

	for _, k := range c.Kinds() {
		if !identPattern.MatchString(k.Table()) {
			errs = append(errs, ValidationError{
				Entity:  k.Name(),
				Field:   "table",
				Message: fmt.Sprintf("%q is not a valid identifier", k.Table()),
				Code:    ErrInvalidIdentifier,
			})
		}
		if !identPattern.MatchString(k.PrimaryKey()) {
			errs = append(errs, ValidationError{
				Entity:  k.Name(),
				Field:   "primary_key",
				Message: fmt.Sprintf("%q is not a valid identifier", k.PrimaryKey()),
				Code:    ErrInvalidIdentifier,
			})
		}

		// Connector rows are isolated only by objectType.
		if other, taken := owners[k.EntityType()]; taken {
			errs = append(errs, ValidationError{
				Entity:  k.Name(),
				Field:   "entity_type",
				Message: fmt.Sprintf("entity type %q is already used by %s", k.EntityType(), other),
				Code:    ErrDuplicateEntityType,
			})
		} else {
			owners[k.EntityType()] = k.Name()
		}

		if ai, ok := k.(entity.AttributeIdentifier); ok {
			for i, id := range ai.AttributeIDs() {
				if id <= 0 {
					errs = append(errs, ValidationError{
						Entity:  k.Name(),
						Field:   fmt.Sprintf("attribute_ids[%d]", i),
						Message: fmt.Sprintf("attribute id %d must be positive", id),
						Code:    ErrInvalidAttributeID,
					})
				}
			}
		}

		if len(k.AttributeTypes()) == 0 {
			errs = append(errs, ValidationError{
				Entity:  k.Name(),
				Field:   "attributes",
				Message: "no attribute types declared",
				Code:    ErrNoAttributeTypes,
			})
		}
	}

	return errs
}
