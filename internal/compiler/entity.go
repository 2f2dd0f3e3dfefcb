package compiler

import (
	"fmt"
	"slices"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/eav/internal/entity"
	"github.com/roach88/eav/internal/relation"
)

// knownFields are the fields an entity definition may carry.
var knownFields = []string{"table", "primary_key", "entity_type", "attributes", "attribute_ids"}

// CompileEntity parses one entity definition into a Kind.
//
// The CUE value should be the entity struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`entity: Product: { table: "products", attributes: ["string"] }`)
//	kind, err := CompileEntity(v.LookupPath(cue.ParsePath("entity.Product")), relation.DefaultRegistry())
//
// The result is an *entity.IdentifiedDescriptor when attribute_ids is
// present and an *entity.Descriptor otherwise. Attribute types are kept in
// registry order whatever order the definition lists them in.
func CompileEntity(v cue.Value, reg *relation.Registry) (entity.Kind, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	var name string
	if sels := v.Path().Selectors(); len(sels) > 0 {
		name = sels[len(sels)-1].String()
	}

	if err := checkFields(v); err != nil {
		return nil, err
	}

	table, err := requiredString(v, "table")
	if err != nil {
		return nil, err
	}

	var opts []entity.DescriptorOption
	if pk, ok, err := optionalString(v, "primary_key"); err != nil {
		return nil, err
	} else if ok {
		opts = append(opts, entity.WithPrimaryKey(pk))
	}
	if et, ok, err := optionalString(v, "entity_type"); err != nil {
		return nil, err
	} else if ok {
		opts = append(opts, entity.WithEntityType(et))
	}

	types, err := parseAttributeTypes(v, reg)
	if err != nil {
		return nil, err
	}
	opts = append(opts, entity.WithAttributeTypes(types...))

	d := entity.NewDescriptor(name, table, opts...)

	idsVal := v.LookupPath(cue.ParsePath("attribute_ids"))
	if !idsVal.Exists() {
		return d, nil
	}
	ids, err := parseAttributeIDs(idsVal)
	if err != nil {
		return nil, err
	}
	return entity.NewIdentifiedDescriptor(d, ids...), nil
}

func checkFields(v cue.Value) error {
	iter, err := v.Fields(cue.Optional(true))
	if err != nil {
		return formatCUEError(err)
	}
	for iter.Next() {
		label := iter.Label()
		if !slices.Contains(knownFields, label) {
			return &CompileError{
				Field:   label,
				Message: "unknown field",
				Pos:     iter.Value().Pos(),
			}
		}
	}
	return nil
}

func requiredString(v cue.Value, field string) (string, error) {
	s, ok, err := optionalString(v, field)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", &CompileError{
			Field:   field,
			Message: field + " is required",
			Pos:     v.Pos(),
		}
	}
	return s, nil
}

func optionalString(v cue.Value, field string) (string, bool, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return "", false, nil
	}
	s, err := fv.String()
	if err != nil {
		return "", false, &CompileError{
			Field:   field,
			Message: "must be a string",
			Pos:     fv.Pos(),
		}
	}
	if s == "" {
		return "", false, &CompileError{
			Field:   field,
			Message: "must not be empty",
			Pos:     fv.Pos(),
		}
	}
	return s, true, nil
}

// parseAttributeTypes reads the attributes list. Every entry must be a type
// registered in reg. Duplicates collapse.
func parseAttributeTypes(v cue.Value, reg *relation.Registry) ([]relation.AttributeType, error) {
	listVal := v.LookupPath(cue.ParsePath("attributes"))
	if !listVal.Exists() {
		return nil, nil
	}

	iter, err := listVal.List()
	if err != nil {
		return nil, &CompileError{
			Field:   "attributes",
			Message: "must be a list of attribute types",
			Pos:     listVal.Pos(),
		}
	}

	declared := make(map[relation.AttributeType]bool)
	for iter.Next() {
		s, err := iter.Value().String()
		if err != nil {
			return nil, &CompileError{
				Field:   "attributes",
				Message: "attribute type must be a string",
				Pos:     iter.Value().Pos(),
			}
		}
		t := relation.AttributeType(s)
		if _, err := reg.Lookup(t); err != nil {
			return nil, &CompileError{
				Field:   "attributes",
				Message: fmt.Sprintf("unknown attribute type %q (registered: %v)", s, reg.Types()),
				Pos:     iter.Value().Pos(),
			}
		}
		declared[t] = true
	}

	var types []relation.AttributeType
	for _, t := range reg.Types() {
		if declared[t] {
			types = append(types, t)
		}
	}
	return types, nil
}

func parseAttributeIDs(v cue.Value) ([]int64, error) {
	iter, err := v.List()
	if err != nil {
		return nil, &CompileError{
			Field:   "attribute_ids",
			Message: "must be a list of integers",
			Pos:     v.Pos(),
		}
	}

	var ids []int64
	for iter.Next() {
		id, err := iter.Value().Int64()
		if err != nil {
			return nil, &CompileError{
				Field:   "attribute_ids",
				Message: "attribute id must be an integer",
				Pos:     iter.Value().Pos(),
			}
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, &CompileError{
			Field:   "attribute_ids",
			Message: "must not be empty when present",
			Pos:     v.Pos(),
		}
	}
	return ids, nil
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
