package relation

import "github.com/roach88/eav/internal/ir"

// fakeParent is a minimal Owner for relation tests.
type fakeParent struct {
	key        ir.IRValue
	entityType string
	relations  map[string]Loaded
}

func newParent(key int64, entityType string) *fakeParent {
	return &fakeParent{key: ir.IRInt(key), entityType: entityType, relations: map[string]Loaded{}}
}

func (p *fakeParent) Key() ir.IRValue { return p.key }
func (p *fakeParent) EntityType() string { return p.entityType }
func (p *fakeParent) SetRelation(name string, l Loaded) { p.relations[name] = l }

func parents(ps ...*fakeParent) []Parent {
	out := make([]Parent, len(ps))
	for i, p := range ps {
		out[i] = p
	}
	return out
}

func attrRow(objectID int64, objectType, name string, value ir.IRValue) ir.IRObject {
	return ir.IRObject{
		"value":       value,
		"name":        ir.IRString(name),
		"objectType":  ir.IRString(objectType),
		"objectID":    ir.IRInt(objectID),
		"attributeID": ir.IRInt(1),
	}
}
