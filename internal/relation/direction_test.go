package relation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/eav/internal/ir"
)

func TestNewOwner_Accessors(t *testing.T) {
	d := NewOwner(NewConnector("string_attributes"), "product", []int64{7})

	assert.Equal(t, OwnerKind, d.Kind)
	assert.Equal(t, "string_attributes.objectType", d.LocalNameField)
	assert.Equal(t, "string_attributes.attributeID", d.OtherNameField)
	assert.Equal(t, "string_attributes.objectID", d.LocalKey)
	assert.Equal(t, "string_attributes.value", d.OtherKey)
	assert.Equal(t, []ir.IRValue{ir.IRString("product")}, d.LocalTypeID)
	assert.Equal(t, []ir.IRValue{ir.IRInt(7)}, d.OtherTypeID)
}

func TestDirectionality_MirrorSymmetry(t *testing.T) {
	tests := []struct {
		name string
		conn Connector
		typ  string
		ids  []int64
	}{
		{"no ids", NewConnector("string_attributes"), "product", nil},
		{"one id", NewConnector("object_attributes"), "order", []int64{3}},
		{"many ids", NewConnector("float_attributes"), "products", []int64{1, 2, 9}},
		{"custom columns", Connector{Table: "links", ObjectID: "oid", ObjectType: "otype", AttributeID: "aid", Value: "v"}, "user", []int64{5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			owner := NewOwner(tt.conn, tt.typ, tt.ids)
			owned := NewOwned(tt.conn, tt.typ, tt.ids)

			assert.Equal(t, owned, owner.Mirror())
			assert.Equal(t, owner, owned.Mirror())
			assert.Equal(t, owner, owner.Mirror().Mirror())
		})
	}
}

func TestDirectionKind_String(t *testing.T) {
	assert.Equal(t, "owner", OwnerKind.String())
	assert.Equal(t, "owned", OwnedKind.String())
}
