package relation

import "github.com/roach88/eav/internal/ir"

// DirectionKind tells which side of a connector row is local.
type DirectionKind int

const (
	// OwnerKind: the parent entity holds the connector rows.
	OwnerKind DirectionKind = iota
	// OwnedKind: the parent entity is addressed as the value of another
	// entity's connector row.
	OwnedKind
)

func (k DirectionKind) String() string {
	if k == OwnedKind {
		return "owned"
	}
	return "owner"
}

// Directionality holds the mirrored accessor pairs of a relation.
//
// Field and key names are qualified with the connector table. A relation
// filters and matches on the local side and joins on the other side, so the
// same algorithm serves both directions.
type Directionality struct {
	Kind      DirectionKind
	Connector Connector

	LocalNameField string
	OtherNameField string
	LocalKey       string
	OtherKey       string
	LocalTypeID    []ir.IRValue
	OtherTypeID    []ir.IRValue
}

// NewOwner describes an entity owning connector rows: local is the entity
// side (objectType, objectID, [ownerType]), other is the attribute side
// (attributeID, value, ids).
func NewOwner(conn Connector, ownerType string, ids []int64) Directionality {
	return Directionality{
		Kind:           OwnerKind,
		Connector:      conn,
		LocalNameField: conn.Qualified(conn.ObjectType),
		OtherNameField: conn.Qualified(conn.AttributeID),
		LocalKey:       conn.Qualified(conn.ObjectID),
		OtherKey:       conn.Qualified(conn.Value),
		LocalTypeID:    []ir.IRValue{ir.IRString(ownerType)},
		OtherTypeID:    idValues(ids),
	}
}

// NewOwned describes an entity addressed as a connector row value: local is
// the attribute side (attributeID, value, ids), other is the entity side
// (objectType, objectID, [relatedType]).
func NewOwned(conn Connector, relatedType string, ids []int64) Directionality {
	return Directionality{
		Kind:           OwnedKind,
		Connector:      conn,
		LocalNameField: conn.Qualified(conn.AttributeID),
		OtherNameField: conn.Qualified(conn.ObjectType),
		LocalKey:       conn.Qualified(conn.Value),
		OtherKey:       conn.Qualified(conn.ObjectID),
		LocalTypeID:    idValues(ids),
		OtherTypeID:    []ir.IRValue{ir.IRString(relatedType)},
	}
}

// Mirror swaps every local/other pair and flips the kind.
func (d Directionality) Mirror() Directionality {
	kind := OwnedKind
	if d.Kind == OwnedKind {
		kind = OwnerKind
	}
	return Directionality{
		Kind:           kind,
		Connector:      d.Connector,
		LocalNameField: d.OtherNameField,
		OtherNameField: d.LocalNameField,
		LocalKey:       d.OtherKey,
		OtherKey:       d.LocalKey,
		LocalTypeID:    append([]ir.IRValue{}, d.OtherTypeID...),
		OtherTypeID:    append([]ir.IRValue{}, d.LocalTypeID...),
	}
}

func idValues(ids []int64) []ir.IRValue {
	out := make([]ir.IRValue, 0, len(ids))
	for _, id := range ids {
		out = append(out, ir.IRInt(id))
	}
	return out
}
