package relation

import (
	"context"

	"github.com/roach88/eav/internal/ir"
	"github.com/roach88/eav/internal/queryir"
)

// QueryEngine executes relation queries. *store.Store satisfies it.
//
// Fetch returns rows keyed by result column name in result order; an empty
// result must be an empty slice. Persist returns the new row id.
type QueryEngine interface {
	Fetch(ctx context.Context, q queryir.Select) ([]ir.IRObject, error)
	Persist(ctx context.Context, q queryir.Insert) (int64, error)
}

// Parent is an entity a relation result can be attached to.
type Parent interface {
	Key() ir.IRValue
	SetRelation(name string, loaded Loaded)
}

// Owner is a parent that owns connector rows, tagged by its entity type.
type Owner interface {
	Parent
	EntityType() string
}
