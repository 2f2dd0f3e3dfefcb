// Package relation resolves EAV relations between entities and connector
// rows.
//
// A connector table holds (objectID, objectType, attributeID, value) rows.
// A Relation links a parent entity to such rows in one of two directions:
//
//   - owner: the parent holds the rows (objectID = parent key, objectType =
//     parent entity type)
//   - owned: the parent is the value of another entity's row (value = parent
//     key, attributeID in a configured id set)
//
// Directionality carries the mirrored local/other accessor pairs so a single
// Relation handles both directions. Primitive relations join the attribute
// catalog to resolve names; object relations join a related entity table.
//
// Eager loading follows a fixed protocol per relation:
//
//	rel.AddEagerConstraints(parents)  // objectID IN (...) + type filters
//	rel.InitRelation(parents, name)   // empty placeholder on every parent
//	records, err := rel.Fetch(ctx)    // exactly one query
//	rel.Match(parents, records, name) // partition by key
//
// Singular relations keep the first record in result order and silently
// drop the rest.
//
// The Registry maps scalar attribute types to connector tables. Adding a
// scalar type is one Register call.
package relation
