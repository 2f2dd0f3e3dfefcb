// Package entity is the entity-side API of the EAV engine.
//
// A Kind carries the static capability metadata of an entity type: its
// table, primary key, objectType discriminator and declared attribute types.
// A Model wraps one loaded row and exposes:
//
//   - capability probes (HasStringAttributes, HasAttributes)
//   - Attribute(name): own column first, then loaded attribute sets
//   - ToMap/MarshalJSON: a flat view with attribute sets merged in
//   - relation factories (Attributes, OwnsMany, OwnsOne, IsOwnedBySingle)
//
// Factories that need attribute ids take them explicitly or from a related
// kind implementing AttributeIdentifier. Neither is a *ConfigError returned
// before any query runs.
package entity
