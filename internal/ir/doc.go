// Package ir provides the value model shared by every layer of the EAV engine.
//
// Rows fetched from the store, parameters bound into queries and the flat
// serialized form of an entity are all expressed as IRValue / IRObject. This
// package imports nothing internal so every other package can depend on it.
//
// Key design constraints:
//   - IRValue is sealed; only the types in this package implement it
//   - Floats are first-class values (the float connector table carries them)
//   - IRNull models SQL NULL and is distinct from an absent key
//   - Canonical JSON output is deterministic (sorted keys, NFC strings)
package ir
