// Package store provides SQLite-backed execution of relation queries.
//
// The store owns the persisted EAV layout:
//   - attributes: the shared catalog (attributeID, name, type)
//   - string_attributes, integer_attributes, float_attributes: typed
//     connector rows (objectID, objectType, attributeID, value)
//   - object_attributes: entity-to-entity links, value holds the owned key
//
// Entity tables themselves belong to the application and are created with
// Exec.
//
// # Execution
//
// Fetch and Persist accept queryir values, compile them with querysql and run
// them. Values always travel as parameters. Every SELECT is ordered, so a
// relation sees its records in the same order on every load.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Schema changes are tracked with PRAGMA user_version.
package store
