// Package core holds the entities and business rules of the public library domain.
//
// Entities are plain value types persisted through entitystore. Every entity type registers itself with
// entitystore.DefaultRegistry, so relations can be resolved by type name.
package core
