// Package sqlstore implements entitystore.Engine on top of a relational database.
//
// Records live in one entities table keyed by (entity_type, entity_id) with a JSON payload column.
// Unique values declared by entities are enforced by a unique_keys table whose primary key is
// (entity_type, constraint_name, key_value), so the database detects violations, including those
// caused by concurrent transactions. Dialect specifics (JSON predicates, error codes) are provided by
// the engine packages through the Dialect interface.
package sqlstore
