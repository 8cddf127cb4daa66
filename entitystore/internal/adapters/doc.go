// Package adapters provide database adapter implementations for the SQL entity store engines.
//
// This package implements the adapter pattern to support multiple database libraries:
// pgx.Pool, sql.DB, and sqlx.DB. All adapters provide equivalent functionality through
// a common DBAdapter interface, so the SQL engines work with any supported connection type.
//
// Reads outside a transaction may be routed to a replica; everything inside a DBTx uses the primary.
package adapters
