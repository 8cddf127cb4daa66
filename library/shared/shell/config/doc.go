// Package config loads the library's runtime configuration and builds the configured storage engine.
//
// Values are layered: built-in defaults, then an optional .env file, then LIBRARY_* environment
// variables. Factory functions create PostgreSQL connections with the different supported drivers
// (pgxpool.Pool, sql.DB, sqlx.DB) or open a SQLite database file.
package config
