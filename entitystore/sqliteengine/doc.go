// Package sqliteengine provides a SQLite implementation of entitystore.Engine, using the go-sqlite3 driver.
//
// It shares its schema layout and statements with the PostgreSQL engine and is meant for local
// development, the demo CLI and tests. SQLite allows one writer at a time; a transaction that cannot get
// the write lock within the busy timeout fails with entitystore.ErrConcurrencyConflict.
package sqliteengine
