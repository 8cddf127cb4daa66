// Package memengine provides an in-memory implementation of entitystore.Engine.
//
// It is meant for tests and for running the library handlers without a database. Sessions see
// committed state plus their own writes; unique values and identities are reserved engine-wide as
// soon as a session flushes them, so concurrent sessions get a ConstraintViolationError at flush time
// instead of a late failure at commit.
package memengine
