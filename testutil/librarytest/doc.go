// Package librarytest provides engines and fixture builders for the library feature tests.
//
// The engine under test is chosen with the ENGINE_TYPE environment variable: "memory" (default)
// or "sqlite", which uses a fresh database file in the test's temp dir.
package librarytest
