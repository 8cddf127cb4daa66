// Package testdoubles provides spies for the entitystore observability interfaces.
//
// The spies record calls so that tests can assert on logs, metrics and spans emitted by
// engines, units of work and library handlers without wiring a real backend.
package testdoubles
