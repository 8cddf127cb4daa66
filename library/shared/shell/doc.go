// Package shell contains the infrastructure shared by the library feature handlers:
// the transaction contract, retry on concurrency conflicts, command validation, result mapping,
// audit logging and the observability helpers used by the observable wrappers.
package shell
