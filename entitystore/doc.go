// Package entitystore provides the core abstractions for persisting library entities
// through generic repositories coordinated by a unit of work.
//
// This package defines the storage-independent contract used by all engine implementations
// (in-memory, PostgreSQL, SQLite) and by the feature handlers consuming them:
//   - Entity: any value type with an immutable identity
//   - Repository[T]: typed CRUD, filtered list, paged list, existence checks
//   - UnitOfWork: one transactional scope spanning the repositories of all entity types
//   - PagedRequest / PagedResult[T]: the paging contract for query handlers
//   - Result: the success/failure envelope returned by command handlers
//
// Reads through a repository see that repository's own staged (not yet flushed) writes.
// Other repositories and other units of work only see them after a flush (or commit).
//
// Common usage pattern:
//
//	uow := entitystore.NewUnitOfWork(engine)
//	defer uow.Close(ctx)
//
//	if err := uow.BeginTransaction(ctx); err != nil {
//		// handle error
//	}
//
//	fines := entitystore.RepositoryFor[core.Fine](uow)
//	if err := fines.Add(fine); err != nil {
//		// handle error
//	}
//
//	if _, err := uow.SaveChanges(ctx); err != nil {
//		_ = uow.RollbackTransaction(ctx)
//		// translate err into a Result.Failure
//	}
//
//	err := uow.CommitTransaction(ctx)
package entitystore
