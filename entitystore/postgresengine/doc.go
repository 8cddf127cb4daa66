// Package postgresengine provides a PostgreSQL implementation of entitystore.Engine.
//
// Entities are stored as JSONB documents in one table keyed by (entity_type, entity_id); declared unique
// values are enforced by a second table, so concurrent units of work claiming the same value are
// serialized by PostgreSQL and the loser gets an *entitystore.ConstraintViolationError.
//
// The engine supports three database adapters:
//   - pgx.Pool (recommended, optionally with a read replica)
//   - database/sql with the lib/pq driver
//   - sqlx
//
// The schema is created by Migrate, which runs the embedded goose migrations.
//
// Example:
//
//	pool, err := pgxpool.New(ctx, dsn)
//	if err != nil {
//		return err
//	}
//	engine, err := postgresengine.NewEngineFromPGXPool(pool, postgresengine.WithLogger(logger))
//	if err != nil {
//		return err
//	}
//	uow := entitystore.NewUnitOfWork(engine)
package postgresengine
