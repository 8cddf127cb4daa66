package config

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/AntonStoeckl/entitystore-go/entitystore"
	"github.com/AntonStoeckl/entitystore-go/entitystore/memengine"
	"github.com/AntonStoeckl/entitystore-go/entitystore/postgresengine"
	"github.com/AntonStoeckl/entitystore-go/entitystore/sqliteengine"
)

// Observability holds the optional collaborators passed to the engine. Nil fields are not wired.
type Observability struct {
	Logger           entitystore.Logger
	ContextualLogger entitystore.ContextualLogger
	Metrics          entitystore.MetricsCollector
	Tracing          entitystore.TracingCollector
}

// CloseFunc releases the connections held by an engine.
type CloseFunc func() error

var isolationLevels = map[string]postgresengine.IsolationLevel{
	"read_committed":  postgresengine.ReadCommitted,
	"repeatable_read": postgresengine.RepeatableRead,
	"serializable":    postgresengine.Serializable,
}

// NewEngine builds the configured engine, migrating its schema first when AutoMigrate is set.
func NewEngine(ctx context.Context, cfg Config, obs Observability) (entitystore.Engine, CloseFunc, error) {
	switch cfg.Engine {
	case EngineMemory:
		engine, err := memengine.NewEngine(memOptions(obs)...)
		return engine, noopClose, err
	case EngineSQLite:
		return newSQLiteEngine(ctx, cfg, obs)
	case EnginePostgres:
		return newPostgresEngine(ctx, cfg, obs)
	default:
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownEngine, cfg.Engine)
	}
}

func newSQLiteEngine(ctx context.Context, cfg Config, obs Observability) (entitystore.Engine, CloseFunc, error) {
	db, err := sqliteengine.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, nil, err
	}

	if cfg.AutoMigrate {
		if _, err = sqliteengine.Migrate(ctx, db); err != nil {
			return nil, nil, errors.Join(err, db.Close())
		}
	}

	engine, err := sqliteengine.NewEngineFromSQLDB(db, sqliteOptions(obs)...)
	if err != nil {
		return nil, nil, errors.Join(err, db.Close())
	}

	return engine, db.Close, nil
}

func newPostgresEngine(ctx context.Context, cfg Config, obs Observability) (entitystore.Engine, CloseFunc, error) {
	isolation, ok := isolationLevels[cfg.Postgres.Isolation]
	if !ok {
		isolation = postgresengine.ReadCommitted
	}
	options := append(postgresOptions(obs), postgresengine.WithIsolationLevel(isolation))

	switch cfg.Postgres.Driver {
	case DriverSQLDB:
		db, err := cfg.Postgres.PostgresSQLDB(ctx)
		if err != nil {
			return nil, nil, err
		}
		if err = migratePostgres(cfg, func() error { _, err := postgresengine.Migrate(ctx, db); return err }); err != nil {
			return nil, nil, errors.Join(err, db.Close())
		}
		engine, err := postgresengine.NewEngineFromSQLDB(db, options...)
		if err != nil {
			return nil, nil, errors.Join(err, db.Close())
		}
		return engine, db.Close, nil

	case DriverSQLX:
		db, err := cfg.Postgres.PostgresSQLX(ctx)
		if err != nil {
			return nil, nil, err
		}
		if err = migratePostgres(cfg, func() error { _, err := postgresengine.Migrate(ctx, db.DB); return err }); err != nil {
			return nil, nil, errors.Join(err, db.Close())
		}
		engine, err := postgresengine.NewEngineFromSQLX(db, options...)
		if err != nil {
			return nil, nil, errors.Join(err, db.Close())
		}
		return engine, db.Close, nil

	default:
		return newPGXPoolEngine(ctx, cfg, options)
	}
}

func newPGXPoolEngine(ctx context.Context, cfg Config, options []postgresengine.Option) (entitystore.Engine, CloseFunc, error) {
	primary, err := openPGXPool(ctx, cfg.Postgres, cfg.Postgres.DSN)
	if err != nil {
		return nil, nil, err
	}

	err = migratePostgres(cfg, func() error {
		db := stdlib.OpenDBFromPool(primary)
		defer db.Close()
		_, err := postgresengine.Migrate(ctx, db)
		return err
	})
	if err != nil {
		primary.Close()
		return nil, nil, err
	}

	if cfg.Postgres.ReplicaDSN == "" {
		engine, err := postgresengine.NewEngineFromPGXPool(primary, options...)
		if err != nil {
			primary.Close()
			return nil, nil, err
		}
		return engine, closePools(primary), nil
	}

	replica, err := openPGXPool(ctx, cfg.Postgres, cfg.Postgres.ReplicaDSN)
	if err != nil {
		primary.Close()
		return nil, nil, err
	}

	engine, err := postgresengine.NewEngineFromPGXPoolWithReplica(primary, replica, options...)
	if err != nil {
		primary.Close()
		replica.Close()
		return nil, nil, err
	}

	return engine, closePools(primary, replica), nil
}

func openPGXPool(ctx context.Context, cfg PostgresConfig, dsn string) (*pgxpool.Pool, error) {
	poolConfig, err := cfg.PostgresPGXPoolConfig(dsn)
	if err != nil {
		return nil, err
	}

	return pgxpool.NewWithConfig(ctx, poolConfig)
}

func migratePostgres(cfg Config, migrate func() error) error {
	if !cfg.AutoMigrate {
		return nil
	}

	return migrate()
}

func closePools(pools ...*pgxpool.Pool) CloseFunc {
	return func() error {
		for _, pool := range pools {
			pool.Close()
		}
		return nil
	}
}

func noopClose() error { return nil }

func memOptions(obs Observability) []memengine.Option {
	var options []memengine.Option
	if obs.Logger != nil {
		options = append(options, memengine.WithLogger(obs.Logger))
	}
	if obs.ContextualLogger != nil {
		options = append(options, memengine.WithContextualLogger(obs.ContextualLogger))
	}
	if obs.Metrics != nil {
		options = append(options, memengine.WithMetrics(obs.Metrics))
	}
	if obs.Tracing != nil {
		options = append(options, memengine.WithTracing(obs.Tracing))
	}
	return options
}

func sqliteOptions(obs Observability) []sqliteengine.Option {
	var options []sqliteengine.Option
	if obs.Logger != nil {
		options = append(options, sqliteengine.WithLogger(obs.Logger))
	}
	if obs.ContextualLogger != nil {
		options = append(options, sqliteengine.WithContextualLogger(obs.ContextualLogger))
	}
	if obs.Metrics != nil {
		options = append(options, sqliteengine.WithMetrics(obs.Metrics))
	}
	if obs.Tracing != nil {
		options = append(options, sqliteengine.WithTracing(obs.Tracing))
	}
	return options
}

func postgresOptions(obs Observability) []postgresengine.Option {
	var options []postgresengine.Option
	if obs.Logger != nil {
		options = append(options, postgresengine.WithLogger(obs.Logger))
	}
	if obs.ContextualLogger != nil {
		options = append(options, postgresengine.WithContextualLogger(obs.ContextualLogger))
	}
	if obs.Metrics != nil {
		options = append(options, postgresengine.WithMetrics(obs.Metrics))
	}
	if obs.Tracing != nil {
		options = append(options, postgresengine.WithTracing(obs.Tracing))
	}
	return options
}
