package postgresengine

import (
	"context"
	"database/sql"
	"errors"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // driver import
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	jsoniter "github.com/json-iterator/go"
	"github.com/lib/pq"

	"github.com/AntonStoeckl/entitystore-go/entitystore"
	"github.com/AntonStoeckl/entitystore-go/entitystore/internal/adapters"
	"github.com/AntonStoeckl/entitystore-go/entitystore/internal/sqlstore"
)

const (
	engineName      = "postgres"
	dialectPostgres = "postgres"
	castJsonb       = "?::jsonb"
	containsPayload = "payload @> ?::jsonb"
)

// PGXPool is the subset of *pgxpool.Pool the engine needs.
type PGXPool = adapters.PGXPool

// IsolationLevel of the engine's transactions.
type IsolationLevel = adapters.IsolationLevel

const (
	ReadCommitted  = adapters.IsolationReadCommitted
	RepeatableRead = adapters.IsolationRepeatableRead
	Serializable   = adapters.IsolationSerializable
)

// Engine is a PostgreSQL entitystore.Engine.
type Engine struct {
	store *sqlstore.Store
}

type engineConfig struct {
	config sqlstore.Config
}

// NewEngineFromPGXPool creates a new Engine using a pgx Pool with optional configuration.
func NewEngineFromPGXPool(db PGXPool, options ...Option) (*Engine, error) {
	if db == nil {
		return nil, entitystore.ErrNilDatabaseConnection
	}

	return newEngine(adapters.NewPGXAdapter(db), options)
}

// NewEngineFromPGXPoolWithReplica creates a new Engine that serves reads with eventual consistency
// from a replica pool. Transactions always use the primary.
func NewEngineFromPGXPoolWithReplica(db PGXPool, replica PGXPool, options ...Option) (*Engine, error) {
	if db == nil || replica == nil {
		return nil, entitystore.ErrNilDatabaseConnection
	}

	return newEngine(adapters.NewPGXAdapterWithReplica(db, replica), options)
}

// NewEngineFromSQLDB creates a new Engine using a sql.DB with optional configuration.
func NewEngineFromSQLDB(db *sql.DB, options ...Option) (*Engine, error) {
	if db == nil {
		return nil, entitystore.ErrNilDatabaseConnection
	}

	return newEngine(adapters.NewSQLAdapter(db), options)
}

// NewEngineFromSQLX creates a new Engine using a sqlx.DB with optional configuration.
func NewEngineFromSQLX(db *sqlx.DB, options ...Option) (*Engine, error) {
	if db == nil {
		return nil, entitystore.ErrNilDatabaseConnection
	}

	return newEngine(adapters.NewSQLXAdapter(db), options)
}

func newEngine(db adapters.DBAdapter, options []Option) (*Engine, error) {
	cfg := engineConfig{
		config: sqlstore.Config{
			Tables:    sqlstore.DefaultTableNames,
			Isolation: ReadCommitted,
		},
	}

	for _, option := range options {
		if err := option(&cfg); err != nil {
			return nil, err
		}
	}

	return &Engine{store: sqlstore.New(db, Dialect{}, cfg.config)}, nil
}

// Load reads committed state.
func (e *Engine) Load(ctx context.Context, criteria entitystore.Criteria) (entitystore.StorableEntities, error) {
	return e.store.Load(ctx, criteria)
}

// Begin starts a database transaction.
func (e *Engine) Begin(ctx context.Context) (entitystore.Session, error) {
	return e.store.Begin(ctx)
}

// Dialect is the PostgreSQL flavor of the SQL store.
type Dialect struct{}

func (Dialect) GoquDialect() string { return dialectPostgres }

func (Dialect) EngineName() string { return engineName }

func (Dialect) PayloadValue(payloadJSON []byte) any {
	return goqu.L(castJsonb, string(payloadJSON))
}

// PayloadMatches uses JSONB containment, which the GIN index on payload serves.
func (Dialect) PayloadMatches(key, val string) (exp.Expression, error) {
	document, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalToString(map[string]string{key: val})
	if err != nil {
		return nil, err
	}

	return goqu.L(containsPayload, document), nil
}

func (Dialect) IsUniqueViolation(err error) bool {
	return sqlState(err) == pgerrcode.UniqueViolation
}

func (Dialect) IsConcurrencyConflict(err error) bool {
	switch sqlState(err) {
	case pgerrcode.SerializationFailure, pgerrcode.DeadlockDetected:
		return true
	default:
		return false
	}
}

// sqlState extracts the SQLSTATE code from pgx and lib/pq errors.
func sqlState(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}

	return ""
}
