package sqliteengine

import (
	"context"
	"database/sql"
	"errors"
	"net/url"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3" // driver import
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"

	"github.com/AntonStoeckl/entitystore-go/entitystore"
	"github.com/AntonStoeckl/entitystore-go/entitystore/internal/adapters"
	"github.com/AntonStoeckl/entitystore-go/entitystore/internal/sqlstore"
)

const (
	engineName      = "sqlite"
	dialectSQLite   = "sqlite3"
	driverName      = "sqlite3"
	payloadEquals   = "json_extract(payload, ?) = ?"
	busyTimeoutMS   = "5000"
	journalModeWAL  = "WAL"
	txLockImmediate = "immediate"
)

// Engine is a SQLite entitystore.Engine.
type Engine struct {
	store *sqlstore.Store
}

type engineConfig struct {
	config sqlstore.Config
}

// Open opens the database file at path with foreign keys, WAL journaling and a busy timeout.
// Transactions begin IMMEDIATE, so a second writer waits for the first one to finish instead of
// failing on a stale read snapshot, and a duplicate unique value surfaces as a constraint violation.
func Open(path string) (*sql.DB, error) {
	params := url.Values{}
	params.Set("_foreign_keys", "on")
	params.Set("_busy_timeout", busyTimeoutMS)
	params.Set("_journal_mode", journalModeWAL)
	params.Set("_txlock", txLockImmediate)

	return sql.Open(driverName, "file:"+path+"?"+params.Encode())
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
	cfg := engineConfig{config: sqlstore.Config{Tables: sqlstore.DefaultTableNames}}

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

// Dialect is the SQLite flavor of the SQL store.
type Dialect struct{}

func (Dialect) GoquDialect() string { return dialectSQLite }

func (Dialect) EngineName() string { return engineName }

func (Dialect) PayloadValue(payloadJSON []byte) any {
	return string(payloadJSON)
}

func (Dialect) PayloadMatches(key, val string) (exp.Expression, error) {
	return goqu.L(payloadEquals, `$."`+key+`"`, val), nil
}

func (Dialect) IsUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}

	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique || sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
}

func (Dialect) IsConcurrencyConflict(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}

	return sqliteErr.Code == sqlite3.ErrBusy || sqliteErr.Code == sqlite3.ErrLocked
}
