package sqlstore

import (
	"context"
	"errors"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"

	"github.com/AntonStoeckl/entitystore-go/entitystore"
	"github.com/AntonStoeckl/entitystore-go/entitystore/internal/adapters"
)

const (
	logMsgBuildQueryFailed    = "failed to build query"
	logMsgDBQueryFailed       = "database query execution failed"
	logMsgDBExecFailed        = "database execution failed while applying changes"
	logMsgCloseRowsFailed     = "failed to close database rows"
	logMsgScanRowFailed       = "failed to scan database row"
	logMsgBuildRecordFailed   = "failed to build storable entity from database row"
	logMsgSavepointFailed     = "failed to roll back to savepoint"
	logMsgConstraintViolation = "constraint violation detected"
	logMsgNotFound            = "entity not found while applying changes"
	logMsgConcurrencyConflict = "concurrency conflict detected"
	logMsgSQLExecuted         = "executed sql for: "
	logMsgOperation           = "entitystore operation: "
	logMsgQueryCompleted      = "query completed"
	logMsgChangesApplied      = "changes applied"
	logMsgTxCommitted         = "transaction committed"
	logMsgTxRolledBack        = "transaction rolled back"
	logAttrError              = "error"
	logAttrQuery              = "query"
	logAttrEntityType         = "entity_type"
	logAttrEntityID           = "entity_id"
	logAttrConstraint         = "constraint"
	logAttrResultCount        = "result_count"
	logAttrMutationCount      = "mutation_count"
	logAttrDurationMS         = "duration_ms"
	logAttrConsistencyLevel   = "consistency_level"
	logAttrIsolationLevel     = "isolation_level"
	logActionQuery            = "query"
	logActionApply            = "apply"
	logActionSavepoint        = "savepoint"
	colEntityType             = "entity_type"
	colEntityID               = "entity_id"
	colPayload                = "payload"
	colDeleted                = "deleted"
	colUpdatedAt              = "updated_at"
	colConstraintName         = "constraint_name"
	colKeyValue               = "key_value"
	constraintPrimaryKey      = "primary_key"
	savepointName             = "entitystore_flush"
	spanNameApplySuffix       = ".apply"
)

type sqlQueryString = string

// Config of a Store.
type Config struct {
	Tables    TableNames
	Isolation adapters.IsolationLevel
	Observer  entitystore.Observer
}

// Store is a relational entitystore.Engine.
type Store struct {
	db        adapters.DBAdapter
	dialect   Dialect
	builder   goqu.DialectWrapper
	tables    TableNames
	isolation adapters.IsolationLevel
	observer  entitystore.Observer
}

type queryResultRow struct {
	entityType string
	entityID   uuid.UUID
	payload    []byte
	deleted    bool
}

// New creates a Store. Empty table names fall back to DefaultTableNames.
func New(db adapters.DBAdapter, dialect Dialect, config Config) *Store {
	tables := config.Tables
	if tables.Entities == "" {
		tables.Entities = DefaultTableNames.Entities
	}
	if tables.UniqueKeys == "" {
		tables.UniqueKeys = DefaultTableNames.UniqueKeys
	}

	return &Store{
		db:        db,
		dialect:   dialect,
		builder:   goqu.Dialect(dialect.GoquDialect()),
		tables:    tables,
		isolation: config.Isolation,
		observer:  config.Observer,
	}
}

// Load reads committed state. With eventual consistency in ctx, a configured replica serves the read.
func (s *Store) Load(ctx context.Context, criteria entitystore.Criteria) (entitystore.StorableEntities, error) {
	useReplica := entitystore.GetConsistencyLevel(ctx) == entitystore.EventualConsistency

	return s.load(ctx, criteria, func(sqlQuery string) (adapters.DBRows, error) {
		return s.db.Query(ctx, sqlQuery, useReplica)
	})
}

// Begin starts a transaction on the primary database.
func (s *Store) Begin(ctx context.Context) (entitystore.Session, error) {
	tx, err := s.db.Begin(ctx, s.isolation)
	if err != nil {
		s.observer.Error(ctx, logMsgOperation+"begin failed", logAttrError, err.Error())
		return nil, errors.Join(entitystore.ErrBeginTransactionFailed, err)
	}

	s.observer.Debug(ctx, logMsgOperation+"transaction begun", logAttrIsolationLevel, s.isolation.String())

	return &session{store: s, tx: tx}, nil
}

func (s *Store) load(
	ctx context.Context,
	criteria entitystore.Criteria,
	query func(sqlQuery string) (adapters.DBRows, error),
) (entitystore.StorableEntities, error) {

	sqlQuery, err := s.buildSelectQuery(criteria)
	if err != nil {
		s.observer.Error(ctx, logMsgBuildQueryFailed, logAttrError, err.Error(), logAttrEntityType, criteria.EntityType)
		return nil, err
	}

	start := time.Now()
	rows, err := query(sqlQuery)
	duration := time.Since(start)
	s.logQueryWithDuration(ctx, sqlQuery, logActionQuery, duration)

	if err != nil {
		s.observer.Error(ctx, logMsgDBQueryFailed, logAttrError, err.Error(), logAttrQuery, sqlQuery)
		return nil, errors.Join(entitystore.ErrQueryingEntitiesFailed, err)
	}
	defer s.closeRows(ctx, rows)

	records, err := s.processQueryResults(ctx, rows)
	if err != nil {
		return nil, err
	}

	s.observer.RecordDuration(ctx, entitystore.MetricQueryDuration, duration, map[string]string{
		entitystore.LabelEngine:     s.dialect.EngineName(),
		entitystore.LabelEntityType: criteria.EntityType,
	})
	s.observer.Debug(ctx, logMsgOperation+logMsgQueryCompleted,
		logAttrEntityType, criteria.EntityType,
		logAttrResultCount, len(records),
		logAttrConsistencyLevel, entitystore.GetConsistencyLevel(ctx).String(),
		logAttrDurationMS, entitystore.ToMilliseconds(duration))

	return records, nil
}

func (s *Store) processQueryResults(ctx context.Context, rows adapters.DBRows) (entitystore.StorableEntities, error) {
	records := make(entitystore.StorableEntities, 0)

	for rows.Next() {
		row := queryResultRow{}
		if err := rows.Scan(&row.entityType, &row.entityID, &row.payload, &row.deleted); err != nil {
			s.observer.Error(ctx, logMsgScanRowFailed, logAttrError, err.Error())
			return nil, errors.Join(entitystore.ErrScanningRowFailed, err)
		}

		record, err := entitystore.BuildStorableEntity(row.entityType, row.entityID, row.payload, row.deleted, nil)
		if err != nil {
			s.observer.Error(ctx, logMsgBuildRecordFailed, logAttrError, err.Error(), logAttrEntityType, row.entityType)
			return nil, errors.Join(entitystore.ErrScanningRowFailed, err)
		}

		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		s.observer.Error(ctx, logMsgDBQueryFailed, logAttrError, err.Error())
		return nil, errors.Join(entitystore.ErrQueryingEntitiesFailed, err)
	}

	return records, nil
}

// closeRows safely closes database rows and logs any errors.
func (s *Store) closeRows(ctx context.Context, rows adapters.DBRows) {
	if closeErr := rows.Close(); closeErr != nil {
		s.observer.Warn(ctx, logMsgCloseRowsFailed, logAttrError, closeErr.Error())
	}
}

// logQueryWithDuration logs SQL queries with execution time at debug level.
func (s *Store) logQueryWithDuration(ctx context.Context, sqlQuery, action string, duration time.Duration) {
	s.observer.Debug(ctx, logMsgSQLExecuted+action,
		logAttrDurationMS, entitystore.ToMilliseconds(duration),
		logAttrQuery, sqlQuery)
}
