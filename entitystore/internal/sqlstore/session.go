package sqlstore

import (
	"context"
	"errors"
	"time"

	"github.com/AntonStoeckl/entitystore-go/entitystore"
	"github.com/AntonStoeckl/entitystore-go/entitystore/internal/adapters"
)

// session is one database transaction.
type session struct {
	store *Store
	tx    adapters.DBTx
	done  bool
}

func (t *session) Load(ctx context.Context, criteria entitystore.Criteria) (entitystore.StorableEntities, error) {
	if t.done {
		return nil, errors.Join(entitystore.ErrQueryingEntitiesFailed, entitystore.ErrSessionFinished)
	}

	return t.store.load(ctx, criteria, func(sqlQuery string) (adapters.DBRows, error) {
		return t.tx.Query(ctx, sqlQuery)
	})
}

// Apply runs the batch inside a savepoint and rolls back to it when any mutation fails,
// which keeps the transaction usable and the batch all-or-nothing.
func (t *session) Apply(ctx context.Context, mutations []entitystore.Mutation) (int, error) {
	if t.done {
		return 0, errors.Join(entitystore.ErrFlushingChangesFailed, entitystore.ErrSessionFinished)
	}

	s := t.store
	start := time.Now()
	ctx, span := s.observer.StartSpan(ctx, s.dialect.EngineName()+spanNameApplySuffix, map[string]string{
		entitystore.LabelEngine: s.dialect.EngineName(),
	})

	if _, err := t.exec(ctx, "SAVEPOINT "+savepointName, logActionSavepoint); err != nil {
		s.observer.FinishSpan(span, entitystore.StatusError, nil)
		return 0, t.classify(err)
	}

	for _, m := range mutations {
		if err := t.applyOne(ctx, m); err != nil {
			if _, rollbackErr := t.exec(ctx, "ROLLBACK TO SAVEPOINT "+savepointName, logActionSavepoint); rollbackErr != nil {
				s.observer.Error(ctx, logMsgSavepointFailed, logAttrError, rollbackErr.Error())
			}
			s.observer.FinishSpan(span, entitystore.StatusFromError(err), nil)
			t.observeApplyFailure(ctx, m, err)

			return 0, err
		}
	}

	if _, err := t.exec(ctx, "RELEASE SAVEPOINT "+savepointName, logActionSavepoint); err != nil {
		s.observer.FinishSpan(span, entitystore.StatusError, nil)
		return 0, t.classify(err)
	}

	s.observer.FinishSpan(span, entitystore.StatusSuccess, nil)
	s.observer.Debug(ctx, logMsgOperation+logMsgChangesApplied,
		logAttrMutationCount, len(mutations),
		logAttrDurationMS, entitystore.ToMilliseconds(time.Since(start)))

	return len(mutations), nil
}

func (t *session) Commit(ctx context.Context) error {
	if t.done {
		return errors.Join(entitystore.ErrCommitTransactionFailed, entitystore.ErrSessionFinished)
	}
	t.done = true

	if err := t.tx.Commit(ctx); err != nil {
		t.store.observer.Error(ctx, logMsgOperation+"commit failed", logAttrError, err.Error())

		return errors.Join(entitystore.ErrCommitTransactionFailed, t.classify(err))
	}

	t.store.observer.Debug(ctx, logMsgOperation+logMsgTxCommitted)

	return nil
}

func (t *session) Rollback(ctx context.Context) error {
	if t.done {
		return errors.Join(entitystore.ErrRollbackTransactionFailed, entitystore.ErrSessionFinished)
	}
	t.done = true

	if err := t.tx.Rollback(ctx); err != nil {
		return errors.Join(entitystore.ErrRollbackTransactionFailed, err)
	}

	t.store.observer.Debug(ctx, logMsgOperation+logMsgTxRolledBack)

	return nil
}

func (t *session) applyOne(ctx context.Context, m entitystore.Mutation) error {
	s := t.store
	record := m.Entity

	switch m.Kind {
	case entitystore.MutationInsert:
		sqlQuery, err := s.buildInsertEntityQuery(record)
		if err != nil {
			return err
		}
		if _, err = t.exec(ctx, sqlQuery, logActionApply); err != nil {
			if s.dialect.IsUniqueViolation(err) {
				return entitystore.NewConstraintViolationError(record.EntityType, constraintPrimaryKey, record.EntityID.String(), err)
			}
			return t.classify(err)
		}

		return t.insertUniqueKeys(ctx, record)

	case entitystore.MutationUpdate:
		sqlQuery, err := s.buildUpdateEntityQuery(record)
		if err != nil {
			return err
		}
		if err = t.execExpectingRow(ctx, sqlQuery, record); err != nil {
			return err
		}
		if err = t.deleteUniqueKeys(ctx, record); err != nil {
			return err
		}

		return t.insertUniqueKeys(ctx, record)

	case entitystore.MutationDelete:
		if err := t.deleteUniqueKeys(ctx, record); err != nil {
			return err
		}
		sqlQuery, err := s.buildDeleteEntityQuery(record.EntityType, record.EntityID)
		if err != nil {
			return err
		}

		return t.execExpectingRow(ctx, sqlQuery, record)

	default:
		return errors.Join(entitystore.ErrFlushingChangesFailed, errors.New("unknown mutation kind "+m.Kind.String()))
	}
}

func (t *session) insertUniqueKeys(ctx context.Context, record entitystore.StorableEntity) error {
	for _, constraint := range sortedConstraints(record.UniqueKeys) {
		value := record.UniqueKeys[constraint]

		sqlQuery, err := t.store.buildInsertUniqueKeyQuery(record, constraint, value)
		if err != nil {
			return err
		}

		if _, err = t.exec(ctx, sqlQuery, logActionApply); err != nil {
			if t.store.dialect.IsUniqueViolation(err) {
				return entitystore.NewConstraintViolationError(record.EntityType, constraint, value, err)
			}
			return t.classify(err)
		}
	}

	return nil
}

func (t *session) deleteUniqueKeys(ctx context.Context, record entitystore.StorableEntity) error {
	sqlQuery, err := t.store.buildDeleteUniqueKeysQuery(record.EntityType, record.EntityID)
	if err != nil {
		return err
	}

	if _, err = t.exec(ctx, sqlQuery, logActionApply); err != nil {
		return t.classify(err)
	}

	return nil
}

// execExpectingRow maps zero affected rows to *entitystore.NotFoundError.
func (t *session) execExpectingRow(ctx context.Context, sqlQuery string, record entitystore.StorableEntity) error {
	result, err := t.exec(ctx, sqlQuery, logActionApply)
	if err != nil {
		return t.classify(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.Join(entitystore.ErrFlushingChangesFailed, err)
	}

	if rowsAffected == 0 {
		return entitystore.NewNotFoundError(record.EntityType, record.EntityID)
	}

	return nil
}

func (t *session) exec(ctx context.Context, sqlQuery, action string) (adapters.DBResult, error) {
	start := time.Now()
	result, err := t.tx.Exec(ctx, sqlQuery)
	t.store.logQueryWithDuration(ctx, sqlQuery, action, time.Since(start))

	if err != nil {
		t.store.observer.Debug(ctx, logMsgDBExecFailed, logAttrError, err.Error(), logAttrQuery, sqlQuery)
		return nil, err
	}

	return result, nil
}

func (t *session) classify(err error) error {
	if t.store.dialect.IsConcurrencyConflict(err) {
		return errors.Join(entitystore.ErrConcurrencyConflict, err)
	}

	return errors.Join(entitystore.ErrFlushingChangesFailed, err)
}

func (t *session) observeApplyFailure(ctx context.Context, m entitystore.Mutation, err error) {
	s := t.store
	labels := map[string]string{
		entitystore.LabelEngine:     s.dialect.EngineName(),
		entitystore.LabelEntityType: m.Entity.EntityType,
	}

	if cv, ok := entitystore.AsConstraintViolation(err); ok {
		s.observer.IncrementCounter(ctx, entitystore.MetricConstraintViolations, labels)
		s.observer.Info(ctx, logMsgOperation+logMsgConstraintViolation,
			logAttrEntityType, m.Entity.EntityType,
			logAttrEntityID, m.Entity.EntityID.String(),
			logAttrConstraint, cv.Constraint)
		return
	}

	switch {
	case entitystore.IsNotFound(err):
		s.observer.IncrementCounter(ctx, entitystore.MetricNotFound, labels)
		s.observer.Info(ctx, logMsgOperation+logMsgNotFound,
			logAttrEntityType, m.Entity.EntityType,
			logAttrEntityID, m.Entity.EntityID.String())
	case entitystore.IsConcurrencyConflict(err):
		s.observer.Info(ctx, logMsgOperation+logMsgConcurrencyConflict,
			logAttrEntityType, m.Entity.EntityType,
			logAttrError, err.Error())
	default:
		s.observer.Error(ctx, logMsgDBExecFailed, logAttrError, err.Error())
	}
}
