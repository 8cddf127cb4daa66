package memengine

import (
	"context"
	"errors"
	"maps"
	"time"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/entitystore-go/entitystore"
)

// session keeps its writes and unique-key changes private until Commit.
// A nil entry in writes is a deletion, a nil entry in keys is a released unique value.
type session struct {
	engine      *Engine
	id          uint64
	writes      map[recordKey]*entitystore.StorableEntity
	keys        map[uniqueKey]*uuid.UUID
	claimedKeys []uniqueKey
	claimedIDs  []recordKey
	done        bool
}

func (s *session) Load(ctx context.Context, criteria entitystore.Criteria) (entitystore.StorableEntities, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()

	s.engine.mu.Lock()
	if s.done {
		s.engine.mu.Unlock()
		return nil, errors.Join(entitystore.ErrQueryingEntitiesFailed, entitystore.ErrSessionFinished)
	}
	records := s.engine.selectLocked(criteria, s.writes)
	s.engine.mu.Unlock()

	s.engine.observeQuery(ctx, criteria, len(records), time.Since(start))

	return records, nil
}

// Apply validates the whole batch against a scratch copy of the write set before installing it,
// so a failing batch leaves the session untouched.
func (s *session) Apply(ctx context.Context, mutations []entitystore.Mutation) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	e := s.engine
	start := time.Now()

	e.mu.Lock()
	defer e.mu.Unlock()

	if s.done {
		return 0, errors.Join(entitystore.ErrFlushingChangesFailed, entitystore.ErrSessionFinished)
	}

	b := batch{
		session: s,
		writes:  maps.Clone(s.writes),
		keys:    maps.Clone(s.keys),
	}

	ctx, span := e.observer.StartSpan(ctx, spanNameApply, map[string]string{entitystore.LabelEngine: engineName})
	for _, m := range mutations {
		if err := b.apply(m); err != nil {
			e.observer.FinishSpan(span, entitystore.StatusFromError(err), nil)
			e.observeApplyFailure(ctx, m, err)
			return 0, err
		}
	}
	e.observer.FinishSpan(span, entitystore.StatusSuccess, nil)

	s.writes = b.writes
	s.keys = b.keys
	for _, k := range b.newKeyClaims {
		e.keyClaims[k] = s.id
		s.claimedKeys = append(s.claimedKeys, k)
	}
	for _, k := range b.newIDClaims {
		e.idClaims[k] = s.id
		s.claimedIDs = append(s.claimedIDs, k)
	}

	e.observer.Debug(ctx, logMsgChangesApplied,
		logAttrSessionID, s.id,
		logAttrMutationCount, len(mutations),
		logAttrDurationMS, entitystore.ToMilliseconds(time.Since(start)))

	return len(mutations), nil
}

func (s *session) Commit(ctx context.Context) error {
	e := s.engine

	e.mu.Lock()
	defer e.mu.Unlock()

	if s.done {
		return errors.Join(entitystore.ErrCommitTransactionFailed, entitystore.ErrSessionFinished)
	}

	if err := ctx.Err(); err != nil {
		s.releaseLocked()
		return errors.Join(entitystore.ErrCommitTransactionFailed, err)
	}

	for k, w := range s.writes {
		if w == nil {
			delete(e.committed, k)
			continue
		}
		e.committed[k] = *w
	}

	for k, owner := range s.keys {
		if owner == nil {
			delete(e.committedKeys, k)
			continue
		}
		e.committedKeys[k] = *owner
	}

	writes := len(s.writes)
	s.releaseLocked()

	e.observer.Debug(ctx, logMsgSessionCommitted, logAttrSessionID, s.id, logAttrCommittedWrites, writes)

	return nil
}

func (s *session) Rollback(ctx context.Context) error {
	e := s.engine

	e.mu.Lock()
	defer e.mu.Unlock()

	if s.done {
		return errors.Join(entitystore.ErrRollbackTransactionFailed, entitystore.ErrSessionFinished)
	}

	released := len(s.claimedKeys) + len(s.claimedIDs)
	s.releaseLocked()

	e.observer.Debug(ctx, logMsgSessionRolledBack, logAttrSessionID, s.id, logAttrReleasedReservations, released)

	return nil
}

// releaseLocked drops this session's reservations and ends it. The engine lock must be held.
func (s *session) releaseLocked() {
	for _, k := range s.claimedKeys {
		if s.engine.keyClaims[k] == s.id {
			delete(s.engine.keyClaims, k)
		}
	}

	for _, k := range s.claimedIDs {
		if s.engine.idClaims[k] == s.id {
			delete(s.engine.idClaims, k)
		}
	}

	s.claimedKeys = nil
	s.claimedIDs = nil
	s.writes = nil
	s.keys = nil
	s.done = true
}

// batch is the scratch state of one Apply call.
type batch struct {
	session      *session
	writes       map[recordKey]*entitystore.StorableEntity
	keys         map[uniqueKey]*uuid.UUID
	newKeyClaims []uniqueKey
	newIDClaims  []recordKey
}

func (b *batch) apply(m entitystore.Mutation) error {
	record := m.Entity.Clone()
	k := recordKey{entityType: record.EntityType, id: record.EntityID}
	e := b.session.engine

	switch m.Kind {
	case entitystore.MutationInsert:
		if _, exists := b.lookup(k); exists {
			return entitystore.NewConstraintViolationError(record.EntityType, constraintPrimaryKey, record.EntityID.String(), nil)
		}
		if owner, claimed := e.idClaims[k]; claimed && owner != b.session.id {
			return entitystore.NewConstraintViolationError(record.EntityType, constraintPrimaryKey, record.EntityID.String(), nil)
		}
		if err := b.claim(record); err != nil {
			return err
		}
		b.writes[k] = &record
		b.newIDClaims = append(b.newIDClaims, k)

	case entitystore.MutationUpdate:
		current, exists := b.lookup(k)
		if !exists {
			return entitystore.NewNotFoundError(record.EntityType, record.EntityID)
		}
		b.release(current)
		if err := b.claim(record); err != nil {
			return err
		}
		b.writes[k] = &record

	case entitystore.MutationDelete:
		current, exists := b.lookup(k)
		if !exists {
			return entitystore.NewNotFoundError(record.EntityType, record.EntityID)
		}
		b.release(current)
		b.writes[k] = nil

	default:
		return errors.Join(entitystore.ErrFlushingChangesFailed, errors.New("unknown mutation kind "+m.Kind.String()))
	}

	return nil
}

func (b *batch) lookup(k recordKey) (entitystore.StorableEntity, bool) {
	if w, ok := b.writes[k]; ok {
		if w == nil {
			return entitystore.StorableEntity{}, false
		}
		return *w, true
	}

	record, ok := b.session.engine.committed[k]

	return record, ok
}

func (b *batch) owner(k uniqueKey) (uuid.UUID, bool) {
	if owner, ok := b.keys[k]; ok {
		if owner == nil {
			return uuid.Nil, false
		}
		return *owner, true
	}

	owner, ok := b.session.engine.committedKeys[k]

	return owner, ok
}

func (b *batch) claim(record entitystore.StorableEntity) error {
	e := b.session.engine

	for constraint, value := range record.UniqueKeys {
		k := uniqueKey{entityType: record.EntityType, constraint: constraint, value: value}

		if owner, ok := b.owner(k); ok && owner != record.EntityID {
			return entitystore.NewConstraintViolationError(record.EntityType, constraint, value, nil)
		}
		if sessionID, claimed := e.keyClaims[k]; claimed && sessionID != b.session.id {
			return entitystore.NewConstraintViolationError(record.EntityType, constraint, value, nil)
		}

		id := record.EntityID
		b.keys[k] = &id
		b.newKeyClaims = append(b.newKeyClaims, k)
	}

	return nil
}

func (b *batch) release(current entitystore.StorableEntity) {
	for constraint, value := range current.UniqueKeys {
		k := uniqueKey{entityType: current.EntityType, constraint: constraint, value: value}
		if owner, ok := b.owner(k); ok && owner == current.EntityID {
			b.keys[k] = nil
		}
	}
}

func (e *Engine) observeApplyFailure(ctx context.Context, m entitystore.Mutation, err error) {
	labels := map[string]string{
		entitystore.LabelEngine:     engineName,
		entitystore.LabelEntityType: m.Entity.EntityType,
	}

	if cv, ok := entitystore.AsConstraintViolation(err); ok {
		e.observer.IncrementCounter(ctx, entitystore.MetricConstraintViolations, labels)
		e.observer.Info(ctx, logMsgConstraintViolation,
			logAttrEntityType, m.Entity.EntityType,
			logAttrEntityID, m.Entity.EntityID.String(),
			logAttrConstraint, cv.Constraint)
		return
	}

	if entitystore.IsNotFound(err) {
		e.observer.IncrementCounter(ctx, entitystore.MetricNotFound, labels)
		e.observer.Info(ctx, logMsgNotFound,
			logAttrEntityType, m.Entity.EntityType,
			logAttrEntityID, m.Entity.EntityID.String())
	}
}
