package memengine

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/entitystore-go/entitystore"
)

const (
	engineName                  = "memory"
	constraintPrimaryKey        = "primary_key"
	spanNameApply               = "memengine.apply"
	logMsgQueryCompleted        = "query completed"
	logMsgChangesApplied        = "changes applied"
	logMsgConstraintViolation   = "constraint violation detected"
	logMsgNotFound              = "entity not found while applying changes"
	logMsgSessionCommitted      = "session committed"
	logMsgSessionRolledBack     = "session rolled back"
	logAttrEntityType           = "entity_type"
	logAttrEntityID             = "entity_id"
	logAttrResultCount          = "result_count"
	logAttrMutationCount        = "mutation_count"
	logAttrConstraint           = "constraint"
	logAttrSessionID            = "session_id"
	logAttrDurationMS           = "duration_ms"
	logAttrCommittedWrites      = "committed_writes"
	logAttrConsistencyLevel     = "consistency_level"
	logAttrReleasedReservations = "released_reservations"
)

type recordKey struct {
	entityType string
	id         uuid.UUID
}

type uniqueKey struct {
	entityType string
	constraint string
	value      string
}

// Engine is an in-memory entitystore.Engine.
//
// Committed state is shared; each Session keeps its own write set on top of it (read committed).
// Identities and unique values claimed by an uncommitted session are reserved engine-wide, so a
// concurrent session claiming the same value fails immediately with a constraint violation.
// Concurrent updates of the same record are last-writer-wins.
type Engine struct {
	mu            sync.Mutex
	committed     map[recordKey]entitystore.StorableEntity
	committedKeys map[uniqueKey]uuid.UUID
	keyClaims     map[uniqueKey]uint64
	idClaims      map[recordKey]uint64
	nextSessionID uint64
	observer      entitystore.Observer
}

// NewEngine creates an empty in-memory Engine.
func NewEngine(options ...Option) (*Engine, error) {
	e := &Engine{
		committed:     make(map[recordKey]entitystore.StorableEntity),
		committedKeys: make(map[uniqueKey]uuid.UUID),
		keyClaims:     make(map[uniqueKey]uint64),
		idClaims:      make(map[recordKey]uint64),
	}

	for _, option := range options {
		if err := option(e); err != nil {
			return nil, err
		}
	}

	return e, nil
}

// Load reads committed state only.
func (e *Engine) Load(ctx context.Context, criteria entitystore.Criteria) (entitystore.StorableEntities, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()

	e.mu.Lock()
	records := e.selectLocked(criteria, nil)
	e.mu.Unlock()

	e.observeQuery(ctx, criteria, len(records), time.Since(start))

	return records, nil
}

// Begin starts a Session.
func (e *Engine) Begin(ctx context.Context) (entitystore.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.nextSessionID++

	return &session{
		engine: e,
		id:     e.nextSessionID,
		writes: make(map[recordKey]*entitystore.StorableEntity),
		keys:   make(map[uniqueKey]*uuid.UUID),
	}, nil
}

// Len returns the number of committed records of an entity type, soft-deleted ones included.
func (e *Engine) Len(entityType string) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	n := 0
	for key := range e.committed {
		if key.entityType == entityType {
			n++
		}
	}

	return n
}

// selectLocked merges committed state with an optional session write set. The lock must be held.
func (e *Engine) selectLocked(criteria entitystore.Criteria, writes map[recordKey]*entitystore.StorableEntity) entitystore.StorableEntities {
	records := make(entitystore.StorableEntities, 0)

	for key, record := range e.committed {
		if key.entityType != criteria.EntityType {
			continue
		}
		if _, overridden := writes[key]; overridden {
			continue
		}
		if criteria.Matches(record) {
			records = append(records, record.Clone())
		}
	}

	for key, record := range writes {
		if key.entityType != criteria.EntityType || record == nil {
			continue
		}
		if criteria.Matches(*record) {
			records = append(records, record.Clone())
		}
	}

	entitystore.SortByID(records)

	return records
}

func (e *Engine) observeQuery(ctx context.Context, criteria entitystore.Criteria, count int, duration time.Duration) {
	e.observer.RecordDuration(ctx, entitystore.MetricQueryDuration, duration, map[string]string{
		entitystore.LabelEngine:     engineName,
		entitystore.LabelEntityType: criteria.EntityType,
	})
	e.observer.Debug(ctx, logMsgQueryCompleted,
		logAttrEntityType, criteria.EntityType,
		logAttrResultCount, count,
		logAttrConsistencyLevel, entitystore.GetConsistencyLevel(ctx).String(),
		logAttrDurationMS, entitystore.ToMilliseconds(duration))
}
