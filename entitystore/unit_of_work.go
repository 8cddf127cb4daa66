package entitystore

import (
	"context"
	"errors"
	"reflect"
	"strconv"
	"sync"
	"time"
)

const (
	logMsgTxBegun              = "transaction begun"
	logMsgTxCommitted          = "transaction committed"
	logMsgTxRolledBack         = "transaction rolled back"
	logMsgTxAutoRolledBack     = "transaction rolled back after context cancellation"
	logMsgTxBeginFailed        = "transaction begin failed"
	logMsgTxCommitFailed       = "transaction commit failed"
	logMsgTxRollbackFailed     = "transaction rollback failed"
	logMsgCommitWithPending    = "committing with unflushed changes, they stay pending"
	logMsgChangesFlushed       = "changes flushed"
	logMsgFlushFailed          = "flushing changes failed"
	logMsgImplicitTxRollback   = "implicit transaction rolled back after failed flush"
	logMsgQueryCompleted       = "query completed"
	logMsgQueryFailed          = "query failed"
	logAttrError               = "error"
	logAttrEntityType          = "entity_type"
	logAttrOperation           = "operation"
	logAttrDurationMS          = "duration_ms"
	logAttrMutationCount       = "mutation_count"
	logAttrAffectedCount       = "affected_count"
	logAttrResultCount         = "result_count"
	logAttrImplicitTransaction = "implicit_transaction"
	opBegin                    = "begin"
	opCommit                   = "commit"
	opRollback                 = "rollback"
)

// UnitOfWork is one transactional scope spanning the repositories of all entity types.
//
// A UnitOfWork is created per logical operation (e.g. per command handler invocation) and must not be
// shared between goroutines. Staged mutations of all its repositories are kept in one list and flushed
// in stage order by SaveChanges.
type UnitOfWork struct {
	engine   Engine
	registry *TypeRegistry
	observer Observer

	mu           sync.Mutex
	state        TxState
	session      Session
	watchedCtx   context.Context
	stopWatching func() bool
	cancelCause  error
	pending      []Mutation
	repositories map[reflect.Type]any
}

// Option configures a UnitOfWork.
type Option func(*UnitOfWork)

// WithTypeRegistry sets the registry used to decode included relations. DefaultRegistry is used otherwise.
func WithTypeRegistry(registry *TypeRegistry) Option {
	return func(u *UnitOfWork) {
		if registry != nil {
			u.registry = registry
		}
	}
}

// WithLogger sets the logger for transaction lifecycle and query logging.
func WithLogger(logger Logger) Option {
	return func(u *UnitOfWork) {
		u.observer.Logger = logger
	}
}

// WithContextualLogger sets a context-aware logger, which takes precedence over the basic logger.
func WithContextualLogger(logger ContextualLogger) Option {
	return func(u *UnitOfWork) {
		u.observer.ContextualLogger = logger
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(collector MetricsCollector) Option {
	return func(u *UnitOfWork) {
		u.observer.Metrics = collector
	}
}

// WithTracing sets the tracing collector.
func WithTracing(collector TracingCollector) Option {
	return func(u *UnitOfWork) {
		u.observer.Tracing = collector
	}
}

// NewUnitOfWork creates a UnitOfWork over the given engine in state TxNone.
func NewUnitOfWork(engine Engine, options ...Option) *UnitOfWork {
	u := &UnitOfWork{
		engine:       engine,
		registry:     DefaultRegistry,
		state:        TxNone,
		repositories: make(map[reflect.Type]any),
	}

	for _, option := range options {
		option(u)
	}

	return u
}

// UnitOfWorkFactory creates fresh units of work with a fixed engine and options.
// Handlers keep a factory and create one UnitOfWork per invocation.
type UnitOfWorkFactory struct {
	engine  Engine
	options []Option
}

// NewUnitOfWorkFactory creates a UnitOfWorkFactory.
func NewUnitOfWorkFactory(engine Engine, options ...Option) UnitOfWorkFactory {
	return UnitOfWorkFactory{engine: engine, options: options}
}

// New creates a UnitOfWork.
func (f UnitOfWorkFactory) New() *UnitOfWork {
	return NewUnitOfWork(f.engine, f.options...)
}

// RepositoryFor returns the repository for T bound to this unit of work.
// Repeated calls with the same T return the same instance.
func RepositoryFor[T Entity](u *UnitOfWork) *Repository[T] {
	key := reflect.TypeFor[T]()

	u.mu.Lock()
	defer u.mu.Unlock()

	if existing, ok := u.repositories[key]; ok {
		return existing.(*Repository[T])
	}

	var zero T
	entityType := zero.EntityType()

	if !u.registry.IsRegistered(entityType) {
		_ = RegisterEntityType[T](u.registry) // a concurrent registration of the same type is fine
	}

	repository := &Repository[T]{uow: u, entityType: entityType}
	u.repositories[key] = repository

	return repository
}

// State returns the current transaction state.
func (u *UnitOfWork) State() TxState {
	u.mu.Lock()
	defer u.mu.Unlock()

	return u.state
}

// HasPendingChanges reports whether staged mutations wait for the next SaveChanges.
func (u *UnitOfWork) HasPendingChanges() bool {
	u.mu.Lock()
	defer u.mu.Unlock()

	return len(u.pending) > 0
}

// BeginTransaction moves the scope from any non-active state to TxActive.
// When ctx is canceled before the transaction is committed, it is rolled back automatically.
func (u *UnitOfWork) BeginTransaction(ctx context.Context) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.state == TxActive {
		return NewInvalidTransactionStateError(opBegin, u.state)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	session, err := u.engine.Begin(ctx)
	if err != nil {
		u.observer.Error(ctx, logMsgTxBeginFailed, logAttrError, err.Error())
		return err
	}

	u.session = session
	u.state = TxActive
	u.cancelCause = nil
	u.watchedCtx = ctx
	u.stopWatching = context.AfterFunc(ctx, func() {
		u.autoRollback(ctx, session)
	})

	u.observer.Debug(ctx, logMsgTxBegun)

	return nil
}

// CommitTransaction commits the active transaction. Unflushed changes are not committed and stay pending.
func (u *UnitOfWork) CommitTransaction(ctx context.Context) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.state != TxActive {
		return u.invalidState(opCommit)
	}

	session := u.session
	if !u.stopWatching() {
		// the cancellation callback is already running and waits for the lock
		_ = u.rollbackLocked(ctx, session, StatusAutoRolledBack)
		u.cancelCause = context.Cause(u.watchedCtx)

		return u.invalidState(opCommit)
	}

	if len(u.pending) > 0 {
		u.observer.Warn(ctx, logMsgCommitWithPending, logAttrMutationCount, len(u.pending))
	}

	ctx, span := u.observer.StartSpan(ctx, SpanNameCommit, nil)
	err := session.Commit(ctx)
	u.session = nil

	if err != nil {
		u.state = TxRolledBack
		u.observer.FinishSpan(span, StatusError, map[string]string{logAttrError: err.Error()})
		u.observer.IncrementCounter(ctx, MetricTransactions, map[string]string{LabelStatus: StatusError})
		u.observer.Error(ctx, logMsgTxCommitFailed, logAttrError, err.Error())

		return err
	}

	u.state = TxCommitted
	u.observer.FinishSpan(span, StatusCommitted, nil)
	u.observer.IncrementCounter(ctx, MetricTransactions, map[string]string{LabelStatus: StatusCommitted})
	u.observer.Debug(ctx, logMsgTxCommitted)

	return nil
}

// RollbackTransaction discards the active transaction and all pending changes.
func (u *UnitOfWork) RollbackTransaction(ctx context.Context) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.state != TxActive {
		return u.invalidState(opRollback)
	}

	u.stopWatching()

	return u.rollbackLocked(ctx, u.session, StatusRolledBack)
}

// Close rolls back an active transaction and is a no-op otherwise. It is meant to be deferred.
func (u *UnitOfWork) Close(ctx context.Context) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.state != TxActive {
		return nil
	}

	u.stopWatching()

	return u.rollbackLocked(ctx, u.session, StatusRolledBack)
}

// SaveChanges flushes all pending mutations of all repositories in stage order and returns the number of
// affected records. Inside an active transaction nothing is committed; without one the flush runs in its
// own implicit transaction. When the flush fails, the pending mutations are kept.
func (u *UnitOfWork) SaveChanges(ctx context.Context) (int, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return 0, err
	}

	if len(u.pending) == 0 {
		return 0, nil
	}

	mutations := u.pending
	implicit := u.state != TxActive
	start := time.Now()
	ctx, span := u.observer.StartSpan(ctx, SpanNameFlush, map[string]string{
		logAttrImplicitTransaction: strconv.FormatBool(implicit),
	})

	var affected int
	var err error
	if implicit {
		affected, err = u.flushImplicit(ctx, mutations)
	} else {
		affected, err = u.session.Apply(ctx, mutations)
	}

	duration := time.Since(start)
	status := StatusFromError(err)
	u.observer.RecordDuration(ctx, MetricFlushDuration, duration, map[string]string{LabelStatus: status})
	u.observer.FinishSpan(span, status, nil)

	if err != nil {
		if status == StatusConstraintViolation {
			u.observer.IncrementCounter(ctx, MetricConstraintViolations, nil)
		}
		if status == StatusNotFound {
			u.observer.IncrementCounter(ctx, MetricNotFound, nil)
		}
		u.observer.Warn(ctx, logMsgFlushFailed,
			logAttrMutationCount, len(mutations),
			logAttrImplicitTransaction, implicit,
			logAttrError, err.Error())

		return 0, err
	}

	u.pending = nil
	u.observer.IncrementCounter(ctx, MetricFlushedMutations, map[string]string{LabelStatus: status})
	u.observer.Debug(ctx, logMsgChangesFlushed,
		logAttrMutationCount, len(mutations),
		logAttrAffectedCount, affected,
		logAttrImplicitTransaction, implicit,
		logAttrDurationMS, ToMilliseconds(duration))

	return affected, nil
}

func (u *UnitOfWork) flushImplicit(ctx context.Context, mutations []Mutation) (int, error) {
	session, err := u.engine.Begin(ctx)
	if err != nil {
		return 0, err
	}

	affected, err := session.Apply(ctx, mutations)
	if err != nil {
		if rollbackErr := session.Rollback(context.WithoutCancel(ctx)); rollbackErr != nil {
			u.observer.Error(ctx, logMsgTxRollbackFailed, logAttrError, rollbackErr.Error())
		} else {
			u.observer.Debug(ctx, logMsgImplicitTxRollback)
		}

		return 0, err
	}

	if err = session.Commit(ctx); err != nil {
		return 0, err
	}

	return affected, nil
}

func (u *UnitOfWork) stage(mutation Mutation) {
	u.mu.Lock()
	defer u.mu.Unlock()

	u.pending = append(u.pending, mutation)
	u.observer.RecordValue(context.Background(), MetricPendingChanges, float64(len(u.pending)), nil)
}

// pendingFor returns a copy of the pending mutations of one entity type. The lock must be held.
func (u *UnitOfWork) pendingFor(entityType string) []Mutation {
	var mutations []Mutation
	for _, m := range u.pending {
		if m.Entity.EntityType == entityType {
			mutations = append(mutations, m)
		}
	}

	return mutations
}

// reader returns the active session or the engine. The lock must be held.
func (u *UnitOfWork) reader() Reader {
	if u.state == TxActive && u.session != nil {
		return u.session
	}

	return u.engine
}

func (u *UnitOfWork) autoRollback(ctx context.Context, session Session) {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.state != TxActive || u.session != session {
		return
	}

	u.cancelCause = context.Cause(ctx)
	_ = u.rollbackLocked(ctx, session, StatusAutoRolledBack)
}

// rollbackLocked ends the transaction as rolled back even if the engine reports an error. The lock must be held.
func (u *UnitOfWork) rollbackLocked(ctx context.Context, session Session, status string) error {
	err := session.Rollback(context.WithoutCancel(ctx))

	u.session = nil
	u.state = TxRolledBack
	u.pending = nil
	u.observer.IncrementCounter(ctx, MetricTransactions, map[string]string{LabelStatus: status})

	if err != nil {
		u.observer.Error(ctx, logMsgTxRollbackFailed, logAttrError, err.Error())
		return err
	}

	if status == StatusAutoRolledBack {
		u.observer.Warn(ctx, logMsgTxAutoRolledBack)
	} else {
		u.observer.Debug(ctx, logMsgTxRolledBack)
	}

	return nil
}

func (u *UnitOfWork) invalidState(operation string) error {
	err := NewInvalidTransactionStateError(operation, u.state)
	if u.cancelCause != nil {
		return errors.Join(err, u.cancelCause)
	}

	return err
}
