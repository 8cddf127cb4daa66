package sqliteengine_test

import (
	"database/sql"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/entitystore-go/entitystore"
	"github.com/AntonStoeckl/entitystore-go/entitystore/sqliteengine"
	"github.com/AntonStoeckl/entitystore-go/testutil/observability/testdoubles"
)

type member struct {
	ID      uuid.UUID `json:"id"`
	Email   string    `json:"email"`
	Name    string    `json:"name"`
	Deleted bool      `json:"deleted"`
}

func (m member) EntityType() string  { return "Member" }
func (m member) EntityID() uuid.UUID { return m.ID }
func (m member) IsDeleted() bool     { return m.Deleted }

func (m member) UniqueKeys() map[string]string {
	return map[string]string{"email": m.Email}
}

func givenMember(email, name string) member {
	return member{ID: uuid.Must(uuid.NewV7()), Email: email, Name: name}
}

func givenDatabase(t *testing.T) *sql.DB {
	db, err := sqliteengine.Open(filepath.Join(t.TempDir(), "library.db"))
	require.NoError(t, err, "error opening sqlite database in test setup")
	t.Cleanup(func() { _ = db.Close() })

	applied, err := sqliteengine.Migrate(t.Context(), db)
	require.NoError(t, err, "error migrating sqlite database in test setup")
	require.Equal(t, 1, applied)

	return db
}

func givenEngine(t *testing.T, options ...sqliteengine.Option) *sqliteengine.Engine {
	engine, err := sqliteengine.NewEngineFromSQLDB(givenDatabase(t), options...)
	require.NoError(t, err, "error creating engine in test setup")

	return engine
}

func newUnitOfWork(engine entitystore.Engine) *entitystore.UnitOfWork {
	return entitystore.NewUnitOfWork(engine, entitystore.WithTypeRegistry(entitystore.NewTypeRegistry()))
}

func Test_FactoryFunctions_NewEngine_ShouldFail_WithNilDatabaseConnection(t *testing.T) {
	// act
	_, sqlErr := sqliteengine.NewEngineFromSQLDB(nil)
	_, sqlxErr := sqliteengine.NewEngineFromSQLX(nil)

	// assert
	assert.ErrorIs(t, sqlErr, entitystore.ErrNilDatabaseConnection)
	assert.ErrorIs(t, sqlxErr, entitystore.ErrNilDatabaseConnection)
}

func Test_FactoryFunctions_NewEngine_ShouldFail_WithEmptyTableName(t *testing.T) {
	// act
	_, err := sqliteengine.NewEngineFromSQLDB(givenDatabase(t), sqliteengine.WithTableNames("entities", ""))

	// assert
	assert.ErrorIs(t, err, entitystore.ErrEmptyTableNameSupplied)
}

func Test_Migrate_When_AlreadyApplied(t *testing.T) {
	// setup
	db := givenDatabase(t)

	// act
	applied, err := sqliteengine.Migrate(t.Context(), db)

	// assert
	require.NoError(t, err)
	assert.Zero(t, applied)
}

func Test_Engine_RoundTrip_WithFiltersAndSoftDelete(t *testing.T) {
	// setup
	ctx := t.Context()
	engine := givenEngine(t)
	uow := newUnitOfWork(engine)
	members := entitystore.RepositoryFor[member](uow)
	ada := givenMember("ada@example.com", "Ada")
	grace := givenMember("grace@example.com", "Grace")
	gone := givenMember("gone@example.com", "Gone")
	gone.Deleted = true

	// arrange
	require.NoError(t, members.AddRange(ada, grace, gone))
	_, err := uow.SaveChanges(ctx)
	require.NoError(t, err)

	// act
	reader := entitystore.RepositoryFor[member](newUnitOfWork(engine))
	all, allErr := reader.List(ctx)
	withDeleted, withDeletedErr := reader.Query(ctx)
	byEmail, found, byEmailErr := reader.GetOne(ctx, entitystore.Matching[member](entitystore.P("email", "grace@example.com")))

	// assert
	require.NoError(t, allErr)
	require.NoError(t, withDeletedErr)
	require.NoError(t, byEmailErr)
	assert.Len(t, all, 2)
	assert.Len(t, withDeleted, 3)
	assert.True(t, found)
	assert.Equal(t, grace, byEmail)
}

func Test_Engine_UncommittedWrites_AreIsolated(t *testing.T) {
	// setup
	ctx := t.Context()
	engine := givenEngine(t)
	writer := newUnitOfWork(engine)
	reader := newUnitOfWork(engine)
	ada := givenMember("ada@example.com", "Ada")

	// arrange
	require.NoError(t, writer.BeginTransaction(ctx))
	require.NoError(t, entitystore.RepositoryFor[member](writer).Add(ada))
	_, err := writer.SaveChanges(ctx)
	require.NoError(t, err)

	// act
	_, ownFound, ownErr := entitystore.RepositoryFor[member](writer).GetByID(ctx, ada.ID)
	_, foreignFound, foreignErr := entitystore.RepositoryFor[member](reader).GetByID(ctx, ada.ID)
	require.NoError(t, writer.CommitTransaction(ctx))
	_, committedFound, committedErr := entitystore.RepositoryFor[member](reader).GetByID(ctx, ada.ID)

	// assert
	require.NoError(t, ownErr)
	require.NoError(t, foreignErr)
	require.NoError(t, committedErr)
	assert.True(t, ownFound)
	assert.False(t, foreignFound)
	assert.True(t, committedFound)
}

func Test_Engine_Flush_When_UniqueValueIsTaken(t *testing.T) {
	// setup
	ctx := t.Context()
	metricsSpy := testdoubles.NewMetricsCollectorSpy(true)
	engine := givenEngine(t, sqliteengine.WithMetrics(metricsSpy))
	first := newUnitOfWork(engine)
	second := newUnitOfWork(engine)

	// arrange
	require.NoError(t, entitystore.RepositoryFor[member](first).Add(givenMember("ada@example.com", "Ada")))
	_, err := first.SaveChanges(ctx)
	require.NoError(t, err)
	require.NoError(t, entitystore.RepositoryFor[member](second).Add(givenMember("ada@example.com", "Ada Lovelace")))

	// act
	_, err = second.SaveChanges(ctx)

	// assert
	cv, ok := entitystore.AsConstraintViolation(err)
	require.True(t, ok)
	assert.Equal(t, "email", cv.Constraint)
	assert.Equal(t, "ada@example.com", cv.Value)
	assert.True(t, metricsSpy.HasCounterRecordForMetric(entitystore.MetricConstraintViolations).
		WithLabel(entitystore.LabelEngine, "sqlite").
		Assert())
}

func Test_Engine_ConcurrentTransactions_When_BothClaimTheSameUniqueValue(t *testing.T) {
	// setup
	ctx := t.Context()
	engine := givenEngine(t)
	errs := make([]error, 2)

	claim := func(uow *entitystore.UnitOfWork, name string) error {
		if err := uow.BeginTransaction(ctx); err != nil {
			return err
		}

		members := entitystore.RepositoryFor[member](uow)
		if _, err := members.Exists(ctx, entitystore.Matching[member](entitystore.P("email", "ada@example.com"))); err != nil {
			_ = uow.RollbackTransaction(ctx)
			return err
		}

		if err := members.Add(givenMember("ada@example.com", name)); err != nil {
			_ = uow.RollbackTransaction(ctx)
			return err
		}

		if _, err := uow.SaveChanges(ctx); err != nil {
			_ = uow.RollbackTransaction(ctx)
			return err
		}

		return uow.CommitTransaction(ctx)
	}

	// act
	var wg sync.WaitGroup
	for i, name := range []string{"Ada", "Ada Lovelace"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = claim(newUnitOfWork(engine), name)
		}()
	}
	wg.Wait()

	// assert
	var committed, violated int
	for _, err := range errs {
		switch {
		case err == nil:
			committed++
		case entitystore.IsConstraintViolation(err):
			violated++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, committed)
	assert.Equal(t, 1, violated)

	all, err := entitystore.RepositoryFor[member](newUnitOfWork(engine)).List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func Test_Engine_Flush_When_UpdateTargetsMissingIdentity_RollsBackTheBatch(t *testing.T) {
	// setup
	ctx := t.Context()
	engine := givenEngine(t)
	uow := newUnitOfWork(engine)
	members := entitystore.RepositoryFor[member](uow)
	ada := givenMember("ada@example.com", "Ada")

	// arrange
	require.NoError(t, uow.BeginTransaction(ctx))
	require.NoError(t, members.Add(ada))
	require.NoError(t, members.Update(givenMember("ghost@example.com", "Ghost")))

	// act
	_, err := uow.SaveChanges(ctx)

	// assert
	assert.True(t, entitystore.IsNotFound(err))
	_, found, getErr := members.GetByID(ctx, ada.ID, entitystore.AsNoTracking[member]())
	require.NoError(t, getErr)
	assert.False(t, found, "the failed batch must not be visible in the transaction")
	require.NoError(t, uow.RollbackTransaction(ctx))
}

func Test_Engine_Update_ReleasesTheOldUniqueValue(t *testing.T) {
	// setup
	ctx := t.Context()
	engine := givenEngine(t)
	uow := newUnitOfWork(engine)
	members := entitystore.RepositoryFor[member](uow)
	ada := givenMember("ada@example.com", "Ada")

	// arrange
	require.NoError(t, members.Add(ada))
	_, err := uow.SaveChanges(ctx)
	require.NoError(t, err)
	ada.Email = "countess@example.com"
	require.NoError(t, members.Update(ada))
	_, err = uow.SaveChanges(ctx)
	require.NoError(t, err)

	// act
	require.NoError(t, members.Add(givenMember("ada@example.com", "Another Ada")))
	_, err = uow.SaveChanges(ctx)

	// assert
	assert.NoError(t, err)
}

func Test_Engine_Delete_RemovesEntity(t *testing.T) {
	// setup
	ctx := t.Context()
	engine := givenEngine(t)
	uow := newUnitOfWork(engine)
	members := entitystore.RepositoryFor[member](uow)
	ada := givenMember("ada@example.com", "Ada")
	require.NoError(t, members.Add(ada))
	_, err := uow.SaveChanges(ctx)
	require.NoError(t, err)

	// act
	require.NoError(t, members.Delete(ada))
	_, err = uow.SaveChanges(ctx)

	// assert
	require.NoError(t, err)
	count, countErr := members.Count(ctx, entitystore.IncludeDeleted[member]())
	require.NoError(t, countErr)
	assert.Zero(t, count)

	require.NoError(t, members.Delete(ada))
	_, err = uow.SaveChanges(ctx)
	assert.True(t, entitystore.IsNotFound(err))
}

func Test_Engine_FromSQLX_WithLogger(t *testing.T) {
	// setup
	ctx := t.Context()
	logSpy := testdoubles.NewLogHandlerSpy(false)
	engine, err := sqliteengine.NewEngineFromSQLX(sqlx.NewDb(givenDatabase(t), "sqlite3"), sqliteengine.WithLogger(slog.New(logSpy)))
	require.NoError(t, err)

	// act
	_, err = engine.Load(ctx, entitystore.Criteria{EntityType: "Member"})

	// assert
	require.NoError(t, err)
	assert.True(t, logSpy.HasLogWithMessage(slog.LevelDebug, "executed sql for: query").WithDurationMS().Assert())
	assert.True(t, logSpy.HasLogWithMessage(slog.LevelDebug, "entitystore operation: query completed").
		WithAttr("entity_type", "Member").
		Assert())
}
