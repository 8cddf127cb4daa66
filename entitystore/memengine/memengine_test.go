package memengine_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/entitystore-go/entitystore"
	"github.com/AntonStoeckl/entitystore-go/entitystore/memengine"
	"github.com/AntonStoeckl/entitystore-go/testutil/observability/testdoubles"
)

const thingType = "Thing"

func givenRecord(t *testing.T, name string, uniqueName bool) entitystore.StorableEntity {
	t.Helper()

	var keys map[string]string
	if uniqueName {
		keys = map[string]string{"name": name}
	}

	record, err := entitystore.BuildStorableEntity(thingType, uuid.Must(uuid.NewV7()), []byte(`{"name":"`+name+`"}`), false, keys)
	require.NoError(t, err, "error in arranging test data")

	return record
}

func insert(records ...entitystore.StorableEntity) []entitystore.Mutation {
	mutations := make([]entitystore.Mutation, 0, len(records))
	for _, r := range records {
		mutations = append(mutations, entitystore.Mutation{Kind: entitystore.MutationInsert, Entity: r})
	}

	return mutations
}

func givenCommitted(t *testing.T, engine *memengine.Engine, mutations []entitystore.Mutation) {
	t.Helper()

	session, err := engine.Begin(t.Context())
	require.NoError(t, err)
	_, err = session.Apply(t.Context(), mutations)
	require.NoError(t, err)
	require.NoError(t, session.Commit(t.Context()))
}

func Test_Engine_Load_ReturnsRecordsInIDOrder(t *testing.T) {
	// setup
	engine, err := memengine.NewEngine()
	require.NoError(t, err)
	records := []entitystore.StorableEntity{givenRecord(t, "c", false), givenRecord(t, "a", false), givenRecord(t, "b", false)}
	givenCommitted(t, engine, insert(records[2], records[0], records[1]))

	// act
	loaded, err := engine.Load(t.Context(), entitystore.Criteria{EntityType: thingType})

	// assert
	require.NoError(t, err)
	require.Len(t, loaded, 3)
	for i := 1; i < len(loaded); i++ {
		assert.Negative(t, entitystore.CompareIDs(loaded[i-1].EntityID, loaded[i].EntityID))
	}
}

func Test_Session_Load_SeesOwnWritesOnly(t *testing.T) {
	// setup
	ctx := t.Context()
	engine, err := memengine.NewEngine()
	require.NoError(t, err)
	writer, err := engine.Begin(ctx)
	require.NoError(t, err)
	other, err := engine.Begin(ctx)
	require.NoError(t, err)
	criteria := entitystore.Criteria{EntityType: thingType}

	// arrange
	_, err = writer.Apply(ctx, insert(givenRecord(t, "a", false)))
	require.NoError(t, err)

	// act
	own, ownErr := writer.Load(ctx, criteria)
	foreign, foreignErr := other.Load(ctx, criteria)
	committed, committedErr := engine.Load(ctx, criteria)

	// assert
	require.NoError(t, ownErr)
	require.NoError(t, foreignErr)
	require.NoError(t, committedErr)
	assert.Len(t, own, 1)
	assert.Empty(t, foreign)
	assert.Empty(t, committed)
}

func Test_Session_Apply_When_BatchFails_LeavesSessionUntouched(t *testing.T) {
	// setup
	ctx := t.Context()
	engine, err := memengine.NewEngine()
	require.NoError(t, err)
	session, err := engine.Begin(ctx)
	require.NoError(t, err)
	missing := givenRecord(t, "ghost", false)

	// act
	_, err = session.Apply(ctx, []entitystore.Mutation{
		{Kind: entitystore.MutationInsert, Entity: givenRecord(t, "a", true)},
		{Kind: entitystore.MutationUpdate, Entity: missing},
	})

	// assert
	assert.True(t, entitystore.IsNotFound(err))
	loaded, loadErr := session.Load(ctx, entitystore.Criteria{EntityType: thingType})
	require.NoError(t, loadErr)
	assert.Empty(t, loaded)

	_, err = session.Apply(ctx, insert(givenRecord(t, "a", true)))
	assert.NoError(t, err, "the unique value of the failed batch must not stay reserved")
}

func Test_Session_Apply_When_IdentityIsInsertedTwice(t *testing.T) {
	// setup
	ctx := t.Context()
	engine, err := memengine.NewEngine()
	require.NoError(t, err)
	record := givenRecord(t, "a", false)
	givenCommitted(t, engine, insert(record))
	session, err := engine.Begin(ctx)
	require.NoError(t, err)

	// act
	_, err = session.Apply(ctx, insert(record))

	// assert
	cv, ok := entitystore.AsConstraintViolation(err)
	require.True(t, ok)
	assert.Equal(t, "primary_key", cv.Constraint)
}

func Test_Session_Apply_When_UniqueValueChanges_ReleasesTheOldOne(t *testing.T) {
	// setup
	ctx := t.Context()
	engine, err := memengine.NewEngine()
	require.NoError(t, err)
	record := givenRecord(t, "a", true)
	givenCommitted(t, engine, insert(record))

	// arrange
	renamed := record.Clone()
	renamed.UniqueKeys = map[string]string{"name": "b"}
	givenCommitted(t, engine, []entitystore.Mutation{{Kind: entitystore.MutationUpdate, Entity: renamed}})

	// act
	session, err := engine.Begin(ctx)
	require.NoError(t, err)
	_, err = session.Apply(ctx, insert(givenRecord(t, "a", true)))

	// assert
	assert.NoError(t, err)
}

func Test_Session_Commit_When_ContextIsCanceled(t *testing.T) {
	// setup
	engine, err := memengine.NewEngine()
	require.NoError(t, err)
	session, err := engine.Begin(t.Context())
	require.NoError(t, err)
	_, err = session.Apply(t.Context(), insert(givenRecord(t, "a", true)))
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	// act
	err = session.Commit(ctx)

	// assert
	assert.ErrorIs(t, err, entitystore.ErrCommitTransactionFailed)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, engine.Len(thingType))
	assert.ErrorIs(t, session.Rollback(t.Context()), entitystore.ErrSessionFinished)
}

func Test_Session_When_Finished(t *testing.T) {
	// setup
	ctx := t.Context()
	engine, err := memengine.NewEngine()
	require.NoError(t, err)
	session, err := engine.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, session.Rollback(ctx))

	// act
	_, loadErr := session.Load(ctx, entitystore.Criteria{EntityType: thingType})
	_, applyErr := session.Apply(ctx, insert(givenRecord(t, "a", false)))
	commitErr := session.Commit(ctx)

	// assert
	assert.ErrorIs(t, loadErr, entitystore.ErrSessionFinished)
	assert.ErrorIs(t, applyErr, entitystore.ErrSessionFinished)
	assert.ErrorIs(t, commitErr, entitystore.ErrSessionFinished)
}

func Test_Engine_WithObservability(t *testing.T) {
	// setup
	ctx := t.Context()
	logSpy := testdoubles.NewLogHandlerSpy(false)
	metricsSpy := testdoubles.NewMetricsCollectorSpy(true)
	tracingSpy := testdoubles.NewTracingCollectorSpy(true)
	engine, err := memengine.NewEngine(
		memengine.WithLogger(slog.New(logSpy)),
		memengine.WithMetrics(metricsSpy),
		memengine.WithTracing(tracingSpy),
	)
	require.NoError(t, err)
	record := givenRecord(t, "a", true)
	givenCommitted(t, engine, insert(record))

	// act
	session, err := engine.Begin(ctx)
	require.NoError(t, err)
	_, err = session.Apply(ctx, insert(givenRecord(t, "a", true)))
	require.Error(t, err)
	_, err = engine.Load(ctx, entitystore.Criteria{EntityType: thingType})
	require.NoError(t, err)

	// assert
	assert.True(t, logSpy.HasLog(slog.LevelDebug, "session committed"))
	assert.True(t, logSpy.HasLogWithMessage(slog.LevelInfo, "constraint violation detected").
		WithAttr("constraint", "name").
		Assert())
	assert.True(t, logSpy.HasLogWithMessage(slog.LevelDebug, "query completed").WithDurationMS().Assert())
	assert.True(t, metricsSpy.HasCounterRecordForMetric(entitystore.MetricConstraintViolations).
		WithLabel(entitystore.LabelEngine, "memory").
		Assert())
	assert.True(t, metricsSpy.HasDurationRecordForMetric(entitystore.MetricQueryDuration).
		WithLabel(entitystore.LabelEntityType, thingType).
		Assert())
	assert.True(t, tracingSpy.HasFinishedSpan("memengine.apply", entitystore.StatusConstraintViolation))
}
