package observable_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/AntonStoeckl/entitystore-go/library/shared/shell"
	"github.com/AntonStoeckl/entitystore-go/library/shared/shell/observable"
	"github.com/AntonStoeckl/entitystore-go/testutil/observability/testdoubles"
)

func Test_QueryWrapper_Handle_When_HandlerSucceeds_Then_ResultIsPassedThrough(t *testing.T) {
	// setup
	metrics := testdoubles.NewMetricsCollectorSpy(true)
	tracing := testdoubles.NewTracingCollectorSpy(true)
	wrapper := observable.NewQueryWrapper[testQuery, []string](
		queryHandlerStub{result: []string{"a", "b"}},
		observable.WithMetrics(metrics),
		observable.WithTracing(tracing),
	)

	// act
	result, err := wrapper.Handle(context.Background(), testQuery{})

	// assert
	assert.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, result)
	assert.True(t, metrics.HasDurationRecordForMetric(shell.QueryHandlerDurationMetric).
		WithLabel(shell.LogAttrQueryType, "TestQuery").
		WithStatus(shell.StatusSuccess).
		Assert())
	assert.True(t, tracing.HasFinishedSpan(shell.SpanNameQueryHandle, shell.StatusSuccess))
}

func Test_QueryWrapper_Handle_When_HandlerFails_Then_ErrorIsLogged(t *testing.T) {
	// setup
	spy := testdoubles.NewLogHandlerSpy(false)
	metrics := testdoubles.NewMetricsCollectorSpy(true)
	boom := errors.New("boom")
	wrapper := observable.NewQueryWrapper[testQuery, []string](
		queryHandlerStub{err: boom},
		observable.WithLogging(spy.Logger()),
		observable.WithMetrics(metrics),
	)

	// act
	_, err := wrapper.Handle(context.Background(), testQuery{})

	// assert
	assert.ErrorIs(t, err, boom)
	assert.True(t, metrics.HasCounterRecordForMetric(shell.QueryHandlerCallsMetric).WithStatus(shell.StatusError).Assert())
	assert.True(t, spy.HasLogWithMessage(slog.LevelError, shell.LogMsgQueryFailed).WithAttr(shell.LogAttrError, "boom").Assert())
}
