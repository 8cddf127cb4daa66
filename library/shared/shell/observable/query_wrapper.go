package observable

import (
	"context"
	"time"

	"github.com/AntonStoeckl/entitystore-go/entitystore"
	"github.com/AntonStoeckl/entitystore-go/library/shared/shell"
)

// QueryWrapper instruments a query handler.
type QueryWrapper[Q shell.Query, R any] struct {
	coreHandler shell.QueryHandler[Q, R]
	queryType   string
	observer    entitystore.Observer
}

func NewQueryWrapper[Q shell.Query, R any](coreHandler shell.QueryHandler[Q, R], opts ...Option) *QueryWrapper[Q, R] {
	var zeroQuery Q

	return &QueryWrapper[Q, R]{
		coreHandler: coreHandler,
		queryType:   zeroQuery.QueryType(),
		observer:    buildObserver(opts),
	}
}

func (w *QueryWrapper[Q, R]) Handle(ctx context.Context, query Q) (R, error) {
	start := time.Now()
	ctx, span := shell.StartQuerySpan(ctx, w.observer, w.queryType)
	w.observer.Debug(ctx, shell.LogMsgQueryStarted, shell.LogAttrQueryType, w.queryType)

	result, err := w.coreHandler.Handle(ctx, query)

	duration := time.Since(start)
	status := shell.QueryStatus(err)
	shell.RecordQueryMetrics(ctx, w.observer, w.queryType, status, duration)

	if err != nil {
		shell.FinishSpan(w.observer, span, status, duration, err.Error())
		w.observer.Error(ctx, shell.LogMsgQueryFailed,
			shell.LogAttrQueryType, w.queryType,
			shell.LogAttrStatus, status,
			shell.LogAttrError, err.Error())

		return result, err
	}

	shell.FinishSpan(w.observer, span, status, duration, "")
	w.observer.Info(ctx, shell.LogMsgQueryCompleted,
		shell.LogAttrQueryType, w.queryType,
		shell.LogAttrDurationMS, entitystore.ToMilliseconds(duration))

	return result, nil
}
