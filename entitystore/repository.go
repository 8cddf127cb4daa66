package entitystore

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sort"
	"time"

	"github.com/google/uuid"
)

const (
	opGetByID   = "get_by_id"
	opList      = "list"
	opPagedList = "paged_list"
	opExists    = "exists"
	opGetOne    = "get_one"
	opCount     = "count"
	opQuery     = "query"
)

// Repository is the typed CRUD and query facade for one entity type, bound to a UnitOfWork.
//
// Add, AddRange, Update and Delete only stage mutations; nothing reaches the store before SaveChanges.
// Reads see this repository's own staged mutations unless AsNoTracking is requested.
type Repository[T Entity] struct {
	uow        *UnitOfWork
	entityType string
}

// EntityType is the stored type name of T.
func (r *Repository[T]) EntityType() string {
	return r.entityType
}

// Add stages an insert.
func (r *Repository[T]) Add(entity T) error {
	return r.stage(MutationInsert, entity)
}

// AddRange stages several inserts. Either all of them are staged or none.
func (r *Repository[T]) AddRange(entities ...T) error {
	mutations := make([]Mutation, 0, len(entities))
	for _, entity := range entities {
		storable, err := StorableEntityFrom(entity)
		if err != nil {
			return err
		}
		mutations = append(mutations, Mutation{Kind: MutationInsert, Entity: storable})
	}

	for _, m := range mutations {
		r.uow.stage(m)
	}

	return nil
}

// Update stages a full-record replace by identity.
// A missing identity fails with *NotFoundError when flushing.
func (r *Repository[T]) Update(entity T) error {
	return r.stage(MutationUpdate, entity)
}

// Delete stages a removal by identity.
// A missing identity fails with *NotFoundError when flushing.
// Soft-deletable entities are usually marked deleted and passed to Update instead.
func (r *Repository[T]) Delete(entity T) error {
	return r.stage(MutationDelete, entity)
}

// SaveChanges flushes the owning unit of work. See UnitOfWork.SaveChanges.
func (r *Repository[T]) SaveChanges(ctx context.Context) (int, error) {
	return r.uow.SaveChanges(ctx)
}

// GetByID returns the entity with the given identity; absent is (zero, false, nil).
func (r *Repository[T]) GetByID(ctx context.Context, id uuid.UUID, options ...QueryOption[T]) (T, bool, error) {
	var zero T

	q := buildQuery(options)
	criteria := q.criteria(r.entityType)
	criteria.IDs = []uuid.UUID{id}

	items, err := r.read(ctx, opGetByID, q, criteria, nil)
	if err != nil || len(items) == 0 {
		return zero, false, err
	}

	return items[0], true, nil
}

// List returns all matches. Without OrderBy, the order is ascending by identity and must not be relied upon.
func (r *Repository[T]) List(ctx context.Context, options ...QueryOption[T]) ([]T, error) {
	q := buildQuery(options)

	return r.read(ctx, opList, q, q.criteria(r.entityType), nil)
}

// PagedList returns one page of the matches. The request is normalized first, and TotalCount is
// counted on the filtered set before skip/take.
// Only Matching predicates reach the engine; Where, ordering and skip/take run in memory on
// every decoded match, so the cost grows with the matching set, not with the page size.
func (r *Repository[T]) PagedList(ctx context.Context, request PagedRequest, options ...QueryOption[T]) (PagedResult[T], error) {
	q := buildQuery(options)
	request = request.Normalize()

	var page PagedResult[T]
	_, err := r.read(ctx, opPagedList, q, q.criteria(r.entityType), func(items []T) []T {
		page = Paginate(items, request)
		return page.Items
	})
	if err != nil {
		return PagedResult[T]{}, err
	}

	return page, nil
}

// Exists reports whether any entity matches. See countOp for its cost.
func (r *Repository[T]) Exists(ctx context.Context, options ...QueryOption[T]) (bool, error) {
	count, err := r.countOp(ctx, opExists, options)

	return count > 0, err
}

// Count returns the number of matches. See countOp for its cost.
func (r *Repository[T]) Count(ctx context.Context, options ...QueryOption[T]) (int, error) {
	return r.countOp(ctx, opCount, options)
}

// GetOne returns the first match in the requested (or the deterministic store) order.
// Callers wanting a specific record must supply a uniquely identifying filter.
func (r *Repository[T]) GetOne(ctx context.Context, options ...QueryOption[T]) (T, bool, error) {
	var zero T

	q := buildQuery(options)
	items, err := r.read(ctx, opGetOne, q, q.criteria(r.entityType), func(items []T) []T {
		return items[:min(1, len(items))]
	})
	if err != nil || len(items) == 0 {
		return zero, false, err
	}

	return items[0], true, nil
}

// Query is the raw view of all records of T, soft-deleted ones included, with staged writes applied.
func (r *Repository[T]) Query(ctx context.Context) ([]T, error) {
	q := buildQuery([]QueryOption[T]{IncludeDeleted[T]()})

	return r.read(ctx, opQuery, q, q.criteria(r.entityType), nil)
}

// countOp decodes every match and counts in memory. Only Matching predicates are pushed down.
func (r *Repository[T]) countOp(ctx context.Context, operation string, options []QueryOption[T]) (int, error) {
	q := buildQuery(options)
	q.includes = nil
	q.orderBy = nil

	items, err := r.read(ctx, operation, q, q.criteria(r.entityType), nil)

	return len(items), err
}

func (r *Repository[T]) stage(kind MutationKind, entity T) error {
	storable, err := StorableEntityFrom(entity)
	if err != nil {
		return err
	}

	r.uow.stage(Mutation{Kind: kind, Entity: storable})

	return nil
}

// read runs the query pipeline: load → overlay pending → decode → filter → order → window → include.
func (r *Repository[T]) read(
	ctx context.Context,
	operation string,
	q query[T],
	criteria Criteria,
	window func([]T) []T,
) ([]T, error) {

	r.uow.mu.Lock()
	defer r.uow.mu.Unlock()

	observer := r.uow.observer
	labels := map[string]string{LabelEntityType: r.entityType, LabelOperation: operation}
	start := time.Now()
	ctx, span := observer.StartSpan(ctx, SpanNameQuery, labels)

	items, err := r.readLocked(ctx, q, criteria, window)

	duration := time.Since(start)
	status := StatusFromError(err)
	observer.RecordDuration(ctx, MetricQueryDuration, duration, withStatus(labels, status))
	observer.FinishSpan(span, status, nil)

	if err != nil {
		observer.Error(ctx, logMsgQueryFailed,
			logAttrEntityType, r.entityType,
			logAttrOperation, operation,
			logAttrError, err.Error())

		return nil, err
	}

	observer.Debug(ctx, logMsgQueryCompleted,
		logAttrEntityType, r.entityType,
		logAttrOperation, operation,
		logAttrResultCount, len(items),
		logAttrDurationMS, ToMilliseconds(duration))

	return items, nil
}

func (r *Repository[T]) readLocked(ctx context.Context, q query[T], criteria Criteria, window func([]T) []T) ([]T, error) {
	reader := r.uow.reader()

	records, err := reader.Load(ctx, criteria)
	if err != nil {
		return nil, err
	}

	if !q.noTracking {
		if pending := r.uow.pendingFor(r.entityType); len(pending) > 0 {
			if records, err = overlayPending(ctx, reader, criteria, records, pending); err != nil {
				return nil, err
			}
		}
	}

	items := make([]T, 0, len(records))
	for _, record := range records {
		item, decodeErr := decodeInto[T](record)
		if decodeErr != nil {
			return nil, decodeErr
		}

		if q.matches(item) {
			items = append(items, item)
		}
	}

	if len(q.orderBy) > 0 {
		sort.SliceStable(items, func(i, j int) bool {
			return q.less(items[i], items[j])
		})
	}

	if window != nil {
		items = window(items)
	}

	if len(q.includes) > 0 && len(items) > 0 {
		if err = r.resolveIncludes(ctx, reader, q.includes, items); err != nil {
			return nil, err
		}
	}

	return items, nil
}

// overlayPending applies staged mutations of one entity type, in stage order, onto store records.
func overlayPending(
	ctx context.Context,
	reader Reader,
	criteria Criteria,
	records StorableEntities,
	pending []Mutation,
) (StorableEntities, error) {

	visible := make(map[uuid.UUID]StorableEntity, len(records))
	exists := make(map[uuid.UUID]bool, len(records))
	for _, record := range records {
		visible[record.EntityID] = record
		exists[record.EntityID] = true
	}

	// Updates may target records the store filter excluded; only existing ones may become visible.
	var unknown []uuid.UUID
	for _, m := range pending {
		id := m.Entity.EntityID
		if m.Kind == MutationUpdate && !exists[id] && !slices.Contains(unknown, id) {
			unknown = append(unknown, id)
		}
	}

	if len(unknown) > 0 {
		found, err := reader.Load(ctx, criteria.WithoutFilters(unknown...))
		if err != nil {
			return nil, err
		}
		for _, record := range found {
			exists[record.EntityID] = true
		}
	}

	for _, m := range pending {
		id := m.Entity.EntityID

		switch m.Kind {
		case MutationInsert:
			exists[id] = true
		case MutationUpdate:
			if !exists[id] {
				continue
			}
		case MutationDelete:
			delete(visible, id)
			exists[id] = false
			continue
		}

		if criteria.Matches(m.Entity) {
			visible[id] = m.Entity
		} else {
			delete(visible, id)
		}
	}

	result := slices.Collect(maps.Values(visible))
	SortByID(result)

	return result, nil
}

type relationKey struct {
	entityType string
	id         uuid.UUID
}

func (r *Repository[T]) resolveIncludes(ctx context.Context, reader Reader, relations []string, items []T) error {
	for _, item := range items {
		_, isReferencing := any(item).(Referencing)
		_, isBinder := any(item).(RelationBinder[T])
		if !isReferencing || !isBinder {
			return errors.Join(ErrRelationNotSupported, fmt.Errorf("entity type %q", r.entityType))
		}
	}

	for _, relation := range relations {
		wanted := make(map[string][]uuid.UUID)
		for _, item := range items {
			for _, ref := range any(item).(Referencing).References() {
				if ref.Name != relation || ref.ID == uuid.Nil || slices.Contains(wanted[ref.EntityType], ref.ID) {
					continue
				}
				wanted[ref.EntityType] = append(wanted[ref.EntityType], ref.ID)
			}
		}

		related := make(map[relationKey]Entity)
		for entityType, ids := range wanted {
			records, err := reader.Load(ctx, Criteria{EntityType: entityType, IDs: ids, IncludeDeleted: true})
			if err != nil {
				return err
			}

			for _, record := range records {
				entity, err := r.uow.registry.Decode(record)
				if err != nil {
					return err
				}
				related[relationKey{entityType: entityType, id: record.EntityID}] = entity
			}
		}

		for i := range items {
			for _, ref := range any(items[i]).(Referencing).References() {
				if ref.Name != relation {
					continue
				}
				if entity, ok := related[relationKey{entityType: ref.EntityType, id: ref.ID}]; ok {
					items[i] = any(items[i]).(RelationBinder[T]).BindRelation(relation, entity)
				}
			}
		}
	}

	return nil
}

func withStatus(labels map[string]string, status string) map[string]string {
	withStatus := maps.Clone(labels)
	withStatus[LabelStatus] = status

	return withStatus
}
