package entitystore

// QueryOption configures a read through a Repository.
type QueryOption[T Entity] func(*query[T])

type query[T Entity] struct {
	where          []func(T) bool
	predicates     []FilterPredicate
	orderBy        []func(a, b T) bool
	includes       []string
	includeDeleted bool
	noTracking     bool
}

func buildQuery[T Entity](opts []QueryOption[T]) query[T] {
	q := query[T]{}
	for _, opt := range opts {
		opt(&q)
	}

	return q
}

// Where filters in-process. Several Where options are AND-combined.
func Where[T Entity](predicate func(T) bool) QueryOption[T] {
	return func(q *query[T]) {
		if predicate != nil {
			q.where = append(q.where, predicate)
		}
	}
}

// Matching filters by string attributes of the stored payload. The engine evaluates it.
func Matching[T Entity](predicates ...FilterPredicate) QueryOption[T] {
	return func(q *query[T]) {
		q.predicates = append(q.predicates, predicates...)
	}
}

// OrderBy replaces any previous ordering. The sort is stable.
func OrderBy[T Entity](less func(a, b T) bool) QueryOption[T] {
	return func(q *query[T]) {
		q.orderBy = []func(a, b T) bool{less}
	}
}

// ThenBy adds a tie-breaker after the previous orderings.
func ThenBy[T Entity](less func(a, b T) bool) QueryOption[T] {
	return func(q *query[T]) {
		q.orderBy = append(q.orderBy, less)
	}
}

// Include resolves the named relation references eagerly.
func Include[T Entity](relations ...string) QueryOption[T] {
	return func(q *query[T]) {
		q.includes = append(q.includes, relations...)
	}
}

// IncludeDeleted disables the soft-delete filter.
func IncludeDeleted[T Entity]() QueryOption[T] {
	return func(q *query[T]) {
		q.includeDeleted = true
	}
}

// AsNoTracking reads the store state only, ignoring the repository's pending writes.
func AsNoTracking[T Entity]() QueryOption[T] {
	return func(q *query[T]) {
		q.noTracking = true
	}
}

func (q query[T]) criteria(entityType string) Criteria {
	return Criteria{
		EntityType:     entityType,
		Predicates:     q.predicates,
		IncludeDeleted: q.includeDeleted,
	}
}

func (q query[T]) matches(item T) bool {
	for _, predicate := range q.where {
		if !predicate(item) {
			return false
		}
	}

	return true
}

func (q query[T]) less(a, b T) bool {
	for _, less := range q.orderBy {
		if less(a, b) {
			return true
		}
		if less(b, a) {
			return false
		}
	}

	return false
}
