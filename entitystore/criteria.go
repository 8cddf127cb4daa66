package entitystore

import (
	"bytes"
	"slices"

	"github.com/google/uuid"
)

type FilterKeyString = string
type FilterValString = string

/***** FilterPredicate *****/

// FilterPredicate is an equality predicate on a top-level string attribute of the JSON payload.
// Engines push it down into the store, e.g. as JSONB containment in PostgreSQL.
type FilterPredicate struct {
	key FilterKeyString
	val FilterValString
}

// P builds a FilterPredicate.
func P(key FilterKeyString, val FilterValString) FilterPredicate {
	return FilterPredicate{key: key, val: val}
}

func (fp FilterPredicate) Key() FilterKeyString {
	return fp.key
}

func (fp FilterPredicate) Val() FilterValString {
	return fp.val
}

/***** Criteria *****/

// Criteria is what an engine needs to select the records of one entity type.
// All parts are AND-combined. Records are always returned in ascending EntityID order.
type Criteria struct {
	EntityType     string
	IDs            []uuid.UUID
	Predicates     []FilterPredicate
	IncludeDeleted bool
}

// Matches evaluates the Criteria against a single record in-process.
// It is used by the in-memory engine and to overlay pending writes onto store results.
func (c Criteria) Matches(s StorableEntity) bool {
	if s.EntityType != c.EntityType {
		return false
	}

	if s.Deleted && !c.IncludeDeleted {
		return false
	}

	if len(c.IDs) > 0 && !slices.Contains(c.IDs, s.EntityID) {
		return false
	}

	if len(c.Predicates) == 0 {
		return true
	}

	var attributes map[string]any
	if err := payloadJSON.Unmarshal(s.PayloadJSON, &attributes); err != nil {
		return false
	}

	for _, predicate := range c.Predicates {
		val, ok := attributes[predicate.Key()].(string)
		if !ok || val != predicate.Val() {
			return false
		}
	}

	return true
}

// WithoutFilters returns a Criteria that only selects by entity type and ids, including soft-deleted records.
func (c Criteria) WithoutFilters(ids ...uuid.UUID) Criteria {
	return Criteria{EntityType: c.EntityType, IDs: ids, IncludeDeleted: true}
}

// CompareIDs orders identities the way all engines return them: byte-wise ascending.
func CompareIDs(a, b uuid.UUID) int {
	return bytes.Compare(a[:], b[:])
}

// SortByID sorts records into the deterministic store order.
func SortByID(records StorableEntities) {
	slices.SortFunc(records, func(a, b StorableEntity) int {
		return CompareIDs(a.EntityID, b.EntityID)
	})
}
