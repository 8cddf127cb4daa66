package sqlstore

import (
	"errors"
	"maps"
	"slices"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"

	"github.com/AntonStoeckl/entitystore-go/entitystore"
)

func (s *Store) buildSelectQuery(criteria entitystore.Criteria) (sqlQueryString, error) {
	selectStmt := s.builder.
		From(s.tables.Entities).
		Select(colEntityType, colEntityID, colPayload, colDeleted).
		Where(goqu.C(colEntityType).Eq(criteria.EntityType)).
		Order(goqu.C(colEntityID).Asc())

	if !criteria.IncludeDeleted {
		selectStmt = selectStmt.Where(goqu.C(colDeleted).Eq(false))
	}

	if len(criteria.IDs) > 0 {
		ids := make([]string, 0, len(criteria.IDs))
		for _, id := range criteria.IDs {
			ids = append(ids, id.String())
		}
		selectStmt = selectStmt.Where(goqu.C(colEntityID).In(ids))
	}

	for _, predicate := range criteria.Predicates {
		expression, err := s.dialect.PayloadMatches(predicate.Key(), predicate.Val())
		if err != nil {
			return "", errors.Join(entitystore.ErrBuildingQueryFailed, err)
		}
		selectStmt = selectStmt.Where(expression)
	}

	return toSQL(selectStmt)
}

func (s *Store) buildInsertEntityQuery(record entitystore.StorableEntity) (sqlQueryString, error) {
	insertStmt := s.builder.
		Insert(s.tables.Entities).
		Cols(colEntityType, colEntityID, colPayload, colDeleted).
		Vals(goqu.Vals{
			record.EntityType,
			record.EntityID.String(),
			s.dialect.PayloadValue(record.PayloadJSON),
			record.Deleted,
		})

	return toSQL(insertStmt)
}

func (s *Store) buildUpdateEntityQuery(record entitystore.StorableEntity) (sqlQueryString, error) {
	updateStmt := s.builder.
		Update(s.tables.Entities).
		Set(goqu.Record{
			colPayload:   s.dialect.PayloadValue(record.PayloadJSON),
			colDeleted:   record.Deleted,
			colUpdatedAt: goqu.L("CURRENT_TIMESTAMP"),
		}).
		Where(goqu.Ex{colEntityType: record.EntityType, colEntityID: record.EntityID.String()})

	return toSQL(updateStmt)
}

func (s *Store) buildDeleteEntityQuery(entityType string, id uuid.UUID) (sqlQueryString, error) {
	deleteStmt := s.builder.
		Delete(s.tables.Entities).
		Where(goqu.Ex{colEntityType: entityType, colEntityID: id.String()})

	return toSQL(deleteStmt)
}

func (s *Store) buildDeleteUniqueKeysQuery(entityType string, id uuid.UUID) (sqlQueryString, error) {
	deleteStmt := s.builder.
		Delete(s.tables.UniqueKeys).
		Where(goqu.Ex{colEntityType: entityType, colEntityID: id.String()})

	return toSQL(deleteStmt)
}

func (s *Store) buildInsertUniqueKeyQuery(record entitystore.StorableEntity, constraint, value string) (sqlQueryString, error) {
	insertStmt := s.builder.
		Insert(s.tables.UniqueKeys).
		Cols(colEntityType, colConstraintName, colKeyValue, colEntityID).
		Vals(goqu.Vals{record.EntityType, constraint, value, record.EntityID.String()})

	return toSQL(insertStmt)
}

// sortedConstraints makes the insert order of unique key rows deterministic.
func sortedConstraints(uniqueKeys map[string]string) []string {
	return slices.Sorted(maps.Keys(uniqueKeys))
}

type sqlStatement interface {
	ToSQL() (string, []any, error)
}

func toSQL(stmt sqlStatement) (sqlQueryString, error) {
	sqlQuery, _, err := stmt.ToSQL()
	if err != nil {
		return "", errors.Join(entitystore.ErrBuildingQueryFailed, err)
	}

	return sqlQuery, nil
}
