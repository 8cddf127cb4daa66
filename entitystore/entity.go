package entitystore

import (
	"github.com/google/uuid"
)

// Entity is a typed, identity-bearing record persisted by the store.
//
// Entities are value types (structs with value receivers). The identity returned by EntityID
// must be assigned before the entity is staged and must never change afterward.
type Entity interface {
	EntityType() string
	EntityID() uuid.UUID
}

// SoftDeletable entities are hidden from reads unless IncludeDeleted is requested.
type SoftDeletable interface {
	IsDeleted() bool
}

// UniqueConstrained entities declare values that must be unique within their entity type.
// The map key is the constraint name, e.g. "employee_id", the value is the constrained value.
// Empty values are not constrained.
type UniqueConstrained interface {
	UniqueKeys() map[string]string
}

// Reference is a non-owning association from one entity to another, resolved by lookup.
type Reference struct {
	Name       string
	EntityType string
	ID         uuid.UUID
}

// Referencing entities expose their relation references so that Include can resolve them.
// References with a zero ID are skipped.
type Referencing interface {
	References() []Reference
}

// RelationBinder returns a copy of the entity with the named relation populated.
// It is implemented by Referencing entity types that support Include.
type RelationBinder[T any] interface {
	BindRelation(name string, related Entity) T
}

// Ref is a shorthand for building a Reference.
func Ref(name, entityType string, id uuid.UUID) Reference {
	return Reference{Name: name, EntityType: entityType, ID: id}
}

func isDeleted(e Entity) bool {
	if sd, ok := e.(SoftDeletable); ok {
		return sd.IsDeleted()
	}

	return false
}

func uniqueKeysOf(e Entity) map[string]string {
	uc, ok := e.(UniqueConstrained)
	if !ok {
		return nil
	}

	keys := make(map[string]string)
	for name, val := range uc.UniqueKeys() {
		if val == "" {
			continue
		}
		keys[name] = val
	}

	if len(keys) == 0 {
		return nil
	}

	return keys
}
