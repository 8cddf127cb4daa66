package entitystore

import (
	"context"
)

// MutationKind is the kind of staged change.
type MutationKind int

const (
	MutationInsert MutationKind = iota + 1
	MutationUpdate
	MutationDelete
)

func (k MutationKind) String() string {
	switch k {
	case MutationInsert:
		return "insert"
	case MutationUpdate:
		return "update"
	case MutationDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// Mutation is one staged change, handed to an engine in stage order when flushing.
type Mutation struct {
	Kind   MutationKind
	Entity StorableEntity
}

// Reader loads the records selected by a Criteria, in ascending EntityID order.
type Reader interface {
	Load(ctx context.Context, criteria Criteria) (StorableEntities, error)
}

// Session is one engine transaction.
//
// Apply is all-or-nothing: when any mutation fails, none of the batch is visible afterward.
// Update and Delete of a missing identity fail with *NotFoundError, uniqueness violations fail with
// *ConstraintViolationError. Apply returns the number of affected records.
type Session interface {
	Reader
	Apply(ctx context.Context, mutations []Mutation) (int, error)
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Engine is a backing store. Reads outside a transaction go through the Engine's Load,
// everything else through a Session. Engines are safe for concurrent use, Sessions are not.
type Engine interface {
	Reader
	Begin(ctx context.Context) (Session, error)
}
