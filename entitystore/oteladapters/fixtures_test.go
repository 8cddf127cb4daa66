package oteladapters_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/entitystore-go/entitystore"
	"github.com/AntonStoeckl/entitystore-go/entitystore/memengine"
)

type note struct {
	ID   uuid.UUID `json:"id"`
	Text string    `json:"text"`
}

func (n note) EntityType() string  { return "note" }
func (n note) EntityID() uuid.UUID { return n.ID }

func givenNote(text string) note {
	return note{ID: uuid.New(), Text: text}
}

func givenObservedUnitOfWork(t *testing.T, options ...entitystore.Option) *entitystore.UnitOfWork {
	t.Helper()

	engine, err := memengine.NewEngine()
	require.NoError(t, err)

	registry := entitystore.NewTypeRegistry()
	entitystore.MustRegisterEntityType[note](registry)
	options = append([]entitystore.Option{entitystore.WithTypeRegistry(registry)}, options...)

	return entitystore.NewUnitOfWork(engine, options...)
}
