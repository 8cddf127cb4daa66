package entitystore_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/entitystore-go/entitystore"
	"github.com/AntonStoeckl/entitystore-go/entitystore/memengine"
)

const (
	widgetEntityType = "Widget"
	gadgetEntityType = "Gadget"
)

type widget struct {
	ID       uuid.UUID `json:"id"`
	Code     string    `json:"code"`
	Name     string    `json:"name"`
	Rank     int       `json:"rank"`
	GadgetID uuid.UUID `json:"gadget_id"`
	Deleted  bool      `json:"deleted"`
	Gadget   *gadget   `json:"-"`
}

func (w widget) EntityType() string  { return widgetEntityType }
func (w widget) EntityID() uuid.UUID { return w.ID }
func (w widget) IsDeleted() bool     { return w.Deleted }

func (w widget) UniqueKeys() map[string]string {
	return map[string]string{"code": w.Code}
}

func (w widget) References() []entitystore.Reference {
	return []entitystore.Reference{entitystore.Ref("gadget", gadgetEntityType, w.GadgetID)}
}

func (w widget) BindRelation(name string, related entitystore.Entity) widget {
	if g, ok := related.(gadget); ok && name == "gadget" {
		w.Gadget = &g
	}

	return w
}

type gadget struct {
	ID    uuid.UUID `json:"id"`
	Label string    `json:"label"`
}

func (g gadget) EntityType() string  { return gadgetEntityType }
func (g gadget) EntityID() uuid.UUID { return g.ID }

func givenWidget(code, name string, rank int) widget {
	return widget{ID: uuid.Must(uuid.NewV7()), Code: code, Name: name, Rank: rank}
}

func givenEngine(t *testing.T) *memengine.Engine {
	engine, err := memengine.NewEngine()
	require.NoError(t, err, "error in arranging test engine")

	return engine
}

func givenUnitOfWork(engine entitystore.Engine, options ...entitystore.Option) *entitystore.UnitOfWork {
	options = append([]entitystore.Option{entitystore.WithTypeRegistry(entitystore.NewTypeRegistry())}, options...)

	return entitystore.NewUnitOfWork(engine, options...)
}

func givenPersistedWidgets(t *testing.T, engine entitystore.Engine, widgets ...widget) {
	uow := givenUnitOfWork(engine)
	require.NoError(t, entitystore.RepositoryFor[widget](uow).AddRange(widgets...), "error in arranging test data")
	_, err := uow.SaveChanges(t.Context())
	require.NoError(t, err, "error in arranging test data")
}

func givenPersistedGadget(t *testing.T, engine entitystore.Engine, label string) gadget {
	g := gadget{ID: uuid.Must(uuid.NewV7()), Label: label}
	uow := givenUnitOfWork(engine)
	require.NoError(t, entitystore.RepositoryFor[gadget](uow).Add(g), "error in arranging test data")
	_, err := uow.SaveChanges(t.Context())
	require.NoError(t, err, "error in arranging test data")

	return g
}
