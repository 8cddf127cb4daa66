package entitystore_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/entitystore-go/entitystore"
)

func Test_TypeRegistry_Decode_When_TypeIsRegistered(t *testing.T) {
	// setup
	registry := entitystore.NewTypeRegistry()
	require.NoError(t, entitystore.RegisterEntityType[gadget](registry))

	// arrange
	g := gadget{ID: uuid.Must(uuid.NewV7()), Label: "lamp"}
	s, err := entitystore.StorableEntityFrom(g)
	require.NoError(t, err)

	// act
	decoded, err := registry.Decode(s)

	// assert
	require.NoError(t, err)
	assert.Equal(t, g, decoded)
	assert.True(t, registry.IsRegistered(gadgetEntityType))
}

func Test_TypeRegistry_Decode_When_TypeIsUnknown(t *testing.T) {
	// setup
	registry := entitystore.NewTypeRegistry()

	// act
	_, err := registry.Decode(entitystore.StorableEntity{EntityType: "Unknown", PayloadJSON: []byte(`{}`)})

	// assert
	assert.ErrorIs(t, err, entitystore.ErrUnknownEntityType)
}

func Test_TypeRegistry_Register_When_TypeIsRegisteredTwice(t *testing.T) {
	// setup
	registry := entitystore.NewTypeRegistry()
	require.NoError(t, entitystore.RegisterEntityType[gadget](registry))

	// act
	err := entitystore.RegisterEntityType[gadget](registry)

	// assert
	assert.ErrorIs(t, err, entitystore.ErrEntityTypeAlreadyRegistered)
	assert.Panics(t, func() { entitystore.MustRegisterEntityType[gadget](registry) })
}
