package entitystore_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/AntonStoeckl/entitystore-go/entitystore"
)

func Test_GetConsistencyLevel(t *testing.T) {
	ctx := context.Background()

	assert.Equal(t, entitystore.StrongConsistency, entitystore.GetConsistencyLevel(ctx))
	assert.Equal(t, entitystore.EventualConsistency, entitystore.GetConsistencyLevel(entitystore.WithEventualConsistency(ctx)))
	assert.Equal(t, entitystore.StrongConsistency, entitystore.GetConsistencyLevel(entitystore.WithStrongConsistency(entitystore.WithEventualConsistency(ctx))))
	assert.Equal(t, "eventual", entitystore.EventualConsistency.String())
	assert.Equal(t, "unknown", entitystore.ConsistencyLevel(42).String())
}
