package entitystore_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/AntonStoeckl/entitystore-go/entitystore"
)

func Test_Result_Success(t *testing.T) {
	r := entitystore.Success()

	assert.True(t, r.IsSuccess)
	assert.False(t, r.IsFailure())
	assert.Empty(t, r.ErrorMessage)
	assert.Equal(t, "success", r.String())
}

func Test_Result_Failure(t *testing.T) {
	r := entitystore.Failure("Librarian with employee ID 'E-1' already exists.")

	assert.False(t, r.IsSuccess)
	assert.True(t, r.IsFailure())
	assert.Equal(t, "Librarian with employee ID 'E-1' already exists.", r.ErrorMessage)
}

func Test_Result_Failure_When_MessageIsEmpty(t *testing.T) {
	r := entitystore.Failure("")

	assert.False(t, r.IsSuccess)
	assert.NotEmpty(t, r.ErrorMessage)
}
