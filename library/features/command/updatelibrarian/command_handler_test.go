package updatelibrarian_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/entitystore-go/entitystore"
	"github.com/AntonStoeckl/entitystore-go/library/features/command/updatelibrarian"
	"github.com/AntonStoeckl/entitystore-go/library/shared/core"
	. "github.com/AntonStoeckl/entitystore-go/testutil/librarytest" //nolint:revive
)

func Test_CommandHandler_Handle_Success(t *testing.T) {
	// setup
	wrapper := CreateWrapperWithTestConfig(t)
	handler := updatelibrarian.NewCommandHandler(wrapper.UOWs)
	librarian := GivenLibrarian(t, wrapper, "E-1001")

	// act
	result := handler.Handle(context.Background(),
		updatelibrarian.BuildCommand(librarian.ID, "E-1001", "Grace Hopper", "grace@library.example", FakeClock))

	// assert
	require.True(t, result.IsSuccess, result.ErrorMessage)
	updated, _ := Load[core.Librarian](t, wrapper, librarian.ID)
	assert.Equal(t, "Grace Hopper", updated.Name)
	assert.Equal(t, librarian.HiredAt, updated.HiredAt)
}

func Test_CommandHandler_Handle_Error_LibrarianDoesNotExist(t *testing.T) {
	// setup
	wrapper := CreateWrapperWithTestConfig(t)
	handler := updatelibrarian.NewCommandHandler(wrapper.UOWs)
	existing := GivenLibrarian(t, wrapper, "E-1001")
	missingID := GivenUniqueID(t)

	// act
	result := handler.Handle(context.Background(),
		updatelibrarian.BuildCommand(missingID, "E-999", "Nobody", "", FakeClock))

	// assert
	assert.False(t, result.IsSuccess)
	assert.Equal(t, fmt.Sprintf("Librarian with ID '%s' was not found.", missingID), result.ErrorMessage)
	assert.Equal(t, []core.Librarian{existing}, All[core.Librarian](t, wrapper))
	assert.Empty(t, All[core.AuditLog](t, wrapper))
}

func Test_CommandHandler_Handle_Error_LibrarianWasDeleted(t *testing.T) {
	// setup
	wrapper := CreateWrapperWithTestConfig(t)
	handler := updatelibrarian.NewCommandHandler(wrapper.UOWs)
	librarian := GivenLibrarian(t, wrapper, "E-1001")

	// arrange
	librarian.Deleted = true
	uow := wrapper.NewUnitOfWork()
	require.NoError(t, entitystore.RepositoryFor[core.Librarian](uow).Update(librarian))
	_, err := uow.SaveChanges(context.Background())
	require.NoError(t, err)

	// act
	result := handler.Handle(context.Background(),
		updatelibrarian.BuildCommand(librarian.ID, "E-1001", "Revived", "", FakeClock))

	// assert
	assert.False(t, result.IsSuccess)
	assert.Equal(t, fmt.Sprintf("Librarian with ID '%s' was not found.", librarian.ID), result.ErrorMessage)
	stored, _ := Load[core.Librarian](t, wrapper, librarian.ID)
	assert.True(t, stored.Deleted)
	assert.Equal(t, librarian.Name, stored.Name)
	assert.Empty(t, All[core.AuditLog](t, wrapper))
}

func Test_CommandHandler_Handle_Error_EmployeeIDTakenByAnotherLibrarian(t *testing.T) {
	// setup
	wrapper := CreateWrapperWithTestConfig(t)
	handler := updatelibrarian.NewCommandHandler(wrapper.UOWs)
	GivenLibrarian(t, wrapper, "E-1001")
	other := GivenLibrarian(t, wrapper, "E-1002")

	// act
	result := handler.Handle(context.Background(),
		updatelibrarian.BuildCommand(other.ID, "E-1001", other.Name, other.Email, FakeClock))

	// assert
	assert.False(t, result.IsSuccess)
	assert.Equal(t, "Librarian with employee ID 'E-1001' already exists.", result.ErrorMessage)
	unchanged, _ := Load[core.Librarian](t, wrapper, other.ID)
	assert.Equal(t, "E-1002", unchanged.EmployeeID)
}
