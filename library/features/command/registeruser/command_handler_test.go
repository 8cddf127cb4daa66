package registeruser_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/AntonStoeckl/entitystore-go/library/features/command/registeruser"
	"github.com/AntonStoeckl/entitystore-go/library/shared/core"
	. "github.com/AntonStoeckl/entitystore-go/testutil/librarytest" //nolint:revive
)

func Test_CommandHandler_Handle_Success(t *testing.T) {
	// setup
	wrapper := CreateWrapperWithTestConfig(t)
	handler := registeruser.NewCommandHandler(wrapper.UOWs, registeruser.WithHashCost(bcrypt.MinCost))
	userID := GivenUniqueID(t)

	// act
	result := handler.Handle(context.Background(),
		registeruser.BuildCommand(userID, "grace", "correct horse battery", "librarian", FakeClock))

	// assert
	require.True(t, result.IsSuccess, result.ErrorMessage)
	user, found := Load[core.User](t, wrapper, userID)
	require.True(t, found)
	assert.Equal(t, core.RoleLibrarian, user.Role)
	assert.NotEqual(t, "correct horse battery", user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("correct horse battery")))
}

func Test_CommandHandler_Handle_Error_UsernameTaken(t *testing.T) {
	// setup
	wrapper := CreateWrapperWithTestConfig(t)
	handler := registeruser.NewCommandHandler(wrapper.UOWs, registeruser.WithHashCost(bcrypt.MinCost))
	require.True(t, handler.Handle(context.Background(),
		registeruser.BuildCommand(GivenUniqueID(t), "grace", "password-1", "admin", FakeClock)).IsSuccess)

	// act
	result := handler.Handle(context.Background(),
		registeruser.BuildCommand(GivenUniqueID(t), "grace", "password-2", "member", FakeClock))

	// assert
	assert.Equal(t, "User 'grace' already exists.", result.ErrorMessage)
}

func Test_CommandHandler_Handle_Error_UnknownRole(t *testing.T) {
	// setup
	wrapper := CreateWrapperWithTestConfig(t)
	handler := registeruser.NewCommandHandler(wrapper.UOWs, registeruser.WithHashCost(bcrypt.MinCost))

	// act
	result := handler.Handle(context.Background(),
		registeruser.BuildCommand(GivenUniqueID(t), "grace", "password-1", "janitor", FakeClock))

	// assert
	assert.Equal(t, "Role: must be one of [admin librarian member]", result.ErrorMessage)
	assert.Empty(t, All[core.User](t, wrapper))
}
