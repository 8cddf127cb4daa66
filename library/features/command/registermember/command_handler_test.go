package registermember_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/entitystore-go/library/features/command/registermember"
	"github.com/AntonStoeckl/entitystore-go/library/shared/core"
	. "github.com/AntonStoeckl/entitystore-go/testutil/librarytest" //nolint:revive
)

func Test_CommandHandler_Handle_Success(t *testing.T) {
	// setup
	wrapper := CreateWrapperWithTestConfig(t)
	handler := registermember.NewCommandHandler(wrapper.UOWs)
	memberID := GivenUniqueID(t)

	// act
	result := handler.Handle(context.Background(),
		registermember.BuildCommand(memberID, "M-0001", "John Doe", "john@readers.example", FakeClock))

	// assert
	require.True(t, result.IsSuccess, result.ErrorMessage)
	member, found := Load[core.Member](t, wrapper, memberID)
	assert.True(t, found)
	assert.Equal(t, "M-0001", member.MembershipNumber)
}

func Test_CommandHandler_Handle_Error_MembershipNumberTaken(t *testing.T) {
	// setup
	wrapper := CreateWrapperWithTestConfig(t)
	handler := registermember.NewCommandHandler(wrapper.UOWs)
	GivenMember(t, wrapper, "M-0001")

	// act
	result := handler.Handle(context.Background(),
		registermember.BuildCommand(GivenUniqueID(t), "M-0001", "John Doe", "other@readers.example", FakeClock))

	// assert
	assert.Equal(t, "Member with membership number 'M-0001' already exists.", result.ErrorMessage)
}

func Test_CommandHandler_Handle_Error_EmailTaken(t *testing.T) {
	// setup
	wrapper := CreateWrapperWithTestConfig(t)
	handler := registermember.NewCommandHandler(wrapper.UOWs)
	existing := GivenMember(t, wrapper, "M-0001")

	// act
	result := handler.Handle(context.Background(),
		registermember.BuildCommand(GivenUniqueID(t), "M-0002", "John Doe", existing.Email, FakeClock))

	// assert
	assert.Equal(t, "Member with email '"+existing.Email+"' already exists.", result.ErrorMessage)
	assert.Len(t, All[core.Member](t, wrapper), 1)
}

func Test_CommandHandler_Handle_Error_InvalidEmail(t *testing.T) {
	// setup
	wrapper := CreateWrapperWithTestConfig(t)
	handler := registermember.NewCommandHandler(wrapper.UOWs)

	// act
	result := handler.Handle(context.Background(),
		registermember.BuildCommand(GivenUniqueID(t), "M-0003", "John Doe", "not-an-email", FakeClock))

	// assert
	assert.Equal(t, "Email: must be a valid email address", result.ErrorMessage)
}
