package payfine_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/entitystore-go/library/features/command/payfine"
	"github.com/AntonStoeckl/entitystore-go/library/shared/core"
	. "github.com/AntonStoeckl/entitystore-go/testutil/librarytest" //nolint:revive
)

func Test_CommandHandler_Handle_Success(t *testing.T) {
	// setup
	wrapper := CreateWrapperWithTestConfig(t)
	handler := payfine.NewCommandHandler(wrapper.UOWs)
	fine := GivenUnpaidFine(t, wrapper, GivenMember(t, wrapper, "M-0001"), "5.00")
	paidAt := FakeClock.Add(time.Hour)

	// act
	result := handler.Handle(context.Background(), payfine.BuildCommand(fine.ID, paidAt))

	// assert
	require.True(t, result.IsSuccess, result.ErrorMessage)
	paid, _ := Load[core.Fine](t, wrapper, fine.ID)
	assert.Equal(t, core.FinePaid, paid.Status)
	require.NotNil(t, paid.PaidAt)
	assert.True(t, paidAt.Equal(*paid.PaidAt))
}

func Test_CommandHandler_Handle_Error_AlreadyPaid(t *testing.T) {
	// setup
	wrapper := CreateWrapperWithTestConfig(t)
	handler := payfine.NewCommandHandler(wrapper.UOWs)
	fine := GivenUnpaidFine(t, wrapper, GivenMember(t, wrapper, "M-0001"), "5.00")
	require.True(t, handler.Handle(context.Background(), payfine.BuildCommand(fine.ID, FakeClock)).IsSuccess)

	// act
	result := handler.Handle(context.Background(), payfine.BuildCommand(fine.ID, FakeClock))

	// assert
	assert.Equal(t, fmt.Sprintf("Fine with ID '%s' is already paid.", fine.ID), result.ErrorMessage)
	assert.Len(t, All[core.AuditLog](t, wrapper), 1)
}

func Test_CommandHandler_Handle_Error_FineDoesNotExist(t *testing.T) {
	// setup
	wrapper := CreateWrapperWithTestConfig(t)
	handler := payfine.NewCommandHandler(wrapper.UOWs)
	missingID := GivenUniqueID(t)

	// act
	result := handler.Handle(context.Background(), payfine.BuildCommand(missingID, FakeClock))

	// assert
	assert.Equal(t, fmt.Sprintf("Fine with ID '%s' was not found.", missingID), result.ErrorMessage)
}
