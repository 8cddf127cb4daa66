package issuefine_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/entitystore-go/entitystore"
	"github.com/AntonStoeckl/entitystore-go/library/features/command/issuefine"
	"github.com/AntonStoeckl/entitystore-go/library/shared/core"
	. "github.com/AntonStoeckl/entitystore-go/testutil/librarytest" //nolint:revive
)

func Test_CommandHandler_Handle_Success_FineIsVisibleToANewUnitOfWork(t *testing.T) {
	// setup
	wrapper := CreateWrapperWithTestConfig(t)
	handler := issuefine.NewCommandHandler(wrapper.UOWs)
	member := GivenMember(t, wrapper, "M-0001")
	fineID := GivenUniqueID(t)

	// act
	result := handler.Handle(context.Background(), issuefine.BuildCommand(
		fineID, member.ID, uuid.Nil, decimal.NewFromInt(10), "lost book", FakeClock))

	// assert
	require.True(t, result.IsSuccess, result.ErrorMessage)
	fine, found, err := entitystore.RepositoryFor[core.Fine](wrapper.NewUnitOfWork()).GetByID(context.Background(), fineID)
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, fine.Amount.Equal(decimal.NewFromInt(10)), fine.Amount.String())
	assert.Equal(t, core.FineUnpaid, fine.Status)
	assert.Equal(t, member.ID, fine.MemberID)
}

func Test_CommandHandler_Handle_Success_ForALoanOfTheMember(t *testing.T) {
	// setup
	wrapper := CreateWrapperWithTestConfig(t)
	handler := issuefine.NewCommandHandler(wrapper.UOWs)
	member := GivenMember(t, wrapper, "M-0001")
	bookCopy := GivenBookCopy(t, wrapper, GivenBook(t, wrapper, "978-1-098-10013-1"), "BC-0001")
	loan := GivenActiveLoan(t, wrapper, bookCopy, member, FakeClock)
	fineID := GivenUniqueID(t)

	// act
	result := handler.Handle(context.Background(), issuefine.BuildCommand(
		fineID, member.ID, loan.ID, decimal.RequireFromString("3.75"), "damaged cover", FakeClock))

	// assert
	require.True(t, result.IsSuccess, result.ErrorMessage)
	fine, found, err := entitystore.RepositoryFor[core.Fine](wrapper.NewUnitOfWork()).
		GetByID(context.Background(), fineID, entitystore.Include[core.Fine](core.RelationLoan))
	require.NoError(t, err)
	require.True(t, found)
	require.NotNil(t, fine.Loan)
	assert.Equal(t, bookCopy.ID, fine.Loan.BookCopyID)
}

func Test_CommandHandler_Handle_Error_AmountNotPositive(t *testing.T) {
	// setup
	wrapper := CreateWrapperWithTestConfig(t)
	handler := issuefine.NewCommandHandler(wrapper.UOWs)
	member := GivenMember(t, wrapper, "M-0001")

	// act
	result := handler.Handle(context.Background(), issuefine.BuildCommand(
		GivenUniqueID(t), member.ID, uuid.Nil, decimal.Zero, "nothing", FakeClock))

	// assert
	assert.Equal(t, "Fine amount must be positive.", result.ErrorMessage)
	assert.Empty(t, All[core.Fine](t, wrapper))
}

func Test_CommandHandler_Handle_Error_LoanOfAnotherMember(t *testing.T) {
	// setup
	wrapper := CreateWrapperWithTestConfig(t)
	handler := issuefine.NewCommandHandler(wrapper.UOWs)
	member := GivenMember(t, wrapper, "M-0001")
	other := GivenMember(t, wrapper, "M-0002")
	bookCopy := GivenBookCopy(t, wrapper, GivenBook(t, wrapper, "978-1-098-10013-1"), "BC-0001")
	loan := GivenActiveLoan(t, wrapper, bookCopy, other, FakeClock)

	// act
	result := handler.Handle(context.Background(), issuefine.BuildCommand(
		GivenUniqueID(t), member.ID, loan.ID, decimal.NewFromInt(1), "late", FakeClock))

	// assert
	assert.Equal(t, "Loan with ID '"+loan.ID.String()+"' was not found.", result.ErrorMessage)
}
