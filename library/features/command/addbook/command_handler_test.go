package addbook_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/entitystore-go/library/features/command/addbook"
	"github.com/AntonStoeckl/entitystore-go/library/shared/core"
	. "github.com/AntonStoeckl/entitystore-go/testutil/librarytest" //nolint:revive
)

func Test_CommandHandler_Handle_Success(t *testing.T) {
	// setup
	wrapper := CreateWrapperWithTestConfig(t)
	handler := addbook.NewCommandHandler(wrapper.UOWs)
	bookID := GivenUniqueID(t)

	// act
	result := handler.Handle(context.Background(), addbook.BuildCommand(
		bookID,
		"978-1-098-10013-1",
		"Learning Domain-Driven Design",
		"Vlad Khononov",
		"First Edition",
		"O'Reilly Media, Inc.",
		2021,
		FakeClock,
	))

	// assert
	require.True(t, result.IsSuccess, result.ErrorMessage)
	book, found := Load[core.Book](t, wrapper, bookID)
	assert.True(t, found)
	assert.Equal(t, uint(2021), book.PublicationYear)

	audit := All[core.AuditLog](t, wrapper)
	require.Len(t, audit, 1)
	assert.Equal(t, bookID, audit[0].SubjectID)
}

func Test_CommandHandler_Handle_Error_ISBNAlreadyExists(t *testing.T) {
	// setup
	wrapper := CreateWrapperWithTestConfig(t)
	handler := addbook.NewCommandHandler(wrapper.UOWs)
	GivenBook(t, wrapper, "978-1-098-10013-1")

	// act
	result := handler.Handle(context.Background(), addbook.BuildCommand(
		GivenUniqueID(t), "978-1-098-10013-1", "Duplicate", "Someone", "", "", 0, FakeClock))

	// assert
	assert.False(t, result.IsSuccess)
	assert.Equal(t, "Book with ISBN '978-1-098-10013-1' already exists.", result.ErrorMessage)
	assert.Empty(t, All[core.AuditLog](t, wrapper))
}
