package addbookcopy_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/entitystore-go/entitystore"
	"github.com/AntonStoeckl/entitystore-go/library/features/command/addbookcopy"
	"github.com/AntonStoeckl/entitystore-go/library/shared/core"
	. "github.com/AntonStoeckl/entitystore-go/testutil/librarytest" //nolint:revive
)

func Test_CommandHandler_Handle_Success(t *testing.T) {
	// setup
	wrapper := CreateWrapperWithTestConfig(t)
	handler := addbookcopy.NewCommandHandler(wrapper.UOWs)
	book := GivenBook(t, wrapper, "978-1-098-10013-1")
	copyID := GivenUniqueID(t)

	// act
	result := handler.Handle(context.Background(), addbookcopy.BuildCommand(copyID, book.ID, "BC-0001", FakeClock))

	// assert
	require.True(t, result.IsSuccess, result.ErrorMessage)
	bookCopy, found, err := entitystore.RepositoryFor[core.BookCopy](wrapper.NewUnitOfWork()).
		GetByID(context.Background(), copyID, entitystore.Include[core.BookCopy](core.RelationBook))
	require.NoError(t, err)
	require.True(t, found)
	require.NotNil(t, bookCopy.Book)
	assert.Equal(t, book.Title, bookCopy.Book.Title)
}

func Test_CommandHandler_Handle_Error_BookDoesNotExist(t *testing.T) {
	// setup
	wrapper := CreateWrapperWithTestConfig(t)
	handler := addbookcopy.NewCommandHandler(wrapper.UOWs)
	missingBookID := GivenUniqueID(t)

	// act
	result := handler.Handle(context.Background(),
		addbookcopy.BuildCommand(GivenUniqueID(t), missingBookID, "BC-0001", FakeClock))

	// assert
	assert.Equal(t, fmt.Sprintf("Book with ID '%s' was not found.", missingBookID), result.ErrorMessage)
	assert.Empty(t, All[core.BookCopy](t, wrapper))
}

func Test_CommandHandler_Handle_Error_BarcodeTaken(t *testing.T) {
	// setup
	wrapper := CreateWrapperWithTestConfig(t)
	handler := addbookcopy.NewCommandHandler(wrapper.UOWs)
	book := GivenBook(t, wrapper, "978-1-098-10013-1")
	GivenBookCopy(t, wrapper, book, "BC-0001")

	// act
	result := handler.Handle(context.Background(),
		addbookcopy.BuildCommand(GivenUniqueID(t), book.ID, "BC-0001", FakeClock))

	// assert
	assert.Equal(t, "Book copy with barcode 'BC-0001' already exists.", result.ErrorMessage)
}
