package librarians_test

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/entitystore-go/library/features/query/librarians"
	"github.com/AntonStoeckl/entitystore-go/library/shared/core"
	. "github.com/AntonStoeckl/entitystore-go/testutil/librarytest" //nolint:revive
)

func givenStaff(t *testing.T, wrapper Wrapper) {
	t.Helper()

	Given(t, wrapper,
		core.Librarian{ID: GivenUniqueID(t), EmployeeID: "E-3", Name: "Carla"},
		core.Librarian{ID: GivenUniqueID(t), EmployeeID: "E-2", Name: "Anna"},
		core.Librarian{ID: GivenUniqueID(t), EmployeeID: "E-1", Name: "Anna"},
		core.Librarian{ID: GivenUniqueID(t), EmployeeID: "E-4", Name: "Bert"},
		core.Librarian{ID: GivenUniqueID(t), EmployeeID: "E-5", Name: "Aaron", Deleted: true},
	)
}

func Test_QueryHandler_Handle_ReturnsEmptyPage_WhenNoLibrarians(t *testing.T) {
	// setup
	wrapper := CreateWrapperWithTestConfig(t)
	handler := librarians.NewQueryHandler(wrapper.UOWs)

	// act
	result, err := handler.Handle(context.Background(), librarians.BuildQuery(1, 0))

	// assert
	require.NoError(t, err)
	assert.Empty(t, result.Items)
	assert.Equal(t, 0, result.TotalCount)
	assert.Equal(t, 0, result.TotalPages())
}

func Test_QueryHandler_Handle_ReturnsEmptyPage_WhenPageNumberIsHuge(t *testing.T) {
	// setup
	wrapper := CreateWrapperWithTestConfig(t)
	handler := librarians.NewQueryHandler(wrapper.UOWs)
	givenStaff(t, wrapper)

	// act
	result, err := handler.Handle(context.Background(), librarians.BuildQuery(math.MaxInt/2, 4))

	// assert
	require.NoError(t, err)
	assert.Empty(t, result.Items)
	assert.Positive(t, result.TotalCount)
	assert.False(t, result.HasNextPage())
}

func Test_QueryHandler_Handle_OrdersByNameThenEmployeeID(t *testing.T) {
	// setup
	wrapper := CreateWrapperWithTestConfig(t)
	handler := librarians.NewQueryHandler(wrapper.UOWs)
	givenStaff(t, wrapper)

	// act
	result, err := handler.Handle(context.Background(), librarians.BuildQuery(1, 0))

	// assert
	require.NoError(t, err)
	employeeIDs := make([]string, 0, len(result.Items))
	for _, item := range result.Items {
		employeeIDs = append(employeeIDs, item.EmployeeID)
	}
	assert.Equal(t, []string{"E-1", "E-2", "E-4", "E-3"}, employeeIDs)
	assert.Equal(t, 4, result.TotalCount)
}

func Test_QueryHandler_Handle_ReturnsRequestedPage(t *testing.T) {
	// setup
	wrapper := CreateWrapperWithTestConfig(t)
	handler := librarians.NewQueryHandler(wrapper.UOWs)
	givenStaff(t, wrapper)

	// act
	result, err := handler.Handle(context.Background(), librarians.BuildQuery(2, 3))

	// assert
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, "E-3", result.Items[0].EmployeeID)
	assert.Equal(t, 4, result.TotalCount)
	assert.Equal(t, 2, result.TotalPages())
	assert.True(t, result.HasPreviousPage())
	assert.False(t, result.HasNextPage())
}

func Test_QueryHandler_Handle_ClampsPaging(t *testing.T) {
	// setup
	wrapper := CreateWrapperWithTestConfig(t)
	handler := librarians.NewQueryHandler(wrapper.UOWs)
	givenStaff(t, wrapper)

	// act
	result, err := handler.Handle(context.Background(), librarians.BuildQuery(-5, 1000))

	// assert
	require.NoError(t, err)
	assert.Equal(t, 1, result.PageNumber)
	assert.Equal(t, 100, result.PageSize)
	assert.Len(t, result.Items, 4)
}
