package core_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/AntonStoeckl/entitystore-go/library/shared/core"
)

func Test_OverdueFine(t *testing.T) {
	dueAt := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	testCases := []struct {
		description string
		returnedAt  time.Time
		expected    string
	}{
		{"returned early", dueAt.Add(-time.Hour), "0"},
		{"returned exactly on time", dueAt, "0"},
		{"one minute late counts as a day", dueAt.Add(time.Minute), "0.5"},
		{"exactly three days late", dueAt.Add(72 * time.Hour), "1.5"},
		{"three days and a bit late", dueAt.Add(72*time.Hour + time.Second), "2"},
		{"capped after forty days", dueAt.Add(41 * 24 * time.Hour), "20"},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			// act
			fine := core.OverdueFine(dueAt, tc.returnedAt)

			// assert
			assert.True(t, decimal.RequireFromString(tc.expected).Equal(fine), "got %s", fine)
		})
	}
}

func Test_MayBorrow_When_UnpaidFinesExceedThreshold_Then_False(t *testing.T) {
	// arrange
	fines := []core.Fine{
		{Amount: decimal.NewFromInt(6), Status: core.FineUnpaid},
		{Amount: decimal.RequireFromString("4.50"), Status: core.FineUnpaid},
		{Amount: decimal.NewFromInt(100), Status: core.FinePaid},
	}

	// act & assert
	assert.True(t, decimal.RequireFromString("10.50").Equal(core.UnpaidTotal(fines)))
	assert.False(t, core.MayBorrow(fines))
}

func Test_MayBorrow_When_UnpaidFinesEqualThreshold_Then_True(t *testing.T) {
	// arrange
	fines := []core.Fine{
		{Amount: decimal.NewFromInt(10), Status: core.FineUnpaid},
		{Amount: decimal.NewFromInt(3), Status: core.FineWaived},
	}

	// act & assert
	assert.True(t, core.MayBorrow(fines))
	assert.True(t, core.MayBorrow(nil))
}

func Test_Fine_Pay(t *testing.T) {
	// arrange
	paidAt := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	fine := core.Fine{Amount: decimal.NewFromInt(2), Status: core.FineUnpaid}

	// act
	paid := fine.Pay(paidAt)

	// assert
	assert.Equal(t, core.FinePaid, paid.Status)
	assert.Equal(t, paidAt, *paid.PaidAt)
	assert.Equal(t, core.FineUnpaid, fine.Status, "the original value must stay untouched")
}
