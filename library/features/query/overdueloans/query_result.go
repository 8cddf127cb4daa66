package overdueloans

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OverdueLoanInfo is one overdue loan.
type OverdueLoanInfo struct {
	LoanID           uuid.UUID
	BookCopyID       uuid.UUID
	Barcode          string
	MemberID         uuid.UUID
	MembershipNumber string
	MemberName       string
	DueAt            time.Time
	AccruedFine      decimal.Decimal
}

// OverdueLoans is ordered by due date, longest overdue first.
type OverdueLoans struct {
	Loans []OverdueLoanInfo
	Count int
}
