package memberloans

import (
	"time"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/entitystore-go/entitystore"
	"github.com/AntonStoeckl/entitystore-go/library/shared/core"
)

type LoanInfo struct {
	LoanID     uuid.UUID
	BookCopyID uuid.UUID
	Barcode    string
	LentAt     time.Time
	DueAt      time.Time
	ReturnedAt *time.Time
	Status     core.LoanStatus
}

type MemberLoans = entitystore.PagedResult[LoanInfo]
