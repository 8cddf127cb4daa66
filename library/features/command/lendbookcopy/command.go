package lendbookcopy

import (
	"time"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/entitystore-go/library/shared/core"
)

const (
	commandType = "LendBookCopy"
)

// Command represents the intent to lend a book copy to a member.
type Command struct {
	LoanID     uuid.UUID `validate:"required"`
	BookCopyID uuid.UUID `validate:"required"`
	MemberID   uuid.UUID `validate:"required"`
	LentAt     time.Time `validate:"required"`
	DueAt      time.Time `validate:"required,gtfield=LentAt"`
}

func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a Command due after core.DefaultLoanPeriod.
func BuildCommand(loanID, bookCopyID, memberID uuid.UUID, lentAt time.Time) Command {
	return Command{
		LoanID:     loanID,
		BookCopyID: bookCopyID,
		MemberID:   memberID,
		LentAt:     lentAt,
		DueAt:      lentAt.Add(core.DefaultLoanPeriod),
	}
}
