package issuefine

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	commandType = "IssueFine"
)

// Command represents the intent to charge a member, e.g. for a damaged or lost copy.
// LoanID is optional.
type Command struct {
	FineID   uuid.UUID `validate:"required"`
	MemberID uuid.UUID `validate:"required"`
	LoanID   uuid.UUID
	Amount   decimal.Decimal
	Reason   string    `validate:"required,max=200"`
	IssuedAt time.Time `validate:"required"`
}

func (c Command) CommandType() string {
	return commandType
}

func BuildCommand(fineID, memberID, loanID uuid.UUID, amount decimal.Decimal, reason string, issuedAt time.Time) Command {
	return Command{
		FineID:   fineID,
		MemberID: memberID,
		LoanID:   loanID,
		Amount:   amount,
		Reason:   reason,
		IssuedAt: issuedAt,
	}
}
