package payfine

import (
	"time"

	"github.com/google/uuid"
)

const (
	commandType = "PayFine"
)

// Command represents the payment of an unpaid fine.
type Command struct {
	FineID uuid.UUID `validate:"required"`
	PaidAt time.Time `validate:"required"`
}

func (c Command) CommandType() string {
	return commandType
}

func BuildCommand(fineID uuid.UUID, paidAt time.Time) Command {
	return Command{FineID: fineID, PaidAt: paidAt}
}
