package returnbookcopy

import (
	"time"

	"github.com/google/uuid"
)

const (
	commandType = "ReturnBookCopy"
)

// Command represents the return of a lent book copy.
type Command struct {
	BookCopyID uuid.UUID `validate:"required"`
	ReturnedAt time.Time `validate:"required"`
}

func (c Command) CommandType() string {
	return commandType
}

func BuildCommand(bookCopyID uuid.UUID, returnedAt time.Time) Command {
	return Command{BookCopyID: bookCopyID, ReturnedAt: returnedAt}
}
