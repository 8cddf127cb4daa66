package removebookcopy

import (
	"time"

	"github.com/google/uuid"
)

const (
	commandType = "RemoveBookCopy"
)

// Command represents the intent to take a book copy out of circulation.
type Command struct {
	BookCopyID uuid.UUID `validate:"required"`
	OccurredAt time.Time `validate:"required"`
}

func (c Command) CommandType() string {
	return commandType
}

func BuildCommand(bookCopyID uuid.UUID, occurredAt time.Time) Command {
	return Command{BookCopyID: bookCopyID, OccurredAt: occurredAt}
}
