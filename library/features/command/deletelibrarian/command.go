package deletelibrarian

import (
	"time"

	"github.com/google/uuid"
)

const (
	commandType = "DeleteLibrarian"
)

// Command represents the intent to remove a librarian from the staff. The record is soft-deleted.
type Command struct {
	LibrarianID uuid.UUID `validate:"required"`
	OccurredAt  time.Time `validate:"required"`
}

func (c Command) CommandType() string {
	return commandType
}

func BuildCommand(librarianID uuid.UUID, occurredAt time.Time) Command {
	return Command{LibrarianID: librarianID, OccurredAt: occurredAt}
}
