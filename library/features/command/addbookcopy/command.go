package addbookcopy

import (
	"time"

	"github.com/google/uuid"
)

const (
	commandType = "AddBookCopy"
)

// Command represents the intent to add a physical copy of a catalog title to circulation.
type Command struct {
	BookCopyID uuid.UUID `validate:"required"`
	BookID     uuid.UUID `validate:"required"`
	Barcode    string    `validate:"required,max=64"`
	OccurredAt time.Time `validate:"required"`
}

func (c Command) CommandType() string {
	return commandType
}

func BuildCommand(bookCopyID, bookID uuid.UUID, barcode string, occurredAt time.Time) Command {
	return Command{BookCopyID: bookCopyID, BookID: bookID, Barcode: barcode, OccurredAt: occurredAt}
}
