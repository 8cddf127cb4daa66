package addbook

import (
	"time"

	"github.com/google/uuid"
)

const (
	commandType = "AddBook"
)

// Command represents the intent to add a title to the catalog.
type Command struct {
	BookID          uuid.UUID `validate:"required"`
	ISBN            string    `validate:"required,min=10,max=17"`
	Title           string    `validate:"required,max=300"`
	Authors         string    `validate:"required"`
	Edition         string
	Publisher       string
	PublicationYear uint
	OccurredAt      time.Time `validate:"required"`
}

func (c Command) CommandType() string {
	return commandType
}

func BuildCommand(
	bookID uuid.UUID,
	isbn, title, authors, edition, publisher string,
	publicationYear uint,
	occurredAt time.Time,
) Command {

	return Command{
		BookID:          bookID,
		ISBN:            isbn,
		Title:           title,
		Authors:         authors,
		Edition:         edition,
		Publisher:       publisher,
		PublicationYear: publicationYear,
		OccurredAt:      occurredAt,
	}
}
