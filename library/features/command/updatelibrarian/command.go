package updatelibrarian

import (
	"time"

	"github.com/google/uuid"
)

const (
	commandType = "UpdateLibrarian"
)

// Command replaces the editable details of a librarian.
type Command struct {
	LibrarianID uuid.UUID `validate:"required"`
	EmployeeID  string    `validate:"required,max=32"`
	Name        string    `validate:"required,max=200"`
	Email       string    `validate:"omitempty,email"`
	OccurredAt  time.Time `validate:"required"`
}

func (c Command) CommandType() string {
	return commandType
}

func BuildCommand(librarianID uuid.UUID, employeeID, name, email string, occurredAt time.Time) Command {
	return Command{
		LibrarianID: librarianID,
		EmployeeID:  employeeID,
		Name:        name,
		Email:       email,
		OccurredAt:  occurredAt,
	}
}
