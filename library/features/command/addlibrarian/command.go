package addlibrarian

import (
	"time"

	"github.com/google/uuid"
)

const (
	commandType = "AddLibrarian"
)

// Command represents the intent to add a librarian to the staff.
type Command struct {
	LibrarianID uuid.UUID `validate:"required"`
	EmployeeID  string    `validate:"required,max=32"`
	Name        string    `validate:"required,max=200"`
	Email       string    `validate:"omitempty,email"`
	HiredAt     time.Time `validate:"required"`
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(librarianID uuid.UUID, employeeID, name, email string, hiredAt time.Time) Command {
	return Command{
		LibrarianID: librarianID,
		EmployeeID:  employeeID,
		Name:        name,
		Email:       email,
		HiredAt:     hiredAt,
	}
}
