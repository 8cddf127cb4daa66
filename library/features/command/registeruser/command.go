package registeruser

import (
	"time"

	"github.com/google/uuid"
)

const (
	commandType = "RegisterUser"
)

// Command represents the creation of a login account. Password is the plain text secret; only its
// bcrypt hash is stored.
type Command struct {
	UserID    uuid.UUID `validate:"required"`
	Username  string    `validate:"required,min=3,max=64"`
	Password  string    `validate:"required,min=8,max=72"`
	Role      string    `validate:"required,oneof=admin librarian member"`
	CreatedAt time.Time `validate:"required"`
}

func (c Command) CommandType() string {
	return commandType
}

func BuildCommand(userID uuid.UUID, username, password, role string, createdAt time.Time) Command {
	return Command{
		UserID:    userID,
		Username:  username,
		Password:  password,
		Role:      role,
		CreatedAt: createdAt,
	}
}
