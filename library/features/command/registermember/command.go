package registermember

import (
	"time"

	"github.com/google/uuid"
)

const (
	commandType = "RegisterMember"
)

// Command represents the intent to register a new library member.
type Command struct {
	MemberID         uuid.UUID `validate:"required"`
	MembershipNumber string    `validate:"required,max=32"`
	Name             string    `validate:"required,max=200"`
	Email            string    `validate:"required,email"`
	RegisteredAt     time.Time `validate:"required"`
}

func (c Command) CommandType() string {
	return commandType
}

func BuildCommand(memberID uuid.UUID, membershipNumber, name, email string, registeredAt time.Time) Command {
	return Command{
		MemberID:         memberID,
		MembershipNumber: membershipNumber,
		Name:             name,
		Email:            email,
		RegisteredAt:     registeredAt,
	}
}
