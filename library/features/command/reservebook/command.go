package reservebook

import (
	"time"

	"github.com/google/uuid"
)

const (
	commandType = "ReserveBook"
)

// Command represents a member's request for the next available copy of a book.
type Command struct {
	ReservationID uuid.UUID `validate:"required"`
	BookID        uuid.UUID `validate:"required"`
	MemberID      uuid.UUID `validate:"required"`
	ReservedAt    time.Time `validate:"required"`
}

func (c Command) CommandType() string {
	return commandType
}

func BuildCommand(reservationID, bookID, memberID uuid.UUID, reservedAt time.Time) Command {
	return Command{ReservationID: reservationID, BookID: bookID, MemberID: memberID, ReservedAt: reservedAt}
}
