package librarians

import (
	"time"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/entitystore-go/entitystore"
)

// LibrarianInfo is the listing view of a librarian.
type LibrarianInfo struct {
	LibrarianID uuid.UUID
	EmployeeID  string
	Name        string
	Email       string
	HiredAt     time.Time
}

type Librarians = entitystore.PagedResult[LibrarianInfo]
