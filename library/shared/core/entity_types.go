package core

import (
	"github.com/AntonStoeckl/entitystore-go/entitystore"
)

const (
	BookEntityType        = "Book"
	BookCopyEntityType    = "BookCopy"
	MemberEntityType      = "Member"
	LibrarianEntityType   = "Librarian"
	UserEntityType        = "User"
	LoanEntityType        = "Loan"
	ReservationEntityType = "Reservation"
	FineEntityType        = "Fine"
	AuditLogEntityType    = "AuditLog"
)

// Relation names usable with entitystore.Include.
const (
	RelationBook     = "book"
	RelationBookCopy = "bookCopy"
	RelationMember   = "member"
	RelationLoan     = "loan"
)

func init() {
	RegisterEntityTypes(entitystore.DefaultRegistry)
}

// RegisterEntityTypes registers all library entity types. It panics when one is already registered.
func RegisterEntityTypes(registry *entitystore.TypeRegistry) {
	entitystore.MustRegisterEntityType[Book](registry)
	entitystore.MustRegisterEntityType[BookCopy](registry)
	entitystore.MustRegisterEntityType[Member](registry)
	entitystore.MustRegisterEntityType[Librarian](registry)
	entitystore.MustRegisterEntityType[User](registry)
	entitystore.MustRegisterEntityType[Loan](registry)
	entitystore.MustRegisterEntityType[Reservation](registry)
	entitystore.MustRegisterEntityType[Fine](registry)
	entitystore.MustRegisterEntityType[AuditLog](registry)
}
