package core

import (
	"time"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/entitystore-go/entitystore"
)

type LoanStatus string

const (
	LoanActive   LoanStatus = "active"
	LoanReturned LoanStatus = "returned"
)

// DefaultLoanPeriod applies when a lending command does not name a due date.
const DefaultLoanPeriod = 14 * 24 * time.Hour

// Loan records one lending of a BookCopy to a Member.
// At most one active loan exists per copy; the "active_copy" unique key enforces it in the store.
type Loan struct {
	ID         uuid.UUID  `json:"id"`
	BookCopyID uuid.UUID  `json:"bookCopyId"`
	MemberID   uuid.UUID  `json:"memberId"`
	LentAt     time.Time  `json:"lentAt"`
	DueAt      time.Time  `json:"dueAt"`
	ReturnedAt *time.Time `json:"returnedAt,omitempty"`
	Status     LoanStatus `json:"status"`

	BookCopy *BookCopy `json:"-"`
	Member   *Member   `json:"-"`
}

func (l Loan) EntityType() string  { return LoanEntityType }
func (l Loan) EntityID() uuid.UUID { return l.ID }

func (l Loan) UniqueKeys() map[string]string {
	if l.Status != LoanActive {
		return nil
	}

	return map[string]string{"active_copy": l.BookCopyID.String()}
}

func (l Loan) References() []entitystore.Reference {
	return []entitystore.Reference{
		entitystore.Ref(RelationBookCopy, BookCopyEntityType, l.BookCopyID),
		entitystore.Ref(RelationMember, MemberEntityType, l.MemberID),
	}
}

func (l Loan) BindRelation(name string, related entitystore.Entity) Loan {
	switch r := related.(type) {
	case BookCopy:
		if name == RelationBookCopy {
			l.BookCopy = &r
		}
	case Member:
		if name == RelationMember {
			l.Member = &r
		}
	}

	return l
}

// IsOverdue reports whether an active loan is past its due date at asOf.
func (l Loan) IsOverdue(asOf time.Time) bool {
	return l.Status == LoanActive && asOf.After(l.DueAt)
}

// Return closes the loan.
func (l Loan) Return(at time.Time) Loan {
	l.Status = LoanReturned
	l.ReturnedAt = &at

	return l
}

type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "pending"
	ReservationFulfilled ReservationStatus = "fulfilled"
	ReservationCanceled  ReservationStatus = "canceled"
)

// Reservation is a member's claim on the next available copy of a Book.
// A member holds at most one pending reservation per book.
type Reservation struct {
	ID         uuid.UUID         `json:"id"`
	BookID     uuid.UUID         `json:"bookId"`
	MemberID   uuid.UUID         `json:"memberId"`
	ReservedAt time.Time         `json:"reservedAt"`
	Status     ReservationStatus `json:"status"`

	Book   *Book   `json:"-"`
	Member *Member `json:"-"`
}

func (r Reservation) EntityType() string  { return ReservationEntityType }
func (r Reservation) EntityID() uuid.UUID { return r.ID }

func (r Reservation) UniqueKeys() map[string]string {
	if r.Status != ReservationPending {
		return nil
	}

	return map[string]string{"pending_member_book": r.MemberID.String() + "/" + r.BookID.String()}
}

func (r Reservation) References() []entitystore.Reference {
	return []entitystore.Reference{
		entitystore.Ref(RelationBook, BookEntityType, r.BookID),
		entitystore.Ref(RelationMember, MemberEntityType, r.MemberID),
	}
}

func (r Reservation) BindRelation(name string, related entitystore.Entity) Reservation {
	switch e := related.(type) {
	case Book:
		if name == RelationBook {
			r.Book = &e
		}
	case Member:
		if name == RelationMember {
			r.Member = &e
		}
	}

	return r
}
