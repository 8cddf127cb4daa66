package librarytest

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/entitystore-go/entitystore"
	"github.com/AntonStoeckl/entitystore-go/library/shared/core"
)

// FakeClock is the fixed point in time fixtures are built around.
var FakeClock = time.Date(2025, time.March, 3, 9, 0, 0, 0, time.UTC)

func GivenUniqueID(t testing.TB) uuid.UUID {
	id, err := uuid.NewV7()
	require.NoError(t, err, "error in arranging test data")

	return id
}

// Given commits entities through a unit of work of its own.
func Given[T entitystore.Entity](t testing.TB, w Wrapper, entities ...T) {
	t.Helper()

	uow := w.NewUnitOfWork()
	require.NoError(t, entitystore.RepositoryFor[T](uow).AddRange(entities...), "error in arranging test data")
	_, err := uow.SaveChanges(context.Background())
	require.NoError(t, err, "error in arranging test data")
}

// Load reads an entity with a fresh unit of work, soft-deleted ones included.
func Load[T entitystore.Entity](t testing.TB, w Wrapper, id uuid.UUID) (T, bool) {
	t.Helper()

	entity, found, err := entitystore.RepositoryFor[T](w.NewUnitOfWork()).
		GetByID(context.Background(), id, entitystore.IncludeDeleted[T]())
	require.NoError(t, err, "error in loading test data")

	return entity, found
}

// All reads all entities of T with a fresh unit of work, soft-deleted ones included.
func All[T entitystore.Entity](t testing.TB, w Wrapper) []T {
	t.Helper()

	entities, err := entitystore.RepositoryFor[T](w.NewUnitOfWork()).Query(context.Background())
	require.NoError(t, err, "error in loading test data")

	return entities
}

func GivenBook(t testing.TB, w Wrapper, isbn string) core.Book {
	t.Helper()

	book := core.Book{
		ID:              GivenUniqueID(t),
		ISBN:            isbn,
		Title:           "Learning Domain-Driven Design",
		Authors:         "Vlad Khononov",
		Edition:         "First Edition",
		Publisher:       "O'Reilly Media, Inc.",
		PublicationYear: 2021,
	}
	Given(t, w, book)

	return book
}

func GivenBookCopy(t testing.TB, w Wrapper, book core.Book, barcode string) core.BookCopy {
	t.Helper()

	bookCopy := core.BookCopy{ID: GivenUniqueID(t), BookID: book.ID, Barcode: barcode}
	Given(t, w, bookCopy)

	return bookCopy
}

func GivenMember(t testing.TB, w Wrapper, membershipNumber string) core.Member {
	t.Helper()

	member := core.Member{
		ID:               GivenUniqueID(t),
		MembershipNumber: membershipNumber,
		Name:             "Jane Reader",
		Email:            membershipNumber + "@readers.example",
		RegisteredAt:     FakeClock,
	}
	Given(t, w, member)

	return member
}

func GivenLibrarian(t testing.TB, w Wrapper, employeeID string) core.Librarian {
	t.Helper()

	librarian := core.Librarian{
		ID:         GivenUniqueID(t),
		EmployeeID: employeeID,
		Name:       "Grace Keeper",
		Email:      employeeID + "@library.example",
		HiredAt:    FakeClock,
	}
	Given(t, w, librarian)

	return librarian
}

func GivenActiveLoan(t testing.TB, w Wrapper, bookCopy core.BookCopy, member core.Member, lentAt time.Time) core.Loan {
	t.Helper()

	loan := core.Loan{
		ID:         GivenUniqueID(t),
		BookCopyID: bookCopy.ID,
		MemberID:   member.ID,
		LentAt:     lentAt,
		DueAt:      lentAt.Add(core.DefaultLoanPeriod),
		Status:     core.LoanActive,
	}
	Given(t, w, loan)

	return loan
}

func GivenUnpaidFine(t testing.TB, w Wrapper, member core.Member, amount string) core.Fine {
	t.Helper()

	fine := core.Fine{
		ID:       GivenUniqueID(t),
		MemberID: member.ID,
		Amount:   decimal.RequireFromString(amount),
		Reason:   "damaged book",
		IssuedAt: FakeClock,
		Status:   core.FineUnpaid,
	}
	Given(t, w, fine)

	return fine
}
