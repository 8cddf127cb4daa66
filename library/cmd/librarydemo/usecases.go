package main

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/AntonStoeckl/entitystore-go/entitystore"
	"github.com/AntonStoeckl/entitystore-go/library/features/command/addbook"
	"github.com/AntonStoeckl/entitystore-go/library/features/command/addbookcopy"
	"github.com/AntonStoeckl/entitystore-go/library/features/command/addlibrarian"
	"github.com/AntonStoeckl/entitystore-go/library/features/command/issuefine"
	"github.com/AntonStoeckl/entitystore-go/library/features/command/registermember"
	"github.com/AntonStoeckl/entitystore-go/library/features/command/updatelibrarian"
	"github.com/AntonStoeckl/entitystore-go/library/features/query/finesbymember"
	"github.com/AntonStoeckl/entitystore-go/library/features/query/librarians"
	"github.com/AntonStoeckl/entitystore-go/library/shared/core"
	"github.com/AntonStoeckl/entitystore-go/library/shared/shell"
	"github.com/AntonStoeckl/entitystore-go/library/shared/shell/observable"
)

type seedBook struct {
	isbn, title, authors string
	year                 uint
	copies               int
}

var seedBooks = []seedBook{
	{isbn: "978-0134190440", title: "The Go Programming Language", authors: "Alan Donovan, Brian Kernighan", year: 2015, copies: 3},
	{isbn: "978-1492077213", title: "Learning Go", authors: "Jon Bodner", year: 2024, copies: 2},
	{isbn: "978-1098114763", title: "Concurrency in Go", authors: "Katherine Cox-Buday", year: 2017, copies: 1},
}

// retryOptions adds retry metrics for commandType to the configured backoff.
func (a *app) retryOptions(commandType string) []shell.RetryOption {
	return append(a.cfg.RetryOptions(), shell.WithRetryMetrics(a.metrics, commandType))
}

func (a *app) seed(ctx context.Context, out io.Writer) error {
	now := time.Now().UTC()

	addBook := observable.NewCommandWrapper[addbook.Command](
		addbook.NewCommandHandler(a.uows, addbook.WithRetryOptions(a.retryOptions(addbook.Command{}.CommandType())...)),
		a.wrapperOptions()...,
	)
	addCopy := observable.NewCommandWrapper[addbookcopy.Command](
		addbookcopy.NewCommandHandler(a.uows, addbookcopy.WithRetryOptions(a.retryOptions(addbookcopy.Command{}.CommandType())...)),
		a.wrapperOptions()...,
	)
	registerMember := observable.NewCommandWrapper[registermember.Command](
		registermember.NewCommandHandler(a.uows, registermember.WithRetryOptions(a.retryOptions(registermember.Command{}.CommandType())...)),
		a.wrapperOptions()...,
	)
	addLibrarian := a.addLibrarianHandler()

	for i, book := range seedBooks {
		bookID := uuid.Must(uuid.NewV7())
		report(out, "add book "+book.isbn, addBook.Handle(ctx, addbook.BuildCommand(
			bookID, book.isbn, book.title, book.authors, "1st", "Demo Press", book.year, now)))

		for c := 0; c < book.copies; c++ {
			barcode := fmt.Sprintf("BC-%d-%02d", i+1, c+1)
			report(out, "add copy "+barcode, addCopy.Handle(ctx, addbookcopy.BuildCommand(
				uuid.Must(uuid.NewV7()), bookID, barcode, now)))
		}
	}

	for i := 1; i <= 3; i++ {
		number := fmt.Sprintf("M-%04d", i)
		report(out, "register member "+number, registerMember.Handle(ctx, registermember.BuildCommand(
			uuid.Must(uuid.NewV7()), number, "Reader "+number, number+"@readers.example", now)))
	}

	for i := 1; i <= 2; i++ {
		employeeID := fmt.Sprintf("E-%03d", i)
		report(out, "add librarian "+employeeID, addLibrarian.Handle(ctx, addlibrarian.BuildCommand(
			uuid.Must(uuid.NewV7()), employeeID, "Librarian "+employeeID, "", now)))
	}

	return nil
}

func (a *app) runScenarios(ctx context.Context, out io.Writer) error {
	if err := a.fineScenario(ctx, out); err != nil {
		return err
	}
	a.missingLibrarianScenario(ctx, out)
	if err := a.concurrentEmployeeIDScenario(ctx, out); err != nil {
		return err
	}

	return nil
}

func (a *app) addLibrarianHandler() *observable.CommandWrapper[addlibrarian.Command] {
	return observable.NewCommandWrapper[addlibrarian.Command](
		addlibrarian.NewCommandHandler(a.uows, addlibrarian.WithRetryOptions(a.retryOptions(addlibrarian.Command{}.CommandType())...)),
		a.wrapperOptions()...,
	)
}

// fineScenario issues a fine of 10 and reads it back through a fresh unit of work.
func (a *app) fineScenario(ctx context.Context, out io.Writer) error {
	now := time.Now().UTC()
	memberID := uuid.Must(uuid.NewV7())
	number := "M-" + memberID.String()[:8]

	registerMember := observable.NewCommandWrapper[registermember.Command](
		registermember.NewCommandHandler(a.uows, registermember.WithRetryOptions(a.retryOptions(registermember.Command{}.CommandType())...)),
		a.wrapperOptions()...,
	)
	issueFine := observable.NewCommandWrapper[issuefine.Command](
		issuefine.NewCommandHandler(a.uows, issuefine.WithRetryOptions(a.retryOptions(issuefine.Command{}.CommandType())...)),
		a.wrapperOptions()...,
	)
	fines := observable.NewQueryWrapper[finesbymember.Query, finesbymember.FinesByMember](
		finesbymember.NewQueryHandler(a.uows),
		a.wrapperOptions()...,
	)

	report(out, "register member "+number, registerMember.Handle(ctx, registermember.BuildCommand(
		memberID, number, "Fined Reader", number+"@readers.example", now)))
	report(out, "issue fine of 10", issueFine.Handle(ctx, issuefine.BuildCommand(
		uuid.Must(uuid.NewV7()), memberID, uuid.Nil, decimal.NewFromInt(10), "damaged cover", now)))

	result, err := fines.Handle(ctx, finesbymember.BuildQuery(memberID, core.FineUnpaid, 1, 10))
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(out, "  unpaid fines: %d, total %s, may borrow: %t\n",
		result.Fines.TotalCount, result.UnpaidTotal.StringFixed(2), result.MayBorrow)

	return nil
}

// missingLibrarianScenario updates a librarian that does not exist; nothing is written.
func (a *app) missingLibrarianScenario(ctx context.Context, out io.Writer) {
	updateLibrarian := observable.NewCommandWrapper[updatelibrarian.Command](
		updatelibrarian.NewCommandHandler(a.uows, updatelibrarian.WithRetryOptions(a.retryOptions(updatelibrarian.Command{}.CommandType())...)),
		a.wrapperOptions()...,
	)

	report(out, "update unknown librarian", updateLibrarian.Handle(ctx, updatelibrarian.BuildCommand(
		uuid.Must(uuid.NewV7()), "E-999", "Nobody", "", time.Now().UTC())))
}

// concurrentEmployeeIDScenario races two registrations for the same employee ID.
func (a *app) concurrentEmployeeIDScenario(ctx context.Context, out io.Writer) error {
	addLibrarian := a.addLibrarianHandler()
	employeeID := "E-" + uuid.Must(uuid.NewV7()).String()[:8]
	ids := []uuid.UUID{uuid.Must(uuid.NewV7()), uuid.Must(uuid.NewV7())}
	results := make([]entitystore.Result, len(ids))

	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = addLibrarian.Handle(ctx, addlibrarian.BuildCommand(
				id, employeeID, "Contender", "", time.Now().UTC()))
		}()
	}
	wg.Wait()

	for i, result := range results {
		report(out, fmt.Sprintf("add librarian %s (contender %d)", employeeID, i+1), result)
	}

	listing := observable.NewQueryWrapper[librarians.Query, librarians.Librarians](
		librarians.NewQueryHandler(a.uows),
		a.wrapperOptions()...,
	)
	page, err := listing.Handle(ctx, librarians.BuildQuery(1, 10))
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(out, "  librarians on staff: %d\n", page.TotalCount)

	return nil
}

func report(out io.Writer, action string, result entitystore.Result) {
	if result.IsSuccess {
		_, _ = fmt.Fprintf(out, "%-40s ok\n", action)
		return
	}

	_, _ = fmt.Fprintf(out, "%-40s failed: %s\n", action, result.ErrorMessage)
}
