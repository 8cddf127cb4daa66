package core

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/AntonStoeckl/entitystore-go/entitystore"
)

type FineStatus string

const (
	FineUnpaid FineStatus = "unpaid"
	FinePaid   FineStatus = "paid"
	FineWaived FineStatus = "waived"
)

var (
	// DailyOverdueRate is charged per started day a loan is overdue.
	DailyOverdueRate = decimal.RequireFromString("0.50")

	// MaxOverdueFine caps the fine of a single loan.
	MaxOverdueFine = decimal.RequireFromString("20.00")

	// LendingFineThreshold is the sum of unpaid fines above which a member may not borrow.
	LendingFineThreshold = decimal.RequireFromString("10.00")
)

// Fine is money a member owes, usually for an overdue loan.
type Fine struct {
	ID       uuid.UUID       `json:"id"`
	MemberID uuid.UUID       `json:"memberId"`
	LoanID   uuid.UUID       `json:"loanId"`
	Amount   decimal.Decimal `json:"amount"`
	Reason   string          `json:"reason"`
	IssuedAt time.Time       `json:"issuedAt"`
	PaidAt   *time.Time      `json:"paidAt,omitempty"`
	Status   FineStatus      `json:"status"`

	Member *Member `json:"-"`
	Loan   *Loan   `json:"-"`
}

func (f Fine) EntityType() string  { return FineEntityType }
func (f Fine) EntityID() uuid.UUID { return f.ID }

func (f Fine) References() []entitystore.Reference {
	return []entitystore.Reference{
		entitystore.Ref(RelationMember, MemberEntityType, f.MemberID),
		entitystore.Ref(RelationLoan, LoanEntityType, f.LoanID),
	}
}

func (f Fine) BindRelation(name string, related entitystore.Entity) Fine {
	switch e := related.(type) {
	case Member:
		if name == RelationMember {
			f.Member = &e
		}
	case Loan:
		if name == RelationLoan {
			f.Loan = &e
		}
	}

	return f
}

// Pay settles an unpaid fine.
func (f Fine) Pay(at time.Time) Fine {
	f.Status = FinePaid
	f.PaidAt = &at

	return f
}

// OverdueFine returns the fine for a copy returned at returnedAt although it was due at dueAt.
// Every started day costs DailyOverdueRate, capped at MaxOverdueFine. A timely return costs nothing.
func OverdueFine(dueAt, returnedAt time.Time) decimal.Decimal {
	if !returnedAt.After(dueAt) {
		return decimal.Zero
	}

	overdue := returnedAt.Sub(dueAt)
	days := int64(overdue / (24 * time.Hour))
	if overdue%(24*time.Hour) != 0 {
		days++
	}

	return decimal.Min(DailyOverdueRate.Mul(decimal.NewFromInt(days)), MaxOverdueFine)
}

// UnpaidTotal sums the amounts of all unpaid fines.
func UnpaidTotal(fines []Fine) decimal.Decimal {
	total := decimal.Zero
	for _, fine := range fines {
		if fine.Status == FineUnpaid {
			total = total.Add(fine.Amount)
		}
	}

	return total
}

// MayBorrow is false when the unpaid fines exceed LendingFineThreshold.
func MayBorrow(fines []Fine) bool {
	return UnpaidTotal(fines).LessThanOrEqual(LendingFineThreshold)
}
