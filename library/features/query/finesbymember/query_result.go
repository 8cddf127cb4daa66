package finesbymember

import (
	"github.com/shopspring/decimal"

	"github.com/AntonStoeckl/entitystore-go/entitystore"
	"github.com/AntonStoeckl/entitystore-go/library/shared/core"
)

// FinesByMember is one page of fines plus the member's standing.
type FinesByMember struct {
	Fines       entitystore.PagedResult[core.Fine]
	UnpaidTotal decimal.Decimal
	MayBorrow   bool
}
