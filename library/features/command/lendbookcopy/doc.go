// Package lendbookcopy implements the Lend Book Copy use case.
//
// A copy must be in circulation and not lent out, the member must exist, and the member's unpaid
// fines must not exceed core.LendingFineThreshold. A pending reservation of the member for the
// copy's book is fulfilled by the loan. The "active_copy" unique key of Loan makes concurrent
// lendings of the same copy fail in the store, which is reported like the up-front check.
package lendbookcopy
