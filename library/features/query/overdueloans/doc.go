// Package overdueloans lists active loans past their due date, with the lent copy and the member
// resolved, and the fine that would be charged on return at the query's reference time.
package overdueloans
