// Package addlibrarian implements the Add Librarian use case.
//
// Employee IDs are unique. A duplicate is refused up front when it is already committed, and by the
// store's unique key when two registrations race; both paths report the same message.
package addlibrarian
