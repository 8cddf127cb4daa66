// Package librarians implements the paged staff listing, ordered by name and then employee ID.
package librarians
