package core

import (
	"time"

	"github.com/google/uuid"
)

// Member is a registered reader who may borrow and reserve books.
type Member struct {
	ID               uuid.UUID `json:"id"`
	MembershipNumber string    `json:"membershipNumber"`
	Name             string    `json:"name"`
	Email            string    `json:"email"`
	RegisteredAt     time.Time `json:"registeredAt"`
	Deleted          bool      `json:"deleted"`
}

func (m Member) EntityType() string  { return MemberEntityType }
func (m Member) EntityID() uuid.UUID { return m.ID }
func (m Member) IsDeleted() bool     { return m.Deleted }

func (m Member) UniqueKeys() map[string]string {
	return map[string]string{
		"membership_number": m.MembershipNumber,
		"email":             m.Email,
	}
}

// Librarian is a staff member, identified by a unique employee ID.
type Librarian struct {
	ID         uuid.UUID `json:"id"`
	EmployeeID string    `json:"employeeId"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	HiredAt    time.Time `json:"hiredAt"`
	Deleted    bool      `json:"deleted"`
}

func (l Librarian) EntityType() string  { return LibrarianEntityType }
func (l Librarian) EntityID() uuid.UUID { return l.ID }
func (l Librarian) IsDeleted() bool     { return l.Deleted }

// EmployeeIDConstraint names the unique key on Librarian.EmployeeID.
const EmployeeIDConstraint = "employee_id"

func (l Librarian) UniqueKeys() map[string]string {
	return map[string]string{EmployeeIDConstraint: l.EmployeeID}
}

type Role string

const (
	RoleAdmin     Role = "admin"
	RoleLibrarian Role = "librarian"
	RoleMember    Role = "member"
)

// User is a login account. Only the bcrypt hash of the password is stored.
type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"passwordHash"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (u User) EntityType() string  { return UserEntityType }
func (u User) EntityID() uuid.UUID { return u.ID }

func (u User) UniqueKeys() map[string]string {
	return map[string]string{"username": u.Username}
}
