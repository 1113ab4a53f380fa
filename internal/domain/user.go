package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role is the coarse account-level role. Roles form a capability
// hierarchy: Admin can do everything a Teacher can, Teacher everything
// a Student can.
type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
	RoleAdmin   Role = "admin"
)

var roleRank = map[Role]int{
	RoleStudent: 1,
	RoleTeacher: 2,
	RoleAdmin:   3,
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	_, ok := roleRank[r]
	return ok
}

// Covers reports whether r includes the capabilities of other.
func (r Role) Covers(other Role) bool {
	return roleRank[r] >= roleRank[other] && roleRank[other] > 0
}

// User is an authenticated account from the users table.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	FirstName    string    `json:"first_name,omitempty"`
	LastName     string    `json:"last_name,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
