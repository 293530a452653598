package domain

import (
	"time"

	"github.com/google/uuid"
)

// Account roles
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Account represents a storefront user account.
// Password holds whatever the configured credential verifier sealed.
type Account struct {
	ID         uuid.UUID `json:"id" db:"id"`
	FName      string    `json:"fname" db:"fname"`
	Email      string    `json:"email" db:"email"`
	Password   string    `json:"-" db:"password"`
	Role       string    `json:"role" db:"role"`
	IsDisabled bool      `json:"isDisabled" db:"is_disabled"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// ValidRole reports whether role is one of the known account roles.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleUser
}

// IsAdmin reports whether the account holds the admin role.
func (a *Account) IsAdmin() bool {
	return a.Role == RoleAdmin
}
