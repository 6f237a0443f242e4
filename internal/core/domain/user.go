package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role classifies a user account for wallet-creation rules.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleMerchant Role = "merchant"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	return r == RoleCustomer || r == RoleMerchant
}

// User represents a registered account owning zero or more wallets.
type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never expose
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsMerchant returns true if the user is subject to the single-wallet rule.
func (u *User) IsMerchant() bool {
	return u.Role == RoleMerchant
}
