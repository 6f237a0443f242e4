package domain

import (
	"time"

	"github.com/google/uuid"
)

// Wallet represents an account holding derived funds, owned by one user.
// It stores no balance field: funds are always recomputed from the
// transaction log, trading read cost for auditability.
type Wallet struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewWallet creates a wallet with a fresh random identity for the given
// owner. Identities are random UUIDs, not sequential, so wallet ids cannot
// be enumerated.
func NewWallet(userID uuid.UUID) *Wallet {
	now := time.Now().UTC()
	return &Wallet{
		ID:        uuid.New(),
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
