package ports

import (
	"context"
	"time"

	"wallet-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// --- Service Ports (Business Logic) ---

// LedgerService is the transfer engine: atomic double-entry charges and
// external deposits over the append-only log.
type LedgerService interface {
	// AddFunds appends one accepted external-funding entry.
	AddFunds(ctx context.Context, walletID uuid.UUID, amount decimal.Decimal) error
	// Charge debits walletID and credits the source wallet as one unit of
	// work, enforcing sufficiency of funds and invoice uniqueness.
	Charge(ctx context.Context, req ChargeRequest) error
	// Funds derives the wallet's current funds from its history.
	Funds(ctx context.Context, walletID uuid.UUID) (decimal.Decimal, error)
	// ListTransactions returns the full ordered history for a wallet.
	ListTransactions(ctx context.Context, walletID uuid.UUID) ([]domain.Transaction, error)
}

// ChargeRequest holds validated input for a charge.
type ChargeRequest struct {
	WalletID     uuid.UUID
	SourceWallet uuid.UUID
	Amount       decimal.Decimal
	Invoice      string
}

// WalletService manages wallet lifecycle and derived views.
type WalletService interface {
	// CreateWallet creates a wallet for the user, enforcing the
	// single-wallet rule for merchant accounts.
	CreateWallet(ctx context.Context, userID uuid.UUID) (*domain.Wallet, error)
	GetWallet(ctx context.Context, walletID uuid.UUID) (*WalletView, error)
	ListUserWallets(ctx context.Context, userID uuid.UUID) ([]WalletView, error)
}

// WalletView is a wallet with its derived funds attached.
type WalletView struct {
	Wallet domain.Wallet
	Funds  decimal.Decimal
}

// AuthService defines account registration and login.
type AuthService interface {
	Register(ctx context.Context, req RegisterRequest) (*domain.User, error)
	Login(ctx context.Context, username, password string) (string, time.Time, error) // token, expiry, error
	GetProfile(ctx context.Context, userID uuid.UUID) (*domain.User, error)
}

// RegisterRequest holds input for account registration.
type RegisterRequest struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
	Role      domain.Role
}

// HashService handles password hashing (Argon2id).
type HashService interface {
	Hash(password string) (string, error)
	Verify(password string, hash string) (bool, error)
}

// TokenService handles JWT token operations.
type TokenService interface {
	Generate(userID uuid.UUID, role domain.Role) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	UserID uuid.UUID
	Role   domain.Role
}
