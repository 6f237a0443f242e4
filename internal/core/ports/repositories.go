package ports

import (
	"context"

	"wallet-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// UserRepository defines persistence operations for user accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}

// WalletRepository defines persistence operations for wallets.
// LockByID acquires a row-level lock on the wallet by identity; it MUST be
// called within a transaction. Locking by wallet identity rather than by the
// wallet's existing ledger rows serializes the very first write against an
// empty history as well.
type WalletRepository interface {
	Create(ctx context.Context, wallet *domain.Wallet) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Wallet, error)
	ListByUserID(ctx context.Context, userID uuid.UUID) ([]domain.Wallet, error)
	CountByUserID(ctx context.Context, userID uuid.UUID) (int64, error)
	LockByID(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Wallet, error)
}

// LedgerRepository is the append-only transaction log.
// Append returns an error wrapping domain.ErrInvoiceConflict when the
// (invoice, wallet_to) uniqueness guard is violated. Funds sums accepted
// entries crediting the wallet; FundsTx does the same inside an open
// transaction so funds-dependent decisions happen under the lock scope.
type LedgerRepository interface {
	Append(ctx context.Context, tx pgx.Tx, entry *domain.Transaction) error
	Funds(ctx context.Context, walletID uuid.UUID) (decimal.Decimal, error)
	FundsTx(ctx context.Context, tx pgx.Tx, walletID uuid.UUID) (decimal.Decimal, error)
	ListByWallet(ctx context.Context, walletID uuid.UUID) ([]domain.Transaction, error)
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
