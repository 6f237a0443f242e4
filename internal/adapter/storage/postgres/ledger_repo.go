package postgres

import (
	"context"
	"errors"
	"fmt"

	"wallet-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

// pgUniqueViolation is the SQLSTATE for a unique constraint violation.
const pgUniqueViolation = "23505"

// LedgerRepo implements ports.LedgerRepository over the append-only
// transactions table.
type LedgerRepo struct {
	pool Pool
}

// NewLedgerRepo creates a new LedgerRepo.
func NewLedgerRepo(pool Pool) *LedgerRepo {
	return &LedgerRepo{pool: pool}
}

// Append inserts a single ledger entry within the given transaction and
// fills in its generated ID. A duplicate (invoice, wallet_to) pair is
// reported as domain.ErrInvoiceConflict.
func (r *LedgerRepo) Append(ctx context.Context, tx pgx.Tx, t *domain.Transaction) error {
	query := `INSERT INTO transactions (wallet_to, wallet_from, amount, accepted, comment, invoice, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`

	err := tx.QueryRow(ctx, query,
		t.WalletTo, t.WalletFrom, t.Amount,
		t.Accepted, t.Comment, t.Invoice, t.CreatedAt,
	).Scan(&t.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return fmt.Errorf("append transaction: %w", domain.ErrInvoiceConflict)
		}
		return fmt.Errorf("append transaction: %w", err)
	}
	return nil
}

const fundsQuery = `SELECT COALESCE(SUM(amount), 0) FROM transactions WHERE wallet_to = $1 AND accepted`

// Funds derives the wallet balance by summing its accepted entries.
func (r *LedgerRepo) Funds(ctx context.Context, walletID uuid.UUID) (decimal.Decimal, error) {
	var funds decimal.Decimal
	if err := r.pool.QueryRow(ctx, fundsQuery, walletID).Scan(&funds); err != nil {
		return decimal.Zero, fmt.Errorf("sum funds: %w", err)
	}
	return funds, nil
}

// FundsTx derives the wallet balance inside an open transaction. Callers
// must hold the wallet row lock so the sum cannot change before commit.
func (r *LedgerRepo) FundsTx(ctx context.Context, tx pgx.Tx, walletID uuid.UUID) (decimal.Decimal, error) {
	var funds decimal.Decimal
	if err := tx.QueryRow(ctx, fundsQuery, walletID).Scan(&funds); err != nil {
		return decimal.Zero, fmt.Errorf("sum funds: %w", err)
	}
	return funds, nil
}

// ListByWallet returns the full history of entries targeting a wallet,
// accepted and rejected alike, in insertion order.
func (r *LedgerRepo) ListByWallet(ctx context.Context, walletID uuid.UUID) ([]domain.Transaction, error) {
	query := `SELECT id, wallet_to, wallet_from, amount, accepted, comment, invoice, created_at
		FROM transactions WHERE wallet_to = $1 ORDER BY id`

	rows, err := r.pool.Query(ctx, query, walletID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txs []domain.Transaction
	for rows.Next() {
		t := domain.Transaction{}
		err := rows.Scan(
			&t.ID, &t.WalletTo, &t.WalletFrom, &t.Amount,
			&t.Accepted, &t.Comment, &t.Invoice, &t.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan transaction row: %w", err)
		}
		txs = append(txs, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transaction rows: %w", err)
	}
	return txs, nil
}
