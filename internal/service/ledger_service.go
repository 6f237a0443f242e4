package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// SQLSTATEs surfaced when a wallet row lock cannot be taken.
const (
	pgLockNotAvailable = "55P03"
	pgDeadlockDetected = "40P01"
)

// lockError classifies a failed wallet lock: lock timeouts and deadlocks are
// retryable by the caller and reported as such, anything else is internal.
func lockError(err error) *apperror.AppError {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && (pgErr.Code == pgLockNotAvailable || pgErr.Code == pgDeadlockDetected) {
		return apperror.ErrLockTimeout(err)
	}
	return apperror.InternalError(fmt.Errorf("lock wallet: %w", err))
}

// LedgerServiceImpl implements ports.LedgerService.
type LedgerServiceImpl struct {
	ledgerRepo ports.LedgerRepository
	walletRepo ports.WalletRepository
	transactor ports.DBTransactor
	log        zerolog.Logger
}

// NewLedgerService creates a new LedgerServiceImpl.
func NewLedgerService(
	ledgerRepo ports.LedgerRepository,
	walletRepo ports.WalletRepository,
	transactor ports.DBTransactor,
	log zerolog.Logger,
) *LedgerServiceImpl {
	return &LedgerServiceImpl{
		ledgerRepo: ledgerRepo,
		walletRepo: walletRepo,
		transactor: transactor,
		log:        log,
	}
}

// AddFunds appends one accepted external-funding entry to the wallet.
func (s *LedgerServiceImpl) AddFunds(ctx context.Context, walletID uuid.UUID, amount decimal.Decimal) error {
	if !domain.ValidAmount(amount) {
		return apperror.ErrInvalidAmount()
	}

	// Begin database transaction
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	// Lock & get wallet
	wallet, err := s.walletRepo.LockByID(ctx, dbTx, walletID)
	if err != nil {
		return lockError(err)
	}
	if wallet == nil {
		return apperror.ErrNotFound("wallet")
	}

	entry := domain.Deposit(walletID, amount)
	if err := s.ledgerRepo.Append(ctx, dbTx, entry); err != nil {
		return apperror.InternalError(fmt.Errorf("append deposit: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("wallet_id", walletID.String()).
		Str("amount", amount.String()).
		Msg("funds added")

	return nil
}

// Charge debits req.WalletID and credits req.SourceWallet as one atomic unit
// of work. Both wallet rows are locked in a fixed order before the funds
// check; a failed check still commits the rejected pair so the attempt stays
// in the history, then reports ErrInsufficientFunds.
func (s *LedgerServiceImpl) Charge(ctx context.Context, req ports.ChargeRequest) error {
	if !domain.ValidAmount(req.Amount) {
		return apperror.ErrInvalidAmount()
	}
	if req.Invoice == "" {
		return apperror.ErrInvoiceRequired()
	}

	// Begin database transaction
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	// Lock both wallets in a fixed (byte-wise) order so two concurrent
	// charges over the same pair cannot deadlock, and the funds of both
	// sides are pinned before any decision is made.
	first, second := req.WalletID, req.SourceWallet
	if bytes.Compare(second[:], first[:]) < 0 {
		first, second = second, first
	}

	var target, source *domain.Wallet
	for _, id := range []uuid.UUID{first, second} {
		w, err := s.walletRepo.LockByID(ctx, dbTx, id)
		if err != nil {
			return lockError(err)
		}
		if id == req.WalletID {
			target = w
		}
		if id == req.SourceWallet {
			source = w
		}
	}
	if target == nil {
		return apperror.ErrNotFound("wallet")
	}
	if source == nil {
		return apperror.ErrNotFound("source wallet")
	}

	// Funds check under the lock
	funds, err := s.ledgerRepo.FundsTx(ctx, dbTx, req.WalletID)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("derive funds: %w", err))
	}

	accepted := funds.GreaterThanOrEqual(req.Amount)
	var comment, invoice *string
	if accepted {
		invoice = &req.Invoice
	} else {
		c := domain.CommentInsufficientFunds
		comment = &c
	}

	debit, credit := domain.ChargePair(req.WalletID, req.SourceWallet, req.Amount, accepted, comment, invoice)

	for _, entry := range []*domain.Transaction{debit, credit} {
		if err := s.ledgerRepo.Append(ctx, dbTx, entry); err != nil {
			if errors.Is(err, domain.ErrInvoiceConflict) {
				return apperror.ErrDuplicateInvoice()
			}
			return apperror.InternalError(fmt.Errorf("append charge entry: %w", err))
		}
	}

	// The rejected pair is committed too: failed attempts are part of the
	// wallet history.
	if err := dbTx.Commit(ctx); err != nil {
		return apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	if !accepted {
		s.log.Info().
			Str("wallet_id", req.WalletID.String()).
			Str("source_wallet", req.SourceWallet.String()).
			Str("amount", req.Amount.String()).
			Str("funds", funds.String()).
			Msg("charge rejected: insufficient funds")
		return apperror.ErrInsufficientFunds()
	}

	s.log.Info().
		Str("wallet_id", req.WalletID.String()).
		Str("source_wallet", req.SourceWallet.String()).
		Str("amount", req.Amount.String()).
		Str("invoice", req.Invoice).
		Msg("charge accepted")

	return nil
}

// Funds derives the wallet's current funds from its accepted history.
func (s *LedgerServiceImpl) Funds(ctx context.Context, walletID uuid.UUID) (decimal.Decimal, error) {
	wallet, err := s.walletRepo.GetByID(ctx, walletID)
	if err != nil {
		return decimal.Zero, apperror.InternalError(fmt.Errorf("get wallet: %w", err))
	}
	if wallet == nil {
		return decimal.Zero, apperror.ErrNotFound("wallet")
	}

	funds, err := s.ledgerRepo.Funds(ctx, walletID)
	if err != nil {
		return decimal.Zero, apperror.InternalError(fmt.Errorf("derive funds: %w", err))
	}
	return funds, nil
}

// ListTransactions returns the full ordered history for a wallet.
func (s *LedgerServiceImpl) ListTransactions(ctx context.Context, walletID uuid.UUID) ([]domain.Transaction, error) {
	wallet, err := s.walletRepo.GetByID(ctx, walletID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get wallet: %w", err))
	}
	if wallet == nil {
		return nil, apperror.ErrNotFound("wallet")
	}

	txs, err := s.ledgerRepo.ListByWallet(ctx, walletID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list transactions: %w", err))
	}
	return txs, nil
}
