package service

import (
	"context"
	"fmt"

	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/pkg/apperror"

	"github.com/google/uuid"
)

// WalletServiceImpl implements ports.WalletService.
type WalletServiceImpl struct {
	walletRepo ports.WalletRepository
	ledgerRepo ports.LedgerRepository
	userRepo   ports.UserRepository
}

// NewWalletService creates a new WalletServiceImpl.
func NewWalletService(
	walletRepo ports.WalletRepository,
	ledgerRepo ports.LedgerRepository,
	userRepo ports.UserRepository,
) *WalletServiceImpl {
	return &WalletServiceImpl{
		walletRepo: walletRepo,
		ledgerRepo: ledgerRepo,
		userRepo:   userRepo,
	}
}

// CreateWallet creates a wallet for the user. Customer accounts may hold any
// number of wallets; merchant accounts are limited to one.
func (s *WalletServiceImpl) CreateWallet(ctx context.Context, userID uuid.UUID) (*domain.Wallet, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get user: %w", err))
	}
	if user == nil {
		return nil, apperror.ErrNotFound("user")
	}

	if user.IsMerchant() {
		count, err := s.walletRepo.CountByUserID(ctx, userID)
		if err != nil {
			return nil, apperror.InternalError(fmt.Errorf("count wallets: %w", err))
		}
		if count >= 1 {
			return nil, apperror.ErrMerchantWalletLimit()
		}
	}

	wallet := domain.NewWallet(userID)
	if err := s.walletRepo.Create(ctx, wallet); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create wallet: %w", err))
	}
	return wallet, nil
}

// GetWallet returns the wallet with its derived funds.
func (s *WalletServiceImpl) GetWallet(ctx context.Context, walletID uuid.UUID) (*ports.WalletView, error) {
	wallet, err := s.walletRepo.GetByID(ctx, walletID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get wallet: %w", err))
	}
	if wallet == nil {
		return nil, apperror.ErrNotFound("wallet")
	}

	funds, err := s.ledgerRepo.Funds(ctx, walletID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("derive funds: %w", err))
	}

	return &ports.WalletView{Wallet: *wallet, Funds: funds}, nil
}

// ListUserWallets returns the user's wallets with derived funds.
func (s *WalletServiceImpl) ListUserWallets(ctx context.Context, userID uuid.UUID) ([]ports.WalletView, error) {
	wallets, err := s.walletRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list wallets: %w", err))
	}

	views := make([]ports.WalletView, 0, len(wallets))
	for _, w := range wallets {
		funds, err := s.ledgerRepo.Funds(ctx, w.ID)
		if err != nil {
			return nil, apperror.InternalError(fmt.Errorf("derive funds: %w", err))
		}
		views = append(views, ports.WalletView{Wallet: w, Funds: funds})
	}
	return views, nil
}
