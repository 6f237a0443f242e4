package dto

import (
	"time"

	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"

	"github.com/shopspring/decimal"
)

// RegisterRequest is the request body for account registration.
type RegisterRequest struct {
	Username  string `json:"username" binding:"required,min=3,max=50,safe_id"`
	Email     string `json:"email" binding:"required,email,max=254"`
	Password  string `json:"password" binding:"required,min=8,max=128"`
	FirstName string `json:"first_name" binding:"max=150"`
	LastName  string `json:"last_name" binding:"max=150"`
	Role      string `json:"role" binding:"required,oneof=customer merchant"`
}

// LoginRequest is the request body for login.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse is the response body for successful login.
type LoginResponse struct {
	Token  string `json:"token"`
	Expiry int64  `json:"expiry"` // Unix timestamp
}

// AddFundsRequest is the request body for external funding of a wallet.
// Amount validity (positive, two fractional digits) is a business rule and
// is checked by the ledger service, not by binding tags, so that bad values
// yield the field-level error contract instead of a generic binding error.
type AddFundsRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// ChargeRequest is the request body for charging a wallet.
type ChargeRequest struct {
	Amount       decimal.Decimal `json:"amount"`
	Invoice      string          `json:"invoice" binding:"omitempty,max=30,safe_id"`
	SourceWallet string          `json:"source_wallet" binding:"required,uuid"`
}

// UserResponse is the public view of a user account.
type UserResponse struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
	CreatedAt string `json:"created_at"`
}

// WalletResponse is a wallet with its derived funds.
type WalletResponse struct {
	ID     string          `json:"id"`
	UserID string          `json:"user_id"`
	Funds  decimal.Decimal `json:"funds"`
}

// TransactionResponse is a single ledger entry.
type TransactionResponse struct {
	ID         int64           `json:"id"`
	WalletTo   string          `json:"wallet_to"`
	WalletFrom *string         `json:"wallet_from"`
	Amount     decimal.Decimal `json:"amount"`
	Accepted   bool            `json:"accepted"`
	Comment    *string         `json:"comment"`
	Invoice    *string         `json:"invoice"`
	CreatedAt  string          `json:"created_at"`
}

// NewUserResponse maps a domain user to its public view.
func NewUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID.String(),
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// NewWalletResponse maps a wallet view to its response form.
func NewWalletResponse(v ports.WalletView) WalletResponse {
	return WalletResponse{
		ID:     v.Wallet.ID.String(),
		UserID: v.Wallet.UserID.String(),
		Funds:  v.Funds,
	}
}

// NewTransactionResponse maps a ledger entry to its response form.
func NewTransactionResponse(t domain.Transaction) TransactionResponse {
	resp := TransactionResponse{
		ID:        t.ID,
		WalletTo:  t.WalletTo.String(),
		Amount:    t.Amount,
		Accepted:  t.Accepted,
		Comment:   t.Comment,
		Invoice:   t.Invoice,
		CreatedAt: t.CreatedAt.UTC().Format(time.RFC3339),
	}
	if t.WalletFrom != nil {
		from := t.WalletFrom.String()
		resp.WalletFrom = &from
	}
	return resp
}
