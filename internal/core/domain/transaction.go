package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrInvoiceConflict is returned by ledger stores when appending an entry
// whose (invoice, wallet_to) pair already exists. The pair is unique for
// non-null invoices; it is the double-charge guard.
var ErrInvoiceConflict = errors.New("invoice already charged to this wallet")

// CommentInsufficientFunds is recorded on the rejected pair of a charge
// attempt that failed the funds check.
const CommentInsufficientFunds = "Insufficient funds"

// Transaction is an immutable, signed ledger entry. A positive amount
// credits WalletTo; a charge appends a mirrored debit/credit pair sharing
// the same accepted flag and invoice. WalletFrom is nil for external
// funding (deposits).
type Transaction struct {
	ID         int64           `json:"id"`
	WalletTo   uuid.UUID       `json:"wallet_to"`
	WalletFrom *uuid.UUID      `json:"wallet_from"`
	Amount     decimal.Decimal `json:"amount"`
	Accepted   bool            `json:"accepted"`
	Comment    *string         `json:"comment"`
	Invoice    *string         `json:"invoice"`
	CreatedAt  time.Time       `json:"created_at"`
}

// Deposit builds an accepted external-funding entry for a wallet.
func Deposit(walletTo uuid.UUID, amount decimal.Decimal) *Transaction {
	return &Transaction{
		WalletTo:  walletTo,
		Amount:    amount,
		Accepted:  true,
		CreatedAt: time.Now().UTC(),
	}
}

// ChargePair builds the debit and credit entries of a double-entry charge.
// The debited wallet receives the negated amount, the credited wallet the
// mirrored positive amount; both carry the same accepted, comment and
// invoice values.
func ChargePair(walletTo, walletFrom uuid.UUID, amount decimal.Decimal, accepted bool, comment, invoice *string) (debit, credit *Transaction) {
	now := time.Now().UTC()
	debit = &Transaction{
		WalletTo:   walletTo,
		WalletFrom: &walletFrom,
		Amount:     amount.Neg(),
		Accepted:   accepted,
		Comment:    comment,
		Invoice:    invoice,
		CreatedAt:  now,
	}
	credit = &Transaction{
		WalletTo:   walletFrom,
		WalletFrom: &walletTo,
		Amount:     amount,
		Accepted:   accepted,
		Comment:    comment,
		Invoice:    invoice,
		CreatedAt:  now,
	}
	return debit, credit
}

// ValidAmount reports whether amount is a positive decimal with at most two
// fractional digits, the only form the ledger accepts.
func ValidAmount(amount decimal.Decimal) bool {
	return amount.IsPositive() && amount.Equal(amount.Round(2))
}
