package integration

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/internal/service"
	"wallet-ledger/pkg/apperror"
	"wallet-ledger/pkg/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ledgerFixture struct {
	userRepo   *inMemoryUserRepo
	walletRepo *inMemoryWalletRepo
	ledger     *inMemoryLedger
	ledgerSvc  ports.LedgerService
}

func newLedgerFixture() *ledgerFixture {
	log := logger.New("error", false)
	userRepo := newInMemoryUserRepo()
	walletRepo := newInMemoryWalletRepo()
	ledger := newInMemoryLedger()
	transactor := newInMemoryTransactor(ledger)

	return &ledgerFixture{
		userRepo:   userRepo,
		walletRepo: walletRepo,
		ledger:     ledger,
		ledgerSvc:  service.NewLedgerService(ledger, walletRepo, transactor, log),
	}
}

func (f *ledgerFixture) newWallet(t *testing.T) uuid.UUID {
	t.Helper()
	w := domain.NewWallet(uuid.New())
	require.NoError(t, f.walletRepo.Create(context.Background(), w))
	return w.ID
}

func TestConcurrentChargesNeverOverdraw(t *testing.T) {
	f := newLedgerFixture()
	ctx := context.Background()

	customer := f.newWallet(t)
	merchant := f.newWallet(t)

	// 50.00 funds, twenty concurrent 10.00 charges: exactly five can clear.
	require.NoError(t, f.ledgerSvc.AddFunds(ctx, customer, decimal.RequireFromString("50.00")))

	const attempts = 20
	results := make(chan error, attempts)

	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results <- f.ledgerSvc.Charge(ctx, ports.ChargeRequest{
				WalletID:     customer,
				SourceWallet: merchant,
				Amount:       decimal.RequireFromString("10.00"),
				Invoice:      fmt.Sprintf("inv-%d", i),
			})
		}(i)
	}
	wg.Wait()
	close(results)

	var accepted, rejected int
	for err := range results {
		switch {
		case err == nil:
			accepted++
		case isAppErrorCode(err, "LED_003"):
			rejected++
		default:
			t.Fatalf("unexpected charge error: %v", err)
		}
	}
	assert.Equal(t, 5, accepted)
	assert.Equal(t, 15, rejected)

	funds, err := f.ledgerSvc.Funds(ctx, customer)
	require.NoError(t, err)
	assert.True(t, funds.IsZero(), "customer funds should be exactly zero, got %s", funds)

	merchantFunds, err := f.ledgerSvc.Funds(ctx, merchant)
	require.NoError(t, err)
	assert.True(t, merchantFunds.Equal(decimal.RequireFromString("50.00")),
		"merchant funds should be 50.00, got %s", merchantFunds)

	// Every attempt left a pair in the history: 1 deposit + 20 debits.
	history, err := f.ledgerSvc.ListTransactions(ctx, customer)
	require.NoError(t, err)
	assert.Len(t, history, 1+attempts)
}

func TestConcurrentSameInvoiceChargesOnce(t *testing.T) {
	f := newLedgerFixture()
	ctx := context.Background()

	customer := f.newWallet(t)
	merchant := f.newWallet(t)

	require.NoError(t, f.ledgerSvc.AddFunds(ctx, customer, decimal.RequireFromString("100.00")))

	const attempts = 10
	results := make(chan error, attempts)

	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- f.ledgerSvc.Charge(ctx, ports.ChargeRequest{
				WalletID:     customer,
				SourceWallet: merchant,
				Amount:       decimal.RequireFromString("10.00"),
				Invoice:      "same-invoice",
			})
		}()
	}
	wg.Wait()
	close(results)

	var accepted, duplicates int
	for err := range results {
		switch {
		case err == nil:
			accepted++
		case isAppErrorCode(err, "LED_004"):
			duplicates++
		default:
			t.Fatalf("unexpected charge error: %v", err)
		}
	}
	assert.Equal(t, 1, accepted)
	assert.Equal(t, attempts-1, duplicates)

	// Only the single accepted charge was debited.
	funds, err := f.ledgerSvc.Funds(ctx, customer)
	require.NoError(t, err)
	assert.True(t, funds.Equal(decimal.RequireFromString("90.00")),
		"customer funds should be 90.00, got %s", funds)
}

func TestConcurrentDeposits(t *testing.T) {
	f := newLedgerFixture()
	ctx := context.Background()

	wallet := f.newWallet(t)

	const deposits = 50
	var wg sync.WaitGroup
	for i := 0; i < deposits; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, f.ledgerSvc.AddFunds(ctx, wallet, decimal.RequireFromString("1.00")))
		}()
	}
	wg.Wait()

	funds, err := f.ledgerSvc.Funds(ctx, wallet)
	require.NoError(t, err)
	assert.True(t, funds.Equal(decimal.NewFromInt(deposits)),
		"funds should equal the number of deposits, got %s", funds)
}

func TestConcurrentCrossCharges(t *testing.T) {
	f := newLedgerFixture()
	ctx := context.Background()

	// Two wallets charging each other concurrently exercise the fixed lock
	// order: the test must finish (no deadlock) and conserve total funds.
	a := f.newWallet(t)
	b := f.newWallet(t)

	require.NoError(t, f.ledgerSvc.AddFunds(ctx, a, decimal.RequireFromString("100.00")))
	require.NoError(t, f.ledgerSvc.AddFunds(ctx, b, decimal.RequireFromString("100.00")))

	const rounds = 10
	var wg sync.WaitGroup
	for i := 0; i < rounds; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			err := f.ledgerSvc.Charge(ctx, ports.ChargeRequest{
				WalletID:     a,
				SourceWallet: b,
				Amount:       decimal.RequireFromString("5.00"),
				Invoice:      fmt.Sprintf("a-to-b-%d", i),
			})
			assert.NoError(t, err)
		}(i)
		go func(i int) {
			defer wg.Done()
			err := f.ledgerSvc.Charge(ctx, ports.ChargeRequest{
				WalletID:     b,
				SourceWallet: a,
				Amount:       decimal.RequireFromString("5.00"),
				Invoice:      fmt.Sprintf("b-to-a-%d", i),
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	fundsA, err := f.ledgerSvc.Funds(ctx, a)
	require.NoError(t, err)
	fundsB, err := f.ledgerSvc.Funds(ctx, b)
	require.NoError(t, err)

	// Mirrored charges cancel out and the total is conserved.
	assert.True(t, fundsA.Equal(decimal.RequireFromString("100.00")), "wallet a: %s", fundsA)
	assert.True(t, fundsB.Equal(decimal.RequireFromString("100.00")), "wallet b: %s", fundsB)
}

func isAppErrorCode(err error, code string) bool {
	var appErr *apperror.AppError
	return errors.As(err, &appErr) && appErr.Code == code
}
