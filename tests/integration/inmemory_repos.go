package integration

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"wallet-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

// --- In-Memory User Repo ---

type inMemoryUserRepo struct {
	mu    sync.RWMutex
	users map[uuid.UUID]*domain.User
}

func newInMemoryUserRepo() *inMemoryUserRepo {
	return &inMemoryUserRepo{users: make(map[uuid.UUID]*domain.User)}
}

func (r *inMemoryUserRepo) Create(ctx context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Username == u.Username {
			return fmt.Errorf("username already exists")
		}
	}
	r.users[u.ID] = u
	return nil
}

func (r *inMemoryUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	return u, nil
}

func (r *inMemoryUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, nil
}

// --- In-Memory Wallet Repo ---

type inMemoryWalletRepo struct {
	mu      sync.RWMutex
	wallets map[uuid.UUID]*domain.Wallet
	order   []uuid.UUID // creation order, mirrors ORDER BY created_at
}

func newInMemoryWalletRepo() *inMemoryWalletRepo {
	return &inMemoryWalletRepo{wallets: make(map[uuid.UUID]*domain.Wallet)}
}

func (r *inMemoryWalletRepo) Create(ctx context.Context, w *domain.Wallet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.wallets[w.ID] = w
	r.order = append(r.order, w.ID)
	return nil
}

func (r *inMemoryWalletRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Wallet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.wallets[id]
	if !ok {
		return nil, nil
	}
	return w, nil
}

func (r *inMemoryWalletRepo) ListByUserID(ctx context.Context, userID uuid.UUID) ([]domain.Wallet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.Wallet
	for _, id := range r.order {
		if w := r.wallets[id]; w.UserID == userID {
			result = append(result, *w)
		}
	}
	return result, nil
}

func (r *inMemoryWalletRepo) CountByUserID(ctx context.Context, userID uuid.UUID) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var n int64
	for _, w := range r.wallets {
		if w.UserID == userID {
			n++
		}
	}
	return n, nil
}

// LockByID relies on the in-memory transactor serializing units of work, so
// there is no per-row lock to take here.
func (r *inMemoryWalletRepo) LockByID(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Wallet, error) {
	return r.GetByID(ctx, id)
}

// --- In-Memory Ledger ---

// inMemoryLedger is an append-only log with transactional staging: entries
// appended inside a transaction become visible only on commit, and the
// (invoice, wallet_to) uniqueness guard sees both committed and staged rows.
type inMemoryLedger struct {
	mu      sync.RWMutex
	entries []domain.Transaction
	nextID  int64
}

func newInMemoryLedger() *inMemoryLedger {
	return &inMemoryLedger{nextID: 1}
}

func (r *inMemoryLedger) Append(ctx context.Context, tx pgx.Tx, entry *domain.Transaction) error {
	mt, ok := tx.(*memTx)
	if !ok {
		return fmt.Errorf("append requires a memTx, got %T", tx)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	if entry.Invoice != nil {
		for i := range r.entries {
			if e := &r.entries[i]; e.Invoice != nil && *e.Invoice == *entry.Invoice && e.WalletTo == entry.WalletTo {
				return fmt.Errorf("append transaction: %w", domain.ErrInvoiceConflict)
			}
		}
		for _, e := range mt.pending {
			if e.Invoice != nil && *e.Invoice == *entry.Invoice && e.WalletTo == entry.WalletTo {
				return fmt.Errorf("append transaction: %w", domain.ErrInvoiceConflict)
			}
		}
	}

	mt.pending = append(mt.pending, entry)
	return nil
}

func (r *inMemoryLedger) Funds(ctx context.Context, walletID uuid.UUID) (decimal.Decimal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sumLocked(walletID), nil
}

func (r *inMemoryLedger) FundsTx(ctx context.Context, tx pgx.Tx, walletID uuid.UUID) (decimal.Decimal, error) {
	mt, ok := tx.(*memTx)
	if !ok {
		return decimal.Zero, fmt.Errorf("funds requires a memTx, got %T", tx)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	sum := r.sumLocked(walletID)
	for _, e := range mt.pending {
		if e.WalletTo == walletID && e.Accepted {
			sum = sum.Add(e.Amount)
		}
	}
	return sum, nil
}

func (r *inMemoryLedger) ListByWallet(ctx context.Context, walletID uuid.UUID) ([]domain.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.Transaction
	for _, e := range r.entries {
		if e.WalletTo == walletID {
			result = append(result, e)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r *inMemoryLedger) sumLocked(walletID uuid.UUID) decimal.Decimal {
	sum := decimal.Zero
	for i := range r.entries {
		if e := &r.entries[i]; e.WalletTo == walletID && e.Accepted {
			sum = sum.Add(e.Amount)
		}
	}
	return sum
}

func (r *inMemoryLedger) flush(pending []*domain.Transaction) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range pending {
		e.ID = r.nextID
		r.nextID++
		r.entries = append(r.entries, *e)
	}
}

// --- In-Memory Transactor ---

// inMemoryTransactor serializes units of work with one global lock, standing
// in for the row locks a real database would take.
type inMemoryTransactor struct {
	mu     sync.Mutex
	ledger *inMemoryLedger
}

func newInMemoryTransactor(ledger *inMemoryLedger) *inMemoryTransactor {
	return &inMemoryTransactor{ledger: ledger}
}

func (t *inMemoryTransactor) Begin(ctx context.Context) (pgx.Tx, error) {
	t.mu.Lock()
	return &memTx{transactor: t}, nil
}

// memTx is a pgx.Tx implementation backed by the in-memory ledger. Appends
// stage on the transaction and flush on commit; rollback discards them.
type memTx struct {
	transactor *inMemoryTransactor
	pending    []*domain.Transaction
	done       sync.Once
}

func (t *memTx) Commit(ctx context.Context) error {
	t.done.Do(func() {
		t.transactor.ledger.flush(t.pending)
		t.transactor.mu.Unlock()
	})
	return nil
}

func (t *memTx) Rollback(ctx context.Context) error {
	t.done.Do(func() {
		t.pending = nil
		t.transactor.mu.Unlock()
	})
	return nil
}

func (t *memTx) Begin(ctx context.Context) (pgx.Tx, error) { return t, nil }
func (t *memTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (t *memTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (t *memTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (t *memTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (t *memTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag(""), nil
}
func (t *memTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (t *memTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}
func (t *memTx) Conn() *pgx.Conn { return nil }
