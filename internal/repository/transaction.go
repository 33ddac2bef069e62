package repository

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/set-night/finmind/internal/domain"
	"github.com/shopspring/decimal"
)

// TransactionStore keeps transactions in the transactions table.
type TransactionStore struct {
	db *pgxpool.Pool
}

func NewTransactionStore(db *pgxpool.Pool) *TransactionStore {
	return &TransactionStore{db: db}
}

func (s *TransactionStore) ListByUser(ctx context.Context, userID string) ([]domain.Transaction, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id::text, user_id, amount::text, type, category, description, occurred_at
		FROM transactions WHERE user_id = $1
		ORDER BY occurred_at, created_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	list, err := pgx.CollectRows(rows, scanTransaction)
	if err != nil {
		return nil, fmt.Errorf("scan transactions: %w", err)
	}
	if list == nil {
		list = []domain.Transaction{}
	}
	return list, nil
}

func (s *TransactionStore) Add(ctx context.Context, t domain.Transaction) (*domain.Transaction, error) {
	t.ID = uuid.NewString()
	_, err := s.db.Exec(ctx, `
		INSERT INTO transactions (id, user_id, amount, type, category, description, occurred_at)
		VALUES ($1, $2, $3::numeric, $4, $5, $6, $7)`,
		t.ID, t.UserID, t.Amount.String(), string(t.Type), t.Category, t.Description, t.Date)
	if err != nil {
		return nil, fmt.Errorf("insert transaction: %w", err)
	}
	return &t, nil
}

// Delete removes one of the user's transactions. A miss is domain.ErrNotFound.
func (s *TransactionStore) Delete(ctx context.Context, userID, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return domain.ErrNotFound
	}
	tag, err := s.db.Exec(ctx, `DELETE FROM transactions WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanTransaction(row pgx.CollectableRow) (domain.Transaction, error) {
	var (
		t      domain.Transaction
		amount string
		typ    string
	)
	if err := row.Scan(&t.ID, &t.UserID, &amount, &typ, &t.Category, &t.Description, &t.Date); err != nil {
		return t, err
	}
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return t, fmt.Errorf("parse amount %q: %w", amount, err)
	}
	t.Amount = d
	t.Type = domain.TransactionType(typ)
	return t, nil
}

// MemoryTransactionStore keeps transactions in process memory. It is used when
// no database is configured.
type MemoryTransactionStore struct {
	mu   sync.RWMutex
	list []domain.Transaction
}

func NewMemoryTransactionStore() *MemoryTransactionStore {
	return &MemoryTransactionStore{}
}

func (m *MemoryTransactionStore) ListByUser(_ context.Context, userID string) ([]domain.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []domain.Transaction{}
	for _, t := range m.list {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	slices.SortStableFunc(out, func(a, b domain.Transaction) int {
		return a.Date.Compare(b.Date)
	})
	return out, nil
}

func (m *MemoryTransactionStore) Add(_ context.Context, t domain.Transaction) (*domain.Transaction, error) {
	t.ID = uuid.NewString()
	m.mu.Lock()
	m.list = append(m.list, t)
	m.mu.Unlock()
	return &t, nil
}

func (m *MemoryTransactionStore) Delete(_ context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := slices.IndexFunc(m.list, func(t domain.Transaction) bool {
		return t.ID == id && t.UserID == userID
	})
	if i < 0 {
		return domain.ErrNotFound
	}
	m.list = slices.Delete(m.list, i, i+1)
	return nil
}
