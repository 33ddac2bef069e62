package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/set-night/finmind/internal/config"
	"github.com/set-night/finmind/internal/domain"
	"github.com/shopspring/decimal"
)

// TransactionRepository stores the transactions behind the dashboard.
// Delete returns domain.ErrNotFound when the user has no such transaction.
type TransactionRepository interface {
	ListByUser(ctx context.Context, userID string) ([]domain.Transaction, error)
	Add(ctx context.Context, t domain.Transaction) (*domain.Transaction, error)
	Delete(ctx context.Context, userID, id string) error
}

// CurrentUser is what FinancialService needs from the session.
type CurrentUser interface {
	IsAuthenticated() bool
	User() *domain.UserProfile
}

// FinancialService holds the dashboard data of the logged-in user: the
// transaction list and the summary computed from it.
type FinancialService struct {
	repo    TransactionRepository
	session CurrentUser

	mu           sync.RWMutex
	transactions []domain.Transaction
	summary      *domain.FinancialSummary
	errMsg       string
	inflight     int
}

func NewFinancialService(repo TransactionRepository, session CurrentUser) *FinancialService {
	return &FinancialService{
		repo:         repo,
		session:      session,
		transactions: []domain.Transaction{},
	}
}

// Load replaces the transaction list and the summary.
func (s *FinancialService) Load(ctx context.Context) error {
	userID, err := s.begin()
	if err != nil {
		return err
	}
	defer s.end()

	list, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return s.fail(fmt.Errorf("list transactions: %w", err), "Failed to load transactions")
	}
	summary := Summarize(list)

	s.mu.Lock()
	s.transactions = list
	s.summary = &summary
	s.mu.Unlock()
	return nil
}

// AddTransaction stores t for the current user, appends it and recomputes the summary.
// A zero Date means now.
func (s *FinancialService) AddTransaction(ctx context.Context, t domain.Transaction) (*domain.Transaction, error) {
	userID, err := s.begin()
	if err != nil {
		return nil, err
	}
	defer s.end()

	t.UserID = userID
	if t.Date.IsZero() {
		t.Date = time.Now().UTC()
	}
	if err := t.Validate(); err != nil {
		return nil, s.fail(err, "Invalid transaction")
	}

	created, err := s.repo.Add(ctx, t)
	if err != nil {
		return nil, s.fail(fmt.Errorf("add transaction: %w", err), "Failed to add transaction")
	}

	s.mu.Lock()
	s.transactions = append(s.transactions, *created)
	s.mu.Unlock()

	s.refreshSummary(ctx, userID)
	return created, nil
}

// DeleteTransaction removes the transaction from the store and then from the list.
func (s *FinancialService) DeleteTransaction(ctx context.Context, id string) error {
	userID, err := s.begin()
	if err != nil {
		return err
	}
	defer s.end()

	if err := s.repo.Delete(ctx, userID, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return s.fail(err, "Transaction not found")
		}
		return s.fail(fmt.Errorf("delete transaction: %w", err), "Failed to delete transaction")
	}

	s.mu.Lock()
	kept := s.transactions[:0:0]
	for _, t := range s.transactions {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	s.transactions = kept
	s.mu.Unlock()

	s.refreshSummary(ctx, userID)
	return nil
}

func (s *FinancialService) Transactions() []domain.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Transaction, len(s.transactions))
	copy(out, s.transactions)
	return out
}

// Summary is false until the first successful Load, add or delete.
func (s *FinancialService) Summary() (domain.FinancialSummary, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.summary == nil {
		return domain.FinancialSummary{}, false
	}
	return *s.summary, true
}

func (s *FinancialService) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inflight > 0
}

func (s *FinancialService) Err() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.errMsg
}

// Clear drops the cached dashboard, e.g. on logout.
func (s *FinancialService) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transactions = []domain.Transaction{}
	s.summary = nil
	s.errMsg = ""
}

// Summarize totals income and expenses. Savings are a fixed share of the net
// balance and the savings rate is their percentage of income, zero without income.
func Summarize(list []domain.Transaction) domain.FinancialSummary {
	income, expenses := decimal.Zero, decimal.Zero
	for _, t := range list {
		switch t.Type {
		case domain.TransactionIncome:
			income = income.Add(t.Amount)
		case domain.TransactionExpense:
			expenses = expenses.Add(t.Amount)
		}
	}

	balance := income.Sub(expenses)
	savings := balance.Mul(decimal.NewFromInt(config.SavingsSharePercent)).Div(decimal.NewFromInt(100))
	rate := decimal.Zero
	if income.IsPositive() {
		rate = savings.Div(income).Mul(decimal.NewFromInt(100)).Round(2)
	}

	return domain.FinancialSummary{
		TotalBalance:    balance,
		MonthlyIncome:   income,
		MonthlyExpenses: expenses,
		Savings:         savings,
		SavingsRate:     rate,
	}
}

// refreshSummary recomputes the summary from the store. A failure keeps the
// previous summary.
func (s *FinancialService) refreshSummary(ctx context.Context, userID string) {
	list, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		slog.Warn("refresh financial summary", "error", err)
		return
	}
	summary := Summarize(list)
	s.mu.Lock()
	s.summary = &summary
	s.mu.Unlock()
}

func (s *FinancialService) begin() (string, error) {
	user := s.session.User()
	if user == nil || !s.session.IsAuthenticated() {
		return "", domain.ErrNotAuthenticated
	}
	s.mu.Lock()
	s.inflight++
	s.errMsg = ""
	s.mu.Unlock()
	return user.ID, nil
}

func (s *FinancialService) end() {
	s.mu.Lock()
	s.inflight--
	s.mu.Unlock()
}

func (s *FinancialService) fail(err error, fallback string) error {
	s.mu.Lock()
	s.errMsg = fallback
	s.mu.Unlock()
	slog.Warn("financial data operation failed", "error", err)
	return err
}
