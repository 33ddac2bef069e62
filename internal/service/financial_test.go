package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/set-night/finmind/internal/domain"
	"github.com/set-night/finmind/internal/repository"
	"github.com/shopspring/decimal"
)

type staticUser struct{ user *domain.UserProfile }

func (s staticUser) IsAuthenticated() bool      { return s.user != nil }
func (s staticUser) User() *domain.UserProfile { return s.user }

type brokenTransactions struct{ err error }

func (b brokenTransactions) ListByUser(context.Context, string) ([]domain.Transaction, error) {
	return nil, b.err
}

func (b brokenTransactions) Add(context.Context, domain.Transaction) (*domain.Transaction, error) {
	return nil, b.err
}

func (b brokenTransactions) Delete(context.Context, string, string) error { return b.err }

func tx(typ domain.TransactionType, amount string) domain.Transaction {
	return domain.Transaction{UserID: "u1", Type: typ, Category: "x", Amount: decimal.RequireFromString(amount)}
}

func TestSummarize(t *testing.T) {
	tests := []struct {
		name                            string
		list                            []domain.Transaction
		balance, income, expenses, save string
		rate                            string
	}{
		{"empty", nil, "0", "0", "0", "0", "0"},
		{
			"sample month",
			[]domain.Transaction{
				tx(domain.TransactionIncome, "5000"),
				tx(domain.TransactionExpense, "1200"),
				tx(domain.TransactionExpense, "800"),
			},
			"3000", "5000", "2000", "600", "12",
		},
		{"expenses only", []domain.Transaction{tx(domain.TransactionExpense, "250")}, "-250", "0", "250", "-50", "0"},
		{"income only", []domain.Transaction{tx(domain.TransactionIncome, "100.10")}, "100.1", "100.1", "0", "20.02", "20"},
		{
			"overspent",
			[]domain.Transaction{tx(domain.TransactionIncome, "100"), tx(domain.TransactionExpense, "300")},
			"-200", "100", "300", "-40", "-40",
		},
		{"unknown type ignored", []domain.Transaction{tx("transfer", "99")}, "0", "0", "0", "0", "0"},
	}
	for _, tt := range tests {
		got := Summarize(tt.list)
		check := func(field string, d decimal.Decimal, want string) {
			if !d.Equal(decimal.RequireFromString(want)) {
				t.Errorf("%s: %s=%s want %s", tt.name, field, d, want)
			}
		}
		check("TotalBalance", got.TotalBalance, tt.balance)
		check("MonthlyIncome", got.MonthlyIncome, tt.income)
		check("MonthlyExpenses", got.MonthlyExpenses, tt.expenses)
		check("Savings", got.Savings, tt.save)
		check("SavingsRate", got.SavingsRate, tt.rate)
	}
}

func TestFinancialServiceAddDeleteLoad(t *testing.T) {
	ctx := testContext(t)
	repo := repository.NewMemoryTransactionStore()
	user := staticUser{&domain.UserProfile{ID: "u1"}}
	s := NewFinancialService(repo, user)

	if _, ok := s.Summary(); ok {
		t.Fatal("summary before any load")
	}

	salary, err := s.AddTransaction(ctx, domain.Transaction{
		Amount: decimal.NewFromInt(5000), Type: domain.TransactionIncome, Category: "Salary",
	})
	if err != nil {
		t.Fatal(err)
	}
	if salary.UserID != "u1" || salary.Date.IsZero() {
		t.Fatalf("created=%+v", salary)
	}
	food, err := s.AddTransaction(ctx, domain.Transaction{
		Amount: decimal.NewFromInt(1200), Type: domain.TransactionExpense, Category: "Food",
		Date: time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatal(err)
	}

	summary, ok := s.Summary()
	if !ok || !summary.TotalBalance.Equal(decimal.NewFromInt(3800)) || len(s.Transactions()) != 2 {
		t.Fatalf("summary=%+v transactions=%d", summary, len(s.Transactions()))
	}

	if err := s.DeleteTransaction(ctx, food.ID); err != nil {
		t.Fatal(err)
	}
	summary, _ = s.Summary()
	if got := s.Transactions(); len(got) != 1 || got[0].ID != salary.ID || !summary.MonthlyExpenses.IsZero() {
		t.Fatalf("transactions=%+v summary=%+v", got, summary)
	}

	if err := s.DeleteTransaction(ctx, food.ID); !errors.Is(err, domain.ErrNotFound) || s.Err() != "Transaction not found" {
		t.Fatalf("err=%v Err()=%q", err, s.Err())
	}

	// Another workspace of the same user loads the stored list.
	other := NewFinancialService(repo, user)
	if err := other.Load(ctx); err != nil {
		t.Fatal(err)
	}
	if len(other.Transactions()) != 1 || other.Err() != "" || other.Loading() {
		t.Fatalf("transactions=%d Err()=%q", len(other.Transactions()), other.Err())
	}
}

func TestFinancialServiceValidation(t *testing.T) {
	s := NewFinancialService(repository.NewMemoryTransactionStore(), staticUser{&domain.UserProfile{ID: "u1"}})
	for name, in := range map[string]domain.Transaction{
		"zero amount":     {Amount: decimal.Zero, Type: domain.TransactionIncome, Category: "x"},
		"negative amount": {Amount: decimal.NewFromInt(-5), Type: domain.TransactionExpense, Category: "x"},
		"no category":     {Amount: decimal.NewFromInt(5), Type: domain.TransactionExpense, Category: " "},
		"bad type":        {Amount: decimal.NewFromInt(5), Type: "transfer", Category: "x"},
	} {
		if _, err := s.AddTransaction(testContext(t), in); !errors.Is(err, domain.ErrInvalidInput) {
			t.Errorf("%s: err=%v", name, err)
		}
	}
	if len(s.Transactions()) != 0 {
		t.Fatal("invalid transaction was cached")
	}
}

func TestFinancialServiceRequiresSession(t *testing.T) {
	s := NewFinancialService(repository.NewMemoryTransactionStore(), staticUser{})
	if err := s.Load(testContext(t)); !errors.Is(err, domain.ErrNotAuthenticated) {
		t.Fatalf("Load err=%v", err)
	}
	if _, err := s.AddTransaction(testContext(t), tx(domain.TransactionIncome, "1")); !errors.Is(err, domain.ErrNotAuthenticated) {
		t.Fatalf("Add err=%v", err)
	}
}

func TestFinancialServiceStoreFailureKeepsState(t *testing.T) {
	boom := errors.New("db down")
	s := NewFinancialService(brokenTransactions{boom}, staticUser{&domain.UserProfile{ID: "u1"}})

	if err := s.Load(testContext(t)); !errors.Is(err, boom) || s.Err() != "Failed to load transactions" {
		t.Fatalf("err=%v Err()=%q", err, s.Err())
	}
	if _, err := s.AddTransaction(testContext(t), tx(domain.TransactionIncome, "1")); !errors.Is(err, boom) {
		t.Fatalf("Add err=%v", err)
	}
	if _, ok := s.Summary(); ok || len(s.Transactions()) != 0 || s.Loading() {
		t.Fatal("failed operations changed state")
	}
}
