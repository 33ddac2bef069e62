package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionIncome  TransactionType = "income"
	TransactionExpense TransactionType = "expense"
)

func ParseTransactionType(s string) (TransactionType, bool) {
	switch t := TransactionType(strings.ToLower(strings.TrimSpace(s))); t {
	case TransactionIncome, TransactionExpense:
		return t, true
	}
	return "", false
}

type Transaction struct {
	ID          string          `json:"id"`
	UserID      string          `json:"userId"`
	Amount      decimal.Decimal `json:"amount"`
	Type        TransactionType `json:"type"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Date        time.Time       `json:"date"`
}

// Validate checks a transaction before it is stored. Amounts are positive;
// the type carries the sign.
func (t Transaction) Validate() error {
	if t.UserID == "" || strings.TrimSpace(t.Category) == "" || !t.Amount.IsPositive() {
		return ErrInvalidInput
	}
	if _, ok := ParseTransactionType(string(t.Type)); !ok {
		return ErrInvalidInput
	}
	return nil
}

// FinancialSummary is the dashboard view of a user's transactions.
type FinancialSummary struct {
	TotalBalance    decimal.Decimal `json:"totalBalance"`
	MonthlyIncome   decimal.Decimal `json:"monthlyIncome"`
	MonthlyExpenses decimal.Decimal `json:"monthlyExpenses"`
	Savings         decimal.Decimal `json:"savings"`
	SavingsRate     decimal.Decimal `json:"savingsRate"`
}
