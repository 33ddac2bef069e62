package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type AccountType string

const (
	AccountTypeCash       AccountType = "CASH"
	AccountTypeBank       AccountType = "BANK"
	AccountTypeEWallet    AccountType = "E-WALLET"
	AccountTypeCreditCard AccountType = "CREDIT_CARD"
	AccountTypeSavings    AccountType = "SAVINGS"
	AccountTypeInvestment AccountType = "INVESTMENT"
	AccountTypeOther      AccountType = "OTHER"
)

var AccountTypes = []AccountType{
	AccountTypeCash,
	AccountTypeBank,
	AccountTypeEWallet,
	AccountTypeCreditCard,
	AccountTypeSavings,
	AccountTypeInvestment,
	AccountTypeOther,
}

// ParseAccountType accepts any casing and "_" in place of "-".
func ParseAccountType(s string) (AccountType, bool) {
	norm := strings.ToUpper(strings.TrimSpace(s))
	for _, t := range AccountTypes {
		if string(t) == norm || strings.ReplaceAll(string(t), "-", "_") == norm {
			return t, true
		}
	}
	return "", false
}

type Account struct {
	ID        string          `json:"id"`
	UserID    string          `json:"userId"`
	Name      string          `json:"name"`
	Type      AccountType     `json:"type"`
	Balance   decimal.Decimal `json:"balance"`
	Currency  string          `json:"currency"`
	CreatedBy string          `json:"createdBy"`
	UpdatedBy *string         `json:"updatedBy"`
	IsDeleted bool            `json:"isDeleted"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
	User      *UserProfile    `json:"user,omitempty"`
}

type AccountInput struct {
	UserID    string
	Name      string
	Type      AccountType
	Balance   decimal.Decimal
	Currency  string
	CreatedBy string
}

func (in AccountInput) Validate() error {
	if strings.TrimSpace(in.Name) == "" || in.Type == "" || len(in.Currency) != 3 {
		return ErrInvalidInput
	}
	return nil
}

// AccountUpdate is a partial update; nil fields are left as they are.
type AccountUpdate struct {
	Name      *string
	Type      *AccountType
	Balance   *decimal.Decimal
	Currency  *string
	UpdatedBy *string
}

func (u AccountUpdate) IsEmpty() bool {
	return u.Name == nil && u.Type == nil && u.Balance == nil && u.Currency == nil && u.UpdatedBy == nil
}
