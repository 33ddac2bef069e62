package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseAccountType(t *testing.T) {
	tests := []struct {
		in   string
		want AccountType
		ok   bool
	}{
		{"cash", AccountTypeCash, true},
		{" BANK ", AccountTypeBank, true},
		{"e-wallet", AccountTypeEWallet, true},
		{"E_WALLET", AccountTypeEWallet, true},
		{"credit_card", AccountTypeCreditCard, true},
		{"gold", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseAccountType(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseAccountType(%q)=%q,%v want %q,%v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestAccountInputValidate(t *testing.T) {
	valid := AccountInput{Name: "Wallet", Type: AccountTypeCash, Currency: "USD", Balance: decimal.Zero}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid input err=%v", err)
	}

	for name, mutate := range map[string]func(*AccountInput){
		"blank name":    func(in *AccountInput) { in.Name = "  " },
		"no type":       func(in *AccountInput) { in.Type = "" },
		"long currency": func(in *AccountInput) { in.Currency = "USDT" },
	} {
		in := valid
		mutate(&in)
		if err := in.Validate(); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("%s: err=%v", name, err)
		}
	}
}

func TestAccountUpdateIsEmpty(t *testing.T) {
	if !(AccountUpdate{}).IsEmpty() {
		t.Fatal("zero update should be empty")
	}
	name := "x"
	if (AccountUpdate{Name: &name}).IsEmpty() {
		t.Fatal("update with a name is not empty")
	}
}

func TestMessage(t *testing.T) {
	api := &APIError{Status: 409, Message: "Email already exists"}
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"api", api, "Email already exists"},
		{"wrapped api", fmt.Errorf("create account: %w", api), "Email already exists"},
		{"auth", &AuthError{Message: "Invalid credentials", Err: api}, "Invalid credentials"},
		{"network", &NetworkError{Op: "GET /accounts", Err: errors.New("connection refused")}, "Network error, please try again"},
		{"other", ErrNotAuthenticated, "not authenticated"},
	}
	for _, tt := range tests {
		if got := Message(tt.err); got != tt.want {
			t.Errorf("%s: Message=%q want %q", tt.name, got, tt.want)
		}
	}
}

func TestSessionIsAuthenticated(t *testing.T) {
	if (Session{Token: "abc"}).IsAuthenticated() {
		t.Fatal("token without user")
	}
	if !(Session{Token: "abc", User: &UserProfile{ID: "u1"}}).IsAuthenticated() {
		t.Fatal("token and user")
	}
}
