package handler

import (
	"errors"
	"strings"

	"github.com/set-night/finmind/internal/domain"
	"github.com/shopspring/decimal"
)

var errUsage = errors.New("usage")

// commandArgs drops the command token ("/login" or "/login@bot") and splits the rest.
func commandArgs(text string) []string {
	fields := strings.Fields(text)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return fields
	}
	return fields[1:]
}

// commandTail is everything after the command token, trimmed.
func commandTail(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return text
	}
	_, rest, _ := strings.Cut(text, " ")
	return strings.TrimSpace(rest)
}

func parseLogin(text string) (domain.Credentials, error) {
	args := commandArgs(text)
	if len(args) != 2 {
		return domain.Credentials{}, errUsage
	}
	return domain.Credentials{Email: args[0], Password: args[1]}, nil
}

// parseRegister reads "<username> <email> <password> <full name...>".
func parseRegister(text string) (domain.RegisterInput, error) {
	args := commandArgs(text)
	if len(args) < 4 || !strings.Contains(args[1], "@") {
		return domain.RegisterInput{}, errUsage
	}
	return domain.RegisterInput{
		Username: args[0],
		Email:    args[1],
		Password: args[2],
		Fullname: strings.Join(args[3:], " "),
	}, nil
}

// parseNewAccount reads "<name...> <type> <currency> [balance]". The name may
// contain spaces, so the fixed fields are taken from the end.
func parseNewAccount(text string) (domain.AccountInput, error) {
	args := commandArgs(text)
	in := domain.AccountInput{Balance: decimal.Zero}

	if n := len(args); n > 0 {
		if bal, err := decimal.NewFromString(args[n-1]); err == nil {
			in.Balance = bal
			args = args[:n-1]
		}
	}
	if len(args) < 3 {
		return in, errUsage
	}

	n := len(args)
	accType, ok := domain.ParseAccountType(args[n-2])
	if !ok {
		return in, errUsage
	}
	in.Type = accType
	in.Currency = strings.ToUpper(args[n-1])
	in.Name = strings.Join(args[:n-2], " ")

	if err := in.Validate(); err != nil {
		return in, errUsage
	}
	return in, nil
}

// parseIDAndRest reads "<id> <rest...>".
func parseIDAndRest(text string) (string, string, error) {
	tail := commandTail(text)
	id, rest, _ := strings.Cut(tail, " ")
	rest = strings.TrimSpace(rest)
	if id == "" || rest == "" {
		return "", "", errUsage
	}
	return id, rest, nil
}

func parseID(text string) (string, error) {
	args := commandArgs(text)
	if len(args) != 1 {
		return "", errUsage
	}
	return args[0], nil
}

// parseTransaction reads "<amount> <category> [description...]".
func parseTransaction(text string, typ domain.TransactionType) (domain.Transaction, error) {
	args := commandArgs(text)
	if len(args) < 2 {
		return domain.Transaction{}, errUsage
	}
	amount, err := decimal.NewFromString(args[0])
	if err != nil || !amount.IsPositive() {
		return domain.Transaction{}, errUsage
	}
	return domain.Transaction{
		Amount:      amount,
		Type:        typ,
		Category:    args[1],
		Description: strings.Join(args[2:], " "),
	}, nil
}
