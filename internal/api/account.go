package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/set-night/finmind/internal/domain"
	"github.com/shopspring/decimal"
)

type AccountAPI struct {
	client *Client
}

func NewAccountAPI(client *Client) *AccountAPI {
	return &AccountAPI{client: client}
}

// Balances go out as JSON numbers, not the quoted strings decimal encodes by default.
type createAccountBody struct {
	UserID    string             `json:"userId"`
	Name      string             `json:"name"`
	Type      domain.AccountType `json:"type"`
	Balance   json.Number        `json:"balance"`
	Currency  string             `json:"currency"`
	CreatedBy string             `json:"createdBy"`
}

type updateAccountBody struct {
	Name      *string             `json:"name,omitempty"`
	Type      *domain.AccountType `json:"type,omitempty"`
	Balance   *json.Number        `json:"balance,omitempty"`
	Currency  *string             `json:"currency,omitempty"`
	UpdatedBy *string             `json:"updatedBy,omitempty"`
}

func (a *AccountAPI) Create(ctx context.Context, in domain.AccountInput) (*domain.Account, error) {
	body := createAccountBody{
		UserID:    in.UserID,
		Name:      in.Name,
		Type:      in.Type,
		Balance:   json.Number(in.Balance.String()),
		Currency:  in.Currency,
		CreatedBy: in.CreatedBy,
	}
	var acc domain.Account
	if err := a.client.Do(ctx, http.MethodPost, "/accounts", nil, body, &acc); err != nil {
		return nil, err
	}
	return &acc, nil
}

func (a *AccountAPI) ListMine(ctx context.Context) ([]domain.Account, error) {
	var accounts []domain.Account
	if err := a.client.Do(ctx, http.MethodGet, "/accounts/my-accounts", nil, nil, &accounts); err != nil {
		return nil, err
	}
	if accounts == nil {
		accounts = []domain.Account{}
	}
	return accounts, nil
}

func (a *AccountAPI) ListByUser(ctx context.Context, userID string) ([]domain.Account, error) {
	var accounts []domain.Account
	q := url.Values{"userId": {userID}}
	if err := a.client.Do(ctx, http.MethodGet, "/accounts", q, nil, &accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

func (a *AccountAPI) TotalBalance(ctx context.Context, currency string) (decimal.Decimal, error) {
	var resp struct {
		TotalBalance decimal.Decimal `json:"totalBalance"`
	}
	q := url.Values{"currency": {currency}}
	if err := a.client.Do(ctx, http.MethodGet, "/accounts/total-balance", q, nil, &resp); err != nil {
		return decimal.Zero, err
	}
	return resp.TotalBalance, nil
}

// Detail accepts either a single account object or a one-element array, both of
// which the backend has been seen to return.
func (a *AccountAPI) Detail(ctx context.Context, id string) (*domain.Account, error) {
	var raw json.RawMessage
	if err := a.client.Do(ctx, http.MethodGet, "/accounts/"+url.PathEscape(id), nil, nil, &raw); err != nil {
		return nil, err
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '[' {
		var list []domain.Account
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, fmt.Errorf("decode account detail: %w", err)
		}
		if len(list) == 0 {
			return nil, &domain.APIError{Status: http.StatusNotFound, Message: "Account not found"}
		}
		return &list[0], nil
	}
	var acc domain.Account
	if err := json.Unmarshal(raw, &acc); err != nil {
		return nil, fmt.Errorf("decode account detail: %w", err)
	}
	return &acc, nil
}

func (a *AccountAPI) Update(ctx context.Context, id string, in domain.AccountUpdate) (*domain.Account, error) {
	var body any
	if !in.IsEmpty() {
		b := updateAccountBody{
			Name:      in.Name,
			Type:      in.Type,
			Currency:  in.Currency,
			UpdatedBy: in.UpdatedBy,
		}
		if in.Balance != nil {
			n := json.Number(in.Balance.String())
			b.Balance = &n
		}
		body = b
	}
	var acc domain.Account
	if err := a.client.Do(ctx, http.MethodPatch, "/accounts/"+url.PathEscape(id), nil, body, &acc); err != nil {
		return nil, err
	}
	return &acc, nil
}

func (a *AccountAPI) Delete(ctx context.Context, id string) error {
	return a.client.Do(ctx, http.MethodDelete, "/accounts/"+url.PathEscape(id), nil, nil, nil)
}
