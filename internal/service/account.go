package service

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/set-night/finmind/internal/domain"
	"github.com/shopspring/decimal"
)

// AccountBackend is the account part of the REST backend.
type AccountBackend interface {
	Create(ctx context.Context, in domain.AccountInput) (*domain.Account, error)
	ListMine(ctx context.Context) ([]domain.Account, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Account, error)
	TotalBalance(ctx context.Context, currency string) (decimal.Decimal, error)
	Detail(ctx context.Context, id string) (*domain.Account, error)
	Update(ctx context.Context, id string, in domain.AccountUpdate) (*domain.Account, error)
	Delete(ctx context.Context, id string) error
}

// AccountOp names an operation kind for loading state.
type AccountOp string

const (
	OpCreate       AccountOp = "create"
	OpList         AccountOp = "list"
	OpTotalBalance AccountOp = "total_balance"
	OpDetail       AccountOp = "detail"
	OpUpdate       AccountOp = "update"
	OpDelete       AccountOp = "delete"
)

// AccountService mirrors the backend's account list for one session. The
// backend is authoritative: the cache only changes after a call succeeds.
// Responses are applied in the order they arrive.
type AccountService struct {
	backend AccountBackend

	mu       sync.RWMutex
	accounts []domain.Account
	total    decimal.Decimal
	errMsg   string
	inflight map[AccountOp]int
}

func NewAccountService(backend AccountBackend) *AccountService {
	return &AccountService{
		backend:  backend,
		accounts: []domain.Account{},
		inflight: make(map[AccountOp]int),
	}
}

// CreateAccount appends the created account. There is no duplicate check.
func (s *AccountService) CreateAccount(ctx context.Context, in domain.AccountInput) (*domain.Account, error) {
	s.start(OpCreate)
	acc, err := s.backend.Create(ctx, in)
	if err != nil {
		return nil, s.fail(OpCreate, err, "Failed to create account")
	}

	s.mu.Lock()
	s.accounts = append(s.accounts, *acc)
	s.inflight[OpCreate]--
	s.mu.Unlock()

	out := *acc
	return &out, nil
}

// ListMyAccounts replaces the whole cache with the backend's list.
func (s *AccountService) ListMyAccounts(ctx context.Context) error {
	s.start(OpList)
	list, err := s.backend.ListMine(ctx)
	if err != nil {
		return s.fail(OpList, err, "Failed to fetch accounts")
	}

	s.mu.Lock()
	s.accounts = append([]domain.Account(nil), list...)
	s.inflight[OpList]--
	s.mu.Unlock()
	return nil
}

// Refresh is ListMyAccounts.
func (s *AccountService) Refresh(ctx context.Context) error {
	return s.ListMyAccounts(ctx)
}

// GetTotalBalance fetches the total in currency. It is independent of the
// cached list; callers that need both consistent must sequence the calls.
func (s *AccountService) GetTotalBalance(ctx context.Context, currency string) error {
	s.start(OpTotalBalance)
	total, err := s.backend.TotalBalance(ctx, strings.ToUpper(currency))
	if err != nil {
		return s.fail(OpTotalBalance, err, "Failed to fetch total balance")
	}

	s.mu.Lock()
	s.total = total
	s.inflight[OpTotalBalance]--
	s.mu.Unlock()
	return nil
}

// GetAccountDetail reads through to the backend without touching the cache.
func (s *AccountService) GetAccountDetail(ctx context.Context, id string) (*domain.Account, error) {
	s.start(OpDetail)
	acc, err := s.backend.Detail(ctx, id)
	if err != nil {
		return nil, s.fail(OpDetail, err, "Failed to fetch account detail")
	}
	s.done(OpDetail)
	return acc, nil
}

// ListUserAccounts reads another user's accounts without touching the cache.
func (s *AccountService) ListUserAccounts(ctx context.Context, userID string) ([]domain.Account, error) {
	s.start(OpList)
	list, err := s.backend.ListByUser(ctx, userID)
	if err != nil {
		return nil, s.fail(OpList, err, "Failed to fetch accounts")
	}
	s.done(OpList)
	return list, nil
}

// UpdateAccount replaces the cached entry with the same id. An id that is not
// cached leaves the cache as it is.
func (s *AccountService) UpdateAccount(ctx context.Context, id string, in domain.AccountUpdate) (*domain.Account, error) {
	s.start(OpUpdate)
	acc, err := s.backend.Update(ctx, id, in)
	if err != nil {
		return nil, s.fail(OpUpdate, err, "Failed to update account")
	}

	s.mu.Lock()
	for i := range s.accounts {
		if s.accounts[i].ID == id {
			s.accounts[i] = *acc
		}
	}
	s.inflight[OpUpdate]--
	s.mu.Unlock()

	out := *acc
	return &out, nil
}

// DeleteAccount drops the cached entry once the backend confirms.
func (s *AccountService) DeleteAccount(ctx context.Context, id string) error {
	s.start(OpDelete)
	if err := s.backend.Delete(ctx, id); err != nil {
		return s.fail(OpDelete, err, "Failed to delete account")
	}

	s.mu.Lock()
	kept := s.accounts[:0]
	for _, a := range s.accounts {
		if a.ID != id {
			kept = append(kept, a)
		}
	}
	s.accounts = kept
	s.inflight[OpDelete]--
	s.mu.Unlock()
	return nil
}

// Accounts returns a copy of the cache.
func (s *AccountService) Accounts() []domain.Account {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Account(nil), s.accounts...)
}

func (s *AccountService) TotalBalance() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.total
}

// Err is the message of the last failed operation; it is cleared when any operation starts.
func (s *AccountService) Err() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.errMsg
}

// Loading reports whether an operation of kind op is in flight.
func (s *AccountService) Loading(op AccountOp) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inflight[op] > 0
}

// Busy reports whether any operation is in flight.
func (s *AccountService) Busy() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, n := range s.inflight {
		if n > 0 {
			return true
		}
	}
	return false
}

// Clear drops the cache and total, e.g. after logout.
func (s *AccountService) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts = []domain.Account{}
	s.total = decimal.Zero
	s.errMsg = ""
}

func (s *AccountService) start(op AccountOp) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errMsg = ""
	s.inflight[op]++
}

func (s *AccountService) done(op AccountOp) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inflight[op]--
}

func (s *AccountService) fail(op AccountOp, err error, fallback string) error {
	msg := domain.Message(err)
	if msg == "" {
		msg = fallback
	}
	slog.Warn("account operation failed", "op", op, "error", err)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.errMsg = msg
	s.inflight[op]--
	return err
}
