package service

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/set-night/finmind/internal/api"
	"github.com/set-night/finmind/internal/domain"
	"github.com/set-night/finmind/internal/storage"
	"github.com/shopspring/decimal"
)

// stubBackend is an in-memory REST backend, built fresh for every test.
type stubBackend struct {
	mu         sync.Mutex
	users      map[string]*domain.UserProfile // by email
	tokens     map[string]string              // token -> email
	accounts   []domain.Account
	total      decimal.Decimal
	nextID     int
	failDelete bool
	token      string // token issued on login/register
}

func newStubBackend(t *testing.T) (*stubBackend, *httptest.Server) {
	t.Helper()
	b := &stubBackend{
		users: map[string]*domain.UserProfile{
			"test@example.com": {ID: "u1", Username: "test", Fullname: "Test User", Email: "test@example.com"},
		},
		tokens: make(map[string]string),
		token:  "abc",
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", b.login)
	mux.HandleFunc("POST /auth/register", b.register)
	mux.HandleFunc("GET /users/profile", b.authed(b.profile))
	mux.HandleFunc("PATCH /users/{id}", b.authed(b.updateUser))
	mux.HandleFunc("DELETE /users/{id}", b.authed(b.deleteUser))
	mux.HandleFunc("POST /accounts", b.authed(b.createAccount))
	mux.HandleFunc("GET /accounts", b.authed(b.accountsByUser))
	mux.HandleFunc("GET /accounts/my-accounts", b.authed(b.listAccounts))
	mux.HandleFunc("GET /accounts/total-balance", b.authed(b.totalBalance))
	mux.HandleFunc("GET /accounts/{id}", b.authed(b.accountDetail))
	mux.HandleFunc("PATCH /accounts/{id}", b.authed(b.updateAccount))
	mux.HandleFunc("DELETE /accounts/{id}", b.authed(b.deleteAccount))

	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return b, ts
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"message": msg, "statusCode": status})
}

func (b *stubBackend) authed(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tok := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		b.mu.Lock()
		_, ok := b.tokens[tok]
		b.mu.Unlock()
		if !ok {
			writeMessage(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next(w, r)
	}
}

func (b *stubBackend) login(w http.ResponseWriter, r *http.Request) {
	var creds domain.Credentials
	_ = json.NewDecoder(r.Body).Decode(&creds)
	b.mu.Lock()
	defer b.mu.Unlock()
	user, ok := b.users[creds.Email]
	if !ok || creds.Password == "" {
		writeMessage(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	b.tokens[b.token] = creds.Email
	writeJSON(w, http.StatusOK, domain.AuthResponse{AccessToken: b.token, User: user})
}

func (b *stubBackend) register(w http.ResponseWriter, r *http.Request) {
	var in domain.RegisterInput
	_ = json.NewDecoder(r.Body).Decode(&in)
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, exists := b.users[in.Email]; exists {
		writeMessage(w, http.StatusConflict, "Email already exists")
		return
	}
	b.nextID++
	user := &domain.UserProfile{ID: fmt.Sprintf("u%d", 100+b.nextID), Username: in.Username, Fullname: in.Fullname, Email: in.Email}
	b.users[in.Email] = user
	b.tokens[b.token] = in.Email
	writeJSON(w, http.StatusCreated, domain.AuthResponse{AccessToken: b.token, User: user})
}

func (b *stubBackend) currentUser(r *http.Request) *domain.UserProfile {
	tok := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	return b.users[b.tokens[tok]]
}

func (b *stubBackend) profile(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	writeJSON(w, http.StatusOK, b.currentUser(r))
}

func (b *stubBackend) updateUser(w http.ResponseWriter, r *http.Request) {
	var in domain.UserUpdate
	_ = json.NewDecoder(r.Body).Decode(&in)
	b.mu.Lock()
	defer b.mu.Unlock()
	user := b.currentUser(r)
	if user == nil || user.ID != r.PathValue("id") {
		writeMessage(w, http.StatusForbidden, "Forbidden")
		return
	}
	if in.Fullname != nil {
		user.Fullname = *in.Fullname
	}
	writeJSON(w, http.StatusOK, user)
}

func (b *stubBackend) deleteUser(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	user := b.currentUser(r)
	if user == nil || user.ID != r.PathValue("id") {
		writeMessage(w, http.StatusForbidden, "Forbidden")
		return
	}
	delete(b.users, user.Email)
	w.WriteHeader(http.StatusNoContent)
}

func (b *stubBackend) createAccount(w http.ResponseWriter, r *http.Request) {
	var in struct {
		UserID   string             `json:"userId"`
		Name     string             `json:"name"`
		Type     domain.AccountType `json:"type"`
		Balance  decimal.Decimal    `json:"balance"`
		Currency string             `json:"currency"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Name == "" {
		writeMessage(w, http.StatusBadRequest, "name should not be empty")
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	acc := domain.Account{
		ID:       fmt.Sprintf("a%d", b.nextID),
		UserID:   in.UserID,
		Name:     in.Name,
		Type:     in.Type,
		Balance:  in.Balance,
		Currency: in.Currency,
	}
	b.accounts = append(b.accounts, acc)
	writeJSON(w, http.StatusCreated, acc)
}

func (b *stubBackend) listAccounts(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	writeJSON(w, http.StatusOK, b.accounts)
}

func (b *stubBackend) accountsByUser(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	userID := r.URL.Query().Get("userId")
	out := []domain.Account{}
	for _, a := range b.accounts {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (b *stubBackend) totalBalance(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"totalBalance":%s,"currency":%q}`, b.total.String(), r.URL.Query().Get("currency"))
}

func (b *stubBackend) find(id string) int {
	for i, a := range b.accounts {
		if a.ID == id {
			return i
		}
	}
	return -1
}

func (b *stubBackend) accountDetail(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	i := b.find(r.PathValue("id"))
	if i < 0 {
		writeMessage(w, http.StatusNotFound, "Account not found")
		return
	}
	writeJSON(w, http.StatusOK, b.accounts[i])
}

func (b *stubBackend) updateAccount(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Name *string `json:"name"`
	}
	_ = json.NewDecoder(r.Body).Decode(&in)
	b.mu.Lock()
	defer b.mu.Unlock()
	id := r.PathValue("id")
	i := b.find(id)
	if i < 0 {
		// Accounts created elsewhere still exist on the backend.
		acc := domain.Account{ID: id, Name: "remote"}
		if in.Name != nil {
			acc.Name = *in.Name
		}
		writeJSON(w, http.StatusOK, acc)
		return
	}
	if in.Name != nil {
		b.accounts[i].Name = *in.Name
	}
	writeJSON(w, http.StatusOK, b.accounts[i])
}

func (b *stubBackend) deleteAccount(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failDelete {
		writeMessage(w, http.StatusInternalServerError, "Failed to delete account")
		return
	}
	i := b.find(r.PathValue("id"))
	if i < 0 {
		writeMessage(w, http.StatusNotFound, "Account not found")
		return
	}
	b.accounts = append(b.accounts[:i], b.accounts[i+1:]...)
	w.WriteHeader(http.StatusOK)
}

func (b *stubBackend) seed(accounts ...domain.Account) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.accounts = append(b.accounts, accounts...)
}

func (b *stubBackend) setFailDelete(v bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failDelete = v
}

func (b *stubBackend) setToken(tok string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.token = tok
}

func (b *stubBackend) setTotal(s string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.total = decimal.RequireFromString(s)
}

// fixture wires a session and an account service to one stub backend through a
// memory store, the way a workspace does.
type fixture struct {
	store    *storage.MemoryStore
	bridge   *storage.Bridge
	session  *SessionService
	accounts *AccountService
	backend  *stubBackend
	url      string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	backend, ts := newStubBackend(t)
	store := storage.NewMemoryStore()
	bridge := storage.NewBridge(store)
	client := api.NewClient(ts.URL, bridge)
	return &fixture{
		store:    store,
		bridge:   bridge,
		session:  NewSessionService(testContext(t), bridge, api.NewAuthAPI(client)),
		accounts: NewAccountService(api.NewAccountAPI(client)),
		backend:  backend,
		url:      ts.URL,
	}
}
