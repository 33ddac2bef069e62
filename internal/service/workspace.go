package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/set-night/finmind/internal/api"
	"github.com/set-night/finmind/internal/config"
	"github.com/set-night/finmind/internal/storage"
)

// Workspace is everything one front-end tab holds: its session, its account
// mirror, its dashboard data and its chat panel.
type Workspace struct {
	ID        int64
	Session   *SessionService
	Accounts  *AccountService
	Financial *FinancialService
	Chat      *ChatHistory
}

// Logout ends the session and drops everything cached for it.
func (w *Workspace) Logout(ctx context.Context) {
	w.Session.Logout(ctx)
	w.Accounts.Clear()
	w.Financial.Clear()
	w.Chat.Reset()
}

// Workspaces builds workspaces lazily. Each one persists under its own key
// prefix and talks to the backend with its own token. Transactions are shared
// storage scoped by user id.
type Workspaces struct {
	store        storage.Store
	transactions TransactionRepository
	backendURL   string

	mu    sync.Mutex
	items map[int64]*Workspace
}

func NewWorkspaces(store storage.Store, transactions TransactionRepository, backendURL string) *Workspaces {
	return &Workspaces{
		store:        store,
		transactions: transactions,
		backendURL:   backendURL,
		items:        make(map[int64]*Workspace),
	}
}

func (w *Workspaces) Get(ctx context.Context, id int64) *Workspace {
	w.mu.Lock()
	defer w.mu.Unlock()
	if ws, ok := w.items[id]; ok {
		return ws
	}

	bridge := storage.NewBridge(storage.WithPrefix(w.store, fmt.Sprintf("tab:%d:", id)))
	client := api.NewClient(w.backendURL, bridge)
	client.OnUnauthorized(func(status int) {
		slog.Debug("backend rejected token", "workspace", id, "status", status)
	})

	session := NewSessionService(ctx, bridge, api.NewAuthAPI(client))
	ws := &Workspace{
		ID:        id,
		Session:   session,
		Accounts:  NewAccountService(api.NewAccountAPI(client)),
		Financial: NewFinancialService(w.transactions, session),
		Chat:      NewChatHistory(config.MaxHistoryMessages),
	}
	w.items[id] = ws
	return ws
}

func (w *Workspaces) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.items)
}
