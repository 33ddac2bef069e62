package handler

import (
	"context"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/set-night/finmind/internal/telegram"
)

// Register registers all command and callback handlers.
func (h *Handler) Register() {
	// Commands, matched on their first token so "/account" never fires for "/accounts"
	commands := []struct {
		name string
		fn   bot.HandlerFunc
	}{
		{"/start", h.handleStart},
		{"/help", h.handleStart},
		{"/login", h.handleLogin},
		{"/register", h.handleRegister},
		{"/logout", h.handleLogout},
		{"/me", h.handleMe},
		{"/fullname", h.handleFullname},
		{"/accounts", h.handleAccounts},
		{"/account", h.handleAccount},
		{"/balance", h.handleBalance},
		{"/newaccount", h.handleNewAccount},
		{"/rename", h.handleRename},
		{"/delete", h.handleDelete},
		{"/income", h.handleIncome},
		{"/expense", h.handleExpense},
		{"/transactions", h.handleTransactions},
		{"/deltx", h.handleDeleteTransaction},
		{"/summary", h.handleSummary},
		{"/reset", h.handleReset},
	}
	for _, c := range commands {
		h.bot.RegisterHandlerMatchFunc(isCommand(c.name), c.fn)
	}

	// Account callbacks
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, telegram.CallbackAccount, bot.MatchTypePrefix, h.handleAccountCallback)
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, telegram.CallbackDelete, bot.MatchTypePrefix, h.handleDeleteCallback)
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, telegram.CallbackRefresh, bot.MatchTypeExact, h.handleRefreshCallback)
}

// HandleDefault routes plain text to the assistant and ignores everything else.
func (h *Handler) HandleDefault(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.Text == "" || strings.HasPrefix(update.Message.Text, "/") {
		return
	}
	h.HandleText(ctx, b, update)
}

func isCommand(cmd string) bot.MatchFunc {
	return func(update *models.Update) bool {
		if update.Message == nil {
			return false
		}
		first, _, _ := strings.Cut(update.Message.Text, " ")
		name, _, _ := strings.Cut(first, "@")
		return name == cmd
	}
}
