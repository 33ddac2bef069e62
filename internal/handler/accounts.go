package handler

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/set-night/finmind/internal/domain"
	"github.com/set-night/finmind/internal/service"
	tg "github.com/set-night/finmind/internal/telegram"
)

const newAccountUsage = "Usage: /newaccount <name> <type> <currency> [balance]\ne.g. /newaccount Main wallet CASH USD 150"

func (h *Handler) handleAccounts(ctx context.Context, _ *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID
	ws := h.authedWorkspace(ctx, chatID)
	if ws == nil {
		return
	}
	h.sendAccounts(ctx, chatID, ws)
}

// sendAccounts refreshes the cached list and shows it with one button row per account.
func (h *Handler) sendAccounts(ctx context.Context, chatID int64, ws *service.Workspace) {
	if err := ws.Accounts.Refresh(ctx); err != nil {
		h.replyError(ctx, chatID, err)
		return
	}

	accounts := ws.Accounts.Accounts()
	if len(accounts) == 0 {
		h.reply(ctx, chatID, "You have no accounts yet.\n"+tg.EscapeMarkdown(newAccountUsage), nil)
		return
	}
	h.reply(ctx, chatID, formatAccounts(accounts), tg.AccountsKeyboard(accounts))
}

func (h *Handler) handleBalance(ctx context.Context, _ *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID
	ws := h.authedWorkspace(ctx, chatID)
	if ws == nil {
		return
	}

	currency := h.cfg.DefaultCurrency
	if args := commandArgs(update.Message.Text); len(args) > 0 {
		currency = strings.ToUpper(args[0])
	}

	if err := ws.Accounts.GetTotalBalance(ctx, currency); err != nil {
		h.replyError(ctx, chatID, err)
		return
	}
	h.reply(ctx, chatID, fmt.Sprintf("💰 Total balance: *%s %s*",
		ws.Accounts.TotalBalance().StringFixed(2), currency), nil)
}

func (h *Handler) handleNewAccount(ctx context.Context, _ *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID
	ws := h.authedWorkspace(ctx, chatID)
	if ws == nil {
		return
	}

	in, err := parseNewAccount(update.Message.Text)
	if err != nil {
		h.reply(ctx, chatID, tg.EscapeMarkdown(newAccountUsage), nil)
		return
	}
	if user := ws.Session.User(); user != nil {
		in.UserID = user.ID
		in.CreatedBy = user.ID
	}

	acc, err := ws.Accounts.CreateAccount(ctx, in)
	if err != nil {
		h.replyError(ctx, chatID, err)
		return
	}
	h.reply(ctx, chatID, "✅ Account created.\n\n"+formatAccount(acc), nil)
}

func (h *Handler) handleAccount(ctx context.Context, _ *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID
	ws := h.authedWorkspace(ctx, chatID)
	if ws == nil {
		return
	}

	id, err := parseID(update.Message.Text)
	if err != nil {
		h.reply(ctx, chatID, "Usage: /account <id>", nil)
		return
	}
	h.sendAccount(ctx, chatID, ws, id)
}

func (h *Handler) sendAccount(ctx context.Context, chatID int64, ws *service.Workspace, id string) {
	acc, err := ws.Accounts.GetAccountDetail(ctx, id)
	if err != nil {
		h.replyError(ctx, chatID, err)
		return
	}
	h.reply(ctx, chatID, formatAccount(acc), nil)
}

func (h *Handler) handleRename(ctx context.Context, _ *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID
	ws := h.authedWorkspace(ctx, chatID)
	if ws == nil {
		return
	}

	id, name, err := parseIDAndRest(update.Message.Text)
	if err != nil {
		h.reply(ctx, chatID, "Usage: /rename <id> <name>", nil)
		return
	}

	upd := domain.AccountUpdate{Name: &name}
	if user := ws.Session.User(); user != nil {
		upd.UpdatedBy = &user.ID
	}
	acc, err := ws.Accounts.UpdateAccount(ctx, id, upd)
	if err != nil {
		h.replyError(ctx, chatID, err)
		return
	}
	h.reply(ctx, chatID, "✅ Account updated.\n\n"+formatAccount(acc), nil)
}

func (h *Handler) handleDelete(ctx context.Context, _ *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID
	ws := h.authedWorkspace(ctx, chatID)
	if ws == nil {
		return
	}

	id, err := parseID(update.Message.Text)
	if err != nil {
		h.reply(ctx, chatID, "Usage: /delete <id>", nil)
		return
	}
	h.deleteAccount(ctx, chatID, ws, id)
}

func (h *Handler) deleteAccount(ctx context.Context, chatID int64, ws *service.Workspace, id string) {
	if err := ws.Accounts.DeleteAccount(ctx, id); err != nil {
		h.replyError(ctx, chatID, err)
		return
	}
	h.reply(ctx, chatID, "🗑 Account deleted.", nil)
}

func (h *Handler) handleAccountCallback(ctx context.Context, _ *bot.Bot, update *models.Update) {
	chatID, ws := h.callbackWorkspace(ctx, update)
	if ws == nil {
		return
	}
	_, id := tg.ParseCallback(update.CallbackQuery.Data)
	h.sendAccount(ctx, chatID, ws, id)
}

func (h *Handler) handleDeleteCallback(ctx context.Context, _ *bot.Bot, update *models.Update) {
	chatID, ws := h.callbackWorkspace(ctx, update)
	if ws == nil {
		return
	}
	_, id := tg.ParseCallback(update.CallbackQuery.Data)
	h.deleteAccount(ctx, chatID, ws, id)
}

func (h *Handler) handleRefreshCallback(ctx context.Context, _ *bot.Bot, update *models.Update) {
	chatID, ws := h.callbackWorkspace(ctx, update)
	if ws == nil {
		return
	}
	h.sendAccounts(ctx, chatID, ws)
}

// callbackWorkspace answers the callback query and resolves its chat's workspace.
func (h *Handler) callbackWorkspace(ctx context.Context, update *models.Update) (int64, *service.Workspace) {
	cq := update.CallbackQuery
	if cq == nil {
		return 0, nil
	}
	if _, err := h.out.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{CallbackQueryID: cq.ID}); err != nil {
		slog.Debug("answer callback", "error", err)
	}
	if cq.Message.Message == nil {
		return 0, nil
	}
	chatID := cq.Message.Message.Chat.ID
	return chatID, h.authedWorkspace(ctx, chatID)
}

func formatAccounts(accounts []domain.Account) string {
	var sb strings.Builder
	sb.WriteString("💼 *Your accounts*\n")
	for _, a := range accounts {
		fmt.Fprintf(&sb, "\n• *%s* (%s): %s %s\n  `%s`",
			tg.EscapeMarkdown(a.Name), tg.EscapeMarkdown(string(a.Type)), a.Balance.StringFixed(2), a.Currency, a.ID)
	}
	return sb.String()
}

func formatAccount(a *domain.Account) string {
	text := fmt.Sprintf("*%s*\nType: %s\nBalance: %s %s\nID: `%s`",
		tg.EscapeMarkdown(a.Name), tg.EscapeMarkdown(string(a.Type)), a.Balance.StringFixed(2), a.Currency, a.ID)
	if !a.UpdatedAt.IsZero() {
		text += "\nUpdated: " + a.UpdatedAt.UTC().Format("2006-01-02 15:04")
	}
	return text
}
