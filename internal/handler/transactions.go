package handler

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/set-night/finmind/internal/domain"
	"github.com/set-night/finmind/internal/service"
	tg "github.com/set-night/finmind/internal/telegram"
)

func (h *Handler) handleIncome(ctx context.Context, _ *bot.Bot, update *models.Update) {
	h.addTransaction(ctx, update, domain.TransactionIncome)
}

func (h *Handler) handleExpense(ctx context.Context, _ *bot.Bot, update *models.Update) {
	h.addTransaction(ctx, update, domain.TransactionExpense)
}

func (h *Handler) addTransaction(ctx context.Context, update *models.Update, typ domain.TransactionType) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID
	ws := h.authedWorkspace(ctx, chatID)
	if ws == nil {
		return
	}

	in, err := parseTransaction(update.Message.Text, typ)
	if err != nil {
		usage := fmt.Sprintf("Usage: /%s <amount> <category> [description]\ne.g. /%s 42.50 Groceries weekly shop", typ, typ)
		h.reply(ctx, chatID, tg.EscapeMarkdown(usage), nil)
		return
	}

	t, err := ws.Financial.AddTransaction(ctx, in)
	if err != nil {
		h.replyFinancialError(ctx, chatID, ws, err)
		return
	}
	text := "✅ Transaction added.\n\n" + formatTransaction(*t, h.cfg.DefaultCurrency)
	if summary, ok := ws.Financial.Summary(); ok {
		text += "\n\n" + formatSummary(summary, h.cfg.DefaultCurrency)
	}
	h.reply(ctx, chatID, text, nil)
}

func (h *Handler) handleTransactions(ctx context.Context, _ *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID
	ws := h.authedWorkspace(ctx, chatID)
	if ws == nil {
		return
	}

	if err := ws.Financial.Load(ctx); err != nil {
		h.replyFinancialError(ctx, chatID, ws, err)
		return
	}
	list := ws.Financial.Transactions()
	if len(list) == 0 {
		h.reply(ctx, chatID, "No transactions yet. Add one with /income or /expense.", nil)
		return
	}

	var sb strings.Builder
	sb.WriteString("🧾 *Transactions*\n")
	for _, t := range list {
		sb.WriteString("\n" + formatTransaction(t, h.cfg.DefaultCurrency) + "\n")
	}
	sb.WriteString("\nRemove one with /deltx <id>")
	h.reply(ctx, chatID, sb.String(), nil)
}

func (h *Handler) handleDeleteTransaction(ctx context.Context, _ *bot.Bot, update *models.Update) {
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
		h.reply(ctx, chatID, "Usage: /deltx <id>", nil)
		return
	}
	if err := ws.Financial.DeleteTransaction(ctx, id); err != nil {
		h.replyFinancialError(ctx, chatID, ws, err)
		return
	}
	h.reply(ctx, chatID, "🗑 Transaction deleted.", nil)
}

func (h *Handler) handleSummary(ctx context.Context, _ *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID
	ws := h.authedWorkspace(ctx, chatID)
	if ws == nil {
		return
	}

	if err := ws.Financial.Load(ctx); err != nil {
		h.replyFinancialError(ctx, chatID, ws, err)
		return
	}
	summary, _ := ws.Financial.Summary()
	h.reply(ctx, chatID, formatSummary(summary, h.cfg.DefaultCurrency), nil)
}

// replyFinancialError prefers the dashboard's own error text over the raw error.
func (h *Handler) replyFinancialError(ctx context.Context, chatID int64, ws *service.Workspace, err error) {
	if msg := ws.Financial.Err(); msg != "" {
		h.reply(ctx, chatID, "❌ "+tg.EscapeMarkdown(msg), nil)
		return
	}
	h.replyError(ctx, chatID, err)
}

func formatTransaction(t domain.Transaction, currency string) string {
	sign := "+"
	if t.Type == domain.TransactionExpense {
		sign = "-"
	}
	text := fmt.Sprintf("• %s%s %s *%s* (%s)", sign, t.Amount.StringFixed(2), currency,
		tg.EscapeMarkdown(t.Category), t.Date.UTC().Format("2006-01-02"))
	if t.Description != "" {
		text += " " + tg.EscapeMarkdown(t.Description)
	}
	return text + "\n  `" + t.ID + "`"
}

func formatSummary(s domain.FinancialSummary, currency string) string {
	return fmt.Sprintf("📊 *Summary*\n"+
		"Balance: %s %s\n"+
		"Income: %s %s\n"+
		"Expenses: %s %s\n"+
		"Savings: %s %s\n"+
		"Savings rate: %s%%",
		s.TotalBalance.StringFixed(2), currency,
		s.MonthlyIncome.StringFixed(2), currency,
		s.MonthlyExpenses.StringFixed(2), currency,
		s.Savings.StringFixed(2), currency,
		s.SavingsRate.StringFixed(1))
}
