package handler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/set-night/finmind/internal/domain"
	"github.com/set-night/finmind/internal/middleware"
	tg "github.com/set-night/finmind/internal/telegram"
)

func (h *Handler) handleLogin(ctx context.Context, _ *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	msg := update.Message
	chatID := msg.Chat.ID
	ws := middleware.GetWorkspace(ctx)
	if ws == nil {
		return
	}

	creds, err := parseLogin(msg.Text)
	h.forgetMessage(ctx, chatID, msg.ID)
	if err != nil {
		h.reply(ctx, chatID, "Usage: /login <email> <password>", nil)
		return
	}

	user, err := ws.Session.Login(ctx, creds)
	if err != nil {
		slog.Info("login failed", "chat_id", chatID, "error", err)
		h.replyError(ctx, chatID, err)
		return
	}

	h.tgLogger.LogLogin(chatID, user.Email)
	h.reply(ctx, chatID, fmt.Sprintf("✅ Logged in as *%s*.", tg.EscapeMarkdown(displayName(user))), nil)
}

func (h *Handler) handleRegister(ctx context.Context, _ *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	msg := update.Message
	chatID := msg.Chat.ID
	ws := middleware.GetWorkspace(ctx)
	if ws == nil {
		return
	}

	in, err := parseRegister(msg.Text)
	h.forgetMessage(ctx, chatID, msg.ID)
	if err != nil {
		h.reply(ctx, chatID, "Usage: /register <username> <email> <password> <full name>", nil)
		return
	}

	if err := ws.Session.Register(ctx, in); err != nil {
		slog.Info("registration failed", "chat_id", chatID, "error", err)
		h.replyError(ctx, chatID, err)
		return
	}

	h.tgLogger.LogRegistration(chatID, in.Username, in.Email)
	h.reply(ctx, chatID, fmt.Sprintf("🎉 Welcome, *%s*! Create your first account with /newaccount.",
		tg.EscapeMarkdown(in.Fullname)), nil)
}

func (h *Handler) handleLogout(ctx context.Context, _ *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	ws := middleware.GetWorkspace(ctx)
	if ws == nil {
		return
	}
	ws.Logout(ctx)
	h.reply(ctx, update.Message.Chat.ID, "👋 Logged out.", nil)
}

func (h *Handler) handleMe(ctx context.Context, _ *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID
	ws := h.authedWorkspace(ctx, chatID)
	if ws == nil {
		return
	}

	user, err := ws.Session.RefreshProfile(ctx)
	if err != nil {
		slog.Warn("refresh profile", "chat_id", chatID, "error", err)
		// Fall back to the persisted profile.
		user = ws.Session.User()
	}
	if user == nil {
		h.replyError(ctx, chatID, domain.ErrNotAuthenticated)
		return
	}

	text := fmt.Sprintf("👤 *%s*\nUsername: %s\nEmail: %s",
		tg.EscapeMarkdown(displayName(user)), tg.EscapeMarkdown(user.Username), tg.EscapeMarkdown(user.Email))
	if exp, ok := ws.Session.ExpiresAt(); ok {
		text += fmt.Sprintf("\nSession expires: %s", exp.UTC().Format(time.RFC1123))
	}
	h.reply(ctx, chatID, text, nil)
}

func (h *Handler) handleFullname(ctx context.Context, _ *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID
	ws := h.authedWorkspace(ctx, chatID)
	if ws == nil {
		return
	}

	name := commandTail(update.Message.Text)
	if name == "" {
		h.reply(ctx, chatID, "Usage: /fullname <name>", nil)
		return
	}

	user, err := ws.Session.UpdateProfile(ctx, domain.UserUpdate{Fullname: &name})
	if err != nil {
		h.replyError(ctx, chatID, err)
		return
	}
	h.reply(ctx, chatID, fmt.Sprintf("✅ Name changed to *%s*.", tg.EscapeMarkdown(user.Fullname)), nil)
}

// forgetMessage deletes a message that carried a password. Bots cannot delete
// in every chat, so failure is only logged.
func (h *Handler) forgetMessage(ctx context.Context, chatID int64, messageID int) {
	if _, err := h.out.DeleteMessage(ctx, &bot.DeleteMessageParams{ChatID: chatID, MessageID: messageID}); err != nil {
		slog.Debug("delete credentials message", "chat_id", chatID, "error", err)
	}
}
