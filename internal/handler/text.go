package handler

import (
	"context"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/set-night/finmind/internal/middleware"
	tg "github.com/set-night/finmind/internal/telegram"
)

// HandleText forwards a plain message to the assistant together with the
// chat's conversation so far.
func (h *Handler) HandleText(ctx context.Context, _ *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	msg := update.Message
	chatID := msg.Chat.ID
	ws := middleware.GetWorkspace(ctx)
	if ws == nil {
		return
	}

	stopTyping := tg.StartTyping(ctx, h.out, chatID)
	reply, err := ws.Chat.Send(ctx, h.chat, msg.Text)
	stopTyping()

	if err != nil {
		slog.Error("assistant reply failed", "error", err, "chat_id", chatID)
		h.tgLogger.LogError(err, "assistant reply")
	}
	h.reply(ctx, chatID, reply.Content, nil)
}

func (h *Handler) handleReset(ctx context.Context, _ *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	ws := middleware.GetWorkspace(ctx)
	if ws == nil {
		return
	}
	ws.Chat.Reset()
	h.reply(ctx, update.Message.Chat.ID, "🧹 Conversation cleared.", nil)
}
