package middleware

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// updateInfo is what the bot middlewares know about an update before any handler runs.
type updateInfo struct {
	kind    string
	command string
	chatID  int64
	userID  int64
}

func describe(update *models.Update) updateInfo {
	info := updateInfo{kind: "unknown"}
	switch {
	case update.Message != nil:
		info.kind = "message"
		info.chatID = update.Message.Chat.ID
		if update.Message.From != nil {
			info.userID = update.Message.From.ID
		}
		// Never log arguments: /login carries a password.
		if strings.HasPrefix(update.Message.Text, "/") {
			info.command, _, _ = strings.Cut(update.Message.Text, " ")
		}
	case update.CallbackQuery != nil:
		info.kind = "callback_query"
		if update.CallbackQuery.Message.Message != nil {
			info.chatID = update.CallbackQuery.Message.Message.Chat.ID
		}
		info.userID = update.CallbackQuery.From.ID
	}
	return info
}

// Logging returns middleware that logs each update with the state of its
// workspace once the handler is done. It must run inside WorkspaceLoader.
func Logging() bot.Middleware {
	return func(next bot.HandlerFunc) bot.HandlerFunc {
		return func(ctx context.Context, b *bot.Bot, update *models.Update) {
			start := time.Now()
			info := describe(update)

			next(ctx, b, update)

			attrs := []any{
				"type", info.kind,
				"command", info.command,
				"chat_id", info.chatID,
				"user_id", info.userID,
				"duration", time.Since(start),
			}
			if ws := GetWorkspace(ctx); ws != nil {
				attrs = append(attrs,
					"workspace", ws.ID,
					"authenticated", ws.Session.IsAuthenticated(),
					"busy", ws.Accounts.Busy(),
				)
				if user := ws.Session.User(); user != nil {
					attrs = append(attrs, "account_user", user.ID)
				}
			}
			slog.Debug("update processed", attrs...)
		}
	}
}
