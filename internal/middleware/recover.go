package middleware

import (
	"context"
	"log/slog"
	"runtime/debug"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// Recover returns middleware that turns a handler panic into an error log
// naming the update that caused it.
func Recover() bot.Middleware {
	return func(next bot.HandlerFunc) bot.HandlerFunc {
		return func(ctx context.Context, b *bot.Bot, update *models.Update) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}
				info := describe(update)
				slog.Error("panic recovered in handler",
					"panic", r,
					"type", info.kind,
					"command", info.command,
					"workspace", info.chatID,
					"stack", string(debug.Stack()),
				)
			}()
			next(ctx, b, update)
		}
	}
}
