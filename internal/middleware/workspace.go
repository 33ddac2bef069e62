package middleware

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/set-night/finmind/internal/service"
)

type ctxKey string

const WorkspaceKey ctxKey = "workspace"

// GetWorkspace extracts the chat's workspace from context.
func GetWorkspace(ctx context.Context) *service.Workspace {
	ws, ok := ctx.Value(WorkspaceKey).(*service.Workspace)
	if !ok {
		return nil
	}
	return ws
}

// WithWorkspace stores ws in ctx.
func WithWorkspace(ctx context.Context, ws *service.Workspace) context.Context {
	return context.WithValue(ctx, WorkspaceKey, ws)
}

// WorkspaceLoader returns middleware that loads the workspace of the update's
// chat into context. Every chat is its own tab with its own session.
func WorkspaceLoader(workspaces *service.Workspaces) bot.Middleware {
	return func(next bot.HandlerFunc) bot.HandlerFunc {
		return func(ctx context.Context, b *bot.Bot, update *models.Update) {
			if chatID := describe(update).chatID; chatID != 0 {
				ctx = WithWorkspace(ctx, workspaces.Get(ctx, chatID))
			}
			next(ctx, b, update)
		}
	}
}
