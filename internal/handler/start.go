package handler

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/set-night/finmind/internal/domain"
	"github.com/set-night/finmind/internal/middleware"
	"github.com/set-night/finmind/internal/service"
	tg "github.com/set-night/finmind/internal/telegram"
)

func (h *Handler) handleStart(ctx context.Context, _ *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	ws := middleware.GetWorkspace(ctx)

	greeting := "👋 Hi!"
	if ws != nil {
		if user := ws.Session.User(); user != nil && ws.Session.IsAuthenticated() {
			greeting = fmt.Sprintf("👋 Hi, *%s*!", tg.EscapeMarkdown(displayName(user)))
		}
	}

	types := make([]string, len(domain.AccountTypes))
	for i, t := range domain.AccountTypes {
		types[i] = string(t)
	}

	text := greeting + "\n\n" +
		"I keep track of your accounts and spending and answer personal finance questions.\n\n" +
		"🔐 *Session*\n" +
		"/login <email> <password>\n" +
		"/register <username> <email> <password> <full name>\n" +
		"/me, /fullname <name>, /logout\n\n" +
		"💼 *Accounts*\n" +
		"/accounts, /balance [currency]\n" +
		"/newaccount <name> <type> <currency> [balance]\n" +
		"/account <id>, /rename <id> <name>, /delete <id>\n" +
		"Types: " + tg.EscapeMarkdown(strings.Join(types, ", ")) + "\n\n" +
		"📊 *Dashboard*\n" +
		"/income <amount> <category> [description]\n" +
		"/expense <amount> <category> [description]\n" +
		"/transactions, /deltx <id>, /summary\n\n" +
		"💬 *Assistant*\n" +
		"Just write a message. /reset clears the conversation."

	h.reply(ctx, update.Message.Chat.ID, text, nil)
}

// reply sends Markdown text, logging delivery failures.
func (h *Handler) reply(ctx context.Context, chatID int64, text string, markup models.ReplyMarkup) {
	if err := tg.SendLongMessage(ctx, h.out, chatID, text, markup); err != nil {
		slog.Error("send reply", "error", err, "chat_id", chatID)
	}
}

// replyError shows err inline the way the app shows operation errors.
func (h *Handler) replyError(ctx context.Context, chatID int64, err error) {
	if err := tg.SendText(ctx, h.out, chatID, "❌ "+domain.Message(err)); err != nil {
		slog.Error("send reply", "error", err, "chat_id", chatID)
	}
}

// authedWorkspace returns the chat's workspace if its session is authenticated,
// otherwise it asks the user to log in and returns nil.
func (h *Handler) authedWorkspace(ctx context.Context, chatID int64) *service.Workspace {
	ws := middleware.GetWorkspace(ctx)
	if ws == nil {
		return nil
	}
	if !ws.Session.IsAuthenticated() {
		h.reply(ctx, chatID, "🔒 Please /login or /register first.", nil)
		return nil
	}
	return ws
}

func displayName(u *domain.UserProfile) string {
	if u.Fullname != "" {
		return u.Fullname
	}
	return u.Username
}
