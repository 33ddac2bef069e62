package handler

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/set-night/finmind/internal/config"
	"github.com/set-night/finmind/internal/service"
	"github.com/set-night/finmind/internal/telegram"
)

// Messenger is the part of the Bot API the handlers answer with.
type Messenger interface {
	telegram.Sender
	DeleteMessage(ctx context.Context, params *bot.DeleteMessageParams) (bool, error)
	AnswerCallbackQuery(ctx context.Context, params *bot.AnswerCallbackQueryParams) (bool, error)
}

// Handler holds all dependencies needed by command and callback handlers.
type Handler struct {
	bot        *bot.Bot
	out        Messenger
	cfg        *config.Config
	workspaces *service.Workspaces
	chat       service.Replier
	tgLogger   *telegram.TelegramLogger
}

// Deps contains all dependencies required to construct a Handler.
type Deps struct {
	Bot        *bot.Bot
	Out        Messenger // defaults to Bot
	Cfg        *config.Config
	Workspaces *service.Workspaces
	Chat       service.Replier
	TgLogger   *telegram.TelegramLogger
}

// New creates a new Handler from the provided dependencies.
func New(deps Deps) *Handler {
	out := deps.Out
	if out == nil {
		out = deps.Bot
	}
	return &Handler{
		bot:        deps.Bot,
		out:        out,
		cfg:        deps.Cfg,
		workspaces: deps.Workspaces,
		chat:       deps.Chat,
		tgLogger:   deps.TgLogger,
	}
}
