package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-telegram/bot"
	"github.com/set-night/finmind/internal/config"
)

// TelegramLogger mirrors operational events into topics of a log chat.
type TelegramLogger struct {
	bot Sender
	cfg *config.Config
}

func NewTelegramLogger(b Sender, cfg *config.Config) *TelegramLogger {
	return &TelegramLogger{bot: b, cfg: cfg}
}

type LogType string

const (
	LogTypeError        LogType = "error"
	LogTypeLogin        LogType = "login"
	LogTypeRegistration LogType = "registration"
)

func (l *TelegramLogger) Log(logType LogType, message string) {
	if l == nil || l.cfg.LogTelegramChatID == 0 {
		return
	}

	topicID := l.getTopicID(logType)
	if topicID == 0 {
		return
	}

	if len([]rune(message)) > config.MaxTelegramMessageLen {
		message = string([]rune(message)[:config.MaxTelegramMessageLen-20]) + "\n\n... (truncated)"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := l.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:          l.cfg.LogTelegramChatID,
		Text:            message,
		ParseMode:       "Markdown",
		MessageThreadID: topicID,
	})
	if err != nil {
		slog.Error("failed to send telegram log", "type", logType, "error", err)
	}
}

func (l *TelegramLogger) LogError(err error, context string) {
	msg := fmt.Sprintf("❌ *Error*\n\n*Context:* %s\n*Error:* `%s`\n*Time:* %s",
		EscapeMarkdown(context), err.Error(), time.Now().Format("2006-01-02 15:04:05"))
	l.Log(LogTypeError, msg)
}

func (l *TelegramLogger) LogLogin(chatID int64, email string) {
	msg := fmt.Sprintf("🔑 *Login*\n\n*Chat:* `%d`\n*Email:* %s", chatID, EscapeMarkdown(email))
	l.Log(LogTypeLogin, msg)
}

func (l *TelegramLogger) LogRegistration(chatID int64, username, email string) {
	msg := fmt.Sprintf("👤 *New Registration*\n\n*Chat:* `%d`\n*Username:* %s\n*Email:* %s",
		chatID, EscapeMarkdown(username), EscapeMarkdown(email))
	l.Log(LogTypeRegistration, msg)
}

func (l *TelegramLogger) getTopicID(logType LogType) int {
	switch logType {
	case LogTypeError:
		return l.cfg.LogTopicError
	case LogTypeLogin, LogTypeRegistration:
		return l.cfg.LogTopicAuth
	default:
		return 0
	}
}
