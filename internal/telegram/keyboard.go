package telegram

import (
	"fmt"
	"strings"

	"github.com/go-telegram/bot/models"
	"github.com/set-night/finmind/internal/domain"
)

// Callback data prefixes for account buttons.
const (
	CallbackAccount = "acc:"
	CallbackDelete  = "del:"
	CallbackRefresh = "refresh"
)

// InlineButton creates a single inline keyboard button.
func InlineButton(text, callbackData string) models.InlineKeyboardButton {
	return models.InlineKeyboardButton{
		Text:         text,
		CallbackData: callbackData,
	}
}

// InlineKeyboard creates an inline keyboard from rows of buttons.
func InlineKeyboard(rows ...[]models.InlineKeyboardButton) *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: rows,
	}
}

// ButtonRow creates a row of inline buttons.
func ButtonRow(buttons ...models.InlineKeyboardButton) []models.InlineKeyboardButton {
	return buttons
}

// AccountsKeyboard has one row per account (details, delete) and a refresh row.
func AccountsKeyboard(accounts []domain.Account) *models.InlineKeyboardMarkup {
	rows := make([][]models.InlineKeyboardButton, 0, len(accounts)+1)
	for _, a := range accounts {
		rows = append(rows, ButtonRow(
			InlineButton(fmt.Sprintf("%s · %s %s", a.Name, a.Balance.StringFixed(2), a.Currency), CallbackAccount+a.ID),
			InlineButton("🗑", CallbackDelete+a.ID),
		))
	}
	rows = append(rows, ButtonRow(InlineButton("🔄 Refresh", CallbackRefresh)))
	return InlineKeyboard(rows...)
}

// ParseCallback splits callback data into its prefix and account id.
func ParseCallback(data string) (prefix, id string) {
	for _, p := range []string{CallbackAccount, CallbackDelete} {
		if rest, ok := strings.CutPrefix(data, p); ok {
			return p, rest
		}
	}
	return data, ""
}
