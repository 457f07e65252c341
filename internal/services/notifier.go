package services

import (
	"fmt"
	"html"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"autodocs/internal/models"
)

// AdminNotifier — уведомление админов о новой заявке на аккаунт.
type AdminNotifier interface {
	NotifyRegistration(u *models.User) error
}

type telegramNotifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

// NewTelegramNotifier возвращает nil, nil если бот не настроен.
func NewTelegramNotifier(botToken string, chatID int64) (AdminNotifier, error) {
	if botToken == "" || chatID == 0 {
		log.Printf("[tg][skip] token or chatID empty (token? %v chatID=%d)", botToken != "", chatID)
		return nil, nil
	}
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("telegram bot init: %w", err)
	}
	log.Printf("[tg] authorized as @%s", bot.Self.UserName)
	return &telegramNotifier{bot: bot, chatID: chatID}, nil
}

func (n *telegramNotifier) NotifyRegistration(u *models.User) error {
	msg := tgbotapi.NewMessage(n.chatID, RegistrationMessage(u))
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	if _, err := n.bot.Send(msg); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}

func RegistrationMessage(u *models.User) string {
	role := u.RoleName
	if role == "" {
		role = "-"
	}
	return fmt.Sprintf(
		"<b>New account request</b>\nEmail: %s\nStudent ID: %d\nSession: %s\nRole: %s",
		html.EscapeString(u.Email), u.StudentID, html.EscapeString(u.Session), html.EscapeString(role),
	)
}
