// Package notify delivers booking notifications to users over Telegram.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/spacehub/coworking-api/internal/core/domain"
	"github.com/spacehub/coworking-api/internal/core/ports"
)

const timeLayout = "02 Jan 2006 15:04 MST"

// TelegramAPI defines the interface for Telegram bot operations.
type TelegramAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// UserLookup resolves the recipient of a notification.
type UserLookup interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

// TelegramNotifier messages the booking's user about lifecycle changes.
// Users without a linked Telegram account are skipped.
type TelegramNotifier struct {
	api   TelegramAPI
	users UserLookup
	log   zerolog.Logger
}

// NewBotAPI creates the Telegram client for token.
func NewBotAPI(token string) (*tgbotapi.BotAPI, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	return bot, nil
}

func NewTelegramNotifier(api TelegramAPI, users UserLookup, log zerolog.Logger) *TelegramNotifier {
	return &TelegramNotifier{api: api, users: users, log: log}
}

var _ ports.EventHandler = (*TelegramNotifier)(nil)

func (n *TelegramNotifier) Name() string { return "telegram" }

func (n *TelegramNotifier) Handle(ctx context.Context, event domain.BookingEvent) error {
	text, ok := messageFor(event)
	if !ok {
		return nil
	}

	user, err := n.users.GetByID(ctx, event.UserID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("telegram notify: %w", err)
	}
	if user.TelegramID == nil || *user.TelegramID == "" {
		return nil
	}
	chatID, err := strconv.ParseInt(*user.TelegramID, 10, 64)
	if err != nil {
		n.log.Warn().Int64("user_id", user.ID).Str("telegram_id", *user.TelegramID).Msg("unusable telegram id")
		return nil
	}

	if _, err := n.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}

func messageFor(e domain.BookingEvent) (string, bool) {
	window := fmt.Sprintf("%s to %s", e.StartTime.UTC().Format(timeLayout), e.EndTime.UTC().Format(timeLayout))
	switch e.Type {
	case domain.BookingCreatedEvent:
		if e.Status == domain.BookingPending {
			return fmt.Sprintf("A booking #%d was made for you, %s. It is waiting for your confirmation.", e.BookingID, window), true
		}
		return fmt.Sprintf("Booking #%d confirmed: %s. Total %.2f.", e.BookingID, window, e.TotalPrice), true
	case domain.BookingAcceptedEvent:
		return fmt.Sprintf("Booking #%d was accepted: %s.", e.BookingID, window), true
	case domain.BookingRejectedEvent:
		return fmt.Sprintf("Booking #%d was rejected.", e.BookingID), true
	case domain.BookingCancelledEvent:
		return fmt.Sprintf("Booking #%d was cancelled.", e.BookingID), true
	case domain.BookingRescheduledEvent:
		return fmt.Sprintf("Booking #%d moved to %s. Total %.2f.", e.BookingID, window, e.TotalPrice), true
	}
	return "", false
}
