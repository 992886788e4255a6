package telegram

import (
	"context"
	"fmt"
	"sync"

	"fintrack_notifier/internal/domain/push"
	"fintrack_notifier/internal/domain/user"
	"fintrack_notifier/internal/infra/logger"

	"gopkg.in/telebot.v3"
)

// Sender delivers push messages through a Telegram bot chat. It implements
// push.Sender: the previous message for a slot is deleted before the new one
// goes out, so a repeated deadline of the same kind replaces the old
// notification instead of stacking.
type Sender struct {
	bot   *telebot.Bot
	users user.Repository

	mu    sync.Mutex
	slots map[string]*telebot.Message // last delivered message per slot
}

func NewSender(bot *telebot.Bot, users user.Repository) *Sender {
	return &Sender{
		bot:   bot,
		users: users,
		slots: make(map[string]*telebot.Message),
	}
}

func (s *Sender) Send(ctx context.Context, msg push.Message) error {
	u, err := s.users.GetByID(ctx, msg.UserID)
	if err != nil {
		return fmt.Errorf("failed to resolve chat for user %d: %w", msg.UserID, err)
	}
	if !u.TelegramChatID.Valid {
		// User never linked the bot; nothing to deliver, the in-app log
		// entry still gets written by the dispatcher.
		logger.Log.WithField("user_id", msg.UserID).Debug("No Telegram chat linked; push skipped")
		return nil
	}

	text := fmt.Sprintf("*%s*\n%s", msg.Title, msg.Body)
	if msg.Subtext != "" {
		text += "\n_" + msg.Subtext + "_"
	}

	recipient := &telebot.User{ID: u.TelegramChatID.Int64}
	opts := &telebot.SendOptions{ParseMode: telebot.ModeMarkdown}
	if msg.Priority != push.PriorityHigh {
		opts.DisableNotification = true
	}

	sent, err := s.bot.Send(recipient, text, opts)
	if err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}

	s.mu.Lock()
	prev := s.slots[msg.SlotKey]
	s.slots[msg.SlotKey] = sent
	s.mu.Unlock()

	if prev != nil {
		// Best effort: stale slot messages may already be gone.
		if err := s.bot.Delete(prev); err != nil {
			logger.Log.WithError(err).WithField("slot", msg.SlotKey).Debug("Could not delete replaced notification")
		}
	}
	return nil
}
