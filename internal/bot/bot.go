package bot

import (
	"context"
	"errors"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	applog "expensebot/internal/log"
)

const (
	FailureMessage     = "Something went wrong, please try again later"
	RateLimitedMessage = "Too many messages, please wait a minute"
	pollTimeout    = 60 // seconds
)

// Sender is the part of *tgbotapi.BotAPI used to reply.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Limiter decides whether a user may send another message.
type Limiter interface {
	Allow(userID int64) bool
}

// Bot long-polls Telegram and answers every message through a Router.
type Bot struct {
	api     *tgbotapi.BotAPI
	sender  Sender
	router  *Router
	access  *AccessList
	limiter Limiter
	logger  *applog.Logger
}

// New connects to the Bot API. limiter may be nil.
func New(token string, router *Router, access *AccessList, limiter Limiter, logger *applog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("connect telegram bot api: %w", err)
	}
	logger = logger.WithComponent(applog.ComponentBot)
	logger.Info("Authorized on Telegram", "username", api.Self.UserName)

	return &Bot{api: api, sender: api, router: router, access: access, limiter: limiter, logger: logger}, nil
}

// Run handles updates one at a time until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = pollTimeout
	updates := b.api.GetUpdatesChan(u)

	b.logger.InfoContext(ctx, "Started polling updates")
	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			b.logger.InfoContext(ctx, "Stopped polling updates", "reason", ctx.Err())
			return nil
		case update, ok := <-updates:
			if !ok {
				return errors.New("updates channel closed")
			}
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || msg.From == nil || msg.Chat == nil {
		return
	}

	fields := applog.NewFields().WithUpdate(update.UpdateID, msg.From.ID, msg.Chat.ID)
	logger := b.logger.With(fields.ToSlice()...)
	ctx = applog.WithContext(ctx, logger)

	if !b.access.Allowed(msg.From.ID) {
		logger.WarnContext(ctx, "Rejected message from unknown user")
		b.reply(ctx, msg.Chat.ID, AccessDeniedMessage)
		return
	}
	if b.limiter != nil && !b.limiter.Allow(msg.From.ID) {
		logger.WarnContext(ctx, "Rate limit exceeded")
		b.reply(ctx, msg.Chat.ID, RateLimitedMessage)
		return
	}

	start := time.Now()
	text, err := b.router.Handle(ctx, msg.Text)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to handle message",
			applog.NewFields().
				WithCommand(Command(msg.Text)).
				WithError(err).
				WithResult(time.Since(start).Milliseconds(), false).
				ToSlice()...)
		text = FailureMessage
	} else {
		logger.DebugContext(ctx, "Handled message",
			applog.NewFields().
				WithCommand(Command(msg.Text)).
				WithResult(time.Since(start).Milliseconds(), true).
				ToSlice()...)
	}
	b.reply(ctx, msg.Chat.ID, text)
}

func (b *Bot) reply(ctx context.Context, chatID int64, text string) {
	if _, err := b.sender.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		applog.FromContext(ctx).ErrorContext(ctx, "Failed to send reply", applog.FieldError, err)
	}
}
