package bot

import (
	"context"
	"errors"
	"io"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	applog "expensebot/internal/log"
)

type fakeSender struct {
	sent []tgbotapi.MessageConfig
	err  error
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if m, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent = append(f.sent, m)
	}
	return tgbotapi.Message{}, f.err
}

func newTestBot(sender Sender, exp *fakeExpenses) *Bot {
	return &Bot{
		sender: sender,
		router: newTestRouter(exp),
		access: NewAccessList([]int64{42}),
		logger: applog.New(applog.Config{Output: io.Discard, Component: applog.ComponentBot}),
	}
}

func update(userID int64, text string) tgbotapi.Update {
	return tgbotapi.Update{
		UpdateID: 1,
		Message: &tgbotapi.Message{
			From: &tgbotapi.User{ID: userID},
			Chat: &tgbotapi.Chat{ID: 1000 + userID},
			Text: text,
		},
	}
}

func TestBot_HandleUpdate(t *testing.T) {
	tests := []struct {
		name   string
		upd    tgbotapi.Update
		exp    *fakeExpenses
		want   string
		chatID int64
	}{
		{"allowed user", update(42, "/today"), &fakeExpenses{}, "today-report", 1042},
		{"denied user", update(7, "/today"), &fakeExpenses{}, AccessDeniedMessage, 1007},
		{"malformed input", update(42, "taxi"), &fakeExpenses{}, "I can not understand the message. Write a message in a format, e.g.:\n1000 cafe", 1042},
		{"storage failure", update(42, "/expenses"), &fakeExpenses{err: errors.New("locked")}, FailureMessage, 1042},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender := &fakeSender{}
			newTestBot(sender, tt.exp).handleUpdate(context.Background(), tt.upd)
			if len(sender.sent) != 1 {
				t.Fatalf("expected one reply, got %d", len(sender.sent))
			}
			if sender.sent[0].Text != tt.want || sender.sent[0].ChatID != tt.chatID {
				t.Errorf("reply = %q to %d, want %q to %d", sender.sent[0].Text, sender.sent[0].ChatID, tt.want, tt.chatID)
			}
		})
	}
}

func TestBot_DeniedUserIsNotRouted(t *testing.T) {
	exp := &fakeExpenses{}
	newTestBot(&fakeSender{}, exp).handleUpdate(context.Background(), update(7, "250 taxi"))
	if len(exp.added) != 0 {
		t.Fatal("denied users must not reach the router")
	}
}

func TestBot_IgnoresNonMessageUpdates(t *testing.T) {
	sender := &fakeSender{}
	b := newTestBot(sender, &fakeExpenses{})
	b.handleUpdate(context.Background(), tgbotapi.Update{UpdateID: 5})
	b.handleUpdate(context.Background(), tgbotapi.Update{Message: &tgbotapi.Message{Text: "hi"}})
	if len(sender.sent) != 0 {
		t.Fatalf("expected no replies, got %d", len(sender.sent))
	}
}

func TestBot_SendErrorIsLogged(t *testing.T) {
	sender := &fakeSender{err: errors.New("network")}
	newTestBot(sender, &fakeExpenses{}).handleUpdate(context.Background(), update(42, "/help"))
	if len(sender.sent) != 1 {
		t.Fatal("reply should still be attempted")
	}
}

type denyAfter struct{ left int }

func (d *denyAfter) Allow(int64) bool {
	d.left--
	return d.left >= 0
}

func TestBot_RateLimited(t *testing.T) {
	sender := &fakeSender{}
	exp := &fakeExpenses{}
	b := newTestBot(sender, exp)
	b.limiter = &denyAfter{left: 1}

	b.handleUpdate(context.Background(), update(42, "250 taxi"))
	b.handleUpdate(context.Background(), update(42, "250 taxi"))

	if len(exp.added) != 1 {
		t.Fatalf("expected one routed message, got %d", len(exp.added))
	}
	if len(sender.sent) != 2 || sender.sent[1].Text != RateLimitedMessage {
		t.Fatalf("unexpected replies %+v", sender.sent)
	}
}

func TestAccessList(t *testing.T) {
	a := NewAccessList([]int64{1, 2})
	if !a.Allowed(1) || !a.Allowed(2) || a.Allowed(3) {
		t.Fatal("unexpected allow-list result")
	}
	if NewAccessList(nil).Allowed(0) {
		t.Fatal("empty list must deny everyone")
	}
}
