package notifier

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/pfrederiksen/ff-events/internal/calendar"
	"github.com/pfrederiksen/ff-events/internal/event"
	"github.com/pfrederiksen/ff-events/internal/telegram"
)

type telegramSender interface {
	SendMessage(ctx context.Context, text string) error
	SendDocument(ctx context.Context, filename string, data []byte, caption string) error
}

// TelegramNotifier posts the digest to a chat and attaches the week as an .ics file
type TelegramNotifier struct {
	client telegramSender
	loc    *time.Location
	now    func() time.Time
}

// NewTelegramNotifier creates a notifier from TELEGRAM_BOT_TOKEN and
// TELEGRAM_CHAT_ID. Digest times are shown in loc.
func NewTelegramNotifier(loc *time.Location) (*TelegramNotifier, error) {
	client, err := telegram.NewClient(os.Getenv("TELEGRAM_BOT_TOKEN"), os.Getenv("TELEGRAM_CHAT_ID"))
	if err != nil {
		return nil, fmt.Errorf("creating telegram client: %w", err)
	}
	return &TelegramNotifier{client: client, loc: loc, now: time.Now}, nil
}

// Notify sends the digest, then the calendar file. Empty snapshots are not announced.
func (n *TelegramNotifier) Notify(ctx context.Context, events []*event.Event) error {
	if len(events) == 0 {
		return nil
	}
	if err := n.client.SendMessage(ctx, telegram.FormatDigest(events, n.loc)); err != nil {
		return fmt.Errorf("sending telegram digest: %w", err)
	}

	ics := calendar.GenerateFeed(events, calendar.DefaultCalendarName, n.now())
	if err := n.client.SendDocument(ctx, "calendar.ics", []byte(ics), telegram.FormatDigestSummary(events)); err != nil {
		return fmt.Errorf("sending telegram calendar: %w", err)
	}
	return nil
}
