// Package notify delivers due reminder notifications through configured
// channels. A channel that is not in a ready state is skipped silently.
package notify

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"dosewatch/internal/models"
)

// Notification is one due reminder slot rendered for delivery.
type Notification struct {
	ReminderID string
	Medicine   string
	Slot       string
	Title      string
	Body       string
}

// FromReminder renders the notification text for a reminder slot.
func FromReminder(r models.Reminder, slot string) Notification {
	body := fmt.Sprintf("Don't forget your %s dose.", r.Dosage)
	if r.Dosage == "" {
		body = "Don't forget your dose."
	}
	if r.Notes != "" {
		body += fmt.Sprintf(" Note: %s", r.Notes)
	}
	return Notification{
		ReminderID: r.ID,
		Medicine:   r.MedicineName,
		Slot:       slot,
		Title:      fmt.Sprintf("Medication Time: %s", r.MedicineName),
		Body:       body,
	}
}

// Notifier is one delivery channel.
type Notifier interface {
	// Name identifies the channel in logs, metrics and the history journal.
	Name() string

	// Ready reports whether the channel is configured and allowed to send.
	// Channels that are not ready no-op without surfacing an error.
	Ready() bool

	// Notify delivers the notification.
	Notify(ctx context.Context, n Notification) error
}

// LogNotifier writes notifications to the structured log. It stands in for a
// local desktop notification surface and is always ready.
type LogNotifier struct {
	logger *zerolog.Logger
}

// NewLogNotifier creates a log-backed channel.
func NewLogNotifier(logger *zerolog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Name() string { return "log" }

func (n *LogNotifier) Ready() bool { return true }

func (n *LogNotifier) Notify(_ context.Context, notification Notification) error {
	n.logger.Info().
		Str("reminder_id", notification.ReminderID).
		Str("slot", notification.Slot).
		Str("title", notification.Title).
		Str("body", notification.Body).
		Msg("medication notification")
	return nil
}
