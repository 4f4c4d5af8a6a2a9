package notify

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"dosewatch/internal/metrics"
	"dosewatch/internal/models"
)

// DeliveryRecorder journals the outcome of each delivery attempt.
type DeliveryRecorder interface {
	RecordDelivery(ctx context.Context, reminderID, medicine, slot, channel, status, errMsg string) error
}

// NopRecorder discards delivery records.
type NopRecorder struct{}

func (NopRecorder) RecordDelivery(context.Context, string, string, string, string, string, string) error {
	return nil
}

// RetryConfig bounds delivery retries per channel.
type RetryConfig struct {
	MaxRetries  int
	RetryDelays []time.Duration
}

// DefaultRetryConfig returns the default retry configuration.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: 3,
		RetryDelays: []time.Duration{
			1 * time.Second,
			5 * time.Second,
			30 * time.Second,
		},
	}
}

// DispatcherConfig holds dispatcher tuning.
type DispatcherConfig struct {
	// Rate and Burst bound deliveries per second across all channels.
	Rate  float64
	Burst int
	Retry RetryConfig
}

// DefaultDispatcherConfig returns the default configuration.
func DefaultDispatcherConfig() DispatcherConfig {
	return DispatcherConfig{
		Rate:  20,
		Burst: 30,
		Retry: DefaultRetryConfig(),
	}
}

// Dispatcher fans a due reminder slot out to every ready channel, with rate
// limiting and bounded retry. It is the scheduler's delivery sink.
type Dispatcher struct {
	notifiers []Notifier
	limiter   *rate.Limiter
	retry     RetryConfig
	recorder  DeliveryRecorder
	logger    *zerolog.Logger
}

// NewDispatcher creates a dispatcher over the given channels.
func NewDispatcher(cfg DispatcherConfig, recorder DeliveryRecorder, logger *zerolog.Logger, notifiers ...Notifier) *Dispatcher {
	if cfg.Rate <= 0 {
		cfg.Rate = 20
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 30
	}
	if recorder == nil {
		recorder = NopRecorder{}
	}
	return &Dispatcher{
		notifiers: notifiers,
		limiter:   rate.NewLimiter(rate.Limit(cfg.Rate), cfg.Burst),
		retry:     cfg.Retry,
		recorder:  recorder,
		logger:    logger,
	}
}

// AddNotifier registers an extra channel. Call before the scheduler starts
// firing; the notifier list is not guarded.
func (d *Dispatcher) AddNotifier(n Notifier) {
	d.notifiers = append(d.notifiers, n)
}

// Deliver renders and sends the notification for one due slot.
func (d *Dispatcher) Deliver(ctx context.Context, r models.Reminder, slot string) {
	n := FromReminder(r, slot)
	start := time.Now()

	if err := d.limiter.Wait(ctx); err != nil {
		return
	}

	for _, notifier := range d.notifiers {
		if !notifier.Ready() {
			d.logger.Debug().Str("channel", notifier.Name()).
				Str("reminder_id", n.ReminderID).Msg("channel not ready, skipping")
			continue
		}

		if err := d.sendWithRetry(ctx, notifier, n); err != nil {
			metrics.IncNotificationSent(notifier.Name(), "failed")
			_ = d.recorder.RecordDelivery(ctx, n.ReminderID, n.Medicine, n.Slot,
				notifier.Name(), "failed", err.Error())
			d.logger.Error().Err(err).Str("channel", notifier.Name()).
				Str("reminder_id", n.ReminderID).Msg("notification delivery failed")
			continue
		}

		metrics.IncNotificationSent(notifier.Name(), "sent")
		_ = d.recorder.RecordDelivery(ctx, n.ReminderID, n.Medicine, n.Slot,
			notifier.Name(), "sent", "")
		d.logger.Info().Str("channel", notifier.Name()).
			Str("reminder_id", n.ReminderID).Str("slot", n.Slot).
			Msg("notification delivered")
	}

	metrics.ObserveSendDuration(time.Since(start).Seconds())
}

func (d *Dispatcher) sendWithRetry(ctx context.Context, notifier Notifier, n Notification) error {
	var lastErr error

	for attempt := 0; attempt <= d.retry.MaxRetries; attempt++ {
		if err := notifier.Notify(ctx, n); err == nil {
			return nil
		} else {
			lastErr = err
		}

		if attempt >= d.retry.MaxRetries || attempt >= len(d.retry.RetryDelays) {
			break
		}

		delay := d.retry.RetryDelays[attempt]
		d.logger.Debug().Err(lastErr).Str("channel", notifier.Name()).
			Int("attempt", attempt+1).Dur("delay", delay).
			Msg("retrying notification delivery")

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return lastErr
}
