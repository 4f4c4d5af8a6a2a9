package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dosewatch/internal/models"
)

type fakeNotifier struct {
	name     string
	ready    bool
	failures int

	mu    sync.Mutex
	calls []Notification
}

func (n *fakeNotifier) Name() string { return n.name }
func (n *fakeNotifier) Ready() bool  { return n.ready }

func (n *fakeNotifier) Notify(_ context.Context, notification Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, notification)
	if n.failures > 0 {
		n.failures--
		return errors.New("channel unavailable")
	}
	return nil
}

type recordingRecorder struct {
	mu      sync.Mutex
	entries []string // "channel/status"
}

func (r *recordingRecorder) RecordDelivery(_ context.Context, _, _, _, channel, status, _ string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, channel+"/"+status)
	return nil
}

func testDispatcherConfig() DispatcherConfig {
	return DispatcherConfig{
		Rate:  1000,
		Burst: 1000,
		Retry: RetryConfig{
			MaxRetries:  2,
			RetryDelays: []time.Duration{time.Millisecond, time.Millisecond},
		},
	}
}

func testReminder() models.Reminder {
	return models.Reminder{
		ID:           "r1",
		MedicineName: "Metformin",
		Dosage:       "500 mg",
		Notes:        "with food",
		Times:        []string{"08:00"},
		IsActive:     true,
	}
}

func TestFromReminder(t *testing.T) {
	n := FromReminder(testReminder(), "08:00")
	assert.Equal(t, "Medication Time: Metformin", n.Title)
	assert.Equal(t, "Don't forget your 500 mg dose. Note: with food", n.Body)
	assert.Equal(t, "08:00", n.Slot)

	t.Run("no dosage or notes", func(t *testing.T) {
		r := testReminder()
		r.Dosage = ""
		r.Notes = ""
		assert.Equal(t, "Don't forget your dose.", FromReminder(r, "08:00").Body)
	})
}

func TestDispatcher_DeliverFansOut(t *testing.T) {
	logger := zerolog.Nop()
	a := &fakeNotifier{name: "log", ready: true}
	b := &fakeNotifier{name: "telegram", ready: true}
	rec := &recordingRecorder{}

	d := NewDispatcher(testDispatcherConfig(), rec, &logger, a, b)
	d.Deliver(context.Background(), testReminder(), "08:00")

	assert.Len(t, a.calls, 1)
	assert.Len(t, b.calls, 1)
	assert.Equal(t, []string{"log/sent", "telegram/sent"}, rec.entries)
}

func TestDispatcher_SkipsNotReadyChannel(t *testing.T) {
	logger := zerolog.Nop()
	ready := &fakeNotifier{name: "log", ready: true}
	unconfigured := &fakeNotifier{name: "telegram", ready: false}
	rec := &recordingRecorder{}

	d := NewDispatcher(testDispatcherConfig(), rec, &logger, ready, unconfigured)
	d.Deliver(context.Background(), testReminder(), "08:00")

	assert.Len(t, ready.calls, 1)
	assert.Empty(t, unconfigured.calls, "not-ready channel must silently no-op")
	assert.Equal(t, []string{"log/sent"}, rec.entries)
}

func TestDispatcher_RetriesThenSucceeds(t *testing.T) {
	logger := zerolog.Nop()
	flaky := &fakeNotifier{name: "telegram", ready: true, failures: 2}
	rec := &recordingRecorder{}

	d := NewDispatcher(testDispatcherConfig(), rec, &logger, flaky)
	d.Deliver(context.Background(), testReminder(), "08:00")

	assert.Len(t, flaky.calls, 3, "two failures then success")
	assert.Equal(t, []string{"telegram/sent"}, rec.entries)
}

func TestDispatcher_ExhaustedRetriesRecordFailure(t *testing.T) {
	logger := zerolog.Nop()
	dead := &fakeNotifier{name: "telegram", ready: true, failures: 10}
	rec := &recordingRecorder{}

	d := NewDispatcher(testDispatcherConfig(), rec, &logger, dead)
	d.Deliver(context.Background(), testReminder(), "08:00")

	assert.Len(t, dead.calls, 3, "initial attempt plus max retries")
	require.Equal(t, []string{"telegram/failed"}, rec.entries)
}
