package bot

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dosewatch/internal/drugs"
	"dosewatch/internal/events"
	"dosewatch/internal/models"
	"dosewatch/internal/service"
	"dosewatch/internal/store"
)

type fakeTelegramClient struct {
	sent []tgbotapi.Chattable
}

func (f *fakeTelegramClient) Send(msg tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, msg)
	return tgbotapi.Message{}, nil
}

func (f *fakeTelegramClient) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return make(chan tgbotapi.Update)
}

func (f *fakeTelegramClient) SelfUser() tgbotapi.User {
	return tgbotapi.User{UserName: "dosewatch_test_bot"}
}

func (f *fakeTelegramClient) lastText(t *testing.T) string {
	t.Helper()
	require.NotEmpty(t, f.sent)
	msg, ok := f.sent[len(f.sent)-1].(tgbotapi.MessageConfig)
	require.True(t, ok, "last sent item is not a text message")
	return msg.Text
}

type nopScheduler struct{}

func (nopScheduler) Arm(context.Context, models.Reminder)        {}
func (nopScheduler) Cancel(string)                               {}
func (nopScheduler) RearmAll(context.Context, []models.Reminder) {}

func newTestBot(t *testing.T, allowed []int64) (*Bot, *fakeTelegramClient) {
	t.Helper()
	logger := zerolog.Nop()
	st, err := store.NewFileStore(filepath.Join(t.TempDir(), "reminders.json"), &logger)
	require.NoError(t, err)
	svc := service.New(st, nopScheduler{}, events.NewBus(), &logger)
	tg := &fakeTelegramClient{}
	return NewWithTelegramClient(tg, svc, nil, drugs.Default(), allowed, &logger), tg
}

func message(chatID int64, text string) *tgbotapi.Message {
	return &tgbotapi.Message{
		Chat: &tgbotapi.Chat{ID: chatID},
		Text: text,
	}
}

func TestParseForm(t *testing.T) {
	f, err := parseForm("Aspirin; 100mg; twice-daily; 08:00,20:00", "")
	require.NoError(t, err)
	assert.Equal(t, "Aspirin", f.MedicineName)
	assert.Equal(t, "100mg", f.Dosage)
	assert.Equal(t, models.FrequencyTwiceDaily, f.Frequency)
	assert.Equal(t, []string{"08:00", "20:00"}, f.Times)
	assert.NotEmpty(t, f.StartDate)
	assert.Empty(t, f.EndDate)
}

func TestParseFormFull(t *testing.T) {
	f, err := parseForm("Amoxil; 500mg; three-times; 08:00,14:00,20:00; 2026-09-01; 2026-09-10; with food", "abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", f.EditingID)
	assert.Equal(t, "2026-09-01", f.StartDate)
	assert.Equal(t, "2026-09-10", f.EndDate)
	assert.Equal(t, "with food", f.Notes)
}

func TestParseFormTooFewFields(t *testing.T) {
	_, err := parseForm("Aspirin; 100mg", "")
	require.Error(t, err)
}

func TestParseFrequencyAliases(t *testing.T) {
	for alias, want := range map[string]models.Frequency{
		"daily":   models.FrequencyDaily,
		"BID":     models.FrequencyTwiceDaily,
		"tid":     models.FrequencyThreeTimes,
		"weekly":  models.FrequencyWeekly,
	} {
		got, err := parseFrequency(alias)
		require.NoError(t, err, alias)
		assert.Equal(t, want, got, alias)
	}

	_, err := parseFrequency("hourly")
	require.Error(t, err)
}

func TestAddAndListCommands(t *testing.T) {
	b, tg := newTestBot(t, nil)
	ctx := context.Background()

	b.handleMessage(ctx, message(1, "/add Metformin; 500mg; twice-daily; 08:00,20:00"))
	assert.Contains(t, tg.lastText(t), "Metformin")
	assert.Contains(t, tg.lastText(t), "created")

	b.handleMessage(ctx, message(1, "/list"))
	text := tg.lastText(t)
	assert.Contains(t, text, "Active:")
	assert.Contains(t, text, "Metformin")
	assert.Contains(t, text, "08:00, 20:00")
}

func TestListEmpty(t *testing.T) {
	b, tg := newTestBot(t, nil)
	b.handleMessage(context.Background(), message(1, "/list"))
	assert.Contains(t, tg.lastText(t), "No reminders yet")
}

func TestPauseResumeByPrefix(t *testing.T) {
	b, tg := newTestBot(t, nil)
	ctx := context.Background()

	b.handleMessage(ctx, message(1, "/add Lipitor; 20mg; daily; 21:00"))
	reminders, err := b.svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, reminders, 1)
	prefix := reminders[0].ID[:8]

	b.handleMessage(ctx, message(1, "/pause "+prefix))
	assert.Contains(t, tg.lastText(t), "paused")

	got, err := b.svc.Get(ctx, reminders[0].ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	b.handleMessage(ctx, message(1, "/resume "+prefix))
	assert.Contains(t, tg.lastText(t), "resumed")
}

func TestDeleteUnknownID(t *testing.T) {
	b, tg := newTestBot(t, nil)
	b.handleMessage(context.Background(), message(1, "/del deadbeef"))
	assert.Contains(t, tg.lastText(t), "not found")
}

func TestAllowedChatsFilter(t *testing.T) {
	b, tg := newTestBot(t, []int64{42})

	b.handleMessage(context.Background(), message(99, "/list"))
	assert.Empty(t, tg.sent)

	b.handleMessage(context.Background(), message(42, "/help"))
	assert.Contains(t, tg.lastText(t), "/add")
}

func TestDrugCommand(t *testing.T) {
	b, tg := newTestBot(t, nil)
	b.handleMessage(context.Background(), message(1, "/drug metformin"))
	text := tg.lastText(t)
	assert.Contains(t, text, "Metformin")
	assert.Contains(t, text, "Diabetes")
}

func TestScanCommand(t *testing.T) {
	b, tg := newTestBot(t, nil)
	b.handleMessage(context.Background(), message(1, "/scan https://example.com/drug/aspirin"))
	assert.Contains(t, tg.lastText(t), "Aspirin")
}

func TestSplitCommandStripsBotName(t *testing.T) {
	cmd, args := splitCommand("/list@dosewatch_bot")
	assert.Equal(t, "/list", cmd)
	assert.Empty(t, args)

	cmd, args = splitCommand("/add Aspirin; 100mg; daily; 08:00")
	assert.Equal(t, "/add", cmd)
	assert.True(t, strings.HasPrefix(args, "Aspirin"))
}
