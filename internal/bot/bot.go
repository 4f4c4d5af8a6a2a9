// Package bot is the Telegram command surface for managing reminders.
package bot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"dosewatch/internal/drugs"
	"dosewatch/internal/export"
	"dosewatch/internal/history"
	"dosewatch/internal/models"
	"dosewatch/internal/service"
)

type telegramClient interface {
	Send(tgbotapi.Chattable) (tgbotapi.Message, error)
	GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	SelfUser() tgbotapi.User
}

type realTelegramClient struct {
	api *tgbotapi.BotAPI
}

func (c *realTelegramClient) Send(msg tgbotapi.Chattable) (tgbotapi.Message, error) {
	return c.api.Send(msg)
}

func (c *realTelegramClient) GetUpdatesChan(cfg tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return c.api.GetUpdatesChan(cfg)
}

func (c *realTelegramClient) SelfUser() tgbotapi.User {
	return c.api.Self
}

// Bot handles reminder commands over Telegram long polling.
type Bot struct {
	tg      telegramClient
	svc     *service.Service
	hist    *history.DB // nil when the journal is disabled
	catalog *drugs.Catalog
	allowed map[int64]struct{}
	logger  *zerolog.Logger
}

// New creates the bot with a real Telegram session.
func New(token string, svc *service.Service, hist *history.DB, catalog *drugs.Catalog, allowedChats []int64, debug bool, logger *zerolog.Logger) (*Bot, *tgbotapi.BotAPI, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, nil, fmt.Errorf("create telegram bot: %w", err)
	}
	api.Debug = debug
	b := newBot(&realTelegramClient{api: api}, svc, hist, catalog, allowedChats, logger)
	return b, api, nil
}

// NewWithTelegramClient allows injecting a mocked Telegram client for tests.
func NewWithTelegramClient(tg telegramClient, svc *service.Service, hist *history.DB, catalog *drugs.Catalog, allowedChats []int64, logger *zerolog.Logger) *Bot {
	return newBot(tg, svc, hist, catalog, allowedChats, logger)
}

func newBot(tg telegramClient, svc *service.Service, hist *history.DB, catalog *drugs.Catalog, allowedChats []int64, logger *zerolog.Logger) *Bot {
	allowed := make(map[int64]struct{}, len(allowedChats))
	for _, id := range allowedChats {
		allowed[id] = struct{}{}
	}
	return &Bot{
		tg:      tg,
		svc:     svc,
		hist:    hist,
		catalog: catalog,
		allowed: allowed,
		logger:  logger,
	}
}

// Start begins polling updates and handles commands until ctx is done.
func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.tg.GetUpdatesChan(u)
	b.logger.Info().Str("username", b.tg.SelfUser().UserName).Msg("bot authorized")

	for {
		select {
		case <-ctx.Done():
			return
		case update := <-updates:
			if update.Message == nil {
				continue
			}
			b.handleMessage(ctx, update.Message)
		}
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if !b.isAllowed(msg.Chat.ID) {
		b.logger.Debug().Int64("chat_id", msg.Chat.ID).Msg("ignoring message from unlisted chat")
		return
	}

	text := strings.TrimSpace(msg.Text)
	command, args := splitCommand(text)

	b.logger.Debug().Int64("chat_id", msg.Chat.ID).Str("command", command).Msg("handling command")

	switch command {
	case "/start", "/help":
		b.reply(msg.Chat.ID, helpText)
	case "/list":
		b.handleList(ctx, msg.Chat.ID)
	case "/add":
		b.handleAdd(ctx, msg.Chat.ID, args)
	case "/edit":
		b.handleEdit(ctx, msg.Chat.ID, args)
	case "/del":
		b.handleDelete(ctx, msg.Chat.ID, args)
	case "/pause":
		b.handleToggle(ctx, msg.Chat.ID, args, false)
	case "/resume":
		b.handleToggle(ctx, msg.Chat.ID, args, true)
	case "/history":
		b.handleHistory(ctx, msg.Chat.ID)
	case "/export":
		b.handleExport(ctx, msg.Chat.ID)
	case "/drug":
		b.handleDrug(msg.Chat.ID, args)
	case "/scan":
		b.handleScan(msg.Chat.ID, args)
	default:
		if strings.HasPrefix(text, "/") {
			b.reply(msg.Chat.ID, "Unknown command. Use /help for the command list.")
		}
	}
}

const helpText = `Commands:
/list - reminders grouped by active and paused
/add name; dosage; frequency; times; [start]; [end]; [notes]
/edit id; name; dosage; frequency; times; [start]; [end]; [notes]
/del id - delete a reminder
/pause id - pause notifications for a reminder
/resume id - resume notifications
/history - recent notification deliveries
/export - reminders and history as an Excel file
/drug query - search the medicine catalog
/scan payload - resolve a scanned QR payload

Frequencies: daily, twice-daily, three-times, weekly.
Times are comma-separated HH:MM, e.g. 08:00,20:00.
Ids may be shortened to a unique prefix.`

func (b *Bot) handleList(ctx context.Context, chatID int64) {
	g, err := b.svc.Grouped(ctx)
	if err != nil {
		b.replyErr(chatID, err)
		return
	}
	if len(g.Active) == 0 && len(g.Paused) == 0 {
		b.reply(chatID, "No reminders yet. Use /add to create one.")
		return
	}

	var sb strings.Builder
	if len(g.Active) > 0 {
		sb.WriteString("Active:\n")
		for _, v := range g.Active {
			sb.WriteString(formatReminder(v))
		}
	}
	if len(g.Paused) > 0 {
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString("Paused:\n")
		for _, v := range g.Paused {
			sb.WriteString(formatReminder(v))
		}
	}
	b.reply(chatID, sb.String())
}

func formatReminder(v service.View) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "- [%s] %s", shortID(v.ID), v.MedicineName)
	if v.Dosage != "" {
		fmt.Fprintf(&sb, " %s", v.Dosage)
	}
	fmt.Fprintf(&sb, " | %s at %s", v.Frequency.DisplayText(), strings.Join(v.Times, ", "))
	if v.EndDate != "" {
		fmt.Fprintf(&sb, " | %s to %s", v.StartDate, v.EndDate)
	} else {
		fmt.Fprintf(&sb, " | from %s (ongoing)", v.StartDate)
	}
	if v.Overdue {
		sb.WriteString(" | OVERDUE")
	}
	if v.Notes != "" {
		fmt.Fprintf(&sb, " | %s", v.Notes)
	}
	sb.WriteString("\n")
	return sb.String()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func (b *Bot) handleAdd(ctx context.Context, chatID int64, args string) {
	f, err := parseForm(args, "")
	if err != nil {
		b.replyErr(chatID, err)
		return
	}
	r, err := b.svc.Submit(ctx, f)
	if err != nil {
		b.replyErr(chatID, err)
		return
	}
	b.reply(chatID, fmt.Sprintf("Reminder [%s] %s created for %s.",
		shortID(r.ID), r.MedicineName, strings.Join(r.Times, ", ")))
}

func (b *Bot) handleEdit(ctx context.Context, chatID int64, args string) {
	idPart, rest, ok := strings.Cut(args, ";")
	if !ok {
		b.reply(chatID, "Usage: /edit id; name; dosage; frequency; times; [start]; [end]; [notes]")
		return
	}

	r, err := b.resolveID(ctx, strings.TrimSpace(idPart))
	if err != nil {
		b.replyErr(chatID, err)
		return
	}

	f, err := parseForm(rest, r.ID)
	if err != nil {
		b.replyErr(chatID, err)
		return
	}
	updated, err := b.svc.Submit(ctx, f)
	if err != nil {
		b.replyErr(chatID, err)
		return
	}
	b.reply(chatID, fmt.Sprintf("Reminder [%s] %s updated.", shortID(updated.ID), updated.MedicineName))
}

func (b *Bot) handleDelete(ctx context.Context, chatID int64, args string) {
	r, err := b.resolveID(ctx, args)
	if err != nil {
		b.replyErr(chatID, err)
		return
	}
	if err := b.svc.Delete(ctx, r.ID); err != nil {
		b.replyErr(chatID, err)
		return
	}
	b.reply(chatID, fmt.Sprintf("Reminder [%s] %s deleted.", shortID(r.ID), r.MedicineName))
}

func (b *Bot) handleToggle(ctx context.Context, chatID int64, args string, wantActive bool) {
	r, err := b.resolveID(ctx, args)
	if err != nil {
		b.replyErr(chatID, err)
		return
	}
	if r.IsActive == wantActive {
		state := "paused"
		if wantActive {
			state = "active"
		}
		b.reply(chatID, fmt.Sprintf("Reminder [%s] is already %s.", shortID(r.ID), state))
		return
	}

	toggled, err := b.svc.Toggle(ctx, r.ID)
	if err != nil {
		b.replyErr(chatID, err)
		return
	}
	if toggled.IsActive {
		b.reply(chatID, fmt.Sprintf("Reminder [%s] %s resumed.", shortID(r.ID), r.MedicineName))
	} else {
		b.reply(chatID, fmt.Sprintf("Reminder [%s] %s paused.", shortID(r.ID), r.MedicineName))
	}
}

func (b *Bot) handleHistory(ctx context.Context, chatID int64) {
	if b.hist == nil {
		b.reply(chatID, "Delivery history is disabled.")
		return
	}
	entries, err := b.hist.ListRecent(ctx, 15)
	if err != nil {
		b.replyErr(chatID, err)
		return
	}
	if len(entries) == 0 {
		b.reply(chatID, "No deliveries recorded yet.")
		return
	}

	var sb strings.Builder
	sb.WriteString("Recent deliveries:\n")
	for _, e := range entries {
		fmt.Fprintf(&sb, "- %s %s at %s via %s: %s",
			e.CreatedAt.Format("2006-01-02 15:04"), e.Medicine, e.Slot, e.Channel, e.Status)
		if e.Error != "" {
			fmt.Fprintf(&sb, " (%s)", e.Error)
		}
		sb.WriteString("\n")
	}
	b.reply(chatID, sb.String())
}

func (b *Bot) handleExport(ctx context.Context, chatID int64) {
	reminders, err := b.svc.List(ctx)
	if err != nil {
		b.replyErr(chatID, err)
		return
	}

	var deliveries []history.Entry
	if b.hist != nil {
		deliveries, err = b.hist.ListRecent(ctx, 500)
		if err != nil {
			b.replyErr(chatID, err)
			return
		}
	}

	var buf bytes.Buffer
	if err := export.WriteWorkbook(&buf, reminders, deliveries); err != nil {
		b.replyErr(chatID, err)
		return
	}

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{
		Name:  "dosewatch.xlsx",
		Bytes: buf.Bytes(),
	})
	if _, err := b.tg.Send(doc); err != nil {
		b.logger.Error().Err(err).Msg("failed to send export document")
	}
}

func (b *Bot) handleDrug(chatID int64, args string) {
	query := strings.TrimSpace(args)
	if query == "" {
		b.reply(chatID, "Usage: /drug query")
		return
	}

	results := b.catalog.Search(query, "")
	if len(results) == 0 {
		b.reply(chatID, fmt.Sprintf("No catalog entry matches %q.", query))
		return
	}

	var sb strings.Builder
	for _, d := range results {
		sb.WriteString(formatDrug(d))
	}
	b.reply(chatID, sb.String())
}

func (b *Bot) handleScan(chatID int64, args string) {
	payload := strings.TrimSpace(args)
	if payload == "" {
		b.reply(chatID, "Usage: /scan payload")
		return
	}

	d, ok := b.catalog.ResolveScan(payload)
	if !ok {
		b.reply(chatID, "Scanned code does not match any catalog entry.")
		return
	}
	b.reply(chatID, formatDrug(d))
}

func formatDrug(d drugs.Drug) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s (%s)\nCategory: %s | %s %s\n", d.Name, d.GenericName, d.Category, d.Strength, d.Form)
	if d.Description != "" {
		fmt.Fprintf(&sb, "%s\n", d.Description)
	}
	fmt.Fprintf(&sb, "Dosage: %s\n", d.Dosage)
	if len(d.SideEffects) > 0 {
		fmt.Fprintf(&sb, "Side effects: %s\n", strings.Join(d.SideEffects, ", "))
	}
	if len(d.Precautions) > 0 {
		fmt.Fprintf(&sb, "Precautions: %s\n", strings.Join(d.Precautions, ", "))
	}
	return sb.String()
}

// resolveID finds a reminder by full id or a unique prefix.
func (b *Bot) resolveID(ctx context.Context, arg string) (models.Reminder, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return models.Reminder{}, errors.New("reminder id is required")
	}

	reminders, err := b.svc.List(ctx)
	if err != nil {
		return models.Reminder{}, err
	}

	var matches []models.Reminder
	for _, r := range reminders {
		if r.ID == arg {
			return r, nil
		}
		if strings.HasPrefix(r.ID, arg) {
			matches = append(matches, r)
		}
	}

	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return models.Reminder{}, service.ErrNotFound
	default:
		return models.Reminder{}, fmt.Errorf("id prefix %q matches %d reminders", arg, len(matches))
	}
}

func (b *Bot) isAllowed(chatID int64) bool {
	if len(b.allowed) == 0 {
		return true
	}
	_, ok := b.allowed[chatID]
	return ok
}

func (b *Bot) reply(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.tg.Send(msg); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("failed to send reply")
	}
}

func (b *Bot) replyErr(chatID int64, err error) {
	b.reply(chatID, "Error: "+err.Error())
}

func splitCommand(text string) (string, string) {
	command, args, _ := strings.Cut(text, " ")
	// Strip the @botname suffix Telegram appends in groups.
	if i := strings.Index(command, "@"); i > 0 {
		command = command[:i]
	}
	return command, strings.TrimSpace(args)
}
