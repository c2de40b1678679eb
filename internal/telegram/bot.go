package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/sync/semaphore"

	"chitieu/internal/chat"
)

// API is the subset of *tgbotapi.BotAPI the bot uses.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	MakeRequest(endpoint string, params tgbotapi.Params) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

var _ API = (*tgbotapi.BotAPI)(nil)

// Handler turns one chat event into a reply.
type Handler interface {
	Handle(ctx context.Context, ev chat.Event) (chat.Reply, bool)
}

// Config tunes update processing.
type Config struct {
	// MaxConcurrent bounds updates handled at once.
	MaxConcurrent int
	// PollTimeout is the long polling timeout sent to Telegram.
	PollTimeout time.Duration
	// Fallback is sent when handling an update panics.
	Fallback chat.Message
}

func DefaultConfig() Config {
	return Config{
		MaxConcurrent: 16,
		PollTimeout:   60 * time.Second,
	}
}

// Bot receives updates, runs them through the handler and sends replies.
type Bot struct {
	api      API
	handler  Handler
	sem      *semaphore.Weighted
	capacity int64
	cfg      Config
	wg       sync.WaitGroup
}

func NewBot(api API, handler Handler, cfg Config) *Bot {
	def := DefaultConfig()
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = def.MaxConcurrent
	}
	if cfg.PollTimeout <= 0 {
		cfg.PollTimeout = def.PollTimeout
	}
	return &Bot{
		api:      api,
		handler:  handler,
		sem:      semaphore.NewWeighted(int64(cfg.MaxConcurrent)),
		capacity: int64(cfg.MaxConcurrent),
		cfg:      cfg,
	}
}

// Connect authenticates with the Bot API.
func Connect(token string) (*tgbotapi.BotAPI, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("connect to telegram: %w", err)
	}
	slog.Info("Telegram bot authorized", "component", "telegram", "username", api.Self.UserName)
	return api, nil
}

// HandleUpdate processes one update to completion. A panic while handling
// is recovered and answered with the fallback message so other updates are
// unaffected.
func (b *Bot) HandleUpdate(ctx context.Context, u tgbotapi.Update) {
	in, ok := DecodeUpdate(u)
	if in.CallbackID != "" {
		b.answerCallback(ctx, in.CallbackID)
	}
	if !ok {
		updatesTotal.WithLabelValues("ignored").Inc()
		return
	}
	updatesTotal.WithLabelValues(in.Event.Kind.String()).Inc()

	reply, ok := b.handle(ctx, u.UpdateID, in.Event)
	if !ok {
		return
	}
	b.send(ctx, reply)
}

func (b *Bot) handle(ctx context.Context, updateID int, ev chat.Event) (reply chat.Reply, ok bool) {
	defer func() {
		if p := recover(); p != nil {
			handlerPanics.Inc()
			slog.ErrorContext(ctx, "Panic while handling update",
				"component", "telegram",
				"update_id", updateID,
				"sender_id", ev.SenderID,
				"panic", fmt.Sprint(p),
				"stack", string(debug.Stack()))
			reply, ok = chat.Reply{ReplyTarget: ev.ReplyTarget, Message: b.cfg.Fallback}, b.cfg.Fallback.Text != ""
		}
	}()
	return b.handler.Handle(ctx, ev)
}

func (b *Bot) send(ctx context.Context, r chat.Reply) {
	msg, err := EncodeReply(r)
	if err == nil {
		_, err = b.api.Send(msg)
	}
	if err != nil {
		sendErrors.Inc()
		slog.ErrorContext(ctx, "Failed to send reply",
			"component", "telegram",
			"chat_id", r.ReplyTarget,
			"error", err)
	}
}

func (b *Bot) answerCallback(ctx context.Context, id string) {
	if _, err := b.api.Request(tgbotapi.NewCallback(id, "")); err != nil {
		slog.WarnContext(ctx, "Failed to answer callback query",
			"component", "telegram",
			"error", err)
	}
}

// Dispatch handles u in the background once a worker slot is free. It
// returns an error only when ctx ends before a slot frees up.
func (b *Bot) Dispatch(ctx context.Context, u tgbotapi.Update) error {
	if err := b.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		defer b.sem.Release(1)
		// Finish in-flight work even when polling is shutting down
		b.HandleUpdate(context.WithoutCancel(ctx), u)
	}()
	return nil
}

// Wait blocks until every dispatched update is handled.
func (b *Bot) Wait() {
	b.wg.Wait()
}

// Poll receives updates with long polling until ctx is done, then waits
// for in-flight updates.
func (b *Bot) Poll(ctx context.Context) error {
	// getUpdates is refused while a webhook is registered
	if _, err := b.api.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		slog.WarnContext(ctx, "Failed to delete webhook before polling",
			"component", "telegram",
			"error", err)
	}

	uc := tgbotapi.NewUpdate(0)
	uc.Timeout = int(b.cfg.PollTimeout.Seconds())
	updates := b.api.GetUpdatesChan(uc)

	slog.InfoContext(ctx, "Polling for updates",
		"component", "telegram",
		"max_concurrent", b.capacity)

	defer b.Wait()
	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return nil
		case u, ok := <-updates:
			if !ok {
				return errors.New("telegram updates channel closed")
			}
			if err := b.Dispatch(ctx, u); err != nil {
				b.api.StopReceivingUpdates()
				return nil
			}
		}
	}
}

// RegisterWebhook points Telegram at url. Telegram echoes secret in the
// X-Telegram-Bot-Api-Secret-Token header of every delivery.
func (b *Bot) RegisterWebhook(url, secret string) error {
	params := tgbotapi.Params{"url": url}
	if secret != "" {
		params["secret_token"] = secret
	}
	if _, err := b.api.MakeRequest("setWebhook", params); err != nil {
		return fmt.Errorf("set webhook: %w", err)
	}
	slog.Info("Telegram webhook registered", "component", "telegram", "url", url)
	return nil
}
