package telegram

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"chitieu/internal/chat"
)

type fakeAPI struct {
	mu        sync.Mutex
	sent      []tgbotapi.MessageConfig
	requests  []tgbotapi.Chattable
	params    []tgbotapi.Params
	updates   chan tgbotapi.Update
	stopped   bool
	sendError error
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{updates: make(chan tgbotapi.Update, 16)}
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendError != nil {
		return tgbotapi.Message{}, f.sendError
	}
	f.sent = append(f.sent, c.(tgbotapi.MessageConfig))
	return tgbotapi.Message{}, nil
}

func (f *fakeAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeAPI) MakeRequest(endpoint string, params tgbotapi.Params) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := tgbotapi.Params{"endpoint": endpoint}
	for k, v := range params {
		p[k] = v
	}
	f.params = append(f.params, p)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeAPI) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return f.updates
}

func (f *fakeAPI) StopReceivingUpdates() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped = true
}

func (f *fakeAPI) sentMessages() []tgbotapi.MessageConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]tgbotapi.MessageConfig(nil), f.sent...)
}

func (f *fakeAPI) callbacks() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var ids []string
	for _, r := range f.requests {
		if cb, ok := r.(tgbotapi.CallbackConfig); ok {
			ids = append(ids, cb.CallbackQueryID)
		}
	}
	return ids
}

// echoHandler answers every event with its own payload.
type echoHandler struct{}

func (echoHandler) Handle(_ context.Context, ev chat.Event) (chat.Reply, bool) {
	return chat.Reply{
		ReplyTarget: ev.ReplyTarget,
		Message:     chat.Message{Text: "echo: " + ev.Payload},
	}, true
}

type panicHandler struct{}

func (panicHandler) Handle(context.Context, chat.Event) (chat.Reply, bool) {
	panic("boom")
}

func textUpdate(chatID int64, text string) tgbotapi.Update {
	return tgbotapi.Update{
		UpdateID: 1,
		Message:  &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: chatID}, Text: text},
	}
}

func callbackUpdate(chatID int64, data string) tgbotapi.Update {
	return tgbotapi.Update{
		UpdateID: 2,
		CallbackQuery: &tgbotapi.CallbackQuery{
			ID:      "cb-1",
			Data:    data,
			Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: chatID}},
		},
	}
}

func TestDecodeUpdate(t *testing.T) {
	tests := []struct {
		name     string
		update   tgbotapi.Update
		wantOK   bool
		want     chat.Event
		wantCBID string
	}{
		{
			name:   "text",
			update: textUpdate(-100123, "50000"),
			wantOK: true,
			want:   chat.Event{Kind: chat.EventText, SenderID: "-100123", ReplyTarget: "-100123", Payload: "50000"},
		},
		{
			name:     "callback",
			update:   callbackUpdate(42, "SUM_ALL"),
			wantOK:   true,
			want:     chat.Event{Kind: chat.EventChoice, SenderID: "42", ReplyTarget: "42", Payload: "SUM_ALL"},
			wantCBID: "cb-1",
		},
		{
			name:     "callback without message",
			update:   tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{ID: "cb-2", Data: "MENU"}},
			wantCBID: "cb-2",
		},
		{
			name:   "sticker",
			update: tgbotapi.Update{Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: 1}}},
		},
		{
			name:   "edited message",
			update: tgbotapi.Update{EditedMessage: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: 1}, Text: "x"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := DecodeUpdate(tt.update)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if got.CallbackID != tt.wantCBID {
				t.Errorf("CallbackID = %q, want %q", got.CallbackID, tt.wantCBID)
			}
			if ok && got.Event != tt.want {
				t.Errorf("Event = %+v, want %+v", got.Event, tt.want)
			}
		})
	}
}

func TestEncodeReply(t *testing.T) {
	choices := []chat.Choice{
		{Label: "a", Value: "A"}, {Label: "b", Value: "B"}, {Label: "c", Value: "C"},
		{Label: "d", Value: "D"}, {Label: "e", Value: "E"},
	}
	msg, err := EncodeReply(chat.Reply{ReplyTarget: "-42", Message: chat.Message{Text: "hi", Choices: choices}})
	if err != nil {
		t.Fatalf("EncodeReply() error = %v", err)
	}
	if msg.ChatID != -42 || msg.Text != "hi" {
		t.Errorf("msg = %+v", msg)
	}

	kb, ok := msg.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	if !ok {
		t.Fatalf("ReplyMarkup = %T", msg.ReplyMarkup)
	}
	if len(kb.InlineKeyboard) != 3 {
		t.Fatalf("rows = %d, want 3", len(kb.InlineKeyboard))
	}
	last := kb.InlineKeyboard[2]
	if len(last) != 1 || last[0].Text != "e" || last[0].CallbackData == nil || *last[0].CallbackData != "E" {
		t.Errorf("last row = %+v", last)
	}

	plain, err := EncodeReply(chat.Reply{ReplyTarget: "7", Message: chat.Message{Text: "x"}})
	if err != nil || plain.ReplyMarkup != nil {
		t.Errorf("plain reply = %+v, %v", plain, err)
	}

	if _, err := EncodeReply(chat.Reply{ReplyTarget: "not-a-chat"}); err == nil {
		t.Error("expected error for invalid target")
	}
}

func TestBot_HandleUpdate(t *testing.T) {
	api := newFakeAPI()
	bot := NewBot(api, echoHandler{}, Config{})

	bot.HandleUpdate(context.Background(), callbackUpdate(42, "NEW_EXPENSE"))

	sent := api.sentMessages()
	if len(sent) != 1 || sent[0].ChatID != 42 || sent[0].Text != "echo: NEW_EXPENSE" {
		t.Errorf("sent = %+v", sent)
	}
	if ids := api.callbacks(); len(ids) != 1 || ids[0] != "cb-1" {
		t.Errorf("answered callbacks = %v", ids)
	}
}

func TestBot_HandleUpdateRecoversPanic(t *testing.T) {
	api := newFakeAPI()
	bot := NewBot(api, panicHandler{}, Config{Fallback: chat.Message{Text: "menu"}})

	bot.HandleUpdate(context.Background(), textUpdate(5, "hello"))

	sent := api.sentMessages()
	if len(sent) != 1 || sent[0].Text != "menu" || sent[0].ChatID != 5 {
		t.Errorf("sent = %+v", sent)
	}
}

func TestBot_Poll(t *testing.T) {
	api := newFakeAPI()
	bot := NewBot(api, echoHandler{}, Config{MaxConcurrent: 2})

	for i := int64(1); i <= 5; i++ {
		api.updates <- textUpdate(i, "x")
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- bot.Poll(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for len(api.sentMessages()) < 5 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Poll() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Poll did not return after cancel")
	}

	if n := len(api.sentMessages()); n != 5 {
		t.Errorf("sent %d replies, want 5", n)
	}
	api.mu.Lock()
	defer api.mu.Unlock()
	if !api.stopped {
		t.Error("StopReceivingUpdates not called")
	}
	if _, ok := api.requests[0].(tgbotapi.DeleteWebhookConfig); !ok {
		t.Errorf("first request = %T, want DeleteWebhookConfig", api.requests[0])
	}
}

func TestBot_RegisterWebhook(t *testing.T) {
	api := newFakeAPI()
	bot := NewBot(api, echoHandler{}, Config{})

	if err := bot.RegisterWebhook("https://bot.example.com/telegram/webhook", "s3cret"); err != nil {
		t.Fatalf("RegisterWebhook() error = %v", err)
	}
	p := api.params[0]
	if p["endpoint"] != "setWebhook" || p["url"] != "https://bot.example.com/telegram/webhook" || p["secret_token"] != "s3cret" {
		t.Errorf("params = %v", p)
	}
}

func TestWebhookHandler(t *testing.T) {
	body := `{"update_id":9,"message":{"message_id":1,"date":0,"chat":{"id":77,"type":"group"},"text":"hi"}}`

	tests := []struct {
		name     string
		method   string
		secret   string
		body     string
		wantCode int
		wantSent int
	}{
		{"accepted", http.MethodPost, "s3cret", body, http.StatusOK, 1},
		{"wrong secret", http.MethodPost, "nope", body, http.StatusForbidden, 0},
		{"missing secret", http.MethodPost, "", body, http.StatusForbidden, 0},
		{"wrong method", http.MethodGet, "s3cret", "", http.StatusMethodNotAllowed, 0},
		{"malformed", http.MethodPost, "s3cret", "{", http.StatusBadRequest, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newFakeAPI()
			h := NewBot(api, echoHandler{}, Config{}).WebhookHandler("s3cret")

			req := httptest.NewRequest(tt.method, "/telegram/webhook", strings.NewReader(tt.body))
			if tt.secret != "" {
				req.Header.Set(SecretHeader, tt.secret)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			sent := api.sentMessages()
			if len(sent) != tt.wantSent {
				t.Fatalf("sent = %d, want %d", len(sent), tt.wantSent)
			}
			if tt.wantSent == 1 && (sent[0].ChatID != 77 || sent[0].Text != "echo: hi") {
				t.Errorf("sent = %+v", sent[0])
			}
		})
	}
}

// cancellingHandler drops the inbound connection mid-update and records
// whether the handling context noticed.
type cancellingHandler struct {
	cancel context.CancelFunc
	err    error
}

func (h *cancellingHandler) Handle(ctx context.Context, ev chat.Event) (chat.Reply, bool) {
	h.cancel()
	h.err = ctx.Err()
	return chat.Reply{ReplyTarget: ev.ReplyTarget, Message: chat.Message{Text: "done"}}, true
}

func TestWebhookHandler_OutlivesDroppedConnection(t *testing.T) {
	body := `{"update_id":10,"message":{"message_id":1,"date":0,"chat":{"id":5,"type":"private"},"text":"hi"}}`
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	api := newFakeAPI()
	handler := &cancellingHandler{cancel: cancel}
	h := NewBot(api, handler, Config{}).WebhookHandler("s3cret")

	req := httptest.NewRequest(http.MethodPost, "/telegram/webhook", strings.NewReader(body)).WithContext(ctx)
	req.Header.Set(SecretHeader, "s3cret")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if handler.err != nil {
		t.Errorf("handling context err = %v, want nil after the request was cancelled", handler.err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if sent := api.sentMessages(); len(sent) != 1 || sent[0].Text != "done" {
		t.Errorf("sent = %+v", sent)
	}
}
