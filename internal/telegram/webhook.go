package telegram

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"log/slog"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// SecretHeader carries the webhook secret on Telegram deliveries.
const SecretHeader = "X-Telegram-Bot-Api-Secret-Token"

// maxUpdateBytes is well above any text or callback update.
const maxUpdateBytes = 1 << 20

// WebhookHandler accepts updates pushed by Telegram. Deliveries without the
// expected secret are rejected. Accepted updates are acknowledged with 200
// even if handling fails, since Telegram would otherwise redeliver them.
func (b *Bot) WebhookHandler(secret string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if secret != "" && subtle.ConstantTimeCompare([]byte(r.Header.Get(SecretHeader)), []byte(secret)) != 1 {
			slog.WarnContext(r.Context(), "Webhook delivery with bad secret",
				"component", "telegram",
				"remote_addr", r.RemoteAddr)
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		var u tgbotapi.Update
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxUpdateBytes)).Decode(&u); err != nil {
			slog.WarnContext(r.Context(), "Malformed webhook update",
				"component", "telegram",
				"error", err)
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}

		if err := b.sem.Acquire(r.Context(), 1); err != nil {
			http.Error(w, "shutting down", http.StatusServiceUnavailable)
			return
		}
		defer b.sem.Release(1)

		// A dropped connection must not abort a half-done store write
		b.HandleUpdate(context.WithoutCancel(r.Context()), u)
		w.WriteHeader(http.StatusOK)
	})
}
