package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"chitieu/internal/middleware/ratelimit"
	"chitieu/internal/middleware/trace"
)

func TestHealthAndReady(t *testing.T) {
	srv := NewServer(":0", Options{})
	defer srv.Shutdown(context.Background())

	for path, want := range map[string]string{"/healthz": "ok", "/readyz": "ready"} {
		rr := httptest.NewRecorder()
		srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
		if rr.Code != http.StatusOK || rr.Body.String() != want {
			t.Errorf("%s: status=%d body=%q", path, rr.Code, rr.Body.String())
		}
		if rr.Header().Get(trace.RequestIDHeader) == "" {
			t.Errorf("%s: missing request id header", path)
		}
	}
}

func TestReadyFailure(t *testing.T) {
	srv := NewServer(":0", Options{Ready: func(context.Context) error { return errors.New("db down") }})
	defer srv.Shutdown(context.Background())

	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rr.Code)
	}
}

func TestMetrics(t *testing.T) {
	srv := NewServer(":0", Options{})
	defer srv.Shutdown(context.Background())

	// Populate the request counter first
	srv.Handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))

	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "chitieu_http_requests_total") {
		t.Error("metrics output missing request counter")
	}
}

func TestWebhookRoute(t *testing.T) {
	var calls int
	webhook := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusOK)
	})

	srv := NewServer(":0", Options{
		Webhook:   webhook,
		RateLimit: ratelimit.Config{RequestsPerWindow: 2, Window: time.Minute, CleanupInterval: time.Minute},
	})
	defer srv.Shutdown(context.Background())

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rr := httptest.NewRecorder()
		srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, WebhookPath, strings.NewReader("{}")))
		codes = append(codes, rr.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Errorf("codes = %v", codes)
	}
	if calls != 2 {
		t.Errorf("webhook called %d times, want 2", calls)
	}

	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, WebhookPath, nil))
	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET webhook status = %d, want 405", rr.Code)
	}
}

func TestWebhookRateLimitBehindTrustedProxy(t *testing.T) {
	webhook := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	limit := ratelimit.Config{RequestsPerWindow: 1, Window: time.Minute, CleanupInterval: time.Minute}

	tests := []struct {
		name    string
		trusted []string
		want    []int
	}{
		// httptest requests come from 192.0.2.1, which is not a private network
		{"untrusted peer shares one bucket", nil, []int{http.StatusOK, http.StatusTooManyRequests}},
		{"trusted peer keyed by forwarded client", []string{"192.0.2.0/24"}, []int{http.StatusOK, http.StatusOK}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := NewServer(":0", Options{Webhook: webhook, RateLimit: limit, TrustedProxies: tt.trusted})
			defer srv.Shutdown(context.Background())

			for i, client := range []string{"198.51.100.1", "198.51.100.2"} {
				req := httptest.NewRequest(http.MethodPost, WebhookPath, strings.NewReader("{}"))
				req.Header.Set("X-Forwarded-For", client)
				rr := httptest.NewRecorder()
				srv.Handler.ServeHTTP(rr, req)
				if rr.Code != tt.want[i] {
					t.Errorf("request %d from %s: status = %d, want %d", i, client, rr.Code, tt.want[i])
				}
			}
		})
	}
}

func TestNoWebhookInPollingMode(t *testing.T) {
	srv := NewServer(":0", Options{})
	defer srv.Shutdown(context.Background())

	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, WebhookPath, nil))
	if rr.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rr.Code)
	}
}

func TestShutdownTwice(t *testing.T) {
	srv := NewServer(":0", Options{})
	if err := srv.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
	if err := srv.Shutdown(context.Background()); err != nil {
		t.Errorf("second Shutdown() error = %v", err)
	}
}
