package telegram

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	updatesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chitieu_telegram_updates_total",
		Help: "Telegram updates received, by kind.",
	}, []string{"kind"})

	sendErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chitieu_telegram_send_errors_total",
		Help: "Replies that could not be delivered.",
	})

	handlerPanics = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chitieu_telegram_handler_panics_total",
		Help: "Updates whose handling panicked.",
	})
)
