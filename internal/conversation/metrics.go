package conversation

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	transitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chitieu_conversation_transitions_total",
		Help: "Handled conversation events by source and target step.",
	}, []string{"from", "to"})

	recordsSaved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chitieu_records_saved_total",
		Help: "Expense records appended to the record store.",
	})

	validationErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chitieu_validation_errors_total",
		Help: "User inputs rejected with a re-prompt, by step.",
	}, []string{"step"})

	storeErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chitieu_store_errors_total",
		Help: "Record store failures seen by the conversation engine.",
	}, []string{"operation"})

	summariesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chitieu_summaries_total",
		Help: "Summaries answered, by period.",
	}, []string{"period"})

	conversationsEvicted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chitieu_conversations_evicted_total",
		Help: "Conversations dropped without save or cancel.",
	}, []string{"reason"})
)
