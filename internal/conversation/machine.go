package conversation

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"chitieu/internal/chat"
	"chitieu/internal/core"
	"chitieu/internal/report"
	"chitieu/internal/sheets"
)

// Machine applies inbound events to per-sender conversations.
type Machine struct {
	store   *Store
	records sheets.RecordStore
	loc     *time.Location
	now     func() time.Time
}

// Option customises a Machine.
type Option func(*Machine)

// WithLocation sets the zone used for calendar windows. Defaults to UTC.
func WithLocation(loc *time.Location) Option {
	return func(m *Machine) {
		if loc != nil {
			m.loc = loc
		}
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Machine) { m.now = now }
}

func NewMachine(store *Store, records sheets.RecordStore, opts ...Option) *Machine {
	m := &Machine{
		store:   store,
		records: records,
		loc:     time.UTC,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

type effect int

const (
	keep effect = iota
	save
	discard
)

// turn is the input of one transition.
type turn struct {
	senderID string
	state    State
	action   chat.Action
	text     string
}

// outcome tells Handle what to reply and what to do with the state.
type outcome struct {
	msg    chat.Message
	effect effect
	next   State
}

func reply(msg chat.Message) outcome {
	return outcome{msg: msg, effect: keep}
}

func moveTo(next State, msg chat.Message) outcome {
	return outcome{msg: msg, effect: save, next: next}
}

func reset(msg chat.Message) outcome {
	return outcome{msg: msg, effect: discard}
}

// Handle processes one event and returns the reply for it. Events that
// cannot be routed back to a conversation report false.
func (m *Machine) Handle(ctx context.Context, ev chat.Event) (chat.Reply, bool) {
	if !ev.Valid() {
		slog.DebugContext(ctx, "Ignoring event without sender or reply target",
			"component", "conversation",
			"kind", ev.Kind.String())
		return chat.Reply{}, false
	}

	unlock := m.store.Lock(ev.SenderID)
	defer unlock()

	state, ok := m.store.Get(ev.SenderID)
	if !ok {
		state = idle()
	}

	t := turn{
		senderID: ev.SenderID,
		state:    state,
		action:   ev.Action(),
	}
	if ev.Kind == chat.EventText {
		t.text = strings.TrimSpace(ev.Payload)
	}

	out := lookup(state.Step, ev.Kind, t.action.Kind)(m, ctx, t)

	to := state.Step
	switch out.effect {
	case save:
		m.store.Set(ev.SenderID, out.next)
		to = out.next.Step
	case discard:
		m.store.Delete(ev.SenderID)
		to = StepMenu
	}
	transitionsTotal.WithLabelValues(state.Step.String(), to.String()).Inc()

	slog.DebugContext(ctx, "Conversation event handled",
		"component", "conversation",
		"sender_id", ev.SenderID,
		"action", t.action.String(),
		"from", state.Step.String(),
		"to", to.String())

	return chat.Reply{ReplyTarget: ev.ReplyTarget, Message: out.msg}, true
}

func (m *Machine) localNow() time.Time {
	return m.now().In(m.loc)
}

func (m *Machine) saveDraft(ctx context.Context, t turn) outcome {
	rec := t.state.Record()
	rec.Timestamp = m.now()
	rec.SenderID = t.senderID

	if err := m.records.Append(ctx, rec); err != nil {
		if errors.Is(err, core.ErrInvalidRecord) {
			// Retrying cannot fix an incomplete draft
			slog.ErrorContext(ctx, "Discarding invalid draft",
				"component", "conversation",
				"sender_id", t.senderID,
				"error", err)
			return reset(withMainMenu(textSaveFailed))
		}
		storeErrors.WithLabelValues("append").Inc()
		slog.ErrorContext(ctx, "Failed to save record",
			"component", "conversation",
			"sender_id", t.senderID,
			"error", err)
		return reply(saveFailed(t.state))
	}

	recordsSaved.Inc()
	slog.InfoContext(ctx, "Record saved",
		"component", "conversation",
		"sender_id", t.senderID,
		"payment", rec.Payment.String(),
		"category", rec.Category,
		"amount", rec.Amount)
	return reset(withMainMenu(textSaved))
}

func (m *Machine) summarize(ctx context.Context, senderID string, w report.Window) (chat.Message, error) {
	summary, err := report.Summarize(ctx, m.records, senderID, w)
	if err != nil {
		storeErrors.WithLabelValues("fetch").Inc()
		slog.ErrorContext(ctx, "Failed to compute summary",
			"component", "conversation",
			"sender_id", senderID,
			"period", w.Period.String(),
			"error", err)
		return chat.Message{}, err
	}
	summariesTotal.WithLabelValues(w.Period.String()).Inc()
	return SummaryMessage(w, summary), nil
}

func rejected(step Step) {
	validationErrors.WithLabelValues(step.String()).Inc()
}
