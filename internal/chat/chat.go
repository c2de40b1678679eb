// Package chat defines the transport-neutral messages exchanged between a
// messaging platform and the conversation engine.
package chat

// EventKind tells free text from a tapped choice.
type EventKind int

const (
	EventText EventKind = iota + 1
	EventChoice
)

func (k EventKind) String() string {
	switch k {
	case EventText:
		return "text"
	case EventChoice:
		return "choice"
	default:
		return "unknown"
	}
}

type (
	// Event is one inbound user interaction. For choices Payload carries the
	// encoded Action; for text it is the raw message.
	Event struct {
		Kind        EventKind
		SenderID    string
		ReplyTarget string
		Payload     string
	}

	// Choice is one tappable option. Value is an encoded Action.
	Choice struct {
		Label string
		Value string
	}

	// Message is what the bot says next.
	Message struct {
		Text    string
		Choices []Choice
	}

	// Reply addresses a Message to the conversation it answers.
	Reply struct {
		ReplyTarget string
		Message     Message
	}
)

// Valid reports whether the event can be routed to a conversation.
func (e Event) Valid() bool {
	return e.SenderID != "" && e.ReplyTarget != "" &&
		(e.Kind == EventText || e.Kind == EventChoice)
}

// Action decodes the payload of a choice event. Text events yield
// ActionUnknown.
func (e Event) Action() Action {
	if e.Kind != EventChoice {
		return Action{}
	}
	return DecodeAction(e.Payload)
}

// NewChoice builds a choice bound to an action.
func NewChoice(label string, a Action) Choice {
	return Choice{Label: label, Value: a.Encode()}
}
