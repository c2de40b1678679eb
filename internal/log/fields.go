package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldError      = "error"
	FieldOperation  = "operation"
	FieldSenderID   = "sender_id"
	FieldStep       = "step"
	FieldAction     = "action"
	FieldPeriod     = "period"
	FieldPayment    = "payment"
	FieldCategory   = "category"
	FieldAmount     = "amount"
	FieldUpdateID   = "update_id"
)

// Components defines standard component names
const (
	ComponentApp          = "app"
	ComponentHTTP         = "http"
	ComponentConversation = "conversation"
	ComponentTelegram     = "telegram"
	ComponentReport       = "report"
	ComponentStorage      = "storage"
	ComponentAMQP         = "amqp"
	ComponentWorker       = "worker"
	ComponentSheets       = "sheets"
	ComponentCache        = "cache"
	ComponentTrace        = "trace"
	ComponentBackend      = "backend"
)

// Operations defines standard operation names
const (
	OpAppend    = "append"
	OpFetch     = "fetch"
	OpAggregate = "aggregate"
	OpSync      = "sync"
	OpValidate  = "validate"
	OpSend      = "send"
	OpShutdown  = "shutdown"
	OpStartup   = "startup"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

func NewFields() LogFields {
	return make(LogFields)
}

func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

func (f LogFields) WithRequestID(requestID string) LogFields {
	f[FieldRequestID] = requestID
	return f
}

// WithError adds the error text; nil errors are ignored.
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithConversation adds the sender and the step the event arrived in.
func (f LogFields) WithConversation(senderID, step string) LogFields {
	f[FieldSenderID] = senderID
	f[FieldStep] = step
	return f
}

// WithRecord adds the fields of a saved expense.
func (f LogFields) WithRecord(payment, category string, amount int64) LogFields {
	f[FieldPayment] = payment
	f[FieldCategory] = category
	f[FieldAmount] = amount
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
