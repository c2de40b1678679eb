package core

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	PaymentCash   Payment = 1
	PaymentOnline Payment = 2
)

// Display labels stored verbatim in the payment column.
const (
	CashLabel   = "💵 Tiền mặt"
	OnlineLabel = "💳 Online"

	// cashMarker identifies cash rows written with older label variants.
	cashMarker = "Tiền mặt"
)

type (
	// Payment is the closed set of payment methods.
	Payment int

	// Record is one persisted expense entry. Records are append-only.
	Record struct {
		Timestamp time.Time
		SenderID  string  `validate:"notblank,max=128"`
		Payment   Payment `validate:"oneof=1 2"`
		Category  string  `validate:"notblank"`
		Amount    int64   `validate:"gte=0"`
		Note      string
	}
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidDate      = errors.New("invalid date")
	ErrUnknownCategory  = errors.New("unknown category")
	ErrEmptyCategory    = errors.New("empty category")
	ErrInvalidRecord    = errors.New("invalid record")
	ErrStoreUnavailable = errors.New("record store unavailable")
)

var (
	validate    = newValidator()
	nonBlankRun = regexp.MustCompile(`\S`)
)

func newValidator() *validator.Validate {
	v := validator.New()
	// Non-empty and not only whitespace
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return nonBlankRun.MatchString(fl.Field().String())
	})
	return v
}

// Label returns the display label for the payment method.
func (p Payment) Label() string {
	switch p {
	case PaymentCash:
		return CashLabel
	case PaymentOnline:
		return OnlineLabel
	default:
		return ""
	}
}

func (p Payment) String() string {
	switch p {
	case PaymentCash:
		return "cash"
	case PaymentOnline:
		return "online"
	default:
		return "unknown"
	}
}

// PaymentFromLabel maps a stored label back to the enum. Exact labels win;
// labels containing the cash marker are cash; everything else is online.
func PaymentFromLabel(label string) Payment {
	label = strings.TrimSpace(label)
	switch label {
	case CashLabel:
		return PaymentCash
	case OnlineLabel:
		return PaymentOnline
	}
	if strings.Contains(label, cashMarker) {
		return PaymentCash
	}
	return PaymentOnline
}

// Validate checks the record before it is handed to a store.
func (r Record) Validate() error {
	if r.Timestamp.IsZero() {
		return fmt.Errorf("%w: timestamp cannot be zero", ErrInvalidRecord)
	}
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	return nil
}
