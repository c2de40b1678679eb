// Package conversation drives the per-sender expense entry dialog and the
// summary queries answered from it.
package conversation

import "chitieu/internal/core"

// Step is where a sender currently is in the dialog.
type Step int

// anyStep matches every step in the transition table.
const anyStep Step = 0

const (
	StepMenu Step = iota + 1
	StepPayment
	StepCategory
	StepCustomCategory
	StepAmount
	StepNote
	StepConfirm
	StepCustomDateStart
	StepCustomDateEnd
)

var stepNames = map[Step]string{
	anyStep:             "ANY",
	StepMenu:            "MENU",
	StepPayment:         "PAYMENT",
	StepCategory:        "CATEGORY",
	StepCustomCategory:  "CUSTOM_CAT",
	StepAmount:          "AMOUNT",
	StepNote:            "NOTE",
	StepConfirm:         "CONFIRM",
	StepCustomDateStart: "CUSTOM_DATE_START",
	StepCustomDateEnd:   "CUSTOM_DATE_END",
}

func (s Step) String() string {
	if name, ok := stepNames[s]; ok {
		return name
	}
	return "UNKNOWN"
}

// State is one sender's dialog position plus the draft collected so far.
// The zero Payment and an unset HasAmount mean "not chosen yet".
type State struct {
	Step        Step
	Payment     core.Payment
	Category    string
	Amount      int64
	HasAmount   bool
	Note        string
	CustomStart core.DayMonth
	CustomEnd   core.DayMonth
}

// idle is the state assumed for senders without a stored conversation.
func idle() State {
	return State{Step: StepMenu}
}

// Record builds the expense record for a completed draft.
func (s State) Record() core.Record {
	return core.Record{
		Payment:  s.Payment,
		Category: s.Category,
		Amount:   s.Amount,
		Note:     s.Note,
	}
}
