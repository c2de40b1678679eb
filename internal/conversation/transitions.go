package conversation

import (
	"context"

	"chitieu/internal/chat"
	"chitieu/internal/core"
	"chitieu/internal/report"
)

type transition func(m *Machine, ctx context.Context, t turn) outcome

// trigger is the action kind of a choice, or onText for free text.
type trigger struct {
	from Step
	on   chat.ActionKind
}

const onText chat.ActionKind = -1

// transitions is looked up by exact step first, then by anyStep. Anything
// else takes defaultTransition.
var transitions = map[trigger]transition{
	{anyStep, chat.ActionMenu}:          toMenu,
	{anyStep, chat.ActionConfirmCancel}: toMenu,
	{anyStep, chat.ActionNewExpense}:    startDraft,
	{anyStep, chat.ActionSum}:           showPeriods,
	{anyStep, chat.ActionSumToday}:      summarizeStanding,
	{anyStep, chat.ActionSumSevenDays}:  summarizeStanding,
	{anyStep, chat.ActionSumMonth}:      summarizeStanding,
	{anyStep, chat.ActionSumAll}:        summarizeStanding,
	{anyStep, chat.ActionSumCustom}:     startCustomRange,

	{StepPayment, chat.ActionPayCash}:         choosePayment,
	{StepPayment, chat.ActionPayOnline}:       choosePayment,
	{StepCategory, chat.ActionCategory}:       chooseCategory,
	{StepCategory, chat.ActionCustomCategory}: askCustomCategory,
	{StepCustomCategory, onText}:              enterCustomCategory,
	{StepAmount, onText}:                      enterAmount,
	{StepNote, onText}:                        enterNote,
	{StepNote, chat.ActionSkipNote}:           skipNote,
	{StepConfirm, chat.ActionConfirmSave}:     confirmSave,
	{StepCustomDateStart, onText}:             enterRangeStart,
	{StepCustomDateEnd, onText}:               enterRangeEnd,
}

func lookup(step Step, kind chat.EventKind, action chat.ActionKind) transition {
	on := action
	if kind == chat.EventText {
		on = onText
	}
	if tr, ok := transitions[trigger{step, on}]; ok {
		return tr
	}
	if tr, ok := transitions[trigger{anyStep, on}]; ok {
		return tr
	}
	return defaultTransition
}

// defaultTransition answers unrecognized input with the main menu and leaves
// the conversation where it was.
func defaultTransition(_ *Machine, _ context.Context, _ turn) outcome {
	return reply(MainMenu())
}

func toMenu(_ *Machine, _ context.Context, _ turn) outcome {
	return reset(MainMenu())
}

func startDraft(_ *Machine, _ context.Context, _ turn) outcome {
	next := State{Step: StepPayment}
	return moveTo(next, Prompt(next))
}

func showPeriods(_ *Machine, _ context.Context, _ turn) outcome {
	return reply(periodMenu())
}

func choosePayment(_ *Machine, _ context.Context, t turn) outcome {
	next := t.state
	next.Payment = core.PaymentCash
	if t.action.Kind == chat.ActionPayOnline {
		next.Payment = core.PaymentOnline
	}
	next.Step = StepCategory
	return moveTo(next, Prompt(next))
}

func chooseCategory(_ *Machine, _ context.Context, t turn) outcome {
	label, err := core.ResolveCategory(t.action.Key)
	if err != nil {
		rejected(t.state.Step)
		return reply(reprompt(textInvalidCat, t.state))
	}
	next := t.state
	next.Category = label
	next.Step = StepAmount
	return moveTo(next, Prompt(next))
}

func askCustomCategory(_ *Machine, _ context.Context, t turn) outcome {
	next := t.state
	next.Step = StepCustomCategory
	return moveTo(next, Prompt(next))
}

func enterCustomCategory(_ *Machine, _ context.Context, t turn) outcome {
	category, err := core.CustomCategory(t.text)
	if err != nil {
		rejected(t.state.Step)
		return reply(reprompt(textEmptyCat, t.state))
	}
	next := t.state
	next.Category = category
	next.Step = StepAmount
	return moveTo(next, Prompt(next))
}

func enterAmount(_ *Machine, _ context.Context, t turn) outcome {
	amount, err := core.ParseAmount(t.text)
	if err != nil {
		rejected(t.state.Step)
		return reply(invalidInput(textInvalidAmount))
	}
	next := t.state
	next.Amount = amount
	next.HasAmount = true
	next.Step = StepNote
	return moveTo(next, Prompt(next))
}

func enterNote(_ *Machine, _ context.Context, t turn) outcome {
	next := t.state
	next.Note = t.text
	next.Step = StepConfirm
	return moveTo(next, Prompt(next))
}

func skipNote(_ *Machine, _ context.Context, t turn) outcome {
	next := t.state
	next.Note = ""
	next.Step = StepConfirm
	return moveTo(next, Prompt(next))
}

func confirmSave(m *Machine, ctx context.Context, t turn) outcome {
	return m.saveDraft(ctx, t)
}

func startCustomRange(_ *Machine, _ context.Context, _ turn) outcome {
	next := State{Step: StepCustomDateStart}
	return moveTo(next, Prompt(next))
}

func enterRangeStart(_ *Machine, _ context.Context, t turn) outcome {
	start, err := core.ParseDayMonth(t.text)
	if err != nil {
		rejected(t.state.Step)
		return reply(invalidInput(textInvalidDate))
	}
	next := t.state
	next.CustomStart = start
	next.Step = StepCustomDateEnd
	return moveTo(next, Prompt(next))
}

func enterRangeEnd(m *Machine, ctx context.Context, t turn) outcome {
	end, err := core.ParseDayMonth(t.text)
	if err != nil {
		rejected(t.state.Step)
		return reply(invalidInput(textInvalidDate))
	}

	w := report.CustomWindow(t.state.CustomStart, end, m.localNow())
	msg, err := m.summarize(ctx, t.senderID, w)
	if err != nil {
		return reset(withMainMenu(textCustomFailed))
	}
	return reset(msg)
}

var standingPeriods = map[chat.ActionKind]report.Period{
	chat.ActionSumToday:     report.PeriodToday,
	chat.ActionSumSevenDays: report.PeriodSevenDays,
	chat.ActionSumMonth:     report.PeriodMonth,
	chat.ActionSumAll:       report.PeriodAll,
}

func summarizeStanding(m *Machine, ctx context.Context, t turn) outcome {
	w := report.StandingWindow(standingPeriods[t.action.Kind], m.localNow())
	msg, err := m.summarize(ctx, t.senderID, w)
	if err != nil {
		return reply(withMainMenu(textSumFailed))
	}
	return reply(msg)
}
