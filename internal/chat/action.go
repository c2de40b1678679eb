package chat

import "strings"

// ActionKind is the closed set of structured user intents.
type ActionKind int

const (
	ActionUnknown ActionKind = iota
	ActionMenu
	ActionNewExpense
	ActionSum
	ActionPayCash
	ActionPayOnline
	ActionCategory
	ActionCustomCategory
	ActionSkipNote
	ActionConfirmSave
	ActionConfirmCancel
	ActionSumToday
	ActionSumSevenDays
	ActionSumMonth
	ActionSumAll
	ActionSumCustom
)

const categoryPrefix = "CAT_"

var actionCodes = map[ActionKind]string{
	ActionMenu:           "MENU",
	ActionNewExpense:     "NEW_EXPENSE",
	ActionSum:            "SUM",
	ActionPayCash:        "PAY_CASH",
	ActionPayOnline:      "PAY_ONLINE",
	ActionCustomCategory: "CAT_CUSTOM",
	ActionSkipNote:       "NOTE_SKIP",
	ActionConfirmSave:    "CONFIRM_SAVE",
	ActionConfirmCancel:  "CONFIRM_CANCEL",
	ActionSumToday:       "SUM_TODAY",
	ActionSumSevenDays:   "SUM_7DAYS",
	ActionSumMonth:       "SUM_MONTH",
	ActionSumAll:         "SUM_ALL",
	ActionSumCustom:      "SUM_CUSTOM",
}

var actionsByCode = func() map[string]ActionKind {
	m := make(map[string]ActionKind, len(actionCodes))
	for k, code := range actionCodes {
		m[code] = k
	}
	return m
}()

// Action is a decoded choice payload. Key is set only for ActionCategory.
type Action struct {
	Kind ActionKind
	Key  string
}

// A returns a parameterless action.
func A(kind ActionKind) Action {
	return Action{Kind: kind}
}

// CategoryAction selects the registry entry under key.
func CategoryAction(key string) Action {
	return Action{Kind: ActionCategory, Key: key}
}

// DecodeAction parses a choice payload. Unknown payloads, including an empty
// category key, decode to ActionUnknown.
func DecodeAction(payload string) Action {
	payload = strings.TrimSpace(payload)
	if kind, ok := actionsByCode[payload]; ok {
		return Action{Kind: kind}
	}
	if key, ok := strings.CutPrefix(payload, categoryPrefix); ok && key != "" {
		return CategoryAction(key)
	}
	return Action{}
}

// Encode renders the action as a choice payload.
func (a Action) Encode() string {
	if a.Kind == ActionCategory {
		return categoryPrefix + a.Key
	}
	return actionCodes[a.Kind]
}

func (a Action) String() string {
	if s := a.Encode(); s != "" {
		return s
	}
	return "UNKNOWN"
}
