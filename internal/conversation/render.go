package conversation

import (
	"fmt"
	"strings"
	"unicode/utf16"

	"chitieu/internal/chat"
	"chitieu/internal/core"
	"chitieu/internal/report"
)

const (
	textMainMenu       = "📋 Menu chính:"
	textAskPayment     = "💰 Chọn loại thanh toán:"
	textAskCategory    = "📂 Chọn danh mục (hoặc nhập tay):"
	textAskCustomCat   = "✍️ Nhập danh mục của bạn:\n\n(Ví dụ: Xăng xe, Thuốc, Quà...)"
	textAskAmount      = "💵 Nhập số tiền (chỉ số):\n\nVí dụ: 120000"
	textAskNote        = "📝 Nhập ghi chú (hoặc bấm Bỏ qua):"
	textAskPeriod      = "🧮 Bạn muốn tính tổng phạm vi nào?"
	textAskRangeStart  = "🧾 Tính tổng tùy chọn\n\n📅 Nhập ngày bắt đầu (DD/MM):\n\nVí dụ: 01/01 hoặc 15/12"
	textAskRangeEnd    = "📅 Nhập ngày kết thúc (DD/MM):\n\nVí dụ: 15/01"
	textSaved          = "✅ Đã lưu thành công!"
	textNoNote         = "(không có)"
	textInvalidAmount  = "❌ Số tiền không hợp lệ!\nVui lòng chỉ nhập số.\n\nVí dụ: 50000"
	textInvalidDate    = "❌ Định dạng ngày không đúng!\n\nVui lòng nhập theo format: DD/MM\nVí dụ: 01/01 hoặc 15/12"
	textInvalidCat     = "❌ Danh mục không hợp lệ!"
	textEmptyCat       = "❌ Danh mục không được để trống!"
	textSaveFailed     = "❌ Lỗi lưu dữ liệu!\nVui lòng thử lại."
	textSumFailed      = "❌ Lỗi tính tổng!"
	textCustomFailed   = "❌ Lỗi tính tổng tùy chọn!\n\nVui lòng kiểm tra định dạng ngày (DD/MM)"
	textNoData         = "📊 Chưa có dữ liệu."
	textNoDataInRange  = "📊 Chưa có dữ liệu trong khoảng thời gian này."
	textCategoryDetail = "📊 Chi tiết theo danh mục:"
	textMoreCategories = "\n… và %d danh mục khác"
)

// maxMessageLen is Telegram's text limit, counted in UTF-16 code units.
const (
	maxMessageLen         = 4096
	moreCategoriesReserve = 64
)

var (
	choiceMenu = chat.NewChoice("↩️ Menu", chat.A(chat.ActionMenu))

	mainMenuChoices = []chat.Choice{
		chat.NewChoice("➕ Nhập mới", chat.A(chat.ActionNewExpense)),
		chat.NewChoice("🧮 Tính tổng", chat.A(chat.ActionSum)),
	}
)

// Prompt renders the message that asks for the input state.Step expects.
func Prompt(state State) chat.Message {
	switch state.Step {
	case StepPayment:
		return chat.Message{Text: textAskPayment, Choices: []chat.Choice{
			chat.NewChoice(core.CashLabel, chat.A(chat.ActionPayCash)),
			chat.NewChoice(core.OnlineLabel, chat.A(chat.ActionPayOnline)),
			choiceMenu,
		}}
	case StepCategory:
		return chat.Message{Text: textAskCategory, Choices: categoryChoices()}
	case StepCustomCategory:
		return chat.Message{Text: textAskCustomCat, Choices: []chat.Choice{choiceMenu}}
	case StepAmount:
		return chat.Message{Text: textAskAmount, Choices: []chat.Choice{choiceMenu}}
	case StepNote:
		return chat.Message{Text: textAskNote, Choices: []chat.Choice{
			chat.NewChoice("⏭️ Bỏ qua", chat.A(chat.ActionSkipNote)),
			choiceMenu,
		}}
	case StepConfirm:
		return confirmMessage(state)
	case StepCustomDateStart:
		return chat.Message{Text: textAskRangeStart, Choices: []chat.Choice{choiceMenu}}
	case StepCustomDateEnd:
		return chat.Message{Text: textAskRangeEnd, Choices: []chat.Choice{choiceMenu}}
	default:
		return MainMenu()
	}
}

// MainMenu is the idle prompt, also used as the reply of last resort.
func MainMenu() chat.Message {
	return withMainMenu(textMainMenu)
}

func withMainMenu(text string) chat.Message {
	return chat.Message{Text: text, Choices: append([]chat.Choice(nil), mainMenuChoices...)}
}

func periodMenu() chat.Message {
	return chat.Message{Text: textAskPeriod, Choices: []chat.Choice{
		chat.NewChoice("📅 Hôm nay", chat.A(chat.ActionSumToday)),
		chat.NewChoice("📆 7 ngày", chat.A(chat.ActionSumSevenDays)),
		chat.NewChoice("🗓️ Tháng này", chat.A(chat.ActionSumMonth)),
		chat.NewChoice("♾️ Tất cả", chat.A(chat.ActionSumAll)),
		chat.NewChoice("🧾 Tùy chọn", chat.A(chat.ActionSumCustom)),
		choiceMenu,
	}}
}

func categoryChoices() []chat.Choice {
	choices := make([]chat.Choice, 0, len(core.Categories)+2)
	for _, c := range core.Categories {
		choices = append(choices, chat.NewChoice(c.Key+" "+c.Label, chat.CategoryAction(c.Key)))
	}
	return append(choices,
		chat.NewChoice("✍️ Nhập tay", chat.A(chat.ActionCustomCategory)),
		choiceMenu,
	)
}

func confirmMessage(state State) chat.Message {
	note := state.Note
	if note == "" {
		note = textNoNote
	}
	text := fmt.Sprintf("📋 Xác nhận:\n\n💰 %s\n📂 %s\n💵 %s\n📝 %s",
		state.Payment.Label(), state.Category, core.FormatMoney(state.Amount), note)
	return chat.Message{Text: text, Choices: []chat.Choice{
		chat.NewChoice("✅ Lưu", chat.A(chat.ActionConfirmSave)),
		chat.NewChoice("❌ Hủy", chat.A(chat.ActionConfirmCancel)),
	}}
}

// reprompt prefixes the step's prompt with a correction.
func reprompt(problem string, state State) chat.Message {
	msg := Prompt(state)
	msg.Text = problem + "\n\n" + msg.Text
	return msg
}

// invalidInput keeps the exact wording users already know for amounts and
// dates, while still offering the way back to the menu.
func invalidInput(text string) chat.Message {
	return chat.Message{Text: text, Choices: []chat.Choice{choiceMenu}}
}

func saveFailed(state State) chat.Message {
	return reprompt(textSaveFailed, state)
}

func periodLabel(w report.Window) string {
	switch w.Period {
	case report.PeriodToday:
		return fmt.Sprintf("📅 Tổng kết hôm nay (%s)", core.FormatDate(w.AsOf))
	case report.PeriodSevenDays:
		return fmt.Sprintf("📆 Tổng kết 7 ngày (%s → %s)", core.FormatDate(w.Start), core.FormatDate(w.AsOf))
	case report.PeriodMonth:
		return fmt.Sprintf("🗓️ Tổng kết tháng này (%s → %s)", core.FormatDate(w.Start), core.FormatDate(w.AsOf))
	case report.PeriodCustom:
		return fmt.Sprintf("🧾 Tổng kết tùy chọn\n(%s → %s)", core.FormatDate(w.Start), core.FormatDate(w.End))
	default:
		return "♾️ Tổng kết tất cả"
	}
}

func textLen(s string) int {
	return len(utf16.Encode([]rune(s)))
}

// SummaryMessage renders an aggregation result for window w.
func SummaryMessage(w report.Window, s core.Summary) chat.Message {
	var b strings.Builder
	b.WriteString(periodLabel(w))
	b.WriteString("\n\n💰 Tổng quan:\n")
	fmt.Fprintf(&b, "Tổng chi: %s\n", core.FormatMoney(s.Total()))
	fmt.Fprintf(&b, "Tiền mặt: %s\n", core.FormatMoney(s.Cash))
	fmt.Fprintf(&b, "Online: %s", core.FormatMoney(s.Online))

	switch {
	case len(s.ByCategory) > 0:
		b.WriteString("\n\n" + textCategoryDetail)
		used := textLen(b.String())
		for i, c := range s.ByCategory {
			line := fmt.Sprintf("\n%s: cash %s | online %s | %s",
				c.Category, core.FormatMoney(c.Cash), core.FormatMoney(c.Online), core.FormatMoney(c.Total()))
			if used+textLen(line) > maxMessageLen-moreCategoriesReserve {
				fmt.Fprintf(&b, textMoreCategories, len(s.ByCategory)-i)
				break
			}
			b.WriteString(line)
			used += textLen(line)
		}
	case w.Period == report.PeriodCustom:
		b.WriteString("\n\n" + textNoDataInRange)
	default:
		b.WriteString("\n\n" + textNoData)
	}

	return withMainMenu(b.String())
}
