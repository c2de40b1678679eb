// Package telegram binds the conversation engine to the Telegram Bot API.
// Each chat is one conversation, so members of a group share a draft.
package telegram

import (
	"fmt"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"chitieu/internal/chat"
)

// buttonsPerRow keeps long Vietnamese labels readable on phones.
const buttonsPerRow = 2

// Inbound is a decoded update. CallbackID is set for button taps and must
// be answered to stop the client's loading indicator.
type Inbound struct {
	Event      chat.Event
	CallbackID string
}

// DecodeUpdate maps an update to a chat event. Updates the bot does not
// react to (edits, joins, stickers) report false.
func DecodeUpdate(u tgbotapi.Update) (Inbound, bool) {
	switch {
	case u.CallbackQuery != nil:
		cq := u.CallbackQuery
		if cq.Message == nil || cq.Message.Chat == nil {
			return Inbound{CallbackID: cq.ID}, false
		}
		id := chatID(cq.Message.Chat.ID)
		return Inbound{
			Event: chat.Event{
				Kind:        chat.EventChoice,
				SenderID:    id,
				ReplyTarget: id,
				Payload:     cq.Data,
			},
			CallbackID: cq.ID,
		}, true

	case u.Message != nil && u.Message.Chat != nil && u.Message.Text != "":
		id := chatID(u.Message.Chat.ID)
		return Inbound{Event: chat.Event{
			Kind:        chat.EventText,
			SenderID:    id,
			ReplyTarget: id,
			Payload:     u.Message.Text,
		}}, true
	}
	return Inbound{}, false
}

// EncodeReply builds the sendMessage request for a reply. Choices become an
// inline keyboard.
func EncodeReply(r chat.Reply) (tgbotapi.MessageConfig, error) {
	id, err := strconv.ParseInt(r.ReplyTarget, 10, 64)
	if err != nil {
		return tgbotapi.MessageConfig{}, fmt.Errorf("invalid reply target %q: %w", r.ReplyTarget, err)
	}

	msg := tgbotapi.NewMessage(id, r.Message.Text)
	if len(r.Message.Choices) > 0 {
		msg.ReplyMarkup = keyboard(r.Message.Choices)
	}
	return msg, nil
}

func keyboard(choices []chat.Choice) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for start := 0; start < len(choices); start += buttonsPerRow {
		end := min(start+buttonsPerRow, len(choices))
		row := make([]tgbotapi.InlineKeyboardButton, 0, end-start)
		for _, c := range choices[start:end] {
			row = append(row, tgbotapi.NewInlineKeyboardButtonData(c.Label, c.Value))
		}
		rows = append(rows, row)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func chatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
