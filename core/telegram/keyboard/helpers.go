// Package keyboard builds reply markups shared by bot prompts.
package keyboard

import tele "gopkg.in/telebot.v4"

// ForceReply returns a markup that opens the reply box on the client,
// labelled with placeholder when it is not empty.
func ForceReply(placeholder ...string) *tele.ReplyMarkup {
	rm := &tele.ReplyMarkup{ForceReply: true}
	if len(placeholder) > 0 {
		rm.Placeholder = placeholder[0]
	}
	return rm
}

// RemoveKeyboard returns a markup that hides the keyboard.
func RemoveKeyboard() *tele.ReplyMarkup {
	return &tele.ReplyMarkup{RemoveKeyboard: true}
}
