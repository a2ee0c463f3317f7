// Package commands describes the slash commands a bot exposes.
package commands

import (
	tele "gopkg.in/telebot.v4"
)

// Command represents a bot command with its handler, description, and metadata.
type Command struct {
	Handler     tele.HandlerFunc
	Description string
	// Hidden commands still work but stay out of the Telegram command menu.
	Hidden  bool
	Aliases []string
}
