package commands

import (
	tele "gopkg.in/telebot.v4"
)

// Command is one entry of the bot menu. Handler receives the slash command itself;
// Aliases are extra slash names routed to the same handler but kept out of the menu.
type Command struct {
	Handler     tele.HandlerFunc
	Description string
	Hidden      bool
	Aliases     []string
}
