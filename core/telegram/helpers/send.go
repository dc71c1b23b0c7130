package helpers

import (
	"sync/atomic"

	"github.com/m3rciful/classbot/core/telegram/keyboard"
	"github.com/m3rciful/classbot/core/telegram/sender"

	tele "gopkg.in/telebot.v4"
)

var globalSender atomic.Pointer[sender.Sender]

// SetSender wires the retrying sender used by the send helpers. nil sends directly.
func SetSender(s *sender.Sender) {
	globalSender.Store(s)
}

func send(c tele.Context, action string, run func() error) error {
	s := globalSender.Load()
	if s == nil {
		return run()
	}
	return s.Do(BuildContext(c), action, run)
}

// SendText sends plain text (no parse mode) to the current chat.
func SendText(c tele.Context, text string, markup ...*tele.ReplyMarkup) error {
	opts := &tele.SendOptions{}
	if len(markup) > 0 {
		opts.ReplyMarkup = markup[0]
	}
	return send(c, "send.text", func() error {
		return c.Send(text, opts)
	})
}

// SendReply sends text with a one-time keyboard of choices, or removes any
// keyboard left by an earlier prompt when there are none.
func SendReply(c tele.Context, text string, choices []string) error {
	return SendText(c, text, keyboard.QuickReply(choices...))
}
