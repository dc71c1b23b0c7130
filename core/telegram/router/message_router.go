package router

import (
	"time"

	tg "github.com/m3rciful/classbot/core/telegram"

	tele "gopkg.in/telebot.v4"
)

// TextOptions controls what happens to messages no command claims.
type TextOptions struct {
	// UnknownText handles text that is not a registered slash command.
	UnknownText tele.HandlerFunc
	// Wrap is applied to every text handler, e.g. the rate limit.
	Wrap []tele.MiddlewareFunc
}

// TextRoutes routes plain text: registered slash commands first, then the
// registry's text fallback, then opts.UnknownText.
func TextRoutes(reg *tg.Registry, opts TextOptions) []tg.Route {
	handler := func(c tele.Context) error {
		start := time.Now()
		text := c.Text()

		if reg != nil {
			if key, cmd, ok := reg.LookupCommand(text); ok && cmd.Handler != nil {
				return handleWithSummary(c, normalizeHandlerName(key), start, func() error {
					return cmd.Handler(c)
				})
			}
			if fb := reg.TextFallback(); fb != nil {
				return handleWithSummary(c, "text", start, func() error {
					return fb(c)
				})
			}
		}
		if opts.UnknownText != nil {
			return handleWithSummary(c, "unknown_text", start, func() error {
				return opts.UnknownText(c)
			})
		}

		logHandlerSummary(c, "unknown_text", start, "skip", nil)
		return nil
	}

	return []tg.Route{{Endpoint: tele.OnText, Handler: wrap(handler, opts.Wrap)}}
}

func wrap(h tele.HandlerFunc, mws []tele.MiddlewareFunc) tele.HandlerFunc {
	for i := len(mws) - 1; i >= 0; i-- {
		if mws[i] != nil {
			h = mws[i](h)
		}
	}
	return h
}
