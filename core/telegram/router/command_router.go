package router

import (
	"context"
	"log/slog"
	"time"

	"github.com/m3rciful/classbot/core/logger"
	tg "github.com/m3rciful/classbot/core/telegram"

	tele "gopkg.in/telebot.v4"
)

// CommandRoutes binds every registered slash command and alias to its handler,
// wrapped by mws in order.
func CommandRoutes(reg *tg.Registry, mws ...tele.MiddlewareFunc) []tg.Route {
	if reg == nil {
		return nil
	}

	var routes []tg.Route
	for name, def := range reg.Commands() {
		if def.Handler == nil {
			continue
		}
		handlerName := normalizeHandlerName(name)
		h := func(c tele.Context) error {
			return handleWithSummary(c, handlerName, time.Now(), func() error {
				return def.Handler(c)
			})
		}
		h = wrap(h, mws)
		routes = append(routes, tg.Route{Endpoint: name, Handler: h})
		for _, alias := range def.Aliases {
			routes = append(routes, tg.Route{Endpoint: "/" + alias, Handler: h})
		}
	}

	logger.Info(context.Background(), "tg.wire", "commands.routed",
		slog.String("status", "ok"),
		slog.Int("count", len(routes)),
	)
	return routes
}
