package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/m3rciful/classbot/core/logger"
	tghelpers "github.com/m3rciful/classbot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// PanicHook receives a recovered panic value with the update's context.
type PanicHook func(ctx context.Context, r any)

// Recover returns a middleware that turns handler panics into errors and
// passes the value to hook.
func Recover(hook PanicHook) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) (err error) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}
				ctx := tghelpers.BuildContext(c)
				logger.Error(ctx, "tg", "panic",
					slog.String("status", "fail"),
					slog.String("err", fmt.Sprint(r)),
					slog.String("stack", string(debug.Stack())),
				)
				if hook != nil {
					hook(ctx, r)
				}
				err = fmt.Errorf("telegram: handler panic: %v", r)
			}()
			return next(c)
		}
	}
}

// RecoverMiddleware recovers panics without a hook.
func RecoverMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return Recover(nil)(next)
}
