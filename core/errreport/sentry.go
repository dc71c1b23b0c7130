// Package errreport forwards panics and internal failures to Sentry when a DSN is configured.
// Every function is a no-op until Init succeeds.
package errreport

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/m3rciful/classbot/core/buildinfo"
	"github.com/m3rciful/classbot/core/logger"
)

// Options configure the Sentry client.
type Options struct {
	DSN         string
	Environment string
	SampleRate  float64
}

var enabled atomic.Bool

// Init configures the global Sentry hub. An empty DSN leaves reporting disabled.
func Init(opts Options) error {
	if opts.DSN == "" {
		enabled.Store(false)
		return nil
	}
	rate := opts.SampleRate
	if rate <= 0 || rate > 1 {
		rate = 1
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:         opts.DSN,
		Environment: opts.Environment,
		Release:     buildinfo.Version,
		SampleRate:  rate,
	})
	if err != nil {
		return fmt.Errorf("sentry init: %w", err)
	}
	enabled.Store(true)
	logger.Info(context.Background(), "app", "sentry.init",
		slog.String("status", "ok"),
		slog.String("version", buildinfo.Version),
	)
	return nil
}

// Enabled reports whether events are being sent.
func Enabled() bool {
	return enabled.Load()
}

// Capture reports err tagged with the correlation fields carried by ctx.
func Capture(ctx context.Context, err error) {
	if err == nil || !enabled.Load() {
		return
	}
	hub := scopedHub(ctx)
	hub.CaptureException(err)
}

// Recover reports a recovered panic value.
func Recover(ctx context.Context, r any) {
	if r == nil || !enabled.Load() {
		return
	}
	hub := scopedHub(ctx)
	hub.Recover(r)
}

// Flush waits up to timeout for buffered events to be delivered.
func Flush(timeout time.Duration) bool {
	if !enabled.Load() {
		return true
	}
	return sentry.Flush(timeout)
}

func scopedHub(ctx context.Context) *sentry.Hub {
	hub := sentry.CurrentHub().Clone()
	hub.ConfigureScope(func(scope *sentry.Scope) {
		for k, v := range tags(ctx) {
			scope.SetTag(k, v)
		}
		if uid := logger.UserIDFrom(ctx); uid != 0 {
			scope.SetUser(sentry.User{ID: strconv.FormatInt(uid, 10)})
		}
	})
	return hub
}

func tags(ctx context.Context) map[string]string {
	out := make(map[string]string, 3)
	if rid := logger.RIDFrom(ctx); rid != "" {
		out["rid"] = rid
	}
	if trace := logger.TraceIDFrom(ctx); trace != "" {
		out["trace_id"] = trace
	}
	if h := logger.HandlerFrom(ctx); h != "" {
		out["handler"] = h
	}
	return out
}
