// Package health serves the liveness and readiness endpoints next to the bot.
package health

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/m3rciful/classbot/core/buildinfo"
	"github.com/m3rciful/classbot/core/logger"
)

const liveness = "classbot is running! 🤖"

// Pinger is the readiness dependency, normally the store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options configure the server.
type Options struct {
	Listen string
	Pinger Pinger
	// ReportErrors installs the Sentry middleware; requires errreport.Init first.
	ReportErrors bool
	PingTimeout  time.Duration
}

// Status is the /healthz body.
type Status struct {
	Status  string `json:"status"`
	DB      string `json:"db"`
	Version string `json:"version"`
	Time    string `json:"time"`
}

// Server wraps the fiber app.
type Server struct {
	app  *fiber.App
	opts Options
}

// New builds the routes. Nothing listens until Start.
func New(opts Options) *Server {
	if opts.PingTimeout <= 0 {
		opts.PingTimeout = 2 * time.Second
	}
	app := fiber.New(fiber.Config{
		AppName:               "classbot",
		DisableStartupMessage: true,
		ReadTimeout:           5 * time.Second,
		WriteTimeout:          5 * time.Second,
	})
	if opts.ReportErrors {
		app.Use(sentryfiber.New(sentryfiber.Options{Repanic: true}))
	}
	app.Use(recover.New())
	app.Use(requestid.New())

	s := &Server{app: app, opts: opts}
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString(liveness)
	})
	app.Get("/healthz", s.ready)
	return s
}

// App exposes the fiber app, mainly for app.Test.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) ready(c *fiber.Ctx) error {
	st := Status{Status: "ok", DB: "ok", Version: buildinfo.Version, Time: time.Now().UTC().Format(time.RFC3339)}
	code := fiber.StatusOK
	if s.opts.Pinger != nil {
		ctx, cancel := context.WithTimeout(c.UserContext(), s.opts.PingTimeout)
		defer cancel()
		if err := s.opts.Pinger.Ping(ctx); err != nil {
			st.Status, st.DB = "degraded", "unhealthy"
			code = fiber.StatusServiceUnavailable
			logger.Warn(ctx, "http", "healthz",
				slog.String("status", "fail"),
				slog.String("err", err.Error()),
				slog.Int("http_code", code),
			)
		}
	}
	return c.Status(code).JSON(st)
}

// Start binds the listen address and serves in the background.
// A bind failure is returned so startup can abort.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.opts.Listen)
	if err != nil {
		logger.Error(context.Background(), "http", "listen", slog.String("status", "fail"), slog.String("listen", s.opts.Listen), slog.String("err", err.Error()))
		return fmt.Errorf("health listen %s: %w", s.opts.Listen, err)
	}
	logger.Info(context.Background(), "http", "listen", slog.String("status", "ok"), slog.String("listen", ln.Addr().String()))
	go func() {
		if err := s.app.Listener(ln); err != nil {
			logger.Error(context.Background(), "http", "serve", slog.String("status", "fail"), slog.String("err", err.Error()))
		}
	}()
	return nil
}

// Shutdown stops the listener and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.app.ShutdownWithContext(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
