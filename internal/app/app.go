// Package app wires configuration, storage, the conversation machine and the
// Telegram transport into a runnable bot.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/classbot/core/bootstrap"
	"github.com/m3rciful/classbot/core/errreport"
	"github.com/m3rciful/classbot/core/logger"
	coretelegram "github.com/m3rciful/classbot/core/telegram"
	"github.com/m3rciful/classbot/core/telegram/commands"
	tghelpers "github.com/m3rciful/classbot/core/telegram/helpers"
	"github.com/m3rciful/classbot/core/telegram/keyboard"
	"github.com/m3rciful/classbot/core/telegram/router"
	"github.com/m3rciful/classbot/internal/chat"
	"github.com/m3rciful/classbot/internal/config"
	"github.com/m3rciful/classbot/internal/health"
	"github.com/m3rciful/classbot/internal/render"
	"github.com/m3rciful/classbot/internal/store"

	tele "gopkg.in/telebot.v4"
)

// App owns the running components.
type App struct {
	cfg     *config.Config
	db      *sqlx.DB
	store   store.Store
	machine *chat.Machine
	health  *health.Server
}

// Bootstrap initialises logging, the database, migrations, the roster seed and
// error reporting, then builds the App.
func Bootstrap(ctx context.Context, cfg *config.Config) (*App, error) {
	res, err := bootstrap.Run(ctx, bootstrap.Options{
		Config:   cfg.CoreConfig(),
		Database: cfg.Database,
		Storage: func(db *sqlx.DB) bootstrap.Storage {
			return store.NewPostgres(db)
		},
		Modules: bootstrap.Modules{Seeders: seeders(cfg)},
	})
	if err != nil {
		return nil, err
	}

	if err := errreport.Init(errreport.Options{
		DSN:         cfg.Sentry.DSN,
		Environment: cfg.Sentry.Environment,
		SampleRate:  cfg.Sentry.SampleRate,
	}); err != nil {
		// Reporting is optional; keep running without it.
		logger.Warn(ctx, "app", "sentry.init", slog.String("status", "fail"), slog.String("err", err.Error()))
	}

	st, ok := res.Storage.(store.Store)
	if !ok {
		_ = res.DB.Close()
		return nil, fmt.Errorf("app: unexpected storage %T", res.Storage)
	}
	a, err := New(cfg, st)
	if err != nil {
		_ = res.DB.Close()
		return nil, err
	}
	a.db = res.DB
	return a, nil
}

// New builds the App on top of an existing store.
func New(cfg *config.Config, st store.Store) (*App, error) {
	cat := cfg.Bot.Catalog()
	features := cfg.Bot.ChatFeatures()
	machine, err := chat.NewMachine(chat.Options{
		Store:   st,
		Catalog: cat,
		Registry: chat.NewRegistry(cat, chat.RegistryOptions{
			BotUsername: cfg.Telegram.Username,
			CheckIn:     features.CheckIn,
		}),
		Renderer: render.New(cat, cfg.Bot.CalendarURL),
		Features: features,
		Location: cfg.Bot.Location(),
	})
	if err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}

	a := &App{cfg: cfg, store: st, machine: machine}
	if cfg.Health.Listen != "" {
		a.health = health.New(health.Options{
			Listen:       cfg.Health.Listen,
			Pinger:       st,
			ReportErrors: errreport.Enabled(),
		})
	}
	return a, nil
}

func seeders(cfg *config.Config) []bootstrap.Seeder {
	path := cfg.Bot.SeedFile
	if path == "" {
		return nil
	}
	return []bootstrap.Seeder{bootstrap.SeederFunc(func(ctx context.Context, storage bootstrap.Storage) error {
		st, ok := storage.(store.Store)
		if !ok {
			return fmt.Errorf("roster seed: unexpected storage %T", storage)
		}
		return seedRoster(ctx, st, path)
	})}
}

func seedRoster(ctx context.Context, st store.Store, path string) error {
	start := time.Now()
	roster, err := store.LoadRoster(path)
	if err != nil {
		return err
	}
	res, err := store.ApplyRoster(ctx, st, roster)
	if err != nil {
		logger.Error(ctx, "db.seed", "roster", slog.String("status", "fail"), slog.String("err", err.Error()))
		return fmt.Errorf("apply roster: %w", err)
	}
	logger.Info(ctx, "db.seed", "roster",
		slog.String("status", "ok"),
		slog.String("path", path),
		slog.Int("courses", res.Courses),
		slog.Int("users", res.Users),
		slog.Int("enrollments", res.Enrollments),
		slog.Int64("duration_ms", logger.Took(start).Milliseconds()),
	)
	return nil
}

// TelegramRunOptions publishes the command menu and routes every text message
// through the conversation machine.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	reg := coretelegram.NewRegistry()
	for _, e := range a.machine.Registry().Menu() {
		reg.RegisterCommand("/"+e.Name, commands.Command{Handler: a.HandleText, Description: e.Description})
	}
	reg.RegisterCommand("/start", commands.Command{Handler: a.HandleText, Description: "start", Hidden: true})
	reg.SetTextFallback(a.HandleText)

	routes := router.CommandRoutes(reg)
	routes = append(routes, router.TextRoutes(reg, router.TextOptions{})...)

	core := a.cfg.CoreConfig()
	return coretelegram.RunOptions{
		Config:      core,
		Registry:    reg,
		Middlewares: coretelegram.DefaultMiddlewares(core, coretelegram.MiddlewareOptions{OnPanic: errreport.Recover}),
		Routes:      routes,
		OnError: func(err error, c tele.Context) {
			ctx := context.Background()
			if c != nil {
				ctx = tghelpers.BuildContext(c)
			}
			logger.Error(ctx, "tg", "handler.error", slog.String("status", "fail"), slog.String("err", err.Error()))
		},
		OnStart: func(context.Context, coretelegram.Runtime) error {
			if a.health == nil {
				return nil
			}
			return a.health.Start()
		},
	}, nil
}

// HandleText runs one inbound text message through the machine and sends the reply.
// A failed transition is reported and answered with a neutral retry message.
func (a *App) HandleText(c tele.Context) error {
	user := c.Sender()
	if user == nil {
		return nil
	}
	ctx := tghelpers.BuildContext(c)
	reply, err := a.machine.Handle(ctx, chat.Inbound{
		PlatformUserID: strconv.FormatInt(user.ID, 10),
		Text:           c.Text(),
		ReplyToken:     logger.RIDFrom(ctx),
	})
	if err != nil {
		errreport.Capture(ctx, err)
		if sendErr := tghelpers.SendText(c, a.cfg.Bot.Catalog().Msg.InternalError, keyboard.RemoveKeyboard()); sendErr != nil {
			err = errors.Join(err, sendErr)
		}
		return err
	}
	return tghelpers.SendReply(c, reply.Text, reply.Choices)
}

// Close stops the health server, closes the database and flushes error reports.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.health != nil {
		errs = append(errs, a.health.Shutdown(ctx))
	}
	if a.db != nil {
		errs = append(errs, a.db.Close())
	}
	errreport.Flush(2 * time.Second)
	return errors.Join(errs...)
}
