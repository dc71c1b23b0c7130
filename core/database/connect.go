package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/m3rciful/classbot/core/logger"
)

// Connect opens the pool, retrying until the server answers or timeout elapses.
func Connect(cfg Config) (*sqlx.DB, error) {
	return ConnectContext(context.Background(), cfg, 30*time.Second)
}

// ConnectContext is Connect with an explicit context and readiness timeout.
func ConnectContext(ctx context.Context, cfg Config, timeout time.Duration) (*sqlx.DB, error) {
	host, port, name := cfg.Target()
	target := []slog.Attr{
		slog.String("driver", "postgres"),
		slog.String("host", host),
		slog.String("port", port),
		slog.String("db", name),
	}

	start := time.Now()
	db, attempts, err := waitForPostgres(ctx, cfg.DSN(), timeout)
	took := logger.Took(start)
	if err != nil {
		logger.Error(ctx, "db", "db.connect", append(target,
			slog.String("status", "fail"),
			slog.Int("attempts", attempts),
			slog.Duration("duration", took),
			slog.String("err", err.Error()),
		)...)
		return nil, fmt.Errorf("db connect: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxConnections)
	db.SetConnMaxIdleTime(5 * time.Minute)

	logger.Info(ctx, "db", "db.connect", append(target,
		slog.String("status", "ok"),
		slog.Int("attempts", attempts),
		slog.Int("pool_open", cfg.MaxConnections),
		slog.Duration("duration", took),
	)...)
	return db, nil
}

func waitForPostgres(ctx context.Context, dsn string, timeout time.Duration) (*sqlx.DB, int, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var lastErr error
	for attempt := 1; ; attempt++ {
		db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
		if err == nil {
			return db, attempt, nil
		}
		lastErr = err
		logger.Debug(ctx, "db", "db.wait",
			slog.Int("attempts", attempt),
			slog.String("err", err.Error()),
		)
		select {
		case <-ctx.Done():
			return nil, attempt, fmt.Errorf("database not ready: %w", lastErr)
		case <-time.After(2 * time.Second):
		}
	}
}
