package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/m3rciful/scorebot/core/logger"
)

const connectTimeout = 5 * time.Second

// Connect opens the database pool, configures its size, and verifies connectivity.
func Connect(ctx context.Context, cfg Config) (*sqlx.DB, error) {
	host, port, name := cfg.Target()

	cctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	start := time.Now()
	db, err := sqlx.ConnectContext(cctx, "postgres", cfg.DSN())
	took := time.Since(start)
	if err != nil {
		logger.DB.LogAttrs(ctx, slog.LevelError, "db connect failed",
			slog.String("event", "db.connect"),
			slog.String("status", "fail"),
			slog.String("host", host),
			slog.String("port", port),
			slog.String("db", name),
			slog.Duration("duration", took),
			logger.Err(err),
		)
		return nil, fmt.Errorf("db connect: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxConnections)
	db.SetConnMaxIdleTime(5 * time.Minute)

	logger.DB.LogAttrs(ctx, slog.LevelInfo, "db connected",
		slog.String("event", "db.connect"),
		slog.String("status", "ok"),
		slog.String("host", host),
		slog.String("port", port),
		slog.String("db", name),
		slog.Int("pool_open", cfg.MaxConnections),
		slog.Duration("duration", took),
	)
	return db, nil
}

// WaitForPostgres pings the server with exponential backoff until it answers or timeout passes.
func WaitForPostgres(ctx context.Context, dsn string, timeout time.Duration) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 250 * time.Millisecond
	b.MaxInterval = 2 * time.Second
	b.MaxElapsedTime = timeout

	attempts := 0
	ping := func() error {
		attempts++
		pctx, cancel := context.WithTimeout(ctx, connectTimeout)
		defer cancel()
		db, err := sqlx.ConnectContext(pctx, "postgres", dsn)
		if err != nil {
			return err
		}
		return db.Close()
	}
	if err := backoff.Retry(ping, backoff.WithContext(b, ctx)); err != nil {
		logger.DB.LogAttrs(ctx, slog.LevelError, "db not ready",
			slog.String("event", "db.wait"),
			slog.String("status", "fail"),
			slog.Int("attempts", attempts),
			logger.Err(err),
		)
		return fmt.Errorf("timeout reached waiting for database: %w", err)
	}
	if attempts > 1 {
		logger.DB.LogAttrs(ctx, slog.LevelInfo, "db ready",
			slog.String("event", "db.wait"),
			slog.String("status", "ok"),
			slog.Int("attempts", attempts),
		)
	}
	return nil
}
