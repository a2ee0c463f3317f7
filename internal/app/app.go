// Package app wires the scorebot: configuration, database, dialogs and the Telegram runtime.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/scorebot/core/bootstrap"
	corecmd "github.com/m3rciful/scorebot/core/cmd"
	coreconfig "github.com/m3rciful/scorebot/core/config"
	"github.com/m3rciful/scorebot/core/logger"
	"github.com/m3rciful/scorebot/core/metrics"
	coretelegram "github.com/m3rciful/scorebot/core/telegram"
	"github.com/m3rciful/scorebot/core/telegram/router"
	"github.com/m3rciful/scorebot/core/telegram/state"
	"github.com/m3rciful/scorebot/internal/bot"
	"github.com/m3rciful/scorebot/internal/storage"
	"github.com/m3rciful/scorebot/migrations"
)

// DefaultConfigPath is used when neither --config nor CONFIG_PATH is set.
const DefaultConfigPath = "config.yaml"

// App is a bootstrapped scorebot ready to run.
type App struct {
	cfg      *Config
	db       *sqlx.DB
	store    *storage.Store
	sessions *state.CacheManager
	registry *coretelegram.Registry
	metrics  *metrics.Server
}

var _ corecmd.TelegramApp = (*App)(nil)

// New assembles the handlers on top of an open pool.
func New(cfg *Config, db *sqlx.DB) *App {
	sessions := state.NewCacheManager(state.Options{
		TTL:         cfg.Dialog.TTL(),
		MaxSessions: int64(cfg.Dialog.MaxSessions),
	})
	store := storage.New(db)
	reg := coretelegram.NewRegistry()
	bot.New(store, sessions).Register(reg)
	return &App{cfg: cfg, db: db, store: store, sessions: sessions, registry: reg}
}

// Bootstrap initializes logging, applies migrations and opens the pool.
func Bootstrap(ctx context.Context, carrier corecmd.ConfigCarrier) (corecmd.TelegramApp, error) {
	cfg, ok := carrier.(*Config)
	if !ok {
		return nil, fmt.Errorf("app: unexpected config type %T", carrier)
	}
	res, err := bootstrap.Run(ctx, bootstrap.Options{
		Config:     &cfg.Config,
		Database:   cfg.Database,
		Migrations: migrations.FS,
	})
	if err != nil {
		return nil, err
	}
	return New(cfg, res.DB), nil
}

// TelegramRunOptions describes middlewares, routes and lifecycle hooks for the runtime.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	mws := coretelegram.DefaultMiddlewares(&a.cfg.Config, nil)
	mws = append(mws, coretelegram.Middleware{Name: "session", Use: state.WithSession(a.sessions)})

	routes := router.CommandRoutes(a.registry)
	routes = append(routes, router.TextRoutes(a.sessions, a.registry, router.TextOptions{})...)

	return coretelegram.RunOptions{
		Config:      &a.cfg.Config,
		Registry:    a.registry,
		Middlewares: mws,
		Routes:      routes,
		OnStart:     a.onStart,
		OnStop:      a.onStop,
	}, nil
}

func (a *App) onStart(ctx context.Context, _ coretelegram.Runtime) error {
	metrics.RegisterSessionGauge(a.sessions.Len)
	if listen := a.cfg.Metrics.Listen; listen != "" {
		a.metrics = metrics.NewServer(listen, a.store.Ping)
		a.metrics.Start()
	}
	host, port, name := a.cfg.Database.Target()
	logger.Info(ctx, logger.CompApp, "app.start",
		slog.String("status", "ok"),
		slog.String("host", host),
		slog.String("port", port),
		slog.String("db", name),
		slog.Int("count", len(a.registry.Commands())),
	)
	return nil
}

func (a *App) onStop(ctx context.Context, _ coretelegram.Runtime) error {
	var errs []error
	if a.metrics != nil {
		if err := a.metrics.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("metrics shutdown: %w", err))
		}
	}
	a.sessions.Close()
	if err := a.db.Close(); err != nil {
		errs = append(errs, fmt.Errorf("db close: %w", err))
	}
	return errors.Join(errs...)
}

func runnerOptions(configPath string) corecmd.Options {
	return corecmd.Options{
		ConfigPath:        configPath,
		DefaultConfigPath: DefaultConfigPath,
		LoadConfig: func(path string) (corecmd.ConfigCarrier, error) {
			return LoadConfig(path)
		},
		Bootstrap: Bootstrap,
	}
}

// Run starts the bot and blocks until SIGINT or SIGTERM.
func Run(configPath string) error {
	return corecmd.Run(runnerOptions(configPath))
}

// Migrate applies the embedded migrations and exits. Only the database section is required.
func Migrate(ctx context.Context, configPath string) error {
	opts := runnerOptions(configPath)
	if err := corecmd.LoadEnvFiles(opts.EnvFiles...); err != nil {
		return err
	}
	path, err := corecmd.ResolveConfigPath(opts)
	if err != nil {
		return err
	}
	dbCfg, err := loadDatabaseConfig(path)
	if err != nil {
		return fmt.Errorf("app: failed to load config %s: %w", path, err)
	}
	if err := logger.InitLogger(&coreconfig.Config{}); err != nil {
		return err
	}
	defer func() { _ = logger.Shutdown() }()
	return bootstrap.Migrate(ctx, bootstrap.Options{
		Database:   dbCfg,
		Migrations: migrations.FS,
	})
}
