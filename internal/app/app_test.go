package app

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coreconfig "github.com/m3rciful/scorebot/core/config"
	coretelegram "github.com/m3rciful/scorebot/core/telegram"

	tele "gopkg.in/telebot.v4"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	db, err := sqlx.Open("postgres", "host=localhost dbname=scores sslmode=disable")
	require.NoError(t, err)

	cfg := &Config{Config: coreconfig.Config{Telegram: coreconfig.TelegramConfig{Token: "t"}}}
	require.NoError(t, coreconfig.Normalize(&cfg.Config))
	return New(cfg, db)
}

func TestTelegramRunOptions(t *testing.T) {
	a := newTestApp(t)
	opts, err := a.TelegramRunOptions()
	require.NoError(t, err)

	assert.Same(t, &a.cfg.Config, opts.Config)
	assert.Same(t, a.registry, opts.Registry)

	var names []string
	for _, mw := range opts.Middlewares {
		names = append(names, mw.Name)
	}
	assert.Equal(t, []string{"recover", "logger", "metrics", "session"}, names)

	endpoints := make(map[any]bool)
	for _, r := range opts.Routes {
		endpoints[r.Endpoint] = true
	}
	for _, want := range []any{"/start", "/register", "/enter_scores", "/view_scores", "/delete_scores", tele.OnText} {
		assert.True(t, endpoints[want], "missing route %v", want)
	}

	menu := a.registry.ListCommands(true)
	assert.Len(t, menu, 5)
}

func TestLifecycleWithoutMetricsListener(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()

	require.NoError(t, a.onStart(ctx, coretelegram.Runtime{}))
	assert.Nil(t, a.metrics)
	assert.NoError(t, a.onStop(ctx, coretelegram.Runtime{}))
}
