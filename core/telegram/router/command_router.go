package router

import (
	"context"
	"log/slog"
	"time"

	"github.com/m3rciful/scorebot/core/logger"
	tg "github.com/m3rciful/scorebot/core/telegram"

	tele "gopkg.in/telebot.v4"
)

// CommandRoutes binds every registered command to its endpoint with a summary line.
// Global middleware is applied by the bot, not per route.
func CommandRoutes(reg *tg.Registry) []tg.Route {
	if reg == nil {
		return nil
	}

	cmds := reg.Commands()
	routes := make([]tg.Route, 0, len(cmds))
	for name, def := range cmds {
		handlerName := normalizeHandlerName(name)
		h := def.Handler
		routes = append(routes, tg.Route{
			Endpoint: name,
			Handler: func(c tele.Context) error {
				return handleWithSummary(c, handlerName, time.Now(), func() error { return h(c) })
			},
		})
	}

	logger.TWire.LogAttrs(context.Background(), slog.LevelInfo, "tg.wire",
		slog.String("event", "commands"),
		slog.Int("count", len(routes)),
	)
	return routes
}
