package router

import (
	"log/slog"
	"time"

	tg "github.com/m3rciful/scorebot/core/telegram"
	"github.com/m3rciful/scorebot/core/telegram/state"

	tele "gopkg.in/telebot.v4"
)

// FSM is the part of the session manager the text router needs.
type FSM interface {
	GetState(userID int64) state.State
	InProgress(userID int64) bool
	ManagerHandler(c tele.Context) error
}

// TextOptions controls fallback behaviour for plain text.
type TextOptions struct {
	UnknownText tele.HandlerFunc
}

// TextRoutes routes plain text: the sender's active dialog step first, then a
// command alias, then the registry fallback. Anything else is skipped.
func TextRoutes(fsmMgr FSM, reg *tg.Registry, opts TextOptions) []tg.Route {
	handler := func(c tele.Context) error {
		start := time.Now()

		if user := c.Sender(); fsmMgr != nil && user != nil && fsmMgr.InProgress(user.ID) {
			// Prefer the state seen by the session middleware before any handler ran.
			st := state.StateFrom(c)
			if st == state.StateIdle {
				st = fsmMgr.GetState(user.ID)
			}
			return handleWithSummary(c, "fsm", start, func() error {
				return fsmMgr.ManagerHandler(c)
			}, slog.String("state", string(st)))
		}

		if reg != nil {
			if key, cmd, ok := reg.LookupCommand(c.Text()); ok && cmd.Handler != nil {
				return handleWithSummary(c, normalizeHandlerName(key), start, func() error {
					return cmd.Handler(c)
				})
			}
			if fb := reg.TextFallback(); fb != nil {
				return handleWithSummary(c, "fallback", start, func() error { return fb(c) })
			}
		}

		if opts.UnknownText != nil {
			return handleWithSummary(c, "unknown_text", start, func() error {
				return opts.UnknownText(c)
			})
		}

		logHandlerSummary(c, "unknown_text", start, "skip", nil)
		return nil
	}

	return []tg.Route{{Endpoint: tele.OnText, Handler: handler}}
}
