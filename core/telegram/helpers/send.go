package helpers

import (
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/m3rciful/scorebot/core/logger"
	"github.com/m3rciful/scorebot/core/telegram/sender"

	tele "gopkg.in/telebot.v4"
)

var globalDispatcher atomic.Pointer[sender.Dispatcher]

// SetDispatcher wires the asynchronous sender used by helper functions.
// A nil dispatcher makes helpers send inline.
func SetDispatcher(d *sender.Dispatcher) {
	globalDispatcher.Store(d)
}

func sendAsync(c tele.Context, action, endpoint string, run func() error) error {
	disp := globalDispatcher.Load()
	if disp == nil {
		return run()
	}

	ctx := BuildContext(c)
	err := disp.Enqueue(ctx, action, endpoint, run)
	if errors.Is(err, sender.ErrQueueFull) || errors.Is(err, sender.ErrQueueClosed) {
		logger.Warn(ctx, logger.CompSender, "queue.fallback",
			slog.String("action", action),
			slog.String("endpoint", endpoint),
			logger.Err(err),
		)
		return run()
	}
	return err
}

// SendText sends raw text (no parse mode) to the current chat.
func SendText(c tele.Context, text string, opts ...any) error {
	return sendAsync(c, "send.text", "sendMessage", func() error {
		return c.Send(text, opts...)
	})
}

// ReplyText answers the incoming message with raw text, quoting it.
func ReplyText(c tele.Context, text string, opts ...any) error {
	return sendAsync(c, "reply.text", "sendMessage", func() error {
		return c.Reply(text, opts...)
	})
}
