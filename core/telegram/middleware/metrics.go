package middleware

import (
	"sync/atomic"

	tele "gopkg.in/telebot.v4"
)

const countersKey = "reply_counters"

type replyCounters struct {
	messages atomic.Int32
	kb       atomic.Bool
}

// metricsContext wraps tele.Context to count sent messages and detect keyboard usage.
type metricsContext struct {
	tele.Context
	counters *replyCounters
}

func (m metricsContext) record(err error, opts []any) {
	if err != nil {
		return
	}
	m.counters.messages.Add(1)
	if hasKeyboard(opts) {
		m.counters.kb.Store(true)
	}
}

func hasKeyboard(opts []any) bool {
	for _, o := range opts {
		switch v := o.(type) {
		case *tele.SendOptions:
			if v != nil && v.ReplyMarkup != nil {
				return true
			}
		case *tele.ReplyMarkup:
			if v != nil {
				return true
			}
		}
	}
	return false
}

// Send proxies tele.Context.Send while updating message counters.
func (m metricsContext) Send(what any, opts ...any) error {
	err := m.Context.Send(what, opts...)
	m.record(err, opts)
	return err
}

// Reply proxies tele.Context.Reply while updating message counters.
func (m metricsContext) Reply(what any, opts ...any) error {
	err := m.Context.Reply(what, opts...)
	m.record(err, opts)
	return err
}

// MessageMetricsMiddleware instruments context to track messages count and keyboard usage.
func MessageMetricsMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		counters := &replyCounters{}
		c.Set(countersKey, counters)
		return next(metricsContext{Context: c, counters: counters})
	}
}

// GetCounters reads message count and keyboard presence flags from context.
// Replies still queued in the async sender are not counted yet.
func GetCounters(c tele.Context) (int, bool) {
	counters, ok := c.Get(countersKey).(*replyCounters)
	if !ok {
		return 0, false
	}
	return int(counters.messages.Load()), counters.kb.Load()
}
