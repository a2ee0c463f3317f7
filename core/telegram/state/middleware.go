package state

import tele "gopkg.in/telebot.v4"

// SessionKey is the tele.Context key holding the sender's State for the current update.
const SessionKey = "fsm_state"

// WithSession exposes the sender's current state to downstream handlers and summaries.
func WithSession(mgr Manager) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			if user := c.Sender(); user != nil && mgr != nil {
				c.Set(SessionKey, mgr.GetState(user.ID))
			}
			return next(c)
		}
	}
}

// StateFrom returns the state recorded by WithSession, or StateIdle.
func StateFrom(c tele.Context) State {
	if st, ok := c.Get(SessionKey).(State); ok {
		return st
	}
	return StateIdle
}
