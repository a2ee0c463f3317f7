package helpers

import (
	"context"
	"errors"

	tele "gopkg.in/telebot.v4"
)

// ErrNoSender is returned when an update carries no user identity.
var ErrNoSender = errors.New("telegram: update has no sender")

// CurrentUser resolves the sender of c to a domain entity through lookup.
// The generic type T lets each bot supply its own user model.
func CurrentUser[T any](c tele.Context, lookup func(context.Context, int64) (T, error)) (T, error) {
	var zero T
	user := c.Sender()
	if user == nil {
		return zero, ErrNoSender
	}
	return lookup(BuildContext(c), user.ID)
}
