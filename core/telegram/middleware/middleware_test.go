package middleware

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"

	tghelpers "github.com/m3rciful/scorebot/core/telegram/helpers"
	"github.com/m3rciful/scorebot/core/telegram/teletest"
)

func TestRecoverMiddleware(t *testing.T) {
	h := RecoverMiddleware(func(tele.Context) error { panic("nil map") })
	assert.NoError(t, h(teletest.NewText(1, 1, "x")))
}

func TestRateLimitPerUser(t *testing.T) {
	limited := 0
	calls := 0
	h := RateLimitMiddleware(RateLimitOptions{
		Interval:  time.Hour,
		OnLimited: func(tele.Context) error { limited++; return nil },
	})(func(tele.Context) error { calls++; return nil })

	require.NoError(t, h(teletest.NewText(1, 1, "a")))
	require.NoError(t, h(teletest.NewText(2, 1, "b")))
	require.NoError(t, h(teletest.NewText(3, 2, "c")))

	assert.Equal(t, 2, calls)
	assert.Equal(t, 1, limited)
}

func TestRateLimitExclusions(t *testing.T) {
	calls := 0
	h := RateLimitMiddleware(RateLimitOptions{
		Interval: time.Hour,
		Exclude:  map[string]struct{}{"message": {}},
	})(func(tele.Context) error { calls++; return nil })

	for i := range 3 {
		require.NoError(t, h(teletest.NewText(i, 1, "a")))
	}
	assert.Equal(t, 3, calls)
}

func TestLoggerAndCountersMiddleware(t *testing.T) {
	c := teletest.NewText(7, 8, "/start")
	h := LoggerMiddleware(MessageMetricsMiddleware(func(c tele.Context) error {
		require.NoError(t, c.Reply("one"))
		return c.Send("two", &tele.ReplyMarkup{ForceReply: true})
	}))
	require.NoError(t, h(c))

	msgs, kb := GetCounters(c)
	assert.Equal(t, 2, msgs)
	assert.True(t, kb)
	assert.Equal(t, "7:8:8", c.Get("rid"))

	ctx, ok := tghelpers.ContextFrom(c)
	require.True(t, ok)
	assert.NotNil(t, ctx)
	assert.Equal(t, []string{"one", "two"}, c.Texts())
}
