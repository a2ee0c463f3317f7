package state

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/scorebot/core/telegram/teletest"
)

func TestSessionLifecycle(t *testing.T) {
	m := NewCacheManager(Options{})
	t.Cleanup(m.Close)

	assert.Equal(t, StateIdle, m.GetState(1))
	assert.False(t, m.InProgress(1))

	m.SetState(1, "register.await_last_name")
	m.SetTemp(1, "first_name", "Ann")
	m.SetTemp(1, "student_id", int64(7))

	assert.True(t, m.InProgress(1))
	assert.False(t, m.InProgress(2))
	name, ok := m.GetTempString(1, "first_name")
	assert.True(t, ok)
	assert.Equal(t, "Ann", name)
	id, ok := m.GetTempInt64(1, "student_id")
	assert.True(t, ok)
	assert.Equal(t, int64(7), id)
	_, ok = m.GetTempInt64(1, "first_name")
	assert.False(t, ok)

	snapshot := m.Get(1)
	snapshot.TempData["first_name"] = "mutated"
	name, _ = m.GetTempString(1, "first_name")
	assert.Equal(t, "Ann", name)

	m.Clear(1)
	assert.Equal(t, StateIdle, m.GetState(1))
	_, ok = m.GetTemp(1, "first_name")
	assert.False(t, ok)
}

func TestSetIdleEvicts(t *testing.T) {
	m := NewCacheManager(Options{})
	t.Cleanup(m.Close)

	m.SetState(5, "scores.await_subject")
	require.Equal(t, 1, m.Len())
	m.SetState(5, StateIdle)
	assert.Equal(t, 0, m.Len())
}

func TestSessionExpires(t *testing.T) {
	m := NewCacheManager(Options{TTL: 20 * time.Millisecond})
	t.Cleanup(m.Close)

	m.SetState(3, "register.await_first_name")
	require.True(t, m.InProgress(3))
	assert.Eventually(t, func() bool { return !m.InProgress(3) }, time.Second, 10*time.Millisecond)
}

func TestManagerHandlerDispatchesCurrentState(t *testing.T) {
	m := NewCacheManager(Options{})
	t.Cleanup(m.Close)

	var seen []string
	m.Handle("a", func(c tele.Context) error { seen = append(seen, "a:"+c.Text()); return nil })
	m.Handle("b", func(tele.Context) error { return errors.New("b failed") })

	c := teletest.NewText(1, 42, "hello")
	require.NoError(t, m.ManagerHandler(c))
	assert.Empty(t, seen)

	m.SetState(42, "a")
	require.NoError(t, m.ManagerHandler(c))
	assert.Equal(t, []string{"a:hello"}, seen)

	m.SetState(42, "b")
	assert.EqualError(t, m.ManagerHandler(c), "b failed")
}

func TestWithSessionExposesState(t *testing.T) {
	m := NewCacheManager(Options{})
	t.Cleanup(m.Close)
	m.SetState(9, "scores.await_score")

	var got State
	h := WithSession(m)(func(c tele.Context) error {
		got = StateFrom(c)
		return nil
	})
	require.NoError(t, h(teletest.NewText(1, 9, "87")))
	assert.Equal(t, State("scores.await_score"), got)
}
