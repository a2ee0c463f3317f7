package router

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"

	tg "github.com/m3rciful/scorebot/core/telegram"
	"github.com/m3rciful/scorebot/core/telegram/commands"
	"github.com/m3rciful/scorebot/core/telegram/state"
	"github.com/m3rciful/scorebot/core/telegram/teletest"
)

func newRegistry(calls *[]string) *tg.Registry {
	reg := tg.NewRegistry()
	reg.RegisterCommand("/view_scores", commands.Command{
		Description: "Посмотреть баллы",
		Aliases:     []string{"баллы"},
		Handler: func(tele.Context) error {
			*calls = append(*calls, "view_scores")
			return nil
		},
	})
	reg.RegisterCommand("/fail", commands.Command{
		Description: "fails",
		Hidden:      true,
		Handler:     func(tele.Context) error { return errors.New("boom") },
	})
	return reg
}

func TestTextRoutesPreferActiveDialog(t *testing.T) {
	var calls []string
	fsm := state.NewCacheManager(state.Options{})
	t.Cleanup(fsm.Close)
	fsm.Handle("await", func(c tele.Context) error {
		calls = append(calls, "fsm:"+c.Text())
		return nil
	})

	routes := TextRoutes(fsm, newRegistry(&calls), TextOptions{})
	require.Len(t, routes, 1)
	assert.Equal(t, tele.OnText, routes[0].Endpoint)
	h := routes[0].Handler

	require.NoError(t, h(teletest.NewText(1, 10, "баллы")))
	fsm.SetState(10, "await")
	require.NoError(t, h(teletest.NewText(2, 10, "баллы")))
	require.NoError(t, h(teletest.NewText(3, 11, "unknown words")))

	assert.Equal(t, []string{"view_scores", "fsm:баллы"}, calls)
}

func TestTextRoutesFallback(t *testing.T) {
	var calls []string
	reg := newRegistry(&calls)
	reg.SetTextFallback(func(c tele.Context) error {
		calls = append(calls, "fallback")
		return nil
	})
	h := TextRoutes(nil, reg, TextOptions{})[0].Handler
	require.NoError(t, h(teletest.NewText(1, 1, "hi")))
	assert.Equal(t, []string{"fallback"}, calls)
}

func TestCommandRoutesSwallowHandlerErrors(t *testing.T) {
	var calls []string
	routes := CommandRoutes(newRegistry(&calls))
	require.Len(t, routes, 2)
	for _, r := range routes {
		assert.NoError(t, r.Handler(teletest.NewText(1, 1, fmt.Sprint(r.Endpoint))))
	}
	assert.Equal(t, []string{"view_scores"}, calls)
}

type codedErr struct{}

func (codedErr) Error() string { return "check violation" }
func (codedErr) Code() string  { return "score out of range" }

func TestDeriveErrorCode(t *testing.T) {
	assert.Equal(t, "SCORE_OUT_OF_RANGE", deriveErrorCode(fmt.Errorf("insert: %w", codedErr{})))
	assert.Equal(t, "ERRORSTRING", deriveErrorCode(fmt.Errorf("wrap: %w", errors.New("x"))))
	assert.Empty(t, deriveErrorCode(nil))
}

func TestRegistryListsVisibleCommandsWithoutSlash(t *testing.T) {
	var calls []string
	reg := newRegistry(&calls)
	reg.RegisterCommand("nope", commands.Command{Description: "x", Handler: func(tele.Context) error { return nil }})
	reg.RegisterCommand("/view_scores", commands.Command{Description: "dup", Handler: func(tele.Context) error { return nil }})

	assert.Equal(t, []tele.Command{{Text: "view_scores", Description: "Посмотреть баллы"}}, reg.ListCommands(true))
	assert.Len(t, reg.ListCommands(false), 2)

	key, _, ok := reg.LookupCommand("/баллы")
	assert.True(t, ok)
	assert.Equal(t, "/view_scores", key)
	_, _, ok = reg.LookupCommand("")
	assert.False(t, ok)
}
