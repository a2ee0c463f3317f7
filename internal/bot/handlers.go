// Package bot implements the student registration and exam score dialogs.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/m3rciful/scorebot/core/logger"
	tg "github.com/m3rciful/scorebot/core/telegram"
	"github.com/m3rciful/scorebot/core/telegram/commands"
	tghelpers "github.com/m3rciful/scorebot/core/telegram/helpers"
	"github.com/m3rciful/scorebot/core/telegram/state"
	"github.com/m3rciful/scorebot/internal/storage"

	tele "gopkg.in/telebot.v4"
)

// Store is the persistence the handlers depend on. *storage.Store implements it.
type Store interface {
	RegisterStudent(ctx context.Context, userID int64, firstName, lastName string) error
	FindStudent(ctx context.Context, userID int64) (storage.Student, error)
	InsertScore(ctx context.Context, studentID int64, subject string, score int) error
	ListScores(ctx context.Context, studentID int64) ([]storage.Score, error)
	DeleteScores(ctx context.Context, studentID int64) (int64, error)
}

var _ Store = (*storage.Store)(nil)

// Bot holds the command and dialog handlers.
type Bot struct {
	store Store
	fsm   state.Manager
}

// New builds the handlers on top of store and the session manager fsm.
func New(store Store, fsm state.Manager) *Bot {
	return &Bot{store: store, fsm: fsm}
}

// Register adds the slash commands to reg and the dialog steps to the session manager.
func (b *Bot) Register(reg *tg.Registry) {
	reg.RegisterCommand("/start", commands.Command{
		Handler:     b.start,
		Description: descStart,
		Aliases:     []string{"help"},
	})
	reg.RegisterCommand("/register", commands.Command{
		Handler:     b.register,
		Description: descRegister,
	})
	reg.RegisterCommand("/enter_scores", commands.Command{
		Handler:     b.enterScores,
		Description: descEnterScores,
	})
	reg.RegisterCommand("/view_scores", commands.Command{
		Handler:     b.viewScores,
		Description: descViewScores,
	})
	reg.RegisterCommand("/delete_scores", commands.Command{
		Handler:     b.deleteScores,
		Description: descDeleteScores,
	})
	b.registerDialogs()
}

func (b *Bot) start(c tele.Context) error {
	return tghelpers.ReplyText(c, msgWelcome)
}

func (b *Bot) register(c tele.Context) error {
	b.begin(c.Sender().ID, StateAwaitFirstName)
	return prompt(c, msgAskFirstName)
}

// lookupStudent resolves the sender. ok is false when a reply was already sent:
// guidance for an unregistered sender, or failText when the lookup failed.
func (b *Bot) lookupStudent(c tele.Context, failText string) (storage.Student, bool, error) {
	st, err := tghelpers.CurrentUser(c, b.store.FindStudent)
	switch {
	case err == nil:
		return st, true, nil
	case errors.Is(err, storage.ErrStudentNotFound):
		return storage.Student{}, false, tghelpers.ReplyText(c, msgNotRegistered)
	default:
		_ = tghelpers.ReplyText(c, failText)
		return storage.Student{}, false, fmt.Errorf("find student: %w", err)
	}
}

func (b *Bot) enterScores(c tele.Context) error {
	st, ok, err := b.lookupStudent(c, msgSaveFailed)
	if !ok {
		return err
	}
	uid := c.Sender().ID
	b.begin(uid, StateAwaitSubject)
	b.fsm.SetTemp(uid, keyStudentID, st.ID)
	return prompt(c, msgAskSubject)
}

// formatScores renders one "subject: score" line per entry in the given order.
func formatScores(scores []storage.Score) string {
	var sb strings.Builder
	sb.WriteString(msgScoresHeader)
	for _, sc := range scores {
		fmt.Fprintf(&sb, "%s: %d\n", sc.Subject, sc.Value)
	}
	return sb.String()
}

func (b *Bot) viewScores(c tele.Context) error {
	st, ok, err := b.lookupStudent(c, msgViewFailed)
	if !ok {
		return err
	}
	scores, err := b.store.ListScores(tghelpers.BuildContext(c), st.ID)
	if err != nil {
		_ = tghelpers.ReplyText(c, msgViewFailed)
		return fmt.Errorf("list scores: %w", err)
	}
	if len(scores) == 0 {
		return tghelpers.ReplyText(c, msgNoScores)
	}
	return tghelpers.ReplyText(c, formatScores(scores))
}

func (b *Bot) deleteScores(c tele.Context) error {
	st, ok, err := b.lookupStudent(c, msgDeleteFailed)
	if !ok {
		return err
	}
	ctx := tghelpers.BuildContext(c)
	n, err := b.store.DeleteScores(ctx, st.ID)
	if err != nil {
		_ = tghelpers.ReplyText(c, msgDeleteFailed)
		return fmt.Errorf("delete scores: %w", err)
	}
	logger.Info(ctx, logger.CompScores, "scores.deleted",
		slog.String("status", "ok"),
		slog.Int64("student_id", st.ID),
		slog.Int64("count", n),
	)
	return tghelpers.ReplyText(c, msgScoresDeleted)
}
