package bot

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/m3rciful/scorebot/core/logger"
	tghelpers "github.com/m3rciful/scorebot/core/telegram/helpers"
	"github.com/m3rciful/scorebot/core/telegram/keyboard"
	"github.com/m3rciful/scorebot/core/telegram/state"
	"github.com/m3rciful/scorebot/internal/storage"

	tele "gopkg.in/telebot.v4"
)

// Dialog states. Registration: first name, then last name.
// Score entry: subject, then score.
const (
	StateAwaitFirstName state.State = "register.await_first_name"
	StateAwaitLastName  state.State = "register.await_last_name"
	StateAwaitSubject   state.State = "scores.await_subject"
	StateAwaitScore     state.State = "scores.await_score"
)

const (
	keyFirstName = "first_name"
	keyStudentID = "student_id"
	keySubject   = "subject"
)

const (
	minScore = 0
	maxScore = 100
)

var (
	errNotNumber  = errors.New("score is not a number")
	errScoreRange = errors.New("score out of range")
)

func (b *Bot) registerDialogs() {
	b.fsm.Handle(StateAwaitFirstName, b.onFirstName)
	b.fsm.Handle(StateAwaitLastName, b.onLastName)
	b.fsm.Handle(StateAwaitSubject, b.onSubject)
	b.fsm.Handle(StateAwaitScore, b.onScore)
}

// begin replaces any pending dialog of the sender with a fresh one at st.
func (b *Bot) begin(userID int64, st state.State) {
	b.fsm.Clear(userID)
	b.fsm.SetState(userID, st)
}

func prompt(c tele.Context, text string) error {
	return tghelpers.ReplyText(c, text, keyboard.ForceReply())
}

func (b *Bot) onFirstName(c tele.Context) error {
	uid := c.Sender().ID
	b.fsm.SetTemp(uid, keyFirstName, c.Text())
	b.fsm.SetState(uid, StateAwaitLastName)
	return prompt(c, msgAskLastName)
}

func (b *Bot) onLastName(c tele.Context) error {
	uid := c.Sender().ID
	firstName, _ := b.fsm.GetTempString(uid, keyFirstName)
	lastName := c.Text()
	b.fsm.Clear(uid)

	ctx := tghelpers.BuildContext(c)
	if err := b.store.RegisterStudent(ctx, uid, firstName, lastName); err != nil {
		_ = tghelpers.ReplyText(c, msgRegisterFailed)
		return fmt.Errorf("register student: %w", err)
	}
	logger.Info(ctx, logger.CompStudents, "student.registered", slog.String("status", "ok"))
	return tghelpers.ReplyText(c, fmt.Sprintf(msgRegistered, firstName, lastName))
}

func (b *Bot) onSubject(c tele.Context) error {
	uid := c.Sender().ID
	b.fsm.SetTemp(uid, keySubject, c.Text())
	b.fsm.SetState(uid, StateAwaitScore)
	return prompt(c, msgAskScore)
}

// parseScore accepts an optionally signed decimal integer surrounded by spaces.
func parseScore(text string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return 0, errNotNumber
	}
	if n < minScore || n > maxScore {
		return n, fmt.Errorf("%w: %d", errScoreRange, n)
	}
	return n, nil
}

// onScore is the last step. Invalid input ends the dialog too, so the user
// starts over with /enter_scores.
func (b *Bot) onScore(c tele.Context) error {
	uid := c.Sender().ID
	studentID, _ := b.fsm.GetTempInt64(uid, keyStudentID)
	subject, _ := b.fsm.GetTempString(uid, keySubject)
	b.fsm.Clear(uid)

	ctx := tghelpers.BuildContext(c)
	score, err := parseScore(c.Text())
	if err != nil {
		logger.Info(ctx, logger.CompScores, "score.rejected",
			slog.String("status", "skip"),
			slog.String("cause", err.Error()),
		)
		if errors.Is(err, errScoreRange) {
			return tghelpers.ReplyText(c, msgScoreOutOfRange)
		}
		return tghelpers.ReplyText(c, msgInvalidNumber)
	}

	if err := b.store.InsertScore(ctx, studentID, subject, score); err != nil {
		if errors.Is(err, storage.ErrScoreOutOfRange) {
			return tghelpers.ReplyText(c, msgScoreOutOfRange)
		}
		_ = tghelpers.ReplyText(c, msgSaveFailed)
		return fmt.Errorf("insert score: %w", err)
	}
	logger.Info(ctx, logger.CompScores, "score.saved",
		slog.String("status", "ok"),
		slog.Int64("student_id", studentID),
		slog.String("subject", logger.SanitizeLimit(subject, 50)),
		slog.Int("score", score),
	)
	return tghelpers.ReplyText(c, msgScoreSaved)
}
