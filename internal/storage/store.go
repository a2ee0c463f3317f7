// Package storage persists students and their exam scores in PostgreSQL.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/bool64/sqluct"
	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/scorebot/core/database"
	"github.com/m3rciful/scorebot/core/logger"
	"github.com/m3rciful/scorebot/core/metrics"
)

// Store is the PostgreSQL gateway. It is safe for concurrent use.
type Store struct {
	db *sqlx.DB
	sq sq.StatementBuilderType
	sm sqluct.Mapper
}

// New wraps an open pool.
func New(db *sqlx.DB) *Store {
	return &Store{
		db: db,
		sq: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
		sm: sqluct.Mapper{Dialect: sqluct.DialectPostgres},
	}
}

// observe records latency and a debug line for op, labelling the outcome from *errp.
func (s *Store) observe(ctx context.Context, component, op string, start time.Time, errp *error, attrs ...slog.Attr) {
	took := time.Since(start)
	status := "ok"
	level := slog.LevelDebug
	switch err := *errp; {
	case errors.Is(err, ErrStudentNotFound):
		status = "not_found"
	case err != nil:
		status = "fail"
		level = slog.LevelWarn
	}
	metrics.StoreDuration.WithLabelValues(op, status).Observe(took.Seconds())

	attrs = append(attrs,
		slog.String("status", status),
		slog.String("op", op),
		slog.Duration("duration", took),
	)
	if status == "fail" {
		attrs = append(attrs, logger.Err(*errp))
	}
	logger.LogEvent(ctx, logger.Component(component), level, "store."+op, attrs...)
}

func (s *Store) insertStudentQuery(st Student) sq.InsertBuilder {
	return s.sm.Insert(s.sq.Insert(tableStudents), st).
		Suffix("ON CONFLICT (user_id) DO NOTHING")
}

// RegisterStudent inserts the student unless userID is already registered.
// The first registration wins; a repeat is not an error.
func (s *Store) RegisterStudent(ctx context.Context, userID int64, firstName, lastName string) (err error) {
	const op = "register_student"
	defer s.observe(ctx, logger.CompStudents, op, time.Now(), &err)

	query, args, err := s.insertStudentQuery(Student{UserID: userID, FirstName: firstName, LastName: lastName}).ToSql()
	if err != nil {
		return &OpError{Op: op, Err: err}
	}
	err = database.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		_, execErr := tx.ExecContext(ctx, query, args...)
		return execErr
	})
	if err != nil {
		return &OpError{Op: op, Err: classify(err)}
	}
	return nil
}

func (s *Store) findStudentQuery(userID int64) sq.SelectBuilder {
	return s.sm.Select(s.sq.Select(), &Student{}).
		From(tableStudents).
		Where(sq.Eq{"user_id": userID})
}

// FindStudent returns the student registered under userID or ErrStudentNotFound.
func (s *Store) FindStudent(ctx context.Context, userID int64) (st Student, err error) {
	const op = "find_student"
	defer s.observe(ctx, logger.CompStudents, op, time.Now(), &err)

	query, args, err := s.findStudentQuery(userID).ToSql()
	if err != nil {
		return Student{}, &OpError{Op: op, Err: err}
	}
	if err = s.db.GetContext(ctx, &st, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Student{}, &OpError{Op: op, Err: ErrStudentNotFound}
		}
		return Student{}, &OpError{Op: op, Err: err}
	}
	return st, nil
}

func (s *Store) insertScoreQuery(sc Score) sq.InsertBuilder {
	return s.sm.Insert(s.sq.Insert(tableScores), sc)
}

// InsertScore adds a score. The database enforces the 0..100 range and the student reference.
func (s *Store) InsertScore(ctx context.Context, studentID int64, subject string, score int) (err error) {
	const op = "insert_score"
	defer s.observe(ctx, logger.CompScores, op, time.Now(), &err,
		slog.Int64("student_id", studentID),
		slog.Int("score", score),
	)

	query, args, err := s.insertScoreQuery(Score{StudentID: studentID, Subject: subject, Value: score}).ToSql()
	if err != nil {
		return &OpError{Op: op, Err: err}
	}
	err = database.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		_, execErr := tx.ExecContext(ctx, query, args...)
		return execErr
	})
	if err != nil {
		return &OpError{Op: op, Err: classify(err)}
	}
	return nil
}

func (s *Store) listScoresQuery(studentID int64) sq.SelectBuilder {
	return s.sm.Select(s.sq.Select(), &Score{}).
		From(tableScores).
		Where(sq.Eq{"student_id": studentID}).
		OrderBy("id")
}

// ListScores returns the student's scores in insertion order.
func (s *Store) ListScores(ctx context.Context, studentID int64) (scores []Score, err error) {
	const op = "list_scores"
	defer s.observe(ctx, logger.CompScores, op, time.Now(), &err, slog.Int64("student_id", studentID))

	query, args, err := s.listScoresQuery(studentID).ToSql()
	if err != nil {
		return nil, &OpError{Op: op, Err: err}
	}
	if err = s.db.SelectContext(ctx, &scores, query, args...); err != nil {
		return nil, &OpError{Op: op, Err: err}
	}
	return scores, nil
}

func (s *Store) deleteScoresQuery(studentID int64) sq.DeleteBuilder {
	return s.sq.Delete(tableScores).Where(sq.Eq{"student_id": studentID})
}

// DeleteScores removes every score of the student and reports how many were removed.
func (s *Store) DeleteScores(ctx context.Context, studentID int64) (removed int64, err error) {
	const op = "delete_scores"
	defer s.observe(ctx, logger.CompScores, op, time.Now(), &err, slog.Int64("student_id", studentID))

	query, args, err := s.deleteScoresQuery(studentID).ToSql()
	if err != nil {
		return 0, &OpError{Op: op, Err: err}
	}
	err = database.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		res, execErr := tx.ExecContext(ctx, query, args...)
		if execErr != nil {
			return execErr
		}
		removed, execErr = res.RowsAffected()
		return execErr
	})
	if err != nil {
		return 0, &OpError{Op: op, Err: err}
	}
	return removed, nil
}

// Ping checks that the pool can reach the server.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
