package storage

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueries(t *testing.T) {
	s := New(nil)

	query, args, err := s.insertStudentQuery(Student{UserID: 42, FirstName: "Ann", LastName: "Lee"}).ToSql()
	require.NoError(t, err)
	assert.Contains(t, query, "INSERT INTO students")
	assert.Contains(t, query, "ON CONFLICT (user_id) DO NOTHING")
	assert.Equal(t, []any{int64(42), "Ann", "Lee"}, args)

	query, args, err = s.insertScoreQuery(Score{StudentID: 7, Subject: "Math", Value: 0}).ToSql()
	require.NoError(t, err)
	assert.Contains(t, query, "INSERT INTO scores")
	assert.Equal(t, []any{int64(7), "Math", 0}, args)

	query, args, err = s.findStudentQuery(42).ToSql()
	require.NoError(t, err)
	assert.Contains(t, query, "FROM students WHERE user_id = $1")
	assert.Equal(t, []any{int64(42)}, args)

	query, args, err = s.listScoresQuery(7).ToSql()
	require.NoError(t, err)
	assert.Contains(t, query, "FROM scores WHERE student_id = $1 ORDER BY id")
	assert.Equal(t, []any{int64(7)}, args)

	query, args, err = s.deleteScoresQuery(7).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "DELETE FROM scores WHERE student_id = $1", query)
	assert.Equal(t, []any{int64(7)}, args)
}

func TestClassify(t *testing.T) {
	check := &pq.Error{Code: "23514", Message: `new row violates check constraint "scores_score_check"`}
	fk := &pq.Error{Code: "23503", Message: "insert or update violates foreign key constraint"}
	unique := &pq.Error{Code: "23505"}

	err := &OpError{Op: "insert_score", Err: classify(check)}
	assert.ErrorIs(t, err, ErrScoreOutOfRange)
	assert.Equal(t, "score_out_of_range", err.Code())

	err = &OpError{Op: "insert_score", Err: classify(fmt.Errorf("exec: %w", fk))}
	assert.ErrorIs(t, err, ErrStudentNotFound)
	assert.Equal(t, "student_not_found", err.Code())

	err = &OpError{Op: "register_student", Err: classify(unique)}
	assert.False(t, errors.Is(err, ErrScoreOutOfRange))
	assert.Equal(t, "pg_unique_violation", err.Code())

	err = &OpError{Op: "list_scores", Err: errors.New("conn reset")}
	assert.Equal(t, "store_list_scores", err.Code())
	assert.Equal(t, "storage: list_scores: conn reset", err.Error())
}
