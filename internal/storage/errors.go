package storage

import (
	"errors"

	"github.com/lib/pq"
)

var (
	// ErrStudentNotFound is returned when no student matches, including a score
	// insert that references a missing student.
	ErrStudentNotFound = errors.New("student not found")
	// ErrScoreOutOfRange is returned when the database rejects a score outside 0..100.
	ErrScoreOutOfRange = errors.New("score out of range")
)

// OpError records the failed store operation.
type OpError struct {
	Op  string
	Err error
}

func (e *OpError) Error() string { return "storage: " + e.Op + ": " + e.Err.Error() }

func (e *OpError) Unwrap() error { return e.Err }

// Code classifies the failure for logs.
func (e *OpError) Code() string {
	switch {
	case errors.Is(e.Err, ErrStudentNotFound):
		return "student_not_found"
	case errors.Is(e.Err, ErrScoreOutOfRange):
		return "score_out_of_range"
	}
	var pqErr *pq.Error
	if errors.As(e.Err, &pqErr) {
		return "pg_" + pqErr.Code.Name()
	}
	return "store_" + e.Op
}

// classify maps Postgres constraint violations onto the package sentinels.
func classify(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	switch pqErr.Code.Name() {
	case "check_violation":
		return errors.Join(ErrScoreOutOfRange, err)
	case "foreign_key_violation":
		return errors.Join(ErrStudentNotFound, err)
	}
	return err
}
