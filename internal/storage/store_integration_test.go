//go:build integration

package storage

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/m3rciful/scorebot/core/database"
	"github.com/m3rciful/scorebot/migrations"
)

var testStore *Store

func TestMain(m *testing.M) {
	os.Exit(runWithPostgres(m))
}

func runWithPostgres(m *testing.M) int {
	ctx := context.Background()
	pg, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("scorebot"),
		postgres.WithUsername("scorebot"),
		postgres.WithPassword("scorebot"),
		postgres.BasicWaitStrategies(),
	)
	defer func() { _ = testcontainers.TerminateContainer(pg) }()
	if err != nil {
		panic(err)
	}

	dsn, err := pg.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		panic(err)
	}
	cfg := database.Config{URL: dsn}
	if err := cfg.Normalize(); err != nil {
		panic(err)
	}
	if err := database.RunMigrations(ctx, cfg, migrations.FS); err != nil {
		panic(err)
	}
	db, err := database.Connect(ctx, cfg)
	if err != nil {
		panic(err)
	}
	defer db.Close()

	testStore = New(db)
	return m.Run()
}

func reset(t *testing.T) *Store {
	t.Helper()
	_, err := testStore.db.Exec("TRUNCATE scores, students RESTART IDENTITY CASCADE")
	require.NoError(t, err)
	return testStore
}

func countRows(t *testing.T, s *Store, table string) int {
	t.Helper()
	var n int
	require.NoError(t, s.db.Get(&n, "SELECT count(*) FROM "+table))
	return n
}

func TestRegisterStudentIsIdempotent(t *testing.T) {
	s := reset(t)
	ctx := context.Background()

	pairs := [][2]string{{"Ann", "Lee"}, {"Иван", "Петров"}, {"O'Neil", "D'Arcy"}}
	for i, p := range pairs {
		require.NoError(t, s.RegisterStudent(ctx, int64(100+i), p[0], p[1]))
	}
	assert.Equal(t, len(pairs), countRows(t, s, "students"))

	require.NoError(t, s.RegisterStudent(ctx, 100, "Someone", "Else"))
	assert.Equal(t, len(pairs), countRows(t, s, "students"))

	st, err := s.FindStudent(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, "Ann", st.FirstName)
	assert.Equal(t, "Lee", st.LastName)
	assert.Equal(t, int64(100), st.UserID)
}

func TestFindStudentMissing(t *testing.T) {
	s := reset(t)
	_, err := s.FindStudent(context.Background(), 1)
	assert.ErrorIs(t, err, ErrStudentNotFound)
}

func TestInsertScoreRange(t *testing.T) {
	s := reset(t)
	ctx := context.Background()
	require.NoError(t, s.RegisterStudent(ctx, 1, "Ann", "Lee"))
	st, err := s.FindStudent(ctx, 1)
	require.NoError(t, err)

	valid := []int{0, 1, 50, 87, 99, 100}
	for _, v := range valid {
		require.NoError(t, s.InsertScore(ctx, st.ID, "Math", v))
	}
	for _, v := range []int{-1, 101, -100, 1000} {
		assert.ErrorIs(t, s.InsertScore(ctx, st.ID, "Math", v), ErrScoreOutOfRange, "score %d", v)
	}

	scores, err := s.ListScores(ctx, st.ID)
	require.NoError(t, err)
	require.Len(t, scores, len(valid))
	for i, sc := range scores {
		assert.Equal(t, valid[i], sc.Value)
		assert.Equal(t, "Math", sc.Subject)
		assert.Equal(t, st.ID, sc.StudentID)
	}
}

func TestInsertScoreUnknownStudent(t *testing.T) {
	s := reset(t)
	err := s.InsertScore(context.Background(), 999, "Math", 50)
	assert.ErrorIs(t, err, ErrStudentNotFound)
	assert.Zero(t, countRows(t, s, "scores"))
}

func TestDeleteScoresOnlyOwnRows(t *testing.T) {
	s := reset(t)
	ctx := context.Background()
	require.NoError(t, s.RegisterStudent(ctx, 1, "Ann", "Lee"))
	require.NoError(t, s.RegisterStudent(ctx, 2, "Bob", "Ray"))
	ann, err := s.FindStudent(ctx, 1)
	require.NoError(t, err)
	bob, err := s.FindStudent(ctx, 2)
	require.NoError(t, err)

	require.NoError(t, s.InsertScore(ctx, ann.ID, "Math", 87))
	require.NoError(t, s.InsertScore(ctx, ann.ID, "Physics", 90))
	require.NoError(t, s.InsertScore(ctx, bob.ID, "Math", 70))

	removed, err := s.DeleteScores(ctx, ann.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	left, err := s.ListScores(ctx, ann.ID)
	require.NoError(t, err)
	assert.Empty(t, left)

	bobs, err := s.ListScores(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, bobs, 1)
	assert.Equal(t, 70, bobs[0].Value)

	removed, err = s.DeleteScores(ctx, ann.ID)
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestPing(t *testing.T) {
	assert.NoError(t, reset(t).Ping(context.Background()))
}
