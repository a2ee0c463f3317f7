package bootstrap

import (
	"context"
	"errors"
	"io/fs"
	"testing"
	"testing/fstest"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coreconfig "github.com/m3rciful/scorebot/core/config"
	coredatabase "github.com/m3rciful/scorebot/core/database"
)

func TestRunOrder(t *testing.T) {
	var steps []string
	db := &sqlx.DB{}
	res, err := Run(context.Background(), Options{
		Config:     &coreconfig.Config{},
		Migrations: fstest.MapFS{},
		LoggerInit: func(*coreconfig.Config) error { steps = append(steps, "logger"); return nil },
		Migrate: func(context.Context, coredatabase.Config, fs.FS) error {
			steps = append(steps, "migrate")
			return nil
		},
		Connect: func(context.Context, coredatabase.Config) (*sqlx.DB, error) {
			steps = append(steps, "connect")
			return db, nil
		},
	})
	require.NoError(t, err)
	assert.Same(t, db, res.DB)
	assert.Equal(t, []string{"logger", "migrate", "connect"}, steps)
}

func TestRunStopsOnMigrationError(t *testing.T) {
	connected := false
	_, err := Run(context.Background(), Options{
		Config:     &coreconfig.Config{},
		Migrations: fstest.MapFS{},
		LoggerInit: func(*coreconfig.Config) error { return nil },
		Migrate: func(context.Context, coredatabase.Config, fs.FS) error {
			return errors.New("dirty database")
		},
		Connect: func(context.Context, coredatabase.Config) (*sqlx.DB, error) {
			connected = true
			return nil, nil
		},
	})
	require.ErrorContains(t, err, "bootstrap: migrations failed: dirty database")
	assert.False(t, connected)
}

func TestRunRequiresConfig(t *testing.T) {
	_, err := Run(context.Background(), Options{})
	assert.Error(t, err)
}
