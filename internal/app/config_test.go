package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfigFromFile(t *testing.T) {
	path := writeConfig(t, `
telegram:
  token: file-token
dialog:
  ttl_seconds: 60
database:
  host: db
  user: scorebot
  password: secret
  name: scores
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "file-token", cfg.Telegram.Token)
	assert.Equal(t, "longpoll", cfg.Telegram.RunMode)
	assert.Equal(t, 60, *cfg.Dialog.TTLSeconds)
	assert.Equal(t, "db", cfg.Database.Host)
	assert.Equal(t, "5432", cfg.Database.Port)
	assert.Equal(t, 10, cfg.Database.MaxConnections)
	assert.Same(t, &cfg.Config, cfg.CoreConfig())
}

func TestLoadConfigEnvOnly(t *testing.T) {
	t.Setenv("BOT_TOKEN", "env-token")
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost/scores?sslmode=disable")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "env-token", cfg.Telegram.Token)
	assert.Equal(t, "postgres://u:p@localhost/scores?sslmode=disable", cfg.Database.DSN())
}

func TestLoadConfigEnvOverridesDatabase(t *testing.T) {
	path := writeConfig(t, "telegram:\n  token: t\ndatabase:\n  user: a\n  name: b\n")
	t.Setenv("DB_HOST", "pg.internal")
	t.Setenv("DB_MAX_CONNECTIONS", "3")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "pg.internal", cfg.Database.Host)
	assert.Equal(t, 3, cfg.Database.MaxConnections)
}

func TestLoadConfigRequiresDatabase(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_USER", "")
	t.Setenv("DB_NAME", "")
	path := writeConfig(t, "telegram:\n  token: t\n")
	_, err := LoadConfig(path)
	assert.ErrorContains(t, err, "database")
}

func TestLoadConfigRequiresToken(t *testing.T) {
	t.Setenv("BOT_TOKEN", "")
	path := writeConfig(t, "database:\n  url: postgres://localhost/x\n")
	_, err := LoadConfig(path)
	assert.ErrorContains(t, err, "token")
}

func TestLoadDatabaseConfigIgnoresTelegram(t *testing.T) {
	path := writeConfig(t, "database:\n  url: postgres://localhost/x\n")
	db, err := loadDatabaseConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "postgres://localhost/x", db.MigrationURL())
}
