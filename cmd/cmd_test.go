package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := NewRootCommand()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestHashPasswordCommand(t *testing.T) {
	out, err := run(t, "hash-password", "--password", "s3cret")
	require.NoError(t, err)

	hash := strings.TrimSpace(out)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("s3cret")))
}

func TestHashPasswordCommand_RequiresPassword(t *testing.T) {
	_, err := run(t, "hash-password")
	assert.Error(t, err)
}

func TestMigrateCommand_SQLite(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "catalog.db")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DATABASE_DSN", dsn)
	t.Setenv("LOG_LEVEL", "error")

	_, err := run(t, "migrate")
	require.NoError(t, err)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	defer sqlDB.Close()

	assert.True(t, db.Migrator().HasTable("products"))
}

func TestMigrateCommand_MemoryDriver(t *testing.T) {
	t.Setenv("DB_DRIVER", "memory")

	_, err := run(t, "migrate")
	assert.ErrorContains(t, err, "no schema")
}

func TestEventsCommand_RequiresBroker(t *testing.T) {
	t.Setenv("DB_DRIVER", "memory")

	_, err := run(t, "events")
	assert.ErrorContains(t, err, "RABBITMQ_URL")
}

func TestCommands_InvalidConfigFile(t *testing.T) {
	_, err := run(t, "migrate", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestCommands_ReadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte("DB_DRIVER: memory\nLOG_LEVEL: error\n"), 0o600))

	t.Setenv("DB_DRIVER", "")

	// The memory driver only reaches migrate through the file.
	_, err := run(t, "migrate", "--config", path)
	assert.ErrorContains(t, err, "no schema")

	_, err = run(t, "events", "--config", path)
	assert.ErrorContains(t, err, "RABBITMQ_URL")
}
