package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func writeConfig(t *testing.T) (string, string) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "users.db")
	env := "DB_DRIVER=sqlite\n" +
		"DB_SQLITE_PATH=" + dbPath + "\n" +
		"DB_AUTO_MIGRATE=false\n" +
		"HTTP_PORT=0\n" +
		"LOG_OUTPUT_PATH=stderr\n" +
		"SWAGGER_ENABLED=false\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.env"), []byte(env), 0o600))
	return dir, dbPath
}

func TestMigrate(t *testing.T) {
	dir, dbPath := writeConfig(t)

	require.NoError(t, Migrate(dir))

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	assert.True(t, db.Migrator().HasTable("users"))
}

func TestNewAndRun(t *testing.T) {
	dir, _ := writeConfig(t)

	a, err := New(dir)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", a.Config.DB.Driver)
	require.NotNil(t, a.Server.HTTP)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.NoError(t, a.Run(ctx))
}
