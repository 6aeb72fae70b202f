package di

import (
	"context"
	"net"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"user-crud-service/internal/adapter/cache"
	"user-crud-service/internal/config"
	domain "user-crud-service/internal/domain/user"
	"user-crud-service/internal/usecase/user"
)

func sqliteConfig(t *testing.T) *config.Config {
	return &config.Config{
		Env: "test",
		DB: config.DatabaseConfig{
			Driver:      "sqlite",
			SQLitePath:  filepath.Join(t.TempDir(), "users.db"),
			AutoMigrate: true,
		},
		App:    config.AppConfig{HTTPPort: "0", ShutdownTimeoutSeconds: 1},
		Logger: config.LoggerConfig{Level: "info", RequestLogMaxContent: 10000},
	}
}

func TestNewContainer_SQLiteOnly(t *testing.T) {
	c, err := NewContainer(sqliteConfig(t), zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, c.Close()) })

	assert.Nil(t, c.RedisClient)
	assert.Nil(t, c.RateLimiter)
	assert.NotNil(t, c.Validator)
	assert.NoError(t, c.Ping(context.Background()))

	resp, err := c.UserUC.ListUsers(context.Background())
	require.NoError(t, err)
	assert.Empty(t, resp.Users)
}

func TestNewContainer_WithRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	host, port, err := net.SplitHostPort(mr.Addr())
	require.NoError(t, err)

	cfg := sqliteConfig(t)
	cfg.Redis = config.RedisConfig{Enabled: true, Host: host, Port: port, PoolSize: 2, CacheTTL: 60}
	cfg.RateLimit = config.RateLimitConfig{Enabled: true, RequestsPerSecond: 5, BurstCapacity: 5}

	c, err := NewContainer(cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, c.Close()) })

	require.NotNil(t, c.RedisClient)
	assert.NotNil(t, c.RateLimiter)
	assert.NoError(t, c.Ping(context.Background()))

	name, email, age := "Ann", "ann@example.com", 30
	created, err := c.UserUC.CreateUser(context.Background(), user.CreateUserRequest{})
	assert.Error(t, err)
	assert.Nil(t, created)

	created, err = c.UserUC.CreateUser(context.Background(), user.CreateUserRequest{
		Fields: domain.Fields{Name: &name, Email: &email, Age: &age},
	})
	require.NoError(t, err)

	_, err = c.UserUC.GetUser(context.Background(), user.GetUserRequest{ID: created.ID})
	require.NoError(t, err)
	assert.True(t, mr.Exists(cache.Key(created.ID)))

	mr.Close()
	assert.Error(t, c.Ping(context.Background()))
}

func TestNewContainer_InvalidConfig(t *testing.T) {
	cfg := sqliteConfig(t)
	cfg.DB.Driver = "mysql"

	_, err := NewContainer(cfg, zaptest.NewLogger(t))

	assert.ErrorContains(t, err, "config validation failed")
}
