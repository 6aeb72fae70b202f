package logger

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestParseLogLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"INFO":    zapcore.InfoLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"bogus":   zapcore.InfoLevel,
	}

	for in, expected := range tests {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, expected, parseLogLevel(in))
		})
	}
}

func TestWithContext_RequestID(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	base := zap.New(core)

	ctx := ContextWithRequestID(context.Background(), "req-123")
	WithContext(ctx, base).Info("hello")
	WithContext(context.Background(), base).Info("bare")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "req-123", entries[0].ContextMap()["request_id"])
	assert.NotContains(t, entries[1].ContextMap(), "request_id")
	assert.Equal(t, "req-123", GetRequestID(ctx))
	assert.Empty(t, GetRequestID(context.Background()))
}

func TestNewChannel_SharesCore(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	base := zap.New(core)

	NewChannel(base, Config{}, "requests", "").Info("Request")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "requests", entries[0].LoggerName)
}

func TestNewChannel_OwnFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "requests.log")
	l := NewChannel(zap.NewNop(), Config{Level: "info", Format: "json"}, "requests", path)

	l.Info("Request")
	assert.NoError(t, l.Sync())
	assert.FileExists(t, path)
}

func TestRotation_WithDefaults(t *testing.T) {
	assert.Equal(t, Rotation{MaxSizeMB: 100, MaxBackups: 3, MaxAgeDays: 28}, Rotation{}.withDefaults())
	assert.Equal(t, Rotation{MaxSizeMB: 5, MaxBackups: 3, MaxAgeDays: 1}, Rotation{MaxSizeMB: 5, MaxAgeDays: 1}.withDefaults())
}

func TestNewWithConfig(t *testing.T) {
	l, err := NewWithConfig(Config{Level: "debug", Format: "json", OutputPath: "stderr", ServiceName: "svc"})
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel))
}

func TestGormLogger_Trace(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	gl := NewGormLoggerWithConfig(zap.New(core), 0.1, "info")

	ctx := ContextWithRequestID(context.Background(), "req-1")
	sql := func() (string, int64) { return "SELECT * FROM users", 1 }

	gl.Trace(ctx, time.Now(), sql, nil)
	gl.Trace(ctx, time.Now(), sql, gorm.ErrRecordNotFound)
	gl.Trace(ctx, time.Now(), sql, errors.New("syntax error"))
	gl.Trace(ctx, time.Now().Add(-time.Second), sql, nil)

	entries := logs.All()
	require.Len(t, entries, 4)
	assert.Equal(t, "gorm query", entries[0].Message)
	assert.Equal(t, "gorm query", entries[1].Message)
	assert.Equal(t, "gorm query error", entries[2].Message)
	assert.Equal(t, "gorm slow query", entries[3].Message)
	assert.Equal(t, "req-1", entries[2].ContextMap()["request_id"])
	assert.Equal(t, "gorm", entries[0].LoggerName)
}

func TestGormLogger_Silent(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	gl := NewGormLoggerWithConfig(zap.New(core), 0, "info").LogMode(gormlogger.Silent)

	gl.Trace(context.Background(), time.Now(), func() (string, int64) { return "SELECT 1", 1 }, errors.New("boom"))

	assert.Zero(t, logs.Len())
}
