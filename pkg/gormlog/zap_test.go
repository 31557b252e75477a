package gormlog

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/fatflowers/saasgen/pkg/logctx"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Silent, ParseLevel("silent"))
	assert.Equal(t, gormlogger.Error, ParseLevel("ERROR"))
	assert.Equal(t, gormlogger.Info, ParseLevel("info"))
	assert.Equal(t, gormlogger.Warn, ParseLevel(""))
	assert.Equal(t, gormlogger.Warn, ParseLevel("verbose"))
}

func TestZapLogger_Trace(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := New(zap.New(core).Sugar(), gormlogger.Warn)
	ctx := logctx.WithRunID(context.Background(), "run-1")
	fc := func() (string, int64) { return "INSERT INTO customers " + strings.Repeat("(?),", 300), 3 }

	l.Trace(ctx, time.Now(), fc, nil)
	require.Equal(t, 0, logs.Len(), "fast queries are not logged at warn")

	l.Trace(ctx, time.Now(), fc, gorm.ErrRecordNotFound)
	require.Equal(t, 0, logs.Len())

	l.Trace(ctx, time.Now(), fc, errors.New("boom"))
	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "gorm_trace", entry.Message)
	fields := entry.ContextMap()
	assert.Equal(t, "run-1", fields["run_id"])
	assert.Equal(t, int64(3), fields["rows"])
	assert.True(t, strings.HasSuffix(fields["sql"].(string), "..."))

	l.Trace(ctx, time.Now().Add(-3*time.Second), fc, nil)
	require.Equal(t, 2, logs.Len())
	assert.Equal(t, "gorm_slow", logs.All()[1].Message)

	l.LogMode(gormlogger.Silent).Trace(ctx, time.Now(), fc, errors.New("boom"))
	require.Equal(t, 2, logs.Len())
}

func TestShortCaller(t *testing.T) {
	assert.Equal(t, "internal/platform/db/db.go:38", shortCaller("/Users/alex/repo/internal/platform/db/db.go:38"))
	assert.Equal(t, "a/b/c.go:1", shortCaller("/x/y/a/b/c.go:1"))
	assert.Equal(t, "c.go:1", shortCaller("/c.go:1"))
	assert.Equal(t, "", shortCaller(""))
}
