package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	gormlogger "gorm.io/gorm/logger"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("info"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel("warning"))
	assert.Equal(t, zapcore.ErrorLevel, parseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("nonsense"))
}

func TestNew(t *testing.T) {
	log, err := New(&Config{Level: "info", Format: "json", Output: "stdout"})
	require.NoError(t, err)
	require.NotNil(t, log)
}

func TestNewForEnvironment(t *testing.T) {
	prod, err := NewForEnvironment("production")
	require.NoError(t, err)
	require.NotNil(t, prod)

	dev, err := NewForEnvironment("development")
	require.NoError(t, err)
	require.NotNil(t, dev)
}

func TestContextRoundTrip(t *testing.T) {
	log := zap.NewNop()
	ctx := context.Background()

	ctx, enriched := WithRequestID(ctx, log, "req-123")
	assert.Equal(t, "req-123", GetRequestID(ctx))
	assert.NotNil(t, enriched)
	assert.Same(t, enriched, FromContext(ctx))
}

func TestFromContext_Missing(t *testing.T) {
	log := FromContext(context.Background())
	require.NotNil(t, log)
}

func TestMapGormLogLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Silent, MapGormLogLevel("silent"))
	assert.Equal(t, gormlogger.Error, MapGormLogLevel("error"))
	assert.Equal(t, gormlogger.Info, MapGormLogLevel("debug"))
	assert.Equal(t, gormlogger.Warn, MapGormLogLevel("unknown"))
}
