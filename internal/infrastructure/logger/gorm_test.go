package logger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

var _ gormlogger.Interface = (*GormLogger)(nil)

func newObservedGormLogger(level gormlogger.LogLevel, opts ...GormLoggerOption) (*GormLogger, *observer.ObservedLogs) {
	core, recorded := observer.New(zapcore.DebugLevel)
	return NewGormLogger(zap.New(core), level, opts...), recorded
}

func saleQuery() (string, int64) {
	return `SELECT * FROM "sales" WHERE fair_id = $1`, 3
}

func TestGormLoggerLogMode(t *testing.T) {
	gl, _ := newObservedGormLogger(gormlogger.Warn)

	silenced := gl.LogMode(gormlogger.Silent)
	require.NotNil(t, silenced)
	// The original keeps its level
	assert.Equal(t, gormlogger.Warn, gl.logLevel)
}

func TestGormLoggerMessageLevels(t *testing.T) {
	t.Run("info passes at info level", func(t *testing.T) {
		gl, recorded := newObservedGormLogger(gormlogger.Info)
		gl.Info(context.Background(), "migrating %s", "sales")
		assert.Equal(t, 1, recorded.Len())
	})

	t.Run("info suppressed at warn level", func(t *testing.T) {
		gl, recorded := newObservedGormLogger(gormlogger.Warn)
		gl.Info(context.Background(), "migrating %s", "sales")
		assert.Zero(t, recorded.Len())
	})

	t.Run("warn and error pass", func(t *testing.T) {
		gl, recorded := newObservedGormLogger(gormlogger.Warn)
		gl.Warn(context.Background(), "pool saturated")
		gl.Error(context.Background(), "connection lost")
		assert.Equal(t, 2, recorded.Len())
	})
}

func TestGormLoggerTrace(t *testing.T) {
	t.Run("failed statement logs at error", func(t *testing.T) {
		gl, recorded := newObservedGormLogger(gormlogger.Error)
		gl.Trace(context.Background(), time.Now(), saleQuery, assert.AnError)

		logs := recorded.All()
		require.Len(t, logs, 1)
		assert.Equal(t, zapcore.ErrorLevel, logs[0].Level)
		assert.Equal(t, "SQL error", logs[0].Message)
	})

	t.Run("record not found is suppressed by default", func(t *testing.T) {
		gl, recorded := newObservedGormLogger(gormlogger.Error)
		gl.Trace(context.Background(), time.Now(), saleQuery, gormlogger.ErrRecordNotFound)
		assert.Zero(t, recorded.Len())
	})

	t.Run("record not found logs when re-enabled", func(t *testing.T) {
		gl, recorded := newObservedGormLogger(gormlogger.Error, WithRecordNotFoundLogging())
		gl.Trace(context.Background(), time.Now(), saleQuery, gormlogger.ErrRecordNotFound)
		assert.Equal(t, 1, recorded.Len())
	})

	t.Run("slow statement logs at warn", func(t *testing.T) {
		gl, recorded := newObservedGormLogger(gormlogger.Warn, WithSlowThreshold(time.Nanosecond))
		gl.Trace(context.Background(), time.Now().Add(-time.Second), saleQuery, nil)

		logs := recorded.All()
		require.Len(t, logs, 1)
		assert.Equal(t, zapcore.WarnLevel, logs[0].Level)
		assert.Equal(t, "Slow SQL", logs[0].Message)
	})

	t.Run("normal statement logs at debug", func(t *testing.T) {
		gl, recorded := newObservedGormLogger(gormlogger.Info, WithSlowThreshold(time.Hour))
		gl.Trace(context.Background(), time.Now(), saleQuery, nil)

		logs := recorded.All()
		require.Len(t, logs, 1)
		assert.Equal(t, zapcore.DebugLevel, logs[0].Level)
	})

	t.Run("silent level drops everything", func(t *testing.T) {
		gl, recorded := newObservedGormLogger(gormlogger.Silent)
		gl.Trace(context.Background(), time.Now(), saleQuery, assert.AnError)
		assert.Zero(t, recorded.Len())
	})

	t.Run("request id from the context lands in the fields", func(t *testing.T) {
		gl, recorded := newObservedGormLogger(gormlogger.Info)

		ctx, _ := WithRequestID(context.Background(), zap.NewNop(), "req-feria-9")
		gl.Trace(ctx, time.Now(), saleQuery, nil)

		logs := recorded.All()
		require.Len(t, logs, 1)

		found := false
		for _, f := range logs[0].Context {
			if f.Key == "request_id" {
				assert.Equal(t, "req-feria-9", f.String)
				found = true
			}
		}
		assert.True(t, found, "request_id field missing")
	})
}

func TestMapGormLogLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected gormlogger.LogLevel
	}{
		{"silent", gormlogger.Silent},
		{"error", gormlogger.Error},
		{"warn", gormlogger.Warn},
		{"info", gormlogger.Info},
		{"debug", gormlogger.Info},
		{"", gormlogger.Warn},
		{"verbose", gormlogger.Warn},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			assert.Equal(t, tt.expected, MapGormLogLevel(tt.level))
		})
	}
}
