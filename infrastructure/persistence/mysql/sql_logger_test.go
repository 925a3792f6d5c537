package mysql

import (
	"context"
	"errors"
	"testing"
	"time"

	mysqlDriver "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"

	"jewelry/infrastructure/persistence"
	"jewelry/pkg/logger"
)

func observeLogs(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	t.Cleanup(logger.Replace(zap.New(core)))
	return logs
}

func statement(sql string, rows int64) func() (string, int64) {
	return func() (string, int64) { return sql, rows }
}

func TestSQLLoggerTagsRequestAndTransaction(t *testing.T) {
	logs := observeLogs(t)
	l := NewSQLLogger(gormlogger.Info, time.Second)

	ctx := persistence.ContextWithRequestID(context.Background(), "req-1")
	ctx = persistence.ContextWithTxScope(ctx, "a1b2c3d4")

	l.Trace(ctx, time.Now(), statement("SELECT * FROM `orders` WHERE id = 7 FOR UPDATE", 1), nil)

	entries := logs.FilterMessage("SQL query executed").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, "a1b2c3d4", fields["tx"])
	assert.Equal(t, true, fields["row_lock"])
	assert.Equal(t, int64(1), fields["rows"])
}

func TestSQLLoggerTrace(t *testing.T) {
	deadlock := &mysqlDriver.MySQLError{Number: 1213, Message: "Deadlock found when trying to get lock"}

	tests := []struct {
		name    string
		level   gormlogger.LogLevel
		elapsed time.Duration
		err     error
		message string
		want    zapcore.Level
	}{
		{"deadlock is a warning", gormlogger.Warn, 0, deadlock, "Lock conflict, transaction will be retried", zapcore.WarnLevel},
		{"other failure", gormlogger.Warn, 0, errors.New("Data too long for column 'phone'"), "Database operation failed", zapcore.ErrorLevel},
		{"slow statement", gormlogger.Warn, 300 * time.Millisecond, nil, "Slow SQL query", zapcore.WarnLevel},
		{"fast statement at info", gormlogger.Info, 0, nil, "SQL query executed", zapcore.DebugLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logs := observeLogs(t)
			l := NewSQLLogger(tt.level, 200*time.Millisecond)

			l.Trace(context.Background(), time.Now().Add(-tt.elapsed), statement("UPDATE `products` SET stock = stock - 2 WHERE id = 1 AND stock >= 2", 1), tt.err)

			entries := logs.All()
			require.Len(t, entries, 1)
			assert.Equal(t, tt.message, entries[0].Message)
			assert.Equal(t, tt.want, entries[0].Level)
			_, scoped := entries[0].ContextMap()["tx"]
			assert.False(t, scoped, "no unit of work in ctx")
		})
	}
}

func TestSQLLoggerQuietCases(t *testing.T) {
	logs := observeLogs(t)
	ctx := context.Background()

	NewSQLLogger(gormlogger.Warn, time.Second).Trace(ctx, time.Now(), statement("SELECT * FROM `orders` WHERE id = 999", 0), gormlogger.ErrRecordNotFound)
	NewSQLLogger(gormlogger.Warn, time.Second).Trace(ctx, time.Now(), statement("SELECT 1", 1), nil)
	NewSQLLogger(gormlogger.Silent, time.Second).Trace(ctx, time.Now(), statement("SELECT 1", 1), errors.New("boom"))
	NewSQLLogger(gormlogger.Warn, time.Second).Info(ctx, "loading order %d", 7)

	assert.Zero(t, logs.Len())

	l := NewSQLLogger(gormlogger.Silent, time.Second).LogMode(gormlogger.Warn)
	l.Warn(ctx, "stock for product %d low", 3)
	assert.Equal(t, 1, logs.FilterMessage("stock for product 3 low").Len())
}
