package mysql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"

	"jewelry/infrastructure/persistence"
	"jewelry/infrastructure/persistence/retry"
	"jewelry/pkg/logger"
)

// lockConflicts classifies errors the unit of work retries on its own.
var lockConflicts = retry.Config{RetryOnDeadlock: true, RetryOnLockTimeout: true}

// SQLLogger writes GORM statements to zap. Every entry carries the request
// ID and, inside a unit of work, the scope of the transaction attempt, so
// the statements of one checkout or one payment can be read together.
type SQLLogger struct {
	level     gormlogger.LogLevel
	slowQuery time.Duration
}

func NewSQLLogger(level gormlogger.LogLevel, slowQuery time.Duration) *SQLLogger {
	return &SQLLogger{level: level, slowQuery: slowQuery}
}

func (l *SQLLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	return &SQLLogger{level: level, slowQuery: l.slowQuery}
}

func (l *SQLLogger) from(ctx context.Context) *zap.Logger {
	log := logger.FromContext(ctx)
	if scope := persistence.TxScopeFromContext(ctx); scope != "" {
		log = log.With(zap.String("tx", scope))
	}
	return log
}

func (l *SQLLogger) Info(ctx context.Context, msg string, args ...any) {
	if l.level >= gormlogger.Info {
		l.from(ctx).Info(fmt.Sprintf(msg, args...))
	}
}

func (l *SQLLogger) Warn(ctx context.Context, msg string, args ...any) {
	if l.level >= gormlogger.Warn {
		l.from(ctx).Warn(fmt.Sprintf(msg, args...))
	}
}

func (l *SQLLogger) Error(ctx context.Context, msg string, args ...any) {
	if l.level >= gormlogger.Error {
		l.from(ctx).Error(fmt.Sprintf(msg, args...))
	}
}

// Trace logs one statement. Missing rows are not failures here: the
// repositories turn them into not-found domain errors. Lock conflicts are
// warnings because the unit of work reruns the transaction.
func (l *SQLLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()
	fields := []zap.Field{
		zap.String("sql", sql),
		zap.Duration("elapsed", elapsed),
		zap.Int64("rows", rows),
	}
	if strings.Contains(strings.ToUpper(sql), "FOR UPDATE") {
		fields = append(fields, zap.Bool("row_lock", true))
	}
	if errors.Is(err, gormlogger.ErrRecordNotFound) {
		err = nil
	}
	log := l.from(ctx)

	switch {
	case err != nil && retry.IsRetryableError(err, lockConflicts):
		if l.level >= gormlogger.Warn {
			log.Warn("Lock conflict, transaction will be retried", append(fields, zap.Error(err))...)
		}
	case err != nil:
		if l.level >= gormlogger.Error {
			log.Error("Database operation failed", append(fields, zap.Error(err))...)
		}
	case l.slowQuery > 0 && elapsed > l.slowQuery:
		if l.level >= gormlogger.Warn {
			log.Warn("Slow SQL query", fields...)
		}
	case l.level >= gormlogger.Info:
		log.Debug("SQL query executed", fields...)
	}
}

var _ gormlogger.Interface = (*SQLLogger)(nil)
