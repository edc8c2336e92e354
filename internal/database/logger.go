package database

import (
	"context"
	"errors"
	"time"

	gormlogger "gorm.io/gorm/logger"

	"github.com/meetscribe/meetscribe/internal/logger"
)

func parseLogLevel(level string) gormlogger.LogLevel {
	switch level {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "warn":
		return gormlogger.Warn
	case "info":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}

// gormLoggerAdapter routes GORM's logger interface into the service logger.
type gormLoggerAdapter struct {
	log           *logger.Logger
	slowThreshold time.Duration
	level         gormlogger.LogLevel
}

func newGormLogger(log *logger.Logger, slowThreshold time.Duration, level gormlogger.LogLevel) gormlogger.Interface {
	if slowThreshold <= 0 {
		slowThreshold = 200 * time.Millisecond
	}
	return &gormLoggerAdapter{
		log:           log.WithComponent("gorm"),
		slowThreshold: slowThreshold,
		level:         level,
	}
}

func (g *gormLoggerAdapter) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *g
	clone.level = level
	return &clone
}

func (g *gormLoggerAdapter) Info(ctx context.Context, msg string, args ...interface{}) {
	if g.level >= gormlogger.Info {
		g.log.Info(msg, map[string]interface{}{"args": args})
	}
}

func (g *gormLoggerAdapter) Warn(ctx context.Context, msg string, args ...interface{}) {
	if g.level >= gormlogger.Warn {
		g.log.Warn(msg, map[string]interface{}{"args": args})
	}
}

func (g *gormLoggerAdapter) Error(ctx context.Context, msg string, args ...interface{}) {
	if g.level >= gormlogger.Error {
		g.log.Error(msg, map[string]interface{}{"args": args})
	}
}

func (g *gormLoggerAdapter) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if g.level <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()
	fields := map[string]interface{}{
		"elapsed_ms": float64(elapsed.Nanoseconds()) / 1e6,
		"rows":       rows,
		"sql":        sql,
	}

	switch {
	case err != nil && !errors.Is(err, gormlogger.ErrRecordNotFound) && g.level >= gormlogger.Error:
		g.log.WithError(err).Error("Query failed", fields)
	case elapsed > g.slowThreshold && g.level >= gormlogger.Warn:
		fields["slow_threshold"] = g.slowThreshold.String()
		g.log.Warn("Slow query detected", fields)
	case g.level >= gormlogger.Info:
		g.log.Debug("Query executed", fields)
	}
}
