package logger

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	glogger "gorm.io/gorm/logger"
)

// GormLogger sends gorm output through slog using the request logger when
// the query carries one in its context.
type GormLogger struct {
	logLevel      glogger.LogLevel
	slowThreshold time.Duration
}

func NewGormLogger(level string) *GormLogger {
	var lvl glogger.LogLevel
	switch level {
	case "silent":
		lvl = glogger.Silent
	case "error":
		lvl = glogger.Error
	case "warn", "warning", "":
		lvl = glogger.Warn
	default:
		lvl = glogger.Info
	}
	return &GormLogger{logLevel: lvl, slowThreshold: 200 * time.Millisecond}
}

func (g *GormLogger) LogMode(level glogger.LogLevel) glogger.Interface {
	return &GormLogger{logLevel: level, slowThreshold: g.slowThreshold}
}

func (g *GormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if g.logLevel >= glogger.Info {
		FromContext(ctx).Info("gorm info", "msg_detail", msg, "data", data)
	}
}

func (g *GormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if g.logLevel >= glogger.Warn {
		FromContext(ctx).Warn("gorm warn", "msg_detail", msg, "data", data)
	}
}

func (g *GormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if g.logLevel >= glogger.Error {
		FromContext(ctx).Error("gorm error", "msg_detail", msg, "data", data)
	}
}

func (g *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if g.logLevel == glogger.Silent {
		return
	}
	elapsed := time.Since(begin)
	sql, rows := fc()

	attrs := []any{
		"sql", sql,
		"rows", rows,
		"elapsed_ms", float64(elapsed.Microseconds()) / 1000.0,
	}

	// not-found is an expected outcome of point lookups
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, gorm.ErrRecordNotFound) {
		if g.logLevel >= glogger.Error {
			FromContext(ctx).Error("gorm trace", append(attrs, "err", err)...)
		}
		return
	}

	if g.slowThreshold > 0 && elapsed > g.slowThreshold {
		if g.logLevel >= glogger.Warn {
			FromContext(ctx).Warn("gorm trace slow", append(attrs, "threshold_ms", g.slowThreshold.Milliseconds())...)
		}
		return
	}

	if g.logLevel >= glogger.Info {
		FromContext(ctx).Debug("gorm trace", attrs...)
	}
}
