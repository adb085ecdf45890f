package db

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/slimloans/hanami/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const slowThreshold = time.Second

// Logger sends gorm logs through logrus
type Logger struct {
	entry *logrus.Entry
	level logger.LogLevel
}

func NewLogger(entry *logrus.Entry, level string) *Logger {
	return &Logger{entry: entry, level: ParseLogLevel(level)}
}

// ParseLogLevel maps silent, error, warn and info onto gorm levels, warn
// when unknown
func ParseLogLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info", "debug":
		return logger.Info
	}
	return logger.Warn
}

func (l *Logger) withSource() *logrus.Entry {
	return l.entry.WithField("caller", utils.FileWithLineNum())
}

// LogMode log mode
func (l *Logger) LogMode(level logger.LogLevel) logger.Interface {
	return &Logger{entry: l.entry, level: level}
}

func (l *Logger) Info(ctx context.Context, msg string, data ...interface{}) {
	if l.level >= logger.Info {
		l.withSource().Infof(msg, data...)
	}
}

func (l *Logger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if l.level >= logger.Warn {
		l.withSource().Warnf(msg, data...)
	}
}

func (l *Logger) Error(ctx context.Context, msg string, data ...interface{}) {
	if l.level >= logger.Error {
		l.withSource().Errorf(msg, data...)
	}
}

// Trace logs a statement, errors and slow queries are raised to error and warn
func (l *Logger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= logger.Silent {
		return
	}

	elapsed := time.Since(begin)

	entry := l.entry.WithFields(logrus.Fields{
		"elapsed_ms": float64(elapsed.Nanoseconds()) / 1e6,
		"caller":     utils.FileWithLineNum(),
	})

	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && l.level >= logger.Error:
		sql, rows := fc()
		entry.WithField("rows", rows).WithError(err).Error(sql)
	case elapsed >= slowThreshold && l.level >= logger.Warn:
		sql, rows := fc()
		entry.WithField("rows", rows).Warnf("SLOW SQL >= %v (%s)", slowThreshold, sql)
	case l.level >= logger.Info:
		sql, rows := fc()
		entry.WithField("rows", rows).Debug(sql)
	}
}
