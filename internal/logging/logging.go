// Package logging holds the process-wide structured logger.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var zapLog = zap.NewNop()

// Init replaces the no-op logger with a development-style logger writing to
// stderr at the given level.
func Init(level zapcore.Level) error {
	config := zap.NewDevelopmentConfig()
	config.Level = zap.NewAtomicLevelAt(level)

	encoderConfig := zap.NewDevelopmentEncoderConfig()
	encoderConfig.TimeKey = "time"
	encoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("Jan _2 15:04:05.000")
	encoderConfig.StacktraceKey = "" // to hide stacktrace info
	config.EncoderConfig = encoderConfig

	l, err := config.Build()
	if err != nil {
		return err
	}
	zapLog = l
	return nil
}

// ParseLevel maps a level name ("debug", "info", "warn", "error") to a zap level.
// An empty name means info.
func ParseLevel(name string) (zapcore.Level, error) {
	if name == "" {
		return zapcore.InfoLevel, nil
	}
	return zapcore.ParseLevel(name)
}

// L returns the current logger.
func L() *zap.Logger {
	return zapLog
}

// Info logs through the current logger, reporting the caller's location.
func Info(message string, fields ...zap.Field) {
	zapLog.WithOptions(zap.AddCallerSkip(1)).Info(message, fields...)
}

// Debug logs through the current logger, reporting the caller's location.
func Debug(message string, fields ...zap.Field) {
	zapLog.WithOptions(zap.AddCallerSkip(1)).Debug(message, fields...)
}

// Sync flushes any buffered log entries
func Sync() error {
	return zapLog.Sync()
}
