// Package logging builds the zap logger used throughout the service,
// following the teacher's NewFlashcardService wiring: a development
// config for human-readable output, info level for an unrecognized
// level string, and a
// no-op fallback if zap itself fails to initialize.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a *zap.Logger at the given level (e.g. "debug", "info",
// "warn", "error"). An unrecognized level falls back to info.
func New(level string) *zap.Logger {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(parseLevel(level))

	logger, err := cfg.Build(zap.AddStacktrace(zapcore.ErrorLevel))
	if err != nil {
		fmt.Printf("logging: failed to initialize zap, falling back to no-op: %v\n", err)
		return zap.NewNop()
	}
	return logger
}

func parseLevel(level string) zapcore.Level {
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return zapcore.InfoLevel
	}
	return l
}
