// Package logger builds the zap loggers used throughout fantasydb. Every
// component asks For(name) once and keeps the returned sugared logger.
package logger

import (
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// EnvLogLevel overrides the default log level when set.
const EnvLogLevel = "FANTASYDB_LOG_LEVEL"

var initOnce sync.Once

// New builds a JSON logger writing to stderr at the given level string
// (debug, info, warn, error). Unknown levels fall back to info.
func New(level string) *zap.Logger {
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "component",
		MessageKey:     "msg",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
	}
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(os.Stderr),
		zap.NewAtomicLevelAt(parseLevel(level)),
	)
	return zap.New(core)
}

// Initialize installs the process-wide logger once, reading the level from
// FANTASYDB_LOG_LEVEL. Subsequent calls are no-ops.
func Initialize() {
	initOnce.Do(func() {
		level := os.Getenv(EnvLogLevel)
		if level == "" {
			level = "info"
		}
		zap.ReplaceGlobals(New(level))
	})
}

// For returns a named sugared logger for one component. Initialize is
// called implicitly so library users get sane output without setup.
func For(component string) *zap.SugaredLogger {
	Initialize()
	return zap.S().Named(component)
}

// Sync flushes buffered log entries. Called on shutdown.
func Sync() error {
	return zap.L().Sync()
}

func parseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
