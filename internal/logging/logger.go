// Package logging provides structured logging for the devicescan binaries.
//
// Library packages never log directly; they report through the
// devicescan.DebugLogger callback. DebugSink bridges that callback into zap:
//
//	if err := logging.Initialize(cfg.LogLevel); err != nil {
//	    return err
//	}
//	defer logging.Sync()
//	devicescan.SetDebugLogger(logging.DebugSink())
//	devicescan.SetDebugLevel(logging.DebugLevel())
//
// Logs go to stderr so that `devicescan scan --json` keeps stdout clean.
package logging

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/marcuoli/go-devicescan/pkg/devicescan"
)

var logger *zap.Logger

// LogLevelEnvVar is the environment variable that controls logging verbosity.
// When unset or empty, logging is silent (no zap output).
// Valid values: "debug", "info", "warn", "error"
const LogLevelEnvVar = "DEVICESCAN_LOG_LEVEL"

// Initialize creates a new logger with the specified level.
// If level is empty, it checks DEVICESCAN_LOG_LEVEL environment variable.
// If neither is set, logging is disabled (silent mode).
func Initialize(level string) error {
	if level == "" {
		level = os.Getenv(LogLevelEnvVar)
	}

	if level == "" {
		SetLogger(zap.NewNop())
		return nil
	}

	zapLevel, err := parseLevel(level)
	if err != nil {
		return err
	}

	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapLevel),
		Development:      false,
		Encoding:         "console",
		EncoderConfig:    zap.NewDevelopmentEncoderConfig(),
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}
	config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.EncodeCaller = zapcore.ShortCallerEncoder

	l, err := config.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	SetLogger(l)
	return nil
}

func parseLevel(level string) (zapcore.Level, error) {
	switch level {
	case "debug":
		return zapcore.DebugLevel, nil
	case "info":
		return zapcore.InfoLevel, nil
	case "warn":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	}
	return zapcore.InfoLevel, fmt.Errorf("unknown log level %q", level)
}

// SetLogger replaces the global logger.
func SetLogger(l *zap.Logger) {
	logger = l
}

// GetLogger returns the global logger instance
func GetLogger() *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return logger
}

// Info logs an info message
func Info(msg string, fields ...zap.Field) {
	GetLogger().Info(msg, fields...)
}

// Debug logs a debug message
func Debug(msg string, fields ...zap.Field) {
	GetLogger().Debug(msg, fields...)
}

// Warn logs a warning message
func Warn(msg string, fields ...zap.Field) {
	GetLogger().Warn(msg, fields...)
}

// Error logs an error message
func Error(msg string, fields ...zap.Field) {
	GetLogger().Error(msg, fields...)
}

// DebugSink returns a library debug callback that writes to the global
// logger, tagged with the component. Verbosity is filtered by the library
// level set from DebugLevel, so messages are written at info.
func DebugSink() devicescan.DebugLogger {
	return func(component devicescan.Component, format string, args ...interface{}) {
		GetLogger().Info(fmt.Sprintf(format, args...),
			zap.String("component", string(component)),
			zap.String("prefix", devicescan.ComponentToPrefix(component)),
		)
	}
}

// DebugLevel maps the logger's level onto the library's debug verbosity.
func DebugLevel() devicescan.DebugLevel {
	if GetLogger().Core().Enabled(zapcore.DebugLevel) {
		return devicescan.DebugVerbose
	}
	if GetLogger().Core().Enabled(zapcore.InfoLevel) {
		return devicescan.DebugBasic
	}
	return devicescan.DebugOff
}

// LogSession logs the summary of a finished session.
func LogSession(s devicescan.Session) {
	Info("Scan session complete",
		zap.String("session_id", s.ID),
		zap.Int("devices", s.DeviceCount),
		zap.Int("radio", s.RadioCount()),
		zap.Int("ip", s.IPCount()),
	)
}

// Sync flushes any buffered log entries
func Sync() {
	if logger != nil {
		_ = logger.Sync()
	}
}
