// Package logging provides configurable zap logger creation for tablesaf
// tools and services.
package logging

import (
	"log"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Style selects the log output format.
type Style string

const (
	// StyleTerminal is human-readable development output.
	StyleTerminal Style = "terminal"
	// StyleJson is machine-readable production output.
	StyleJson Style = "json"
	// StyleNoop discards all log output.
	StyleNoop Style = "noop"
)

// Config controls logger construction.
type Config struct {
	// Style is one of terminal, json, noop. Default: terminal.
	Style Style `yaml:"style"`
	// Level is a zap level name (debug, info, warn, error). Default: info.
	Level string `yaml:"level"`
}

// NewLogger creates a zap logger based on the Config settings.
// If config is nil or has empty values, defaults to terminal style with info
// level.
func NewLogger(c *Config) *zap.Logger {
	var err error
	var logger *zap.Logger

	loggingStyle := StyleTerminal // default
	logLevel := zapcore.InfoLevel // default

	if c != nil {
		if c.Style != "" {
			loggingStyle = c.Style
		}
		if c.Level != "" {
			lvl, parseErr := zapcore.ParseLevel(c.Level)
			if parseErr == nil {
				logLevel = lvl
			}
		}
	}

	switch loggingStyle {
	case StyleNoop:
		logger = zap.NewNop()
	case StyleJson:
		cfg := zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(logLevel)
		logger, err = cfg.Build(
			zap.AddCaller(),
			zap.AddStacktrace(zap.ErrorLevel),
		)
	case StyleTerminal:
		cfg := zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(logLevel)
		logger, err = cfg.Build(
			zap.AddCaller(),
			zap.AddStacktrace(zap.ErrorLevel),
		)
	default:
		log.Fatalf(
			"invalid logging style '%s': must be one of: terminal, json, noop",
			loggingStyle,
		)
	}

	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	return logger
}
