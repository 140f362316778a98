package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name   string
		config *Config
	}{
		{"nil config defaults", nil},
		{"terminal", &Config{Style: StyleTerminal}},
		{"json", &Config{Style: StyleJson, Level: "debug"}},
		{"noop", &Config{Style: StyleNoop}},
		{"bad level falls back to info", &Config{Style: StyleJson, Level: "verbose"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := NewLogger(tt.config)
			if logger == nil {
				t.Fatal("NewLogger() = nil")
			}
			logger.Debug("debug probe")
			logger.Info("info probe")
		})
	}
}

func TestNewLoggerLevels(t *testing.T) {
	logger := NewLogger(&Config{Style: StyleJson, Level: "error"})
	if logger.Core().Enabled(zapcore.InfoLevel) {
		t.Error("info enabled at error level")
	}
	if !logger.Core().Enabled(zapcore.ErrorLevel) {
		t.Error("error disabled at error level")
	}
}
