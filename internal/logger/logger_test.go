package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestProperty_LogsAreStructured(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("all log entries are in structured JSON format", prop.ForAll(
		func(message string, level string) bool {
			var buf bytes.Buffer

			encoderConfig := zapcore.EncoderConfig{
				TimeKey:        "timestamp",
				LevelKey:       "level",
				MessageKey:     "message",
				LineEnding:     zapcore.DefaultLineEnding,
				EncodeLevel:    zapcore.LowercaseLevelEncoder,
				EncodeTime:     zapcore.ISO8601TimeEncoder,
				EncodeDuration: zapcore.SecondsDurationEncoder,
			}

			core := zapcore.NewCore(
				zapcore.NewJSONEncoder(encoderConfig),
				zapcore.AddSync(&buf),
				zapcore.DebugLevel,
			)

			logger := zap.New(core)
			defer logger.Sync()

			switch level {
			case "debug":
				logger.Debug(message)
			case "info":
				logger.Info(message)
			case "warn":
				logger.Warn(message)
			default:
				logger.Error(message)
			}

			var logEntry map[string]interface{}
			if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
				return false
			}

			if _, ok := logEntry["level"]; !ok {
				return false
			}
			if _, ok := logEntry["timestamp"]; !ok {
				return false
			}

			return logEntry["message"] == message
		},
		gen.AnyString(),
		gen.OneConstOf("debug", "info", "warn", "error"),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestNewBuildsForBothEnvironments(t *testing.T) {
	for _, env := range []string{"development", "production"} {
		logger, err := New(env)
		if err != nil {
			t.Fatalf("New(%q) failed: %v", env, err)
		}
		if logger == nil {
			t.Fatalf("New(%q) returned nil logger", env)
		}
		logger.Sync()
	}
}

func TestNewWithDefaultsNeverReturnsNil(t *testing.T) {
	logger := NewWithDefaults()
	if logger == nil {
		t.Fatal("NewWithDefaults returned nil logger")
	}
	logger.Sync()
}
